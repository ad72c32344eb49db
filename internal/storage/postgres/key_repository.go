package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

type KeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *KeyRepository {
	return &KeyRepository{
		db:     db,
		logger: logger.Named("KeyRepository"),
	}
}

var _ key.Repository = (*KeyRepository)(nil)

const keyColumns = "license_key, product_id, hwid, ip, claim_date, duration"

func (r *KeyRepository) Create(ctx context.Context, k *key.LicenseKey) error {
	query := `
        INSERT INTO license_keys (license_key, product_id, hwid, ip, claim_date, duration)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query, k.Key, k.ProductID, k.HWID, k.IP, k.ClaimDate, k.Duration)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Attempted to create duplicate license key",
				zap.String("license_key", k.Key),
			)
			return fmt.Errorf("%w: key %s", ierr.ErrAlreadyExists, k.Key)
		}
		r.logger.Error("Failed to create license key in database", zap.Error(err))
		return fmt.Errorf("database error on create key: %w", err)
	}
	return nil
}

func (r *KeyRepository) Get(ctx context.Context, keyStr string) (*key.LicenseKey, error) {
	query := `SELECT ` + keyColumns + ` FROM license_keys WHERE license_key = $1`
	return r.scanKey(r.db.QueryRow(ctx, query, keyStr))
}

func (r *KeyRepository) Put(ctx context.Context, k *key.LicenseKey) error {
	query := `
        INSERT INTO license_keys (license_key, product_id, hwid, ip, claim_date, duration)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (license_key) DO UPDATE SET
            product_id = EXCLUDED.product_id,
            hwid       = EXCLUDED.hwid,
            ip         = EXCLUDED.ip,
            claim_date = EXCLUDED.claim_date,
            duration   = EXCLUDED.duration
    `
	_, err := r.db.Exec(ctx, query, k.Key, k.ProductID, k.HWID, k.IP, k.ClaimDate, k.Duration)
	if err != nil {
		r.logger.Error("Failed to upsert license key", zap.String("license_key", k.Key), zap.Error(err))
		return fmt.Errorf("database error on put key: %w", err)
	}
	return nil
}

func (r *KeyRepository) Delete(ctx context.Context, keyStr string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM license_keys WHERE license_key = $1`, keyStr)
	if err != nil {
		r.logger.Error("Failed to delete license key", zap.String("license_key", keyStr), zap.Error(err))
		return fmt.Errorf("database error on delete key: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrKeyNotFound
	}
	return nil
}

func (r *KeyRepository) List(ctx context.Context) ([]*key.LicenseKey, error) {
	rows, err := r.db.Query(ctx, `SELECT `+keyColumns+` FROM license_keys`)
	if err != nil {
		r.logger.Error("Failed to query license keys", zap.Error(err))
		return nil, fmt.Errorf("database error on list keys: %w", err)
	}
	defer rows.Close()

	keys := make([]*key.LicenseKey, 0)
	for rows.Next() {
		var k key.LicenseKey
		if err := rows.Scan(&k.Key, &k.ProductID, &k.HWID, &k.IP, &k.ClaimDate, &k.Duration); err != nil {
			r.logger.Error("Failed to scan license key row during list", zap.Error(err))
			return nil, fmt.Errorf("database scan error during list: %w", err)
		}
		keys = append(keys, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error on list keys: %w", err)
	}
	return keys, nil
}

// Update runs the read-modify-write inside a transaction with a row lock so
// concurrent claims on the same key serialize.
func (r *KeyRepository) Update(ctx context.Context, keyStr string, fn key.UpdateFunc) (*key.LicenseKey, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + keyColumns + ` FROM license_keys WHERE license_key = $1 FOR UPDATE`
	k, err := r.scanKey(tx.QueryRow(ctx, query, keyStr))
	if err != nil {
		return nil, err
	}

	save, err := fn(k)
	if err != nil {
		return nil, err
	}
	if !save {
		return k, nil
	}

	updateQuery := `
        UPDATE license_keys SET
            product_id = $1, hwid = $2, ip = $3, claim_date = $4, duration = $5
        WHERE license_key = $6
    `
	if _, err := tx.Exec(ctx, updateQuery, k.ProductID, k.HWID, k.IP, k.ClaimDate, k.Duration, k.Key); err != nil {
		r.logger.Error("Failed to update license key", zap.String("license_key", keyStr), zap.Error(err))
		return nil, fmt.Errorf("database error on update key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing key update: %w", err)
	}
	return k, nil
}

func (r *KeyRepository) scanKey(row pgx.Row) (*key.LicenseKey, error) {
	var k key.LicenseKey
	err := row.Scan(&k.Key, &k.ProductID, &k.HWID, &k.IP, &k.ClaimDate, &k.Duration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrKeyNotFound
		}
		r.logger.Error("Failed to scan license key row", zap.Error(err))
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &k, nil
}
