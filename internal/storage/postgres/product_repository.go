package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/keymint/keymint-api/internal/domain/product"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

type ProductRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProductRepository(db *pgxpool.Pool, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger.Named("ProductRepository"),
	}
}

var _ product.Repository = (*ProductRepository)(nil)

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db.Exec(ctx, `INSERT INTO products (id, name) VALUES ($1, $2)`, p.ID, p.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %s", ierr.ErrAlreadyExists, p.ID)
		}
		r.logger.Error("Failed to create product in database", zap.String("id", p.ID), zap.Error(err))
		return fmt.Errorf("database error on create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := r.db.QueryRow(ctx, `SELECT id, name FROM products WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrProductNotFound
		}
		r.logger.Error("Failed to scan product row", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("database error on delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM products ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to query products", zap.Error(err))
		return nil, fmt.Errorf("database error on list products: %w", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("database scan error during list: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error on list products: %w", err)
	}
	return products, nil
}
