package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/handler/dto"
	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/keymint/keymint-api/internal/metrics"
	"github.com/keymint/keymint-api/internal/util"
	"go.uber.org/zap"
)

// maxKeyGenAttempts bounds the retry loop when a freshly generated key
// collides with a stored one. At 36^12 possible keys a single retry is
// already vanishingly rare.
const maxKeyGenAttempts = 5

type KeyService struct {
	repo     key.Repository
	products *ProductService
	logger   *zap.Logger
}

func NewKeyService(repo key.Repository, products *ProductService, logger *zap.Logger) *KeyService {
	return &KeyService{
		repo:     repo,
		products: products,
		logger:   logger.Named("KeyService"),
	}
}

// CreateKey issues a new unclaimed key for the given product. The duration
// token (7d, 24h, 30m) fixes the validity window that starts on first claim.
func (s *KeyService) CreateKey(ctx context.Context, productID, durationToken string) (string, error) {
	durationDays, err := util.ParseDuration(durationToken)
	if err != nil {
		return "", err
	}

	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to check product existence", zap.String("product_id", productID), zap.Error(err))
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ierr.ErrInvalidProduct, productID)
	}

	for attempt := 0; attempt < maxKeyGenAttempts; attempt++ {
		keyStr, err := util.GenerateLicenseKey(util.DefaultKeyTemplate)
		if err != nil {
			s.logger.Error("Failed to generate license key", zap.Error(err))
			return "", fmt.Errorf("%w: %v", ierr.ErrInternalServer, err)
		}

		err = s.repo.Create(ctx, &key.LicenseKey{
			Key:       keyStr,
			ProductID: productID,
			Duration:  durationDays,
		})
		if errors.Is(err, ierr.ErrAlreadyExists) {
			s.logger.Warn("Generated key collided with an existing one, retrying", zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			s.logger.Error("Failed to store new license key", zap.Error(err))
			return "", err
		}

		metrics.KeysIssuedTotal.Inc()
		s.logger.Info("License key created",
			zap.String("key", keyStr),
			zap.String("product_id", productID),
			zap.Float64("duration_days", durationDays),
		)
		return keyStr, nil
	}

	return "", fmt.Errorf("%w: exhausted key generation attempts", ierr.ErrInternalServer)
}

func (s *KeyService) DeleteKey(ctx context.Context, keyStr string) error {
	if err := s.repo.Delete(ctx, keyStr); err != nil {
		if errors.Is(err, ierr.ErrKeyNotFound) {
			s.logger.Info("Key not found for deletion", zap.String("key", keyStr))
			return err
		}
		s.logger.Error("Failed to delete key via repository", zap.String("key", keyStr), zap.Error(err))
		return err
	}

	s.logger.Info("License key deleted", zap.String("key", keyStr))
	return nil
}

// ResetHWID unbinds the key from its machine so it can be claimed from a new
// one. The claim date is intentionally left untouched: the expiry window
// fixed at first claim keeps running and is never extended by a reset.
func (s *KeyService) ResetHWID(ctx context.Context, keyStr string) error {
	_, err := s.repo.Update(ctx, keyStr, func(k *key.LicenseKey) (bool, error) {
		k.HWID = nil
		return true, nil
	})
	if err != nil {
		if errors.Is(err, ierr.ErrKeyNotFound) {
			s.logger.Info("Key not found for HWID reset", zap.String("key", keyStr))
			return err
		}
		s.logger.Error("Failed to reset HWID via repository", zap.String("key", keyStr), zap.Error(err))
		return err
	}

	s.logger.Info("HWID reset", zap.String("key", keyStr))
	return nil
}

// DashboardSummary aggregates key and product counts for the admin
// dashboard.
func (s *KeyService) DashboardSummary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list keys for dashboard summary", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	summary := &dto.DashboardSummaryResponse{
		TotalKeys:     int64(len(keys)),
		ProductCounts: make(map[string]int64),
	}
	for _, k := range keys {
		if k.Claimed() {
			summary.ClaimedKeys++
		}
		if k.ExpiredAt(now) {
			summary.ExpiredKeys++
		}
		summary.ProductCounts[k.ProductID]++
	}

	products, err := s.products.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products for dashboard summary", zap.Error(err))
		return nil, err
	}
	summary.TotalProducts = int64(len(products))

	return summary, nil
}
