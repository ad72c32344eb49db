package service

import (
	"context"
	"errors"
	"time"

	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/keymint/keymint-api/internal/metrics"
	"go.uber.org/zap"
)

// ClaimResult is what a client gets back from a successful redemption.
type ClaimResult struct {
	Key       string
	Product   string
	ExpiresAt time.Time
}

// ClaimService is the state machine governing key redemption. A key moves
// Unclaimed -> Bound on first claim; expiry is derived from the claim date
// on every call and never cached. An admin HWID reset returns the key to an
// unbound state while the original expiry clock keeps running.
type ClaimService struct {
	keys     key.Repository
	products *ProductService
	logger   *zap.Logger

	now func() time.Time
}

func NewClaimService(keys key.Repository, products *ProductService, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		keys:     keys,
		products: products,
		logger:   logger.Named("ClaimService"),
		now:      time.Now,
	}
}

// Claim redeems a key for the machine identified by hwid.
//
// Once bound, a key is usable only from its bound HWID. Re-claiming from the
// same HWID before expiry is idempotent: it returns the unchanged expiry and
// does not rewrite storage. An expired key is rejected but never deleted.
func (s *ClaimService) Claim(ctx context.Context, keyStr, hwid, ip string) (*ClaimResult, error) {
	var expiresAt time.Time

	updated, err := s.keys.Update(ctx, keyStr, func(k *key.LicenseKey) (bool, error) {
		if k.BoundToOther(hwid) {
			return false, ierr.ErrHwidMismatch
		}

		now := s.now()
		if k.Claimed() {
			if now.After(k.ExpiresAt()) {
				return false, ierr.ErrKeyExpired
			}
			expiresAt = k.ExpiresAt()

			if k.HWID == nil {
				// Re-bind after an admin reset. The claim date stays put so
				// the validity window is not extended.
				k.HWID = &hwid
				k.IP = &ip
				return true, nil
			}
			return false, nil
		}

		// First claim: start the expiry clock and bind the machine in one
		// transition.
		claimDate := now
		k.ClaimDate = &claimDate
		k.HWID = &hwid
		k.IP = &ip
		expiresAt = k.ExpiresAt()
		return true, nil
	})
	if err != nil {
		s.observeClaimError(keyStr, hwid, err)
		return nil, err
	}

	metrics.ClaimsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Key claimed",
		zap.String("key", keyStr),
		zap.String("hwid", hwid),
		zap.Time("expires_at", expiresAt),
	)

	return &ClaimResult{
		Key:       keyStr,
		Product:   s.products.ResolveName(ctx, updated.ProductID),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ClaimService) observeClaimError(keyStr, hwid string, err error) {
	switch {
	case errors.Is(err, ierr.ErrKeyNotFound):
		metrics.ClaimsTotal.WithLabelValues("not_found").Inc()
		s.logger.Info("Claim attempt with unknown key", zap.String("key", keyStr))
	case errors.Is(err, ierr.ErrHwidMismatch):
		metrics.ClaimsTotal.WithLabelValues("hwid_mismatch").Inc()
		s.logger.Warn("Claim attempt from foreign machine", zap.String("key", keyStr), zap.String("hwid", hwid))
	case errors.Is(err, ierr.ErrKeyExpired):
		metrics.ClaimsTotal.WithLabelValues("expired").Inc()
		s.logger.Info("Claim attempt with expired key", zap.String("key", keyStr))
	default:
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Claim failed", zap.String("key", keyStr), zap.Error(err))
	}
}
