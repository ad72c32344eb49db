package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/metrics"
	"go.uber.org/zap"
)

// KeyExpireScanHandler periodically walks the key store and publishes how
// many claimed keys are past their expiry. Expired keys are only observed,
// never deleted: they must keep failing claims with a stable error.
type KeyExpireScanHandler struct {
	repo   key.Repository
	logger *zap.Logger
}

func NewKeyExpireScanHandler(repo key.Repository, logger *zap.Logger) *KeyExpireScanHandler {
	return &KeyExpireScanHandler{
		repo:   repo,
		logger: logger.Named("KeyExpireScanHandler"),
	}
}

func (h *KeyExpireScanHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeKeyExpireScan {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p KeyExpireScanPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal expire scan payload", zap.Error(err), zap.ByteString("payload", t.Payload()))
		return fmt.Errorf("invalid payload: %v", err)
	}

	expired, total, err := h.Scan(ctx)
	if err != nil {
		h.logger.Error("Key expiry scan failed", zap.Error(err))
		return fmt.Errorf("repository error listing keys: %w", err)
	}

	h.logger.Info("Key expiry scan finished",
		zap.Int("total_keys", total),
		zap.Int("expired_keys", expired),
	)
	return nil
}

// Scan counts claimed-and-expired keys and updates the gauge.
func (h *KeyExpireScanHandler) Scan(ctx context.Context) (expired, total int, err error) {
	keys, err := h.repo.List(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := time.Now()
	for _, k := range keys {
		if k.ExpiredAt(now) {
			expired++
		}
	}

	metrics.KeysExpired.Set(float64(expired))
	return expired, len(keys), nil
}
