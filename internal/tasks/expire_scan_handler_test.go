package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/storage/jsonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedKey(t *testing.T, repo *jsonfile.KeyRepository, keyStr string, claimedAgo time.Duration, durationDays float64) {
	t.Helper()

	k := &key.LicenseKey{
		Key:       keyStr,
		ProductID: "pro",
		Duration:  durationDays,
	}
	if claimedAgo > 0 {
		hwid := "hwid-1"
		ip := "10.0.0.1"
		claimDate := time.Now().Add(-claimedAgo)
		k.HWID = &hwid
		k.IP = &ip
		k.ClaimDate = &claimDate
	}
	require.NoError(t, repo.Create(context.Background(), k))
}

func TestScanCountsExpiredKeys(t *testing.T) {
	logger := zap.NewNop()
	repo := jsonfile.NewKeyRepository(filepath.Join(t.TempDir(), "keys.json"), nil, logger)

	seedKey(t, repo, "AAAA-AAAA-AAAA", 0, 7)               // never claimed
	seedKey(t, repo, "BBBB-BBBB-BBBB", time.Hour, 7)       // claimed, inside window
	seedKey(t, repo, "CCCC-CCCC-CCCC", 48*time.Hour, 1)    // claimed, expired
	seedKey(t, repo, "DDDD-DDDD-DDDD", 10*24*time.Hour, 7) // claimed, expired

	h := NewKeyExpireScanHandler(repo, logger)

	expired, total, err := h.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.Equal(t, 4, total)
}

func TestProcessTaskRejectsUnknownType(t *testing.T) {
	logger := zap.NewNop()
	repo := jsonfile.NewKeyRepository(filepath.Join(t.TempDir(), "keys.json"), nil, logger)
	h := NewKeyExpireScanHandler(repo, logger)

	task := asynq.NewTask("some:other:task", nil)
	assert.Error(t, h.ProcessTask(context.Background(), task))
}

func TestProcessTaskRunsScan(t *testing.T) {
	logger := zap.NewNop()
	repo := jsonfile.NewKeyRepository(filepath.Join(t.TempDir(), "keys.json"), nil, logger)

	seedKey(t, repo, "AAAA-AAAA-AAAA", 48*time.Hour, 1)

	h := NewKeyExpireScanHandler(repo, logger)

	task, err := NewKeyExpireScanTask()
	require.NoError(t, err)
	assert.NoError(t, h.ProcessTask(context.Background(), task))
}
