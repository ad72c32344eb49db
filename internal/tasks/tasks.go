package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeKeyExpireScan = "key:expire:scan"
)

type KeyExpireScanPayload struct{}

func NewKeyExpireScanTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(KeyExpireScanPayload{})
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Hour)
	allOpts := append(opts, uniqueOpt)

	return asynq.NewTask(TypeKeyExpireScan, payloadBytes, allOpts...), nil
}
