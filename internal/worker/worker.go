package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/keymint/keymint-api/internal/config"
	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/tasks"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunWorkers runs the asynq server and scheduler until ctx is canceled. The
// scheduler enqueues the periodic key expiry scan; the server processes it.
func RunWorkers(ctx context.Context, cfg *config.Config, repo key.Repository, logger *zap.Logger) error {
	redisConnOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(
		redisConnOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Named("AsynqServerErrorHandler").Error("Asynq task processing failed",
					zap.String("task_type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err),
				)
			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	mux := asynq.NewServeMux()
	scanHandler := tasks.NewKeyExpireScanHandler(repo, logger)
	mux.HandleFunc(tasks.TypeKeyExpireScan, scanHandler.ProcessTask)

	scheduler := asynq.NewScheduler(
		redisConnOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	scanTask, err := tasks.NewKeyExpireScanTask()
	if err != nil {
		return fmt.Errorf("scheduler task creation error: %w", err)
	}

	entryID, err := scheduler.Register(cfg.Worker.ScanSchedule, scanTask)
	if err != nil {
		return fmt.Errorf("scheduler registration error: %w", err)
	}
	logger.Info("Registered periodic key expiry scan",
		zap.String("entry_id", entryID),
		zap.String("schedule", cfg.Worker.ScanSchedule),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting Asynq Server...")
		if err := srv.Run(mux); err != nil {
			return fmt.Errorf("asynq server error: %w", err)
		}
		logger.Info("Asynq Server stopped.")
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting Asynq Scheduler...")
		if err := scheduler.Run(); err != nil {
			return fmt.Errorf("asynq scheduler error: %w", err)
		}
		logger.Info("Asynq Scheduler stopped.")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down Asynq Scheduler...")
		scheduler.Shutdown()
		logger.Info("Shutting down Asynq Server...")
		srv.Shutdown()
		return nil
	})

	return g.Wait()
}

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
