package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"homefinder-backend/internal/config"
	"homefinder-backend/internal/shared"
	"homefinder-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs registers every periodic task.
func (s *Scheduler) RegisterJobs() error {
	return s.registerCleanupExpiredCredentialsJob()
}

// ================================================
// Cleanup expired OTPs and temporary passwords
// ================================================
func (s *Scheduler) registerCleanupExpiredCredentialsJob() error {
	payload, err := json.Marshal(shared.CleanupExpiredCredentialsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExpiredCredential, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.CredentialCleanupCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CleanupExpiredCredentials job", err)
		return fmt.Errorf("register credential cleanup: %w", err)
	}

	logger.Info("Registered CleanupExpiredCredentials", map[string]interface{}{
		"cron": s.jobConfig.CredentialCleanupCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
