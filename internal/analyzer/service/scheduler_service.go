package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService triggers scheduled analysis runs on the configured
// cron expressions.
type SchedulerService interface {
	Start(ctx context.Context) error
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(pipeline PipelineService, log *logger.Logger, cfg *config.Config) SchedulerService {
	return &schedulerService{
		pipeline: pipeline,
		logger:   log,
		cfg:      cfg,
	}
}

type schedulerService struct {
	pipeline PipelineService
	logger   *logger.Logger
	cfg      *config.Config
}

// Start registers the cron entries and blocks until the context is
// cancelled. Only one run per trigger executes; the run ledger rejects
// duplicate scheduled runs for the same date.
func (s *schedulerService) Start(ctx context.Context) error {
	location := time.UTC
	if s.cfg.Scheduler.Timezone != "" {
		loc, err := time.LoadLocation(s.cfg.Scheduler.Timezone)
		if err != nil {
			return fmt.Errorf("invalid scheduler timezone: %w", err)
		}
		location = loc
	}

	c := cron.New(cron.WithLocation(location))

	if _, err := c.AddFunc(s.cfg.Scheduler.DailyCron, func() {
		s.trigger(ctx, entity.RunModeDaily)
	}); err != nil {
		return fmt.Errorf("invalid daily cron expression: %w", err)
	}
	if _, err := c.AddFunc(s.cfg.Scheduler.WeeklyCron, func() {
		s.trigger(ctx, entity.RunModeWeekly)
	}); err != nil {
		return fmt.Errorf("invalid weekly cron expression: %w", err)
	}

	s.logger.Info("Scheduler started",
		logger.StringField("daily_cron", s.cfg.Scheduler.DailyCron),
		logger.StringField("weekly_cron", s.cfg.Scheduler.WeeklyCron),
		logger.StringField("timezone", location.String()),
	)

	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *schedulerService) trigger(ctx context.Context, mode entity.RunMode) {
	s.logger.Info("Scheduled analysis starting", logger.StringField("mode", string(mode)))

	run, err := s.pipeline.Run(ctx, mode, "", 0)
	if errors.Is(err, ErrAlreadyRun) {
		s.logger.Warn("Skipping scheduled run: already completed for this date",
			logger.StringField("mode", string(mode)))
		return
	}
	if err != nil {
		s.logger.Error("Scheduled analysis failed", logger.ErrorField(err), logger.StringField("mode", string(mode)))
		return
	}
	s.logger.Info("Scheduled analysis finished",
		logger.Field("run_id", run.ID),
		logger.StringField("status", string(run.Status)),
		logger.IntField("findings", run.FindingsCount),
		logger.IntField("opportunities", run.OpportunitiesIdentified),
	)
}
