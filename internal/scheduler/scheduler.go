package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/sheets"
	"github.com/mamadbah2/stockroom/internal/service/reporting"
	"github.com/mamadbah2/stockroom/pkg/clients/webhook"
)

const reportTimeout = 2 * time.Minute

// ReportGenerator produces inventory snapshots.
type ReportGenerator interface {
	Generate(ctx context.Context) (models.InventoryReport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reports  ReportGenerator
	sheet    sheets.Repository
	notifier webhook.Notifier
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. sheet and notifier are
// optional sinks; a nil sink is skipped.
func NewScheduler(cfg config.ReportingConfig, reports ReportGenerator, sheet sheets.Repository, notifier webhook.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CronSchedule == "" {
		return nil, errors.New("cron schedule must not be empty")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		reports:  reports,
		sheet:    sheet,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Start registers the report job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduledReport); err != nil {
		return fmt.Errorf("schedule inventory report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduledReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := s.RunReport(ctx); err != nil {
		s.logger.Error("inventory report failed", zap.Error(err))
	}
}

// RunReport generates one report and delivers it to every configured sink.
// Sink failures are logged and joined; they do not stop other sinks.
func (s *Scheduler) RunReport(ctx context.Context) error {
	report, err := s.reports.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	s.logger.Info("inventory report",
		zap.Time("generated_at", report.GeneratedAt),
		zap.Int("items", report.ItemCount),
		zap.Int64("units", report.TotalUnits),
		zap.Float64("sales", report.SalesTotal))

	var errs []error
	if s.sheet != nil {
		if err := s.sheet.WriteRow(ctx, sheets.ReportsRange, reporting.Row(report)); err != nil {
			s.logger.Error("failed to export report to sheet", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, reporting.Format(report)); err != nil {
			s.logger.Error("failed to send report notification", zap.Error(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
