package scheduler

import (
	"context"
	"fmt"
	"time"

	"carwash/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = time.Minute

type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context) (int, error)
}

type SettingsReader interface {
	GetNotificationSettings(ctx context.Context) (*service.NotificationSettings, error)
}

// Scheduler runs periodic background jobs.
type Scheduler struct {
	cron      *cron.Cron
	inventory LowStockNotifier
	settings  SettingsReader
	log       *zap.Logger
}

func New(inventory LowStockNotifier, settings SettingsReader, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		inventory: inventory,
		settings:  settings,
		log:       log,
	}
}

// RegisterLowStock schedules the low stock alert using a standard five-field spec.
func (s *Scheduler) RegisterLowStock(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunLowStock(ctx)
	}); err != nil {
		return fmt.Errorf("failed to add low stock job: %w", err)
	}
	return nil
}

// RunLowStock broadcasts low stock items unless the alert is switched off in settings.
func (s *Scheduler) RunLowStock(ctx context.Context) {
	settings, err := s.settings.GetNotificationSettings(ctx)
	if err != nil {
		s.log.Error("low stock job: failed to read notification settings", zap.Error(err))
		return
	}
	if !settings.LowStockAlert {
		s.log.Debug("low stock job skipped: alert disabled")
		return
	}

	n, err := s.inventory.NotifyLowStock(ctx)
	if err != nil {
		s.log.Error("low stock job failed", zap.Error(err))
		return
	}
	s.log.Info("low stock job finished", zap.Int("items", n))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
