// Package reminders runs the scheduled WhatsApp jobs: next-day reminders and the
// hourly connection check.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type Source interface {
	ListForReminder(ctx context.Context, from, to time.Time) ([]model.Notice, error)
}

type Sender interface {
	IsReady() bool
	RefreshStatus(ctx context.Context) bool
	SendReminderAndConfirmation(ctx context.Context, n model.Notice) bool
}

type PGSource struct {
	q    db.Querier
	repo *storage.AppointmentRepository
}

func NewPGSource(q db.Querier, loc *time.Location) *PGSource {
	return &PGSource{q: q, repo: storage.NewAppointmentRepository(loc)}
}

func (s *PGSource) ListForReminder(ctx context.Context, from, to time.Time) ([]model.Notice, error) {
	return s.repo.ListForReminder(ctx, s.q, from, to)
}

type Config struct {
	ReminderSpec string
	StatusSpec   string
	Gap          time.Duration
	Location     *time.Location
	Now          func() time.Time
}

// Result summarises one reminder run.
type Result struct {
	Skipped bool `json:"skipped"`
	Total   int  `json:"total"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
}

var ErrRunning = errors.New("reminder run already in progress")

type Scheduler struct {
	source  Source
	sender  Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     Config
	cron    *cron.Cron

	runMu  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New(source Source, sender Sender, logger *slog.Logger, m *metrics.Metrics, cfg Config) (*Scheduler, error) {
	if cfg.ReminderSpec == "" {
		cfg.ReminderSpec = "0 10 * * *"
	}
	if cfg.StatusSpec == "" {
		cfg.StatusSpec = "0 * * * *"
	}
	if cfg.Gap < 0 {
		cfg.Gap = 0
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		source:  source,
		sender:  sender,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
		cron:    cron.New(cron.WithLocation(cfg.Location)),
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := s.cron.AddFunc(cfg.ReminderSpec, s.reminderJob); err != nil {
		cancel()
		return nil, fmt.Errorf("reminder schedule %q: %w", cfg.ReminderSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.StatusSpec, s.statusJob); err != nil {
		cancel()
		return nil, fmt.Errorf("status schedule %q: %w", cfg.StatusSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron jobs scheduled", "reminders", s.cfg.ReminderSpec, "status", s.cfg.StatusSpec, "timezone", s.cfg.Location.String())
}

// Stop cancels any run in progress and waits for running jobs to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) reminderJob() {
	if _, err := s.RunReminders(s.ctx); err != nil && !errors.Is(err, ErrRunning) {
		s.logger.Error("reminder job failed", "err", err)
	}
}

func (s *Scheduler) statusJob() {
	connected := s.sender.RefreshStatus(s.ctx)
	s.logger.Info("whatsapp status", "connected", connected)
}

// RunReminders sends the reminder to every PENDING or CONFIRMED appointment starting
// tomorrow in the business timezone, waiting Gap between sends.
func (s *Scheduler) RunReminders(ctx context.Context) (Result, error) {
	if !s.runMu.TryLock() {
		return Result{}, ErrRunning
	}
	defer s.runMu.Unlock()

	if !s.sender.IsReady() {
		s.logger.WarnContext(ctx, "whatsapp not ready, reminders skipped")
		s.metrics.ReminderRun("skipped")
		return Result{Skipped: true}, nil
	}

	from, to := Tomorrow(s.cfg.Now(), s.cfg.Location)
	notices, err := s.source.ListForReminder(ctx, from, to)
	if err != nil {
		s.metrics.ReminderRun("error")
		return Result{}, fmt.Errorf("list reminders: %w", err)
	}
	s.logger.InfoContext(ctx, "sending reminders", "count", len(notices), "from", from, "to", to)

	res := Result{Total: len(notices)}
	for i, n := range notices {
		if i > 0 && s.cfg.Gap > 0 {
			if err := wait(ctx, s.cfg.Gap); err != nil {
				s.metrics.ReminderRun("canceled")
				return res, err
			}
		}
		if n.Phone == "" {
			res.Failed++
			continue
		}
		if s.sender.SendReminderAndConfirmation(ctx, n) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	s.metrics.ReminderRun("ok")
	s.logger.InfoContext(ctx, "reminders sent", "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

// Tomorrow returns the half-open range covering the calendar day after now in loc.
func Tomorrow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
