// Package whatsapp sends the client-facing messages of the salon over a WhatsApp
// gateway and records every attempt in whatsapp_logs.
package whatsapp

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

const errNotReady = "WhatsApp client não está pronto"

// LogStore persists message attempts.
type LogStore interface {
	Insert(ctx context.Context, l *model.WhatsAppLog) error
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error

	List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.WhatsAppLog, int, error)
	ByPhone(ctx context.Context, phone string, limit int) ([]model.WhatsAppLog, error)
	ByAppointment(ctx context.Context, appointmentID string) ([]model.WhatsAppLog, error)
	Failed(ctx context.Context, limit int) ([]model.WhatsAppLog, error)
}

// PGLogStore is the LogStore on PostgreSQL. Each call runs on its own pool connection.
type PGLogStore struct {
	q    db.Querier
	repo *storage.WhatsAppLogRepository
}

func NewPGLogStore(q db.Querier, loc *time.Location) *PGLogStore {
	return &PGLogStore{q: q, repo: storage.NewWhatsAppLogRepository(loc)}
}

func (s *PGLogStore) Insert(ctx context.Context, l *model.WhatsAppLog) error {
	return s.repo.Insert(ctx, s.q, l)
}

func (s *PGLogStore) MarkSent(ctx context.Context, id string, at time.Time) error {
	return s.repo.MarkSent(ctx, s.q, id, at)
}

func (s *PGLogStore) MarkFailed(ctx context.Context, id, reason string) error {
	return s.repo.MarkFailed(ctx, s.q, id, reason)
}

func (s *PGLogStore) List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.WhatsAppLog, int, error) {
	return s.repo.List(ctx, s.q, expr, page)
}

func (s *PGLogStore) ByPhone(ctx context.Context, phone string, limit int) ([]model.WhatsAppLog, error) {
	return s.repo.ListByPhone(ctx, s.q, phone, limit)
}

func (s *PGLogStore) ByAppointment(ctx context.Context, appointmentID string) ([]model.WhatsAppLog, error) {
	return s.repo.ListByAppointment(ctx, s.q, appointmentID)
}

func (s *PGLogStore) Failed(ctx context.Context, limit int) ([]model.WhatsAppLog, error) {
	return s.repo.ListFailed(ctx, s.q, limit)
}

// Status is what the admin panel shows about the session.
type Status struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

type Messenger struct {
	gateway Gateway
	logs    LogStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time

	ready atomic.Bool
}

func NewMessenger(gateway Gateway, logs LogStore, logger *slog.Logger, m *metrics.Metrics, loc *time.Location) *Messenger {
	if loc == nil {
		loc = time.UTC
	}
	return &Messenger{gateway: gateway, logs: logs, logger: logger, metrics: m, loc: loc, now: time.Now}
}

func (m *Messenger) IsReady() bool {
	return m.ready.Load()
}

// Initialize starts the gateway session. The session usually needs a QR scan before it
// reports WORKING, so readiness is picked up later by RefreshStatus.
func (m *Messenger) Initialize(ctx context.Context) error {
	if m.IsReady() {
		return nil
	}
	if err := m.gateway.Start(ctx); err != nil {
		return err
	}
	m.RefreshStatus(ctx)
	return nil
}

func (m *Messenger) Disconnect(ctx context.Context) error {
	m.ready.Store(false)
	return m.gateway.Logout(ctx)
}

// RefreshStatus asks the gateway for the session state and updates readiness.
func (m *Messenger) RefreshStatus(ctx context.Context) bool {
	state, err := m.gateway.State(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "whatsapp status check failed", "err", err)
	}
	ok := err == nil && state == SessionWorking
	if was := m.ready.Swap(ok); was != ok {
		m.logger.InfoContext(ctx, "whatsapp readiness changed", "ready", ok, "state", state)
	}
	return ok
}

func (m *Messenger) Status(ctx context.Context) Status {
	if m.RefreshStatus(ctx) {
		return Status{Connected: true, Message: "WhatsApp conectado"}
	}
	return Status{Connected: false, Message: "WhatsApp desconectado"}
}

// SendMessage records a PENDING log, sends, and marks the log SENT or FAILED. It reports
// whether the message left.
func (m *Messenger) SendMessage(ctx context.Context, phone, text string, kind model.MessageType, appointmentID string) bool {
	entry := &model.WhatsAppLog{Phone: phone, Message: text, MessageType: kind, Status: model.MessagePending}
	if appointmentID != "" {
		entry.AppointmentID = &appointmentID
	}
	if err := m.logs.Insert(ctx, entry); err != nil {
		m.logger.ErrorContext(ctx, "whatsapp log insert failed", "phone", phone, "err", err)
		m.metrics.Message(string(kind), string(model.MessageFailed))
		return false
	}

	if !m.IsReady() {
		m.fail(ctx, entry, errNotReady)
		return false
	}
	if err := m.gateway.SendText(ctx, FormatPhone(phone), text); err != nil {
		m.fail(ctx, entry, err.Error())
		return false
	}

	if err := m.logs.MarkSent(ctx, entry.ID, m.now()); err != nil {
		m.logger.ErrorContext(ctx, "whatsapp log update failed", "log_id", entry.ID, "err", err)
	}
	m.metrics.Message(string(kind), string(model.MessageSent))
	m.logger.InfoContext(ctx, "whatsapp message sent", "log_id", entry.ID, "type", kind)
	return true
}

func (m *Messenger) fail(ctx context.Context, entry *model.WhatsAppLog, reason string) {
	m.logger.WarnContext(ctx, "whatsapp message failed", "log_id", entry.ID, "type", entry.MessageType, "reason", reason)
	if err := m.logs.MarkFailed(ctx, entry.ID, reason); err != nil {
		m.logger.ErrorContext(ctx, "whatsapp log update failed", "log_id", entry.ID, "err", err)
	}
	m.metrics.Message(string(entry.MessageType), string(model.MessageFailed))
}

func (m *Messenger) SendAppointmentConfirmation(ctx context.Context, n model.Notice) bool {
	return m.SendMessage(ctx, n.Phone, confirmationText(n, m.loc), model.MessageAppointmentConfirmation, n.AppointmentID)
}

func (m *Messenger) SendAdminConfirmation(ctx context.Context, n model.Notice) bool {
	return m.SendMessage(ctx, n.Phone, adminConfirmationText(n, m.loc), model.MessageAppointmentConfirmation, n.AppointmentID)
}

func (m *Messenger) SendReminderAndConfirmation(ctx context.Context, n model.Notice) bool {
	return m.SendMessage(ctx, n.Phone, reminderText(n, m.loc), model.MessageReminder, n.AppointmentID)
}

// Reply answers an inbound SIM/NÃO message.
func (m *Messenger) Reply(ctx context.Context, phone string, confirmed bool) bool {
	text := ReplyCanceled
	if confirmed {
		text = ReplyConfirmed
	}
	return m.SendMessage(ctx, phone, text, model.MessageCustom, "")
}

func (m *Messenger) Logs(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.WhatsAppLog, int, error) {
	return m.logs.List(ctx, expr, page)
}

func (m *Messenger) LogsByPhone(ctx context.Context, phone string, limit int) ([]model.WhatsAppLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return m.logs.ByPhone(ctx, phone, limit)
}

func (m *Messenger) LogsByAppointment(ctx context.Context, appointmentID string) ([]model.WhatsAppLog, error) {
	return m.logs.ByAppointment(ctx, appointmentID)
}

func (m *Messenger) FailedLogs(ctx context.Context) ([]model.WhatsAppLog, error) {
	return m.logs.Failed(ctx, 100)
}
