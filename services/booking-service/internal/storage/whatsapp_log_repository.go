package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const whatsappLogColumns = `id, phone, message, message_type, status, appointment_id, error,
	sent_at, delivered_at, read_at, created_at, updated_at`

type WhatsAppLogRepository struct {
	loc *time.Location
}

func NewWhatsAppLogRepository(loc *time.Location) *WhatsAppLogRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &WhatsAppLogRepository{loc: loc}
}

func (r *WhatsAppLogRepository) Insert(ctx context.Context, q db.Querier, l *model.WhatsAppLog) error {
	err := q.QueryRow(ctx, `
		INSERT INTO whatsapp_logs (phone, message, message_type, status, appointment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, l.Phone, l.Message, string(l.MessageType), string(l.Status), l.AppointmentID).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert whatsapp log: %w", err)
	}
	return nil
}

func (r *WhatsAppLogRepository) MarkSent(ctx context.Context, q db.Querier, id string, at time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE whatsapp_logs SET status = 'SENT', sent_at = $2, error = NULL, updated_at = now() WHERE id = $1
	`, id, at)
	return err
}

func (r *WhatsAppLogRepository) MarkFailed(ctx context.Context, q db.Querier, id, reason string) error {
	_, err := q.Exec(ctx, `
		UPDATE whatsapp_logs SET status = 'FAILED', error = $2, updated_at = now() WHERE id = $1
	`, id, reason)
	return err
}

func (r *WhatsAppLogRepository) List(ctx context.Context, q db.Querier, expr filter.Expr, page filter.Page) ([]model.WhatsAppLog, int, error) {
	lq := listQuery{schema: model.WhatsAppLogSchema, table: "whatsapp_logs", columns: whatsappLogColumns}
	return listPage(ctx, q, lq, r.loc, expr, page, scanWhatsAppLog)
}

func (r *WhatsAppLogRepository) ListByPhone(ctx context.Context, q db.Querier, phone string, limit int) ([]model.WhatsAppLog, error) {
	rows, err := q.Query(ctx, `SELECT `+whatsappLogColumns+` FROM whatsapp_logs
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, phone, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWhatsAppLog)
}

func (r *WhatsAppLogRepository) ListByAppointment(ctx context.Context, q db.Querier, appointmentID string) ([]model.WhatsAppLog, error) {
	rows, err := q.Query(ctx, `SELECT `+whatsappLogColumns+` FROM whatsapp_logs
		WHERE appointment_id = $1
		ORDER BY created_at DESC
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWhatsAppLog)
}

func (r *WhatsAppLogRepository) ListFailed(ctx context.Context, q db.Querier, limit int) ([]model.WhatsAppLog, error) {
	rows, err := q.Query(ctx, `SELECT `+whatsappLogColumns+` FROM whatsapp_logs
		WHERE status = 'FAILED'
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWhatsAppLog)
}

func scanWhatsAppLog(row pgx.Row) (model.WhatsAppLog, error) {
	var l model.WhatsAppLog
	var msgType, status string
	err := row.Scan(
		&l.ID,
		&l.Phone,
		&l.Message,
		&msgType,
		&status,
		&l.AppointmentID,
		&l.Error,
		&l.SentAt,
		&l.DeliveredAt,
		&l.ReadAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	l.MessageType = model.MessageType(msgType)
	l.Status = model.MessageStatus(status)
	return l, err
}
