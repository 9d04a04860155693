package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const configColumns = `id, work_start_hour, work_end_hour, work_days, slot_duration, max_advance_days,
	allow_cancellation, cancellation_hours, modified_by, created_at, updated_at`

type ConfigRepository struct{}

func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

// Get returns the single configuration row, or pgx.ErrNoRows.
func (r *ConfigRepository) Get(ctx context.Context, q db.Querier) (model.Config, error) {
	var c model.Config
	var days []int32
	err := q.QueryRow(ctx, `SELECT `+configColumns+` FROM configs ORDER BY created_at ASC LIMIT 1`).Scan(
		&c.ID,
		&c.WorkStartHour,
		&c.WorkEndHour,
		&days,
		&c.SlotDuration,
		&c.MaxAdvanceDays,
		&c.AllowCancellation,
		&c.CancellationHours,
		&c.ModifiedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return model.Config{}, err
	}
	c.WorkDays = make([]int, len(days))
	for i, d := range days {
		c.WorkDays[i] = int(d)
	}
	return c, nil
}

func (r *ConfigRepository) Insert(ctx context.Context, tx pgx.Tx, c *model.Config) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO configs
			(work_start_hour, work_end_hour, work_days, slot_duration, max_advance_days,
			 allow_cancellation, cancellation_hours, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.WorkStartHour, c.WorkEndHour, days32(c.WorkDays), c.SlotDuration, c.MaxAdvanceDays,
		c.AllowCancellation, c.CancellationHours, c.ModifiedBy).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert config: %w", err)
	}
	return nil
}

func (r *ConfigRepository) Update(ctx context.Context, tx pgx.Tx, c *model.Config) error {
	err := tx.QueryRow(ctx, `
		UPDATE configs
		SET work_start_hour = $2,
			work_end_hour = $3,
			work_days = $4,
			slot_duration = $5,
			max_advance_days = $6,
			allow_cancellation = $7,
			cancellation_hours = $8,
			modified_by = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, c.ID, c.WorkStartHour, c.WorkEndHour, days32(c.WorkDays), c.SlotDuration, c.MaxAdvanceDays,
		c.AllowCancellation, c.CancellationHours, c.ModifiedBy).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	return nil
}

func days32(days []int) []int32 {
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}
