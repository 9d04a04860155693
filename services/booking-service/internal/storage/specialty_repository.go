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

const specialtyColumns = `id, name, description, avg_duration, price::float8, max_simultaneous,
	enabled, active, modified_by, created_at, updated_at`

type SpecialtyRepository struct {
	loc *time.Location
}

func NewSpecialtyRepository(loc *time.Location) *SpecialtyRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &SpecialtyRepository{loc: loc}
}

func (r *SpecialtyRepository) Get(ctx context.Context, q db.Querier, id string) (model.Specialty, error) {
	return scanSpecialty(q.QueryRow(ctx, `SELECT `+specialtyColumns+` FROM specialties WHERE id = $1`, id))
}

// GetBookable returns the specialty only while it is enabled and active.
func (r *SpecialtyRepository) GetBookable(ctx context.Context, q db.Querier, id string) (model.Specialty, error) {
	return scanSpecialty(q.QueryRow(ctx, `SELECT `+specialtyColumns+` FROM specialties WHERE id = $1 AND enabled AND active`, id))
}

func (r *SpecialtyRepository) ListBookable(ctx context.Context, q db.Querier) ([]model.Specialty, error) {
	rows, err := q.Query(ctx, `SELECT `+specialtyColumns+` FROM specialties WHERE enabled AND active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSpecialty)
}

func (r *SpecialtyRepository) List(ctx context.Context, q db.Querier, expr filter.Expr, page filter.Page) ([]model.Specialty, int, error) {
	lq := listQuery{schema: model.SpecialtySchema, table: "specialties", columns: specialtyColumns}
	if !filter.References(expr, "enabled") {
		lq.base = "enabled"
	}
	return listPage(ctx, q, lq, r.loc, expr, page, scanSpecialty)
}

func (r *SpecialtyRepository) Insert(ctx context.Context, tx pgx.Tx, s *model.Specialty) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO specialties (name, description, avg_duration, price, max_simultaneous, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, enabled, active, created_at, updated_at
	`, s.Name, s.Description, s.AvgDuration, s.Price, s.MaxSimultaneous, s.ModifiedBy).
		Scan(&s.ID, &s.Enabled, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert specialty: %w", err)
	}
	return nil
}

func (r *SpecialtyRepository) Update(ctx context.Context, tx pgx.Tx, s *model.Specialty) error {
	err := tx.QueryRow(ctx, `
		UPDATE specialties
		SET name = $2,
			description = $3,
			avg_duration = $4,
			price = $5,
			max_simultaneous = $6,
			active = $7,
			modified_by = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, s.ID, s.Name, s.Description, s.AvgDuration, s.Price, s.MaxSimultaneous, s.Active, s.ModifiedBy).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update specialty %s: %w", s.ID, err)
	}
	return nil
}

func (r *SpecialtyRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id, modifiedBy string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE specialties
		SET enabled = false, active = false, modified_by = NULLIF($2, ''), updated_at = now()
		WHERE id = $1 AND enabled
	`, id, modifiedBy)
	if err != nil {
		return fmt.Errorf("delete specialty %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSpecialty(row pgx.Row) (model.Specialty, error) {
	var s model.Specialty
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.AvgDuration,
		&s.Price,
		&s.MaxSimultaneous,
		&s.Enabled,
		&s.Active,
		&s.ModifiedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}
