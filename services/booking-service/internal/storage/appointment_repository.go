package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/admission"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const appointmentColumns = `
	a.id, a.user_id, a.specialty_id, a.start_time, a.end_time, a.status, a.notes, a.admin_notes,
	a.confirmed_at, a.canceled_at, a.enabled, a.active, a.modified_by, a.created_at, a.updated_at,
	u.phone, u.name, u.role, s.name, s.avg_duration, s.max_simultaneous, s.price::float8`

const appointmentFrom = `
	FROM appointments a
	JOIN users u ON u.id = a.user_id
	JOIN specialties s ON s.id = a.specialty_id`

// occupying is the predicate shared by every query that must agree with admission.Query.Counts.
const occupying = `a.enabled AND a.active AND a.status NOT IN ('CANCELED', 'NO_SHOW')`

type AppointmentRepository struct {
	loc *time.Location
}

// NewAppointmentRepository uses loc to resolve bare dates in list filters.
func NewAppointmentRepository(loc *time.Location) *AppointmentRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentRepository{loc: loc}
}

func (r *AppointmentRepository) Get(ctx context.Context, q db.Querier, id string) (model.Appointment, error) {
	row := q.QueryRow(ctx, `SELECT `+appointmentColumns+appointmentFrom+` WHERE a.id = $1`, id)
	return scanAppointment(row)
}

// GetForUpdate locks the appointment row until the surrounding transaction ends.
func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `SELECT `+appointmentColumns+appointmentFrom+` WHERE a.id = $1 FOR UPDATE OF a`, id)
	return scanAppointment(row)
}

func (r *AppointmentRepository) Insert(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(user_id, specialty_id, start_time, end_time, status, notes, admin_notes, confirmed_at, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, enabled, active, created_at, updated_at
	`, a.UserID, a.SpecialtyID, a.StartTime, a.EndTime, string(a.Status), a.Notes, a.AdminNotes, a.ConfirmedAt, a.ModifiedBy).
		Scan(&a.ID, &a.Enabled, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// Update writes every mutable column of a back to its row.
func (r *AppointmentRepository) Update(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET specialty_id = $2,
			start_time = $3,
			end_time = $4,
			status = $5,
			notes = $6,
			admin_notes = $7,
			confirmed_at = $8,
			canceled_at = $9,
			modified_by = $10,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, a.ID, a.SpecialtyID, a.StartTime, a.EndTime, string(a.Status), a.Notes, a.AdminNotes, a.ConfirmedAt, a.CanceledAt, a.ModifiedBy).
		Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update appointment %s: %w", a.ID, err)
	}
	return nil
}

func (r *AppointmentRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id, modifiedBy string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET enabled = false, active = false, modified_by = NULLIF($2, ''), updated_at = now()
		WHERE id = $1
	`, id, modifiedBy)
	if err != nil {
		return fmt.Errorf("delete appointment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountOverlapping counts appointments of q.SpecialtyID holding capacity in q.Window.
func (r *AppointmentRepository) CountOverlapping(ctx context.Context, q db.Querier, query admission.Query) (int, error) {
	sql := `
		SELECT count(*)
		FROM appointments a
		WHERE a.specialty_id = $1
			AND ` + occupying + `
			AND a.start_time < $3
			AND a.end_time > $2`
	args := []any{query.SpecialtyID, query.Window.Start, query.Window.End}
	if query.ExcludeID != "" {
		sql += ` AND a.id <> $4`
		args = append(args, query.ExcludeID)
	}

	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count overlapping: %w", err)
	}
	return n, nil
}

// ListOccupying returns the appointments of specialtyID holding capacity anywhere in [from, to).
func (r *AppointmentRepository) ListOccupying(ctx context.Context, q db.Querier, specialtyID string, from, to time.Time) ([]model.Appointment, error) {
	rows, err := q.Query(ctx, `SELECT `+appointmentColumns+appointmentFrom+`
		WHERE a.specialty_id = $1
			AND `+occupying+`
			AND a.start_time < $3
			AND a.end_time > $2
		ORDER BY a.start_time ASC
	`, specialtyID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}

// List returns one page of appointments matching expr plus the total match count.
// Soft-deleted rows are hidden unless expr filters on enabled.
func (r *AppointmentRepository) List(ctx context.Context, q db.Querier, expr filter.Expr, page filter.Page) ([]model.Appointment, int, error) {
	b := filter.NewBuilder(model.AppointmentSchema, r.loc)
	where, err := b.Where(expr)
	if err != nil {
		return nil, 0, err
	}
	if !filter.References(expr, "enabled") {
		where += " AND a.enabled"
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*)`+appointmentFrom+` WHERE `+where, b.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	limit, offset := b.Arg(page.Limit()), b.Arg(page.Offset())
	rows, err := q.Query(ctx, `SELECT `+appointmentColumns+appointmentFrom+`
		WHERE `+where+`
		ORDER BY `+page.OrderBy+`
		LIMIT `+limit+` OFFSET `+offset, b.Args...)
	if err != nil {
		return nil, 0, err
	}
	appts, err := collect(rows, scanAppointment)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

// ListPublic returns enabled, active, non-canceled appointments starting within [from, to].
func (r *AppointmentRepository) ListPublic(ctx context.Context, q db.Querier, from, to time.Time) ([]model.PublicAppointment, error) {
	rows, err := q.Query(ctx, `
		SELECT a.id, a.specialty_id, a.start_time, a.end_time, a.status,
			s.id, s.name, s.avg_duration, s.max_simultaneous
		FROM appointments a
		JOIN specialties s ON s.id = a.specialty_id
		WHERE a.enabled AND a.active
			AND a.status <> 'CANCELED'
			AND a.start_time >= $1
			AND a.start_time <= $2
		ORDER BY a.start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PublicAppointment
	for rows.Next() {
		var p model.PublicAppointment
		var status string
		if err := rows.Scan(&p.ID, &p.SpecialtyID, &p.StartTime, &p.EndTime, &status,
			&p.Specialty.ID, &p.Specialty.Name, &p.Specialty.AvgDuration, &p.Specialty.MaxSimultaneous); err != nil {
			return nil, err
		}
		p.Status = model.AppointmentStatus(status)
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// NextForPhone finds, and locks, the earliest PENDING or CONFIRMED appointment of the
// client whose phone digits match one of phones, starting within [from, to].
func (r *AppointmentRepository) NextForPhone(ctx context.Context, tx pgx.Tx, phones []string, from, to time.Time) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `SELECT `+appointmentColumns+appointmentFrom+`
		WHERE regexp_replace(u.phone, '\D', '', 'g') = ANY($1)
			AND a.enabled AND a.active
			AND a.status IN ('PENDING', 'CONFIRMED')
			AND a.start_time >= $2
			AND a.start_time <= $3
		ORDER BY a.start_time ASC
		LIMIT 1
		FOR UPDATE OF a
	`, phones, from, to)
	return scanAppointment(row)
}

// ListForReminder returns a notice for every PENDING or CONFIRMED appointment starting in [from, to).
func (r *AppointmentRepository) ListForReminder(ctx context.Context, q db.Querier, from, to time.Time) ([]model.Notice, error) {
	rows, err := q.Query(ctx, `
		SELECT a.id, u.phone, COALESCE(u.name, ''), s.name, a.start_time, s.avg_duration
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		JOIN specialties s ON s.id = a.specialty_id
		WHERE a.enabled AND a.active
			AND a.status IN ('PENDING', 'CONFIRMED')
			AND a.start_time >= $1
			AND a.start_time < $2
		ORDER BY a.start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notice
	for rows.Next() {
		var n model.Notice
		if err := rows.Scan(&n.AppointmentID, &n.Phone, &n.Name, &n.Specialty, &n.Start, &n.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// CountEnabledBySpecialty counts the enabled appointments that block deleting a specialty.
func (r *AppointmentRepository) CountEnabledBySpecialty(ctx context.Context, q db.Querier, specialtyID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE specialty_id = $1 AND enabled`, specialtyID).Scan(&n)
	return n, err
}

// CountEnabledByUser counts the enabled appointments that block deleting a user.
func (r *AppointmentRepository) CountEnabledByUser(ctx context.Context, q db.Querier, userID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE user_id = $1 AND enabled`, userID).Scan(&n)
	return n, err
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	var status, role string
	var user model.UserSummary
	var spec model.SpecialtySummary
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.SpecialtyID,
		&a.StartTime,
		&a.EndTime,
		&status,
		&a.Notes,
		&a.AdminNotes,
		&a.ConfirmedAt,
		&a.CanceledAt,
		&a.Enabled,
		&a.Active,
		&a.ModifiedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&user.Phone,
		&user.Name,
		&role,
		&spec.Name,
		&spec.AvgDuration,
		&spec.MaxSimultaneous,
		&spec.Price,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	a.Status = model.AppointmentStatus(status)
	user.ID = a.UserID
	user.Role = model.Role(role)
	spec.ID = a.SpecialtyID
	a.User = &user
	a.Specialty = &spec
	return a, nil
}
