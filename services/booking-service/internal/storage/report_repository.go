package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type ReportRepository struct{}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// MonthlyRows returns the enabled, active, non-canceled appointments starting within [from, to).
func (r *ReportRepository) MonthlyRows(ctx context.Context, q db.Querier, from, to time.Time) ([]model.ReportRow, error) {
	rows, err := q.Query(ctx, `
		SELECT a.specialty_id, s.name, s.price::float8, a.status, a.start_time
		FROM appointments a
		JOIN specialties s ON s.id = a.specialty_id
		WHERE a.start_time >= $1
			AND a.start_time < $2
			AND a.status <> 'CANCELED'
			AND a.enabled AND a.active
		ORDER BY a.start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReportRow
	for rows.Next() {
		var row model.ReportRow
		var status string
		if err := rows.Scan(&row.SpecialtyID, &row.SpecialtyName, &row.Price, &status, &row.StartTime); err != nil {
			return nil, err
		}
		row.Status = model.AppointmentStatus(status)
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
