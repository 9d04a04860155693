package model

import "time"

// ReportRow is one appointment as seen by the monthly rollup.
type ReportRow struct {
	SpecialtyID   string
	SpecialtyName string
	Price         float64
	Status        AppointmentStatus
	StartTime     time.Time
}
