package model

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCanceled  AppointmentStatus = "CANCELED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
	StatusLate      AppointmentStatus = "LATE"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted, StatusNoShow, StatusLate:
		return true
	}
	return false
}

// Occupies reports whether an appointment in this status holds capacity.
func (s AppointmentStatus) Occupies() bool {
	return s != StatusCanceled && s != StatusNoShow
}

// Terminal statuses cannot be canceled.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusNoShow
}

type Appointment struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	SpecialtyID string            `json:"specialtyId"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Status      AppointmentStatus `json:"status"`
	Notes       *string           `json:"notes"`
	AdminNotes  *string           `json:"adminNotes"`
	ConfirmedAt *time.Time        `json:"confirmedAt"`
	CanceledAt  *time.Time        `json:"canceledAt"`
	Enabled     bool              `json:"enabled"`
	Active      bool              `json:"active"`
	ModifiedBy  *string           `json:"modifiedBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`

	User      *UserSummary      `json:"user,omitempty"`
	Specialty *SpecialtySummary `json:"specialty,omitempty"`
}

// PublicAppointment is what anonymous callers see when browsing occupied windows.
type PublicAppointment struct {
	ID          string            `json:"id"`
	SpecialtyID string            `json:"specialtyId"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Status      AppointmentStatus `json:"status"`
	Specialty   SpecialtySummary  `json:"specialty"`
}

// Notice is everything a client-facing message about one appointment needs.
type Notice struct {
	AppointmentID   string
	Phone           string
	Name            string
	Specialty       string
	Start           time.Time
	DurationMinutes int
}

// DisplayName falls back to "Cliente" when the client never gave a name.
func (n Notice) DisplayName() string {
	if n.Name == "" {
		return "Cliente"
	}
	return n.Name
}
