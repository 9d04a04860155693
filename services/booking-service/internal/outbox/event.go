package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const (
	AppointmentBooked      = "appointment.booked.v1"
	AppointmentRescheduled = "appointment.rescheduled.v1"
	AppointmentUpdated     = "appointment.updated.v1"
	AppointmentConfirmed   = "appointment.confirmed.v1"
	AppointmentCanceled    = "appointment.canceled.v1"
	AppointmentDeleted     = "appointment.deleted.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type appointmentPayload struct {
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	SpecialtyID   string    `json:"specialtyId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Status        string    `json:"status"`
	ModifiedBy    string    `json:"modifiedBy,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// AppointmentEvent snapshots a into an event of the given type.
func AppointmentEvent(eventType string, a model.Appointment, at time.Time) (Event, error) {
	p := appointmentPayload{
		AppointmentID: a.ID,
		UserID:        a.UserID,
		SpecialtyID:   a.SpecialtyID,
		StartTime:     a.StartTime.UTC(),
		EndTime:       a.EndTime.UTC(),
		Status:        string(a.Status),
		OccurredAt:    at.UTC(),
	}
	if a.ModifiedBy != nil {
		p.ModifiedBy = *a.ModifiedBy
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		AggregateID:   a.ID,
		EventType:     eventType,
		Payload:       raw,
	}, nil
}
