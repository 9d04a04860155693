// Package admission decides whether a window may be booked against a specialty's capacity.
package admission

import (
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.Start.Before(w.End)
}

// Overlaps is symmetric; windows that only touch do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Query selects the appointments competing with a candidate window.
type Query struct {
	SpecialtyID string
	Window      Window
	ExcludeID   string
}

// Counts reports whether a stored appointment takes part in q's overlap count.
func (q Query) Counts(a model.Appointment) bool {
	if a.SpecialtyID != q.SpecialtyID {
		return false
	}
	if !a.Enabled || !a.Active || !a.Status.Occupies() {
		return false
	}
	if q.ExcludeID != "" && a.ID == q.ExcludeID {
		return false
	}
	return q.Window.Overlaps(Window{Start: a.StartTime, End: a.EndTime})
}

// CountOverlapping is the in-memory form of the storage overlap count.
func CountOverlapping(existing []model.Appointment, q Query) int {
	n := 0
	for _, a := range existing {
		if q.Counts(a) {
			n++
		}
	}
	return n
}
