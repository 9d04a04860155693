package admission

import (
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Slot is a bookable window together with the capacity still free in it.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Remaining int       `json:"remaining"`
}

// OpenSlots returns slot windows of length duration, stepping by step through
// [windowStart, windowEnd), that still admit one more appointment for specialty.
//
// All times are expected to be in the same location (timezone).
func OpenSlots(windowStart, windowEnd time.Time, duration, step time.Duration, specialty model.Specialty, existing []model.Appointment, now time.Time) []Slot {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}
	if windowStart.Add(duration).After(windowEnd) {
		return nil
	}

	var slots []Slot
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(step) {
		if t.Before(now) {
			continue
		}
		q := Query{SpecialtyID: specialty.ID, Window: Window{Start: t, End: t.Add(duration)}}
		n := CountOverlapping(existing, q)
		if Admissible(n, specialty.MaxSimultaneous) {
			slots = append(slots, Slot{Start: t, End: t.Add(duration), Remaining: specialty.MaxSimultaneous - n})
		}
	}
	return slots
}
