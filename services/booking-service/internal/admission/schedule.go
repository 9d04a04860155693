package admission

import (
	"errors"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

var (
	ErrInPast        = errors.New("window starts in the past")
	ErrBeyondHorizon = errors.New("window beyond booking horizon")
	ErrClosedDay     = errors.New("window falls on a non-working day")
	ErrOutsideHours  = errors.New("window outside working hours")
)

// ScheduleCheck validates a window against the scheduling configuration in loc.
// A MaxAdvanceDays of 0 leaves the booking horizon open.
type ScheduleCheck struct {
	Config model.Config
	Loc    *time.Location
	Now    time.Time
	// BypassHours skips the working day and working hours rules.
	BypassHours bool
}

func (c ScheduleCheck) Validate(w Window) error {
	loc := c.Loc
	if loc == nil {
		loc = time.UTC
	}
	if w.Start.Before(c.Now) {
		return ErrInPast
	}
	if c.Config.MaxAdvanceDays > 0 {
		horizon := startOfDay(c.Now.In(loc)).AddDate(0, 0, c.Config.MaxAdvanceDays+1)
		if !w.Start.Before(horizon) {
			return ErrBeyondHorizon
		}
	}
	if c.BypassHours {
		return nil
	}

	start := w.Start.In(loc)
	if !c.Config.WorksOn(start.Weekday()) {
		return ErrClosedDay
	}
	day := startOfDay(start)
	open := day.Add(time.Duration(c.Config.WorkStartHour) * time.Hour)
	closeAt := day.Add(time.Duration(c.Config.WorkEndHour) * time.Hour)
	if start.Before(open) || w.End.After(closeAt) {
		return ErrOutsideHours
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
