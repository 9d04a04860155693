package model

import "time"

// Config is the singleton scheduling configuration.
type Config struct {
	ID                string    `json:"id"`
	WorkStartHour     int       `json:"workStartHour"`
	WorkEndHour       int       `json:"workEndHour"`
	WorkDays          []int     `json:"workDays"`
	SlotDuration      int       `json:"slotDuration"`
	MaxAdvanceDays    int       `json:"maxAdvanceDays"`
	AllowCancellation bool      `json:"allowCancellation"`
	CancellationHours int       `json:"cancellationHours"`
	ModifiedBy        *string   `json:"modifiedBy"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ConfigPatch carries the fields a write wants to change; nil means keep.
type ConfigPatch struct {
	WorkStartHour     *int  `json:"workStartHour"`
	WorkEndHour       *int  `json:"workEndHour"`
	WorkDays          []int `json:"workDays"`
	SlotDuration      *int  `json:"slotDuration"`
	MaxAdvanceDays    *int  `json:"maxAdvanceDays"`
	AllowCancellation *bool `json:"allowCancellation"`
	CancellationHours *int  `json:"cancellationHours"`
}

// DefaultConfig is the configuration a fresh install starts from.
func DefaultConfig() Config {
	return Config{
		WorkStartHour:     8,
		WorkEndHour:       18,
		WorkDays:          []int{1, 2, 3, 4, 5},
		SlotDuration:      30,
		MaxAdvanceDays:    30,
		AllowCancellation: true,
		CancellationHours: 24,
	}
}

func (c Config) Apply(p ConfigPatch) Config {
	if p.WorkStartHour != nil {
		c.WorkStartHour = *p.WorkStartHour
	}
	if p.WorkEndHour != nil {
		c.WorkEndHour = *p.WorkEndHour
	}
	if p.WorkDays != nil {
		c.WorkDays = append([]int(nil), p.WorkDays...)
	}
	if p.SlotDuration != nil {
		c.SlotDuration = *p.SlotDuration
	}
	if p.MaxAdvanceDays != nil {
		c.MaxAdvanceDays = *p.MaxAdvanceDays
	}
	if p.AllowCancellation != nil {
		c.AllowCancellation = *p.AllowCancellation
	}
	if p.CancellationHours != nil {
		c.CancellationHours = *p.CancellationHours
	}
	return c
}

func (c Config) WorksOn(day time.Weekday) bool {
	for _, d := range c.WorkDays {
		if d == int(day) {
			return true
		}
	}
	return false
}
