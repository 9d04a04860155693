package model

import "time"

type Specialty struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	AvgDuration     int       `json:"avgDuration"`
	Price           float64   `json:"price"`
	MaxSimultaneous int       `json:"maxSimultaneous"`
	Enabled         bool      `json:"enabled"`
	Active          bool      `json:"active"`
	ModifiedBy      *string   `json:"modifiedBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type SpecialtySummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	AvgDuration     int     `json:"avgDuration"`
	MaxSimultaneous int     `json:"maxSimultaneous"`
	Price           float64 `json:"price,omitempty"`
}

func (s Specialty) Summary() SpecialtySummary {
	return SpecialtySummary{
		ID:              s.ID,
		Name:            s.Name,
		AvgDuration:     s.AvgDuration,
		MaxSimultaneous: s.MaxSimultaneous,
		Price:           s.Price,
	}
}
