// Package reports builds the monthly rollup of appointments by specialty, weekday and hour.
package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

var weekdays = [...]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

type Period struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Summary struct {
	TotalAppointments     int            `json:"totalAppointments"`
	CompletedAppointments int            `json:"completedAppointments"`
	CompletionRate        float64        `json:"completionRate"`
	TotalRevenue          float64        `json:"totalRevenue"`
	AverageTicket         float64        `json:"averageTicket"`
	StatusBreakdown       map[string]int `json:"statusBreakdown"`
}

type SpecialtyStats struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Count          int     `json:"count"`
	TotalValue     float64 `json:"totalValue"`
	CompletedCount int     `json:"completedCount"`
	CompletedValue float64 `json:"completedValue"`
}

type Best struct {
	ByRevenue *SpecialtyStats `json:"byRevenue"`
	ByCount   *SpecialtyStats `json:"byCount"`
}

type Bucket struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type Report struct {
	Period        Period           `json:"period"`
	Summary       Summary          `json:"summary"`
	Specialties   []SpecialtyStats `json:"specialties"`
	BestSpecialty Best             `json:"bestSpecialty"`
	BusiestDays   []Bucket         `json:"busiestDays"`
	BusiestHours  []Bucket         `json:"busiestHours"`
}

// Build aggregates rows, which must already exclude canceled appointments. Revenue only
// counts COMPLETED appointments.
func Build(rows []model.ReportRow, year, month int, loc *time.Location) Report {
	from, to := MonthRange(year, month, loc)
	r := Report{
		Period:       Period{Year: year, Month: month, StartDate: from, EndDate: to.Add(-time.Second)},
		Summary:      Summary{StatusBreakdown: map[string]int{}},
		Specialties:  []SpecialtyStats{},
		BusiestDays:  []Bucket{},
		BusiestHours: []Bucket{},
	}

	specs := map[string]*SpecialtyStats{}
	var order []string
	days := map[int]*Bucket{}
	hours := map[int]*Bucket{}

	for _, row := range rows {
		done := row.Status == model.StatusCompleted
		start := row.StartTime.In(loc)

		sp, ok := specs[row.SpecialtyID]
		if !ok {
			name := row.SpecialtyName
			if name == "" {
				name = "Sem especialidade"
			}
			sp = &SpecialtyStats{ID: row.SpecialtyID, Name: name}
			specs[row.SpecialtyID] = sp
			order = append(order, row.SpecialtyID)
		}
		sp.Count++
		sp.TotalValue += row.Price

		day := bucket(days, int(start.Weekday()), weekdays[start.Weekday()])
		hour := bucket(hours, start.Hour(), fmt.Sprintf("%02d:00", start.Hour()))
		day.Count++
		hour.Count++

		r.Summary.TotalAppointments++
		r.Summary.StatusBreakdown[string(row.Status)]++
		if done {
			sp.CompletedCount++
			sp.CompletedValue += row.Price
			day.Value += row.Price
			hour.Value += row.Price
			r.Summary.CompletedAppointments++
			r.Summary.TotalRevenue += row.Price
		}
	}

	if n := r.Summary.TotalAppointments; n > 0 {
		r.Summary.CompletionRate = round2(float64(r.Summary.CompletedAppointments) / float64(n) * 100)
	}
	if n := r.Summary.CompletedAppointments; n > 0 {
		r.Summary.AverageTicket = round2(r.Summary.TotalRevenue / float64(n))
	}

	for _, id := range order {
		r.Specialties = append(r.Specialties, *specs[id])
	}
	for i := range r.Specialties {
		s := &r.Specialties[i]
		if b := r.BestSpecialty.ByRevenue; b == nil || s.CompletedValue > b.CompletedValue {
			r.BestSpecialty.ByRevenue = s
		}
		if b := r.BestSpecialty.ByCount; b == nil || s.CompletedCount > b.CompletedCount {
			r.BestSpecialty.ByCount = s
		}
	}

	r.BusiestDays = ranked(days)
	r.BusiestHours = ranked(hours)
	return r
}

// MonthRange returns [first day of month, first day of next month) in loc.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

func bucket(m map[int]*Bucket, key int, label string) *Bucket {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Label: label}
		m[key] = b
	}
	return b
}

// ranked orders buckets by count, descending, breaking ties by key.
func ranked(m map[int]*Bucket) []Bucket {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type Service struct {
	q    db.Querier
	repo *storage.ReportRepository
	loc  *time.Location
	now  func() time.Time
}

func NewService(q db.Querier, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{q: q, repo: storage.NewReportRepository(), loc: loc, now: time.Now}
}

// Monthly builds the report for year/month; zero values default to the current month.
func (s *Service) Monthly(ctx context.Context, year, month int) (Report, error) {
	now := s.now().In(s.loc)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return Report{}, apperr.BadRequest("Período inválido")
	}
	from, to := MonthRange(year, month, s.loc)
	rows, err := s.repo.MonthlyRows(ctx, s.q, from, to)
	if err != nil {
		return Report{}, apperr.Classify(err)
	}
	return Build(rows, year, month, s.loc), nil
}
