package filter

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func TestParseGrammar(t *testing.T) {
	q := url.Values{
		"status":  {"PENDING;CONFIRMED;!CANCELED"},
		"notes":   {"contains:cabelo"},
		"unknown": {"x"},
	}
	e, err := Parse(model.AppointmentSchema, q)
	require.NoError(t, err)

	want := And{
		Cond{Field: "notes", Op: OpContains, Values: []string{"cabelo"}},
		Or{
			Cond{Field: "status", Op: OpEquals, Values: []string{"PENDING"}},
			Cond{Field: "status", Op: OpEquals, Values: []string{"CONFIRMED"}},
		},
		Cond{Field: "status", Op: OpEquals, Values: []string{"CANCELED"}, Negate: true},
	}
	assert.Equal(t, want, e)
	assert.True(t, References(e, "status"))
	assert.False(t, References(e, "enabled"))
}

func TestParseNumericRangeBecomesInRange(t *testing.T) {
	e, err := Parse(model.SpecialtySchema, url.Values{"price": {"10-50"}})
	require.NoError(t, err)
	assert.Equal(t, And{Cond{Field: "price", Op: OpInRange, Values: []string{"10", "50"}}}, e)
}

func TestParseEmpty(t *testing.T) {
	e, err := Parse(model.SpecialtySchema, url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestCompile(t *testing.T) {
	loc := time.UTC
	e, err := Parse(model.AppointmentSchema, url.Values{
		"startTime": {"2026-03-10"},
		"status":    {"in:PENDING,CONFIRMED"},
		"notes":     {"startsWith:50%"},
	})
	require.NoError(t, err)

	b := NewBuilder(model.AppointmentSchema, loc, "first")
	where, err := b.Where(e)
	require.NoError(t, err)

	assert.Equal(t, "(a.notes ILIKE $2 AND (a.start_time >= $3 AND a.start_time < $4) AND a.status = ANY($5))", where)
	require.Len(t, b.Args, 5)
	assert.Equal(t, `50\%%`, b.Args[1])
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), b.Args[2])
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), b.Args[3])
	assert.Equal(t, []string{"PENDING", "CONFIRMED"}, b.Args[4])
}

func TestCompileNegationAndNull(t *testing.T) {
	e := And{
		Cond{Field: "description", Op: OpIsNull},
		Cond{Field: "maxSimultaneous", Op: OpGreaterThan, Values: []string{"1"}, Negate: true},
	}
	b := NewBuilder(model.SpecialtySchema, nil)
	where, err := b.Where(e)
	require.NoError(t, err)
	assert.Equal(t, "(description IS NULL AND NOT (max_simultaneous > $1))", where)
	assert.Equal(t, []any{1.0}, b.Args)
}

func TestCompileRejectsBadInput(t *testing.T) {
	b := NewBuilder(model.SpecialtySchema, nil)
	_, err := b.Where(Cond{Field: "price", Op: OpContains, Values: []string{"1"}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = b.Where(Cond{Field: "password", Op: OpEquals, Values: []string{"x"}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = b.Where(Cond{Field: "enabled", Op: OpEquals, Values: []string{"maybe"}})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPageFromRequest(t *testing.T) {
	h := http.Header{}
	h.Set("paginate", "true")
	h.Set("page", "3")
	h.Set("offset", "20")

	p, err := PageFromRequest(h, url.Values{"orderBy": {"name"}, "orderMethod": {"desc"}}, model.SpecialtySchema)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, "name DESC", p.OrderBy)
	assert.Equal(t, 3, p.TotalPages(41))

	p, err = PageFromRequest(http.Header{}, url.Values{}, model.SpecialtySchema)
	require.NoError(t, err)
	assert.False(t, p.Paginate)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, "name ASC", p.OrderBy)

	_, err = PageFromRequest(http.Header{}, url.Values{"orderBy": {"description"}}, model.SpecialtySchema)
	assert.ErrorIs(t, err, ErrInvalid)

	h.Set("page", "0")
	_, err = PageFromRequest(h, url.Values{}, model.SpecialtySchema)
	assert.Error(t, err)
}
