package filter

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 500
	// unpagedLimit caps lists requested without the paginate header.
	unpagedLimit = 1000
)

// Page is the pagination and ordering requested for a list.
type Page struct {
	Paginate bool
	Number   int
	Size     int
	OrderBy  string
}

// PageFromRequest reads the paginate/page/offset headers and the orderBy and
// orderMethod query parameters. orderBy must name a sortable field of s.
func PageFromRequest(h http.Header, q url.Values, s model.Schema) (Page, error) {
	p := Page{Number: 1, Size: DefaultPageSize, OrderBy: s.DefaultOrder}
	if strings.EqualFold(strings.TrimSpace(h.Get("paginate")), "true") {
		p.Paginate = true
		if raw := strings.TrimSpace(h.Get("page")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return Page{}, fmt.Errorf("%w: page %q", ErrInvalid, raw)
			}
			p.Number = n
		}
		if raw := strings.TrimSpace(h.Get("offset")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return Page{}, fmt.Errorf("%w: offset %q", ErrInvalid, raw)
			}
			p.Size = min(n, MaxPageSize)
		}
	}

	if field := strings.TrimSpace(q.Get("orderBy")); field != "" {
		f, ok := s.Field(field)
		if !ok || !f.Sortable {
			return Page{}, fmt.Errorf("%w: orderBy %q", ErrInvalid, field)
		}
		dir := "ASC"
		if strings.EqualFold(strings.TrimSpace(q.Get("orderMethod")), "desc") {
			dir = "DESC"
		}
		p.OrderBy = f.Column + " " + dir
	}
	return p, nil
}

func (p Page) Limit() int {
	if !p.Paginate {
		return unpagedLimit
	}
	return p.Size
}

func (p Page) Offset() int {
	if !p.Paginate {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p Page) TotalPages(total int) int {
	size := p.Limit()
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
