package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// ErrInvalid wraps every parse and compile failure caused by the caller's input.
var ErrInvalid = errors.New("invalid filter")

// Builder accumulates positional arguments while rendering a WHERE clause.
type Builder struct {
	Schema model.Schema
	Loc    *time.Location
	Args   []any
}

// NewBuilder starts numbering placeholders after the args already present.
func NewBuilder(s model.Schema, loc *time.Location, args ...any) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{Schema: s, Loc: loc, Args: args}
}

func (b *Builder) Arg(v any) string {
	b.Args = append(b.Args, v)
	return "$" + strconv.Itoa(len(b.Args))
}

// Where renders e as SQL; a nil expression renders as "TRUE".
func (b *Builder) Where(e Expr) (string, error) {
	switch n := e.(type) {
	case nil:
		return "TRUE", nil
	case Cond:
		return b.cond(n)
	case And:
		return b.join(n, " AND ")
	case Or:
		return b.join(n, " OR ")
	default:
		return "", fmt.Errorf("%w: node %T", ErrInvalid, e)
	}
}

func (b *Builder) join(nodes []Expr, sep string) (string, error) {
	if len(nodes) == 0 {
		return "TRUE", nil
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s, err := b.Where(n)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *Builder) cond(c Cond) (string, error) {
	f, ok := b.Schema.Field(c.Field)
	if !ok || !f.Filterable {
		return "", fmt.Errorf("%w: field %q", ErrInvalid, c.Field)
	}
	s, err := b.predicate(f, c)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Field, err)
	}
	if c.Negate {
		return "NOT (" + s + ")", nil
	}
	return s, nil
}

func (b *Builder) predicate(f model.FieldSpec, c Cond) (string, error) {
	col := f.Column
	switch c.Op {
	case OpIsNull:
		return col + " IS NULL", nil
	case OpContains, OpStartsWith, OpEndsWith:
		if f.Type != model.FieldString {
			return "", fmt.Errorf("%w: %s on non-text field", ErrInvalid, c.Op)
		}
		pattern := escapeLike(c.Values[0])
		switch c.Op {
		case OpContains:
			pattern = "%" + pattern + "%"
		case OpStartsWith:
			pattern = pattern + "%"
		case OpEndsWith:
			pattern = "%" + pattern
		}
		return col + " ILIKE " + b.Arg(pattern), nil
	case OpIn:
		vals, err := b.values(f, c.Values)
		if err != nil {
			return "", err
		}
		return col + " = ANY(" + b.Arg(vals) + ")", nil
	case OpInRange:
		lo, err := b.value(f, c.Values[0])
		if err != nil {
			return "", err
		}
		hi, err := b.value(f, c.Values[1])
		if err != nil {
			return "", err
		}
		if f.Type == model.FieldTime && isDateOnly(c.Values[1]) {
			hi = hi.(time.Time).AddDate(0, 0, 1)
			return "(" + col + " >= " + b.Arg(lo) + " AND " + col + " < " + b.Arg(hi) + ")", nil
		}
		return col + " BETWEEN " + b.Arg(lo) + " AND " + b.Arg(hi), nil
	case OpGreaterThan, OpLessThan:
		v, err := b.value(f, c.Values[0])
		if err != nil {
			return "", err
		}
		op := " > "
		if c.Op == OpLessThan {
			op = " < "
		}
		return col + op + b.Arg(v), nil
	case OpEquals:
		v, err := b.value(f, c.Values[0])
		if err != nil {
			return "", err
		}
		if f.Type == model.FieldTime && isDateOnly(c.Values[0]) {
			day := v.(time.Time)
			return "(" + col + " >= " + b.Arg(day) + " AND " + col + " < " + b.Arg(day.AddDate(0, 0, 1)) + ")", nil
		}
		return col + " = " + b.Arg(v), nil
	default:
		return "", fmt.Errorf("%w: op %q", ErrInvalid, c.Op)
	}
}

var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

func (b *Builder) value(f model.FieldSpec, raw string) (any, error) {
	switch f.Type {
	case model.FieldNumber:
		v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(raw, ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrInvalid, raw)
		}
		return v, nil
	case model.FieldBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: boolean %q", ErrInvalid, raw)
		}
		return v, nil
	case model.FieldTime:
		return parseTime(raw, b.Loc)
	default:
		return raw, nil
	}
}

// values converts raws into a typed slice so pgx can encode it as an array.
func (b *Builder) values(f model.FieldSpec, raws []string) (any, error) {
	switch f.Type {
	case model.FieldNumber:
		return collect[float64](b, f, raws)
	case model.FieldBool:
		return collect[bool](b, f, raws)
	case model.FieldTime:
		return collect[time.Time](b, f, raws)
	default:
		return append([]string(nil), raws...), nil
	}
}

func collect[T any](b *Builder, f model.FieldSpec, raws []string) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := b.value(f, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v.(T))
	}
	return out, nil
}

const dateLayout = "2006-01-02"

func isDateOnly(raw string) bool {
	_, err := time.Parse(dateLayout, raw)
	return err == nil
}

// parseTime accepts RFC 3339 timestamps and bare dates, the latter at midnight in loc.
func parseTime(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalid, raw)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
