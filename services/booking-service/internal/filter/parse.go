package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Parse builds an expression from query parameters named after schema fields. Each
// parameter has the form [op:][!]value[;[op:][!]value...]. Positive values of one
// field are OR-ed, negated values are AND-ed as NOTs, and fields are AND-ed together.
// An operator prefix sticks for the values that follow it. Unknown parameters are ignored.
func Parse(s model.Schema, q url.Values) (Expr, error) {
	names := make([]string, 0, len(q))
	for name := range q {
		if f, ok := s.Field(name); ok && f.Filterable {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out And
	for _, name := range names {
		f, _ := s.Field(name)
		var pos Or
		var neg And
		for _, raw := range q[name] {
			conds, err := parseField(name, f, raw)
			if err != nil {
				return nil, err
			}
			for _, c := range conds {
				if c.Negate {
					neg = append(neg, c)
				} else {
					pos = append(pos, c)
				}
			}
		}
		switch len(pos) {
		case 0:
		case 1:
			out = append(out, pos[0])
		default:
			out = append(out, pos)
		}
		out = append(out, neg...)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func parseField(name string, f model.FieldSpec, raw string) ([]Cond, error) {
	op := OpEquals
	var conds []Cond
	for _, part := range strings.Split(raw, ";") {
		if part == "" {
			continue
		}
		if prefix, rest, ok := strings.Cut(part, ":"); ok && Op(prefix).valid() {
			op = Op(prefix)
			part = rest
		}
		negate := strings.HasPrefix(part, "!")
		part = strings.TrimPrefix(part, "!")

		c := Cond{Field: name, Op: op, Negate: negate}
		switch op {
		case OpIn:
			c.Values = splitNonEmpty(part, ",")
		case OpInRange:
			lo, hi, err := splitRange(part, f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			c.Values = []string{lo, hi}
		case OpIsNull:
		default:
			if f.Type == model.FieldNumber && op == OpEquals && isNumericRange(part) {
				lo, hi, _ := splitRange(part, f.Type)
				c.Op = OpInRange
				c.Values = []string{lo, hi}
				break
			}
			c.Values = []string{part}
		}
		if c.Op != OpIsNull && len(c.Values) == 0 {
			return nil, fmt.Errorf("%w: %s has an empty value", ErrInvalid, name)
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// splitRange accepts "lo..hi" for any field and "lo-hi" for numbers.
func splitRange(v string, t model.FieldType) (string, string, error) {
	if lo, hi, ok := strings.Cut(v, ".."); ok && lo != "" && hi != "" {
		return lo, hi, nil
	}
	if t == model.FieldNumber {
		if i := strings.Index(v[min(1, len(v)):], "-"); i >= 0 {
			i++
			if lo, hi := v[:i], v[i+1:]; lo != "" && hi != "" {
				return lo, hi, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: range %q", ErrInvalid, v)
}

func isNumericRange(v string) bool {
	_, _, err := splitRange(v, model.FieldNumber)
	return err == nil
}

func splitNonEmpty(v, sep string) []string {
	var out []string
	for _, p := range strings.Split(v, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
