// Package filter parses list query strings into a typed expression tree and compiles it to SQL.
package filter

type Op string

const (
	OpEquals      Op = "equals"
	OpContains    Op = "contains"
	OpStartsWith  Op = "startsWith"
	OpEndsWith    Op = "endsWith"
	OpGreaterThan Op = "greaterThan"
	OpLessThan    Op = "lessThan"
	OpIn          Op = "in"
	OpInRange     Op = "inRange"
	OpIsNull      Op = "isNull"
)

func (o Op) valid() bool {
	switch o {
	case OpEquals, OpContains, OpStartsWith, OpEndsWith, OpGreaterThan, OpLessThan, OpIn, OpInRange, OpIsNull:
		return true
	}
	return false
}

// Expr is a node of the filter tree: Cond, And or Or.
type Expr interface {
	isExpr()
}

// Cond is a single predicate on one field.
type Cond struct {
	Field  string
	Op     Op
	Values []string
	Negate bool
}

type And []Expr

type Or []Expr

func (Cond) isExpr() {}
func (And) isExpr()  {}
func (Or) isExpr()   {}

// References reports whether e constrains field anywhere.
func References(e Expr, field string) bool {
	switch n := e.(type) {
	case Cond:
		return n.Field == field
	case And:
		for _, c := range n {
			if References(c, field) {
				return true
			}
		}
	case Or:
		for _, c := range n {
			if References(c, field) {
				return true
			}
		}
	}
	return false
}
