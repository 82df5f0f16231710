package fuzzy

import (
	"fmt"
	"strings"
)

type exprKind int

const (
	exprLeaf exprKind = iota
	exprAnd
	exprOr
)

// Expr is a rule antecedent: a (variable, term) leaf or an AND/OR of
// sub-expressions. Build it with Is, And and Or.
type Expr struct {
	kind     exprKind
	variable string
	term     string
	children []Expr
}

// Is references the degree of term in variable.
func Is(variable, term string) Expr {
	return Expr{kind: exprLeaf, variable: variable, term: term}
}

// And is the fuzzy conjunction (minimum).
func And(exprs ...Expr) Expr {
	return Expr{kind: exprAnd, children: exprs}
}

// Or is the fuzzy disjunction (maximum).
func Or(exprs ...Expr) Expr {
	return Expr{kind: exprOr, children: exprs}
}

// eval computes the firing strength against already clamped crisp inputs.
func (e Expr) eval(vars map[string]*Variable, inputs map[string]float64) float64 {
	switch e.kind {
	case exprLeaf:
		return vars[e.variable].DegreeOf(e.term, inputs[e.variable])
	case exprAnd:
		strength := 1.0
		for _, c := range e.children {
			if s := c.eval(vars, inputs); s < strength {
				strength = s
			}
		}
		return strength
	default:
		strength := 0.0
		for _, c := range e.children {
			if s := c.eval(vars, inputs); s > strength {
				strength = s
			}
		}
		return strength
	}
}

func (e Expr) validate(vars map[string]*Variable) error {
	switch e.kind {
	case exprLeaf:
		v, ok := vars[e.variable]
		if !ok {
			return fmt.Errorf("unknown input variable %q", e.variable)
		}
		if !v.HasTerm(e.term) {
			return fmt.Errorf("variable %s has no term %q", e.variable, e.term)
		}
		return nil
	default:
		if len(e.children) == 0 {
			return fmt.Errorf("empty %s expression", e.op())
		}
		for _, c := range e.children {
			if err := c.validate(vars); err != nil {
				return err
			}
		}
		return nil
	}
}

func (e Expr) op() string {
	if e.kind == exprAnd {
		return "AND"
	}
	return "OR"
}

func (e Expr) String() string {
	if e.kind == exprLeaf {
		return e.variable + "[" + e.term + "]"
	}
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " "+e.op()+" ") + ")"
}

// Rule maps an antecedent to one term of the output variable.
type Rule struct {
	Label string
	If    Expr
	Then  string
}

func (r Rule) String() string {
	return fmt.Sprintf("IF %s THEN %s", r.If, r.Then)
}
