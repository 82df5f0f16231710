// Package fuzzy implements a small Mamdani inference engine: piecewise-linear
// membership functions, bounded variables with a discretized universe,
// AND/OR rule antecedents and centroid defuzzification.
package fuzzy

import (
	"fmt"
	"math"
)

// MembershipFunction is a piecewise-linear trapezoid over four breakpoints.
// A triangle is the trapezoid whose plateau has zero width.
type MembershipFunction struct {
	A, B, C, D float64
}

// Trapezoid builds the shape 0 below a, rising a→b, 1 on [b,c], falling c→d,
// 0 above d. Breakpoints must be ordered.
func Trapezoid(a, b, c, d float64) (MembershipFunction, error) {
	if !(a <= b && b <= c && c <= d) {
		return MembershipFunction{}, fmt.Errorf("trapezoid breakpoints out of order: [%g %g %g %g]", a, b, c, d)
	}
	return MembershipFunction{A: a, B: b, C: c, D: d}, nil
}

// Triangle builds the shape 0 below a, rising a→b to 1, falling b→c.
func Triangle(a, b, c float64) (MembershipFunction, error) {
	return Trapezoid(a, b, b, c)
}

// MustTrapezoid is Trapezoid for static tables; it panics on bad breakpoints.
func MustTrapezoid(a, b, c, d float64) MembershipFunction {
	mf, err := Trapezoid(a, b, c, d)
	if err != nil {
		panic(err)
	}
	return mf
}

// MustTriangle is Triangle for static tables; it panics on bad breakpoints.
func MustTriangle(a, b, c float64) MembershipFunction {
	return MustTrapezoid(a, b, b, c)
}

// Degree returns the membership of x, always within [0,1].
// Zero-width edges behave as a step: the breakpoint itself belongs to the plateau.
func (m MembershipFunction) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < m.A || x > m.D:
		return 0
	case x >= m.B && x <= m.C:
		return 1
	case x < m.B:
		// a <= x < b, so b > a here
		return clamp01((x - m.A) / (m.B - m.A))
	default:
		// c < x <= d, so d > c here
		return clamp01((m.D - x) / (m.D - m.C))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
