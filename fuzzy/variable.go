package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// Term is a named linguistic value of a variable.
type Term struct {
	Name string
	MF   MembershipFunction
}

// Variable is a bounded crisp quantity with a discretized universe and an
// ordered table of linguistic terms. It is never mutated after NewVariable.
type Variable struct {
	name     string
	min, max float64
	step     float64
	universe []float64
	terms    []Term
	index    map[string]int
}

// NewVariable validates bounds and terms and precomputes the universe
// min + i*step for i = 0..round((max-min)/step).
func NewVariable(name string, min, max, step float64, terms ...Term) (*Variable, error) {
	if name == "" {
		return nil, errors.New("variable name is empty")
	}
	if !(min < max) {
		return nil, fmt.Errorf("variable %s: invalid bounds [%g, %g]", name, min, max)
	}
	if !(step > 0) || step > max-min {
		return nil, fmt.Errorf("variable %s: invalid step %g", name, step)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("variable %s: no terms", name)
	}

	v := &Variable{
		name:  name,
		min:   min,
		max:   max,
		step:  step,
		terms: make([]Term, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for i, t := range terms {
		if t.Name == "" {
			return nil, fmt.Errorf("variable %s: term %d has no name", name, i)
		}
		if _, dup := v.index[t.Name]; dup {
			return nil, fmt.Errorf("variable %s: duplicate term %s", name, t.Name)
		}
		v.terms[i] = t
		v.index[t.Name] = i
	}

	n := int(math.Round((max - min) / step))
	v.universe = make([]float64, n+1)
	for i := range v.universe {
		v.universe[i] = min + float64(i)*step
	}

	return v, nil
}

// MustVariable is NewVariable for static tables; it panics on error.
func MustVariable(name string, min, max, step float64, terms ...Term) *Variable {
	v, err := NewVariable(name, min, max, step, terms...)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Variable) Name() string { return v.name }

// Bounds returns the declared domain.
func (v *Variable) Bounds() (min, max float64) { return v.min, v.max }

func (v *Variable) Step() float64 { return v.step }

// Universe returns a copy of the discretized domain.
func (v *Variable) Universe() []float64 {
	out := make([]float64, len(v.universe))
	copy(out, v.universe)
	return out
}

// Terms returns the term names in declaration order.
func (v *Variable) Terms() []string {
	names := make([]string, len(v.terms))
	for i, t := range v.terms {
		names[i] = t.Name
	}
	return names
}

func (v *Variable) HasTerm(term string) bool {
	_, ok := v.index[term]
	return ok
}

// Clamp forces value into the declared bounds. NaN clamps to min.
func (v *Variable) Clamp(value float64) float64 {
	if math.IsNaN(value) || value < v.min {
		return v.min
	}
	if value > v.max {
		return v.max
	}
	return value
}

// DegreeOf evaluates the named term at value. Unknown terms have degree 0.
func (v *Variable) DegreeOf(term string, value float64) float64 {
	i, ok := v.index[term]
	if !ok {
		return 0
	}
	return v.terms[i].MF.Degree(value)
}

// degreeAt evaluates a term over the universe sample i.
func (v *Variable) degreeAt(term int, i int) float64 {
	return v.terms[term].MF.Degree(v.universe[i])
}
