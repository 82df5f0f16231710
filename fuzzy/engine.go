package fuzzy

import (
	"errors"
	"fmt"
)

var (
	// ErrInferenceUndefined means no rule fired with nonzero strength, so the
	// aggregated output set is empty and has no centroid.
	ErrInferenceUndefined = errors.New("fuzzy inference undefined: aggregated output set is empty")
	// ErrMissingInput means a declared input variable had no crisp value.
	ErrMissingInput = errors.New("missing crisp input")
)

// Activation is the firing strength of one rule for one evaluation.
type Activation struct {
	Rule     Rule
	Strength float64
}

// Trace is the detailed outcome of an inference.
type Trace struct {
	Output      float64
	Inputs      map[string]float64 // clamped values actually evaluated
	Activations []Activation
}

// Engine is a Mamdani inference system. It holds only read-only tables and
// is safe for concurrent use.
type Engine struct {
	inputs  map[string]*Variable
	order   []string
	output  *Variable
	rules   []Rule
	then    []int       // output term index per rule
	curves  [][]float64 // output term membership sampled over the universe
	support []float64   // output universe
}

// NewEngine validates every rule against the declared variables and samples
// the output terms over the output universe once.
func NewEngine(output *Variable, inputs []*Variable, rules []Rule) (*Engine, error) {
	if output == nil {
		return nil, errors.New("output variable is required")
	}
	if len(rules) == 0 {
		return nil, errors.New("rule base is empty")
	}

	e := &Engine{
		inputs:  make(map[string]*Variable, len(inputs)),
		output:  output,
		rules:   append([]Rule(nil), rules...),
		then:    make([]int, len(rules)),
		support: output.Universe(),
	}
	for _, v := range inputs {
		if _, dup := e.inputs[v.Name()]; dup {
			return nil, fmt.Errorf("duplicate input variable %s", v.Name())
		}
		e.inputs[v.Name()] = v
		e.order = append(e.order, v.Name())
	}

	for i, r := range e.rules {
		if err := r.If.validate(e.inputs); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Label, err)
		}
		idx, ok := output.index[r.Then]
		if !ok {
			return nil, fmt.Errorf("rule %d (%s): output %s has no term %q", i, r.Label, output.Name(), r.Then)
		}
		e.then[i] = idx
	}

	e.curves = make([][]float64, len(output.terms))
	for t := range output.terms {
		curve := make([]float64, len(e.support))
		for i := range curve {
			curve[i] = output.degreeAt(t, i)
		}
		e.curves[t] = curve
	}

	return e, nil
}

// Inputs returns the input variables in declaration order.
func (e *Engine) Inputs() []*Variable {
	vars := make([]*Variable, len(e.order))
	for i, name := range e.order {
		vars[i] = e.inputs[name]
	}
	return vars
}

func (e *Engine) Output() *Variable { return e.output }

func (e *Engine) Rules() []Rule { return append([]Rule(nil), e.rules...) }

// Infer returns the centroid of the aggregated output set for the given crisp
// inputs. Each input is clamped to its variable's bounds first.
func (e *Engine) Infer(inputs map[string]float64) (float64, error) {
	t, err := e.Trace(inputs)
	if err != nil {
		return 0, err
	}
	return t.Output, nil
}

// Trace is Infer plus the per-rule firing strengths.
func (e *Engine) Trace(inputs map[string]float64) (Trace, error) {
	clamped := make(map[string]float64, len(e.inputs))
	for name, v := range e.inputs {
		raw, ok := inputs[name]
		if !ok {
			return Trace{}, fmt.Errorf("%w: %s", ErrMissingInput, name)
		}
		clamped[name] = v.Clamp(raw)
	}

	activations := make([]Activation, len(e.rules))
	aggregated := make([]float64, len(e.support))
	for i, r := range e.rules {
		strength := r.If.eval(e.inputs, clamped)
		activations[i] = Activation{Rule: r, Strength: strength}
		if strength <= 0 {
			continue
		}
		curve := e.curves[e.then[i]]
		for j, mu := range curve {
			if mu > strength {
				mu = strength
			}
			if mu > aggregated[j] {
				aggregated[j] = mu
			}
		}
	}

	out, err := centroid(e.support, aggregated)
	if err != nil {
		return Trace{}, err
	}

	return Trace{Output: out, Inputs: clamped, Activations: activations}, nil
}

// centroid is Σ(u·μ(u)) / Σμ(u) over the discretized universe.
func centroid(universe, mu []float64) (float64, error) {
	var moment, area float64
	for i, u := range universe {
		moment += u * mu[i]
		area += mu[i]
	}
	if area <= 0 {
		return 0, ErrInferenceUndefined
	}
	return moment / area, nil
}
