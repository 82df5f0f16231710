package domain

import "fmt"

// EconomicIndicators are the six macro signals of one assessment.
type EconomicIndicators struct {
	Inflation    float64 // %
	FuelPrice    float64 // USD
	ProtestIndex float64
	Unemployment float64 // %
	DiseaseIndex float64
	ClimateTemp  float64 // °C
}

// Validate only rejects non-numeric values; out-of-range values are clamped
// by the fuzzy engine.
func (e EconomicIndicators) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"inflacion", e.Inflation},
		{"combustible", e.FuelPrice},
		{"protestas", e.ProtestIndex},
		{"desempleo", e.Unemployment},
		{"covid", e.DiseaseIndex},
		{"clima", e.ClimateTemp},
	} {
		if !isFinite(f.value) {
			return fmt.Errorf("%w: valor numérico inválido en %s", ErrInvalidInput, f.name)
		}
	}
	return nil
}
