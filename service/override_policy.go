package service

import "github.com/Mr-Alvaro/Crediticio-System/domain"

// floorChain raises the risk to the floor of the first band the indicator
// exceeds. Bands are ordered from the most severe.
type floorChain struct {
	label     string
	indicator func(domain.EconomicIndicators) float64
	floors    []band
}

// comboRule fires when every condition holds. A hard rule sets the risk to
// value; otherwise value is a floor.
type comboRule struct {
	label string
	when  func(domain.EconomicIndicators) bool
	value float64
	hard  bool
}

// OverridePolicy guarantees minimum risk levels after defuzzification,
// using the raw indicator values.
type OverridePolicy struct {
	chains []floorChain
	combos []comboRule
}

func DefaultOverridePolicy() OverridePolicy {
	return OverridePolicy{
		chains: []floorChain{
			{
				label:     "inflacion",
				indicator: func(e domain.EconomicIndicators) float64 { return e.Inflation },
				floors:    []band{{50, 9.0}, {30, 7.5}, {15, 6.0}},
			},
			{
				label:     "covid",
				indicator: func(e domain.EconomicIndicators) float64 { return e.DiseaseIndex },
				floors:    []band{{7000, 8.5}, {5000, 7.0}},
			},
			{
				label:     "protestas",
				indicator: func(e domain.EconomicIndicators) float64 { return e.ProtestIndex },
				floors:    []band{{3500, 8.0}, {2000, 6.5}},
			},
			{
				label:     "desempleo",
				indicator: func(e domain.EconomicIndicators) float64 { return e.Unemployment },
				floors:    []band{{15, 8.5}, {10, 7.0}},
			},
			{
				label:     "combustible",
				indicator: func(e domain.EconomicIndicators) float64 { return e.FuelPrice },
				floors:    []band{{6, 7.5}, {5, 6.5}, {4, 5.0}},
			},
		},
		combos: []comboRule{
			{
				// Estanflación severa: asignación directa, no piso
				label: "estanflacion",
				when:  func(e domain.EconomicIndicators) bool { return e.Inflation > 20 && e.Unemployment > 10 },
				value: 9.5,
				hard:  true,
			},
			{
				label: "crisis energetica e inflacion",
				when:  func(e domain.EconomicIndicators) bool { return e.FuelPrice > 5 && e.Inflation > 15 },
				value: 8.0,
			},
		},
	}
}

// Apply runs every check in order and returns the adjusted risk, clamped to
// [0,10] and rounded to two decimals, with the labels of the checks that fired.
func (p OverridePolicy) Apply(risk float64, ind domain.EconomicIndicators) (float64, []string) {
	var fired []string

	for _, c := range p.chains {
		v := c.indicator(ind)
		for _, b := range c.floors {
			if v > b.above {
				risk = max(risk, b.value)
				fired = append(fired, c.label)
				break
			}
		}
	}

	for _, c := range p.combos {
		if !c.when(ind) {
			continue
		}
		if c.hard {
			risk = c.value
		} else {
			risk = max(risk, c.value)
		}
		fired = append(fired, c.label)
	}

	return roundTo2Decimals(clamp(risk, 0, 10)), fired
}
