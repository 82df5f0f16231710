package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
	"github.com/Mr-Alvaro/Crediticio-System/fuzzy"
)

// Variables del sistema difuso macroeconómico
const (
	VarInflation    = "inflacion"
	VarFuelPrice    = "combustible"
	VarProtests     = "protestas"
	VarUnemployment = "desempleo"
	VarDisease      = "covid"
	VarClimate      = "clima"
	VarRisk         = "riesgo"
)

// Términos lingüísticos
const (
	TermLow      = "bajo"
	TermMedium   = "medio"
	TermHigh     = "alto"
	TermVeryHigh = "muy_alto"

	TermLowF      = "baja"
	TermMediumF   = "media"
	TermHighF     = "alta"
	TermVeryHighF = "muy_alta"

	TermLowPl      = "bajas"
	TermMediumPl   = "medias"
	TermHighPl     = "altas"
	TermVeryHighPl = "muy_altas"

	TermExtremeCold = "extremo_frio"
	TermNormal      = "normal"
	TermExtremeHeat = "extremo_calor"

	TermVeryLow = "muy_bajo"
)

func term(name string, mf fuzzy.MembershipFunction) fuzzy.Term {
	return fuzzy.Term{Name: name, MF: mf}
}

var (
	trap = fuzzy.MustTrapezoid
	tri  = fuzzy.MustTriangle
)

func macroVariables() ([]*fuzzy.Variable, *fuzzy.Variable) {
	inflation := fuzzy.MustVariable(VarInflation, 0, 100, 1,
		term(TermLowF, trap(0, 0, 2, 5)),
		term(TermMediumF, tri(3, 6, 12)),
		term(TermHighF, tri(10, 18, 30)),
		term(TermVeryHighF, trap(25, 50, 100, 100)),
	)
	fuel := fuzzy.MustVariable(VarFuelPrice, 0, 8, 0.1,
		term(TermLow, trap(0, 0, 1.5, 2.5)),
		term(TermMedium, tri(2, 3, 4)),
		term(TermHigh, tri(3.5, 4.5, 5.5)),
		term(TermVeryHigh, trap(5, 6.5, 8, 8)),
	)
	protests := fuzzy.MustVariable(VarProtests, 0, 5000, 1,
		term(TermLowPl, trap(0, 0, 300, 600)),
		term(TermMediumPl, tri(400, 900, 1600)),
		term(TermHighPl, tri(1200, 2000, 3200)),
		term(TermVeryHighPl, trap(2500, 3500, 5000, 5000)),
	)
	unemployment := fuzzy.MustVariable(VarUnemployment, 0, 25, 0.1,
		term(TermLow, trap(0, 0, 3, 5.5)),
		term(TermMedium, tri(4, 6, 9)),
		term(TermHigh, tri(7, 11, 16)),
		term(TermVeryHigh, trap(12, 18, 25, 25)),
	)
	disease := fuzzy.MustVariable(VarDisease, 0, 10000, 1,
		term(TermLow, trap(0, 0, 600, 1200)),
		term(TermMedium, tri(800, 1800, 3500)),
		term(TermHigh, tri(2500, 4000, 6500)),
		term(TermVeryHigh, trap(5000, 7500, 10000, 10000)),
	)
	climate := fuzzy.MustVariable(VarClimate, -10, 40, 1,
		term(TermExtremeCold, trap(-10, -10, 2, 8)),
		term(TermNormal, trap(5, 15, 25, 32)),
		term(TermExtremeHeat, trap(28, 35, 40, 40)),
	)
	risk := fuzzy.MustVariable(VarRisk, 0, 10, 0.1,
		term(TermVeryLow, trap(0, 0, 1, 2.5)),
		term(TermLow, tri(1.5, 3, 4.5)),
		term(TermMedium, tri(3.5, 5, 6.5)),
		term(TermHigh, tri(5.5, 7, 8.5)),
		term(TermVeryHigh, trap(7.5, 9, 10, 10)),
	)

	return []*fuzzy.Variable{inflation, fuel, protests, unemployment, disease, climate}, risk
}

var is = fuzzy.Is

// macroRules is ordered by severity for reading only; aggregation is a max.
var macroRules = []fuzzy.Rule{
	// Riesgo muy alto
	{Label: "crisis economica", If: fuzzy.Or(is(VarInflation, TermVeryHighF), is(VarUnemployment, TermVeryHigh)), Then: TermVeryHigh},
	{Label: "protestas masivas", If: is(VarProtests, TermVeryHighPl), Then: TermVeryHigh},
	{Label: "colapso sanitario", If: is(VarDisease, TermVeryHigh), Then: TermVeryHigh},
	{Label: "estanflacion", If: fuzzy.And(is(VarInflation, TermHighF), is(VarUnemployment, TermHigh)), Then: TermVeryHigh},
	{Label: "energia e inflacion", If: fuzzy.And(is(VarFuelPrice, TermVeryHigh), is(VarInflation, TermHighF)), Then: TermVeryHigh},
	{Label: "energia y desempleo", If: fuzzy.And(is(VarFuelPrice, TermVeryHigh), is(VarUnemployment, TermHigh)), Then: TermVeryHigh},
	{Label: "inflacion y protestas", If: fuzzy.And(is(VarInflation, TermHighF), is(VarProtests, TermHighPl)), Then: TermVeryHigh},
	{Label: "ola sanitaria y protestas", If: fuzzy.And(is(VarDisease, TermHigh), is(VarProtests, TermVeryHighPl)), Then: TermVeryHigh},

	// Riesgo alto
	{Label: "inflacion y combustible", If: fuzzy.And(is(VarInflation, TermHighF), is(VarFuelPrice, TermHigh)), Then: TermHigh},
	{Label: "desempleo y protestas", If: fuzzy.And(is(VarUnemployment, TermHigh), is(VarProtests, TermHighPl)), Then: TermHigh},
	{Label: "ola sanitaria y desempleo", If: fuzzy.And(is(VarDisease, TermHigh), is(VarUnemployment, TermMedium)), Then: TermHigh},
	{Label: "combustible y protestas", If: fuzzy.And(is(VarFuelPrice, TermHigh), is(VarProtests, TermHighPl)), Then: TermHigh},
	{Label: "inflacion media y desempleo", If: fuzzy.And(is(VarInflation, TermMediumF), is(VarUnemployment, TermHigh)), Then: TermHigh},
	{Label: "combustible muy alto", If: is(VarFuelPrice, TermVeryHigh), Then: TermHigh},

	// Riesgo medio
	{Label: "inflacion y desempleo medios", If: fuzzy.And(is(VarInflation, TermMediumF), is(VarUnemployment, TermMedium)), Then: TermMedium},
	{Label: "combustible y protestas medios", If: fuzzy.And(is(VarFuelPrice, TermMedium), is(VarProtests, TermMediumPl)), Then: TermMedium},
	{Label: "sanidad y desempleo medios", If: fuzzy.And(is(VarDisease, TermMedium), is(VarUnemployment, TermMedium)), Then: TermMedium},
	{Label: "protestas con inflacion baja", If: fuzzy.And(is(VarInflation, TermLowF), is(VarProtests, TermHighPl)), Then: TermMedium},
	{Label: "clima extremo", If: fuzzy.Or(is(VarClimate, TermExtremeCold), is(VarClimate, TermExtremeHeat)), Then: TermMedium},
	{Label: "combustible alto con inflacion baja", If: fuzzy.And(is(VarFuelPrice, TermHigh), is(VarInflation, TermLowF)), Then: TermMedium},

	// Riesgo bajo
	{Label: "estabilidad laboral y social", If: fuzzy.And(is(VarInflation, TermLowF), is(VarUnemployment, TermLow), is(VarProtests, TermLowPl)), Then: TermLow},
	{Label: "estabilidad de precios y sanidad", If: fuzzy.And(is(VarInflation, TermLowF), is(VarDisease, TermLow), is(VarFuelPrice, TermLow)), Then: TermLow},
	{Label: "entorno tranquilo", If: fuzzy.And(is(VarUnemployment, TermLow), is(VarProtests, TermLowPl), is(VarClimate, TermNormal)), Then: TermVeryLow},
	{Label: "economia sana", If: fuzzy.And(is(VarFuelPrice, TermLow), is(VarInflation, TermLowF), is(VarUnemployment, TermLow)), Then: TermVeryLow},
}

// macroEngine is built once at start-up and shared read-only.
var macroEngine = mustMacroEngine()

func mustMacroEngine() *fuzzy.Engine {
	inputs, output := macroVariables()
	engine, err := fuzzy.NewEngine(output, inputs, macroRules)
	if err != nil {
		panic(fmt.Sprintf("macro risk rule base: %v", err))
	}
	return engine
}

// MacroEngine exposes the shared six-indicator inference system.
func MacroEngine() *fuzzy.Engine { return macroEngine }

func indicatorInputs(ind domain.EconomicIndicators) map[string]float64 {
	return map[string]float64{
		VarInflation:    ind.Inflation,
		VarFuelPrice:    ind.FuelPrice,
		VarProtests:     ind.ProtestIndex,
		VarUnemployment: ind.Unemployment,
		VarDisease:      ind.DiseaseIndex,
		VarClimate:      ind.ClimateTemp,
	}
}

// MacroRisk is the macro score with how it was obtained.
type MacroRisk struct {
	Score     float64
	Inferred  float64
	Fallback  bool
	Overrides []string
}

// MacroRiskModel turns economic indicators into a 0–10 risk score: fuzzy
// inference followed by the override floors.
type MacroRiskModel struct {
	engine      *fuzzy.Engine
	policy      OverridePolicy
	defaultRisk float64
	logger      zerolog.Logger
}

func NewMacroRiskModel(logger zerolog.Logger) *MacroRiskModel {
	return &MacroRiskModel{
		engine:      macroEngine,
		policy:      DefaultOverridePolicy(),
		defaultRisk: DefaultFuzzyRisk,
		logger:      logger.With().Str("component", "macro_risk").Logger(),
	}
}

// Assess never fails on a coverage gap: an empty aggregate returns
// DefaultFuzzyRisk as is, without the override floors.
func (m *MacroRiskModel) Assess(ind domain.EconomicIndicators) (MacroRisk, error) {
	trace, err := m.engine.Trace(indicatorInputs(ind))

	var result MacroRisk
	switch {
	case err == nil:
		result.Inferred = trace.Output
	case errors.Is(err, fuzzy.ErrInferenceUndefined):
		m.logger.Warn().Err(err).Float64("default", m.defaultRisk).Msg("Inferencia difusa sin soporte, usando riesgo por defecto")
		result.Inferred = m.defaultRisk
		result.Score = m.defaultRisk
		result.Fallback = true
		return result, nil
	default:
		return MacroRisk{}, fmt.Errorf("macro risk inference: %w", err)
	}

	result.Score, result.Overrides = m.policy.Apply(result.Inferred, ind)

	if ev := m.logger.Debug(); ev.Enabled() {
		fired := zerolog.Dict()
		for _, a := range trace.Activations {
			if a.Strength > 0 {
				fired.Float64(a.Rule.Label, a.Strength)
			}
		}
		ev.Dict("rules", fired).
			Float64("inferred", result.Inferred).
			Float64("score", result.Score).
			Strs("overrides", result.Overrides).
			Msg("Riesgo macro calculado")
	}

	return result, nil
}
