package service

import (
	"fmt"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

// DecisionInput is everything the decision needs except the classifier output.
type DecisionInput struct {
	Application domain.LoanApplication
	Indicators  domain.EconomicIndicators
	Metrics     domain.DerivedMetrics
	ClientScore float64
	FuzzyRisk   float64
}

// RedFlag is an automatic rejection. FinalScore and Probability are fixed
// reporting values, not computed.
type RedFlag struct {
	Code        string
	Reason      string
	FinalScore  float64
	Probability float64
	when        func(DecisionInput) bool
}

// redFlags is evaluated in order; the first match wins.
var redFlags = []RedFlag{
	// Banderas críticas del cliente
	{"credit_poor", "Historial Crediticio Deficiente", 25, 95,
		func(in DecisionInput) bool { return in.Application.CreditWorthiness == domain.CreditPoor }},
	{"dti_critical", "DTI Crítico - Capacidad de Pago Insuficiente", 30, 90,
		func(in DecisionInput) bool { return in.Metrics.DTI > 55 }},
	{"ltv_critical", "LTV Crítico - Colateral Insuficiente", 28, 88,
		func(in DecisionInput) bool { return in.Metrics.LTV > 98 }},
	{"negative_amortization", "Amortización Negativa No Permitida", 20, 92,
		func(in DecisionInput) bool { return in.Application.NegativeAmortization }},
	{"insufficient_income", "Ingresos Insuficientes para el Monto Solicitado", 22, 94,
		func(in DecisionInput) bool {
			return in.Application.Income < in.Application.LoanAmount/MinServiceableMonths
		}},

	// Banderas críticas macroeconómicas
	{"inflation_crisis", "Crisis Inflacionaria - Entorno Económico Crítico", 25, 85,
		func(in DecisionInput) bool { return in.Indicators.Inflation > 50 }},
	{"unemployment_crisis", "Desempleo Crítico - Recesión Severa", 27, 83,
		func(in DecisionInput) bool { return in.Indicators.Unemployment > 15 }},
	{"health_collapse", "Colapso Sanitario - Alerta Crítica", 26, 82,
		func(in DecisionInput) bool { return in.Indicators.DiseaseIndex > 7000 }},
	{"social_unrest", "Inestabilidad Social Severa", 28, 80,
		func(in DecisionInput) bool { return in.Indicators.ProtestIndex > 3500 }},
	{"energy_crisis", "Crisis Energética Crítica", 29, 81,
		func(in DecisionInput) bool { return in.Indicators.FuelPrice > 6.0 }},
	{"stagflation", "Estanflación Severa Detectada", 22, 88,
		func(in DecisionInput) bool { return in.Indicators.Inflation > 20 && in.Indicators.Unemployment > 10 }},

	// Score bajo
	{"client_score_critical", "Perfil Crediticio Crítico", 30, 85,
		func(in DecisionInput) bool { return in.ClientScore < 35 }},
}

var (
	macroPenalties = []band{{8.0, 0.40}, {6.5, 0.25}, {5.0, 0.15}, {3.5, 0.08}}
	dtiPenalties   = []band{{45, 0.20}, {35, 0.12}}
	ltvPenalties   = []band{{90, 0.15}, {80, 0.08}}
)

const (
	interestOnlyPenalty = 0.12
	lumpSumPenalty      = 0.10
	commercialPenalty   = 0.08
)

// Umbrales de la decisión final
const (
	rejectBelowScore       = 45
	reviewBelowScore       = 60
	rejectAboveProbability = 45
	reviewBelowClient      = 50
)

// DecisionEngine merges the client score, the macro risk and the default
// probability into the final verdict. It holds no state.
type DecisionEngine struct{}

// CheckRedFlags returns the first automatic rejection that applies.
func (DecisionEngine) CheckRedFlags(in DecisionInput) (RedFlag, bool) {
	for _, f := range redFlags {
		if f.when(in) {
			return f, true
		}
	}
	return RedFlag{}, false
}

// Rejection builds the terminal result of a red flag.
func (DecisionEngine) Rejection(in DecisionInput, flag RedFlag) domain.RiskAssessmentResult {
	return domain.RiskAssessmentResult{
		ClientScore: in.ClientScore,
		FuzzyRisk:   in.FuzzyRisk,
		Probability: flag.Probability,
		FinalScore:  flag.FinalScore,
		DTI:         in.Metrics.DTI,
		LTV:         in.Metrics.LTV,
		Decision:    domain.DecisionRejected,
		Reason:      flag.Reason,
		RedFlag:     flag.Code,
	}
}

// AdjustProbability adds the penalty bands to a default probability in
// [0,1] and returns it as a percentage capped at 100. It never lowers it.
func (DecisionEngine) AdjustProbability(probability float64, in DecisionInput) float64 {
	p := clamp(probability, 0, 1)

	p += firstBand(in.FuzzyRisk, macroPenalties)
	p += firstBand(in.Metrics.DTI, dtiPenalties)
	p += firstBand(in.Metrics.LTV, ltvPenalties)

	if in.Application.InterestOnly {
		p += interestOnlyPenalty
	}
	if in.Application.LumpSumPayment {
		p += lumpSumPenalty
	}
	if in.Application.BusinessOrCommercial {
		p += commercialPenalty
	}

	return min(100.0, p*100)
}

// FinalScore weighs client profile, macro environment and model output.
func FinalScore(clientScore, fuzzyRisk, adjustedProbability float64) float64 {
	return clientScore*ClientScoreWeight +
		(10-fuzzyRisk)*10*MacroRiskWeight +
		(100-adjustedProbability)*ModelWeight
}

// Decide runs the whole cascade. Red flags win before the probability is
// looked at.
func (d DecisionEngine) Decide(in DecisionInput, probability float64) domain.RiskAssessmentResult {
	if flag, ok := d.CheckRedFlags(in); ok {
		return d.Rejection(in, flag)
	}

	prob := d.AdjustProbability(probability, in)
	score := FinalScore(in.ClientScore, in.FuzzyRisk, prob)

	result := domain.RiskAssessmentResult{
		ClientScore: in.ClientScore,
		FuzzyRisk:   in.FuzzyRisk,
		Probability: prob,
		FinalScore:  score,
		DTI:         in.Metrics.DTI,
		LTV:         in.Metrics.LTV,
	}

	switch {
	case score < rejectBelowScore:
		result.Decision = domain.DecisionRejected
		result.Reason = fmt.Sprintf("Score Final Bajo (%.1f/100)", score)
	case score < reviewBelowScore:
		result.Decision = domain.DecisionManualReview
		result.Reason = fmt.Sprintf("Score Límite (%.1f/100) - Requiere Análisis Adicional", score)
	case prob > rejectAboveProbability:
		result.Decision = domain.DecisionRejected
		result.Reason = fmt.Sprintf("Alta Probabilidad de Incumplimiento (%.1f%%)", prob)
	case in.ClientScore < reviewBelowClient:
		result.Decision = domain.DecisionManualReview
		result.Reason = "Perfil de Cliente Requiere Evaluación Detallada"
	default:
		result.Decision = domain.DecisionApproved
		result.Reason = fmt.Sprintf("Perfil de Riesgo Aceptable - Score: %.1f/100", score)
	}

	return result
}
