package domain

import (
	"math"
	"time"
)

// Decision labels are persisted and returned as-is.
type Decision string

const (
	DecisionApproved     Decision = "APROBADO"
	DecisionManualReview Decision = "REVISIÓN MANUAL"
	DecisionRejected     Decision = "RECHAZADO"
)

// DerivedMetrics are computed once per assessment, as percentages.
type DerivedMetrics struct {
	DTI float64
	LTV float64
}

// RiskAssessmentResult is the outcome of one assessment. It is never
// modified after the assessment returns it.
type RiskAssessmentResult struct {
	ClientScore float64  `json:"score_cliente"`
	FuzzyRisk   float64  `json:"riesgo_difuso"`
	Probability float64  `json:"probabilidad"`
	FinalScore  float64  `json:"score_final"`
	DTI         float64  `json:"dti"`
	LTV         float64  `json:"ltv"`
	Decision    Decision `json:"decision"`
	Reason      string   `json:"motivo"`
	// RedFlag names the automatic-rejection rule that fired, if any.
	RedFlag string `json:"bandera_roja,omitempty"`
}

// Rounded returns a copy with every number at two decimals, the precision
// results are reported and stored with.
func (r RiskAssessmentResult) Rounded() RiskAssessmentResult {
	r.ClientScore = round2(r.ClientScore)
	r.FuzzyRisk = round2(r.FuzzyRisk)
	r.Probability = round2(r.Probability)
	r.FinalScore = round2(r.FinalScore)
	r.DTI = round2(r.DTI)
	r.LTV = round2(r.LTV)
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AssessmentRecord is what gets handed to persistence.
type AssessmentRecord struct {
	ID          string
	CreatedAt   time.Time
	Application LoanApplication
	Indicators  EconomicIndicators
	Result      RiskAssessmentResult
}

// HistoryTimeLayout is how history dates are reported.
const HistoryTimeLayout = "2006-01-02 15:04:05"

// HistoryEntry is one row of the recent-assessments listing.
type HistoryEntry struct {
	ID               int64    `json:"id"`
	AssessmentID     string   `json:"evaluacion_id"`
	CreatedAt        string   `json:"fecha"`
	Name             string   `json:"nombre"`
	LoanAmount       float64  `json:"monto"`
	CreditWorthiness string   `json:"credit_worthiness"`
	DTI              float64  `json:"dti"`
	LTV              float64  `json:"ltv"`
	ClientScore      float64  `json:"score_cliente"`
	FuzzyRisk        float64  `json:"riesgo_difuso"`
	Probability      float64  `json:"probabilidad"`
	FinalScore       float64  `json:"score_final"`
	Decision         Decision `json:"decision"`
}

// Statistics aggregates the stored history.
type Statistics struct {
	Total          int     `json:"total"`
	Approved       int     `json:"aprobadas"`
	Rejected       int     `json:"rechazadas"`
	ManualReview   int     `json:"revision"`
	AvgClientScore float64 `json:"score_cliente_promedio"`
	AvgFuzzyRisk   float64 `json:"riesgo_promedio"`
	AvgProbability float64 `json:"probabilidad_promedio"`
	AvgDTI         float64 `json:"dti_promedio"`
	AvgLTV         float64 `json:"ltv_promedio"`
	ApprovalRate   float64 `json:"tasa_aprobacion"`
}
