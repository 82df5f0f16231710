package domain

import "time"

// AssessmentsCollection is where assessment documents are stored.
const AssessmentsCollection = "evaluaciones_credito"

// AssessmentInput mirrors the request fields under their wire names.
type AssessmentInput struct {
	Name                 string  `json:"nombre"`
	LoanAmount           float64 `json:"loan_amount"`
	Income               float64 `json:"income"`
	Term                 int     `json:"term"`
	PropertyValue        float64 `json:"property_value"`
	CreditWorthiness     string  `json:"credit_worthiness"`
	Gender               string  `json:"gender"`
	Age                  string  `json:"age"`
	Region               string  `json:"region"`
	CreditType           string  `json:"credit_type"`
	NegativeAmortization bool    `json:"neg_amortization"`
	InterestOnly         bool    `json:"interest_only"`
	LumpSumPayment       bool    `json:"lump_sum_payment"`
	BusinessOrCommercial bool    `json:"business_or_commercial"`
	ApprovedInAdvance    bool    `json:"approv_in_adv"`
	CoApplicant          bool    `json:"co_applicant"`
	Inflation            float64 `json:"inflacion"`
	FuelPrice            float64 `json:"combustible"`
	ProtestIndex         float64 `json:"protestas"`
	Unemployment         float64 `json:"desempleo"`
	DiseaseIndex         float64 `json:"covid"`
	ClimateTemp          float64 `json:"clima"`
	DTI                  float64 `json:"dti"`
	LTV                  float64 `json:"ltv"`
}

// ModelOutcome is the scoring part of a stored document.
type ModelOutcome struct {
	ClientScore float64  `json:"score_cliente"`
	Probability float64  `json:"probabilidad"`
	FinalScore  float64  `json:"score_final"`
	Decision    Decision `json:"decision"`
	Reason      string   `json:"motivo"`
}

// AssessmentDocument is the document-store shape of a record.
type AssessmentDocument struct {
	ID        string          `json:"id"`
	Input     AssessmentInput `json:"entrada"`
	Outcome   ModelOutcome    `json:"resultado_modelo"`
	FuzzyRisk float64         `json:"riesgo_difuso"`
	Timestamp string          `json:"timestamp"`
}

func NewAssessmentDocument(rec AssessmentRecord) AssessmentDocument {
	app, ind, res := rec.Application, rec.Indicators, rec.Result
	return AssessmentDocument{
		ID: rec.ID,
		Input: AssessmentInput{
			Name:                 app.Name,
			LoanAmount:           app.LoanAmount,
			Income:               app.Income,
			Term:                 app.TermMonths,
			PropertyValue:        app.PropertyValue,
			CreditWorthiness:     string(app.CreditWorthiness),
			Gender:               app.Gender,
			Age:                  app.AgeBand,
			Region:               app.Region,
			CreditType:           app.CreditType,
			NegativeAmortization: app.NegativeAmortization,
			InterestOnly:         app.InterestOnly,
			LumpSumPayment:       app.LumpSumPayment,
			BusinessOrCommercial: app.BusinessOrCommercial,
			ApprovedInAdvance:    app.ApprovedInAdvance,
			CoApplicant:          app.CoApplicant,
			Inflation:            ind.Inflation,
			FuelPrice:            ind.FuelPrice,
			ProtestIndex:         ind.ProtestIndex,
			Unemployment:         ind.Unemployment,
			DiseaseIndex:         ind.DiseaseIndex,
			ClimateTemp:          ind.ClimateTemp,
			DTI:                  res.DTI,
			LTV:                  res.LTV,
		},
		Outcome: ModelOutcome{
			ClientScore: res.ClientScore,
			Probability: res.Probability,
			FinalScore:  res.FinalScore,
			Decision:    res.Decision,
			Reason:      res.Reason,
		},
		FuzzyRisk: res.FuzzyRisk,
		Timestamp: rec.CreatedAt.Format(time.RFC3339),
	}
}
