package service

import "github.com/Mr-Alvaro/Crediticio-System/domain"

// band is one step of a non-cumulative bracket table: the first band whose
// threshold is exceeded applies, the rest are ignored.
type band struct {
	above float64
	value float64
}

func firstBand(v float64, bands []band) float64 {
	for _, b := range bands {
		if v > b.above {
			return b.value
		}
	}
	return 0
}

var (
	worthinessDeduction = map[domain.CreditWorthiness]float64{
		domain.CreditPoor:      50,
		domain.CreditFair:      30,
		domain.CreditGood:      15,
		domain.CreditExcellent: 0,
	}
	dtiDeductions = []band{{50, 35}, {40, 25}, {30, 15}, {20, 8}}
	ltvDeductions = []band{{95, 30}, {85, 20}, {75, 12}, {65, 5}}
)

const (
	negativeAmortizationDeduction = 20
	interestOnlyDeduction         = 15
	lumpSumDeduction              = 12
	commercialDeduction           = 10
	noPriorApprovalDeduction      = 8
	noCoApplicantDeduction        = 5
)

// ClientScore rates the applicant profile from 0 to 100, higher is safer.
// Every category is applied; the result is clamped, never negative.
func ClientScore(app domain.LoanApplication, m domain.DerivedMetrics) float64 {
	score := BaseClientScore

	score -= worthinessDeduction[app.CreditWorthiness]
	score -= firstBand(m.DTI, dtiDeductions)
	score -= firstBand(m.LTV, ltvDeductions)

	// Estructura del préstamo
	if app.NegativeAmortization {
		score -= negativeAmortizationDeduction
	}
	if app.InterestOnly {
		score -= interestOnlyDeduction
	}
	if app.LumpSumPayment {
		score -= lumpSumDeduction
	}
	if app.BusinessOrCommercial {
		score -= commercialDeduction
	}

	// Historial y respaldo
	if !app.ApprovedInAdvance {
		score -= noPriorApprovalDeduction
	}
	if !app.CoApplicant {
		score -= noCoApplicantDeduction
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
