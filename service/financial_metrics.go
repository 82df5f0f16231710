package service

import (
	"math"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

// roundTo2Decimals redondea un float64 a 2 decimales
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// MonthlyPayment is the amortizing payment of amount over termMonths at
// ReferenceAnnualRate.
func MonthlyPayment(amount float64, termMonths int) float64 {
	tasaMensual := ReferenceAnnualRate / 12
	factor := math.Pow(1+tasaMensual, float64(termMonths))
	return amount * tasaMensual * factor / (factor - 1)
}

// CalculateDTI returns monthly payment over monthly income as a percentage.
// Zero or negative income and non-positive terms count as DTI 100.
func CalculateDTI(loanAmount, monthlyIncome float64, termMonths int) float64 {
	if monthlyIncome <= 0 || termMonths <= 0 {
		return 100
	}
	cuota := MonthlyPayment(loanAmount, termMonths)
	return roundTo2Decimals(cuota / monthlyIncome * 100)
}

// CalculateLTV returns loan over property value as a percentage. A property
// value of zero or less counts as LTV 100.
func CalculateLTV(loanAmount, propertyValue float64) float64 {
	if propertyValue <= 0 {
		return 100
	}
	return roundTo2Decimals(loanAmount / propertyValue * 100)
}

// DeriveMetrics computes DTI and LTV once for an application.
func DeriveMetrics(app domain.LoanApplication) domain.DerivedMetrics {
	return domain.DerivedMetrics{
		DTI: CalculateDTI(app.LoanAmount, app.Income, app.TermMonths),
		LTV: CalculateLTV(app.LoanAmount, app.PropertyValue),
	}
}
