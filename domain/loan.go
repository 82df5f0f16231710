package domain

import (
	"fmt"
	"math"
)

type CreditWorthiness string

const (
	CreditPoor      CreditWorthiness = "Poor"
	CreditFair      CreditWorthiness = "Fair"
	CreditGood      CreditWorthiness = "Good"
	CreditExcellent CreditWorthiness = "Excellent"
)

// ParseCreditWorthiness accepts the four canonical labels only.
func ParseCreditWorthiness(s string) (CreditWorthiness, error) {
	switch c := CreditWorthiness(s); c {
	case CreditPoor, CreditFair, CreditGood, CreditExcellent:
		return c, nil
	}
	return "", fmt.Errorf("%w: credit_worthiness %q no reconocido", ErrInvalidInput, s)
}

// LoanApplication is one applicant's request. Income is monthly.
type LoanApplication struct {
	Name             string
	LoanAmount       float64
	Income           float64
	TermMonths       int
	PropertyValue    float64
	CreditWorthiness CreditWorthiness

	NegativeAmortization bool
	InterestOnly         bool
	LumpSumPayment       bool
	BusinessOrCommercial bool
	ApprovedInAdvance    bool
	CoApplicant          bool

	// Solo para el clasificador externo
	Gender     string
	AgeBand    string
	Region     string
	CreditType string
}

// DisplayName is the name stored in the history.
func (a LoanApplication) DisplayName() string {
	if a.Name == "" {
		return "Sin nombre"
	}
	return a.Name
}

// Validate rejects applications the assessment cannot run on.
func (a LoanApplication) Validate() error {
	if !isFinite(a.LoanAmount) || a.LoanAmount < 0 {
		return fmt.Errorf("%w: monto inválido", ErrInvalidInput)
	}
	if !isFinite(a.Income) || a.Income < 0 {
		return fmt.Errorf("%w: ingreso inválido", ErrInvalidInput)
	}
	if a.TermMonths <= 0 {
		return fmt.Errorf("%w: plazo inválido", ErrInvalidInput)
	}
	if !isFinite(a.PropertyValue) || a.PropertyValue < 0 {
		return fmt.Errorf("%w: valor de propiedad inválido", ErrInvalidInput)
	}
	if _, err := ParseCreditWorthiness(string(a.CreditWorthiness)); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"gender", a.Gender},
		{"age", a.AgeBand},
		{"region", a.Region},
		{"credit_type", a.CreditType},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: campo %s está vacío", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
