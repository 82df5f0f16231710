package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

// flexNumber accepts a JSON number or a numeric string.
type flexNumber struct {
	Value float64
	Set   bool
	Empty bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	n.Set = true
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		n.Empty = true
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			n.Empty = true
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("valor numérico inválido %q", s)
		}
		n.Value = v
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// flexString accepts a JSON string; null counts as empty.
type flexString struct {
	Value string
	Set   bool
}

func (s *flexString) UnmarshalJSON(b []byte) error {
	s.Set = true
	if string(bytes.TrimSpace(b)) == "null" {
		return nil
	}
	return json.Unmarshal(b, &s.Value)
}

// flexBool accepts booleans, 0/1 and the usual string spellings.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*f = false
	case bool:
		*f = flexBool(v)
	case float64:
		*f = v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "si", "sí", "on":
			*f = true
		default:
			*f = false
		}
	default:
		return fmt.Errorf("valor booleano inválido %s", b)
	}
	return nil
}

// PredictRequest is the POST /predict body, with the original field names.
type PredictRequest struct {
	Name             string     `json:"nombre"`
	LoanAmount       flexNumber `json:"loan_amount"`
	Income           flexNumber `json:"income"`
	Term             flexNumber `json:"term"`
	PropertyValue    flexNumber `json:"property_value"`
	CreditWorthiness flexString `json:"credit_worthiness"`
	Gender           flexString `json:"gender"`
	Age              flexString `json:"age"`
	Region           flexString `json:"region"`
	CreditType       flexString `json:"credit_type"`

	NegativeAmortization flexBool `json:"neg_amortization"`
	InterestOnly         flexBool `json:"interest_only"`
	LumpSumPayment       flexBool `json:"lump_sum_payment"`
	BusinessOrCommercial flexBool `json:"business_or_commercial"`
	ApprovedInAdvance    flexBool `json:"approv_in_adv"`
	CoApplicant          flexBool `json:"co_applicant"`

	Inflation    flexNumber `json:"inflacion"`
	FuelPrice    flexNumber `json:"combustible"`
	ProtestIndex flexNumber `json:"protestas"`
	Unemployment flexNumber `json:"desempleo"`
	DiseaseIndex flexNumber `json:"covid"`
	ClimateTemp  flexNumber `json:"clima"`
}

// propertyValueFactor is used when no property value is sent.
const propertyValueFactor = 1.2

type requiredField struct {
	name  string
	set   bool
	empty bool
}

func (p *PredictRequest) requiredFields() []requiredField {
	num := func(name string, n flexNumber) requiredField { return requiredField{name, n.Set, n.Empty} }
	str := func(name string, s flexString) requiredField {
		return requiredField{name, s.Set, strings.TrimSpace(s.Value) == ""}
	}
	return []requiredField{
		num("loan_amount", p.LoanAmount),
		num("income", p.Income),
		num("term", p.Term),
		num("inflacion", p.Inflation),
		num("combustible", p.FuelPrice),
		num("protestas", p.ProtestIndex),
		num("desempleo", p.Unemployment),
		num("covid", p.DiseaseIndex),
		num("clima", p.ClimateTemp),
		str("credit_worthiness", p.CreditWorthiness),
		str("gender", p.Gender),
		str("age", p.Age),
		str("region", p.Region),
		str("credit_type", p.CreditType),
	}
}

// ToDomain checks presence and converts. Every error wraps
// domain.ErrInvalidInput.
func (p *PredictRequest) ToDomain() (domain.LoanApplication, domain.EconomicIndicators, error) {
	for _, f := range p.requiredFields() {
		if !f.set {
			return domain.LoanApplication{}, domain.EconomicIndicators{},
				fmt.Errorf("%w: campo requerido faltante: %s", domain.ErrInvalidInput, f.name)
		}
		if f.empty {
			return domain.LoanApplication{}, domain.EconomicIndicators{},
				fmt.Errorf("%w: campo %s está vacío", domain.ErrInvalidInput, f.name)
		}
	}

	term := p.Term.Value
	if term != math.Trunc(term) || term < math.MinInt32 || term > math.MaxInt32 {
		return domain.LoanApplication{}, domain.EconomicIndicators{},
			fmt.Errorf("%w: el plazo debe ser un número entero de meses", domain.ErrInvalidInput)
	}

	cw, err := domain.ParseCreditWorthiness(strings.TrimSpace(p.CreditWorthiness.Value))
	if err != nil {
		return domain.LoanApplication{}, domain.EconomicIndicators{}, err
	}

	propertyValue := p.LoanAmount.Value * propertyValueFactor
	if p.PropertyValue.Set && !p.PropertyValue.Empty {
		propertyValue = p.PropertyValue.Value
	}

	app := domain.LoanApplication{
		Name:                 strings.TrimSpace(p.Name),
		LoanAmount:           p.LoanAmount.Value,
		Income:               p.Income.Value,
		TermMonths:           int(term),
		PropertyValue:        propertyValue,
		CreditWorthiness:     cw,
		NegativeAmortization: bool(p.NegativeAmortization),
		InterestOnly:         bool(p.InterestOnly),
		LumpSumPayment:       bool(p.LumpSumPayment),
		BusinessOrCommercial: bool(p.BusinessOrCommercial),
		ApprovedInAdvance:    bool(p.ApprovedInAdvance),
		CoApplicant:          bool(p.CoApplicant),
		Gender:               p.Gender.Value,
		AgeBand:              p.Age.Value,
		Region:               p.Region.Value,
		CreditType:           p.CreditType.Value,
	}
	ind := domain.EconomicIndicators{
		Inflation:    p.Inflation.Value,
		FuelPrice:    p.FuelPrice.Value,
		ProtestIndex: p.ProtestIndex.Value,
		Unemployment: p.Unemployment.Value,
		DiseaseIndex: p.DiseaseIndex.Value,
		ClimateTemp:  p.ClimateTemp.Value,
	}
	return app, ind, nil
}
