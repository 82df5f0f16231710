package classifier

import (
	"fmt"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

// FeatureCount is the width of the vector the model was trained on.
const FeatureCount = 32

var (
	genderCodes = map[string]int{"Male": 1, "Female": 0}
	regionCodes = map[string]int{"North": 0, "South": 1, "Central": 2, "North-East": 3}
	creditCodes = map[string]int{"CIB": 0, "EXP": 1, "EQUI": 2}
	ageCodes    = map[string]int{
		"<25": 6, "25-34": 0, "35-44": 1, "45-54": 2, "55-64": 3, "65-74": 4, ">74": 5,
	}
)

// Tamaños de los bloques one-hot, en orden
const (
	genderSlots = 3
	ageSlots    = 7
	regionSlots = 4
	creditSlots = 3
)

func lookup(field string, codes map[string]int, value string) (int, error) {
	code, ok := codes[value]
	if !ok {
		return 0, fmt.Errorf("%w: %s %q", domain.ErrCategoricalMapping, field, value)
	}
	return code, nil
}

func oneHot(size, index int) []float64 {
	v := make([]float64, size)
	v[index] = 1
	return v
}

// Encode builds the raw, unscaled feature vector: four categorical codes,
// the numeric fields, the macro indicators and the one-hot blocks, padded
// with zeros to FeatureCount.
func Encode(app domain.LoanApplication, ind domain.EconomicIndicators) ([]float64, error) {
	gender, err := lookup("gender", genderCodes, app.Gender)
	if err != nil {
		return nil, err
	}
	age, err := lookup("age", ageCodes, app.AgeBand)
	if err != nil {
		return nil, err
	}
	region, err := lookup("region", regionCodes, app.Region)
	if err != nil {
		return nil, err
	}
	credit, err := lookup("credit_type", creditCodes, app.CreditType)
	if err != nil {
		return nil, err
	}

	features := make([]float64, 0, FeatureCount)
	features = append(features,
		float64(gender),
		float64(age),
		float64(region),
		float64(credit),
		app.Income,
		app.LoanAmount,
		float64(app.TermMonths),
		ind.Inflation,
		ind.FuelPrice,
		ind.ProtestIndex,
		ind.DiseaseIndex,
		ind.Unemployment,
		ind.ClimateTemp,
	)
	features = append(features, oneHot(genderSlots, gender)...)
	features = append(features, oneHot(ageSlots, age)...)
	features = append(features, oneHot(regionSlots, region)...)
	features = append(features, oneHot(creditSlots, credit)...)

	if len(features) > FeatureCount {
		features = features[:FeatureCount]
	}
	for len(features) < FeatureCount {
		features = append(features, 0)
	}
	return features, nil
}
