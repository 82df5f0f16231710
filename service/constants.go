package service

import "time"

const (
	MinTermMonths = 1

	// Tasa nominal anual usada para estimar la cuota del DTI
	ReferenceAnnualRate = 0.08

	// Valor de riesgo macro cuando la inferencia difusa no tiene soporte
	DefaultFuzzyRisk = 5.0

	// Ingreso mínimo: debe poder pagar el monto en 15 años (180 meses)
	MinServiceableMonths = 180

	// Puntaje inicial del perfil del cliente
	BaseClientScore = 100.0

	// Pesos del score final
	ClientScoreWeight = 0.40
	MacroRiskWeight   = 0.30
	ModelWeight       = 0.30

	DefaultRecordTimeout = 10 * time.Second
)
