package domain

import "errors"

var (
	// ErrInvalidInput marks a missing or non-numeric application field. The
	// assessment is not attempted.
	ErrInvalidInput = errors.New("entrada inválida")
	// ErrCategoricalMapping marks a categorical value the classifier encoding
	// does not know. The assessment stops before the classifier is called.
	ErrCategoricalMapping = errors.New("valor inválido en campo categórico")
)
