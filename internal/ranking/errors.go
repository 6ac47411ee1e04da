package ranking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig cubre half-life no positivo, pesos fuera de [0,1] y topes de diversidad invalidos.
	ErrInvalidConfig = errors.New("invalid ranking config")
	// ErrInvalidWeight tambien satisface errors.Is(err, ErrInvalidConfig).
	ErrInvalidWeight     = fmt.Errorf("%w: vector weight must be within [0,1]", ErrInvalidConfig)
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrMissingCreatedAt  = errors.New("candidate created_at is required")
	ErrEmptyEmbedding    = errors.New("embedding is empty")
)
