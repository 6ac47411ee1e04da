package ranking

import (
	"fmt"
	"math"
)

const (
	DefaultHalfLifeHours = 24.0
	DefaultVectorWeight  = 0.65
	DefaultMaxSameTag    = 3
)

// Config agrupa los parametros del ranking. Se pasa explicitamente a cada
// constructor; no hay estado global.
type Config struct {
	HalfLifeHours float64
	VectorWeight  float64
	MaxSameTag    int
}

func DefaultConfig() Config {
	return Config{
		HalfLifeHours: DefaultHalfLifeHours,
		VectorWeight:  DefaultVectorWeight,
		MaxSameTag:    DefaultMaxSameTag,
	}
}

// Validate devuelve ErrInvalidConfig (o ErrInvalidWeight) si algun valor esta fuera de rango.
func (c Config) Validate() error {
	if err := validateHalfLife(c.HalfLifeHours); err != nil {
		return err
	}
	if err := validateWeight(c.VectorWeight); err != nil {
		return err
	}
	if c.MaxSameTag < 1 {
		return fmt.Errorf("%w: max_same_tag must be >= 1, got %d", ErrInvalidConfig, c.MaxSameTag)
	}
	return nil
}

// TimeWeight es el complemento de VectorWeight.
func (c Config) TimeWeight() float64 {
	return 1.0 - c.VectorWeight
}

func validateHalfLife(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return fmt.Errorf("%w: half_life_hours must be > 0, got %v", ErrInvalidConfig, hours)
	}
	return nil
}

func validateWeight(w float64) error {
	if math.IsNaN(w) || w < 0 || w > 1 {
		return fmt.Errorf("%w (got %v)", ErrInvalidWeight, w)
	}
	return nil
}
