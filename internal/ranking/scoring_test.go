package ranking

import (
	"errors"
	"math"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestTimeDecayMonotonic(t *testing.T) {
	prev := 2.0
	for _, hours := range []float64{0, 0.5, 1, 6, 24, 48, 72} {
		created := fixedNow.Add(-time.Duration(hours * float64(time.Hour)))
		decay, err := TimeDecay(created, fixedNow, DefaultHalfLifeHours)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decay > prev {
			t.Fatalf("expected decay to be non-increasing, %f hours gave %f after %f", hours, decay, prev)
		}
		prev = decay
	}
}

func TestTimeDecayBounds(t *testing.T) {
	cases := map[string]time.Time{
		"now":         fixedNow,
		"one day":     fixedNow.Add(-24 * time.Hour),
		"ten years":   fixedNow.Add(-10 * 365 * 24 * time.Hour),
		"future item": fixedNow.Add(3 * time.Hour),
	}
	for name, created := range cases {
		t.Run(name, func(t *testing.T) {
			decay, err := TimeDecay(created, fixedNow, DefaultHalfLifeHours)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decay < 0 || decay > 1 {
				t.Fatalf("expected decay within [0,1], got %f", decay)
			}
		})
	}

	future, _ := TimeDecay(fixedNow.Add(time.Hour), fixedNow, DefaultHalfLifeHours)
	if future != 1.0 {
		t.Fatalf("expected future item to clamp to 1.0, got %f", future)
	}
	fresh, _ := TimeDecay(fixedNow, fixedNow, DefaultHalfLifeHours)
	if fresh != 1.0 {
		t.Fatalf("expected fresh item decay 1.0, got %f", fresh)
	}
	day, _ := TimeDecay(fixedNow.Add(-24*time.Hour), fixedNow, 24)
	if math.Abs(day-math.Exp(-1)) > 1e-9 {
		t.Fatalf("expected exp(-1) after one half-life window, got %f", day)
	}
}

func TestTimeDecayInvalidInput(t *testing.T) {
	for _, hl := range []float64{0, -1, math.NaN()} {
		if _, err := TimeDecay(fixedNow, fixedNow, hl); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig for half-life %v, got %v", hl, err)
		}
	}
	if _, err := TimeDecay(time.Time{}, fixedNow, 24); !errors.Is(err, ErrMissingCreatedAt) {
		t.Fatalf("expected ErrMissingCreatedAt, got %v", err)
	}
}

func TestNormalizeSimilarity(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.42, 0.42},
		{1.0000001, 1.0},
		{-0.3, 0.0},
		{math.NaN(), 0.0},
	}
	for _, tc := range cases {
		if got := NormalizeSimilarity(tc.in); got != tc.want {
			t.Fatalf("NormalizeSimilarity(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestFinalScore(t *testing.T) {
	got, err := FinalScore(1.0, 0.5, 0.65)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.65*1.0 + 0.35*0.5
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, got)
	}

	for _, w := range []float64{-0.1, 1.1} {
		_, err := FinalScore(0.5, 0.5, w)
		if !errors.Is(err, ErrInvalidWeight) {
			t.Fatalf("expected ErrInvalidWeight for %v, got %v", w, err)
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected weight error to match ErrInvalidConfig")
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0})
	if err != nil || math.Abs(sim-1) > 1e-9 {
		t.Fatalf("expected identical vectors to score 1, got %f (%v)", sim, err)
	}
	sim, _ = CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if math.Abs(sim) > 1e-9 {
		t.Fatalf("expected orthogonal vectors to score 0, got %f", sim)
	}
	sim, _ = CosineSimilarity([]float32{0, 0}, []float32{0, 1})
	if sim != 0 {
		t.Fatalf("expected zero vector to score 0, got %f", sim)
	}
	if _, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
	bad := []Config{
		{HalfLifeHours: 0, VectorWeight: 0.5, MaxSameTag: 3},
		{HalfLifeHours: 24, VectorWeight: 1.5, MaxSameTag: 3},
		{HalfLifeHours: 24, VectorWeight: 0.5, MaxSameTag: 0},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
