package llm

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
)

// StubEmbedder genera vectores deterministas a partir de un hash del texto.
// Mismo texto, mismo vector; norma 1. Sirve para desarrollo local y el seed.
type StubEmbedder struct {
	dimensions int
}

func NewStubEmbedder(dimensions int) *StubEmbedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &StubEmbedder{dimensions: dimensions}
}

func (s *StubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	raw := make([]float64, s.dimensions)
	var norm float64
	for i := range raw {
		raw[i] = rng.NormFloat64()
		norm += raw[i] * raw[i]
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dimensions)
	for i, x := range raw {
		if norm > 0 {
			out[i] = float32(x / norm)
		}
	}
	return out, nil
}
