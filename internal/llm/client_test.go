package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPEmbedderEmbed(t *testing.T) {
	var got embeddingRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("expected path /embeddings, got %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}]}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL+"/", "secret", "test-model", 3, nil)
	vec, err := e.Embed(context.Background(), "  pizza in brooklyn ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if auth != "Bearer secret" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
	if got.Model != "test-model" || got.Input != "pizza in brooklyn" || got.Dimensions != 3 {
		t.Fatalf("unexpected request body: %+v", got)
	}
}

func TestHTTPEmbedderErrors(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
		}))
		defer srv.Close()
		if _, err := NewHTTPEmbedder(srv.URL, "k", "", 0, nil).Embed(context.Background(), "x"); err == nil {
			t.Fatalf("expected error on 429")
		}
	})

	t.Run("empty data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()
		_, err := NewHTTPEmbedder(srv.URL, "k", "", 0, nil).Embed(context.Background(), "x")
		if !errors.Is(err, ErrEmptyEmbeddingResp) {
			t.Fatalf("expected ErrEmptyEmbeddingResp, got %v", err)
		}
	})

	t.Run("empty text skips request", func(t *testing.T) {
		_, err := NewHTTPEmbedder("http://127.0.0.1:1", "k", "", 0, nil).Embed(context.Background(), "   ")
		if !errors.Is(err, ErrEmptyText) {
			t.Fatalf("expected ErrEmptyText, got %v", err)
		}
	})
}
