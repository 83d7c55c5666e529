package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateNormalizesVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ollamaEmbeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{
			Embedding: []float64{3, 4}, // magnitude 5
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nomic-embed-text")
	res, err := p.Generate(context.Background(), "some text", TaskRetrievalDocument)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := res.Embedding.Values
	if len(values) != 2 {
		t.Fatalf("dims = %d", len(values))
	}

	var magnitude float64
	for _, v := range values {
		magnitude += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(magnitude)-1.0) > 1e-6 {
		t.Errorf("vector not unit length: %v", values)
	}
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	_, err := p.Generate(context.Background(), "text", TaskRetrievalQuery)

	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	got := normalizeVector([]float32{0, 0, 0})
	for _, v := range got {
		if v != 0 {
			t.Errorf("zero vector must pass through unchanged, got %v", got)
		}
	}
}
