// File path: internal/llm/providers/local_test.go
package providers

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbeddingsDeterministic(t *testing.T) {
	p := NewLocalProvider()
	first, err := p.EmbedQuery(context.Background(), "retrieval augmented generation")
	if err != nil {
		t.Fatalf("EmbedQuery returned error: %v", err)
	}
	second, err := p.EmbedQuery(context.Background(), "retrieval augmented generation")
	if err != nil {
		t.Fatalf("EmbedQuery returned error: %v", err)
	}
	if len(first) != localDimension {
		t.Fatalf("unexpected dimension %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding differs at %d", i)
		}
	}
}

func TestLocalEmbeddingsNormalized(t *testing.T) {
	p := NewLocalProvider()
	vec, err := p.EmbedQuery(context.Background(), "some text to embed")
	if err != nil {
		t.Fatalf("EmbedQuery returned error: %v", err)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-4 {
		t.Fatalf("expected unit norm, got %f", norm)
	}
}

func TestLocalEmbedDocumentsPreservesOrder(t *testing.T) {
	p := NewLocalProvider()
	texts := []string{"alpha", "beta", "gamma"}
	vectors, err := p.EmbedDocuments(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedDocuments returned error: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, text := range texts {
		want, _ := p.EmbedQuery(context.Background(), text)
		for j := range want {
			if vectors[i][j] != want[j] {
				t.Fatalf("vector %d does not match single embedding of %q", i, text)
			}
		}
	}
}
