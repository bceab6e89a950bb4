package ai

import (
	"context"

	"docgraph/pkg/logger"
)

// EmbedTexts embeds every input text, guaranteeing exactly one vector of
// length dim per input, in input order. It first issues one batched
// request; if the batch fails it retries each input individually, and an
// input that still fails is substituted with a zero vector so callers can
// rely on positional correspondence.
func EmbedTexts(ctx context.Context, client GraphAIClient, texts []string, dim int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := client.GenerateEmbeddings(ctx, texts)
	if err == nil && len(vectors) == len(texts) {
		return conformVectors(vectors, dim), nil
	}
	if err != nil {
		logger.Warn("[Embed] Batch embedding failed, falling back to per-item requests", "count", len(texts), "err", err)
	} else {
		logger.Warn("[Embed] Batch embedding size mismatch, falling back to per-item requests", "got", len(vectors), "want", len(texts))
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		vec, err := client.GenerateEmbedding(ctx, text)
		if err != nil {
			logger.Warn("[Embed] Failed to embed input, substituting zero vector", "index", i, "err", err)
			out[i] = make([]float32, dim)
			continue
		}
		out[i] = conformVector(vec, dim)
	}
	return out, nil
}

func conformVectors(vectors [][]float32, dim int) [][]float32 {
	for i := range vectors {
		vectors[i] = conformVector(vectors[i], dim)
	}
	return vectors
}

// conformVector pads or truncates a provider vector to the configured
// dimensionality so every stored vector matches the index definition.
func conformVector(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	if len(vec) > dim {
		return vec[:dim]
	}
	padded := make([]float32, dim)
	copy(padded, vec)
	return padded
}
