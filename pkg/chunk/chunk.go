package chunk

import (
	"context"
	"fmt"
	"strings"

	"docgraph/pkg/ai"
	"docgraph/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultEncoder        = "cl100k_base"
	defaultMaxChunkTokens = 512
	defaultFallbackSize   = 1000
)

// Chunker splits document text into ordered retrieval chunks. The
// primary strategy asks the model for topic boundaries over the sentence
// list; every failure mode degrades to fixed-size windows so chunking
// never fails on non-empty input.
type Chunker struct {
	aiClient       ai.GraphAIClient
	encoder        string
	maxChunkTokens int
	fallbackSize   int
}

// NewChunkerParams defines the configuration for creating a Chunker.
// Zero values select the defaults.
type NewChunkerParams struct {
	AIClient       ai.GraphAIClient
	Encoder        string
	MaxChunkTokens int
	FallbackSize   int
}

// NewChunker creates a Chunker configured with the provided parameters.
func NewChunker(params NewChunkerParams) *Chunker {
	encoder := params.Encoder
	if encoder == "" {
		encoder = defaultEncoder
	}
	maxTokens := params.MaxChunkTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxChunkTokens
	}
	fallbackSize := params.FallbackSize
	if fallbackSize <= 0 {
		fallbackSize = defaultFallbackSize
	}
	return &Chunker{
		aiClient:       params.AIClient,
		encoder:        encoder,
		maxChunkTokens: maxTokens,
		fallbackSize:   fallbackSize,
	}
}

type chunkSpan struct {
	Start int `json:"start" jsonschema_description:"Index of the first sentence in the chunk"`
	End   int `json:"end" jsonschema_description:"Exclusive index of the last sentence in the chunk"`
}

type chunkBoundaries struct {
	Chunks []chunkSpan `json:"chunks" jsonschema_description:"Ordered, gapless sentence ranges covering the whole document"`
}

// Chunks splits text into an ordered, non-empty sequence of chunk texts.
// Empty input yields nil. Model failures, invalid boundary lists and
// encoder errors all fall back to fixed windows.
func (c *Chunker) Chunks(ctx context.Context, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	chunks, err := c.agenticChunks(ctx, text)
	if err != nil {
		logger.Warn("[Chunk] Agentic chunking failed, using fixed windows", "err", err)
		return FallbackChunks(text, c.fallbackSize)
	}
	return chunks
}

func (c *Chunker) agenticChunks(ctx context.Context, text string) ([]string, error) {
	if c.aiClient == nil {
		return nil, fmt.Errorf("no ai client configured")
	}

	enc, err := tiktoken.GetEncoding(c.encoder)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoder: %w", err)
	}

	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("no sentences found")
	}

	var numbered strings.Builder
	for i, s := range sentences {
		fmt.Fprintf(&numbered, "%d: %s\n", i, s)
	}

	var boundaries chunkBoundaries
	err = c.aiClient.GenerateCompletionWithFormat(
		ctx,
		"chunk_boundaries",
		"Topic-coherent sentence ranges for document chunking",
		fmt.Sprintf(ai.ChunkPrompt, c.maxChunkTokens, numbered.String()),
		&boundaries,
	)
	if err != nil {
		return nil, fmt.Errorf("boundary generation failed: %w", err)
	}
	if err := validateBoundaries(boundaries.Chunks, len(sentences)); err != nil {
		return nil, err
	}

	var chunks []string
	for _, span := range boundaries.Chunks {
		group := strings.Join(sentences[span.Start:span.End], " ")
		tokens := len(enc.Encode(group, nil, nil))
		if tokens <= c.maxChunkTokens {
			chunks = append(chunks, group)
			continue
		}
		// The model proposed a group over budget; repack it by token
		// count at sentence granularity.
		chunks = append(chunks, packSentences(sentences[span.Start:span.End], enc, c.maxChunkTokens)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("boundary list produced no chunks")
	}
	return chunks, nil
}

// validateBoundaries checks that the spans are ordered, gapless,
// non-overlapping and cover every sentence exactly once.
func validateBoundaries(spans []chunkSpan, sentenceCount int) error {
	if len(spans) == 0 {
		return fmt.Errorf("empty boundary list")
	}
	expected := 0
	for i, span := range spans {
		if span.Start != expected {
			return fmt.Errorf("boundary %d starts at %d, want %d", i, span.Start, expected)
		}
		if span.End <= span.Start {
			return fmt.Errorf("boundary %d is empty or inverted (%d..%d)", i, span.Start, span.End)
		}
		expected = span.End
	}
	if expected != sentenceCount {
		return fmt.Errorf("boundaries cover %d sentences, want %d", expected, sentenceCount)
	}
	return nil
}

// packSentences greedily fills chunks up to the token budget. A single
// sentence over budget still becomes its own chunk.
func packSentences(sentences []string, enc *tiktoken.Tiktoken, maxTokens int) []string {
	var chunks []string
	start := 0
	for start < len(sentences) {
		end := start + 1
		for end < len(sentences) {
			candidate := strings.Join(sentences[start:end+1], " ")
			if len(enc.Encode(candidate, nil, nil)) > maxTokens {
				break
			}
			end++
		}
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		start = end
	}
	return chunks
}

// FallbackChunks splits text into fixed-size rune windows. The windows
// concatenate back to the input exactly, so no text is ever lost to a
// chunking failure.
func FallbackChunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = defaultFallbackSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
