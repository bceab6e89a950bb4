package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"docgraph/pkg/ai"
	"docgraph/pkg/chunk"
	"docgraph/pkg/common"
	"docgraph/pkg/loader"
)

type stubFileLoader struct {
	content []byte
	err     error
}

func (s *stubFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return s.content, s.err
}

// fakePipelineAI fails boundary proposals so the chunker uses fixed
// windows, and serves scripted extraction responses per chunk.
type fakePipelineAI struct {
	extractions  []extractResponse
	failChunks   map[int]bool
	extractCalls int
}

func (f *fakePipelineAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakePipelineAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	if name == "chunk_boundaries" {
		return errors.New("boundary model unavailable")
	}

	idx := f.extractCalls
	f.extractCalls++
	if f.failChunks[idx] {
		return errors.New("extraction model returned garbage")
	}
	res, ok := out.(*extractResponse)
	if !ok {
		return fmt.Errorf("unexpected output type %T", out)
	}
	if idx < len(f.extractions) {
		*res = f.extractions[idx]
	}
	return nil
}

func (f *fakePipelineAI) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (f *fakePipelineAI) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

type fakeStorage struct {
	doc           *common.Document
	chunks        []common.Chunk
	entities      []common.Entity
	mentions      map[string][]string
	relationships []common.Relationship

	saveChunksErr error
}

func (s *fakeStorage) SaveDocument(ctx context.Context, doc common.Document) error {
	s.doc = &doc
	return nil
}

func (s *fakeStorage) SaveChunks(ctx context.Context, chunks []common.Chunk) error {
	if s.saveChunksErr != nil {
		return s.saveChunksErr
	}
	s.chunks = chunks
	return nil
}

func (s *fakeStorage) SaveEntities(ctx context.Context, entities []common.Entity, mentions map[string][]string) error {
	s.entities = entities
	s.mentions = mentions
	return nil
}

func (s *fakeStorage) SaveRelationships(ctx context.Context, rels []common.Relationship) error {
	s.relationships = rels
	return nil
}

func (s *fakeStorage) SearchChunks(ctx context.Context, embedding []float32, topK int) ([]common.ScoredChunk, error) {
	return nil, nil
}

func (s *fakeStorage) GetEntitiesForChunks(ctx context.Context, chunkIDs []string) ([]common.Entity, error) {
	return nil, nil
}

func (s *fakeStorage) TraverseRelationships(ctx context.Context, entityNames []string, maxHops int, limit int) ([]common.RelationTriple, error) {
	return nil, nil
}

func (s *fakeStorage) UpsertStructuredNodes(ctx context.Context, nodes []common.StructuredNode) error {
	return nil
}

func (s *fakeStorage) LinkStructuredNodes(ctx context.Context, fromLabel, fromProp, toLabel, toProp, relType string) (int64, error) {
	return 0, nil
}

func (s *fakeStorage) DocumentStats(ctx context.Context, docID string) (common.IngestStats, error) {
	return common.IngestStats{}, nil
}

func newTestClient(aiClient ai.GraphAIClient, fallbackSize int) *GraphClient {
	return NewGraphClient(NewGraphClientParams{
		AIClient: aiClient,
		Chunker: chunk.NewChunker(chunk.NewChunkerParams{
			AIClient:     aiClient,
			FallbackSize: fallbackSize,
		}),
		EmbedDim: 4,
	})
}

func TestIngestDocument_ChunkFailureIsolated(t *testing.T) {
	// 30 characters with window 10 gives exactly three chunks.
	text := "aaaaaaaaaabbbbbbbbbbcccccccccc"

	aiClient := &fakePipelineAI{
		extractions: []extractResponse{
			{
				Entities: []extractEntity{{Name: "Bitcoin", Type: "TECHNOLOGY"}},
			},
			{},
			{
				Entities: []extractEntity{
					{Name: "bitcoin", Type: "PRODUCT"},
					{Name: "Proof-of-Work", Type: "CONCEPT"},
				},
				Relationships: []extractRelationship{
					{FromEntity: "bitcoin", ToEntity: "Proof-of-Work", Type: "builds on"},
				},
			},
		},
		failChunks: map[int]bool{1: true},
	}
	storage := &fakeStorage{}
	client := newTestClient(aiClient, 10)

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:       "doc-1",
		Filename: "whitepaper.pdf",
		Loader:   &stubFileLoader{content: []byte(text)},
	})

	result := client.IngestDocument(context.Background(), file, storage)
	if !result.Success {
		t.Fatalf("IngestDocument() failed: %s", result.Error)
	}
	if result.Stats == nil {
		t.Fatal("IngestDocument() returned no stats")
	}
	if result.Stats.ChunksCount != 3 {
		t.Fatalf("stats.ChunksCount = %d, want 3", result.Stats.ChunksCount)
	}
	if result.Stats.EntitiesCount != 2 {
		t.Fatalf("stats.EntitiesCount = %d, want 2 (merged across surviving chunks)", result.Stats.EntitiesCount)
	}
	if result.Stats.RelationshipsCount != 1 {
		t.Fatalf("stats.RelationshipsCount = %d, want 1", result.Stats.RelationshipsCount)
	}

	// First occurrence keeps its casing even though chunk 3 saw "bitcoin".
	if storage.entities[0].Name != "Bitcoin" || storage.entities[0].Type != "TECHNOLOGY" {
		t.Fatalf("merged entity = %+v, want first occurrence Bitcoin/TECHNOLOGY", storage.entities[0])
	}

	// Bitcoin was mentioned in chunks 0 and 2.
	if got := storage.mentions["bitcoin"]; len(got) != 2 {
		t.Fatalf("mentions for bitcoin = %v, want two chunk ids", got)
	}

	for i, c := range storage.chunks {
		if c.Seq != i {
			t.Fatalf("chunk %d has Seq %d", i, c.Seq)
		}
		if len(c.Embedding) != 4 {
			t.Fatalf("chunk %d embedding dim = %d, want 4", i, len(c.Embedding))
		}
	}
}

func TestIngestDocument_ReusesFileID(t *testing.T) {
	aiClient := &fakePipelineAI{
		extractions: []extractResponse{{}, {}},
	}
	storage := &fakeStorage{}
	client := newTestClient(aiClient, 1000)

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:       "doc-stable",
		Filename: "notes.txt",
		Loader:   &stubFileLoader{content: []byte("Some document text.")},
	})

	first := client.IngestDocument(context.Background(), file, storage)
	if !first.Success {
		t.Fatalf("IngestDocument() failed: %s", first.Error)
	}
	if first.DocID != "doc-stable" {
		t.Fatalf("DocID = %q, want the file id", first.DocID)
	}
	if storage.doc.ID != "doc-stable" {
		t.Fatalf("stored document id = %q, want the file id", storage.doc.ID)
	}
	for _, c := range storage.chunks {
		if c.DocumentID != "doc-stable" {
			t.Fatalf("chunk DocumentID = %q, want the file id", c.DocumentID)
		}
	}

	second := client.IngestDocument(context.Background(), file, storage)
	if !second.Success {
		t.Fatalf("second IngestDocument() failed: %s", second.Error)
	}
	if second.DocID != first.DocID {
		t.Fatalf("re-ingest stored DocID %q, want %q again", second.DocID, first.DocID)
	}
}

func TestIngestDocument_MintsIDWhenAbsent(t *testing.T) {
	aiClient := &fakePipelineAI{
		extractions: []extractResponse{{}},
	}
	storage := &fakeStorage{}
	client := newTestClient(aiClient, 1000)

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		Loader: &stubFileLoader{content: []byte("Some document text.")},
	})

	result := client.IngestDocument(context.Background(), file, storage)
	if !result.Success {
		t.Fatalf("IngestDocument() failed: %s", result.Error)
	}
	if result.DocID == "" {
		t.Fatal("IngestDocument() returned empty DocID for file without id")
	}
	if storage.doc.ID != result.DocID {
		t.Fatalf("stored document id = %q, want %q", storage.doc.ID, result.DocID)
	}
}

func TestIngestDocument_EmptyText(t *testing.T) {
	aiClient := &fakePipelineAI{}
	client := newTestClient(aiClient, 10)

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:     "doc-2",
		Loader: &stubFileLoader{content: []byte("   \n ")},
	})

	result := client.IngestDocument(context.Background(), file, &fakeStorage{})
	if result.Success {
		t.Fatal("IngestDocument() succeeded for empty text")
	}
	if result.Error == "" {
		t.Fatal("IngestDocument() returned no error message")
	}
}

func TestIngestDocument_LoaderError(t *testing.T) {
	aiClient := &fakePipelineAI{}
	client := newTestClient(aiClient, 10)

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:     "doc-3",
		Loader: &stubFileLoader{err: errors.New("bucket unreachable")},
	})

	result := client.IngestDocument(context.Background(), file, &fakeStorage{})
	if result.Success {
		t.Fatal("IngestDocument() succeeded despite loader failure")
	}
}

func TestIngestDocument_StorageErrorFails(t *testing.T) {
	aiClient := &fakePipelineAI{
		extractions: []extractResponse{{}},
	}
	storage := &fakeStorage{saveChunksErr: errors.New("connection reset")}
	client := newTestClient(aiClient, 1000)

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:     "doc-4",
		Loader: &stubFileLoader{content: []byte("Some document text.")},
	})

	result := client.IngestDocument(context.Background(), file, storage)
	if result.Success {
		t.Fatal("IngestDocument() succeeded despite storage failure")
	}
}
