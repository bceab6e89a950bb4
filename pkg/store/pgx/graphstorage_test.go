package pgx

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"docgraph/pkg/common"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/pgvector/pgvector-go"
)

func newMockStorage(t *testing.T, dim int) (pgxmock.PgxPoolIface, *GraphDBStorage) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewGraphDBStorageWithConnection(mock, dim)
}

func TestSaveDocument_UpsertsByPublicID(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	doc := common.Document{
		ID:        "doc-1",
		Filename:  "whitepaper.pdf",
		Content:   "text",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs(doc.ID, doc.Filename, doc.Content, doc.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := storage.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveChunks_RejectsWrongDimension(t *testing.T) {
	_, storage := newMockStorage(t, 4)

	chunks := []common.Chunk{
		{ID: "c-1", DocumentID: "doc-1", Seq: 0, Text: "t", Embedding: []float32{1, 2}},
	}
	err := storage.SaveChunks(context.Background(), chunks)
	if err == nil {
		t.Fatal("SaveChunks() expected dimension error")
	}
	if !strings.Contains(err.Error(), "dimension") {
		t.Fatalf("SaveChunks() error = %v, want dimension mismatch", err)
	}
}

func TestSaveChunks_UpsertsPerSeq(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	chunks := []common.Chunk{
		{ID: "c-1", DocumentID: "doc-1", Seq: 0, Text: "first", Embedding: []float32{1, 0, 0, 0}},
		{ID: "c-2", DocumentID: "doc-1", Seq: 1, Text: "second", Embedding: []float32{0, 1, 0, 0}},
	}

	mock.ExpectBegin()
	for _, c := range chunks {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chunks")).
			WithArgs(c.ID, c.Seq, c.Text, pgvector.NewVector(c.Embedding), c.DocumentID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM chunks")).
		WithArgs("doc-1", 2).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	if err := storage.SaveChunks(context.Background(), chunks); err != nil {
		t.Fatalf("SaveChunks() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveChunks_TrimsStaleTail(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	chunks := []common.Chunk{
		{ID: "c-9", DocumentID: "doc-1", Seq: 0, Text: "only", Embedding: []float32{1, 0, 0, 0}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chunks")).
		WithArgs("c-9", 0, "only", pgvector.NewVector(chunks[0].Embedding), "doc-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM chunks")).
		WithArgs("doc-1", 1).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	if err := storage.SaveChunks(context.Background(), chunks); err != nil {
		t.Fatalf("SaveChunks() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveEntities_MergesWithMentions(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	entities := []common.Entity{{Name: "Bitcoin", Type: "TECHNOLOGY"}}
	mentions := map[string][]string{"bitcoin": {"c-1", "c-2"}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entities")).
		WithArgs("Bitcoin", "bitcoin", "TECHNOLOGY").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entity_mentions")).
		WithArgs("bitcoin", "c-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entity_mentions")).
		WithArgs("bitcoin", "c-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := storage.SaveEntities(context.Background(), entities, mentions); err != nil {
		t.Fatalf("SaveEntities() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveRelationships_NormalizesLabel(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	rels := []common.Relationship{
		{Source: "Proof-of-Work", Target: "Double-Spending", Type: "Prevents Through Proof of Work!!"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entity_relationships")).
		WithArgs(
			"PREVENTS_THROUGH_PROOF_OF_WORK",
			"Prevents Through Proof of Work!!",
			"proof-of-work",
			"double-spending",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := storage.SaveRelationships(context.Background(), rels); err != nil {
		t.Fatalf("SaveRelationships() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveRelationships_UnknownEndpointSkipped(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	rels := []common.Relationship{
		{Source: "Ghost", Target: "Nobody", Type: "haunts"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entity_relationships")).
		WithArgs("HAUNTS", "haunts", "ghost", "nobody").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	if err := storage.SaveRelationships(context.Background(), rels); err != nil {
		t.Fatalf("SaveRelationships() error = %v, want skip without failure", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSearchChunks_ReturnsScoredHits(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	embedding := []float32{1, 0, 0, 0}
	rows := pgxmock.NewRows([]string{"public_id", "text", "score", "filename"}).
		AddRow("c-1", "chunk text", 0.93, "whitepaper.pdf").
		AddRow("c-2", "other text", 0.78, "whitepaper.pdf")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.public_id, c.text, 1 - (c.embedding <=> $1) AS score, d.filename")).
		WithArgs(pgvector.NewVector(embedding), 2).
		WillReturnRows(rows)

	hits, err := storage.SearchChunks(context.Background(), embedding, 2)
	if err != nil {
		t.Fatalf("SearchChunks() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("SearchChunks() got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "c-1" || hits[0].Score != 0.93 || hits[0].Document != "whitepaper.pdf" {
		t.Fatalf("SearchChunks() first hit = %+v", hits[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTraverseRelationships_EmptySeedsNoQuery(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	triples, err := storage.TraverseRelationships(context.Background(), nil, 2, 50)
	if err != nil {
		t.Fatalf("TraverseRelationships() error = %v", err)
	}
	if triples != nil {
		t.Fatalf("TraverseRelationships() got %v, want nil for empty seeds", triples)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTraverseRelationships_ReturnsTriples(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	rows := pgxmock.NewRows([]string{"from", "to", "rel_type", "original_type"}).
		AddRow("Proof-of-Work", "Double-Spending", "PREVENTS", "prevents")

	mock.ExpectQuery("WITH RECURSIVE seeds").
		WithArgs([]string{"proof-of-work"}, 2, 50).
		WillReturnRows(rows)

	triples, err := storage.TraverseRelationships(context.Background(), []string{" Proof-of-Work "}, 2, 50)
	if err != nil {
		t.Fatalf("TraverseRelationships() error = %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("TraverseRelationships() got %d triples, want 1", len(triples))
	}
	if triples[0].Type != "PREVENTS" || triples[0].Original != "prevents" {
		t.Fatalf("TraverseRelationships() triple = %+v", triples[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLinkStructuredNodes_ReturnsEdgeCount(t *testing.T) {
	mock, storage := newMockStorage(t, 4)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO structured_relationships")).
		WithArgs("PLACED_ORDER", "customer_id", "id", "Order", "Customer").
		WillReturnResult(pgxmock.NewResult("INSERT", 42))

	n, err := storage.LinkStructuredNodes(context.Background(), "Order", "customer_id", "Customer", "id", "PLACED_ORDER")
	if err != nil {
		t.Fatalf("LinkStructuredNodes() error = %v", err)
	}
	if n != 42 {
		t.Fatalf("LinkStructuredNodes() = %d, want 42", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
