// Package vectorstore persists embedded chunks and answers top-k
// similarity queries. Both backends embed via the injected provider, so
// a failed provider call fails the whole operation.
package vectorstore

import (
	"context"

	"docchat/internal/models"
)

// DefaultTopK is the number of records returned when a query does not
// specify k.
const DefaultTopK = 5

// Record is one stored (embedding, text, metadata) tuple as returned by
// a similarity query, highest similarity first.
type Record struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Store is the persistence contract used by ingestion and retrieval.
// The store is append-only: records are never updated or deleted, and
// re-adding identical content produces duplicate records.
type Store interface {
	// Add embeds and durably stores the given chunks. No partial-batch
	// guarantee is made when embedding fails midway.
	Add(ctx context.Context, chunks []models.Chunk) error

	// Query embeds the question and returns the k most similar records.
	// Non-positive k falls back to DefaultTopK. An empty store yields an
	// empty result, never an error.
	Query(ctx context.Context, question string, k int) ([]Record, error)

	// Count reports the number of stored records.
	Count(ctx context.Context) (int, error)
}
