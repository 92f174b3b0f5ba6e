package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"docchat/internal/models"
)

const chromemCompress = false

// ChromemConfig configures the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory holding the persisted index. Ignored when
	// InMemory is set.
	Path       string
	Collection string
	InMemory   bool
}

// ChromemStore keeps the index in an embedded chromem-go database. The
// embedder is handed to the collection as its embedding function, so
// chromem invokes the provider itself at add and query time.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) the persistent database at the
// configured path. Reopening the same path yields previously added
// records.
func NewChromemStore(cfg ChromemConfig, embedder embeddings.Embedder) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, chromemCompress)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector database: %w", err)
		}
	}

	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

// Add stores the chunks under fresh random IDs. Duplicate content is
// stored again rather than deduplicated.
func (s *ChromemStore) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      uuid.NewString(),
			Content: chunk.Text,
			Metadata: map[string]string{
				models.MetadataSourceKey:  chunk.Source,
				models.MetadataOrdinalKey: strconv.Itoa(chunk.Ordinal),
			},
		})
	}

	log.Debug().Int("count", len(docs)).Msg("Adding documents to vector database")
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Query returns the k most similar records, highest similarity first.
// k is clamped to the collection size; chromem rejects asking for more
// results than it holds.
func (s *ChromemStore) Query(ctx context.Context, question string, k int) ([]Record, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if count := s.collection.Count(); count < k {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, question, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, res := range results {
		records = append(records, Record{
			ID:         res.ID,
			Content:    res.Content,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		})
	}
	return records, nil
}

// Count reports the number of stored records.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}
