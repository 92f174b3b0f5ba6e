package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docchat/internal/models"
)

// DefaultEmbeddingDim matches the default embedding model's output.
const DefaultEmbeddingDim = 1536

// documentRecord is the persisted row shape. The table is created with a
// raw DDL so the vector column dimension can follow the configured
// embedding model.
type documentRecord struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID        string    `bun:"id,pk"`
	Content   string    `bun:"content,notnull"`
	Source    string    `bun:"source,notnull"`
	Ordinal   int       `bun:"ordinal,notnull"`
	Embedding []float32 `bun:"embedding,notnull"`
	Distance  float64   `bun:"distance,scanonly"`
}

// documentsTableDDL returns the create statement for the documents
// table with the given embedding dimension.
func documentsTableDDL(embeddingDim int) string {
	if embeddingDim <= 0 {
		embeddingDim = DefaultEmbeddingDim
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
	id varchar PRIMARY KEY,
	content text NOT NULL,
	source varchar NOT NULL,
	ordinal bigint NOT NULL,
	embedding vector(%d) NOT NULL
)`, embeddingDim)
}

// PostgresStore keeps the index in Postgres with the pgvector extension.
// Unlike the chromem backend it embeds explicitly before writing.
type PostgresStore struct {
	db       *bun.DB
	embedder embeddings.Embedder
}

// NewPostgresStore connects using the given DSN and creates the
// documents table if it does not exist yet. embeddingDim sizes the
// vector column and must match the embedding model's output dimension.
func NewPostgresStore(ctx context.Context, dsn string, embeddingDim int, debug bool, embedder embeddings.Embedder) (*PostgresStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if _, err := db.ExecContext(ctx, documentsTableDDL(embeddingDim)); err != nil {
		return nil, fmt.Errorf("failed to initialize documents table: %w", err)
	}

	return &PostgresStore{db: db, embedder: embedder}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	rows := make([]documentRecord, len(chunks))
	for i, chunk := range chunks {
		rows[i] = documentRecord{
			ID:        uuid.NewString(),
			Content:   chunk.Text,
			Source:    chunk.Source,
			Ordinal:   chunk.Ordinal,
			Embedding: vectors[i],
		}
	}

	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store documents: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, question string, k int) ([]Record, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	var rows []documentRecord
	err = s.db.NewSelect().
		Model(&rows).
		Column("id", "content", "source", "ordinal").
		ColumnExpr("embedding <-> ? AS distance", queryEmbedding).
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			ID:      row.ID,
			Content: row.Content,
			Metadata: map[string]string{
				models.MetadataSourceKey:  row.Source,
				models.MetadataOrdinalKey: fmt.Sprintf("%d", row.Ordinal),
			},
			Similarity: float32(1 / (1 + row.Distance)),
		})
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*documentRecord)(nil)).Count(ctx)
}
