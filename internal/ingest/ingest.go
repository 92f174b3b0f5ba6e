// Package ingest ties extraction, chunking and storage together for one
// uploaded file.
package ingest

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"docchat/internal/chunker"
	"docchat/internal/extractor"
	"docchat/internal/vectorstore"
)

// Ingestor runs the extract → chunk → store flow. The file extension is
// the only input validated here; parse, embedding and storage failures
// propagate to the caller untouched.
type Ingestor struct {
	chunker *chunker.Chunker
	store   vectorstore.Store
}

func New(chunker *chunker.Chunker, store vectorstore.Store) *Ingestor {
	return &Ingestor{chunker: chunker, store: store}
}

// Ingest extracts text from the file, chunks it and adds the chunks to
// the vector store. Returns the number of chunks added. Re-ingesting the
// same file adds a second full set of records.
func (i *Ingestor) Ingest(ctx context.Context, filePath string) (int, error) {
	text, err := extractor.Extract(filePath)
	if err != nil {
		return 0, err
	}

	source := filepath.Base(filePath)
	chunks, err := i.chunker.Split(text, source)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		log.Info().Str("file", source).Msg("No chunks generated from content")
		return 0, nil
	}

	if err := i.store.Add(ctx, chunks); err != nil {
		return 0, err
	}

	log.Info().Str("file", source).Int("chunks", len(chunks)).Msg("Ingested file")
	return len(chunks), nil
}
