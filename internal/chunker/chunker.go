package chunker

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"docchat/internal/models"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is the shared region between consecutive chunks.
	DefaultChunkOverlap = 150
)

// Chunker splits extracted text into ordered overlapping chunks. It
// prefers natural boundaries (paragraph, line, word) and falls back to
// hard character cuts only when a single fragment exceeds the chunk size.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// New creates a Chunker with the given size and overlap; non-positive
// values fall back to the defaults.
func New(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	s := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	return &Chunker{splitter: s}
}

// Split breaks text into chunks tagged with the source file name.
// Ordinals are 1-based and reflect position in the source text. Empty or
// whitespace-only text yields no chunks; anything shorter than the chunk
// size degenerates to a single chunk.
func (c *Chunker) Split(text, source string) ([]models.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:    part,
			Source:  source,
			Ordinal: len(chunks) + 1,
		})
	}
	return chunks, nil
}
