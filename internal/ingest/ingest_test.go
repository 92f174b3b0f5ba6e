package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/chunker"
	"docchat/internal/extractor"
	"docchat/internal/models"
	"docchat/internal/vectorstore"
)

// countingStore records every Add call without persisting anything.
type countingStore struct {
	addCalls int
	added    []models.Chunk
	addErr   error
}

func (s *countingStore) Add(_ context.Context, chunks []models.Chunk) error {
	s.addCalls++
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, chunks...)
	return nil
}

func (s *countingStore) Query(context.Context, string, int) ([]vectorstore.Record, error) {
	return nil, nil
}

func (s *countingStore) Count(context.Context) (int, error) {
	return len(s.added), nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestTxt(t *testing.T) {
	store := &countingStore{}
	ing := New(chunker.New(800, 150), store)

	path := writeFile(t, "policy.txt", "Vacation days: 20 per year.")
	count, err := ing.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, store.addCalls)
	require.Len(t, store.added, 1)
	assert.Equal(t, "policy.txt", store.added[0].Source)
	assert.Equal(t, "Vacation days: 20 per year.", store.added[0].Text)
}

func TestIngestUnsupportedNeverTouchesStore(t *testing.T) {
	store := &countingStore{}
	ing := New(chunker.New(800, 150), store)

	path := writeFile(t, "setup.exe", "binary")
	_, err := ing.Ingest(context.Background(), path)
	require.Error(t, err)

	assert.True(t, errors.Is(err, extractor.ErrUnsupportedFormat))
	assert.Equal(t, 0, store.addCalls)
}

func TestIngestCountMatchesChunker(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "word%04d ", i)
	}
	text := b.String()

	split := chunker.New(800, 150)
	expected, err := split.Split(text, "long.txt")
	require.NoError(t, err)
	require.Greater(t, len(expected), 1)

	store := &countingStore{}
	ing := New(split, store)

	path := writeFile(t, "long.txt", text)
	count, err := ing.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, len(expected), count)
	assert.Len(t, store.added, len(expected))
}

func TestIngestTwiceDoubleCounts(t *testing.T) {
	store := &countingStore{}
	ing := New(chunker.New(800, 150), store)

	path := writeFile(t, "policy.txt", "Vacation days: 20 per year.")

	first, err := ing.Ingest(context.Background(), path)
	require.NoError(t, err)
	second, err := ing.Ingest(context.Background(), path)
	require.NoError(t, err)

	// ingestion is not idempotent: the store holds two full sets
	assert.Equal(t, first, second)
	assert.Len(t, store.added, first+second)
}

func TestIngestStoreFailurePropagates(t *testing.T) {
	store := &countingStore{addErr: errors.New("provider quota exceeded")}
	ing := New(chunker.New(800, 150), store)

	path := writeFile(t, "policy.txt", "Vacation days: 20 per year.")
	_, err := ing.Ingest(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider quota exceeded")
}
