package models

// Chunk represents one bounded segment of a document's extracted text.
// Immutable once created; Source always names the originating file.
type Chunk struct {
	Text    string
	Source  string
	Ordinal int // 1-based position within the source text
}
