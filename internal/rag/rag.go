// Package rag implements the fixed two-stage retrieve→generate flow.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"docchat/internal/models"
	"docchat/internal/vectorstore"
)

// Generator produces a natural-language completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// State is the per-turn request state. Each stage returns a new value
// with its field filled in; nothing is mutated in place, and no state is
// carried between turns.
type State struct {
	Question  string
	Retrieved []vectorstore.Record
	Answer    string
}

// Pipeline wires the vector store and the generator into the two-stage
// flow. Each invocation is independent.
type Pipeline struct {
	store     vectorstore.Store
	generator Generator
	topK      int
}

func NewPipeline(store vectorstore.Store, generator Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}
	return &Pipeline{store: store, generator: generator, topK: topK}
}

// Run executes retrieve then generate for the question and returns the
// terminal state. Retrieval and provider failures fail the whole turn.
func (p *Pipeline) Run(ctx context.Context, question string) (State, error) {
	state := State{Question: question}

	state, err := p.retrieve(ctx, state)
	if err != nil {
		return state, err
	}
	return p.generate(ctx, state)
}

func (p *Pipeline) retrieve(ctx context.Context, state State) (State, error) {
	records, err := p.store.Query(ctx, state.Question, p.topK)
	if err != nil {
		return state, fmt.Errorf("failed to retrieve context: %w", err)
	}

	log.Debug().Str("question", state.Question).Int("retrieved", len(records)).Msg("Retrieved context")
	state.Retrieved = records
	return state, nil
}

func (p *Pipeline) generate(ctx context.Context, state State) (State, error) {
	prompt := BuildPrompt(state.Question, state.Retrieved)

	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return state, fmt.Errorf("failed to generate answer: %w", err)
	}

	state.Answer = answer
	return state, nil
}

// BuildPrompt assembles the single prompt string: system instruction,
// retrieved chunks with 1-based headers naming their source file, the
// question, and the closing instruction. An empty retrieval yields an
// empty context section.
func BuildPrompt(question string, records []vectorstore.Record) string {
	var contextText strings.Builder
	for i, record := range records {
		if i > 0 {
			contextText.WriteString("\n\n")
		}
		source := record.Metadata[models.MetadataSourceKey]
		if source == "" {
			source = "unknown"
		}
		contextText.WriteString(fmt.Sprintf(models.ChunkHeaderFormat, i+1, source))
		contextText.WriteString("\n")
		contextText.WriteString(record.Content)
	}

	return fmt.Sprintf(models.RAGPromptTemplate,
		models.SystemPrompt,
		contextText.String(),
		question,
		models.ClosingInstruction,
	)
}
