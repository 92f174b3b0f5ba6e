package models

const (
	MetadataSourceKey  = "source"
	MetadataOrdinalKey = "ordinal"

	ChunkHeaderFormat = "[Doc %d - %s]"

	SystemPrompt = "You are a helpful company assistant. Use ONLY the provided documents to answer.\n" +
		"If the answer is not clearly present, say you don't know and suggest where " +
		"the user might find it.\n\n"

	ClosingInstruction = "Answer in a clear, concise way. If relevant, mention which document you used."
)

var (
	RAGPromptTemplate = `%sContext:
%s

User question: %s

%s`
)
