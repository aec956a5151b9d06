package embedding

// EmbeddingProvider turns text into a vector. taskType hints whether the
// text is an indexed document or a search query; providers may ignore it.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
