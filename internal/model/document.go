package model

// DocumentChunk is one contiguous span of a source document, embedded
// and ready to be stored as a single point.
type DocumentChunk struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Index       int       `json:"index"`
	Source      string    `json:"source,omitempty"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	Embedding   []float32 `json:"-"`
}

// SearchHit is one scored point returned by a similarity search.
type SearchHit struct {
	ID      string                 `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}
