package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/armchr/vectorapi/internal/config"
	"github.com/armchr/vectorapi/internal/errs"
	"github.com/armchr/vectorapi/internal/model"
	"github.com/armchr/vectorapi/internal/service/embedding"
	"github.com/armchr/vectorapi/internal/service/validation"
	"github.com/armchr/vectorapi/internal/service/vector"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

// NoResultsMessage is returned by Search when nothing matches or the
// collection does not exist yet.
const NoResultsMessage = "No results found."

// ModelBuilder builds a ready embedding model for one operation.
type ModelBuilder func(ctx context.Context, cfg embedding.Config, logger *zap.Logger) (embedding.EmbeddingModel, error)

// SplitFunc splits a document into overlapping chunks.
type SplitFunc func(text string, chunkSize, chunkOverlap int) ([]string, error)

// DocumentController sequences splitting, embedding, validation and the
// vector store to implement the ingest and search operations. Each
// operation is a linear pipeline; every stage gates the next and no
// store mutation happens before validation passes.
type DocumentController struct {
	db     vector.VectorDatabase
	build  ModelBuilder
	split  SplitFunc
	cfg    *config.Config
	logger *zap.Logger
}

// NewDocumentController creates a controller backed by the given store.
func NewDocumentController(db vector.VectorDatabase, cfg *config.Config, logger *zap.Logger) *DocumentController {
	return &DocumentController{
		db:     db,
		build:  embedding.NewReadyEmbeddingService,
		split:  splitRecursive,
		cfg:    cfg,
		logger: logger,
	}
}

func splitRecursive(text string, chunkSize, chunkOverlap int) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	return splitter.SplitText(text)
}

// IngestRequest carries one add-documents operation.
type IngestRequest struct {
	Content      string
	Source       string
	Collection   string
	Embedding    embedding.Config
	ChunkSize    int
	ChunkOverlap int
}

// IngestResult reports what an ingest wrote.
type IngestResult struct {
	ChunksWritten     int
	CollectionCreated bool
	Warnings          []string
}

// AddDocuments splits the document, embeds the chunks, validates them
// against the target collection and upserts the result. The collection
// is created with the provider's dimension if it does not exist yet.
func (c *DocumentController) AddDocuments(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, &errs.ValidationError{Message: "document content is empty"}
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = c.cfg.Chunking.Size
	}
	chunkOverlap := req.ChunkOverlap
	if chunkOverlap <= 0 {
		chunkOverlap = c.cfg.Chunking.Overlap
		if chunkOverlap >= chunkSize {
			// Configured default is meant for the default size; scale
			// it down for small explicit sizes.
			chunkOverlap = chunkSize / 5
		}
	}
	if chunkOverlap >= chunkSize {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("chunk overlap %d must be smaller than chunk size %d", chunkOverlap, chunkSize)}
	}

	texts, err := c.split(req.Content, chunkSize, chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to split document: %w", err)
	}
	if len(texts) == 0 {
		return nil, &errs.ValidationError{Message: "document produced no chunks"}
	}

	embeddingModel, err := c.build(ctx, req.Embedding, c.logger)
	if err != nil {
		return nil, err
	}

	compat := validation.CheckCompatibility(ctx, c.db, req.Collection, embeddingModel)
	if !compat.Valid {
		return nil, &errs.ValidationError{Message: compat.Reason, Remediation: compat.Remediation}
	}

	vectors, err := embeddingModel.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, err
	}

	batch := validation.CheckVectorBatch(vectors, embeddingModel.GetDimension(), c.cfg.Validation.MaxAbsValue)
	if !batch.Valid {
		return nil, &errs.ValidationError{
			Message: fmt.Sprintf("embedding batch failed validation (%d vectors)", batch.Count),
			Details: batch.Errors,
		}
	}

	result := &IngestResult{Warnings: batch.Warnings}

	if compat.Action == validation.ActionCreateCollection {
		if err := c.db.CreateCollection(ctx, req.Collection, embeddingModel.GetDimension(), vector.DistanceMetricCosine); err != nil {
			return nil, err
		}
		result.CollectionCreated = true
	}

	chunks := make([]*model.DocumentChunk, len(texts))
	cursor := 0
	for i, text := range texts {
		start, end := locateChunk(req.Content, text, cursor)
		if end > cursor {
			cursor = end
		}
		chunks[i] = &model.DocumentChunk{
			ID:          uuid.NewString(),
			Text:        text,
			Index:       i,
			Source:      req.Source,
			StartOffset: start,
			EndOffset:   end,
			Embedding:   vectors[i],
		}
	}

	if err := c.db.UpsertChunks(ctx, req.Collection, chunks); err != nil {
		return nil, err
	}

	result.ChunksWritten = len(chunks)
	c.logger.Info("Ingested document",
		zap.String("collection", req.Collection),
		zap.String("source", req.Source),
		zap.Int("chunks", result.ChunksWritten),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// locateChunk finds the chunk's span in the source document. Overlapping
// chunks can start before the cursor, so the search backs up by the
// chunk length first. Unlocatable chunks get a zero span.
func locateChunk(content, chunk string, cursor int) (int, int) {
	from := cursor - len(chunk)
	if from < 0 {
		from = 0
	}
	idx := strings.Index(content[from:], chunk)
	if idx < 0 {
		return 0, 0
	}
	start := from + idx
	return start, start + len(chunk)
}

// SearchRequest carries one search operation.
type SearchRequest struct {
	Query      string
	Collection string
	Embedding  embedding.Config
	Limit      int
}

// Search embeds the query and runs a similarity search, returning the
// hits as formatted text in descending-score order. A missing collection
// is a valid no-op target: it short-circuits to a no-results message
// without being created.
func (c *DocumentController) Search(ctx context.Context, req SearchRequest) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", &errs.ValidationError{Message: "query is empty"}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = c.cfg.Search.DefaultLimit
	}

	embeddingModel, err := c.build(ctx, req.Embedding, c.logger)
	if err != nil {
		return "", err
	}

	compat := validation.CheckCompatibility(ctx, c.db, req.Collection, embeddingModel)
	if compat.Action == validation.ActionCreateCollection {
		return NoResultsMessage, nil
	}
	if !compat.Valid {
		return "", &errs.ValidationError{Message: compat.Reason, Remediation: compat.Remediation}
	}

	queryVector, err := embeddingModel.GenerateEmbedding(ctx, req.Query)
	if err != nil {
		return "", err
	}

	verdict := validation.CheckVector(queryVector, embeddingModel.GetDimension(), c.cfg.Validation.MaxAbsValue)
	if !verdict.Valid {
		return "", &errs.ValidationError{Message: "query embedding failed validation", Details: verdict.Errors}
	}

	hits, err := c.db.SearchSimilar(ctx, req.Collection, queryVector, limit)
	if err != nil {
		return "", err
	}

	if len(hits) == 0 {
		return NoResultsMessage, nil
	}

	return c.formatHits(hits), nil
}

func (c *DocumentController) formatHits(hits []*model.SearchHit) string {
	sections := make([]string, 0, len(hits))
	for _, hit := range hits {
		var b strings.Builder
		fmt.Fprintf(&b, "Score: %.4f\n", hit.Score)
		b.WriteString(c.hitText(hit))
		if source, ok := hit.Payload["source"].(string); ok && source != "" {
			fmt.Fprintf(&b, "\nSource: %s", source)
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n---\n\n")
}

// hitText extracts display text from a hit's payload, probing the
// configured fields in order and falling back to raw serialization.
func (c *DocumentController) hitText(hit *model.SearchHit) string {
	for _, field := range c.cfg.Search.PayloadTextFields {
		if text, ok := hit.Payload[field].(string); ok && text != "" {
			return text
		}
	}
	raw, err := json.Marshal(hit.Payload)
	if err != nil {
		return fmt.Sprintf("%v", hit.Payload)
	}
	return string(raw)
}

// ListCollections returns the names of all collections in the store.
func (c *DocumentController) ListCollections(ctx context.Context) ([]string, error) {
	return c.db.ListCollections(ctx)
}

// DeleteCollection removes a collection and all of its points.
func (c *DocumentController) DeleteCollection(ctx context.Context, name string) error {
	if err := c.db.DeleteCollection(ctx, name); err != nil {
		return err
	}
	c.logger.Info("Deleted collection", zap.String("collection", name))
	return nil
}
