package vector

import (
	"context"
	"fmt"

	"github.com/armchr/vectorapi/internal/errs"
	"github.com/armchr/vectorapi/internal/model"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// QdrantDatabase implements VectorDatabase interface using Qdrant
type QdrantDatabase struct {
	client *qdrant.Client
	logger *zap.Logger
}

// NewQdrantDatabase creates a new Qdrant database connection
func NewQdrantDatabase(host string, port int, apiKey string, useTLS bool, logger *zap.Logger) (*QdrantDatabase, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantDatabase{
		client: client,
		logger: logger,
	}, nil
}

// ListCollections returns the names of all collections
func (q *QdrantDatabase) ListCollections(ctx context.Context) ([]string, error) {
	names, err := q.client.ListCollections(ctx)
	if err != nil {
		return nil, &errs.StoreError{Op: "list_collections", Err: err}
	}
	return names, nil
}

// CreateCollection creates a new collection with the specified dimension and distance metric
func (q *QdrantDatabase) CreateCollection(ctx context.Context, collectionName string, vectorDim int, distance DistanceMetric) error {
	var qdrantDistance qdrant.Distance
	switch distance {
	case DistanceMetricCosine:
		qdrantDistance = qdrant.Distance_Cosine
	case DistanceMetricDot:
		qdrantDistance = qdrant.Distance_Dot
	case DistanceMetricEuclidean:
		qdrantDistance = qdrant.Distance_Euclid
	default:
		qdrantDistance = qdrant.Distance_Cosine
	}

	err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorDim),
			Distance: qdrantDistance,
		}),
	})
	if err != nil {
		return &errs.StoreError{Op: "create_collection", Err: err}
	}

	q.logger.Info("Created Qdrant collection", zap.String("collection", collectionName), zap.Int("dim", vectorDim))
	return nil
}

// DeleteCollection deletes a collection
func (q *QdrantDatabase) DeleteCollection(ctx context.Context, collectionName string) error {
	err := q.client.DeleteCollection(ctx, collectionName)
	if err != nil {
		return &errs.StoreError{Op: "delete_collection", Err: err}
	}
	return nil
}

// CollectionExists checks if a collection exists
func (q *QdrantDatabase) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	exists, err := q.client.CollectionExists(ctx, collectionName)
	if err != nil {
		return false, &errs.StoreError{Op: "collection_exists", Err: err}
	}
	return exists, nil
}

// GetCollectionInfo returns dimension and distance metric for a collection,
// or nil if the collection does not exist
func (q *QdrantDatabase) GetCollectionInfo(ctx context.Context, collectionName string) (*CollectionInfo, error) {
	exists, err := q.CollectionExists(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	info, err := q.client.GetCollectionInfo(ctx, collectionName)
	if err != nil {
		return nil, &errs.StoreError{Op: "get_collection_info", Err: err}
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return nil, &errs.StoreError{Op: "get_collection_info", Err: fmt.Errorf("collection %s has no vector params", collectionName)}
	}

	return &CollectionInfo{
		Name:      collectionName,
		Dimension: int(params.GetSize()),
		Distance:  distanceFromQdrant(params.GetDistance()),
	}, nil
}

// UpsertChunks inserts or updates document chunks in the vector database.
// Wait is set so the call returns only once the write is durable.
func (q *QdrantDatabase) UpsertChunks(ctx context.Context, collectionName string, chunks []*model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			q.logger.Warn("Skipping chunk without embedding", zap.String("id", chunk.ID))
			continue
		}

		payload := map[string]any{
			"text":         chunk.Text,
			"chunk_index":  chunk.Index,
			"start_offset": chunk.StartOffset,
			"end_offset":   chunk.EndOffset,
		}
		if chunk.Source != "" {
			payload["source"] = chunk.Source
		}

		point := &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(chunk.ID),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}
		points = append(points, point)
	}

	if len(points) == 0 {
		q.logger.Warn("No points to upsert after filtering", zap.String("collection", collectionName))
		return nil
	}

	q.logger.Debug("Attempting upsert",
		zap.String("collection", collectionName),
		zap.Int("points_count", len(points)))

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		q.logger.Error("Upsert failed",
			zap.String("collection", collectionName),
			zap.Error(err))
		return &errs.StoreError{Op: "upsert", Err: err}
	}

	q.logger.Info("Upserted chunks to Qdrant",
		zap.String("collection", collectionName),
		zap.Int("count", len(points)))
	return nil
}

// SearchSimilar finds similar chunks using vector similarity search
func (q *QdrantDatabase) SearchSimilar(ctx context.Context, collectionName string, queryVector []float32, limit int) ([]*model.SearchHit, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &errs.StoreError{Op: "search", Err: err}
	}

	hits := make([]*model.SearchHit, 0, len(searchResult))
	for _, point := range searchResult {
		hits = append(hits, &model.SearchHit{
			ID:      point.Id.GetUuid(),
			Score:   point.Score,
			Payload: payloadToMap(point.GetPayload()),
		})
	}

	return hits, nil
}

// Health checks the health of the vector database
func (q *QdrantDatabase) Health(ctx context.Context) error {
	_, err := q.client.HealthCheck(ctx)
	if err != nil {
		return &errs.StoreError{Op: "health", Err: err}
	}
	return nil
}

// Close closes the database connection
func (q *QdrantDatabase) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// Helper functions

func distanceFromQdrant(d qdrant.Distance) DistanceMetric {
	switch d {
	case qdrant.Distance_Cosine:
		return DistanceMetricCosine
	case qdrant.Distance_Dot:
		return DistanceMetricDot
	case qdrant.Distance_Euclid:
		return DistanceMetricEuclidean
	default:
		return DistanceMetric(d.String())
	}
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]interface{} {
	if payload == nil {
		return nil
	}

	result := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		result[key] = valueToInterface(value)
	}
	return result
}

func valueToInterface(value *qdrant.Value) interface{} {
	switch v := value.Kind.(type) {
	case *qdrant.Value_StringValue:
		return v.StringValue
	case *qdrant.Value_IntegerValue:
		return float64(v.IntegerValue)
	case *qdrant.Value_DoubleValue:
		return v.DoubleValue
	case *qdrant.Value_BoolValue:
		return v.BoolValue
	case *qdrant.Value_StructValue:
		return structToMap(v.StructValue)
	case *qdrant.Value_ListValue:
		items := make([]interface{}, 0, len(v.ListValue.Values))
		for _, item := range v.ListValue.Values {
			items = append(items, valueToInterface(item))
		}
		return items
	default:
		return nil
	}
}

func structToMap(s *qdrant.Struct) map[string]interface{} {
	result := make(map[string]interface{})
	if s == nil || s.Fields == nil {
		return result
	}

	for key, value := range s.Fields {
		result[key] = valueToInterface(value)
	}
	return result
}
