package vector

import (
	"context"

	"github.com/armchr/vectorapi/internal/model"
)

// VectorDatabase represents a generic vector database interface
// This abstraction allows swapping between Qdrant, Weaviate, Pinecone, etc.
type VectorDatabase interface {
	// ListCollections returns the names of all collections
	ListCollections(ctx context.Context) ([]string, error)

	// CreateCollection creates a new collection with the specified dimension and distance metric
	CreateCollection(ctx context.Context, collectionName string, vectorDim int, distance DistanceMetric) error

	// DeleteCollection deletes a collection
	DeleteCollection(ctx context.Context, collectionName string) error

	// CollectionExists checks if a collection exists
	CollectionExists(ctx context.Context, collectionName string) (bool, error)

	// GetCollectionInfo returns the collection's dimension and distance
	// metric, or nil if the collection does not exist
	GetCollectionInfo(ctx context.Context, collectionName string) (*CollectionInfo, error)

	// UpsertChunks inserts or updates document chunks. The call returns
	// only after the store acknowledges durability of the write.
	UpsertChunks(ctx context.Context, collectionName string, chunks []*model.DocumentChunk) error

	// SearchSimilar finds the top-limit chunks nearest to the query
	// vector, ordered by descending score
	SearchSimilar(ctx context.Context, collectionName string, queryVector []float32, limit int) ([]*model.SearchHit, error)

	// Health checks the health of the vector database
	Health(ctx context.Context) error

	// Close closes the database connection
	Close() error
}

// CollectionInfo describes a collection as the store reports it.
type CollectionInfo struct {
	Name      string
	Dimension int
	Distance  DistanceMetric
}

// DistanceMetric represents the distance metric used for vector similarity
type DistanceMetric string

const (
	// DistanceMetricCosine uses cosine similarity (best for normalized embeddings)
	DistanceMetricCosine DistanceMetric = "cosine"

	// DistanceMetricDot uses dot product similarity
	DistanceMetricDot DistanceMetric = "dot"

	// DistanceMetricEuclidean uses Euclidean distance
	DistanceMetricEuclidean DistanceMetric = "euclidean"
)
