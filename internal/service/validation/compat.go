// Package validation decides whether embedding output can be written to
// a given collection, and checks vector batches for shape and value
// sanity before they are persisted.
package validation

import (
	"context"
	"fmt"

	"github.com/armchr/vectorapi/internal/service/embedding"
	"github.com/armchr/vectorapi/internal/service/vector"
)

// Action tells the orchestrator what to do with a compatibility verdict.
type Action string

const (
	// ActionCreateCollection means the collection does not exist yet and
	// should be created with the provider's dimension before upserting.
	ActionCreateCollection Action = "create_collection"

	// ActionCompatible means the collection accepts this provider's vectors.
	ActionCompatible Action = "compatible"

	// ActionSizeMismatch means the collection's dimension differs from
	// the provider's and the write must be rejected.
	ActionSizeMismatch Action = "size_mismatch"

	// ActionError means collection metadata could not be retrieved.
	ActionError Action = "error"
)

// CompatibilityVerdict is the outcome of checking a provider against a
// collection.
type CompatibilityVerdict struct {
	Valid             bool
	Reason            string
	ExpectedDimension int
	ActualDimension   int // 0 when the collection does not exist
	Action            Action
	Remediation       []string
}

// CheckCompatibility decides whether the provider's output dimension is
// usable with the named collection. A missing collection is not an
// error: it is the normal first-write case and yields a valid verdict
// asking the caller to create it. The check order (existence, then
// metadata, then dimension compare) is load-bearing.
func CheckCompatibility(ctx context.Context, db vector.VectorDatabase, collectionName string, model embedding.EmbeddingModel) *CompatibilityVerdict {
	dim := model.GetDimension()

	exists, err := db.CollectionExists(ctx, collectionName)
	if err != nil {
		return &CompatibilityVerdict{
			Valid:             false,
			Reason:            fmt.Sprintf("failed to check collection %q: %v", collectionName, err),
			ExpectedDimension: dim,
			Action:            ActionError,
		}
	}

	if !exists {
		return &CompatibilityVerdict{
			Valid:             true,
			Reason:            fmt.Sprintf("collection %q does not exist and can be created with dimension %d", collectionName, dim),
			ExpectedDimension: dim,
			Action:            ActionCreateCollection,
		}
	}

	info, err := db.GetCollectionInfo(ctx, collectionName)
	if err != nil || info == nil {
		return &CompatibilityVerdict{
			Valid:             false,
			Reason:            fmt.Sprintf("failed to retrieve metadata for collection %q: %v", collectionName, err),
			ExpectedDimension: dim,
			Action:            ActionError,
		}
	}

	if info.Dimension != dim {
		return &CompatibilityVerdict{
			Valid:             false,
			Reason:            fmt.Sprintf("collection %q stores %d-dimensional vectors but %s produces %d-dimensional vectors", collectionName, info.Dimension, model.GetModelName(), dim),
			ExpectedDimension: dim,
			ActualDimension:   info.Dimension,
			Action:            ActionSizeMismatch,
			Remediation: []string{
				fmt.Sprintf("Switch to an embedding provider that produces %d-dimensional vectors", info.Dimension),
				fmt.Sprintf("Write to a new collection sized for %d-dimensional vectors", dim),
				fmt.Sprintf("Delete and recreate collection %q with dimension %d (destroys its data)", collectionName, dim),
			},
		}
	}

	return &CompatibilityVerdict{
		Valid:             true,
		Reason:            fmt.Sprintf("collection %q accepts %d-dimensional vectors", collectionName, dim),
		ExpectedDimension: dim,
		ActualDimension:   info.Dimension,
		Action:            ActionCompatible,
	}
}
