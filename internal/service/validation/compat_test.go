package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/armchr/vectorapi/internal/model"
	"github.com/armchr/vectorapi/internal/service/vector"
)

type fakeStore struct {
	collections map[string]*vector.CollectionInfo
	existsErr   error
	infoErr     error
}

func (f *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) CreateCollection(ctx context.Context, name string, dim int, distance vector.DistanceMetric) error {
	return nil
}

func (f *fakeStore) DeleteCollection(ctx context.Context, name string) error { return nil }

func (f *fakeStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeStore) GetCollectionInfo(ctx context.Context, name string) (*vector.CollectionInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.collections[name], nil
}

func (f *fakeStore) UpsertChunks(ctx context.Context, name string, chunks []*model.DocumentChunk) error {
	return nil
}

func (f *fakeStore) SearchSimilar(ctx context.Context, name string, queryVector []float32, limit int) ([]*model.SearchHit, error) {
	return nil, nil
}

func (f *fakeStore) Health(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                     { return nil }

type fakeModel struct {
	dim  int
	name string
}

func (f *fakeModel) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dim), nil
}

func (f *fakeModel) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func (f *fakeModel) GetDimension() int    { return f.dim }
func (f *fakeModel) GetModelName() string { return f.name }

func TestCheckCompatibility_MissingCollection(t *testing.T) {
	store := &fakeStore{collections: map[string]*vector.CollectionInfo{}}

	for _, dim := range []int{4, 768, 1536} {
		verdict := CheckCompatibility(context.Background(), store, "docs", &fakeModel{dim: dim, name: "test"})
		if !verdict.Valid {
			t.Fatalf("missing collection must be valid, got: %s", verdict.Reason)
		}
		if verdict.Action != ActionCreateCollection {
			t.Errorf("expected action %q, got %q", ActionCreateCollection, verdict.Action)
		}
		if verdict.ExpectedDimension != dim {
			t.Errorf("expected dimension %d, got %d", dim, verdict.ExpectedDimension)
		}
	}
}

func TestCheckCompatibility_MatchingDimension(t *testing.T) {
	store := &fakeStore{collections: map[string]*vector.CollectionInfo{
		"docs": {Name: "docs", Dimension: 768, Distance: vector.DistanceMetricCosine},
	}}

	verdict := CheckCompatibility(context.Background(), store, "docs", &fakeModel{dim: 768, name: "test"})

	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got: %s", verdict.Reason)
	}
	if verdict.Action != ActionCompatible {
		t.Errorf("expected action %q, got %q", ActionCompatible, verdict.Action)
	}
	if verdict.ActualDimension != 768 {
		t.Errorf("expected actual dimension 768, got %d", verdict.ActualDimension)
	}
}

func TestCheckCompatibility_SizeMismatch(t *testing.T) {
	store := &fakeStore{collections: map[string]*vector.CollectionInfo{
		"docs": {Name: "docs", Dimension: 768, Distance: vector.DistanceMetricCosine},
	}}

	verdict := CheckCompatibility(context.Background(), store, "docs", &fakeModel{dim: 1536, name: "test"})

	if verdict.Valid {
		t.Fatal("expected invalid verdict on dimension mismatch")
	}
	if verdict.Action != ActionSizeMismatch {
		t.Errorf("expected action %q, got %q", ActionSizeMismatch, verdict.Action)
	}
	if verdict.ExpectedDimension != 1536 || verdict.ActualDimension != 768 {
		t.Errorf("expected dims 1536/768, got %d/%d", verdict.ExpectedDimension, verdict.ActualDimension)
	}
	if len(verdict.Remediation) != 3 {
		t.Fatalf("expected exactly 3 remediation suggestions, got %d: %v", len(verdict.Remediation), verdict.Remediation)
	}
}

func TestCheckCompatibility_StoreErrors(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{
			name:  "existence check fails",
			store: &fakeStore{existsErr: errors.New("connection refused")},
		},
		{
			name: "metadata retrieval fails",
			store: &fakeStore{
				collections: map[string]*vector.CollectionInfo{"docs": {Name: "docs", Dimension: 768}},
				infoErr:     errors.New("connection reset"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := CheckCompatibility(context.Background(), tt.store, "docs", &fakeModel{dim: 768, name: "test"})
			if verdict.Valid {
				t.Fatal("expected invalid verdict when the store fails")
			}
			if verdict.Action != ActionError {
				t.Errorf("expected action %q, got %q", ActionError, verdict.Action)
			}
		})
	}
}
