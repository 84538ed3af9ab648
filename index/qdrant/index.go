package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
)

const (
	// metaSuffix names the companion collection that records the embedding
	// model identity. Qdrant has no native collection-level metadata, so
	// the schema is carried as the payload of a single reserved point.
	metaSuffix = "__meta"

	metaPointID = 1
)

// Config holds connection settings for a Qdrant instance.
type Config struct {
	Host   string
	Port   int
	UseTLS bool
}

// DefaultConfig returns settings for a local Qdrant started with the
// default docker compose setup.
func DefaultConfig() *Config {
	return &Config{
		Host: "localhost",
		Port: 6334,
	}
}

// Index implements index.Index against a Qdrant instance over gRPC.
type Index struct {
	client *qdrant.Client
	logger *slog.Logger
}

var _ index.Index = (*Index)(nil)

// New connects to Qdrant and returns the index handle.
//
// Returns index.Index interface to enforce abstraction.
func New(config *Config) (index.Index, error) {
	if config == nil {
		config = DefaultConfig()
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Index{
		client: client,
		logger: slog.Default().With("component", "qdrant-index"),
	}, nil
}

// Close closes the underlying gRPC connection.
func (ix *Index) Close() error {
	return ix.client.Close()
}

// EnsureCollection creates the collection if missing, or validates the
// existing collection against the schema.
func (ix *Index) EnsureCollection(ctx context.Context, schema index.Schema) error {
	exists, err := ix.client.CollectionExists(ctx, schema.Name)
	if err != nil {
		return mapError(err)
	}

	if !exists {
		ix.logger.Info("creating collection", "collection", schema.Name, "dimensions", schema.Dimensions)
		return ix.CreateCollection(ctx, schema)
	}

	info, err := ix.Describe(ctx, schema.Name)
	if err != nil {
		return err
	}
	return validateSchema(schema, info)
}

// CreateCollection creates the collection and its schema metadata.
// Creation is never implicit-destructive: an existing collection returns
// ErrCollectionExists and must be dropped explicitly first.
func (ix *Index) CreateCollection(ctx context.Context, schema index.Schema) error {
	exists, err := ix.client.CollectionExists(ctx, schema.Name)
	if err != nil {
		return mapError(err)
	}
	if exists {
		return fmt.Errorf("%w: %s", index.ErrCollectionExists, schema.Name)
	}

	err = ix.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: schema.Name,
		VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
			Params: &qdrant.VectorParams{
				Size:     uint64(schema.Dimensions),
				Distance: toDistance(schema.Metric),
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", schema.Name, mapError(err))
	}

	if err := ix.writeMeta(ctx, schema); err != nil {
		return fmt.Errorf("record schema metadata for %s: %w", schema.Name, err)
	}

	return nil
}

// DeleteCollection removes the collection and its metadata companion.
func (ix *Index) DeleteCollection(ctx context.Context, name string) error {
	if err := ix.client.DeleteCollection(ctx, name); err != nil {
		if status.Code(err) != codes.NotFound {
			return mapError(err)
		}
	}
	if err := ix.client.DeleteCollection(ctx, name+metaSuffix); err != nil {
		if status.Code(err) != codes.NotFound {
			return mapError(err)
		}
	}
	return nil
}

// Upsert inserts or overwrites entries keyed by their ids. The call waits
// for the write to be applied so committed batches survive a crash of the
// ingesting process.
func (ix *Index) Upsert(ctx context.Context, collection string, entries []*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(entries))
	for i, entry := range entries {
		points[i] = &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Num{Num: uint64(entry.Id)},
			},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{
				Vector: &qdrant.Vector{Data: entry.Vector},
			}},
			Payload: toPayloadValues(entry.Payload),
		}
	}

	waitUpsert := true
	_, err := ix.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &waitUpsert,
		Points:         points,
	})
	if err != nil {
		ix.logger.Error("failed to upsert points", "collection", collection, "points", len(points), "err", err)
		return mapError(err)
	}
	return nil
}

// Query returns up to limit nearest neighbors ordered by descending score.
func (ix *Index) Query(ctx context.Context, collection string, vector []float32, limit int) ([]*core.SearchResult, error) {
	if len(vector) == 0 {
		return nil, index.ErrEmptyVector
	}

	qlimit := uint64(limit)
	points, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query: &qdrant.Query{
			Variant: &qdrant.Query_Nearest{
				Nearest: &qdrant.VectorInput{
					Variant: &qdrant.VectorInput_Dense{
						Dense: &qdrant.DenseVector{Data: vector},
					},
				},
			},
		},
		Limit: &qlimit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, mapError(err)
	}

	results := make([]*core.SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, &core.SearchResult{
			Id:      core.ID(point.GetId().GetNum()),
			Score:   point.GetScore(),
			Payload: fromPayloadValues(point.GetPayload()),
		})
	}
	return results, nil
}

// FindByArtist scrolls the collection with an exact-match payload filter.
// No query vector is involved, so scores are zero.
func (ix *Index) FindByArtist(ctx context.Context, collection, artist string, limit int) ([]*core.SearchResult, error) {
	slimit := uint32(limit)
	points, err := ix.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				{
					ConditionOneOf: &qdrant.Condition_Field{
						Field: &qdrant.FieldCondition{
							Key: fieldArtist,
							Match: &qdrant.Match{
								MatchValue: &qdrant.Match_Keyword{Keyword: artist},
							},
						},
					},
				},
			},
		},
		Limit: &slimit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, mapError(err)
	}

	results := make([]*core.SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, &core.SearchResult{
			Id:      core.ID(point.GetId().GetNum()),
			Payload: fromPayloadValues(point.GetPayload()),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})
	return results, nil
}

// Describe reports the collection's schema and entry count. The embedding
// model identity is read back from the metadata companion collection.
func (ix *Index) Describe(ctx context.Context, name string) (*index.CollectionInfo, error) {
	info, err := ix.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, mapError(err)
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	result := &index.CollectionInfo{
		Name:       name,
		Dimensions: int(params.GetSize()),
		Metric:     fromDistance(params.GetDistance()),
		Points:     info.GetPointsCount(),
	}

	model, err := ix.readMeta(ctx, name)
	if err != nil {
		return nil, err
	}
	result.EmbeddingModel = model

	return result, nil
}

// writeMeta creates the metadata companion collection and stores the
// schema as the payload of its single point.
func (ix *Index) writeMeta(ctx context.Context, schema index.Schema) error {
	metaName := schema.Name + metaSuffix
	err := ix.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: metaName,
		VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
			Params: &qdrant.VectorParams{
				Size:     1,
				Distance: qdrant.Distance_Cosine,
			},
		}},
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return mapError(err)
	}

	waitUpsert := true
	_, err = ix.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: metaName,
		Wait:           &waitUpsert,
		Points: []*qdrant.PointStruct{
			{
				Id: &qdrant.PointId{
					PointIdOptions: &qdrant.PointId_Num{Num: metaPointID},
				},
				Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: []float32{1}},
				}},
				Payload: map[string]*qdrant.Value{
					"embedding_model": stringValue(schema.EmbeddingModel),
					"dimensions":      stringValue(strconv.Itoa(schema.Dimensions)),
					"metric":          stringValue(string(schema.Metric)),
				},
			},
		},
	})
	if err != nil {
		return mapError(err)
	}
	return nil
}

// readMeta returns the recorded embedding model for a collection, or the
// empty string when the collection predates metadata recording.
func (ix *Index) readMeta(ctx context.Context, name string) (string, error) {
	withPayload := true
	points, err := ix.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: name + metaSuffix,
		Ids: []*qdrant.PointId{
			{PointIdOptions: &qdrant.PointId_Num{Num: metaPointID}},
		},
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: withPayload},
		},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", mapError(err)
	}
	if len(points) == 0 {
		return "", nil
	}
	return points[0].GetPayload()["embedding_model"].GetStringValue(), nil
}

// validateSchema compares an expected schema against the observed state of
// an existing collection.
func validateSchema(want index.Schema, got *index.CollectionInfo) error {
	if got.Dimensions != want.Dimensions {
		return fmt.Errorf("%w: collection %s has %d dimensions, expected %d",
			index.ErrSchemaMismatch, want.Name, got.Dimensions, want.Dimensions)
	}
	if got.Metric != want.Metric {
		return fmt.Errorf("%w: collection %s uses metric %q, expected %q",
			index.ErrSchemaMismatch, want.Name, got.Metric, want.Metric)
	}
	if got.EmbeddingModel != "" && want.EmbeddingModel != "" && got.EmbeddingModel != want.EmbeddingModel {
		return fmt.Errorf("%w: collection %s was built with model %q, expected %q",
			index.ErrSchemaMismatch, want.Name, got.EmbeddingModel, want.EmbeddingModel)
	}
	return nil
}

// mapError translates gRPC status codes into the index error taxonomy.
func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", index.ErrNotInitialized, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", index.ErrUnavailable, err)
	default:
		return err
	}
}

func toDistance(metric index.Metric) qdrant.Distance {
	switch metric {
	case index.MetricCosine:
		return qdrant.Distance_Cosine
	default:
		return qdrant.Distance_Cosine
	}
}

func fromDistance(distance qdrant.Distance) index.Metric {
	switch distance {
	case qdrant.Distance_Cosine:
		return index.MetricCosine
	default:
		return index.Metric(distance.String())
	}
}
