package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"clinicrag/internal/coreerr"
)

// payloadIDField stores the caller-supplied vector_id when it isn't itself a
// UUID, since Qdrant only accepts UUIDs or unsigned integers as point ids.
const payloadIDField = "_original_id"
const payloadSourceKindField = "_source_kind"
const payloadSourceIDField = "_source_id"
const payloadTextField = "_payload_text"

// QdrantStore is the primary C3 backend, grounded on the teacher's
// qdrant_vector.go and generalized to the richer VectorEntry/Store contract.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
	metric     string
}

// NewQdrantStore connects over the Qdrant gRPC API (default port 6334) and
// auto-creates the collection on first use. An API key may be supplied as a
// DSN query parameter: "http://host:6334?api_key=...".
func NewQdrantStore(dsn, collection string, dimensions int, metric string) (*QdrantStore, error) {
	if collection == "" {
		return nil, coreerr.New(coreerr.InvalidInput, "vector collection name is required")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "parse qdrant dsn", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	portStr := parsed.Port()
	if portStr == "" {
		portStr = "6334"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "invalid qdrant port", err)
	}
	cfg := &qdrant.Config{Host: host, Port: port}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "create qdrant client", err)
	}
	qs := &QdrantStore{
		client:     client,
		collection: collection,
		dimension:  dimensions,
		metric:     strings.ToLower(strings.TrimSpace(metric)),
	}
	if err := qs.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return qs, nil
}

func (q *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "check qdrant collection", err)
	}
	if exists {
		return nil
	}
	if q.dimension <= 0 {
		return coreerr.New(coreerr.Internal, "qdrant requires dimensions > 0")
	}
	var distance qdrant.Distance
	switch q.metric {
	case "l2", "euclidean":
		distance = qdrant.Distance_Euclid
	case "ip", "dot":
		distance = qdrant.Distance_Dot
	case "manhattan":
		distance = qdrant.Distance_Manhattan
	default:
		distance = qdrant.Distance_Cosine
	}
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: distance,
		}),
	})
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "create qdrant collection", err)
	}
	return nil
}

func qdrantPointID(vectorID string) string {
	if _, err := uuid.Parse(vectorID); err == nil {
		return vectorID
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(vectorID)).String()
}

func (q *QdrantStore) Upsert(ctx context.Context, entry VectorEntry) (string, error) {
	if q.dimension > 0 && len(entry.Embedding) != q.dimension {
		return "", coreerr.New(coreerr.Internal, "embedding dimension mismatch")
	}
	uuidStr := qdrantPointID(entry.VectorID)

	payload := make(map[string]any, len(entry.Metadata)+4)
	for k, v := range entry.Metadata {
		payload[k] = v
	}
	if uuidStr != entry.VectorID {
		payload[payloadIDField] = entry.VectorID
	}
	payload[payloadSourceKindField] = string(entry.SourceKind)
	payload[payloadSourceIDField] = entry.SourceID
	payload[payloadTextField] = entry.PayloadText

	vec := make([]float32, len(entry.Embedding))
	copy(vec, entry.Embedding)
	points := []*qdrant.PointStruct{{
		Id:      qdrant.NewIDUUID(uuidStr),
		Vectors: qdrant.NewVectorsDense(vec),
		Payload: qdrant.NewValueMap(payload),
	}}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: q.collection, Points: points})
	if err != nil {
		return "", coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant upsert", err)
	}
	return entry.VectorID, nil
}

func (q *QdrantStore) Delete(ctx context.Context, vectorID string) error {
	uuidStr := qdrantPointID(vectorID)
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(uuidStr)),
	})
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant delete", err)
	}
	return nil
}

func (q *QdrantStore) DeleteBySource(ctx context.Context, sourceKind SourceKind, sourceID string) error {
	filter := &qdrant.Filter{Must: []*qdrant.Condition{
		qdrant.NewMatch(payloadSourceKindField, string(sourceKind)),
		qdrant.NewMatch(payloadSourceIDField, sourceID),
	}}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant delete by source", err)
	}
	return nil
}

func (q *QdrantStore) Search(ctx context.Context, queryVector []float32, k int, filters SearchFilter, minScore float64) ([]ScoredEntry, error) {
	if k <= 0 {
		k = 10
	}
	vec := make([]float32, len(queryVector))
	copy(vec, queryVector)

	var qf *qdrant.Filter
	if len(filters) > 0 {
		must := make([]*qdrant.Condition, 0, len(filters))
		for k, v := range filters {
			must = append(must, qdrant.NewMatch(k, v))
		}
		qf = &qdrant.Filter{Must: must}
	}
	limit := uint64(k)
	scoreThreshold := float32(minScore)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         qf,
		ScoreThreshold: &scoreThreshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant search", err)
	}
	out := make([]ScoredEntry, 0, len(hits))
	for _, hit := range hits {
		out = append(out, ScoredEntry{Entry: entryFromPoint(hit.Id, hit.Payload), Score: float64(hit.Score)})
	}
	sortScored(out)
	return out, nil
}

// SearchByField matches Exact via a Qdrant payload filter, and Fuzzy by
// scrolling candidates and scoring client-side, since Qdrant has no native
// fuzzy text match.
func (q *QdrantStore) SearchByField(ctx context.Context, field, value string, strategy Strategy) ([]ScoredEntry, error) {
	if strategy == Exact {
		filter := &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch(field, value)}}
		limit := uint32(100)
		points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collection,
			Filter:         filter,
			Limit:          &limit,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant scroll", err)
		}
		out := make([]ScoredEntry, 0, len(points))
		for _, p := range points {
			out = append(out, ScoredEntry{Entry: entryFromPoint(p.Id, p.Payload), Score: 1.0})
		}
		sortScored(out)
		return out, nil
	}

	limit := uint32(1000)
	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant scroll", err)
	}
	var out []ScoredEntry
	for _, p := range points {
		entry := entryFromPoint(p.Id, p.Payload)
		candidate, ok := entry.Metadata[field]
		if !ok {
			continue
		}
		score := FuzzyScore(value, candidate)
		if score < DefaultFuzzyThreshold {
			continue
		}
		out = append(out, ScoredEntry{Entry: entry, Score: score})
	}
	sortScored(out)
	return out, nil
}

func (q *QdrantStore) Stats(ctx context.Context) (Stats, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return Stats{}, coreerr.Wrap(coreerr.ProviderUnavailable, "qdrant collection info", err)
	}
	return Stats{Count: int(info.GetPointsCount()), Dim: q.dimension, ModelID: fmt.Sprintf("qdrant:%s", q.collection)}, nil
}

func (q *QdrantStore) Close() error {
	return q.client.Close()
}

func entryFromPoint(id *qdrant.PointId, payload map[string]*qdrant.Value) VectorEntry {
	vectorID := id.GetUuid()
	if vectorID == "" {
		vectorID = id.String()
	}
	metadata := make(map[string]string)
	var sourceKind, sourceID, payloadText string
	for k, v := range payload {
		switch k {
		case payloadIDField:
			vectorID = v.GetStringValue()
		case payloadSourceKindField:
			sourceKind = v.GetStringValue()
		case payloadSourceIDField:
			sourceID = v.GetStringValue()
		case payloadTextField:
			payloadText = v.GetStringValue()
		default:
			metadata[k] = v.GetStringValue()
		}
	}
	return VectorEntry{
		VectorID:    vectorID,
		SourceKind:  SourceKind(sourceKind),
		SourceID:    sourceID,
		PayloadText: payloadText,
		Metadata:    metadata,
	}
}
