package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"estimator/internal/domain"
	"estimator/internal/vectorstore"
)

// categoryOverfetch widens the server-side limit when a category prefix has
// to be checked locally; Qdrant keyword matching is exact only.
const categoryOverfetch = 4

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// PointID maps a rate code to a stable Qdrant point id.
func PointID(code string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(code)).String()
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
}

type payload struct {
	RateCode   string   `json:"rate_code"`
	UnitType   string   `json:"unit_type"`
	TotalCost  float64  `json:"total_cost"`
	Categories []string `json:"categories,omitempty"`
}

func (s *Storage) Upsert(ctx context.Context, items []domain.VectorItem) error {
	points := make([]map[string]any, len(items))
	for i, it := range items {
		points[i] = map[string]any{
			"id":     PointID(it.RateCode),
			"vector": it.Vector,
			"payload": payload{
				RateCode:   it.RateCode,
				UnitType:   it.UnitType,
				TotalCost:  it.TotalCost,
				Categories: it.Categories,
			},
		}
	}
	return s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": points}, nil)
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int, f domain.Filters) ([]domain.VectorHit, error) {
	topK = vectorstore.TopK(topK)
	limit := topK
	if f.Category != "" {
		limit *= categoryOverfetch
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter := buildFilter(f); filter != nil {
		req["filter"] = filter
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.VectorHit, 0, min(topK, len(resp.Result)))
	for _, r := range resp.Result {
		p := r.Payload
		if !f.Match(p.UnitType, p.TotalCost, p.Categories) {
			continue
		}
		hits = append(hits, domain.VectorHit{RateCode: p.RateCode, Distance: 1 - r.Score})
		if len(hits) == topK {
			break
		}
	}
	return hits, nil
}

// buildFilter expresses the exact-match and range filters in Qdrant's
// filter language. Category prefixes are checked client-side.
func buildFilter(f domain.Filters) map[string]any {
	var must []map[string]any
	if f.UnitType != "" {
		must = append(must, map[string]any{"key": "unit_type", "match": map[string]any{"value": f.UnitType}})
	}
	if f.MinCost != nil || f.MaxCost != nil {
		rng := map[string]any{}
		if f.MinCost != nil {
			rng["gte"] = *f.MinCost
		}
		if f.MaxCost != nil {
			rng["lte"] = *f.MaxCost
		}
		must = append(must, map[string]any{"key": "total_cost", "range": rng})
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear(ctx context.Context) error {
	err := s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return nil
	}
	return err
}

// Count returns the number of points in the collection, zero when it is missing.
func (s *Storage) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

type statusError struct {
	method, url string
	code        int
	status      string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: %s", e.method, e.url, e.status)
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{method: method, url: url, code: resp.StatusCode, status: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
