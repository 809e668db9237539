// internal/search/service.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// Query narrows an activity search. Keywords run a multi_match over the
// text fields; the remaining fields are exact filters.
type Query struct {
	Keywords      string
	ApplicationID string
	Types         []models.ActivityType
	Stage         models.Stage
	PerformedBy   string
	From          int
	Size          int
}

// Result is one page of matching activity documents together with the
// total hit count.
type Result struct {
	Activities []map[string]interface{}
	TotalHits  int64
	MaxScore   float64
	Took       int64
}

// Service runs read queries against the activity index.
type Service struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewService(client *elasticsearch.Client, index string, log logger.Logger) *Service {
	return &Service{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "activity_search"}),
	}
}

// SearchActivities executes a filtered full-text search over the activity
// index, newest first.
func (s *Service) SearchActivities(ctx context.Context, q Query) (*Result, error) {
	if q.Size < 1 {
		q.Size = 20
	}
	if q.Size > 100 {
		q.Size = 100
	}

	body, err := json.Marshal(buildActivityQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &q.From,
		Size:  &q.Size,
	}

	start := time.Now()
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search activities: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search activities: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("search response missing hits")
	}

	result := &Result{Took: time.Since(start).Milliseconds()}
	if total, ok := hits["total"].(map[string]interface{}); ok {
		if v, ok := total["value"].(float64); ok {
			result.TotalHits = int64(v)
		}
	}
	if ms, ok := hits["max_score"].(float64); ok {
		result.MaxScore = ms
	}
	if list, ok := hits["hits"].([]interface{}); ok {
		for _, hit := range list {
			if h, ok := hit.(map[string]interface{}); ok {
				if source, ok := h["_source"].(map[string]interface{}); ok {
					result.Activities = append(result.Activities, source)
				}
			}
		}
	}

	s.logger.Debug("activity search executed", map[string]interface{}{
		"totalHits": result.TotalHits,
		"tookMs":    result.Took,
	})
	return result, nil
}

func buildActivityQuery(q Query) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keywords,
				"fields": []string{"title^3", "description^2", "performed_by_name"},
				"type":   "best_fields",
			},
		})
	}
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if q.ApplicationID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"application_id": q.ApplicationID},
		})
	}
	if len(q.Types) > 0 {
		terms := make([]string, 0, len(q.Types))
		for _, t := range q.Types {
			terms = append(terms, string(t))
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"type": terms},
		})
	}
	if q.Stage != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"stage": string(q.Stage)},
		})
	}
	if q.PerformedBy != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"performed_by": q.PerformedBy},
		})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []map[string]interface{}{{"created_at": "desc"}},
	}
}
