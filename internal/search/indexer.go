// internal/search/indexer.go

// Package search mirrors the activity log into Elasticsearch and serves
// full-text queries over it. Indexing is best-effort: the Postgres log is
// the source of truth and the index can always be rebuilt from it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// activityDocument is the flattened index representation of an activity.
// Metadata is stored as a rendered object so it stays queryable without a
// strict mapping per activity type.
type activityDocument struct {
	ID              string                 `json:"id"`
	ApplicationID   string                 `json:"application_id"`
	Type            string                 `json:"type"`
	Stage           string                 `json:"stage,omitempty"`
	SubStage        string                 `json:"sub_stage,omitempty"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description,omitempty"`
	PerformedBy     string                 `json:"performed_by"`
	PerformedByName string                 `json:"performed_by_name,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// Indexer writes activity documents into a single index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "activity_indexer"}),
	}
}

func (i *Indexer) Index(ctx context.Context, activity *models.Activity) error {
	doc := activityDocument{
		ID:              activity.ID,
		ApplicationID:   activity.ApplicationID,
		Type:            string(activity.Type),
		Stage:           string(activity.Stage),
		SubStage:        string(activity.SubStage),
		Title:           activity.Title,
		Description:     activity.Description,
		PerformedBy:     activity.PerformedBy,
		PerformedByName: activity.PerformedByName,
		CreatedAt:       activity.CreatedAt,
	}

	if activity.Metadata != nil {
		raw, err := models.EncodeMetadata(activity.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for indexing: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Metadata); err != nil {
			return fmt.Errorf("flatten metadata for indexing: %w", err)
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal activity document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index activity: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index activity: %s", res.Status())
	}

	i.logger.Debug("activity indexed", map[string]interface{}{
		"activityId":    doc.ID,
		"applicationId": doc.ApplicationID,
		"type":          doc.Type,
	})
	return nil
}
