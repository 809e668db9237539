// internal/stores/postgres/activity.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recruiting-pipeline/internal/models"
	"recruiting-pipeline/internal/timeline"
)

// ActivityStore persists the append-only activity log. Rows are never
// updated or deleted; reads page newest-first on created_at.
type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Append(ctx context.Context, activity *models.Activity) error {
	metadata, err := models.EncodeMetadata(activity.Metadata)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, application_id, type, stage, sub_stage, title, description,
			performed_by, performed_by_name, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		activity.ID, activity.ApplicationID, string(activity.Type),
		nullString(string(activity.Stage)), nullString(string(activity.SubStage)),
		activity.Title, nullString(activity.Description),
		activity.PerformedBy, nullString(activity.PerformedByName),
		metadata, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// FindByApplication returns one reverse-chronological page of activities and
// whether older rows remain past it. It queries one row beyond the limit to
// answer the second question without a separate count.
func (s *ActivityStore) FindByApplication(ctx context.Context, applicationID string, page timeline.PageRequest) ([]models.Activity, bool, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, application_id, type, stage, sub_stage, title, description,
		       performed_by, performed_by_name, metadata, created_at
		FROM activities
		WHERE application_id = $1`
	args := []interface{}{applicationID}
	if !page.Before.IsZero() {
		query += ` AND created_at < $2`
		args = append(args, page.Before)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("select activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		var activityType, metadata string
		var stage, subStage, description, performedByName sql.NullString

		err := rows.Scan(
			&activity.ID, &activity.ApplicationID, &activityType,
			&stage, &subStage, &activity.Title, &description,
			&activity.PerformedBy, &performedByName, &metadata,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, false, fmt.Errorf("scan activity: %w", err)
		}

		activity.Type = models.ActivityType(activityType)
		activity.Stage = models.Stage(stage.String)
		activity.SubStage = models.SubStage(subStage.String)
		activity.Description = description.String
		activity.PerformedByName = performedByName.String
		activity.Metadata, err = models.DecodeMetadata(activity.Type, []byte(metadata))
		if err != nil {
			return nil, false, fmt.Errorf("decode activity metadata: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate activities: %w", err)
	}

	hasMore := len(activities) > limit
	if hasMore {
		activities = activities[:limit]
	}
	return activities, hasMore, nil
}
