// internal/activitylog/logger.go

// Package activitylog is the append-only recorder for the pipeline. Every
// mutating action in the rest of the core produces exactly one immutable
// activity through this facade.
package activitylog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/common/metrics"
	"recruiting-pipeline/internal/models"
)

// ActivityStore persists activities. Append-only; stored activities are
// never updated or deleted.
type ActivityStore interface {
	Append(ctx context.Context, activity *models.Activity) error
}

// Indexer mirrors appended activities into a search index, best-effort.
type Indexer interface {
	Index(ctx context.Context, activity *models.Activity) error
}

// Invalidator drops cached timeline snapshots after an append.
type Invalidator interface {
	Invalidate(ctx context.Context, applicationID string) error
}

// Actor identifies who performed an action.
type Actor struct {
	ID   string
	Name string
}

// Logger is the activity logging facade. One method per activity family,
// each producing a single store append.
type Logger struct {
	store   ActivityStore
	indexer Indexer
	cache   Invalidator
	log     logger.Logger
}

func New(store ActivityStore, log logger.Logger) *Logger {
	return &Logger{
		store: store,
		log:   log.WithFields(map[string]interface{}{"component": "activitylog"}),
	}
}

// WithIndexer attaches a best-effort search indexer.
func (l *Logger) WithIndexer(idx Indexer) *Logger {
	l.indexer = idx
	return l
}

// WithInvalidator attaches a timeline cache invalidator.
func (l *Logger) WithInvalidator(inv Invalidator) *Logger {
	l.cache = inv
	return l
}

// StageSnapshot is the stage/sub-stage context captured at the moment of the
// action being logged.
type StageSnapshot struct {
	Stage    models.Stage
	SubStage models.SubStage
}

func (l *Logger) LogStageChange(ctx context.Context, applicationID string, meta models.StageChangeMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityStageChange,
		Stage:         meta.ToStage,
		SubStage:      meta.ToSubStage,
		Title:         "Stage changed",
		Description:   fmt.Sprintf("Moved from %s to %s", meta.FromStage, meta.ToStage),
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogSubStageChange(ctx context.Context, applicationID string, meta models.StageChangeMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivitySubStageChange,
		Stage:         meta.ToStage,
		SubStage:      meta.ToSubStage,
		Title:         "Sub-stage changed",
		Description:   fmt.Sprintf("Moved from %s to %s within %s", meta.FromSubStage, meta.ToSubStage, meta.ToStage),
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogCommentAdded(ctx context.Context, comment *models.Comment, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: comment.ApplicationID,
		Type:          models.ActivityCommentAdded,
		Stage:         comment.Stage,
		SubStage:      comment.SubStage,
		Title:         "Comment added",
		Description:   comment.Text,
		Metadata:      models.CommentMetadata{CommentID: comment.ID},
	}, actor)
}

func (l *Logger) LogCompensation(ctx context.Context, applicationID string, snap StageSnapshot, meta models.CompensationMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityCompensation,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Compensation " + string(meta.Action),
		Description:   fmt.Sprintf("Compensation negotiation %s", meta.Action),
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogOfferSent(ctx context.Context, applicationID string, snap StageSnapshot, meta models.OfferMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityOfferSent,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Offer sent",
		Description:   "Offer document sent to candidate",
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogOfferStatus(ctx context.Context, applicationID string, snap StageSnapshot, meta models.OfferMetadata, actor Actor) (*models.Activity, error) {
	var activityType models.ActivityType
	var title string
	switch meta.Status {
	case models.OfferSigned:
		activityType, title = models.ActivityOfferSigned, "Offer signed"
	case models.OfferDeclined:
		activityType, title = models.ActivityOfferDeclined, "Offer declined"
	case models.OfferWithdrawn:
		activityType, title = models.ActivityOfferWithdrawn, "Offer withdrawn"
	default:
		return nil, fmt.Errorf("no activity type for offer status %q", meta.Status)
	}

	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          activityType,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         title,
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogInterviewScheduled(ctx context.Context, applicationID string, snap StageSnapshot, meta models.InterviewMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityInterviewScheduled,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Interview scheduled",
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogInterviewCompleted(ctx context.Context, applicationID string, snap StageSnapshot, meta models.InterviewMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityInterviewCompleted,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Interview completed",
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogTaskAssigned(ctx context.Context, applicationID string, snap StageSnapshot, meta models.TaskMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityTaskAssigned,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Technical task assigned",
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogTaskSubmitted(ctx context.Context, applicationID string, snap StageSnapshot, meta models.TaskMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityTaskSubmitted,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Technical task submitted",
		Metadata:      meta,
	}, actor)
}

func (l *Logger) LogTaskCompleted(ctx context.Context, applicationID string, snap StageSnapshot, meta models.TaskMetadata, actor Actor) (*models.Activity, error) {
	return l.append(ctx, &models.Activity{
		ApplicationID: applicationID,
		Type:          models.ActivityTaskCompleted,
		Stage:         snap.Stage,
		SubStage:      snap.SubStage,
		Title:         "Technical task completed",
		Metadata:      meta,
	}, actor)
}

// append finalizes the activity and performs the single store write. The
// search index and cache invalidation are non-critical followups.
func (l *Logger) append(ctx context.Context, activity *models.Activity, actor Actor) (*models.Activity, error) {
	activity.ID = uuid.New().String()
	activity.PerformedBy = actor.ID
	activity.PerformedByName = actor.Name
	activity.CreatedAt = time.Now().UTC()

	if payload, err := models.EncodeMetadata(activity.Metadata); err == nil {
		if violations := validateMetadata(activity.Type, payload); len(violations) > 0 {
			metrics.MetadataValidationFailures.WithLabelValues(string(activity.Type)).Inc()
			l.log.Warn("activity metadata failed schema validation", map[string]interface{}{
				"activityId": activity.ID,
				"type":       activity.Type,
				"violations": violations,
			})
		}
	}

	if err := l.store.Append(ctx, activity); err != nil {
		return nil, err
	}
	metrics.ActivitiesLoggedTotal.WithLabelValues(string(activity.Type)).Inc()

	if l.indexer != nil {
		if err := l.indexer.Index(ctx, activity); err != nil {
			l.log.Warn("activity index failed", map[string]interface{}{
				"error":      err,
				"activityId": activity.ID,
			})
		}
	}

	if l.cache != nil {
		if err := l.cache.Invalidate(ctx, activity.ApplicationID); err != nil {
			l.log.Warn("timeline cache invalidation failed", map[string]interface{}{
				"error":         err,
				"applicationId": activity.ApplicationID,
			})
		}
	}

	return activity, nil
}
