// internal/pipeline/comments.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recruiting-pipeline/internal/activitylog"
	"recruiting-pipeline/internal/catalog"
	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// CommentService persists comments and their paired activities. No comment
// may exist without a COMMENT_ADDED activity referencing it, and both writes
// carry the same stage/sub-stage snapshot.
type CommentService struct {
	apps       ApplicationStore
	comments   CommentStore
	activities *activitylog.Logger
	log        logger.Logger
}

func NewCommentService(apps ApplicationStore, comments CommentStore, activities *activitylog.Logger, log logger.Logger) *CommentService {
	return &CommentService{
		apps:       apps,
		comments:   comments,
		activities: activities,
		log:        log.WithFields(map[string]interface{}{"component": "comment_service"}),
	}
}

// AddComment persists the comment, then appends its activity. Both writes
// are independent; a crash between them is the documented two-write risk.
func (s *CommentService) AddComment(ctx context.Context, applicationID, text string, stage models.Stage, subStage models.SubStage, actor activitylog.Actor) (*models.Comment, error) {
	if text == "" {
		return nil, errs.NewInvalidStateError("comment text must not be empty")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	if stage != "" && !catalog.IsKnown(stage) {
		return nil, errs.NewInvalidStateError(fmt.Sprintf("unknown stage %q", stage))
	}
	if stage == "" {
		stage, subStage = app.Stage, app.SubStage
	}

	comment := &models.Comment{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		Text:          text,
		Stage:         stage,
		SubStage:      subStage,
		AuthorID:      actor.ID,
		AuthorName:    actor.Name,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errs.NewDatabaseError("create comment", err)
	}

	if _, err := s.activities.LogCommentAdded(ctx, comment, actor); err != nil {
		s.log.Error("activity append failed after comment create", map[string]interface{}{
			"error":     err,
			"commentId": comment.ID,
		})
	}

	return comment, nil
}

// ListComments returns all comments for an application.
func (s *CommentService) ListComments(ctx context.Context, applicationID string) ([]models.Comment, error) {
	comments, err := s.comments.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("list comments", err)
	}
	return comments, nil
}
