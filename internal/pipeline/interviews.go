// internal/pipeline/interviews.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recruiting-pipeline/internal/activitylog"
	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// InterviewService schedules and completes interview rounds.
type InterviewService struct {
	apps       ApplicationStore
	interviews InterviewStore
	activities *activitylog.Logger
	log        logger.Logger
}

func NewInterviewService(apps ApplicationStore, interviews InterviewStore, activities *activitylog.Logger, log logger.Logger) *InterviewService {
	return &InterviewService{
		apps:       apps,
		interviews: interviews,
		activities: activities,
		log:        log.WithFields(map[string]interface{}{"component": "interview_service"}),
	}
}

// Schedule creates an interview stamped with the application's current
// stage snapshot and logs INTERVIEW_SCHEDULED.
func (s *InterviewService) Schedule(ctx context.Context, applicationID string, scheduledAt time.Time, interviewers []string, meetingLink string, actor activitylog.Actor) (*models.Interview, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	interview := &models.Interview{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		ScheduledAt:   scheduledAt,
		Interviewers:  interviewers,
		MeetingLink:   meetingLink,
		Status:        models.InterviewScheduled,
		Stage:         app.Stage,
		SubStage:      app.SubStage,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.interviews.Create(ctx, interview); err != nil {
		return nil, errs.NewDatabaseError("create interview", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.InterviewMetadata{InterviewID: interview.ID, ScheduledAt: &scheduledAt}
	if _, err := s.activities.LogInterviewScheduled(ctx, applicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after interview create", map[string]interface{}{
			"error":       err,
			"interviewId": interview.ID,
		})
	}

	return interview, nil
}

// Complete records feedback for a scheduled interview and logs
// INTERVIEW_COMPLETED.
func (s *InterviewService) Complete(ctx context.Context, interviewID, feedback string, rating *int, actor activitylog.Actor) (*models.Interview, error) {
	interview, err := s.interviews.FindByID(ctx, interviewID)
	if err != nil {
		return nil, errs.NewDatabaseError("find interview", err)
	}
	if interview == nil {
		return nil, errs.NewNotFoundError("interview", interviewID)
	}
	if interview.Status != models.InterviewScheduled {
		return nil, errs.NewInvalidStateError(
			fmt.Sprintf("interview %s is %q; only scheduled interviews can complete", interviewID, interview.Status))
	}

	app, err := s.apps.FindByID(ctx, interview.ApplicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", interview.ApplicationID)
	}

	now := time.Now().UTC()
	interview.Status = models.InterviewCompleted
	interview.Feedback = feedback
	interview.Rating = rating
	interview.CompletedAt = &now

	if err := s.interviews.Update(ctx, interview); err != nil {
		return nil, errs.NewDatabaseError("update interview", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.InterviewMetadata{InterviewID: interview.ID, Rating: rating}
	if _, err := s.activities.LogInterviewCompleted(ctx, interview.ApplicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after interview completion", map[string]interface{}{
			"error":       err,
			"interviewId": interview.ID,
		})
	}

	return interview, nil
}
