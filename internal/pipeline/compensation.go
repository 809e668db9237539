// internal/pipeline/compensation.go
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

// CompensationService runs the negotiation workflow. At most one
// compensation record exists per application; negotiation updates mutate it
// in place and each update logs its own activity.
type CompensationService struct {
	apps          ApplicationStore
	compensations CompensationStore
	comments      *CommentService
	activities    *activitylog.Logger
	log           logger.Logger
}

func NewCompensationService(apps ApplicationStore, compensations CompensationStore, comments *CommentService, activities *activitylog.Logger, log logger.Logger) *CompensationService {
	return &CompensationService{
		apps:          apps,
		compensations: compensations,
		comments:      comments,
		activities:    activities,
		log:           log.WithFields(map[string]interface{}{"component": "compensation_service"}),
	}
}

// Initiate creates the compensation record for an application. A second
// call for the same application fails with a conflict; callers must not
// retry blindly. The activity is tagged with the application's stage at call
// time, which may legitimately be outside the COMPENSATION stage.
func (s *CompensationService) Initiate(ctx context.Context, applicationID string, candidateExpected int64, notes string, actor activitylog.Actor) (*models.Compensation, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	existing, err := s.compensations.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find compensation", err)
	}
	if existing != nil {
		return nil, errs.NewConflictError(
			fmt.Sprintf("compensation already initiated for application %s", applicationID))
	}

	now := time.Now().UTC()
	comp := &models.Compensation{
		ID:                uuid.New().String(),
		ApplicationID:     applicationID,
		CandidateExpected: candidateExpected,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.compensations.Create(ctx, comp); err != nil {
		return nil, errs.NewDatabaseError("create compensation", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.CompensationMetadata{
		CompensationID: comp.ID,
		Action:         models.CompensationInitiated,
		Amount:         &candidateExpected,
	}
	if _, err := s.activities.LogCompensation(ctx, applicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after compensation create", map[string]interface{}{
			"error":          err,
			"compensationId": comp.ID,
		})
	}

	if notes != "" {
		if _, err := s.comments.AddComment(ctx, applicationID, notes, app.Stage, app.SubStage, actor); err != nil {
			s.log.Warn("notes comment failed", map[string]interface{}{
				"error":         err,
				"applicationId": applicationID,
			})
		}
	}

	return comp, nil
}

// Update merges the non-nil fields into the existing record and logs an
// activity discriminated by the negotiation step it represents.
func (s *CompensationService) Update(ctx context.Context, applicationID string, update models.CompensationUpdate, actor activitylog.Actor) (*models.Compensation, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	comp, err := s.compensations.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find compensation", err)
	}
	if comp == nil {
		return nil, errs.NewNotFoundError("compensation", applicationID)
	}

	action := models.CompensationUpdated
	var amount *int64

	if update.CompanyProposed != nil {
		comp.CompanyProposed = update.CompanyProposed
		action = models.CompensationProposed
		amount = update.CompanyProposed
	}
	if update.FinalAgreed != nil {
		comp.FinalAgreed = update.FinalAgreed
		amount = update.FinalAgreed
	}
	if update.ExpectedJoining != nil {
		comp.ExpectedJoining = update.ExpectedJoining
	}
	if update.Benefits != nil {
		comp.Benefits = update.Benefits
	}
	if update.Approved {
		now := time.Now().UTC()
		comp.ApprovedAt = &now
		comp.ApprovedBy = actor.ID
		action = models.CompensationApproved
	}
	comp.UpdatedAt = time.Now().UTC()

	if err := s.compensations.Update(ctx, comp); err != nil {
		return nil, errs.NewDatabaseError("update compensation", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.CompensationMetadata{
		CompensationID: comp.ID,
		Action:         action,
		Amount:         amount,
	}
	if _, err := s.activities.LogCompensation(ctx, applicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after compensation update", map[string]interface{}{
			"error":          err,
			"compensationId": comp.ID,
		})
	}

	return comp, nil
}
