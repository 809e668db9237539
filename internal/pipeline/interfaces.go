// internal/pipeline/interfaces.go

// Package pipeline implements the write-side core of the recruiting
// pipeline: the stage transition engine and the auxiliary record workflows
// (comments, compensation, offers, interviews, technical tasks). Every
// successful mutation emits exactly one activity through the activity log.
package pipeline

import (
	"context"

	"recruiting-pipeline/internal/models"
)

// ApplicationStore is the persistence contract for applications. A missing
// record is reported as (nil, nil); storage failures as errors.
type ApplicationStore interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	UpdateStageFields(ctx context.Context, id string, stage models.Stage, subStage models.SubStage) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByApplication(ctx context.Context, applicationID string) ([]models.Comment, error)
}

type CompensationStore interface {
	Create(ctx context.Context, comp *models.Compensation) error
	FindByApplication(ctx context.Context, applicationID string) (*models.Compensation, error)
	Update(ctx context.Context, comp *models.Compensation) error
}

type OfferStore interface {
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id string) (*models.Offer, error)
	FindByApplication(ctx context.Context, applicationID string) ([]models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
}

type InterviewStore interface {
	Create(ctx context.Context, interview *models.Interview) error
	FindByID(ctx context.Context, id string) (*models.Interview, error)
	Update(ctx context.Context, interview *models.Interview) error
}

type TaskStore interface {
	Create(ctx context.Context, task *models.TechnicalTask) error
	FindByID(ctx context.Context, id string) (*models.TechnicalTask, error)
	Update(ctx context.Context, task *models.TechnicalTask) error
}

// Notifier delivers candidate-facing notifications for stage changes.
// Delivery is best-effort and must never block or fail a transition.
type Notifier interface {
	StageChanged(ctx context.Context, app *models.Application, from, to models.Stage)
}
