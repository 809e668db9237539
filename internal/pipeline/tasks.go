// internal/pipeline/tasks.go
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

// TaskService runs the technical assessment workflow:
// assigned -> submitted -> completed, monotonic.
type TaskService struct {
	apps       ApplicationStore
	tasks      TaskStore
	activities *activitylog.Logger
	log        logger.Logger
}

func NewTaskService(apps ApplicationStore, tasks TaskStore, activities *activitylog.Logger, log logger.Logger) *TaskService {
	return &TaskService{
		apps:       apps,
		tasks:      tasks,
		activities: activities,
		log:        log.WithFields(map[string]interface{}{"component": "task_service"}),
	}
}

// Assign creates a technical task for an application and logs TASK_ASSIGNED.
func (s *TaskService) Assign(ctx context.Context, applicationID, title, description string, deadline *time.Time, actor activitylog.Actor) (*models.TechnicalTask, error) {
	if title == "" {
		return nil, errs.NewInvalidStateError("task title must not be empty")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	task := &models.TechnicalTask{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		Title:         title,
		Description:   description,
		Deadline:      deadline,
		Status:        models.TaskAssigned,
		Stage:         app.Stage,
		SubStage:      app.SubStage,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, errs.NewDatabaseError("create task", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.TaskMetadata{TaskID: task.ID, Deadline: deadline}
	if _, err := s.activities.LogTaskAssigned(ctx, applicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after task create", map[string]interface{}{
			"error":  err,
			"taskId": task.ID,
		})
	}

	return task, nil
}

// Submit records the candidate's submission and logs TASK_SUBMITTED.
func (s *TaskService) Submit(ctx context.Context, taskID, submissionRef string, actor activitylog.Actor) (*models.TechnicalTask, error) {
	task, app, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskAssigned {
		return nil, errs.NewInvalidStateError(
			fmt.Sprintf("task %s is %q; only assigned tasks can be submitted", taskID, task.Status))
	}
	if app.SeekerID != actor.ID {
		return nil, errs.NewAuthorizationError(
			fmt.Sprintf("actor %s does not own application %s", actor.ID, app.ID))
	}

	now := time.Now().UTC()
	task.Status = models.TaskSubmitted
	task.SubmissionRef = submissionRef
	task.SubmittedAt = &now

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, errs.NewDatabaseError("update task", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.TaskMetadata{TaskID: task.ID}
	if _, err := s.activities.LogTaskSubmitted(ctx, task.ApplicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after task submission", map[string]interface{}{
			"error":  err,
			"taskId": task.ID,
		})
	}

	return task, nil
}

// Complete scores a submitted task and logs TASK_COMPLETED.
func (s *TaskService) Complete(ctx context.Context, taskID string, score *int, actor activitylog.Actor) (*models.TechnicalTask, error) {
	task, app, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskSubmitted {
		return nil, errs.NewInvalidStateError(
			fmt.Sprintf("task %s is %q; only submitted tasks can complete", taskID, task.Status))
	}

	now := time.Now().UTC()
	task.Status = models.TaskCompleted
	task.Score = score
	task.CompletedAt = &now

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, errs.NewDatabaseError("update task", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.TaskMetadata{TaskID: task.ID, Score: score}
	if _, err := s.activities.LogTaskCompleted(ctx, task.ApplicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after task completion", map[string]interface{}{
			"error":  err,
			"taskId": task.ID,
		})
	}

	return task, nil
}

func (s *TaskService) loadTask(ctx context.Context, taskID string) (*models.TechnicalTask, *models.Application, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, errs.NewDatabaseError("find task", err)
	}
	if task == nil {
		return nil, nil, errs.NewNotFoundError("task", taskID)
	}

	app, err := s.apps.FindByID(ctx, task.ApplicationID)
	if err != nil {
		return nil, nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, nil, errs.NewNotFoundError("application", task.ApplicationID)
	}

	return task, app, nil
}
