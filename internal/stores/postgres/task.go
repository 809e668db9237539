// internal/stores/postgres/task.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recruiting-pipeline/internal/models"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, task *models.TechnicalTask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO technical_tasks (
			id, application_id, title, description, deadline, submission_ref,
			score, status, stage, sub_stage, created_at, submitted_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		task.ID, task.ApplicationID, task.Title, nullString(task.Description),
		nullTime(task.Deadline), nullString(task.SubmissionRef),
		nullIntValue(task.Score), string(task.Status), string(task.Stage),
		nullString(string(task.SubStage)), task.CreatedAt,
		nullTime(task.SubmittedAt), nullTime(task.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert technical task: %w", err)
	}
	return nil
}

func (s *TaskStore) FindByID(ctx context.Context, id string) (*models.TechnicalTask, error) {
	var task models.TechnicalTask
	var status, stage string
	var description, submissionRef, subStage sql.NullString
	var score sql.NullInt64
	var deadline, submittedAt, completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, title, description, deadline, submission_ref,
		       score, status, stage, sub_stage, created_at, submitted_at, completed_at
		FROM technical_tasks
		WHERE id = $1`, id).Scan(
		&task.ID, &task.ApplicationID, &task.Title, &description,
		&deadline, &submissionRef, &score, &status, &stage, &subStage,
		&task.CreatedAt, &submittedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select technical task: %w", err)
	}

	task.Description = description.String
	task.Deadline = timePtr(deadline)
	task.SubmissionRef = submissionRef.String
	task.Score = intPtr(score)
	task.Status = models.TaskStatus(status)
	task.Stage = models.Stage(stage)
	task.SubStage = models.SubStage(subStage.String)
	task.SubmittedAt = timePtr(submittedAt)
	task.CompletedAt = timePtr(completedAt)
	return &task, nil
}

func (s *TaskStore) Update(ctx context.Context, task *models.TechnicalTask) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE technical_tasks
		SET submission_ref = $2, score = $3, status = $4,
		    submitted_at = $5, completed_at = $6
		WHERE id = $1`,
		task.ID, nullString(task.SubmissionRef), nullIntValue(task.Score),
		string(task.Status), nullTime(task.SubmittedAt), nullTime(task.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("update technical task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("technical task %s not found", task.ID)
	}
	return nil
}
