// internal/models/task.go
package models

import "time"

// TaskStatus is the monotonic state of a technical assessment.
type TaskStatus string

const (
	TaskAssigned  TaskStatus = "assigned"
	TaskSubmitted TaskStatus = "submitted"
	TaskCompleted TaskStatus = "completed"
)

// TechnicalTask is a take-home assessment assigned during the pipeline.
type TechnicalTask struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	SubmissionRef string     `json:"submissionRef,omitempty"`
	Score         *int       `json:"score,omitempty"`
	Status        TaskStatus `json:"status"`
	Stage         Stage      `json:"stage"`
	SubStage      SubStage   `json:"subStage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
