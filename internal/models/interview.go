// internal/models/interview.go
package models

import "time"

// InterviewStatus tracks an interview from scheduling to evaluation.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Interview is a scheduled interview round for an application.
type Interview struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"applicationId"`
	ScheduledAt   time.Time       `json:"scheduledAt"`
	Interviewers  []string        `json:"interviewers,omitempty"`
	MeetingLink   string          `json:"meetingLink,omitempty"`
	Status        InterviewStatus `json:"status"`
	Feedback      string          `json:"feedback,omitempty"`
	Rating        *int            `json:"rating,omitempty"`
	Stage         Stage           `json:"stage"`
	SubStage      SubStage        `json:"subStage,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}
