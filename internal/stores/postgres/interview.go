// internal/stores/postgres/interview.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"recruiting-pipeline/internal/models"
)

type InterviewStore struct {
	db *sql.DB
}

func NewInterviewStore(db *sql.DB) *InterviewStore {
	return &InterviewStore{db: db}
}

func (s *InterviewStore) Create(ctx context.Context, interview *models.Interview) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interviews (
			id, application_id, scheduled_at, interviewers, meeting_link,
			status, feedback, rating, stage, sub_stage, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		interview.ID, interview.ApplicationID, interview.ScheduledAt,
		pq.Array(interview.Interviewers), nullString(interview.MeetingLink),
		string(interview.Status), nullString(interview.Feedback),
		nullIntValue(interview.Rating), string(interview.Stage),
		nullString(string(interview.SubStage)), interview.CreatedAt,
		nullTime(interview.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (s *InterviewStore) FindByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	var status, stage string
	var meetingLink, feedback, subStage sql.NullString
	var rating sql.NullInt64
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, scheduled_at, interviewers, meeting_link,
		       status, feedback, rating, stage, sub_stage, created_at, completed_at
		FROM interviews
		WHERE id = $1`, id).Scan(
		&interview.ID, &interview.ApplicationID, &interview.ScheduledAt,
		pq.Array(&interview.Interviewers), &meetingLink,
		&status, &feedback, &rating, &stage, &subStage,
		&interview.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select interview: %w", err)
	}

	interview.Status = models.InterviewStatus(status)
	interview.MeetingLink = meetingLink.String
	interview.Feedback = feedback.String
	interview.Rating = intPtr(rating)
	interview.Stage = models.Stage(stage)
	interview.SubStage = models.SubStage(subStage.String)
	interview.CompletedAt = timePtr(completedAt)
	return &interview, nil
}

func (s *InterviewStore) Update(ctx context.Context, interview *models.Interview) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interviews
		SET status = $2, feedback = $3, rating = $4, completed_at = $5
		WHERE id = $1`,
		interview.ID, string(interview.Status),
		nullString(interview.Feedback), nullIntValue(interview.Rating),
		nullTime(interview.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("interview %s not found", interview.ID)
	}
	return nil
}

func nullIntValue(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
