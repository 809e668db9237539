// internal/stores/postgres/application.go

// Package postgres implements the persistence contracts over database/sql
// with the lib/pq driver. Stores carry no business logic; a missing row is
// reported as a nil record, not an error.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recruiting-pipeline/internal/models"
)

type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) Create(ctx context.Context, app *models.Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, seeker_id, job_id, stage, sub_stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		app.ID, app.SeekerID, app.JobID, app.Stage, nullString(string(app.SubStage)), app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *ApplicationStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	var subStage sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, seeker_id, job_id, stage, sub_stage, created_at, updated_at
		FROM applications
		WHERE id = $1`, id).Scan(
		&app.ID, &app.SeekerID, &app.JobID, &app.Stage, &subStage, &app.CreatedAt, &app.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select application: %w", err)
	}

	app.SubStage = models.SubStage(subStage.String)
	return &app, nil
}

func (s *ApplicationStore) UpdateStageFields(ctx context.Context, id string, stage models.Stage, subStage models.SubStage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET stage = $2, sub_stage = $3, updated_at = $4
		WHERE id = $1`,
		id, stage, nullString(string(subStage)), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update application stage: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("application %s not found", id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
