// internal/stores/postgres/compensation.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"recruiting-pipeline/internal/models"
)

type CompensationStore struct {
	db *sql.DB
}

func NewCompensationStore(db *sql.DB) *CompensationStore {
	return &CompensationStore{db: db}
}

func (s *CompensationStore) Create(ctx context.Context, comp *models.Compensation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compensations (
			id, application_id, candidate_expected, company_proposed, final_agreed,
			expected_joining, benefits, approved_at, approved_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		comp.ID, comp.ApplicationID, comp.CandidateExpected,
		nullInt64(comp.CompanyProposed), nullInt64(comp.FinalAgreed),
		nullTime(comp.ExpectedJoining), pq.Array(comp.Benefits),
		nullTime(comp.ApprovedAt), nullString(comp.ApprovedBy),
		comp.CreatedAt, comp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert compensation: %w", err)
	}
	return nil
}

func (s *CompensationStore) FindByApplication(ctx context.Context, applicationID string) (*models.Compensation, error) {
	var comp models.Compensation
	var companyProposed, finalAgreed sql.NullInt64
	var expectedJoining, approvedAt sql.NullTime
	var approvedBy sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, candidate_expected, company_proposed, final_agreed,
		       expected_joining, benefits, approved_at, approved_by, created_at, updated_at
		FROM compensations
		WHERE application_id = $1`, applicationID).Scan(
		&comp.ID, &comp.ApplicationID, &comp.CandidateExpected,
		&companyProposed, &finalAgreed, &expectedJoining,
		pq.Array(&comp.Benefits), &approvedAt, &approvedBy,
		&comp.CreatedAt, &comp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select compensation: %w", err)
	}

	comp.CompanyProposed = int64Ptr(companyProposed)
	comp.FinalAgreed = int64Ptr(finalAgreed)
	comp.ExpectedJoining = timePtr(expectedJoining)
	comp.ApprovedAt = timePtr(approvedAt)
	comp.ApprovedBy = approvedBy.String
	return &comp, nil
}

func (s *CompensationStore) Update(ctx context.Context, comp *models.Compensation) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE compensations
		SET company_proposed = $2, final_agreed = $3, expected_joining = $4,
		    benefits = $5, approved_at = $6, approved_by = $7, updated_at = $8
		WHERE id = $1`,
		comp.ID, nullInt64(comp.CompanyProposed), nullInt64(comp.FinalAgreed),
		nullTime(comp.ExpectedJoining), pq.Array(comp.Benefits),
		nullTime(comp.ApprovedAt), nullString(comp.ApprovedBy), comp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update compensation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("compensation %s not found", comp.ID)
	}
	return nil
}
