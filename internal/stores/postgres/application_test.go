// internal/stores/postgres/application_test.go
package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruiting-pipeline/internal/models"
)

func TestApplicationStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewApplicationStore(db)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO applications").
		WithArgs("app-001", "seeker-001", "job-001", models.StageInReview,
			sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.Create(context.Background(), &models.Application{
		ID:        "app-001",
		SeekerID:  "seeker-001",
		JobID:     "job-001",
		Stage:     models.StageInReview,
		SubStage:  models.SubStageApplied,
		CreatedAt: now,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewApplicationStore(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "seeker_id", "job_id", "stage", "sub_stage", "created_at", "updated_at"}).
		AddRow("app-001", "seeker-001", "job-001", "INTERVIEW", "SCHEDULED", now, now)
	mock.ExpectQuery("SELECT id, seeker_id, job_id, stage, sub_stage, created_at, updated_at").
		WithArgs("app-001").
		WillReturnRows(rows)

	app, err := store.FindByID(context.Background(), "app-001")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, models.StageInterview, app.Stage)
	assert.Equal(t, models.SubStageScheduled, app.SubStage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_FindByID_NullSubStage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewApplicationStore(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "seeker_id", "job_id", "stage", "sub_stage", "created_at", "updated_at"}).
		AddRow("app-001", "seeker-001", "job-001", "SHORTLISTED", nil, now, now)
	mock.ExpectQuery("SELECT id, seeker_id, job_id, stage, sub_stage, created_at, updated_at").
		WithArgs("app-001").
		WillReturnRows(rows)

	app, err := store.FindByID(context.Background(), "app-001")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, models.SubStage(""), app.SubStage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_FindByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewApplicationStore(db)

	mock.ExpectQuery("SELECT id, seeker_id, job_id, stage, sub_stage, created_at, updated_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seeker_id", "job_id", "stage", "sub_stage", "created_at", "updated_at"}))

	app, err := store.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, app)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_UpdateStageFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewApplicationStore(db)

	mock.ExpectExec("UPDATE applications").
		WithArgs("app-001", models.StageInterview, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.UpdateStageFields(context.Background(), "app-001", models.StageInterview, models.SubStageScheduled)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_UpdateStageFields_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewApplicationStore(db)

	mock.ExpectExec("UPDATE applications").
		WithArgs("missing", models.StageInterview, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.UpdateStageFields(context.Background(), "missing", models.StageInterview, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
