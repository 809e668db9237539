// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruiting-pipeline/internal/activitylog"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
	"recruiting-pipeline/internal/pipeline"
	"recruiting-pipeline/internal/timeline"
)

type memAppStore struct {
	apps map[string]*models.Application
}

func (m *memAppStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, nil
	}
	copied := *app
	return &copied, nil
}

func (m *memAppStore) UpdateStageFields(ctx context.Context, id string, stage models.Stage, subStage models.SubStage) error {
	app := m.apps[id]
	app.Stage = stage
	app.SubStage = subStage
	return nil
}

type memCommentStore struct {
	comments []models.Comment
}

func (m *memCommentStore) Create(ctx context.Context, comment *models.Comment) error {
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memCommentStore) FindByApplication(ctx context.Context, applicationID string) ([]models.Comment, error) {
	return m.comments, nil
}

type memActivityStore struct {
	activities []models.Activity
}

func (m *memActivityStore) Append(ctx context.Context, activity *models.Activity) error {
	m.activities = append(m.activities, *activity)
	return nil
}

func (m *memActivityStore) FindByApplication(ctx context.Context, applicationID string, page timeline.PageRequest) ([]models.Activity, bool, error) {
	// newest first, no paging in the harness
	out := make([]models.Activity, 0, len(m.activities))
	for i := len(m.activities) - 1; i >= 0; i-- {
		if m.activities[i].ApplicationID == applicationID {
			out = append(out, m.activities[i])
		}
	}
	return out, false, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memAppStore) {
	t.Helper()

	apps := &memAppStore{apps: map[string]*models.Application{
		"app-001": {
			ID:       "app-001",
			SeekerID: "seeker-001",
			JobID:    "job-001",
			Stage:    models.StageInReview,
			SubStage: models.SubStageApplied,
		},
	}}
	activities := &memActivityStore{}
	log := logger.NewNoOpLogger()
	recorder := activitylog.New(activities, log)

	engine := pipeline.NewEngine(apps, recorder, log)
	comments := pipeline.NewCommentService(apps, &memCommentStore{}, recorder, log)
	timelines := timeline.NewService(activities, 20, log)

	server := NewServer(engine, comments, nil, nil, nil, nil, timelines, log)
	mux := http.NewServeMux()
	server.Routes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, apps
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAdvance(t *testing.T) {
	ts, apps := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/app-001/advance",
		`{"actorId":"recruiter-001","actorName":"Dana Recruiter","targetStage":"SHORTLISTED"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "SHORTLISTED", body["stage"])
	assert.Equal(t, models.StageShortlisted, apps.apps["app-001"].Stage)
}

func TestAdvance_BackwardRejected(t *testing.T) {
	ts, apps := newTestServer(t)
	apps.apps["app-001"].Stage = models.StageInterview

	resp := postJSON(t, ts.URL+"/applications/app-001/advance",
		`{"actorId":"recruiter-001","targetStage":"SHORTLISTED"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])
}

func TestAdvance_UnknownApplication(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/missing/advance",
		`{"actorId":"recruiter-001","targetStage":"SHORTLISTED"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestAdvance_MalformedBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/app-001/advance", `{"targetStage":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdvanceNext(t *testing.T) {
	ts, apps := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/app-001/advance-next", `{"actorId":"recruiter-001"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StageShortlisted, apps.apps["app-001"].Stage)
}

func TestComments(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/app-001/comments",
		`{"actorId":"recruiter-001","actorName":"Dana Recruiter","text":"Strong candidate"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody(t, resp)
	// omitted stage is stamped from the application's current stage
	assert.Equal(t, "IN_REVIEW", created["stage"])

	listResp, err := http.Get(ts.URL + "/applications/app-001/comments")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	list := decodeBody(t, listResp)
	comments, ok := list["comments"].([]interface{})
	require.True(t, ok)
	assert.Len(t, comments, 1)
}

func TestComments_EmptyText(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/app-001/comments",
		`{"actorId":"recruiter-001","text":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTimeline(t *testing.T) {
	ts, _ := newTestServer(t)

	// produce some history first
	resp := postJSON(t, ts.URL+"/applications/app-001/advance",
		`{"actorId":"recruiter-001","targetStage":"SHORTLISTED"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tlResp, err := http.Get(ts.URL + "/applications/app-001/timeline?currentStage=SHORTLISTED")
	require.NoError(t, err)
	defer tlResp.Body.Close()
	require.Equal(t, http.StatusOK, tlResp.StatusCode)

	var tl timeline.Timeline
	require.NoError(t, json.NewDecoder(tlResp.Body).Decode(&tl))
	assert.Equal(t, "app-001", tl.ApplicationID)
	require.NotEmpty(t, tl.Stages)
	assert.Equal(t, models.StageShortlisted, tl.Stages[0].Stage)
}

func TestTimeline_LoadMoreWithoutSession(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/applications/app-001/timeline/load-more", `{"stage":"IN_REVIEW"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchDisabled(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/activities/search?q=task")
	require.NoError(t, err)
	defer resp.Body.Close()
	// route is only registered when search is configured
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/applications/app-001/comments", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
