// internal/pipeline/fakes_test.go
package pipeline

import (
	"context"
	"sync"

	"recruiting-pipeline/internal/activitylog"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// ==========================
// Test Fakes
// ==========================

type stageUpdate struct {
	id       string
	stage    models.Stage
	subStage models.SubStage
}

type fakeAppStore struct {
	apps      map[string]*models.Application
	findErr   error
	updateErr error
	updates   []stageUpdate
}

func newFakeAppStore(apps ...*models.Application) *fakeAppStore {
	s := &fakeAppStore{apps: map[string]*models.Application{}}
	for _, app := range apps {
		s.apps[app.ID] = app
	}
	return s
}

func (s *fakeAppStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	app, ok := s.apps[id]
	if !ok {
		return nil, nil
	}
	copied := *app
	return &copied, nil
}

func (s *fakeAppStore) UpdateStageFields(ctx context.Context, id string, stage models.Stage, subStage models.SubStage) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, stageUpdate{id: id, stage: stage, subStage: subStage})
	if app, ok := s.apps[id]; ok {
		app.Stage = stage
		app.SubStage = subStage
	}
	return nil
}

type fakeActivitySink struct {
	appendErr error
	appended  []*models.Activity
}

func (s *fakeActivitySink) Append(ctx context.Context, activity *models.Activity) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, activity)
	return nil
}

func (s *fakeActivitySink) last() *models.Activity {
	if len(s.appended) == 0 {
		return nil
	}
	return s.appended[len(s.appended)-1]
}

type fakeCommentStore struct {
	createErr error
	comments  []*models.Comment
}

func (s *fakeCommentStore) Create(ctx context.Context, comment *models.Comment) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.comments = append(s.comments, comment)
	return nil
}

func (s *fakeCommentStore) FindByApplication(ctx context.Context, applicationID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range s.comments {
		if c.ApplicationID == applicationID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeCompensationStore struct {
	byApplication map[string]*models.Compensation
}

func newFakeCompensationStore() *fakeCompensationStore {
	return &fakeCompensationStore{byApplication: map[string]*models.Compensation{}}
}

func (s *fakeCompensationStore) Create(ctx context.Context, comp *models.Compensation) error {
	s.byApplication[comp.ApplicationID] = comp
	return nil
}

func (s *fakeCompensationStore) FindByApplication(ctx context.Context, applicationID string) (*models.Compensation, error) {
	comp, ok := s.byApplication[applicationID]
	if !ok {
		return nil, nil
	}
	copied := *comp
	return &copied, nil
}

func (s *fakeCompensationStore) Update(ctx context.Context, comp *models.Compensation) error {
	s.byApplication[comp.ApplicationID] = comp
	return nil
}

type fakeOfferStore struct {
	byID map[string]*models.Offer
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{byID: map[string]*models.Offer{}}
}

func (s *fakeOfferStore) Create(ctx context.Context, offer *models.Offer) error {
	s.byID[offer.ID] = offer
	return nil
}

func (s *fakeOfferStore) FindByID(ctx context.Context, id string) (*models.Offer, error) {
	offer, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *offer
	return &copied, nil
}

func (s *fakeOfferStore) FindByApplication(ctx context.Context, applicationID string) ([]models.Offer, error) {
	var out []models.Offer
	for _, o := range s.byID {
		if o.ApplicationID == applicationID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOfferStore) Update(ctx context.Context, offer *models.Offer) error {
	s.byID[offer.ID] = offer
	return nil
}

type fakeInterviewStore struct {
	byID map[string]*models.Interview
}

func newFakeInterviewStore() *fakeInterviewStore {
	return &fakeInterviewStore{byID: map[string]*models.Interview{}}
}

func (s *fakeInterviewStore) Create(ctx context.Context, interview *models.Interview) error {
	s.byID[interview.ID] = interview
	return nil
}

func (s *fakeInterviewStore) FindByID(ctx context.Context, id string) (*models.Interview, error) {
	interview, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *interview
	return &copied, nil
}

func (s *fakeInterviewStore) Update(ctx context.Context, interview *models.Interview) error {
	s.byID[interview.ID] = interview
	return nil
}

type fakeTaskStore struct {
	byID map[string]*models.TechnicalTask
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{byID: map[string]*models.TechnicalTask{}}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *models.TechnicalTask) error {
	s.byID[task.ID] = task
	return nil
}

func (s *fakeTaskStore) FindByID(ctx context.Context, id string) (*models.TechnicalTask, error) {
	task, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *models.TechnicalTask) error {
	s.byID[task.ID] = task
	return nil
}

type notification struct {
	applicationID string
	from          models.Stage
	to            models.Stage
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	done chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 8)}
}

func (n *fakeNotifier) StageChanged(ctx context.Context, app *models.Application, from, to models.Stage) {
	n.mu.Lock()
	n.sent = append(n.sent, notification{applicationID: app.ID, from: from, to: to})
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *fakeNotifier) notifications() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, len(n.sent))
	copy(out, n.sent)
	return out
}

func actor() activitylog.Actor {
	return activitylog.Actor{ID: "recruiter-001", Name: "Dana Recruiter"}
}

func testActivityLogger(sink *fakeActivitySink) *activitylog.Logger {
	return activitylog.New(sink, logger.NewNoOpLogger())
}

func testApplication(id string, stage models.Stage, subStage models.SubStage) *models.Application {
	return &models.Application{
		ID:       id,
		SeekerID: "seeker-001",
		JobID:    "job-001",
		Stage:    stage,
		SubStage: subStage,
	}
}
