// internal/api/server.go

// Package api exposes the pipeline over plain JSON/HTTP. Handlers stay
// thin: decode, call the service, map the standard error codes onto
// status codes.
package api

import (
	"encoding/json"
	"net/http"

	"recruiting-pipeline/internal/activitylog"
	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/pipeline"
	"recruiting-pipeline/internal/search"
	"recruiting-pipeline/internal/timeline"
)

type Server struct {
	engine        *pipeline.Engine
	comments      *pipeline.CommentService
	compensations *pipeline.CompensationService
	offers        *pipeline.OfferService
	interviews    *pipeline.InterviewService
	tasks         *pipeline.TaskService
	timelines     *timeline.Service
	search        *search.Service
	logger        logger.Logger
}

func NewServer(
	engine *pipeline.Engine,
	comments *pipeline.CommentService,
	compensations *pipeline.CompensationService,
	offers *pipeline.OfferService,
	interviews *pipeline.InterviewService,
	tasks *pipeline.TaskService,
	timelines *timeline.Service,
	log logger.Logger,
) *Server {
	return &Server{
		engine:        engine,
		comments:      comments,
		compensations: compensations,
		offers:        offers,
		interviews:    interviews,
		tasks:         tasks,
		timelines:     timelines,
		logger:        log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// WithSearch enables the activity search endpoint.
func (s *Server) WithSearch(svc *search.Service) *Server {
	s.search = svc
	return s
}

// Routes registers every handler on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /applications/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /applications/{id}/advance-next", s.handleAdvanceNext)

	mux.HandleFunc("POST /applications/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /applications/{id}/comments", s.handleListComments)

	mux.HandleFunc("POST /applications/{id}/compensation", s.handleInitiateCompensation)
	mux.HandleFunc("PATCH /applications/{id}/compensation", s.handleUpdateCompensation)

	mux.HandleFunc("POST /applications/{id}/offers", s.handleUploadOffer)
	mux.HandleFunc("GET /applications/{id}/offers", s.handleListOffers)
	mux.HandleFunc("POST /offers/{id}/status", s.handleOfferStatus)

	mux.HandleFunc("POST /applications/{id}/interviews", s.handleScheduleInterview)
	mux.HandleFunc("POST /interviews/{id}/complete", s.handleCompleteInterview)

	mux.HandleFunc("POST /applications/{id}/tasks", s.handleAssignTask)
	mux.HandleFunc("POST /tasks/{id}/submit", s.handleSubmitTask)
	mux.HandleFunc("POST /tasks/{id}/complete", s.handleCompleteTask)

	mux.HandleFunc("GET /applications/{id}/timeline", s.handleGetTimeline)
	mux.HandleFunc("POST /applications/{id}/timeline/load-more", s.handleLoadMore)

	if s.search != nil {
		mux.HandleFunc("GET /activities/search", s.handleSearchActivities)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// writeError maps standard error codes onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errs.IsInvalidTransition(err), errs.IsInvalidState(err):
		status = http.StatusUnprocessableEntity
	case errs.IsConflict(err):
		status = http.StatusConflict
	case errs.IsAuthorization(err):
		status = http.StatusForbidden
	}

	body := map[string]interface{}{"error": err.Error()}
	if code := errs.CodeOf(err); code != "" {
		body["code"] = string(code)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

// actorPayload is embedded in every mutating request body.
type actorPayload struct {
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName,omitempty"`
}

func (p actorPayload) actor() activitylog.Actor {
	return activitylog.Actor{ID: p.ActorID, Name: p.ActorName}
}
