// internal/api/handlers.go
package api

import (
	"net/http"
	"strings"
	"time"

	"recruiting-pipeline/internal/models"
	"recruiting-pipeline/internal/pipeline"
	"recruiting-pipeline/internal/search"
	"recruiting-pipeline/internal/timeline"
)

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		TargetStage    models.Stage    `json:"targetStage"`
		TargetSubStage models.SubStage `json:"targetSubStage,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	app, err := s.engine.Advance(r.Context(), r.PathValue("id"), req.TargetStage, req.TargetSubStage, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleAdvanceNext(w http.ResponseWriter, r *http.Request) {
	var req actorPayload
	if !s.decode(w, r, &req) {
		return
	}

	app, err := s.engine.AdvanceNext(r.Context(), r.PathValue("id"), req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Text     string          `json:"text"`
		Stage    models.Stage    `json:"stage,omitempty"`
		SubStage models.SubStage `json:"subStage,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	comment, err := s.comments.AddComment(r.Context(), r.PathValue("id"), req.Text, req.Stage, req.SubStage, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.comments.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (s *Server) handleInitiateCompensation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		CandidateExpected int64  `json:"candidateExpected"`
		Notes             string `json:"notes,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	comp, err := s.compensations.Initiate(r.Context(), r.PathValue("id"), req.CandidateExpected, req.Notes, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comp)
}

func (s *Server) handleUpdateCompensation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		models.CompensationUpdate
	}
	if !s.decode(w, r, &req) {
		return
	}

	comp, err := s.compensations.Update(r.Context(), r.PathValue("id"), req.CompensationUpdate, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, comp)
}

func (s *Server) handleUploadOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		DocumentRef string `json:"documentRef"`
		OfferAmount *int64 `json:"offerAmount,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	offer, err := s.offers.Upload(r.Context(), r.PathValue("id"), req.DocumentRef, req.OfferAmount, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, offer)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.offers.ListOffers(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

func (s *Server) handleOfferStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Status            models.OfferStatus `json:"status"`
		SignedDocumentRef string             `json:"signedDocumentRef,omitempty"`
		WithdrawalReason  string             `json:"withdrawalReason,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	offer, err := s.offers.UpdateStatus(r.Context(), r.PathValue("id"), req.Status, req.actor(), pipeline.StatusUpdate{
		SignedDocumentRef: req.SignedDocumentRef,
		WithdrawalReason:  req.WithdrawalReason,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, offer)
}

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		ScheduledAt  time.Time `json:"scheduledAt"`
		Interviewers []string  `json:"interviewers,omitempty"`
		MeetingLink  string    `json:"meetingLink,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	interview, err := s.interviews.Schedule(r.Context(), r.PathValue("id"), req.ScheduledAt, req.Interviewers, req.MeetingLink, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, interview)
}

func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Feedback string `json:"feedback,omitempty"`
		Rating   *int   `json:"rating,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	interview, err := s.interviews.Complete(r.Context(), r.PathValue("id"), req.Feedback, req.Rating, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, interview)
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Title       string     `json:"title"`
		Description string     `json:"description,omitempty"`
		Deadline    *time.Time `json:"deadline,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	task, err := s.tasks.Assign(r.Context(), r.PathValue("id"), req.Title, req.Description, req.Deadline, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		SubmissionRef string `json:"submissionRef"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	task, err := s.tasks.Submit(r.Context(), r.PathValue("id"), req.SubmissionRef, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Score *int `json:"score,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	task, err := s.tasks.Complete(r.Context(), r.PathValue("id"), req.Score, req.actor())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	opts := timeline.Options{
		CurrentStage: models.Stage(r.URL.Query().Get("currentStage")),
	}
	if enabled := r.URL.Query().Get("enabledStages"); enabled != "" {
		for _, raw := range strings.Split(enabled, ",") {
			opts.EnabledStages = append(opts.EnabledStages, models.Stage(strings.TrimSpace(raw)))
		}
	}

	tl, err := s.timelines.GetTimeline(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tl)
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stage models.Stage `json:"stage"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	tl, err := s.timelines.LoadMore(r.Context(), r.PathValue("id"), req.Stage)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tl)
}

func (s *Server) handleSearchActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := search.Query{
		Keywords:      q.Get("q"),
		ApplicationID: q.Get("applicationId"),
		Stage:         models.Stage(q.Get("stage")),
		PerformedBy:   q.Get("performedBy"),
	}
	if types := q.Get("types"); types != "" {
		for _, raw := range strings.Split(types, ",") {
			query.Types = append(query.Types, models.ActivityType(strings.TrimSpace(raw)))
		}
	}

	result, err := s.search.SearchActivities(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
