// internal/timeline/service.go
package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/common/metrics"
	"recruiting-pipeline/internal/common/observability"
	"recruiting-pipeline/internal/models"
)

// PageRequest selects a reverse-chronological page of activities. A zero
// Before means "latest".
type PageRequest struct {
	Before time.Time
	Limit  int
}

// ActivityReader pages through an application's activity log, newest first.
// The second return reports whether older activities remain beyond the page.
type ActivityReader interface {
	FindByApplication(ctx context.Context, applicationID string, page PageRequest) ([]models.Activity, bool, error)
}

// session is the loaded activity state for one application's timeline,
// including the per-stage load-more in-flight set.
type session struct {
	activities   []models.Activity
	opts         Options
	timeline     *Timeline
	eligible     models.Stage
	storeHasMore bool
	inflight     map[models.Stage]bool
}

// Service owns timeline reconstruction, the per-stage load-more capability
// and the snapshot cache.
type Service struct {
	reader   ActivityReader
	cache    *redis.Client
	obs      *observability.Observability
	log      logger.Logger
	pageSize int
	cacheTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(reader ActivityReader, pageSize int, log logger.Logger) *Service {
	return &Service{
		reader:   reader,
		log:      log.WithFields(map[string]interface{}{"component": "timeline_service"}),
		pageSize: pageSize,
		sessions: map[string]*session{},
	}
}

// WithCache attaches a Redis snapshot cache with the given TTL.
func (s *Service) WithCache(client *redis.Client, ttl time.Duration) *Service {
	s.cache = client
	s.cacheTTL = ttl
	return s
}

// WithObservability attaches reconstruction duration recording.
func (s *Service) WithObservability(obs *observability.Observability) *Service {
	s.obs = obs
	return s
}

// GetTimeline loads the latest page of an application's activity log and
// reconstructs the grouped timeline. The result replaces any previous
// session for the application.
func (s *Service) GetTimeline(ctx context.Context, applicationID string, opts Options) (*Timeline, error) {
	if cached := s.cacheGet(ctx, applicationID, opts); cached != nil {
		// A snapshot with pageable history is only served when a session
		// exists to honor load-more against it.
		s.mu.Lock()
		_, hasSession := s.sessions[applicationID]
		s.mu.Unlock()
		if !cached.HasMore || hasSession {
			return cached, nil
		}
	}

	activities, hasMore, err := s.reader.FindByApplication(ctx, applicationID, PageRequest{Limit: s.pageSize})
	if err != nil {
		return nil, errs.NewDatabaseError("load activities", err)
	}

	tl := s.reconstruct(ctx, applicationID, activities, opts, "full")
	eligible := markLoadMore(tl, activities, hasMore)

	s.mu.Lock()
	s.sessions[applicationID] = &session{
		activities:   activities,
		opts:         opts,
		timeline:     tl,
		eligible:     eligible,
		storeHasMore: hasMore,
		inflight:     map[models.Stage]bool{},
	}
	s.mu.Unlock()

	s.cacheSet(ctx, applicationID, opts, tl)
	return tl, nil
}

// LoadMore fetches older activity for one stage's expanded section. Only the
// stage holding the globally oldest loaded activity is eligible; requests
// for any other stage are ignored and return the timeline unchanged. A
// second request for the same stage while one is pending is a no-op.
func (s *Service) LoadMore(ctx context.Context, applicationID string, stage models.Stage) (*Timeline, error) {
	s.mu.Lock()
	sess, ok := s.sessions[applicationID]
	if !ok {
		s.mu.Unlock()
		return nil, errs.NewNotFoundError("timeline session", applicationID)
	}

	if stage != sess.eligible || !sess.storeHasMore {
		tl := sess.timeline
		s.mu.Unlock()
		metrics.TimelineLoadMoreTotal.WithLabelValues(string(stage), "rejected").Inc()
		return tl, nil
	}
	if sess.inflight[stage] {
		tl := sess.timeline
		s.mu.Unlock()
		metrics.TimelineLoadMoreTotal.WithLabelValues(string(stage), "suppressed").Inc()
		return tl, nil
	}
	sess.inflight[stage] = true
	before := earliestCreatedAt(sess.activities)
	s.mu.Unlock()

	older, hasMore, err := s.reader.FindByApplication(ctx, applicationID, PageRequest{Before: before, Limit: s.pageSize})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(sess.inflight, stage)

	// A concurrent GetTimeline may have replaced the session while the
	// fetch ran. Merging into the detached session would desync it from
	// the live one, so the fetched page is dropped; the rows stay
	// reachable through the live session's own load-more.
	if current, live := s.sessions[applicationID]; !live || current != sess {
		metrics.TimelineLoadMoreTotal.WithLabelValues(string(stage), "stale").Inc()
		if live {
			return current.timeline, nil
		}
		return sess.timeline, nil
	}

	if err != nil {
		metrics.TimelineLoadMoreTotal.WithLabelValues(string(stage), "error").Inc()
		return nil, errs.NewDatabaseError("load older activities", err)
	}

	sess.activities = append(sess.activities, older...)
	sess.storeHasMore = hasMore

	// Rebuild only the requested stage's bucket; other stages keep their
	// previously rendered grouping.
	s.rebuildStageBucket(ctx, sess, stage)

	// Older history can reach stages the first page never did; those need
	// groups of their own or their activities stay invisible.
	s.insertMissingStageGroups(sess)

	// The eligible stage may shift once older history is merged in.
	for i := range sess.timeline.Stages {
		sess.timeline.Stages[i].HasMore = false
	}
	sess.eligible = markLoadMore(sess.timeline, sess.activities, hasMore)

	metrics.TimelineLoadMoreTotal.WithLabelValues(string(stage), "ok").Inc()
	return sess.timeline, nil
}

// Inflight reports whether a load-more request is pending for the stage.
func (s *Service) Inflight(applicationID string, stage models.Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[applicationID]
	return ok && sess.inflight[stage]
}

func (s *Service) reconstruct(ctx context.Context, applicationID string, activities []models.Activity, opts Options, scope string) *Timeline {
	start := time.Now()
	tl := Reconstruct(applicationID, activities, opts)

	metrics.TimelineReconstructionsTotal.Inc()
	metrics.TimelineClassifications.WithLabelValues("stage", "explicit").Add(float64(tl.Diagnostics.ExplicitStages))
	metrics.TimelineClassifications.WithLabelValues("stage", "inferred").Add(float64(tl.Diagnostics.InferredStages))
	metrics.TimelineClassifications.WithLabelValues("substage", "explicit").Add(float64(tl.Diagnostics.ExplicitSubStages))
	metrics.TimelineClassifications.WithLabelValues("substage", "inferred").Add(float64(tl.Diagnostics.InferredSubStages))
	if s.obs != nil {
		s.obs.RecordReconstruction(ctx, scope)
		s.obs.RecordReconstructionDuration(ctx, time.Since(start), scope)
	}
	return tl
}

// insertMissingStageGroups renders groups for stages that only appear in
// older history. The visible order is recomputed over the merged set;
// already-rendered groups keep their grouping, new stages get a freshly
// built group in their proper position.
func (s *Service) insertMissingStageGroups(sess *session) {
	existing := map[models.Stage]StageGroup{}
	for _, g := range sess.timeline.Stages {
		existing[g.Stage] = g
	}

	buckets := map[models.Stage][]models.Activity{}
	var encountered []models.Stage
	for _, a := range sess.activities {
		st, _ := resolveStage(&a)
		if _, seen := buckets[st]; !seen {
			encountered = append(encountered, st)
		}
		buckets[st] = append(buckets[st], a)
	}

	visible := filterEnabled(encountered, sess.opts.EnabledStages)
	ordered := orderStages(visible, sess.opts.CurrentStage)
	if len(ordered) == len(sess.timeline.Stages) {
		return
	}

	stages := make([]StageGroup, 0, len(ordered))
	for _, st := range ordered {
		if g, ok := existing[st]; ok {
			stages = append(stages, g)
			continue
		}
		g := buildStageGroup(st, buckets[st], nil)
		g.Status = stageStatus(st, sess.opts.CurrentStage)
		stages = append(stages, g)
	}
	sess.timeline.Stages = stages
}

// rebuildStageBucket re-runs grouping for one stage from the session's
// merged activity set.
func (s *Service) rebuildStageBucket(ctx context.Context, sess *session, stage models.Stage) {
	start := time.Now()
	var bucket []models.Activity
	for _, a := range sess.activities {
		if resolved, _ := resolveStage(&a); resolved == stage {
			bucket = append(bucket, a)
		}
	}

	group := buildStageGroup(stage, bucket, nil)
	group.Status = stageStatus(stage, sess.opts.CurrentStage)

	for i := range sess.timeline.Stages {
		if sess.timeline.Stages[i].Stage == stage {
			group.HasMore = sess.timeline.Stages[i].HasMore
			sess.timeline.Stages[i] = group
			break
		}
	}

	if s.obs != nil {
		s.obs.RecordReconstruction(ctx, "bucket")
		s.obs.RecordReconstructionDuration(ctx, time.Since(start), "bucket")
	}
}

// ==========================
// Snapshot cache
// ==========================

// Cache keys are versioned per application; Invalidate bumps the version so
// stale snapshots simply stop being addressed.
func (s *Service) cacheKey(ctx context.Context, applicationID string, opts Options) string {
	if s.cache == nil || len(opts.EnabledStages) > 0 {
		return ""
	}
	ver, err := s.cache.Get(ctx, "timeline:ver:"+applicationID).Int64()
	if err != nil && err != redis.Nil {
		return ""
	}
	return fmt.Sprintf("timeline:%s:%d:%s", applicationID, ver, opts.CurrentStage)
}

func (s *Service) cacheGet(ctx context.Context, applicationID string, opts Options) *Timeline {
	key := s.cacheKey(ctx, applicationID, opts)
	if key == "" {
		return nil
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("timeline cache read failed", map[string]interface{}{"error": err})
		}
		metrics.TimelineCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}

	var tl Timeline
	if err := json.Unmarshal(raw, &tl); err != nil {
		metrics.TimelineCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.TimelineCacheTotal.WithLabelValues("hit").Inc()
	return &tl
}

func (s *Service) cacheSet(ctx context.Context, applicationID string, opts Options, tl *Timeline) {
	key := s.cacheKey(ctx, applicationID, opts)
	if key == "" {
		return
	}

	raw, err := json.Marshal(tl)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("timeline cache write failed", map[string]interface{}{"error": err})
	}
}

// Invalidate drops cached snapshots for an application. Wired as the
// activity log's post-append hook.
func (s *Service) Invalidate(ctx context.Context, applicationID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Incr(ctx, "timeline:ver:"+applicationID).Err()
}
