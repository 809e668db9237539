// internal/timeline/reconstructor.go

// Package timeline rebuilds the stage-grouped, chronologically ordered view
// of an application's activity log. The reconstructor is pure and
// synchronous; malformed input degrades to default classifications instead
// of failing, so display never breaks on an unanticipated activity type.
package timeline

import (
	"sort"
	"strings"
	"time"

	"recruiting-pipeline/internal/catalog"
	"recruiting-pipeline/internal/models"
)

// StageStatus positions a stage relative to the application's current one.
type StageStatus string

const (
	StatusCompleted StageStatus = "completed"
	StatusCurrent   StageStatus = "current"
	StatusUpcoming  StageStatus = "upcoming"
)

// SubStageGroup is one resolved sub-stage bucket, activities ascending by
// creation time.
type SubStageGroup struct {
	SubStage   models.SubStage   `json:"subStage"`
	Activities []models.Activity `json:"activities"`
}

// StageGroup is one resolved stage bucket.
type StageGroup struct {
	Stage      models.Stage      `json:"stage"`
	Status     StageStatus       `json:"status"`
	SubStages  []SubStageGroup   `json:"subStages"`
	Activities []models.Activity `json:"activities"`
	HasMore    bool              `json:"hasMore"`
}

// Diagnostics counts how classifications were resolved, so operators can
// audit how often producers omit stage fields.
type Diagnostics struct {
	ExplicitStages    int `json:"explicitStages"`
	InferredStages    int `json:"inferredStages"`
	ExplicitSubStages int `json:"explicitSubStages"`
	InferredSubStages int `json:"inferredSubStages"`
}

// Timeline is the display-ready grouped view.
type Timeline struct {
	ApplicationID string       `json:"applicationId"`
	Stages        []StageGroup `json:"stages"`
	HasMore       bool         `json:"hasMore"`
	Diagnostics   Diagnostics  `json:"diagnostics"`
}

// Options control visible ordering and filtering.
type Options struct {
	CurrentStage  models.Stage
	EnabledStages []models.Stage
}

// typeSubStages is the fixed fallback table for sub-stage inference by
// activity type.
var typeSubStages = map[models.ActivityType]models.SubStage{
	models.ActivityInterviewScheduled: models.SubStageScheduled,
	models.ActivityInterviewCompleted: models.SubStageCompleted,
	models.ActivityTaskAssigned:       models.SubStageAssigned,
	models.ActivityTaskSubmitted:      models.SubStageSubmitted,
	models.ActivityTaskCompleted:      models.SubStageCompleted,
}

// resolveStage returns the activity's stage, inferring from the type by
// keyword when absent. Explicit stage always wins; the keyword fallback is a
// heuristic only.
func resolveStage(a *models.Activity) (models.Stage, bool) {
	if a.Stage != "" {
		return a.Stage, true
	}

	t := string(a.Type)
	switch {
	case strings.Contains(t, "INTERVIEW"):
		return models.StageInterview, false
	case strings.Contains(t, "TASK"):
		return models.StageTechnicalTask, false
	case strings.Contains(t, "COMPENSATION"):
		return models.StageCompensation, false
	case strings.Contains(t, "OFFER"):
		return models.StageOffer, false
	default:
		return models.StageInReview, false
	}
}

// resolveSubStage returns the activity's sub-stage for a resolved stage:
// explicit value, then the per-type table, then the stage's first canonical
// sub-stage, then UNKNOWN.
func resolveSubStage(a *models.Activity, stage models.Stage) (models.SubStage, bool) {
	if a.SubStage != "" {
		return a.SubStage, true
	}
	if sub, ok := typeSubStages[a.Type]; ok {
		return sub, false
	}
	return catalog.FirstSubstage(stage), false
}

// Reconstruct replays an unordered activity set into the grouped timeline.
// It never fails: unknown types and stages fall back to defaults.
func Reconstruct(applicationID string, activities []models.Activity, opts Options) *Timeline {
	tl := &Timeline{ApplicationID: applicationID}

	// Step 1-2: resolve stages and bucket in first-encountered order.
	buckets := map[models.Stage][]models.Activity{}
	var encountered []models.Stage
	for _, a := range activities {
		stage, explicit := resolveStage(&a)
		if explicit {
			tl.Diagnostics.ExplicitStages++
		} else {
			tl.Diagnostics.InferredStages++
		}
		if _, seen := buckets[stage]; !seen {
			encountered = append(encountered, stage)
		}
		buckets[stage] = append(buckets[stage], a)
	}

	visible := filterEnabled(encountered, opts.EnabledStages)

	// Step 5: pin the current stage, then most-recently-relevant first.
	ordered := orderStages(visible, opts.CurrentStage)

	for _, stage := range ordered {
		group := buildStageGroup(stage, buckets[stage], &tl.Diagnostics)
		group.Status = stageStatus(stage, opts.CurrentStage)
		tl.Stages = append(tl.Stages, group)
	}

	return tl
}

// buildStageGroup runs steps 2-4 for a single stage bucket: stable ascending
// sort, sub-stage resolution and grouping, canonical-then-encountered
// sub-stage ordering.
func buildStageGroup(stage models.Stage, bucket []models.Activity, diag *Diagnostics) StageGroup {
	sorted := make([]models.Activity, len(bucket))
	copy(sorted, bucket)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	subBuckets := map[models.SubStage][]models.Activity{}
	var subEncountered []models.SubStage
	for _, a := range sorted {
		sub, explicit := resolveSubStage(&a, stage)
		if diag != nil {
			if explicit {
				diag.ExplicitSubStages++
			} else {
				diag.InferredSubStages++
			}
		}
		if _, seen := subBuckets[sub]; !seen {
			subEncountered = append(subEncountered, sub)
		}
		subBuckets[sub] = append(subBuckets[sub], a)
	}

	// Canonical sub-stages with activity first, in catalog order; anything
	// else afterward in first-encountered order.
	var subOrder []models.SubStage
	canonical := map[models.SubStage]bool{}
	for _, sub := range catalog.SubstagesOf(stage) {
		canonical[sub] = true
		if _, ok := subBuckets[sub]; ok {
			subOrder = append(subOrder, sub)
		}
	}
	for _, sub := range subEncountered {
		if !canonical[sub] {
			subOrder = append(subOrder, sub)
		}
	}

	group := StageGroup{Stage: stage, Activities: sorted}
	for _, sub := range subOrder {
		group.SubStages = append(group.SubStages, SubStageGroup{
			SubStage:   sub,
			Activities: subBuckets[sub],
		})
	}
	return group
}

// orderStages produces the visible stage order: the current stage pinned
// first, then the stages after it in reverse pipeline order, then the stages
// before it in reverse pipeline order. Without a current stage the full
// reverse pipeline order applies. Stages outside the known pipeline keep
// first-encountered order at the end.
func orderStages(visible []models.Stage, current models.Stage) []models.Stage {
	present := map[models.Stage]bool{}
	for _, s := range visible {
		present[s] = true
	}

	base := append(catalog.PipelineOrder(), models.StageHired, models.StageRejected)
	currentIdx := -1
	for i, s := range base {
		if s == current {
			currentIdx = i
		}
	}

	var ordered []models.Stage
	appendIf := func(s models.Stage) {
		if present[s] {
			ordered = append(ordered, s)
			delete(present, s)
		}
	}

	if current != "" && present[current] && currentIdx >= 0 {
		appendIf(current)
		for i := len(base) - 1; i > currentIdx; i-- {
			appendIf(base[i])
		}
		for i := currentIdx - 1; i >= 0; i-- {
			appendIf(base[i])
		}
	} else {
		for i := len(base) - 1; i >= 0; i-- {
			appendIf(base[i])
		}
	}

	// Unknown stages retain first-encountered order.
	for _, s := range visible {
		if present[s] {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

func stageStatus(stage, current models.Stage) StageStatus {
	if current == "" {
		return StatusUpcoming
	}
	if stage == current {
		return StatusCurrent
	}

	base := append(catalog.PipelineOrder(), models.StageHired, models.StageRejected)
	idx := func(s models.Stage) int {
		for i, b := range base {
			if b == s {
				return i
			}
		}
		return len(base)
	}

	if idx(stage) < idx(current) {
		return StatusCompleted
	}
	return StatusUpcoming
}

func filterEnabled(stages []models.Stage, enabled []models.Stage) []models.Stage {
	if len(enabled) == 0 {
		return stages
	}
	allow := map[models.Stage]bool{}
	for _, s := range enabled {
		allow[s] = true
	}
	var out []models.Stage
	for _, s := range stages {
		if allow[s] {
			out = append(out, s)
		}
	}
	return out
}

// oldestActivity returns the single oldest activity across the loaded set.
// Only the stage bucket containing it may request more history.
func oldestActivity(activities []models.Activity) (models.Activity, bool) {
	if len(activities) == 0 {
		return models.Activity{}, false
	}
	oldest := activities[0]
	for _, a := range activities[1:] {
		if a.CreatedAt.Before(oldest.CreatedAt) {
			oldest = a
		}
	}
	return oldest, true
}

// markLoadMore sets the HasMore flag on the one eligible stage group and
// returns that stage.
func markLoadMore(tl *Timeline, activities []models.Activity, storeHasMore bool) models.Stage {
	tl.HasMore = storeHasMore
	if !storeHasMore {
		return ""
	}

	oldest, ok := oldestActivity(activities)
	if !ok {
		return ""
	}
	stage, _ := resolveStage(&oldest)
	for i := range tl.Stages {
		if tl.Stages[i].Stage == stage {
			tl.Stages[i].HasMore = true
			return stage
		}
	}
	return ""
}

// earliestCreatedAt is the paging cursor for the next older fetch.
func earliestCreatedAt(activities []models.Activity) time.Time {
	oldest, ok := oldestActivity(activities)
	if !ok {
		return time.Time{}
	}
	return oldest.CreatedAt
}
