// internal/catalog/catalog.go

// Package catalog is the single source of truth for pipeline stage order and
// canonical sub-stage lists. Every other component queries it instead of
// redeclaring stage literals.
package catalog

import "recruiting-pipeline/internal/models"

// pipelineOrder is the fixed forward order of non-terminal stages.
var pipelineOrder = []models.Stage{
	models.StageInReview,
	models.StageShortlisted,
	models.StageInterview,
	models.StageTechnicalTask,
	models.StageCompensation,
	models.StageOffer,
}

// subStages maps each non-terminal stage to its ordered canonical sub-stage
// list. A stage may define none.
var subStages = map[models.Stage][]models.SubStage{
	models.StageInReview: {
		models.SubStageApplied,
		models.SubStageUnderReview,
	},
	models.StageShortlisted: {},
	models.StageInterview: {
		models.SubStageScheduled,
		models.SubStageEvaluationPending,
		models.SubStageCompleted,
	},
	models.StageTechnicalTask: {
		models.SubStageAssigned,
		models.SubStageSubmitted,
		models.SubStageCompleted,
	},
	models.StageCompensation: {
		models.SubStageInitiated,
		models.SubStageProposed,
		models.SubStageApproved,
	},
	models.StageOffer: {
		models.SubStageSent,
		models.SubStageAccepted,
	},
}

// PipelineOrder returns the forward order of non-terminal stages.
func PipelineOrder() []models.Stage {
	out := make([]models.Stage, len(pipelineOrder))
	copy(out, pipelineOrder)
	return out
}

// SubstagesOf returns the ordered canonical sub-stage list for a stage.
// Terminal and unknown stages have none.
func SubstagesOf(stage models.Stage) []models.SubStage {
	list, ok := subStages[stage]
	if !ok || len(list) == 0 {
		return nil
	}
	out := make([]models.SubStage, len(list))
	copy(out, list)
	return out
}

// PipelineIndex returns the ordinal position of a stage in the forward
// pipeline order, or -1 for terminal and unknown stages.
func PipelineIndex(stage models.Stage) int {
	for i, s := range pipelineOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether a stage is one of the absorbing terminals.
func IsTerminal(stage models.Stage) bool {
	return stage == models.StageHired || stage == models.StageRejected
}

// IsKnown reports whether the stage is part of the pipeline or a terminal.
func IsKnown(stage models.Stage) bool {
	return IsTerminal(stage) || PipelineIndex(stage) >= 0
}

// IsForwardTransition reports whether moving from one stage to another is
// allowed: strictly forward in pipeline order, or into a terminal stage.
func IsForwardTransition(from, to models.Stage) bool {
	if IsTerminal(to) {
		return !IsTerminal(from)
	}
	fromIdx, toIdx := PipelineIndex(from), PipelineIndex(to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	return toIdx > fromIdx
}

// NextStage returns the stage directly after the given one in pipeline
// order. The second return is false for the last pipeline stage, terminals
// and unknown stages.
func NextStage(stage models.Stage) (models.Stage, bool) {
	idx := PipelineIndex(stage)
	if idx < 0 || idx+1 >= len(pipelineOrder) {
		return "", false
	}
	return pipelineOrder[idx+1], true
}

// BelongsTo reports whether a sub-stage is in the stage's canonical list.
func BelongsTo(stage models.Stage, sub models.SubStage) bool {
	for _, s := range subStages[stage] {
		if s == sub {
			return true
		}
	}
	return false
}

// FirstSubstage returns the first canonical sub-stage of a stage, or
// SubStageUnknown when the stage defines none.
func FirstSubstage(stage models.Stage) models.SubStage {
	list := subStages[stage]
	if len(list) == 0 {
		return models.SubStageUnknown
	}
	return list[0]
}
