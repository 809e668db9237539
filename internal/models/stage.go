// internal/models/stage.go
package models

// Stage is a top-level phase of the recruiting pipeline.
type Stage string

const (
	StageInReview      Stage = "IN_REVIEW"
	StageShortlisted   Stage = "SHORTLISTED"
	StageInterview     Stage = "INTERVIEW"
	StageTechnicalTask Stage = "TECHNICAL_TASK"
	StageCompensation  Stage = "COMPENSATION"
	StageOffer         Stage = "OFFER"

	// Terminal stages, reachable from any non-terminal stage.
	StageHired    Stage = "HIRED"
	StageRejected Stage = "REJECTED"
)

// SubStage is a finer-grained state within a stage.
type SubStage string

const (
	SubStageApplied     SubStage = "APPLIED"
	SubStageUnderReview SubStage = "UNDER_REVIEW"

	SubStageScheduled         SubStage = "SCHEDULED"
	SubStageEvaluationPending SubStage = "EVALUATION_PENDING"
	SubStageCompleted         SubStage = "COMPLETED"

	SubStageAssigned  SubStage = "ASSIGNED"
	SubStageSubmitted SubStage = "SUBMITTED"

	SubStageInitiated SubStage = "INITIATED"
	SubStageProposed  SubStage = "PROPOSED"
	SubStageApproved  SubStage = "APPROVED"

	SubStageSent     SubStage = "SENT"
	SubStageAccepted SubStage = "ACCEPTED"

	// SubStageUnknown is the display fallback when a sub-stage cannot be
	// resolved for a stage that defines no canonical list.
	SubStageUnknown SubStage = "UNKNOWN"
)
