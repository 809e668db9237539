// internal/models/activity.go
package models

import (
	"encoding/json"
	"time"
)

// ActivityType identifies the action an activity records.
type ActivityType string

const (
	ActivityStageChange    ActivityType = "STAGE_CHANGE"
	ActivitySubStageChange ActivityType = "SUBSTAGE_CHANGE"
	ActivityCommentAdded   ActivityType = "COMMENT_ADDED"
	ActivityCompensation   ActivityType = "COMPENSATION"

	ActivityOfferSent      ActivityType = "OFFER_SENT"
	ActivityOfferSigned    ActivityType = "OFFER_SIGNED"
	ActivityOfferDeclined  ActivityType = "OFFER_DECLINED"
	ActivityOfferWithdrawn ActivityType = "OFFER_WITHDRAWN"

	ActivityInterviewScheduled ActivityType = "INTERVIEW_SCHEDULED"
	ActivityInterviewCompleted ActivityType = "INTERVIEW_COMPLETED"

	ActivityTaskAssigned  ActivityType = "TASK_ASSIGNED"
	ActivityTaskSubmitted ActivityType = "TASK_SUBMITTED"
	ActivityTaskCompleted ActivityType = "TASK_COMPLETED"
)

// Activity is an immutable, append-only audit event. Stage and SubStage may
// be empty at write time; the timeline reconstructor infers them at read time.
type Activity struct {
	ID              string           `json:"id"`
	ApplicationID   string           `json:"applicationId"`
	Type            ActivityType     `json:"type"`
	Stage           Stage            `json:"stage,omitempty"`
	SubStage        SubStage         `json:"subStage,omitempty"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	PerformedBy     string           `json:"performedBy"`
	PerformedByName string           `json:"performedByName,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	Metadata        ActivityMetadata `json:"metadata,omitempty"`
}

// UnmarshalJSON rebuilds the typed metadata payload using the activity's
// own type as discriminator.
func (a *Activity) UnmarshalJSON(data []byte) error {
	type alias Activity
	aux := struct {
		*alias
		Metadata json.RawMessage `json:"metadata,omitempty"`
	}{alias: (*alias)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	meta, err := DecodeMetadata(a.Type, aux.Metadata)
	if err != nil {
		return err
	}
	a.Metadata = meta
	return nil
}

// ActivityMetadata is a closed union of per-type payloads, discriminated by
// the activity's Type.
type ActivityMetadata interface {
	activityMetadata()
}

// StageChangeMetadata accompanies STAGE_CHANGE and SUBSTAGE_CHANGE.
type StageChangeMetadata struct {
	FromStage    Stage    `json:"fromStage"`
	ToStage      Stage    `json:"toStage"`
	FromSubStage SubStage `json:"fromSubStage,omitempty"`
	ToSubStage   SubStage `json:"toSubStage,omitempty"`
}

// CommentMetadata accompanies COMMENT_ADDED and references the persisted
// comment. No COMMENT_ADDED activity may reference a nonexistent comment.
type CommentMetadata struct {
	CommentID string `json:"commentId"`
}

// CompensationMetadata accompanies COMPENSATION activities. Action
// discriminates the negotiation step.
type CompensationMetadata struct {
	CompensationID string             `json:"compensationId"`
	Action         CompensationAction `json:"action"`
	Amount         *int64             `json:"amount,omitempty"`
}

// OfferMetadata accompanies the OFFER_* family.
type OfferMetadata struct {
	OfferID     string      `json:"offerId"`
	OfferAmount *int64      `json:"offerAmount,omitempty"`
	Status      OfferStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
}

// InterviewMetadata accompanies the INTERVIEW_* family.
type InterviewMetadata struct {
	InterviewID string     `json:"interviewId"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
}

// TaskMetadata accompanies the TASK_* family.
type TaskMetadata struct {
	TaskID   string     `json:"taskId"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Score    *int       `json:"score,omitempty"`
}

func (StageChangeMetadata) activityMetadata()  {}
func (CommentMetadata) activityMetadata()      {}
func (CompensationMetadata) activityMetadata() {}
func (OfferMetadata) activityMetadata()        {}
func (InterviewMetadata) activityMetadata()    {}
func (TaskMetadata) activityMetadata()         {}

// EncodeMetadata serializes a metadata payload for storage. A nil payload
// encodes as an empty JSON object.
func EncodeMetadata(m ActivityMetadata) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// DecodeMetadata rebuilds the typed payload for an activity read back from
// storage. Unknown types return nil without error; the read side is lenient.
func DecodeMetadata(t ActivityType, raw []byte) (ActivityMetadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch t {
	case ActivityStageChange, ActivitySubStageChange:
		var m StageChangeMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ActivityCommentAdded:
		var m CommentMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ActivityCompensation:
		var m CompensationMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ActivityOfferSent, ActivityOfferSigned, ActivityOfferDeclined, ActivityOfferWithdrawn:
		var m OfferMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ActivityInterviewScheduled, ActivityInterviewCompleted:
		var m InterviewMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ActivityTaskAssigned, ActivityTaskSubmitted, ActivityTaskCompleted:
		var m TaskMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, nil
	}
}
