// internal/activitylog/schemas.go
package activitylog

import (
	"github.com/xeipuuv/gojsonschema"

	"recruiting-pipeline/internal/models"
)

// Per-family JSON schemas for activity metadata payloads. Violations are
// logged and counted but the activity is still appended: the audit trail
// must never lose an event over a malformed payload.
const (
	stageChangeSchema = `{
		"type": "object",
		"properties": {
			"fromStage":    {"type": "string", "minLength": 1},
			"toStage":      {"type": "string", "minLength": 1},
			"fromSubStage": {"type": "string"},
			"toSubStage":   {"type": "string"}
		},
		"required": ["fromStage", "toStage"],
		"additionalProperties": false
	}`

	commentSchema = `{
		"type": "object",
		"properties": {
			"commentId": {"type": "string", "minLength": 1}
		},
		"required": ["commentId"],
		"additionalProperties": false
	}`

	compensationSchema = `{
		"type": "object",
		"properties": {
			"compensationId": {"type": "string", "minLength": 1},
			"action":         {"type": "string", "enum": ["initiated", "proposed", "approved", "updated"]},
			"amount":         {"type": "integer"}
		},
		"required": ["compensationId", "action"],
		"additionalProperties": false
	}`

	offerSchema = `{
		"type": "object",
		"properties": {
			"offerId":     {"type": "string", "minLength": 1},
			"offerAmount": {"type": "integer"},
			"status":      {"type": "string", "enum": ["draft", "sent", "signed", "declined", "withdrawn"]},
			"reason":      {"type": "string"}
		},
		"required": ["offerId", "status"],
		"additionalProperties": false
	}`

	interviewSchema = `{
		"type": "object",
		"properties": {
			"interviewId": {"type": "string", "minLength": 1},
			"scheduledAt": {"type": "string"},
			"rating":      {"type": "integer", "minimum": 0, "maximum": 10}
		},
		"required": ["interviewId"],
		"additionalProperties": false
	}`

	taskSchema = `{
		"type": "object",
		"properties": {
			"taskId":   {"type": "string", "minLength": 1},
			"deadline": {"type": "string"},
			"score":    {"type": "integer", "minimum": 0, "maximum": 100}
		},
		"required": ["taskId"],
		"additionalProperties": false
	}`
)

var metadataSchemas = map[models.ActivityType]*gojsonschema.Schema{}

func init() {
	raw := map[models.ActivityType]string{
		models.ActivityStageChange:    stageChangeSchema,
		models.ActivitySubStageChange: stageChangeSchema,
		models.ActivityCommentAdded:   commentSchema,
		models.ActivityCompensation:   compensationSchema,

		models.ActivityOfferSent:      offerSchema,
		models.ActivityOfferSigned:    offerSchema,
		models.ActivityOfferDeclined:  offerSchema,
		models.ActivityOfferWithdrawn: offerSchema,

		models.ActivityInterviewScheduled: interviewSchema,
		models.ActivityInterviewCompleted: interviewSchema,

		models.ActivityTaskAssigned:  taskSchema,
		models.ActivityTaskSubmitted: taskSchema,
		models.ActivityTaskCompleted: taskSchema,
	}

	for t, s := range raw {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
		if err != nil {
			panic("activitylog: invalid metadata schema for " + string(t) + ": " + err.Error())
		}
		metadataSchemas[t] = schema
	}
}

// validateMetadata checks a marshaled payload against the schema for its
// type. Unknown types pass; the log is lenient by design.
func validateMetadata(t models.ActivityType, payload []byte) []string {
	schema, ok := metadataSchemas[t]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return msgs
}
