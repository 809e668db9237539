// internal/models/application.go
package models

import "time"

// Application is the single live record for one candidate/job pair. Its
// stage fields are mutated only by the pipeline transition engine.
type Application struct {
	ID        string    `json:"id"`
	SeekerID  string    `json:"seekerId"`
	JobID     string    `json:"jobId"`
	Stage     Stage     `json:"stage"`
	SubStage  SubStage  `json:"subStage,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
