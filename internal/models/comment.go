// internal/models/comment.go
package models

import "time"

// Comment is an immutable note attached to an application, stamped with the
// stage/sub-stage active when it was written.
type Comment struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	Text          string    `json:"text"`
	Stage         Stage     `json:"stage"`
	SubStage      SubStage  `json:"subStage,omitempty"`
	AuthorID      string    `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	CreatedAt     time.Time `json:"createdAt"`
}
