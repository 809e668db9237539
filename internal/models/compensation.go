// internal/models/compensation.go
package models

import "time"

// Compensation is the negotiation record for an application. At most one
// exists per application; successive negotiation updates mutate it in place.
type Compensation struct {
	ID                string     `json:"id"`
	ApplicationID     string     `json:"applicationId"`
	CandidateExpected int64      `json:"candidateExpected"`
	CompanyProposed   *int64     `json:"companyProposed,omitempty"`
	FinalAgreed       *int64     `json:"finalAgreed,omitempty"`
	ExpectedJoining   *time.Time `json:"expectedJoining,omitempty"`
	Benefits          []string   `json:"benefits,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy        string     `json:"approvedBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CompensationUpdate carries a partial field merge for an existing record.
// Nil fields are left untouched.
type CompensationUpdate struct {
	CompanyProposed *int64     `json:"companyProposed,omitempty"`
	FinalAgreed     *int64     `json:"finalAgreed,omitempty"`
	ExpectedJoining *time.Time `json:"expectedJoining,omitempty"`
	Benefits        []string   `json:"benefits,omitempty"`
	Approved        bool       `json:"approved,omitempty"`
}

// CompensationAction discriminates the negotiation step an update represents.
type CompensationAction string

const (
	CompensationInitiated CompensationAction = "initiated"
	CompensationProposed  CompensationAction = "proposed"
	CompensationApproved  CompensationAction = "approved"
	CompensationUpdated   CompensationAction = "updated"
)
