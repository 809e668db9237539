// internal/models/offer.go
package models

import "time"

// OfferStatus is the monotonic status of a single offer document.
type OfferStatus string

const (
	OfferDraft     OfferStatus = "draft"
	OfferSent      OfferStatus = "sent"
	OfferSigned    OfferStatus = "signed"
	OfferDeclined  OfferStatus = "declined"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// Offer is one offer document for an application. Multiple offers may exist
// per application (re-offers); each carries its own status machine.
type Offer struct {
	ID                string      `json:"id"`
	ApplicationID     string      `json:"applicationId"`
	DocumentRef       string      `json:"documentRef"`
	OfferAmount       *int64      `json:"offerAmount,omitempty"`
	Status            OfferStatus `json:"status"`
	SignedDocumentRef string      `json:"signedDocumentRef,omitempty"`
	WithdrawalReason  string      `json:"withdrawalReason,omitempty"`
	SentAt            *time.Time  `json:"sentAt,omitempty"`
	SignedAt          *time.Time  `json:"signedAt,omitempty"`
	DeclinedAt        *time.Time  `json:"declinedAt,omitempty"`
	WithdrawnAt       *time.Time  `json:"withdrawnAt,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}
