// internal/pipeline/offers.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recruiting-pipeline/internal/activitylog"
	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// OfferService manages offer documents. Each offer carries its own status
// machine: sent -> signed | declined, or sent -> withdrawn.
type OfferService struct {
	apps       ApplicationStore
	offers     OfferStore
	activities *activitylog.Logger
	log        logger.Logger
}

func NewOfferService(apps ApplicationStore, offers OfferStore, activities *activitylog.Logger, log logger.Logger) *OfferService {
	return &OfferService{
		apps:       apps,
		offers:     offers,
		activities: activities,
		log:        log.WithFields(map[string]interface{}{"component": "offer_service"}),
	}
}

// Upload creates an offer directly in sent status; there is no draft step
// when a document is attached.
func (s *OfferService) Upload(ctx context.Context, applicationID, documentRef string, offerAmount *int64, actor activitylog.Actor) (*models.Offer, error) {
	if documentRef == "" {
		return nil, errs.NewInvalidStateError("offer document reference must not be empty")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	now := time.Now().UTC()
	offer := &models.Offer{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		DocumentRef:   documentRef,
		OfferAmount:   offerAmount,
		Status:        models.OfferSent,
		SentAt:        &now,
		CreatedAt:     now,
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, errs.NewDatabaseError("create offer", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.OfferMetadata{
		OfferID:     offer.ID,
		OfferAmount: offerAmount,
		Status:      models.OfferSent,
	}
	if _, err := s.activities.LogOfferSent(ctx, applicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after offer create", map[string]interface{}{
			"error":   err,
			"offerId": offer.ID,
		})
	}

	return offer, nil
}

// StatusUpdate carries the optional fields of an offer status change.
type StatusUpdate struct {
	SignedDocumentRef string
	WithdrawalReason  string
}

// UpdateStatus applies one of the legal transitions out of sent status.
// Signing and declining are candidate actions: the actor must own the
// parent application.
func (s *OfferService) UpdateStatus(ctx context.Context, offerID string, newStatus models.OfferStatus, actor activitylog.Actor, update StatusUpdate) (*models.Offer, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, errs.NewDatabaseError("find offer", err)
	}
	if offer == nil {
		return nil, errs.NewNotFoundError("offer", offerID)
	}

	if offer.Status != models.OfferSent {
		return nil, errs.NewInvalidStateError(
			fmt.Sprintf("offer %s is %q; only sent offers can change status", offerID, offer.Status))
	}

	switch newStatus {
	case models.OfferSigned, models.OfferDeclined, models.OfferWithdrawn:
	default:
		return nil, errs.NewInvalidStateError(
			fmt.Sprintf("cannot move offer from %q to %q", offer.Status, newStatus))
	}

	app, err := s.apps.FindByID(ctx, offer.ApplicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", offer.ApplicationID)
	}

	if (newStatus == models.OfferSigned || newStatus == models.OfferDeclined) && app.SeekerID != actor.ID {
		return nil, errs.NewAuthorizationError(
			fmt.Sprintf("actor %s does not own application %s", actor.ID, app.ID))
	}

	now := time.Now().UTC()
	offer.Status = newStatus
	switch newStatus {
	case models.OfferSigned:
		offer.SignedAt = &now
		offer.SignedDocumentRef = update.SignedDocumentRef
	case models.OfferDeclined:
		offer.DeclinedAt = &now
	case models.OfferWithdrawn:
		offer.WithdrawnAt = &now
		offer.WithdrawalReason = update.WithdrawalReason
	}

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, errs.NewDatabaseError("update offer", err)
	}

	snap := activitylog.StageSnapshot{Stage: app.Stage, SubStage: app.SubStage}
	meta := models.OfferMetadata{
		OfferID:     offer.ID,
		OfferAmount: offer.OfferAmount,
		Status:      newStatus,
		Reason:      update.WithdrawalReason,
	}
	if _, err := s.activities.LogOfferStatus(ctx, offer.ApplicationID, snap, meta, actor); err != nil {
		s.log.Error("activity append failed after offer status update", map[string]interface{}{
			"error":   err,
			"offerId": offer.ID,
			"status":  newStatus,
		})
	}

	return offer, nil
}

// ListOffers returns all offers for an application in creation order.
func (s *OfferService) ListOffers(ctx context.Context, applicationID string) ([]models.Offer, error) {
	offers, err := s.offers.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("list offers", err)
	}
	return offers, nil
}
