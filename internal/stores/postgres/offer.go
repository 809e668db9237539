// internal/stores/postgres/offer.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recruiting-pipeline/internal/models"
)

type OfferStore struct {
	db *sql.DB
}

func NewOfferStore(db *sql.DB) *OfferStore {
	return &OfferStore{db: db}
}

const offerColumns = `id, application_id, document_ref, offer_amount, status,
	signed_document_ref, withdrawal_reason, sent_at, signed_at, declined_at,
	withdrawn_at, created_at`

func (s *OfferStore) Create(ctx context.Context, offer *models.Offer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offers (
			id, application_id, document_ref, offer_amount, status,
			signed_document_ref, withdrawal_reason, sent_at, signed_at,
			declined_at, withdrawn_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		offer.ID, offer.ApplicationID, offer.DocumentRef,
		nullInt64(offer.OfferAmount), string(offer.Status),
		nullString(offer.SignedDocumentRef), nullString(offer.WithdrawalReason),
		nullTime(offer.SentAt), nullTime(offer.SignedAt),
		nullTime(offer.DeclinedAt), nullTime(offer.WithdrawnAt),
		offer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (s *OfferStore) FindByID(ctx context.Context, id string) (*models.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	offer, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select offer: %w", err)
	}
	return offer, nil
}

func (s *OfferStore) FindByApplication(ctx context.Context, applicationID string) ([]models.Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE application_id = $1 ORDER BY created_at ASC`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

func (s *OfferStore) Update(ctx context.Context, offer *models.Offer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE offers
		SET status = $2, signed_document_ref = $3, withdrawal_reason = $4,
		    sent_at = $5, signed_at = $6, declined_at = $7, withdrawn_at = $8
		WHERE id = $1`,
		offer.ID, string(offer.Status),
		nullString(offer.SignedDocumentRef), nullString(offer.WithdrawalReason),
		nullTime(offer.SentAt), nullTime(offer.SignedAt),
		nullTime(offer.DeclinedAt), nullTime(offer.WithdrawnAt),
	)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("offer %s not found", offer.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(r rowScanner) (*models.Offer, error) {
	var offer models.Offer
	var status string
	var offerAmount sql.NullInt64
	var signedRef, withdrawalReason sql.NullString
	var sentAt, signedAt, declinedAt, withdrawnAt sql.NullTime

	err := r.Scan(
		&offer.ID, &offer.ApplicationID, &offer.DocumentRef,
		&offerAmount, &status, &signedRef, &withdrawalReason,
		&sentAt, &signedAt, &declinedAt, &withdrawnAt, &offer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	offer.Status = models.OfferStatus(status)
	offer.OfferAmount = int64Ptr(offerAmount)
	offer.SignedDocumentRef = signedRef.String
	offer.WithdrawalReason = withdrawalReason.String
	offer.SentAt = timePtr(sentAt)
	offer.SignedAt = timePtr(signedAt)
	offer.DeclinedAt = timePtr(declinedAt)
	offer.WithdrawnAt = timePtr(withdrawnAt)
	return &offer, nil
}
