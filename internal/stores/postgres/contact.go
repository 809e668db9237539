// internal/stores/postgres/contact.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recruiting-pipeline/internal/notify"
)

// ContactStore resolves seeker contact details for notifications.
type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) FindContact(ctx context.Context, seekerID string) (*notify.Contact, error) {
	var contact notify.Contact
	var name, email, phone sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, phone
		FROM seekers
		WHERE id = $1`, seekerID).Scan(&name, &email, &phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select seeker contact: %w", err)
	}

	contact.Name = name.String
	contact.Email = email.String
	contact.Phone = phone.String
	return &contact, nil
}
