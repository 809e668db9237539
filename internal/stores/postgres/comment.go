// internal/stores/postgres/comment.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"recruiting-pipeline/internal/models"
)

type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, application_id, text, stage, sub_stage, author_id, author_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		comment.ID, comment.ApplicationID, comment.Text, comment.Stage,
		nullString(string(comment.SubStage)), comment.AuthorID, comment.AuthorName, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *CommentStore) FindByApplication(ctx context.Context, applicationID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, text, stage, sub_stage, author_id, author_name, created_at
		FROM comments
		WHERE application_id = $1
		ORDER BY created_at ASC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		var subStage sql.NullString
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.Text, &c.Stage, &subStage,
			&c.AuthorID, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.SubStage = models.SubStage(subStage.String)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
