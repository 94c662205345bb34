package audit

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"
)

type Repository struct{}

type RepositoryInterface interface {
	Insert(ctx context.Context, db *sql.DB, record *Record) (int, error)
}

func NewRepository() RepositoryInterface {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, db *sql.DB, record *Record) (int, error) {
	query := `
		INSERT INTO audit_log (action, username, payload, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`

	var id int
	err := db.QueryRowContext(ctx, query, record.Action, record.Username, record.Payload).Scan(&id)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert audit record")
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"audit_id": id,
		"action":   record.Action,
		"username": record.Username,
	}).Info("Audit record written")

	return id, nil
}
