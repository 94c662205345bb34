package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"user_auth_service/internal/audit"
	"user_auth_service/internal/queue"
)

const processTimeout = 5 * time.Second

// ProcessEvent turns one consumed message into an audit-log row.
func ProcessEvent(db *sql.DB, repo audit.RepositoryInterface, body []byte) error {
	var event queue.UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}

	if event.Action == "" {
		return fmt.Errorf("event is missing an action")
	}

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	record := &audit.Record{
		Action:   event.Action,
		Username: event.Username,
		Payload:  string(body),
	}

	if _, err := repo.Insert(ctx, db, record); err != nil {
		return err
	}

	return nil
}
