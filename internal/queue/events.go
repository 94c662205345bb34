package queue

import (
	"context"
	"encoding/json"
	"time"
	"user_auth_service/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ActionUserCreated = "user.created"
	ActionUserUpdated = "user.updated"
	ActionUserDeleted = "user.deleted"
)

// UserEvent describes one user record mutation, published for the audit worker.
type UserEvent struct {
	Action     string    `json:"action"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	conn *amqp.Connection
}

func NewPublisher(conn *amqp.Connection) *Publisher {
	return &Publisher{conn: conn}
}

// PublishUserEvent sends a user lifecycle event to the audit queue.
func (p *Publisher) PublishUserEvent(ctx context.Context, event UserEvent) error {
	ch, err := CreateChannel(p.conn)
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",              // exchange
		UserEventsQueue, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return err
	}

	observability.IncQueuePublished(UserEventsQueue)
	return nil
}
