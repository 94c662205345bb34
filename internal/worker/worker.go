package worker

import (
	"database/sql"
	"user_auth_service/internal/audit"
	"user_auth_service/internal/observability"
	"user_auth_service/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartWorker consumes user lifecycle events and writes audit-log rows.
func StartWorker(conn *amqp.Connection, db *sql.DB, repo audit.RepositoryInterface, id int) {
	ch, err := conn.Channel()
	if err != nil {
		logrus.Fatalf("Worker %d failed to open channel: %v", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logrus.Fatalf("Worker %d failed to set QoS: %v", id, err)
	}

	msgs, err := ch.Consume(
		queue.UserEventsQueue,
		"",
		false, // manual ACK
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatalf("Worker %d failed to start consuming messages: %v", id, err)
	}

	logrus.Infof("Audit worker %d started", id)

	for msg := range msgs {
		observability.IncQueueConsumed(queue.UserEventsQueue)

		if err := ProcessEvent(db, repo, msg.Body); err != nil {
			logrus.WithError(err).Error("Failed to process user event")
			_ = msg.Nack(false, false)
			continue
		}

		_ = msg.Ack(false)
	}
}
