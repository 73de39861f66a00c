package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

const (
	applicationsQueue       = "applications"
	applicationUpdatesTopic = "application_updates"
)

// amqpPublisher publishes applications on the applications queue, one
// channel per publish.
type amqpPublisher struct {
	conn *amqp.Connection
}

func declareApplicationsQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		applicationsQueue, // queue name
		true,              // durable (survives broker restarts)
		false,             // auto-delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	return err
}

func (p *amqpPublisher) PublishApplication(_ context.Context, msg ApplicationMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareApplicationsQueue(ch); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ch.Publish(
		"", // default exchange
		applicationsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func publishApplicationUpdate(rabbitConn *amqp.Connection, applicationID string, update map[string]any) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, _ := json.Marshal(update)
	routingKey := fmt.Sprintf("application.%s", applicationID)

	return ch.Publish(
		applicationUpdatesTopic, // exchange
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
