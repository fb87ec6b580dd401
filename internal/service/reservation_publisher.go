package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-reservation-store/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ReservationPublisher announces committed reservations. Failures are reported
// to the caller, which treats them as non-fatal.
type ReservationPublisher interface {
	PublishReservationCreated(ctx context.Context, event *queue.ReservationCreatedEvent) error
	Close() error
}

// NoopReservationPublisher is used when no broker is configured.
type NoopReservationPublisher struct{}

func (NoopReservationPublisher) PublishReservationCreated(context.Context, *queue.ReservationCreatedEvent) error {
	return nil
}

func (NoopReservationPublisher) Close() error {
	return nil
}

// amqpChannel is the subset of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPReservationPublisher publishes persistent JSON messages to a durable
// queue on the default exchange.
type AMQPReservationPublisher struct {
	conn      *amqp.Connection
	channel   amqpChannel
	queueName string
	log       *logrus.Logger

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

func NewAMQPReservationPublisher(url, queueName string, log *logrus.Logger) (*AMQPReservationPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}

	// Durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare %s: %w", queueName, err)
	}

	log.Infof("RabbitMQ publisher ready on queue %s", queueName)

	return &AMQPReservationPublisher{
		conn:      conn,
		channel:   ch,
		queueName: queueName,
		log:       log,
	}, nil
}

func (p *AMQPReservationPublisher) PublishReservationCreated(ctx context.Context, event *queue.ReservationCreatedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal reservation event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, "", p.queueName, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish to %s: %w", p.queueName, err)
	}
	return nil
}

func (p *AMQPReservationPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.channel != nil {
		firstErr = p.channel.Close()
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
