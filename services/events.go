package services

import (
	"encoding/json"
	"fmt"
	"time"

	"rovermon/config"
	"rovermon/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventPublisher streams supervisor decisions to a RabbitMQ exchange for
// fleet-ops consumers. It is a live feed only; nothing is stored here.
type EventPublisher struct {
	config    *config.Config
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zap.Logger
	isClosing bool
}

// NewEventPublisher connects to RabbitMQ and declares the decision exchange.
func NewEventPublisher(cfg *config.Config, logger *zap.Logger) (*EventPublisher, error) {
	publisher := &EventPublisher{
		config: cfg,
		logger: logger,
	}

	if err := publisher.connect(); err != nil {
		return nil, err
	}

	return publisher, nil
}

func (p *EventPublisher) connect() error {
	var err error

	p.logger.Info("Connecting to RabbitMQ", zap.String("url", p.config.AmqpURL))

	// Connect to RabbitMQ with retry
	maxRetries := 5
	for attempt := 1; attempt <= maxRetries; attempt++ {
		p.conn, err = amqp.Dial(p.config.AmqpURL)
		if err == nil {
			break
		}

		p.logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
	}

	p.channel, err = p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = p.channel.ExchangeDeclare(
		p.config.AmqpExchange, // name
		"direct",              // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.logger.Info("Decision exchange declared", zap.String("exchange", p.config.AmqpExchange))

	go p.handleReconnect()

	return nil
}

// handleReconnect re-dials when the connection drops underneath us.
func (p *EventPublisher) handleReconnect() {
	closeErr := <-p.conn.NotifyClose(make(chan *amqp.Error))
	if p.isClosing {
		p.logger.Info("RabbitMQ connection closed gracefully")
		return
	}

	p.logger.Error("RabbitMQ connection lost", zap.Error(closeErr))

	for {
		p.logger.Info("Attempting to reconnect to RabbitMQ...")
		err := p.connect()
		if err == nil {
			p.logger.Info("Successfully reconnected to RabbitMQ")
			return
		}

		p.logger.Error("Failed to reconnect", zap.Error(err))
		time.Sleep(5 * time.Second)
	}
}

// Publish sends one decision event, routed by its kind.
func (p *EventPublisher) Publish(event *models.DecisionEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal decision event: %w", err)
	}

	err = p.channel.Publish(
		p.config.AmqpExchange, // exchange
		string(event.Kind),    // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish decision event: %w", err)
	}

	p.logger.Debug("Published decision event",
		zap.String("kind", string(event.Kind)),
		zap.String("detail", event.Detail))

	return nil
}

// Close gracefully closes the RabbitMQ connection.
func (p *EventPublisher) Close() error {
	p.isClosing = true

	p.logger.Info("Closing RabbitMQ connection")

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error("Error closing channel", zap.Error(err))
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Error("Error closing connection", zap.Error(err))
			return err
		}
	}

	return nil
}
