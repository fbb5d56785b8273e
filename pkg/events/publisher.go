// Package events publishes order lifecycle events to RabbitMQ. Publishing is
// best-effort: a broker outage must never fail a customer request, so callers
// log publish errors and move on.
package events

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/rostishop/pkg/config"
)

const (
	EventOrderCreated  = "order.created"
	EventStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	OrderID string    `json:"order_id"`
	Event   string    `json:"event"`
	Status  string    `json:"status"`
	Total   float64   `json:"total"`
	At      time.Time `json:"at"`
}

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
}

func NewPublisher(cfg *config.RabbitMQConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		cfg:     cfg,
	}, nil
}

// Setup declares the exchange and queue so the service can start before any
// consumer exists.
func (p *Publisher) Setup() error {
	if err := p.channel.ExchangeDeclare(
		p.cfg.Exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := p.channel.QueueDeclare(
		p.cfg.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return p.channel.QueueBind(p.cfg.Queue, "", p.cfg.Exchange, false, nil)
}

func (p *Publisher) PublishOrderEvent(orderID, event, status string, total float64) error {
	body, err := json.Marshal(OrderEvent{
		OrderID: orderID,
		Event:   event,
		Status:  status,
		Total:   total,
		At:      time.Now(),
	})
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.cfg.Exchange,
		"",
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
