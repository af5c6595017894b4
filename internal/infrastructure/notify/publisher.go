package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"partshub-backend/internal/domain"
)

const (
	InvoiceQueue = "notifications.invoice"

	publishTimeout = 3 * time.Second
)

// Publisher dispatches order invoices to the notification worker over
// RabbitMQ. The queue is declared durable up front so publishing never
// fails on missing infra.
type Publisher struct {
	ch *amqp.Channel
}

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(InvoiceQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", InvoiceQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// SendInvoice publishes the invoice message consumed by the email worker.
func (p *Publisher) SendInvoice(ctx context.Context, inv *domain.Invoice) error {
	body, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(
		pubCtx,
		"",           // default exchange
		InvoiceQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotificationSend, err)
	}
	return nil
}

var _ domain.Notifier = (*Publisher)(nil)
