package queue

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const BookingQueueName = "booking.created"

// AMQPPublisher publishes events to the durable booking.created queue.
// The connection is opened lazily and reopened after failures.
type AMQPPublisher struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	return p.conn.Channel()
}

func (p *AMQPPublisher) PublishBookingCreated(ctx context.Context, ev BookingCreatedEvent) error {
	ch, err := p.channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", BookingQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// DirectPublisher runs the handler in-process on its own goroutine. It is
// used when no broker is configured.
type DirectPublisher struct {
	Handle  Handler
	Timeout time.Duration
	wg      sync.WaitGroup
}

func NewDirectPublisher(h Handler) *DirectPublisher {
	return &DirectPublisher{Handle: h, Timeout: 30 * time.Second}
}

func (p *DirectPublisher) PublishBookingCreated(_ context.Context, ev BookingCreatedEvent) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		if err := p.Handle(ctx, ev); err != nil {
			log.Printf("booking event %s: %v", ev.AppointmentID, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched event has been handled.
func (p *DirectPublisher) Wait() { p.wg.Wait() }
