// Package bookingevents announces confirmed bookings on a RabbitMQ queue.
package bookingevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// Event is the message body published for each booking.
type Event struct {
	EventID   string    `json:"event_id"`
	HotelID   int64     `json:"hotel_id"`
	GuestName string    `json:"guest_name"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	BookedAt  time.Time `json:"booked_at"`
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (channel, io.Closer, error)

func dialAMQP(url string) (channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

// Publisher connects on first use and reconnects after a failed publish.
// It is safe for concurrent use.
type Publisher struct {
	url   string
	queue string

	dial  dialFunc
	now   func() time.Time
	newID func() string

	mu   sync.Mutex
	ch   channel
	conn io.Closer
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{
		url:   url,
		queue: queue,
		dial:  dialAMQP,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// BookingCreated implements domain.BookingNotifier.
func (p *Publisher) BookingCreated(ctx context.Context, b domain.Booking) (err error) {
	defer func() {
		if err != nil {
			observability.ObserveBookingEvent("failed")
			return
		}
		observability.ObserveBookingEvent("published")
	}()

	ev := Event{
		EventID:   p.newID(),
		HotelID:   b.HotelID,
		GuestName: b.GuestName,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		BookedAt:  p.now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(); err != nil {
		return err
	}
	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.EventID,
			Timestamp:    ev.BookedAt,
			Body:         body,
		})
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	log.Debug().Str("event_id", ev.EventID).Int64("hotel_id", ev.HotelID).Msg("booking event published")
	return nil
}

func (p *Publisher) connectLocked() error {
	if p.ch != nil {
		return nil
	}
	ch, conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	if _, err := ch.QueueDeclare(
		p.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.ch, p.conn = ch, conn
	return nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close drops the broker connection. A later publish reconnects.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}
