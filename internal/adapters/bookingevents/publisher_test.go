package bookingevents

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"hotel_booking/internal/domain"
)

type fakeChannel struct {
	declared   []string
	durable    bool
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	c.durable = durable
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error { c.closed = true; return nil }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newTestPublisher(dials *int, chans *[]*fakeChannel, dialErr error) *Publisher {
	p := NewPublisher("amqp://test", "booking.created")
	p.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	p.newID = func() string { return "evt-1" }
	p.dial = func(string) (channel, io.Closer, error) {
		*dials++
		if dialErr != nil {
			return nil, nil, dialErr
		}
		ch := &fakeChannel{}
		*chans = append(*chans, ch)
		return ch, nopCloser{}, nil
	}
	return p
}

func TestBookingCreated_PublishesPersistentJSON(t *testing.T) {
	var dials int
	var chans []*fakeChannel
	p := newTestPublisher(&dials, &chans, nil)

	b := domain.Booking{HotelID: 4, GuestName: "Ana", CheckIn: "2024-06-01", CheckOut: "2024-06-03"}
	if err := p.BookingCreated(context.Background(), b); err != nil {
		t.Fatalf("BookingCreated: %v", err)
	}
	if err := p.BookingCreated(context.Background(), b); err != nil {
		t.Fatalf("second BookingCreated: %v", err)
	}
	if dials != 1 {
		t.Fatalf("dialed %d times, want 1", dials)
	}
	ch := chans[0]
	if len(ch.declared) != 1 || ch.declared[0] != "booking.created" || !ch.durable {
		t.Fatalf("queue declare = %v durable=%v", ch.declared, ch.durable)
	}
	if len(ch.published) != 2 || ch.keys[0] != "booking.created" {
		t.Fatalf("published %d to %v", len(ch.published), ch.keys)
	}

	msg := ch.published[0]
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" || msg.MessageId != "evt-1" {
		t.Fatalf("publishing = %+v", msg)
	}
	var ev Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		t.Fatalf("body: %v", err)
	}
	if ev.EventID != "evt-1" || ev.HotelID != 4 || ev.GuestName != "Ana" || ev.CheckIn != "2024-06-01" || ev.CheckOut != "2024-06-03" {
		t.Fatalf("event = %+v", ev)
	}
	if !ev.BookedAt.Equal(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("booked_at = %v", ev.BookedAt)
	}
}

func TestBookingCreated_ReconnectsAfterPublishFailure(t *testing.T) {
	var dials int
	var chans []*fakeChannel
	p := newTestPublisher(&dials, &chans, nil)
	ctx := context.Background()

	if err := p.BookingCreated(ctx, domain.Booking{HotelID: 1}); err != nil {
		t.Fatal(err)
	}
	chans[0].publishErr = amqp.ErrClosed
	if err := p.BookingCreated(ctx, domain.Booking{HotelID: 1}); !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if !chans[0].closed {
		t.Fatal("broken channel not closed")
	}
	if err := p.BookingCreated(ctx, domain.Booking{HotelID: 1}); err != nil {
		t.Fatalf("after reconnect: %v", err)
	}
	if dials != 2 || len(chans[1].published) != 1 {
		t.Fatalf("dials=%d published=%d", dials, len(chans[1].published))
	}
}

func TestBookingCreated_DialError(t *testing.T) {
	var dials int
	var chans []*fakeChannel
	p := newTestPublisher(&dials, &chans, errors.New("connection refused"))
	if err := p.BookingCreated(context.Background(), domain.Booking{HotelID: 1}); err == nil {
		t.Fatal("expected dial error")
	}
	_ = p.Close()
}
