// Package service holds adapters the booking engine calls out to.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
)

var logger = loggo.GetLogger("tables.service")

// Publisher sends one message to a queue.
type Publisher interface {
	Publish(ctx context.Context, queueName string, msg amqp.Publishing) error
}

// AMQPPublisher dials the broker per message.
type AMQPPublisher struct {
	URL string
}

// Publish declares queueName (durable) and publishes msg to it through the
// default exchange.
func (p AMQPPublisher) Publish(ctx context.Context, queueName string, msg amqp.Publishing) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return errors.Annotate(err, "rabbitmq: dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Annotate(err, "rabbitmq: channel open")
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		return errors.Annotate(err, "rabbitmq: queue declare")
	}
	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		msg,
	); err != nil {
		return errors.Annotate(err, "rabbitmq: publish")
	}
	return nil
}

// Notifier publishes reservation.confirmed events.
type Notifier struct {
	publisher Publisher
	clock     clock.Clock
}

// NewNotifier returns a notifier publishing through p.
func NewNotifier(p Publisher, clk clock.Clock) *Notifier {
	return &Notifier{publisher: p, clock: clk}
}

// Event builds the confirmation event for res.
func Event(res model.Reservation, branch model.Branch, confirmedAt time.Time) queue.ReservationConfirmedEvent {
	loc, err := time.LoadLocation(res.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		Folio:         res.Folio,
		BranchID:      res.BranchID,
		BranchName:    branch.Name,
		PartySize:     res.PartySize,
		StartsAt:      res.LocalStart(loc).Format(time.RFC3339),
		EndsAt:        res.LocalEnd(loc).Format(time.RFC3339),
		TimeZone:      res.TimeZone,
		ContactName:   res.Contact.Name,
		ContactEmail:  res.Contact.Email,
		ContactPhone:  res.Contact.Phone,
		ConfirmedAt:   confirmedAt.UTC().Format(time.RFC3339),
	}
	if res.CustomerID != nil {
		ev.CustomerID = *res.CustomerID
	}
	if res.TableID != nil {
		ev.TableID = *res.TableID
	}
	return ev
}

// ReservationConfirmed implements booking.Notifier.  Messages are marked
// persistent.
func (n *Notifier) ReservationConfirmed(ctx context.Context, res model.Reservation, branch model.Branch) error {
	now := n.clock.Now()
	body, err := json.Marshal(Event(res, branch, now))
	if err != nil {
		return errors.Annotate(err, "marshal event")
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now.UTC(),
		MessageId:    res.Folio,
		Body:         body,
	}
	if err := n.publisher.Publish(ctx, queue.ReservationConfirmedQueue, msg); err != nil {
		return errors.Annotatef(err, "publishing %s", res.Folio)
	}
	logger.Debugf("published %s for %s", queue.ReservationConfirmedQueue, res.Folio)
	return nil
}
