package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
	amqp "github.com/rabbitmq/amqp091-go"
)

var logger = loggo.GetLogger("tables.queue")

// Consumer appends confirmation events to a log file.
type Consumer struct {
	URL     string
	LogPath string
	Clock   clock.Clock
}

// NewConsumer returns a consumer for the broker at url writing to
// logs/reservations.log.
func NewConsumer(url string) *Consumer {
	return &Consumer{
		URL:     url,
		LogPath: filepath.Join("logs", "reservations.log"),
		Clock:   clock.WallClock,
	}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is done.  Dial failures are retried with doubling backoff
// capped at 30s; a closed delivery channel triggers a reconnect.
// Malformed messages are logged and rejected without requeue so the
// consumer never spins on them.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		var conn *amqp.Connection
		err := retry.Call(retry.CallArgs{
			Func: func() error {
				var err error
				conn, err = amqp.Dial(c.URL)
				return err
			},
			NotifyFunc: func(err error, attempt int) {
				logger.Warningf("dial broker (attempt %d): %v", attempt, err)
			},
			Attempts:    -1,
			Delay:       time.Second,
			MaxDelay:    30 * time.Second,
			BackoffFunc: retry.DoubleDelay,
			Clock:       c.Clock,
			Stop:        ctx.Done(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Annotate(err, "dialing broker")
		}
		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warningf("consume loop ended: %v; reconnecting", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.Clock.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warningf("set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ReservationConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	logger.Infof("consuming %s", ReservationConfirmedQueue)
	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			logger.Errorf("handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and appends it to the log file.
func (c *Consumer) Handle(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if err := WriteLine(f, ev); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// WriteLine writes the single-line, human-friendly form of ev.
func WriteLine(w io.Writer, ev ReservationConfirmedEvent) error {
	_, err := fmt.Fprintf(w,
		"[%s] Reservation confirmed | folio=%s | reservation_id=%d | customer_id=%d | branch=%q | table_id=%d | party=%d | starts=%s | ends=%s | contact=%q\n",
		ev.ConfirmedAt, ev.Folio, ev.ReservationID, ev.CustomerID, ev.BranchName, ev.TableID, ev.PartySize,
		ev.StartsAt, ev.EndsAt, ev.ContactName)
	return err
}
