package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	qt "github.com/frankban/quicktest"
	"github.com/juju/clock/testclock"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/service"
)

type fakePublisher struct {
	err   error
	queue string
	msgs  []amqp.Publishing
}

func (p *fakePublisher) Publish(ctx context.Context, queueName string, msg amqp.Publishing) error {
	p.queue = queueName
	p.msgs = append(p.msgs, msg)
	return p.err
}

func reservation() (model.Reservation, model.Branch) {
	customerID, tableID := uint64(3), uint64(5)
	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	res := model.Reservation{
		ID:         12,
		Folio:      "20261014-4F9A2C",
		BranchID:   1,
		TableID:    &tableID,
		CustomerID: &customerID,
		PartySize:  4,
		StartUTC:   start,
		EndUTC:     start.Add(70 * time.Minute),
		TimeZone:   "America/Mexico_City",
		Status:     model.StatusConfirmed,
		Contact:    model.Contact{Name: "Ana", Email: "ana@example.com"},
	}
	return res, model.Branch{ID: 1, Name: "Centro"}
}

func TestEventUsesBranchLocalTimes(t *testing.T) {
	c := qt.New(t)
	res, branch := reservation()
	ev := service.Event(res, branch, time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))
	c.Assert(ev, qt.DeepEquals, queue.ReservationConfirmedEvent{
		ReservationID: 12,
		Folio:         "20261014-4F9A2C",
		CustomerID:    3,
		BranchID:      1,
		BranchName:    "Centro",
		TableID:       5,
		PartySize:     4,
		StartsAt:      "2026-10-14T18:00:00-06:00",
		EndsAt:        "2026-10-14T19:10:00-06:00",
		TimeZone:      "America/Mexico_City",
		ContactName:   "Ana",
		ContactEmail:  "ana@example.com",
		ConfirmedAt:   "2026-10-14T20:00:00Z",
	})
}

func TestReservationConfirmedPublishes(t *testing.T) {
	c := qt.New(t)
	pub := &fakePublisher{}
	clk := testclock.NewClock(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))
	res, branch := reservation()

	err := service.NewNotifier(pub, clk).ReservationConfirmed(context.Background(), res, branch)
	c.Assert(err, qt.IsNil)
	c.Assert(pub.queue, qt.Equals, queue.ReservationConfirmedQueue)
	c.Assert(pub.msgs, qt.HasLen, 1)
	msg := pub.msgs[0]
	c.Assert(msg.DeliveryMode, qt.Equals, amqp.Persistent)
	c.Assert(msg.MessageId, qt.Equals, res.Folio)
	c.Assert(msg.ContentType, qt.Equals, "application/json")

	var ev queue.ReservationConfirmedEvent
	c.Assert(json.Unmarshal(msg.Body, &ev), qt.IsNil)
	c.Assert(ev.Folio, qt.Equals, res.Folio)
	c.Assert(ev.ConfirmedAt, qt.Equals, "2026-10-14T20:00:00Z")
}

func TestReservationConfirmedPublishFailure(t *testing.T) {
	c := qt.New(t)
	pub := &fakePublisher{err: errors.New("connection refused")}
	clk := testclock.NewClock(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))
	res, branch := reservation()

	err := service.NewNotifier(pub, clk).ReservationConfirmed(context.Background(), res, branch)
	c.Assert(err, qt.ErrorMatches, `publishing 20261014-4F9A2C: connection refused`)
}
