// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedQueue is the durable queue confirmation events are
// routed to.
const ReservationConfirmedQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published when a reservation is confirmed.
// It carries enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.  Times are
// RFC 3339 in the branch's local zone.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	Folio         string `json:"folio"`
	CustomerID    uint64 `json:"customer_id,omitempty"`
	BranchID      uint64 `json:"branch_id"`
	BranchName    string `json:"branch_name"`
	TableID       uint64 `json:"table_id"`
	PartySize     int    `json:"party_size"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	TimeZone      string `json:"time_zone"`
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	ConfirmedAt   string `json:"confirmed_at"`
}
