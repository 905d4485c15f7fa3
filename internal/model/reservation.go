package model

import "time"

// ServiceDateLayout is the layout of a local service date (YYYY-MM-DD).
const ServiceDateLayout = "2006-01-02"

// Reservation records a customer's claim on a table for a time window.
// Timing is stored once, in UTC, together with the branch time zone; the
// local start and service date are derived on read so the two can never
// drift apart.
//
// Fields:
//  ID           – primary key identifier.
//  Folio        – globally unique, human-readable booking code.
//  BranchID     – branch of the reservation; always the table's branch.
//  TableID      – assigned table (nil until assigned).
//  CustomerID   – customer who booked (nil for staff walk-ins).
//  PartySize    – number of guests; never above the table capacity.
//  StartUTC     – canonical start instant.
//  EndUTC       – StartUTC plus the booking duration.
//  TimeZone     – IANA zone of the branch when the booking was made.
//  Status       – lifecycle state (HOLD, PEND, CONF, CANC, NOSH).
//  StaffCreated – true when staff entered the booking.
//  Contact      – customer contact details frozen at creation time.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Reservation struct {
	ID           uint64    `json:"id"`                    // reservations.id
	Folio        string    `json:"folio"`                 // reservations.folio
	BranchID     uint64    `json:"branch_id"`             // reservations.branch_id
	TableID      *uint64   `json:"table_id,omitempty"`    // reservations.table_id (nullable)
	CustomerID   *uint64   `json:"customer_id,omitempty"` // reservations.customer_id (nullable)
	PartySize    int       `json:"party_size"`            // reservations.party_size
	StartUTC     time.Time `json:"start_utc"`             // reservations.start_utc
	EndUTC       time.Time `json:"end_utc"`               // reservations.end_utc
	TimeZone     string    `json:"time_zone"`             // reservations.time_zone
	Status       Status    `json:"status"`                // reservations.status
	StaffCreated bool      `json:"staff_created"`         // reservations.staff_created
	Contact      Contact   `json:"contact"`               // reservations.contact_name/email/phone
	CreatedAt    time.Time `json:"created_at"`            // reservations.created_at
	UpdatedAt    time.Time `json:"updated_at"`            // reservations.updated_at
}

// LocalStart returns the start instant viewed in loc.
func (r Reservation) LocalStart(loc *time.Location) time.Time { return r.StartUTC.In(loc) }

// LocalEnd returns the end instant viewed in loc.
func (r Reservation) LocalEnd(loc *time.Location) time.Time { return r.EndUTC.In(loc) }

// ServiceDate returns the local calendar date of the start, formatted with
// ServiceDateLayout.
func (r Reservation) ServiceDate(loc *time.Location) string {
	return r.StartUTC.In(loc).Format(ServiceDateLayout)
}

// Duration returns the length of the booking window.
func (r Reservation) Duration() time.Duration { return r.EndUTC.Sub(r.StartUTC) }

// OnTable reports whether the reservation is assigned to tableID.
func (r Reservation) OnTable(tableID uint64) bool {
	return r.TableID != nil && *r.TableID == tableID
}
