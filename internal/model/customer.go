package model

import "time"

// Customer represents a guest account as stored in the `customers` table.
// Reservations copy the contact fields at creation time, so later edits to
// a customer never rewrite booking history.
type Customer struct {
	ID        uint64    // customers.id
	Name      string    // customers.name
	Email     string    // customers.email
	Phone     string    // customers.phone
	CreatedAt time.Time // customers.created_at
}

// Contact is the snapshot of a customer's details stored on a reservation.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Snapshot returns the contact details to freeze onto a reservation.
func (c Customer) Snapshot() Contact {
	return Contact{Name: c.Name, Email: c.Email, Phone: c.Phone}
}
