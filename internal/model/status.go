package model

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusHold      Status = "HOLD" // short-lived, waiting for the guest to finish booking
	StatusPending   Status = "PEND" // booked, not yet confirmed
	StatusConfirmed Status = "CONF"
	StatusCancelled Status = "CANC"
	StatusNoShow    Status = "NOSH"
)

// transitions lists the states each status may move to.  CANC and NOSH are
// terminal.
var transitions = map[Status][]Status{
	StatusHold:      {StatusConfirmed, StatusCancelled},
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusNoShow},
}

// CanTransition reports whether a reservation in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Active reports whether the status occupies its table.  Only PEND and CONF
// reservations take part in overlap checks; a HOLD has to be confirmed
// before it claims the slot.
func (s Status) Active() bool { return s == StatusPending || s == StatusConfirmed }

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s == StatusCancelled || s == StatusNoShow }

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusHold, StatusPending, StatusConfirmed, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
