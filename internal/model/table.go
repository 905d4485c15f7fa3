package model

// Table is a seating unit owned by exactly one branch.  Number is unique
// within the branch and is what staff and guests refer to.
//
// Fields:
//  ID       – primary key identifier.
//  BranchID – owning branch.
//  Number   – table number, unique per branch.
//  Capacity – number of seats (always positive).
//  Blocked  – when true the table is out of service and never assigned.
type Table struct {
	ID       uint64 `json:"id"`        // dining_tables.id
	BranchID uint64 `json:"branch_id"` // dining_tables.branch_id
	Number   int    `json:"number"`    // dining_tables.number
	Capacity int    `json:"capacity"`  // dining_tables.capacity
	Blocked  bool   `json:"blocked"`   // dining_tables.blocked
}

// Waste is the number of seats left empty when a party of the given size
// sits at the table.
func (t Table) Waste(partySize int) int { return t.Capacity - partySize }
