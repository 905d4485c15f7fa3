package model

import "time"

// ManualBlock is a staff-created window during which a table, or the whole
// branch when TableID is nil, cannot be booked.  Blocks carry no customer
// data and have no lifecycle; staff create and delete them directly.
type ManualBlock struct {
	ID        uint64    `json:"id"`                 // table_blocks.id
	BranchID  uint64    `json:"branch_id"`          // table_blocks.branch_id
	TableID   *uint64   `json:"table_id,omitempty"` // table_blocks.table_id (nullable: branch-wide)
	StartUTC  time.Time `json:"start_utc"`          // table_blocks.start_utc
	EndUTC    time.Time `json:"end_utc"`            // table_blocks.end_utc
	Reason    string    `json:"reason,omitempty"`   // table_blocks.reason
	CreatedAt time.Time `json:"created_at"`         // table_blocks.created_at
}

// BranchWide reports whether the block covers every table of the branch.
func (b ManualBlock) BranchWide() bool { return b.TableID == nil }
