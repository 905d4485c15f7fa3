package allocation

import (
	"fmt"
	"sort"
	"time"
)

// HourRange is a half-open range of local hours of day, [Start, End).
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether hour lies inside the range.
func (h HourRange) Contains(hour int) bool { return hour >= h.Start && hour < h.End }

func (h HourRange) String() string { return fmt.Sprintf("%02d-%02d", h.Start, h.End) }

// Policy carries every numeric knob of the allocation engine.  It is
// passed in at construction so each branch (or test) can run with its own
// values; nothing in this package reads global settings.
type Policy struct {
	// SlotStep is the granularity of generated start times.
	SlotStep time.Duration
	// SlotBuffer is added to "now" before rounding when listing today's
	// slots.
	SlotBuffer time.Duration

	// PeakWindows are the configured rush hours.  They must be disjoint.
	PeakWindows []HourRange
	// WeekendIsPeak treats all of Saturday and Sunday as peak for
	// duration purposes, independent of PeakWindows.
	WeekendIsPeak bool

	// BigTableCapacity is the capacity from which a table is protected
	// from small parties.
	BigTableCapacity int
	// WasteMax is the largest number of empty seats a protected table may
	// be booked with.
	WasteMax int
	// ProtectionRelease is how long before the slot the protection of big
	// tables lifts.  With zero, protection lasts until the slot starts.
	ProtectionRelease time.Duration

	// PeakHold and LowHold are how long a table is held for a guest,
	// reported back with conflicts.
	PeakHold time.Duration
	LowHold  time.Duration

	// BaseLead and PeakLead are the minimum notice required for a booking
	// outside and inside peak windows.
	BaseLead time.Duration
	PeakLead time.Duration

	// Duration tiers by party size: up to SmallPartyMax guests use
	// DurationSmall, from LargePartyMin guests DurationLarge, anything in
	// between DurationMedium.
	SmallPartyMax  int
	LargePartyMin  int
	DurationSmall  time.Duration
	DurationMedium time.Duration
	DurationLarge  time.Duration
	// PeakSurcharge is added at peak times for parties of at least
	// SurchargeMinParty guests.
	PeakSurcharge     time.Duration
	SurchargeMinParty int

	// HoldExpiry is how old a HOLD may get before the sweeper cancels it.
	HoldExpiry time.Duration
	// PendingTolerance is how long past its start a PEND reservation may
	// stay unconfirmed.
	PendingTolerance time.Duration

	// SameDayOnly restricts customer bookings to the branch's current
	// local day.
	SameDayOnly bool
	// FallbackZone is used when a branch carries an unknown time zone.
	FallbackZone string
}

// DefaultPolicy returns the policy the service ships with.
func DefaultPolicy() Policy {
	return Policy{
		SlotStep:          15 * time.Minute,
		SlotBuffer:        10 * time.Minute,
		PeakWindows:       []HourRange{{Start: 13, End: 16}, {Start: 19, End: 22}},
		WeekendIsPeak:     true,
		BigTableCapacity:  8,
		WasteMax:          3,
		ProtectionRelease: 0,
		PeakHold:          80 * time.Minute,
		LowHold:           70 * time.Minute,
		BaseLead:          0,
		PeakLead:          15 * time.Minute,
		SmallPartyMax:     4,
		LargePartyMin:     8,
		DurationSmall:     70 * time.Minute,
		DurationMedium:    90 * time.Minute,
		DurationLarge:     120 * time.Minute,
		PeakSurcharge:     15 * time.Minute,
		SurchargeMinParty: 5,
		HoldExpiry:        10 * time.Minute,
		PendingTolerance:  6 * time.Minute,
		SameDayOnly:       true,
		FallbackZone:      "UTC",
	}
}

// Validate checks the policy for values the engine cannot work with.
func (p Policy) Validate() error {
	if p.SlotStep < time.Minute {
		return fmt.Errorf("slot step must be at least one minute, got %s", p.SlotStep)
	}
	if p.SlotStep%time.Minute != 0 {
		return fmt.Errorf("slot step must be a whole number of minutes, got %s", p.SlotStep)
	}
	if p.DurationSmall <= 0 || p.DurationMedium <= 0 || p.DurationLarge <= 0 {
		return fmt.Errorf("booking durations must be positive")
	}
	if p.SmallPartyMax < 1 || p.LargePartyMin <= p.SmallPartyMax {
		return fmt.Errorf("party tiers out of order: small<=%d large>=%d", p.SmallPartyMax, p.LargePartyMin)
	}
	windows := append([]HourRange(nil), p.PeakWindows...)
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
	for i, w := range windows {
		if w.Start < 0 || w.End > 24 || w.Start >= w.End {
			return fmt.Errorf("invalid peak window %s", w)
		}
		if i > 0 && windows[i-1].End > w.Start {
			return fmt.Errorf("peak windows %s and %s overlap", windows[i-1], w)
		}
	}
	return nil
}
