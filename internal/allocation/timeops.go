// Package allocation decides which tables and start times are free at a
// branch: time-zone arithmetic, overlap detection, slot generation and
// table assignment.  It reads through store.Reader and never writes,
// except for Allocator.Move which commits inside the caller's transaction.
package allocation

import (
	"sync"
	"time"

	"github.com/juju/loggo"

	"github.com/iliyamo/table-reservation/internal/model"
)

var logger = loggo.GetLogger("tables.allocation")

// TimeOps holds every time-zone sensitive rule so the rest of the engine
// can reason in branch-local time.
type TimeOps struct {
	policy   Policy
	fallback *time.Location

	mu    sync.Mutex
	zones map[string]*time.Location
}

// NewTimeOps returns a TimeOps applying policy.  An unloadable
// FallbackZone degrades to UTC.
func NewTimeOps(policy Policy) *TimeOps {
	fallback := time.UTC
	if policy.FallbackZone != "" {
		if loc, err := time.LoadLocation(policy.FallbackZone); err == nil {
			fallback = loc
		} else {
			logger.Errorf("fallback zone %q unusable, using UTC: %v", policy.FallbackZone, err)
		}
	}
	return &TimeOps{policy: policy, fallback: fallback, zones: make(map[string]*time.Location)}
}

// Policy returns the policy the engine was built with.
func (o *TimeOps) Policy() Policy { return o.policy }

// Location loads the branch's zone.  It fails with *TimezoneError when the
// name cannot be resolved.
func (o *TimeOps) Location(b model.Branch) (*time.Location, error) {
	loc, err := o.load(b.TimeZone)
	if err != nil {
		return nil, &TimezoneError{BranchID: b.ID, Zone: b.TimeZone, Err: err}
	}
	return loc, nil
}

func (o *TimeOps) load(name string) (*time.Location, error) {
	if name == "" {
		return nil, errEmptyZone
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if loc, ok := o.zones[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	o.zones[name] = loc
	return loc, nil
}

// Zone returns the location named by a stored zone identifier, or the
// fallback zone when it cannot be loaded.
func (o *TimeOps) Zone(name string) *time.Location {
	loc, err := o.load(name)
	if err != nil {
		logger.Warningf("zone %q unusable, falling back to %s: %v", name, o.fallback, err)
		return o.fallback
	}
	return loc
}

// LocationOrFallback is Location for callers that must not fail the
// request: a bad zone is logged and the fallback zone is used instead.
func (o *TimeOps) LocationOrFallback(b model.Branch) *time.Location {
	loc, err := o.Location(b)
	if err != nil {
		logger.Warningf("%v; falling back to %s", err, o.fallback)
		return o.fallback
	}
	return loc
}

// ToLocal converts an instant to the branch's local time.
func (o *TimeOps) ToLocal(instant time.Time, b model.Branch) (time.Time, error) {
	loc, err := o.Location(b)
	if err != nil {
		return time.Time{}, err
	}
	return instant.In(loc), nil
}

// PeakWindows returns the configured peak ranges.
func (o *TimeOps) PeakWindows() []HourRange {
	return append([]HourRange(nil), o.policy.PeakWindows...)
}

func (o *TimeOps) inPeakWindow(local time.Time) bool {
	h := local.Hour()
	for _, w := range o.policy.PeakWindows {
		if w.Contains(h) {
			return true
		}
	}
	return false
}

// IsPeak reports whether local falls in a peak window or, when the policy
// says so, on a weekend.  The two rules apply independently.
func (o *TimeOps) IsPeak(local time.Time) bool {
	if o.inPeakWindow(local) {
		return true
	}
	if o.policy.WeekendIsPeak {
		switch local.Weekday() {
		case time.Saturday, time.Sunday:
			return true
		}
	}
	return false
}

// BookingDuration returns how long a party occupies a table when seated
// at local.
func (o *TimeOps) BookingDuration(local time.Time, partySize int) time.Duration {
	p := o.policy
	var d time.Duration
	switch {
	case partySize <= p.SmallPartyMax:
		d = p.DurationSmall
	case partySize >= p.LargePartyMin:
		d = p.DurationLarge
	default:
		d = p.DurationMedium
	}
	if partySize >= p.SurchargeMinParty && o.IsPeak(local) {
		d += p.PeakSurcharge
	}
	return d
}

// HoldMinutes returns how long a table is held for a booking at local.
// Only the peak windows count here; weekends do not.
func (o *TimeOps) HoldMinutes(local time.Time) int {
	if o.inPeakWindow(local) {
		return int(o.policy.PeakHold / time.Minute)
	}
	return int(o.policy.LowHold / time.Minute)
}

// CeilToStep rounds t up to the next multiple of step on the local wall
// clock, counted from local midnight, with seconds cleared.  Steps shorter
// than a minute leave t unchanged.  The result is never before t, even in
// the repeated hour of a DST fall-back.
func CeilToStep(t time.Time, step time.Duration) time.Time {
	stepMin := int(step / time.Minute)
	if stepMin < 1 {
		return t
	}
	mins := t.Hour()*60 + t.Minute()
	if t.Second() > 0 || t.Nanosecond() > 0 {
		mins++
	}
	mins = (mins + stepMin - 1) / stepMin * stepMin
	y, m, d := t.Date()
	out := time.Date(y, m, d, 0, mins, 0, 0, t.Location())
	// time.Date picks the first of two repeated wall times.
	for out.Before(t) {
		out = out.Add(step)
	}
	return out
}

// sameDate reports whether a and b fall on the same calendar date in their
// own locations.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
