package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/iliyamo/table-reservation/internal/allocation"
)

// LoadPolicy builds the allocation policy from environment variables on
// top of allocation.DefaultPolicy.  Unparsable values keep their default;
// a policy that fails validation as a whole is replaced by the defaults.
func LoadPolicy() allocation.Policy {
	def := allocation.DefaultPolicy()
	p := allocation.Policy{
		SlotStep:          envDur("SLOT_STEP", def.SlotStep),
		SlotBuffer:        envDur("SLOT_BUFFER", def.SlotBuffer),
		PeakWindows:       envHourRanges("PEAK_WINDOWS", def.PeakWindows),
		WeekendIsPeak:     envBool("WEEKEND_IS_PEAK", def.WeekendIsPeak),
		BigTableCapacity:  envInt("BIG_TABLE_CAPACITY", def.BigTableCapacity),
		WasteMax:          envInt("WASTE_MAX", def.WasteMax),
		ProtectionRelease: envDur("PROTECTION_RELEASE", def.ProtectionRelease),
		PeakHold:          envDur("PEAK_HOLD", def.PeakHold),
		LowHold:           envDur("LOW_HOLD", def.LowHold),
		BaseLead:          envDur("LEAD_BASE", def.BaseLead),
		PeakLead:          envDur("LEAD_PEAK", def.PeakLead),
		SmallPartyMax:     envInt("SMALL_PARTY_MAX", def.SmallPartyMax),
		LargePartyMin:     envInt("LARGE_PARTY_MIN", def.LargePartyMin),
		DurationSmall:     envDur("DURATION_SMALL", def.DurationSmall),
		DurationMedium:    envDur("DURATION_MEDIUM", def.DurationMedium),
		DurationLarge:     envDur("DURATION_LARGE", def.DurationLarge),
		PeakSurcharge:     envDur("PEAK_SURCHARGE", def.PeakSurcharge),
		SurchargeMinParty: envInt("SURCHARGE_MIN_PARTY", def.SurchargeMinParty),
		HoldExpiry:        envDur("HOLD_EXPIRY", def.HoldExpiry),
		PendingTolerance:  envDur("PENDING_TOLERANCE", def.PendingTolerance),
		SameDayOnly:       envBool("SAME_DAY_ONLY", def.SameDayOnly),
		FallbackZone:      envStr("FALLBACK_TZ", def.FallbackZone),
	}
	if err := p.Validate(); err != nil {
		log.Printf("config: invalid allocation policy, using defaults: %v", err)
		return def
	}
	return p
}

// ParseHourRanges parses a list like "13-16,19-22" into hour ranges.
// Each item is START-END with 0 <= START < END <= 24.
func ParseHourRanges(s string) ([]allocation.HourRange, bool) {
	var out []allocation.HourRange
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		from, to, ok := strings.Cut(item, "-")
		if !ok {
			return nil, false
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(from))
		end, err2 := strconv.Atoi(strings.TrimSpace(to))
		if err1 != nil || err2 != nil || start < 0 || end > 24 || start >= end {
			return nil, false
		}
		out = append(out, allocation.HourRange{Start: start, End: end})
	}
	return out, true
}

func envHourRanges(k string, d []allocation.HourRange) []allocation.HourRange {
	v := envStr(k, "")
	if v == "" {
		return d
	}
	if strings.EqualFold(v, "none") {
		return nil
	}
	r, ok := ParseHourRanges(v)
	if !ok {
		log.Printf("config: invalid %s %q, using default", k, v)
		return d
	}
	return r
}
