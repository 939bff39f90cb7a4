package analytics

// EntrySeries maps hour -> estimated new entries within that hour
type EntrySeries map[int]int

// ReconstructEntries converts a day's cumulative occupancy readings into
// per-hour entry estimates. The first available hour uses the raw reading
// (there is no earlier reading in the day to subtract); every later hour is
// the difference from the previous present hour, clamped at zero so a
// counter reset never produces negative entries.
//
// Callers must filter incomplete days first; reconstruction assumes the
// profile already passed the completeness check.
func ReconstructEntries(p *DayProfile) EntrySeries {
	entries := make(EntrySeries, len(p.Hours))

	sorted := p.SortedHours()
	for i, hour := range sorted {
		if i == 0 {
			entries[hour] = p.Hours[hour]
			continue
		}

		delta := p.Hours[hour] - p.Hours[sorted[i-1]]
		if delta < 0 {
			delta = 0
		}
		entries[hour] = delta
	}

	return entries
}
