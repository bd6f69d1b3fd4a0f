package stats

// OtherLabel names the synthetic bucket produced by CollapseTail.
const OtherLabel = "Other"

// CollapseTail applies the pie-chart presentation rule to an
// already-descending breakdown: the top max entries are kept individually
// and everything after them is folded into a single "Other" entry holding
// the sum of the excluded magnitudes and counts. The input is returned
// unchanged when it fits within max or when max is not positive.
func CollapseTail(items []CategoryTotal, max int) []CategoryTotal {
	if max <= 0 || len(items) <= max {
		return items
	}

	out := make([]CategoryTotal, max, max+1)
	copy(out, items[:max])

	other := CategoryTotal{Label: OtherLabel}
	for _, it := range items[max:] {
		other.Total += it.Total
		other.Count += it.Count
	}
	return append(out, other)
}
