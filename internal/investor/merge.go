package investor

// Merge combines two acquisition channels into one pool without duplicate
// identities. Records from first are considered before records from second.
// On collision the kept record is only replaced when it has no links and the
// incoming one does. The output follows first-appearance order of identities.
func Merge(first, second []Investor) []Investor {
	merged := make([]Investor, 0, len(first)+len(second))
	positions := make(map[string]int, len(first)+len(second))

	consider := func(inv Investor) {
		key := inv.Key()
		idx, seen := positions[key]
		if !seen {
			positions[key] = len(merged)
			merged = append(merged, inv)
			return
		}
		if !merged[idx].HasURLs() && inv.HasURLs() {
			merged[idx] = inv
		}
	}

	for _, inv := range first {
		consider(inv)
	}
	for _, inv := range second {
		consider(inv)
	}

	return merged
}
