package query

import "sort"

// bound trims nodes down to max total, dropping the lowest-priority
// branches first (§4.9: "synonyms < split < concat < typo2 < typo1 <
// exact"). A node that is the sole coverage for its (Start, End) range
// is never dropped, so a position always keeps at least one reading
// regardless of how aggressively max is set.
func bound(nodes []Node, max int) []Node {
	if max <= 0 || len(nodes) <= max {
		return nodes
	}

	soleCoverage := map[[2]int]int{}
	for _, n := range nodes {
		soleCoverage[[2]int{n.Start, n.End}]++
	}

	ordered := append([]Node(nil), nodes...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].priority() < ordered[j].priority() })

	keep := make(map[int]bool, len(ordered))
	for i := range ordered {
		keep[i] = true
	}

	drop := len(ordered) - max
	for i := 0; i < len(ordered) && drop > 0; i++ {
		n := ordered[i]
		key := [2]int{n.Start, n.End}
		if soleCoverage[key] <= 1 {
			continue
		}
		keep[i] = false
		soleCoverage[key]--
		drop--
	}

	out := make([]Node, 0, max)
	for i, n := range ordered {
		if keep[i] {
			out = append(out, n)
		}
	}
	return out
}
