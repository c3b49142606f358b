package zones

// Zone count bounds.
const (
	MinZones = 3
	MaxZones = 5
)

// Select greedily takes candidates in order, skipping any that touch a cell
// already taken or adjacent to a taken cell, until target zones are chosen.
// The result never contains two regions that share a cell or a Delaunay edge.
func Select(candidates []Region, target int, neighbors [][]int) []Region {
	used := make(map[int]bool)
	blocked := make(map[int]bool)
	var selected []Region

	for _, cand := range candidates {
		if len(selected) >= target {
			break
		}
		clash := false
		for _, c := range cand.Cells {
			if used[c] || blocked[c] {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		selected = append(selected, cand)
		for _, c := range cand.Cells {
			used[c] = true
			for _, n := range neighbors[c] {
				if !used[n] {
					blocked[n] = true
				}
			}
		}
	}
	return selected
}
