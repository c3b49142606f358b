package zones

import "github.com/talgya/topowall/internal/entropy"

// DefaultLabels is the zone name pool used when the caller supplies none.
var DefaultLabels = []string{
	"IRONFORD SECTOR", "ASH HOLLOW", "STONEGATE", "BLACK MARSH",
	"SILVER CREST", "FROSTREACH", "THORNWATCH", "DEEPWELL BASIN",
	"HIGHMOOR", "COPPER RIDGE", "FAR VALE", "OLDHELM",
	"STORMPOINT", "BROADFIELD", "PINE DALE", "RIVERKEEP",
	"GOLDBROOK", "DARKCLIFF", "LONG REACH", "ELMSTEAD",
	"REDFALL", "WHITEHAVEN", "LOW CROSSING", "BRIGHTWICK",
}

// shuffleLabels copies pool and partially shuffles its first min(n, len) slots,
// drawing one value per slot.
func shuffleLabels(pool []string, n int, rng *entropy.Stream) []string {
	out := append([]string(nil), pool...)
	for i := 0; i < n && i < len(out); i++ {
		j := i + rng.Intn(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// highlights draws min(IntRange(1,2), n) distinct zone indices.
func highlights(n int, rng *entropy.Stream) map[int]bool {
	count := rng.IntRange(1, 2)
	if count > n {
		count = n
	}
	picked := make(map[int]bool, count)
	for len(picked) < count {
		picked[rng.Intn(n)] = true
	}
	return picked
}
