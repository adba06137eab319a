package giveaway

import "math/rand/v2"

// Pick draws min(count, len(pool)) distinct ids uniformly without replacement.
// The caller's slice is never reordered.
func Pick(pool []string, count int) []string {
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return []string{}
	}

	candidates := append([]string(nil), pool...)
	for i := 0; i < count; i++ {
		j := i + rand.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:count:count]
}
