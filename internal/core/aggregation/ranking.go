package aggregation

import "sort"

// tally counts occurrences per name and keeps an optional decimal sum.
type tally struct {
	count int
	sum   mean
}

// rankKeys orders names by count descending, then name ascending, and keeps the first n.
func rankKeys(counts map[string]*tally, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := counts[keys[i]].count, counts[keys[j]].count
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func bump(counts map[string]*tally, key string) *tally {
	t, ok := counts[key]
	if !ok {
		t = &tally{}
		counts[key] = t
	}
	t.count++
	return t
}
