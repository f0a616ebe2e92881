package presence

import (
	"sort"
	"strconv"
	"strings"
)

// Canonicalize deduplicates and sorts the interest set, returning the
// canonical slice together with its comparable signature. Identity-equal
// sets always produce the same signature, so callers can cheaply detect
// whether a subscription actually changed.
func Canonicalize(ids []int64) ([]int64, string) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	parts := make([]string, len(unique))
	for i, id := range unique {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return unique, strings.Join(parts, ",")
}
