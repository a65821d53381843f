package op

import (
	"sort"
	"strings"
)

const maxSuggestions = 3

// Suggest returns up to three opcode names that are a small edit away from
// the given name, closest first. It returns nil for a known name.
func Suggest(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	if _, ok := byName[name]; ok {
		return nil
	}
	limit := 3
	switch {
	case len(name) <= 3:
		limit = 1
	case len(name) <= 5:
		limit = 2
	}

	type candidate struct {
		name     string
		distance int
	}
	var found []candidate
	for _, code := range order {
		known := infos[code].Name
		if d := editDistance(name, known); d <= limit {
			found = append(found, candidate{known, d})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].name < found[j].name
	})
	if len(found) > maxSuggestions {
		found = found[:maxSuggestions]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.name
	}
	return out
}

// editDistance is the Levenshtein distance between two ASCII strings,
// computed with two rolling rows.
func editDistance(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
