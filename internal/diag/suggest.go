package diag

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance is the §4.7 "did-you-mean" threshold: candidates
// farther than this from the input are not suggested at all.
const maxSuggestDistance = 5

// DidYouMean finds the closest match to name among candidates using a
// weighted edit distance (cost 2 per distinct-letter substitution/
// insertion/deletion, cost 1 for a case-only difference), returning ""
// if nothing is within maxSuggestDistance. Ties are broken by picking
// the lexicographically first candidate so results are deterministic.
func DidYouMean(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, c := range candidates {
		d := weightedDistance(name, c)
		if d < bestDist || (d == bestDist && c < best) {
			bestDist = d
			best = c
		}
	}
	if bestDist > maxSuggestDistance {
		return ""
	}
	return best
}

// weightedDistance implements §4.7's two-tier cost model. When the
// strings differ only by case (and have equal byte length) it counts the
// differing runes, cost 1 each, without calling the library; otherwise it
// returns twice the agnivade/levenshtein edit distance, i.e. cost 2 per
// edit, rather than reimplementing Levenshtein by hand.
func weightedDistance(a, b string) int {
	if strings.EqualFold(a, b) && len(a) == len(b) {
		diff := 0
		ar, br := []rune(a), []rune(b)
		for i := range ar {
			if ar[i] != br[i] {
				diff++
			}
		}
		return diff
	}
	return 2 * levenshtein.ComputeDistance(a, b)
}

// RankSuggestions returns candidates within the suggestion threshold of
// name, nearest first, for completion items that want more than the
// single best match (e.g. an auto-fix menu with alternatives).
func RankSuggestions(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	var scoredList []scored
	for _, c := range candidates {
		d := weightedDistance(name, c)
		if d <= maxSuggestDistance {
			scoredList = append(scoredList, scored{c, d})
		}
	}
	sort.Slice(scoredList, func(i, j int) bool {
		if scoredList[i].dist != scoredList[j].dist {
			return scoredList[i].dist < scoredList[j].dist
		}
		return scoredList[i].name < scoredList[j].name
	})
	out := make([]string, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.name
	}
	return out
}
