package core

import (
	"math"
	"strings"
)

// Similarity scores the keyword overlap between a candidate list and a
// historical list as an integer percentage in [0,100].
//
// A token counts as matched when some historical token contains it or is
// contained by it; the substring test tolerates conjugations and
// abbreviations where exact equality would not. The scan is deliberately
// driven from the candidate's perspective: a new description is scored
// against history, not the other way around.
func Similarity(candidate, historical []string) int {
	if len(candidate) == 0 || len(historical) == 0 {
		return 0
	}
	matches := 0
	for _, tok := range candidate {
		for _, hist := range historical {
			if strings.Contains(hist, tok) || strings.Contains(tok, hist) {
				matches++
				break
			}
		}
	}
	longest := len(candidate)
	if len(historical) > longest {
		longest = len(historical)
	}
	return int(math.Round(float64(matches) / float64(longest) * 100))
}
