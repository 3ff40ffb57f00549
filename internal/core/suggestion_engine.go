package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// LedgerHistory is the read side the suggestion engine consults. It returns
// confirmed entries of the given direction from the recent window, newest
// first, already categorized, capped by the store. Staleness within the
// store's consistency window is acceptable; suggestions are advisory.
type LedgerHistory interface {
	RecentCategorized(ctx context.Context, orgID uuid.UUID, direction LedgerDirection) ([]CategorizedEntry, error)
}

// CategorizedEntry is one historical ledger entry joined with its category,
// as returned by LedgerHistory.
type CategorizedEntry struct {
	Description string
	Category    Category
}

// SuggestionConfig carries the empirically chosen scoring constants. The
// noise floor and acceptance threshold have no documented derivation in the
// product; they are kept configurable rather than frozen as constants.
type SuggestionConfig struct {
	HistoryDays   int `json:"history_days"`   // lookback window fetched by the store
	HistoryLimit  int `json:"history_limit"`  // row cap on the fetch
	NoiseFloor    int `json:"noise_floor"`    // per-entry scores below this are dropped
	AcceptMinAvg  int `json:"accept_min_avg"` // winning category's average must reach this
	ExampleMin    int `json:"example_min"`    // entries scoring at least this become examples
	MaxExamples   int `json:"max_examples"`
	HitMultiplier int `json:"hit_multiplier"` // frequency amplification cap
}

func DefaultSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{
		HistoryDays:   180,
		HistoryLimit:  200,
		NoiseFloor:    30,
		AcceptMinAvg:  40,
		ExampleMin:    50,
		MaxExamples:   3,
		HitMultiplier: 5,
	}
}

// Suggestion is one ranked category proposal for a movement description.
// Confidence is 0-100; Examples explain which history drove the pick.
type Suggestion struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Direction    LedgerDirection `json:"direction"`
	Confidence   int             `json:"confidence"`
	Reason       string          `json:"reason"`
	Examples     []string        `json:"examples,omitempty"`
}

// SuggestionEngine proposes at most one category for a new movement
// description by fuzzy-scoring it against recent confirmed ledger history.
// It never consults the pattern store (a separate, coarser mechanism) and
// has no side effects.
type SuggestionEngine struct {
	history LedgerHistory
	cfg     SuggestionConfig
}

func NewSuggestionEngine(history LedgerHistory, cfg SuggestionConfig) *SuggestionEngine {
	return &SuggestionEngine{history: history, cfg: cfg}
}

type categoryScore struct {
	category        Category
	totalSimilarity int
	hits            int
	examples        []string
}

func (s categoryScore) average() float64 {
	return float64(s.totalSimilarity) / float64(s.hits)
}

// Suggest returns the best category proposal for the description, or nil
// when no confident match exists. A nil suggestion is not an error: too-short
// descriptions, empty history and low-scoring candidates all land there.
// Store failures propagate as DataAccessError without any fallback answer.
func (e *SuggestionEngine) Suggest(ctx context.Context, orgID uuid.UUID, description string, direction LedgerDirection) (*Suggestion, error) {
	if len([]rune(description)) < minTokenLen {
		return nil, nil
	}
	keywords := ExtractKeywords(description)
	if len(keywords) == 0 {
		return nil, nil
	}

	entries, err := e.history.RecentCategorized(ctx, orgID, direction)
	if err != nil {
		return nil, &DataAccessError{Op: "fetch ledger history", Err: err}
	}

	scores := make(map[uuid.UUID]*categoryScore)
	for _, entry := range entries {
		score := Similarity(keywords, ExtractKeywords(entry.Description))
		if score < e.cfg.NoiseFloor {
			continue
		}
		agg, ok := scores[entry.Category.ID]
		if !ok {
			agg = &categoryScore{category: entry.Category}
			scores[entry.Category.ID] = agg
		}
		agg.totalSimilarity += score
		agg.hits++
		if score >= e.cfg.ExampleMin && len(agg.examples) < e.cfg.MaxExamples {
			agg.examples = append(agg.examples, entry.Description)
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}

	// weightedScore = average × min(hits, cap): frequency amplifies
	// confidence, but the cap keeps one repeated bulk import from
	// dominating every other candidate.
	candidates := make([]*categoryScore, 0, len(scores))
	for _, agg := range scores {
		candidates = append(candidates, agg)
	}
	sort.Slice(candidates, func(i, j int) bool {
		wi, wj := weighted(candidates[i], e.cfg.HitMultiplier), weighted(candidates[j], e.cfg.HitMultiplier)
		if wi != wj {
			return wi > wj
		}
		if candidates[i].hits != candidates[j].hits {
			return candidates[i].hits > candidates[j].hits
		}
		// deterministic order for equal scores
		return candidates[i].category.Name < candidates[j].category.Name
	})

	best := candidates[0]
	if best.average() < float64(e.cfg.AcceptMinAvg) {
		return nil, nil
	}

	confidence := int(math.Round(best.average())) + best.hits*e.cfg.HitMultiplier
	if confidence > 100 {
		confidence = 100
	}

	reason := fmt.Sprintf("%d lançamentos similares", best.hits)
	if best.hits == 1 {
		reason = "1 lançamento similar"
	}

	return &Suggestion{
		CategoryID:   best.category.ID,
		CategoryName: best.category.Name,
		Direction:    best.category.Direction,
		Confidence:   confidence,
		Reason:       reason,
		Examples:     best.examples,
	}, nil
}

func weighted(s *categoryScore, hitCap int) float64 {
	hits := s.hits
	if hits > hitCap {
		hits = hitCap
	}
	return s.average() * float64(hits)
}
