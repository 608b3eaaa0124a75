package badge

import (
	"fmt"
	"sort"
)

// Tier is a score classification. Thresholds are closed on the lower bound:
// a score exactly equal to MinScore takes the tier.
type Tier struct {
	Name     string
	MinScore float64
}

// TierTable is an ordered threshold table, highest MinScore first. The last
// entry is the floor tier and should carry the lowest threshold so every
// score maps to something; TierForScore falls back to it regardless.
type TierTable []Tier

// DefaultTiers matches the score scale of the standard quiz documents
// (4 marks per correct answer).
func DefaultTiers() TierTable {
	return TierTable{
		{Name: "Gold", MinScore: 90},
		{Name: "Silver", MinScore: 60},
		{Name: "Bronze", MinScore: 30},
		{Name: "Participant", MinScore: 0},
	}
}

// Validate enforces strictly descending thresholds so exactly one tier
// matches any score, with no gap and no overlap.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	for i := 1; i < len(t); i++ {
		if t[i].MinScore >= t[i-1].MinScore {
			return fmt.Errorf("tier thresholds must be strictly descending: %q (%v) then %q (%v)",
				t[i-1].Name, t[i-1].MinScore, t[i].Name, t[i].MinScore)
		}
	}
	for _, tier := range t {
		if tier.Name == "" {
			return fmt.Errorf("tier with threshold %v has no name", tier.MinScore)
		}
	}
	return nil
}

// TierForScore maps a score to its tier: first threshold met wins, and the
// last tier is the default for anything below the floor (negative totals
// included). Total over all real scores.
func (t TierTable) TierForScore(score float64) Tier {
	for _, tier := range t {
		if score >= tier.MinScore {
			return tier
		}
	}
	return t[len(t)-1]
}

// Milestone is a streak threshold that can be claimed once into the ledger.
type Milestone struct {
	ID     string `json:"id"`
	Streak int    `json:"streak"`
	Icon   string `json:"icon"`
	Title  string `json:"title"`
}

// Catalog is the fixed milestone set, ascending by streak.
type Catalog []Milestone

// DefaultCatalog returns the standard milestone set.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "BEGINNER", Streak: 5, Icon: "🌱", Title: "Quiz Novice"},
		{ID: "INTERMEDIATE", Streak: 10, Icon: "⭐", Title: "Quiz Star"},
		{ID: "ADVANCED", Streak: 25, Icon: "🏆", Title: "Quiz Champion"},
		{ID: "EXPERT", Streak: 50, Icon: "👑", Title: "Quiz Master"},
		{ID: "LEGEND", Streak: 100, Icon: "🔥", Title: "Quiz Legend"},
	}
}

// ByID returns the milestone with the given ID.
func (c Catalog) ByID(id string) (Milestone, bool) {
	for _, m := range c {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// MilestoneForStreak surfaces at most one newly qualified milestone: the
// lowest unclaimed threshold the streak meets. When a streak jumps across
// several thresholds in one update, callers re-evaluate after each claim to
// surface the next one — a single call never skips a milestone.
func (c Catalog) MilestoneForStreak(streak int, claimed func(id string) bool) (Milestone, bool) {
	ordered := make(Catalog, len(c))
	copy(ordered, c)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Streak < ordered[j].Streak })

	for _, m := range ordered {
		if streak >= m.Streak && !claimed(m.ID) {
			return m, true
		}
	}
	return Milestone{}, false
}
