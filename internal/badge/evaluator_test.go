package badge

import (
	"testing"
)

func TestTierForScoreBoundaries(t *testing.T) {
	tiers := DefaultTiers()

	cases := []struct {
		score float64
		want  string
	}{
		{120, "Gold"},
		{90, "Gold"}, // boundary is closed on the lower bound
		{89.99, "Silver"},
		{60, "Silver"},
		{59, "Bronze"},
		{30, "Bronze"},
		{29.5, "Participant"},
		{0, "Participant"},
		{-12, "Participant"}, // negative totals still map to a tier
	}

	for _, tc := range cases {
		if got := tiers.TierForScore(tc.score).Name; got != tc.want {
			t.Errorf("score %v: got %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestTierTableIsTotal(t *testing.T) {
	tiers := TierTable{
		{Name: "High", MinScore: 50},
		{Name: "Low", MinScore: 10},
	}
	if err := tiers.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Even below the lowest threshold a defined tier comes back.
	if got := tiers.TierForScore(-1000).Name; got != "Low" {
		t.Fatalf("expected floor tier Low, got %s", got)
	}
}

func TestTierTableValidateRejectsUnordered(t *testing.T) {
	bad := TierTable{
		{Name: "Silver", MinScore: 60},
		{Name: "Gold", MinScore: 90},
	}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation failure for ascending thresholds")
	}

	dup := TierTable{
		{Name: "A", MinScore: 60},
		{Name: "B", MinScore: 60},
	}
	if err := dup.Validate(); err == nil {
		t.Fatalf("expected validation failure for duplicate thresholds")
	}

	if err := (TierTable{}).Validate(); err == nil {
		t.Fatalf("expected validation failure for empty table")
	}
}

func TestMilestoneForStreakSurfacesLowestUnclaimed(t *testing.T) {
	catalog := DefaultCatalog()
	claimed := map[string]bool{}
	isClaimed := func(id string) bool { return claimed[id] }

	// Streak jumps 4 -> 23 in one update, crossing the 5 and 10 thresholds.
	m, ok := catalog.MilestoneForStreak(23, isClaimed)
	if !ok || m.Streak != 5 {
		t.Fatalf("expected the 5-streak milestone first, got %+v ok=%v", m, ok)
	}

	// After claiming, the same streak surfaces the next threshold.
	claimed[m.ID] = true
	m, ok = catalog.MilestoneForStreak(23, isClaimed)
	if !ok || m.Streak != 10 {
		t.Fatalf("expected the 10-streak milestone next, got %+v ok=%v", m, ok)
	}

	// 25 is not yet reached, so nothing more surfaces.
	claimed[m.ID] = true
	if m, ok = catalog.MilestoneForStreak(23, isClaimed); ok {
		t.Fatalf("expected no milestone below streak 25, got %+v", m)
	}
}

func TestMilestoneForStreakBelowAllThresholds(t *testing.T) {
	catalog := DefaultCatalog()
	if m, ok := catalog.MilestoneForStreak(4, func(string) bool { return false }); ok {
		t.Fatalf("streak 4 qualifies for nothing, got %+v", m)
	}
}

func TestMilestoneForStreakExactThreshold(t *testing.T) {
	catalog := DefaultCatalog()
	m, ok := catalog.MilestoneForStreak(5, func(string) bool { return false })
	if !ok || m.ID != "BEGINNER" {
		t.Fatalf("streak 5 should qualify for BEGINNER, got %+v ok=%v", m, ok)
	}
}

func TestCatalogByID(t *testing.T) {
	catalog := DefaultCatalog()
	if _, ok := catalog.ByID("missing"); ok {
		t.Fatalf("expected miss for unknown id")
	}
	m, ok := catalog.ByID("LEGEND")
	if !ok || m.Streak != 100 {
		t.Fatalf("expected LEGEND at 100, got %+v", m)
	}
}
