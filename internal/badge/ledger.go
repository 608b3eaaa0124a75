package badge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"quizmaster/internal/domain"
)

// Storage keys, shared with earlier clients of the same quiz API.
const (
	earnedBadgesKey = "earnedBadges"
	badgeHistoryKey = "badgeHistory"
)

// KVStore abstracts the string-keyed persistence behind the ledger
// (in-memory, Redis, etc).
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ClaimRecord is one immutable entry in the badge history.
type ClaimRecord struct {
	MilestoneID string    `json:"type"`
	Streak      int       `json:"streak"`
	ClaimedAt   time.Time `json:"date"`
	Title       string    `json:"title"`
}

// Ledger accumulates claimed milestones across quiz attempts. It outlives
// any single session: Retake never touches it. Claims persist synchronously
// so a crash after a claim cannot lose the badge.
type Ledger struct {
	store KVStore
	now   func() time.Time

	mu      sync.RWMutex
	claimed map[string]struct{}
	history []ClaimRecord
}

// NewLedger creates an empty ledger over store. Call Load before use.
func NewLedger(store KVStore) *Ledger {
	return NewLedgerWithClock(store, time.Now)
}

// NewLedgerWithClock allows deterministic timestamps in tests.
func NewLedgerWithClock(store KVStore, now func() time.Time) *Ledger {
	return &Ledger{
		store:   store,
		now:     now,
		claimed: make(map[string]struct{}),
	}
}

// Load reads the persisted set and history once at startup. Missing keys
// mean a fresh ledger, not an error.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := l.store.Get(ctx, earnedBadgesKey)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrPersistence, earnedBadgesKey, err)
	}
	if ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return fmt.Errorf("%w: decode %s: %v", domain.ErrPersistence, earnedBadgesKey, err)
		}
		for _, id := range ids {
			l.claimed[id] = struct{}{}
		}
	}

	raw, ok, err = l.store.Get(ctx, badgeHistoryKey)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrPersistence, badgeHistoryKey, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &l.history); err != nil {
			return fmt.Errorf("%w: decode %s: %v", domain.ErrPersistence, badgeHistoryKey, err)
		}
	}
	return nil
}

// Claim records a milestone as earned at the given streak. Claiming an
// already claimed milestone is a no-op. The in-memory state always reflects
// the claim; if the synchronous write fails the error wraps ErrPersistence
// so the caller can retry with Flush.
func (l *Ledger) Claim(ctx context.Context, m Milestone, streakAtClaim int) error {
	l.mu.Lock()
	if _, ok := l.claimed[m.ID]; ok {
		l.mu.Unlock()
		return nil
	}
	l.claimed[m.ID] = struct{}{}
	l.history = append(l.history, ClaimRecord{
		MilestoneID: m.ID,
		Streak:      streakAtClaim,
		ClaimedAt:   l.now(),
		Title:       m.Title,
	})
	l.mu.Unlock()

	return l.Flush(ctx)
}

// Flush writes the current set and history to the backing store. Safe to
// call again after a failed Claim.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.RLock()
	ids := make([]string, 0, len(l.claimed))
	for id := range l.claimed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	historyJSON, err := json.Marshal(l.history)
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", domain.ErrPersistence, err)
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("%w: encode earned set: %v", domain.ErrPersistence, err)
	}

	if err := l.store.Set(ctx, earnedBadgesKey, string(idsJSON)); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrPersistence, earnedBadgesKey, err)
	}
	if err := l.store.Set(ctx, badgeHistoryKey, string(historyJSON)); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrPersistence, badgeHistoryKey, err)
	}
	return nil
}

// IsClaimed reports whether the milestone has been claimed.
func (l *Ledger) IsClaimed(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.claimed[id]
	return ok
}

// History returns a copy of the ordered claim history.
func (l *Ledger) History() []ClaimRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ClaimRecord, len(l.history))
	copy(out, l.history)
	return out
}
