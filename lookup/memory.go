package lookup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/fraudguard/errors"
)

// MemoryHistory is a thread-safe in-memory HistoryStore.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries map[string][]HistoryEntry
}

// NewMemoryHistory creates an empty history store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{entries: make(map[string][]HistoryEntry)}
}

// Add appends entries to an account's history.
func (m *MemoryHistory) Add(accountID string, entries ...HistoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[accountID] = append(m.entries[accountID], entries...)
}

// History returns an account's transactions, newest first. An unknown
// account has an empty history, not an error.
func (m *MemoryHistory) History(ctx context.Context, accountID string) ([]HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.entries[accountID]
	out := make([]HistoryEntry, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// MemoryProfiles is a thread-safe in-memory ProfileStore.
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryProfiles creates an empty profile store.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]Profile)}
}

// Put stores a profile.
func (m *MemoryProfiles) Put(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.AccountID] = p
}

// Profile returns an account's profile or a not-found error.
func (m *MemoryProfiles) Profile(ctx context.Context, accountID string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[accountID]
	if !ok {
		return Profile{}, errors.NotFound("profile", accountID)
	}
	return p, nil
}

// MemoryCases is a thread-safe in-memory CaseStore.
type MemoryCases struct {
	mu    sync.RWMutex
	cases []FraudCase
}

// NewMemoryCases creates an empty case store.
func NewMemoryCases() *MemoryCases {
	return &MemoryCases{}
}

// Add appends cases to the store.
func (m *MemoryCases) Add(cases ...FraudCase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases = append(m.cases, cases...)
}

// SimilarCases returns cases sharing at least one active feature with the
// query, most similar first. When the query has no active features, every
// case matches.
func (m *MemoryCases) SimilarCases(ctx context.Context, features CaseFeatures) ([]FraudCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []FraudCase
	for _, c := range m.cases {
		if matchesFeatures(c.Features, features) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SimilarityScore > out[j].SimilarityScore })
	return out, nil
}

func matchesFeatures(have, want CaseFeatures) bool {
	if !want.AmountUnusuallyHigh && !want.NewReceiver && !want.UnusualTime {
		return true
	}
	return (want.AmountUnusuallyHigh && have.AmountUnusuallyHigh) ||
		(want.NewReceiver && have.NewReceiver) ||
		(want.UnusualTime && have.UnusualTime)
}

// SeedDemoStores builds the three stores pre-loaded with demo data for the
// given sender account.
func SeedDemoStores(accountID string) Stores {
	history := NewMemoryHistory()
	history.Add(accountID,
		HistoryEntry{
			TransactionID:   "t123456",
			Amount:          1250.00,
			Timestamp:       time.Date(2023, 12, 1, 15, 30, 0, 0, time.UTC),
			ReceiverAccount: "DE89370400440532013000",
			Description:     "Monatsmiete Dezember",
		},
		HistoryEntry{
			TransactionID:   "t123457",
			Amount:          89.99,
			Timestamp:       time.Date(2023, 12, 3, 10, 15, 0, 0, time.UTC),
			ReceiverAccount: "DE12500105170648489890",
			Description:     "Online-Einkauf Elektronik",
		},
		HistoryEntry{
			TransactionID:   "t123458",
			Amount:          50.00,
			Timestamp:       time.Date(2023, 12, 5, 9, 20, 0, 0, time.UTC),
			ReceiverAccount: "DE13600501017832594242",
			Description:     "Überweisung an Freund",
		},
	)

	profiles := NewMemoryProfiles()
	profiles.Put(Profile{
		AccountID:            accountID,
		AccountAgeDays:       730,
		AccountType:          "private",
		RiskScore:            0.15,
		AverageAmount:        450.75,
		TransactionFrequency: 12.5,
		PreviousFlags:        1,
		TypicalCountries:     []string{"DE", "FR", "ES"},
		TypicalReceivers:     []string{"DE89370400440532013000", "DE12500105170648489890"},
	})

	cases := NewMemoryCases()
	cases.Add(
		FraudCase{
			CaseID:          "f987654",
			SimilarityScore: 0.85,
			Features:        CaseFeatures{AmountUnusuallyHigh: true, NewReceiver: true, UnusualTime: true},
			Outcome:         OutcomeConfirmedFraud,
		},
		FraudCase{
			CaseID:          "f987655",
			SimilarityScore: 0.78,
			Features:        CaseFeatures{AmountUnusuallyHigh: true, NewReceiver: false, UnusualTime: true},
			Outcome:         OutcomeFalsePositive,
		},
	)

	return Stores{History: history, Profiles: profiles, Cases: cases}
}
