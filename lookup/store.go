package lookup

import (
	"context"
	"time"
)

// HistoryEntry is one past transaction of an account.
type HistoryEntry struct {
	TransactionID   string    `json:"transaction_id"`
	Amount          float64   `json:"amount"`
	Timestamp       time.Time `json:"timestamp"`
	ReceiverAccount string    `json:"receiver_account"`
	Description     string    `json:"description"`
}

// Profile describes an account's standing and habits.
type Profile struct {
	AccountID            string   `json:"account_id"`
	AccountAgeDays       int      `json:"account_age_days"`
	AccountType          string   `json:"account_type"`
	RiskScore            float64  `json:"risk_score"`
	AverageAmount        float64  `json:"average_transaction_amount"`
	TransactionFrequency float64  `json:"transaction_frequency"`
	PreviousFlags        int      `json:"previous_flags"`
	TypicalCountries     []string `json:"typical_countries"`
	TypicalReceivers     []string `json:"typical_receivers"`
}

// CaseFeatures are the signals used to match prior fraud cases.
type CaseFeatures struct {
	AmountUnusuallyHigh bool `json:"amount_unusually_high"`
	NewReceiver         bool `json:"new_receiver"`
	UnusualTime         bool `json:"unusual_time"`
}

// FraudCase is a historical case with its investigated outcome.
type FraudCase struct {
	CaseID          string       `json:"case_id"`
	SimilarityScore float64      `json:"similarity_score"`
	Features        CaseFeatures `json:"features"`
	Outcome         string       `json:"outcome"`
}

// Case outcomes.
const (
	OutcomeConfirmedFraud = "confirmed_fraud"
	OutcomeFalsePositive  = "false_positive"
)

// HistoryStore serves recent transactions per account.
type HistoryStore interface {
	History(ctx context.Context, accountID string) ([]HistoryEntry, error)
}

// ProfileStore serves account profiles.
type ProfileStore interface {
	Profile(ctx context.Context, accountID string) (Profile, error)
}

// CaseStore matches prior fraud cases against observed features.
type CaseStore interface {
	SimilarCases(ctx context.Context, features CaseFeatures) ([]FraudCase, error)
}

// Stores bundles the three lookup capabilities.
type Stores struct {
	History  HistoryStore
	Profiles ProfileStore
	Cases    CaseStore
}
