package fraud

import (
	"strings"
	"time"
)

// Rule identifiers form the fixed taxonomy the rule-based assessment draws
// from. Assessments report the triggered subset in this order.
const (
	RuleLargeAmount           = "large_amount"
	RuleRealtimeTransfer      = "realtime_transfer"
	RuleUnusualTime           = "unusual_time"
	RuleNewReceiver           = "new_receiver"
	RuleSuspiciousDescription = "suspicious_description"
)

// DefaultLargeAmountCeiling is the amount above which RuleLargeAmount fires.
const DefaultLargeAmountCeiling = 5000.0

// RuleParams configures the rule taxonomy thresholds.
type RuleParams struct {
	// LargeAmountCeiling is the amount ceiling for RuleLargeAmount.
	LargeAmountCeiling float64 `yaml:"large_amount_ceiling" mapstructure:"large_amount_ceiling"`
	// SuspiciousTerms are description substrings that trigger
	// RuleSuspiciousDescription (matched case-insensitively).
	SuspiciousTerms []string `yaml:"suspicious_terms" mapstructure:"suspicious_terms"`
}

// ApplyDefaults fills unset rule parameters.
func (p *RuleParams) ApplyDefaults() {
	if p.LargeAmountCeiling == 0 {
		p.LargeAmountCeiling = DefaultLargeAmountCeiling
	}
	if len(p.SuspiciousTerms) == 0 {
		p.SuspiciousTerms = []string{"urgent", "dringend", "crypto", "gift card", "western union"}
	}
}

// IsUnusualTime reports whether the local transaction hour falls within
// [23:00, 06:00).
func IsUnusualTime(ts time.Time) bool {
	h := ts.Hour()
	return h >= 23 || h < 6
}

// IsSuspiciousDescription reports whether the description matches the
// configured suspicion heuristic.
func (p RuleParams) IsSuspiciousDescription(description string) bool {
	if description == "" {
		return false
	}
	lower := strings.ToLower(description)
	for _, term := range p.SuspiciousTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Evaluate applies the full taxonomy to a transaction. knownReceivers is the
// sender's known-receiver set; an empty set means every receiver is new.
func (p RuleParams) Evaluate(tx Transaction, knownReceivers []string) []string {
	var triggered []string
	if tx.Amount > p.LargeAmountCeiling {
		triggered = append(triggered, RuleLargeAmount)
	}
	if tx.IsRealtime {
		triggered = append(triggered, RuleRealtimeTransfer)
	}
	if IsUnusualTime(tx.Timestamp) {
		triggered = append(triggered, RuleUnusualTime)
	}
	if !containsString(knownReceivers, tx.ReceiverAccount) {
		triggered = append(triggered, RuleNewReceiver)
	}
	if p.IsSuspiciousDescription(tx.Description) {
		triggered = append(triggered, RuleSuspiciousDescription)
	}
	return triggered
}

func containsString(set []string, val string) bool {
	for _, s := range set {
		if s == val {
			return true
		}
	}
	return false
}
