package fraud

import "time"

// Final decisions carried in an OutcomeRecord.
const (
	DecisionApproved = "approved"
	DecisionDeclined = "declined"
)

// ReviewDecision is the terminal result of an interactive review session.
type ReviewDecision string

const (
	ReviewApproved ReviewDecision = "approved"
	ReviewDeclined ReviewDecision = "declined"
	ReviewAborted  ReviewDecision = "aborted"
)

// OutcomeRecord is the final result of one screening run.
//
// Exactly one of the following holds:
//   - FinalDecision == "approved" with empty Explanation (auto-approval)
//   - FinalDecision in {approved, declined} with Explanation from the
//     decision stage (realtime autonomous decision)
//   - FinalDecision == "" with non-empty Explanation (awaiting human review)
//   - Err != "" (coordinator emitted an unroutable label)
type OutcomeRecord struct {
	RunID          string         `json:"run_id"`
	Transaction    Transaction    `json:"transaction"`
	MLAssessment   map[string]any `json:"ml_assessment"`
	RuleAssessment map[string]any `json:"rule_assessment"`
	FinalDecision  string         `json:"final_decision,omitempty"`
	Explanation    string         `json:"explanation,omitempty"`
	Err            string         `json:"error,omitempty"`
	Duration       time.Duration  `json:"duration"`
}

// NeedsReview reports whether the run ended without an automated decision
// and now waits for a fraud manager.
func (o *OutcomeRecord) NeedsReview() bool {
	return o.Err == "" && o.FinalDecision == ""
}
