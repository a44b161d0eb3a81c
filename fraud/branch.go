package fraud

import "strings"

// BranchLabel is a routing command emitted by the coordinator stage.
type BranchLabel string

const (
	// LabelApproveTransaction releases the transaction without further stages.
	LabelApproveTransaction BranchLabel = "approve_transaction"
	// LabelDecisionAgent routes a realtime transaction to the autonomous
	// decision stage.
	LabelDecisionAgent BranchLabel = "decision_agent"
	// LabelGenerateExplanation routes a non-realtime transaction to
	// explanation generation for human review.
	LabelGenerateExplanation BranchLabel = "generate_explanation"
)

// BranchDecision is the parsed coordinator output. An unrecognized label is
// representable (Recognized=false, Raw carries the offending text) and must
// never be silently mapped onto a known label.
type BranchDecision struct {
	Label      BranchLabel
	Raw        string
	Recognized bool
}

// ParseBranchLabel matches the coordinator's trimmed raw output against the
// known labels. The match is exact and case-sensitive: the coordinator is
// instructed to answer with the bare command and nothing else, so anything
// looser would mask a misbehaving coordinator.
func ParseBranchLabel(raw string) BranchDecision {
	trimmed := strings.TrimSpace(raw)
	switch BranchLabel(trimmed) {
	case LabelApproveTransaction, LabelDecisionAgent, LabelGenerateExplanation:
		return BranchDecision{Label: BranchLabel(trimmed), Raw: raw, Recognized: true}
	}
	return BranchDecision{Raw: raw, Recognized: false}
}
