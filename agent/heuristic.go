package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kbukum/fraudguard/errors"
	"github.com/kbukum/fraudguard/extract"
	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/lookup"
	"github.com/kbukum/fraudguard/pipeline"
)

// NewHeuristicSuite builds a deterministic capability suite that needs no
// model backend. Assessments are computed from the rule taxonomy and the
// sender's profile; coordination and decisions follow fixed policies.
func NewHeuristicSuite(params fraud.RuleParams, stores lookup.Stores) *Suite {
	params.ApplyDefaults()
	h := &heuristic{params: params, stores: stores}
	return &Suite{
		ports: pipeline.Ports{
			ML:          pipeline.PortFunc{PortName: pipeline.StageML, Fn: h.mlAssessment},
			Rule:        pipeline.PortFunc{PortName: pipeline.StageRule, Fn: h.ruleAssessment},
			Coordinator: pipeline.PortFunc{PortName: pipeline.StageCoordination, Fn: h.coordinate},
			Decision:    pipeline.PortFunc{PortName: pipeline.StageDecision, Fn: h.decide},
			Explanation: pipeline.PortFunc{PortName: pipeline.StageExplanation, Fn: h.explain},
		},
		query: func(question string) pipeline.Port {
			return pipeline.PortFunc{PortName: pipeline.StageQuery, Fn: func(ctx context.Context, tx fraud.Transaction, upstream pipeline.ContextView) (string, error) {
				return h.answer(ctx, tx, question)
			}}
		},
	}
}

type heuristic struct {
	params fraud.RuleParams
	stores lookup.Stores
}

type mlFeatures struct {
	AmountUnusuallyHigh bool `json:"amount_unusually_high"`
	NewReceiver         bool `json:"new_receiver"`
	IsRealtime          bool `json:"is_realtime"`
	UnusualTime         bool `json:"unusual_time"`
}

type mlPayload struct {
	Probability  float64    `json:"probability"`
	Threshold    float64    `json:"threshold"`
	IsFraud      bool       `json:"is_fraud"`
	Features     mlFeatures `json:"features"`
	ModelVersion string     `json:"model_version"`
}

type rulePayload struct {
	IsFlagged      bool     `json:"is_flagged"`
	RulesTriggered []string `json:"rules_triggered"`
	Version        string   `json:"version"`
}

const fraudThreshold = 0.5

func (h *heuristic) knownReceivers(ctx context.Context, account string) []string {
	profile, err := h.stores.Profiles.Profile(ctx, account)
	if err != nil {
		return nil
	}
	return profile.TypicalReceivers
}

func (h *heuristic) mlAssessment(ctx context.Context, tx fraud.Transaction, _ pipeline.ContextView) (string, error) {
	known := h.knownReceivers(ctx, tx.SenderAccount)

	features := mlFeatures{
		AmountUnusuallyHigh: tx.Amount > h.params.LargeAmountCeiling,
		NewReceiver:         !containsString(known, tx.ReceiverAccount),
		IsRealtime:          tx.IsRealtime,
		UnusualTime:         fraud.IsUnusualTime(tx.Timestamp),
	}
	if profile, err := h.stores.Profiles.Profile(ctx, tx.SenderAccount); err == nil && profile.AverageAmount > 0 {
		if tx.Amount > 3*profile.AverageAmount {
			features.AmountUnusuallyHigh = true
		}
	}

	active := 0
	for _, f := range []bool{features.AmountUnusuallyHigh, features.NewReceiver, features.IsRealtime, features.UnusualTime} {
		if f {
			active++
		}
	}
	probability := 0.1 + 0.2*float64(active)
	if probability > 0.9 {
		probability = 0.9
	}

	return marshalPayload(mlPayload{
		Probability:  probability,
		Threshold:    fraudThreshold,
		IsFraud:      probability >= fraudThreshold,
		Features:     features,
		ModelVersion: MLModelVersion,
	})
}

func (h *heuristic) ruleAssessment(ctx context.Context, tx fraud.Transaction, _ pipeline.ContextView) (string, error) {
	triggered := h.params.Evaluate(tx, h.knownReceivers(ctx, tx.SenderAccount))
	if triggered == nil {
		triggered = []string{}
	}
	return marshalPayload(rulePayload{
		IsFlagged:      len(triggered) > 0,
		RulesTriggered: triggered,
		Version:        RuleEngineVersion,
	})
}

// coordinate implements the routing policy: suspicion comes from either
// assessment; realtime suspicion goes to the decision stage, standard
// suspicion to explanation, and clean cases are approved.
func (h *heuristic) coordinate(_ context.Context, tx fraud.Transaction, upstream pipeline.ContextView) (string, error) {
	ml := structured(upstream, pipeline.StageML)
	rule := structured(upstream, pipeline.StageRule)

	suspicious := extract.Bool(ml, "is_fraud") || extract.Bool(rule, "is_flagged")
	switch {
	case !suspicious:
		return string(fraud.LabelApproveTransaction), nil
	case tx.IsRealtime:
		return string(fraud.LabelDecisionAgent), nil
	default:
		return string(fraud.LabelGenerateExplanation), nil
	}
}

func (h *heuristic) decide(_ context.Context, tx fraud.Transaction, upstream pipeline.ContextView) (string, error) {
	ml := structured(upstream, pipeline.StageML)
	rule := structured(upstream, pipeline.StageRule)

	probability := extract.Float(ml, "probability")
	rules := triggeredRules(rule)

	decision := fraud.DecisionApproved
	reasoning := fmt.Sprintf("Fraud probability %.0f%% with %d triggered rules is within tolerance for a realtime transfer.",
		probability*100, len(rules))
	if probability >= 0.7 || len(rules) >= 3 {
		decision = fraud.DecisionDeclined
		reasoning = fmt.Sprintf("Fraud probability %.0f%% and triggered rules (%s) exceed the realtime risk tolerance.",
			probability*100, strings.Join(rules, ", "))
	}

	return marshalPayload(map[string]any{
		"decision":   decision,
		"confidence": 0.85,
		"reasoning":  reasoning,
	})
}

func (h *heuristic) explain(_ context.Context, tx fraud.Transaction, upstream pipeline.ContextView) (string, error) {
	ml := structured(upstream, pipeline.StageML)
	rule := structured(upstream, pipeline.StageRule)

	var b strings.Builder
	fmt.Fprintf(&b, "Transaction %s was flagged for review. ", tx.TransactionID)
	fmt.Fprintf(&b, "The ML model estimates a fraud probability of %.1f%%. ", extract.Float(ml, "probability")*100)

	if rules := triggeredRules(rule); len(rules) > 0 {
		fmt.Fprintf(&b, "The rule engine triggered: %s. ", strings.Join(rules, ", "))
	} else {
		b.WriteString("No rules were triggered. ")
	}
	fmt.Fprintf(&b, "The amount of %.2f to receiver %s should be verified with the sender before release.",
		tx.Amount, tx.ReceiverAccount)
	return b.String(), nil
}

// answer serves the interactive query capability from the lookup stores,
// routed by simple keyword matching on the question.
func (h *heuristic) answer(ctx context.Context, tx fraud.Transaction, question string) (string, error) {
	q := strings.ToLower(question)
	var b strings.Builder

	wantHistory := strings.Contains(q, "histor") || strings.Contains(q, "transaction")
	wantProfile := strings.Contains(q, "profile") || strings.Contains(q, "account") || strings.Contains(q, "sender")
	wantCases := strings.Contains(q, "case") || strings.Contains(q, "similar") || strings.Contains(q, "fraud")
	if !wantHistory && !wantProfile && !wantCases {
		wantHistory, wantProfile, wantCases = true, true, true
	}

	if wantHistory {
		history, err := h.stores.History.History(ctx, tx.SenderAccount)
		if err == nil && len(history) > 0 {
			fmt.Fprintf(&b, "Recent transactions of %s:\n", tx.SenderAccount)
			for _, e := range history {
				fmt.Fprintf(&b, "  %s  %8.2f  %s  %s\n", e.TransactionID, e.Amount, e.ReceiverAccount, e.Description)
			}
		}
	}
	if wantProfile {
		if profile, err := h.stores.Profiles.Profile(ctx, tx.SenderAccount); err == nil {
			fmt.Fprintf(&b, "Profile of %s: account age %d days, risk score %.2f, average amount %.2f, %d previous flags.\n",
				profile.AccountID, profile.AccountAgeDays, profile.RiskScore, profile.AverageAmount, profile.PreviousFlags)
		}
	}
	if wantCases {
		known := h.knownReceivers(ctx, tx.SenderAccount)
		features := lookup.CaseFeatures{
			AmountUnusuallyHigh: tx.Amount > h.params.LargeAmountCeiling,
			NewReceiver:         !containsString(known, tx.ReceiverAccount),
			UnusualTime:         fraud.IsUnusualTime(tx.Timestamp),
		}
		if cases, err := h.stores.Cases.SimilarCases(ctx, features); err == nil && len(cases) > 0 {
			b.WriteString("Similar fraud cases:\n")
			for _, c := range cases {
				fmt.Fprintf(&b, "  %s  similarity %.2f  outcome %s\n", c.CaseID, c.SimilarityScore, c.Outcome)
			}
		}
	}

	if b.Len() == 0 {
		return "No records found for this transaction.", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func structured(upstream pipeline.ContextView, stage string) map[string]any {
	if res, ok := upstream[stage]; ok && res.Structured != nil {
		return res.Structured
	}
	return map[string]any{}
}

func triggeredRules(rule map[string]any) []string {
	raw, ok := rule["rules_triggered"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsString(set []string, val string) bool {
	for _, s := range set {
		if s == val {
			return true
		}
	}
	return false
}

func marshalPayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Internal(err)
	}
	return string(data), nil
}
