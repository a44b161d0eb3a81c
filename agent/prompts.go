package agent

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/pipeline"
)

// Model version strings reported in assessment payloads.
const (
	MLModelVersion    = "fraud-detection-v3.2"
	RuleEngineVersion = "rule-engine-v2.1"
)

// System prompts define each capability's role.
const (
	mlSystemPrompt = `You are an advanced ML model for fraud detection in bank transactions.
You analyze transactions and assess their fraud probability.
Your analysis is based on transaction amount, receiver, realtime status, and timing.`

	ruleSystemPrompt = `You are a rule-based fraud detection system for bank transactions.
You apply a fixed rule set to identify potential fraud cases.
Your rules cover amount thresholds, realtime status, unusual times, and new receivers.`

	coordinatorSystemPrompt = `You are the coordinator of a bank's fraud screening system.
You orchestrate the fraud detection workflow and route cases between stages.
You decide how a potentially fraudulent transaction is handled next.`

	decisionSystemPrompt = `You are the decision maker for realtime transfers in a banking system.
You make autonomous decisions on whether a transaction is approved or declined.
You weigh the fraud risk against customer impact.`

	explanationSystemPrompt = `You explain fraud screening results to fraud managers.
You phrase clear and precise explanations of why a transaction appears suspicious.`

	querySystemPrompt = `You are a database query assistant in a fraud screening system.
You help the fraud manager by retrieving relevant account information.
You can report transaction history, account profiles, and similar fraud cases.`
)

func transactionJSON(tx fraud.Transaction) string {
	data, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return tx.TransactionID
	}
	return string(data)
}

func mlPrompt(tx fraud.Transaction, _ pipeline.ContextView) string {
	return fmt.Sprintf(`Assess the following transaction with ML methods:
%s

Return your answer in the following format:
{
  "probability": 0.75,
  "threshold": 0.5,
  "is_fraud": true,
  "features": {
    "amount_unusually_high": true,
    "new_receiver": true,
    "is_realtime": true,
    "unusual_time": false
  },
  "model_version": %q
}`, transactionJSON(tx), MLModelVersion)
}

func rulePrompt(tx fraud.Transaction, _ pipeline.ContextView) string {
	return fmt.Sprintf(`Check the following transaction against the rule set:
%s

Check these rules:
1. Amount > 5000 -> "large_amount"
2. Realtime transfer -> "realtime_transfer"
3. Transaction between 23:00 and 06:00 -> "unusual_time"
4. New receiver account -> "new_receiver"
5. Unusual description -> "suspicious_description"

Return your answer in the following format:
{
  "is_flagged": true,
  "rules_triggered": ["large_amount", "realtime_transfer"],
  "version": %q
}`, transactionJSON(tx), RuleEngineVersion)
}

func coordinatorPrompt(tx fraud.Transaction, upstream pipeline.ContextView) string {
	return fmt.Sprintf(`Coordinate the next processing step based on the assessments.
Use the ML assessment and the rule-based assessment to decide which of the
following steps runs next:

1. "generate_explanation" - case is suspicious and the transfer is NOT realtime
2. "decision_agent" - case is suspicious and the transfer IS realtime
3. "approve_transaction" - case is not suspicious

This transfer is realtime: %t

ML assessment:
%s

Rule-based assessment:
%s

Answer with exactly one of the three commands and nothing else.`,
		tx.IsRealtime,
		upstreamRaw(upstream, pipeline.StageML),
		upstreamRaw(upstream, pipeline.StageRule))
}

func decisionPrompt(tx fraud.Transaction, upstream pipeline.ContextView) string {
	return fmt.Sprintf(`Make an automatic decision for this realtime transfer:
%s

Use the ML assessment and the rule-based assessment:

ML assessment:
%s

Rule-based assessment:
%s

Return your answer in the following format:
{
  "decision": "approved",
  "confidence": 0.85,
  "reasoning": "Short justification of your decision"
}

For decision you may only use "approved" or "declined".`,
		transactionJSON(tx),
		upstreamRaw(upstream, pipeline.StageML),
		upstreamRaw(upstream, pipeline.StageRule))
}

func explanationPrompt(tx fraud.Transaction, upstream pipeline.ContextView) string {
	return fmt.Sprintf(`Explain why the following transaction appears suspicious:
%s

Use the ML assessment and the rule-based assessment:

ML assessment:
%s

Rule-based assessment:
%s

Phrase a clear, precise, and understandable explanation for the fraud
manager. Refer concretely to the assessment results and connect them.`,
		transactionJSON(tx),
		upstreamRaw(upstream, pipeline.StageML),
		upstreamRaw(upstream, pipeline.StageRule))
}

func upstreamRaw(upstream pipeline.ContextView, stage string) string {
	res, ok := upstream[stage]
	if !ok || res.RawText == "" {
		return "(not available)"
	}
	return res.RawText
}
