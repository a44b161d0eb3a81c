package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/llm"
	"github.com/kbukum/fraudguard/lookup"
	"github.com/kbukum/fraudguard/pipeline"
)

// llmPort prompts a model for one capability. Structured ports expect a JSON
// payload and request the provider's JSON output mode.
type llmPort struct {
	name       string
	provider   llm.Provider
	system     string
	prompt     func(tx fraud.Transaction, upstream pipeline.ContextView) string
	structured bool
}

func (p *llmPort) Name() string { return p.name }

func (p *llmPort) Invoke(ctx context.Context, tx fraud.Transaction, upstream pipeline.ContextView) (string, error) {
	if p.structured {
		return llm.CompleteStructured(ctx, p.provider, p.system, p.prompt(tx, upstream))
	}
	return llm.Complete(ctx, p.provider, p.system, p.prompt(tx, upstream))
}

// NewLLMSuite builds the capability suite over an LLM provider. The query
// capability additionally draws on the lookup stores: relevant account data
// is fetched up front and inlined into the prompt.
func NewLLMSuite(provider llm.Provider, stores lookup.Stores) *Suite {
	return &Suite{
		ports: pipeline.Ports{
			ML:          &llmPort{name: pipeline.StageML, provider: provider, system: mlSystemPrompt, prompt: mlPrompt, structured: true},
			Rule:        &llmPort{name: pipeline.StageRule, provider: provider, system: ruleSystemPrompt, prompt: rulePrompt, structured: true},
			Coordinator: &llmPort{name: pipeline.StageCoordination, provider: provider, system: coordinatorSystemPrompt, prompt: coordinatorPrompt},
			Decision:    &llmPort{name: pipeline.StageDecision, provider: provider, system: decisionSystemPrompt, prompt: decisionPrompt, structured: true},
			Explanation: &llmPort{name: pipeline.StageExplanation, provider: provider, system: explanationSystemPrompt, prompt: explanationPrompt},
		},
		query: func(question string) pipeline.Port {
			return &llmQueryPort{provider: provider, stores: stores, question: question}
		},
	}
}

// llmQueryPort answers a fraud manager's free-text question. The stores are
// queried first and their data is handed to the model as grounding context.
type llmQueryPort struct {
	provider llm.Provider
	stores   lookup.Stores
	question string
}

func (p *llmQueryPort) Name() string { return pipeline.StageQuery }

func (p *llmQueryPort) Invoke(ctx context.Context, tx fraud.Transaction, _ pipeline.ContextView) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, `Answer the following question from the fraud manager about transaction %s:

%q

The sender account is: %s
The receiver account is: %s
`, tx.TransactionID, p.question, tx.SenderAccount, tx.ReceiverAccount)

	if history, err := p.stores.History.History(ctx, tx.SenderAccount); err == nil && len(history) > 0 {
		b.WriteString("\nSender transaction history:\n")
		b.WriteString(marshalContext(history))
	}
	if profile, err := p.stores.Profiles.Profile(ctx, tx.SenderAccount); err == nil {
		b.WriteString("\nSender profile:\n")
		b.WriteString(marshalContext(profile))
	}
	if cases, err := p.stores.Cases.SimilarCases(ctx, lookup.CaseFeatures{}); err == nil && len(cases) > 0 {
		b.WriteString("\nKnown fraud cases:\n")
		b.WriteString(marshalContext(cases))
	}

	b.WriteString("\nUse this data to give a thorough answer.")
	return llm.Complete(ctx, p.provider, querySystemPrompt, b.String())
}

func marshalContext(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "(unavailable)\n"
	}
	return string(data) + "\n"
}
