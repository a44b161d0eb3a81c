package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/fraudguard/llm"
	"github.com/kbukum/fraudguard/lookup"
	"github.com/kbukum/fraudguard/pipeline"
)

// scriptedProvider returns canned responses and records prompts.
type scriptedProvider struct {
	response        string
	lastReq         llm.CompletionRequest
	structuredCalls int
}

func (s *scriptedProvider) Name() string                            { return "scripted" }
func (s *scriptedProvider) IsAvailable(ctx context.Context) bool    { return true }
func (s *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.lastReq = req
	return &llm.CompletionResponse{Content: s.response}, nil
}
func (s *scriptedProvider) CompleteStructured(ctx context.Context, req llm.CompletionRequest, schema any) (*llm.CompletionResponse, error) {
	s.structuredCalls++
	return s.Complete(ctx, req)
}

func lastPrompt(p *scriptedProvider) string {
	if len(p.lastReq.Messages) == 0 {
		return ""
	}
	return p.lastReq.Messages[0].Content
}

func TestLLMSuitePromptsCarryContext(t *testing.T) {
	provider := &scriptedProvider{response: "approve_transaction"}
	suite := NewLLMSuite(provider, lookup.SeedDemoStores(senderAccount))

	tx := suspiciousTransaction(false)
	upstream := pipeline.ContextView{
		pipeline.StageML:   {Stage: pipeline.StageML, RawText: `{"probability": 0.7}`},
		pipeline.StageRule: {Stage: pipeline.StageRule, RawText: `{"is_flagged": true}`},
	}

	out, err := suite.Ports().Coordinator.Invoke(context.Background(), tx, upstream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "approve_transaction" {
		t.Fatalf("unexpected output: %q", out)
	}

	prompt := lastPrompt(provider)
	for _, want := range []string{`"probability": 0.7`, `"is_flagged": true`, "approve_transaction", "decision_agent", "generate_explanation"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("coordinator prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestLLMSuiteAssessmentPromptIncludesTransaction(t *testing.T) {
	provider := &scriptedProvider{response: "{}"}
	suite := NewLLMSuite(provider, lookup.SeedDemoStores(senderAccount))

	tx := suspiciousTransaction(true)
	if _, err := suite.Ports().ML.Invoke(context.Background(), tx, pipeline.ContextView{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := lastPrompt(provider)
	if !strings.Contains(prompt, tx.TransactionID) {
		t.Fatalf("ml prompt missing transaction id:\n%s", prompt)
	}
	if !strings.Contains(prompt, MLModelVersion) {
		t.Fatalf("ml prompt missing response format:\n%s", prompt)
	}
}

func TestLLMSuiteStructuredPortsUseJSONMode(t *testing.T) {
	provider := &scriptedProvider{response: "{}"}
	suite := NewLLMSuite(provider, lookup.SeedDemoStores(senderAccount))
	tx := cleanTransaction()

	if _, err := suite.Ports().ML.Invoke(context.Background(), tx, pipeline.ContextView{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.structuredCalls != 1 {
		t.Fatalf("ml port must request JSON output mode, structured calls = %d", provider.structuredCalls)
	}

	provider.response = "approve_transaction"
	if _, err := suite.Ports().Coordinator.Invoke(context.Background(), tx, pipeline.ContextView{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.structuredCalls != 1 {
		t.Fatal("coordinator port must use plain completion, its label is not JSON")
	}
}

func TestLLMQueryPortInlinesStoreData(t *testing.T) {
	provider := &scriptedProvider{response: "The sender has three recent transactions."}
	suite := NewLLMSuite(provider, lookup.SeedDemoStores(senderAccount))

	port := suite.QueryPort("Is this receiver known?")
	answer, err := port.Invoke(context.Background(), cleanTransaction(), pipeline.ContextView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("expected an answer")
	}

	prompt := lastPrompt(provider)
	for _, want := range []string{"Is this receiver known?", "t123456", "account_age_days", "f987654"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("query prompt missing %q:\n%s", want, prompt)
		}
	}
}
