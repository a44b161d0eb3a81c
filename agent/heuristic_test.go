package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/lookup"
	"github.com/kbukum/fraudguard/pipeline"
)

const senderAccount = "DE55500105173984217489"

func heuristicSuite() *Suite {
	return NewHeuristicSuite(fraud.RuleParams{}, lookup.SeedDemoStores(senderAccount))
}

func cleanTransaction() fraud.Transaction {
	return fraud.Transaction{
		TransactionID:   "t200001",
		SenderAccount:   senderAccount,
		ReceiverAccount: "DE89370400440532013000",
		Amount:          450.00,
		Timestamp:       time.Date(2023, 12, 15, 14, 30, 0, 0, time.UTC),
		Description:     "Monatsmiete Dezember",
	}
}

func suspiciousTransaction(realtime bool) fraud.Transaction {
	return fraud.Transaction{
		TransactionID:   "t200002",
		SenderAccount:   senderAccount,
		ReceiverAccount: "FR7630006000011234567890189",
		Amount:          7500.00,
		Timestamp:       time.Date(2023, 12, 15, 23, 45, 0, 0, time.UTC),
		Description:     "Dringende Zahlung",
		IsRealtime:      realtime,
	}
}

func TestHeuristicCleanTransactionApproved(t *testing.T) {
	x := pipeline.NewExecutor(heuristicSuite().Ports(), pipeline.Options{})

	record, err := x.Screen(context.Background(), cleanTransaction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Err != "" {
		t.Fatalf("unexpected record error: %s", record.Err)
	}
	if record.FinalDecision != fraud.DecisionApproved {
		t.Fatalf("expected approved, got %q", record.FinalDecision)
	}
	if record.Explanation != "" {
		t.Fatalf("clean run must not carry an explanation, got %q", record.Explanation)
	}
}

func TestHeuristicSuspiciousStandardGoesToReview(t *testing.T) {
	x := pipeline.NewExecutor(heuristicSuite().Ports(), pipeline.Options{})

	record, err := x.Screen(context.Background(), suspiciousTransaction(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Err != "" {
		t.Fatalf("unexpected record error: %s", record.Err)
	}
	if !record.NeedsReview() {
		t.Fatalf("expected review, got decision %q", record.FinalDecision)
	}
	if !strings.Contains(record.Explanation, "t200002") {
		t.Fatalf("explanation should reference the transaction, got %q", record.Explanation)
	}
	if !strings.Contains(record.Explanation, fraud.RuleLargeAmount) {
		t.Fatalf("explanation should name triggered rules, got %q", record.Explanation)
	}
}

func TestHeuristicSuspiciousRealtimeDeclined(t *testing.T) {
	x := pipeline.NewExecutor(heuristicSuite().Ports(), pipeline.Options{})

	record, err := x.Screen(context.Background(), suspiciousTransaction(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Err != "" {
		t.Fatalf("unexpected record error: %s", record.Err)
	}
	if record.FinalDecision != fraud.DecisionDeclined {
		t.Fatalf("expected declined, got %q", record.FinalDecision)
	}
	if record.Explanation == "" {
		t.Fatal("decision must carry reasoning")
	}
}

func TestHeuristicAssessmentPayloads(t *testing.T) {
	suite := heuristicSuite()
	ctx := context.Background()
	tx := suspiciousTransaction(false)

	raw, err := suite.Ports().ML.Invoke(ctx, tx, pipeline.ContextView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(raw, MLModelVersion) {
		t.Fatalf("ml payload should carry the model version, got %s", raw)
	}

	raw, err = suite.Ports().Rule.Invoke(ctx, tx, pipeline.ContextView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(raw, `"is_flagged":true`) {
		t.Fatalf("rule payload should be flagged, got %s", raw)
	}
	if !strings.Contains(raw, fraud.RuleUnusualTime) {
		t.Fatalf("rule payload should name unusual_time, got %s", raw)
	}
}

func TestHeuristicQueryHistory(t *testing.T) {
	suite := heuristicSuite()
	port := suite.QueryPort("Show me the sender's transaction history")

	answer, err := port.Invoke(context.Background(), cleanTransaction(), pipeline.ContextView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(answer, "t123456") {
		t.Fatalf("expected history entries, got %q", answer)
	}
	if strings.Contains(answer, "f987654") {
		t.Fatalf("history question should not return fraud cases, got %q", answer)
	}
}

func TestHeuristicQueryCases(t *testing.T) {
	suite := heuristicSuite()
	port := suite.QueryPort("Are there similar fraud cases?")

	answer, err := port.Invoke(context.Background(), suspiciousTransaction(false), pipeline.ContextView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(answer, "f987654") {
		t.Fatalf("expected similar cases, got %q", answer)
	}
}

func TestHeuristicQueryFallback(t *testing.T) {
	suite := heuristicSuite()
	port := suite.QueryPort("why?")

	answer, err := port.Invoke(context.Background(), cleanTransaction(), pipeline.ContextView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"t123456", "risk score"} {
		if !strings.Contains(answer, want) {
			t.Fatalf("fallback answer should include %q, got %q", want, answer)
		}
	}
}
