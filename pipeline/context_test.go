package pipeline

import "testing"

func TestExecutionContextRecordFirstWriteWins(t *testing.T) {
	exec := NewExecutionContext()
	exec.Record("a", StageResult{Stage: "a", RawText: "first"})
	exec.Record("a", StageResult{Stage: "a", RawText: "second"})

	res, ok := exec.Get("a")
	if !ok {
		t.Fatal("expected result for stage a")
	}
	if res.RawText != "first" {
		t.Fatalf("expected first write to win, got %q", res.RawText)
	}
}

func TestExecutionContextCompletedOrder(t *testing.T) {
	exec := NewExecutionContext()
	exec.Record("b", StageResult{Stage: "b"})
	exec.Record("a", StageResult{Stage: "a"})
	exec.Record("c", StageResult{Stage: "c"})

	order := exec.Completed()
	want := []string{"b", "a", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(order))
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, order[i])
		}
	}
}

func TestExecutionContextViewIsSnapshot(t *testing.T) {
	exec := NewExecutionContext()
	exec.Record("a", StageResult{Stage: "a", RawText: "x"})

	view := exec.View()
	exec.Record("b", StageResult{Stage: "b"})

	if _, ok := view["b"]; ok {
		t.Fatal("snapshot should not see results recorded after it was taken")
	}
	if view["a"].RawText != "x" {
		t.Fatalf("unexpected snapshot content: %+v", view["a"])
	}
}

func TestExecutionContextStructuredNeverNil(t *testing.T) {
	exec := NewExecutionContext()

	m := exec.Structured("missing")
	if m == nil {
		t.Fatal("expected non-nil map for absent stage")
	}

	exec.Record("a", StageResult{Stage: "a", Structured: nil})
	if exec.Structured("a") == nil {
		t.Fatal("expected non-nil map for stage with nil payload")
	}
}
