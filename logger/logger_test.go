package logger

import "testing"

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Fatalf("expected level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Fatalf("expected format console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Fatal("expected timestamp enabled")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "verbose", Format: "console", Output: "stdout"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid level")
	}

	cfg = Config{Level: "debug", Format: "xml", Output: "stdout"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid format")
	}

	cfg = Config{Level: "debug", Format: "json", Output: "stdout"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFields(t *testing.T) {
	m := Fields("stage", "coordination", "status", "completed")
	if m["stage"] != "coordination" || m["status"] != "completed" {
		t.Fatalf("unexpected fields: %v", m)
	}

	// Odd trailing key is dropped.
	m = Fields("only")
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestWithComponent(t *testing.T) {
	log := NewDefault("test")
	child := log.WithComponent("pipeline")
	if child == nil {
		t.Fatal("expected child logger")
	}
}
