package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/fraudguard/errors"
)

func TestLoadTransactionDefaultsToExample(t *testing.T) {
	tx, err := loadTransaction("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.TransactionID != "tx98766" {
		t.Fatalf("unexpected example transaction: %+v", tx)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("example transaction must be valid: %v", err)
	}
}

func TestLoadTransactionRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	_, err := loadTransaction(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input code, got: %v", err)
	}
}

func TestLoadTransactionRejectsIncompleteRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.json")
	if err := os.WriteFile(path, []byte(`{"transaction_id": "t1"}`), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	if _, err := loadTransaction(path); err == nil {
		t.Fatal("expected validation error for incomplete transaction")
	}
}
