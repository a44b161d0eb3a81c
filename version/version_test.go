package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Fatal("version must never be empty")
	}
}

func TestStringIncludesCommit(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc1234"}
	s := info.String()
	if !strings.Contains(s, "1.2.3") || !strings.Contains(s, "abc1234") {
		t.Fatalf("unexpected version string: %s", s)
	}
}
