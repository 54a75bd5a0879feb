package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinariesReportsMissingAndPresent(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "fake-engine")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{
		{Name: "Engine", Command: "fake-engine"},
		{Name: "Missing", Command: "definitely-not-installed"},
		{Name: "Unset", Command: ""},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected stub found: %+v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary reported: %+v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected unset command reported: %+v", results[2])
	}
}
