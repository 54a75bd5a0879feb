package merge

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"basintab/internal/config"
	"basintab/internal/engine"
	"basintab/internal/variable"
)

func newVariable(t *testing.T, rounding string, decimals int) *variable.Variable {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.TablesDir = t.TempDir()
	v := variable.New(config.Variable{
		Name:          "ndvi",
		ValueTable:    "ndvi.csv",
		FractionTable: "ndvi_pc.csv",
		Rounding:      rounding,
		Decimals:      decimals,
	}, cfg)
	if err := v.Load([]string{"1001", "1002", "1003"}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func lastLine(t *testing.T, path string) string {
	t.Helper()
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	return lines[len(lines)-1]
}

func TestAppendPairWritesBothTables(t *testing.T) {
	v := newVariable(t, "none", 0)
	date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

	err := AppendPair(v, "A2023105", date, engine.Result{
		Values:    map[string]float64{"1001": 42.5},
		Fractions: map[string]int{"1001": 987, "1002": 12},
	})
	if err != nil {
		t.Fatalf("AppendPair: %v", err)
	}

	if got := lastLine(t, v.ValuePath); got != "A2023105,2023-04-15,42.5,NA,NA" {
		t.Fatalf("value row: %q", got)
	}
	if got := lastLine(t, v.FractionPath); got != "A2023105,2023-04-15,987,12,0" {
		t.Fatalf("fraction row: %q", got)
	}
	if !v.Has("A2023105") {
		t.Fatal("expected scene recorded in both tables")
	}
}

func TestAppendPairAppliesCeilRounding(t *testing.T) {
	v := newVariable(t, "ceil", 0)
	date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

	err := AppendPair(v, "A2023105", date, engine.Result{
		Values:    map[string]float64{"1001": 10.01},
		Fractions: map[string]int{"1001": 1000},
	})
	if err != nil {
		t.Fatalf("AppendPair: %v", err)
	}
	if got := lastLine(t, v.ValuePath); got != "A2023105,2023-04-15,11,NA,NA" {
		t.Fatalf("value row: %q", got)
	}
}

func TestAppendPairRejectsUnknownCatchment(t *testing.T) {
	v := newVariable(t, "none", 0)
	date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

	err := AppendPair(v, "A2023105", date, engine.Result{
		Values:    map[string]float64{"9999": 1},
		Fractions: map[string]int{"9999": 1000},
	})
	if !errors.Is(err, ErrUnknownCatchment) {
		t.Fatalf("expected ErrUnknownCatchment, got %v", err)
	}
	if v.Records() != 0 {
		t.Fatal("expected no row recorded")
	}
}

func TestAppendPairRejectsDuplicateScene(t *testing.T) {
	v := newVariable(t, "none", 0)
	date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)
	result := engine.Result{
		Values:    map[string]float64{"1001": 1},
		Fractions: map[string]int{"1001": 1000},
	}

	if err := AppendPair(v, "A2023105", date, result); err != nil {
		t.Fatalf("first AppendPair: %v", err)
	}
	if err := AppendPair(v, "A2023105", date, result); err == nil {
		t.Fatal("expected error for duplicate scene")
	}
	if v.Records() != 1 {
		t.Fatalf("expected 1 row, got %d", v.Records())
	}
}

func TestAppendPairRollsBackValueRowWhenFractionPersistFails(t *testing.T) {
	v := newVariable(t, "none", 0)
	date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

	// A directory at the fraction table path makes its rename fail.
	if err := os.Remove(v.FractionPath); err != nil {
		t.Fatalf("remove fraction table: %v", err)
	}
	if err := os.Mkdir(v.FractionPath, 0o755); err != nil {
		t.Fatalf("mkdir fraction path: %v", err)
	}

	err := AppendPair(v, "A2023105", date, engine.Result{
		Values:    map[string]float64{"1001": 1},
		Fractions: map[string]int{"1001": 1000},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrPairConsistency) {
		t.Fatalf("rollback succeeded, error must not be fatal: %v", err)
	}
	if v.Records() != 0 {
		t.Fatalf("expected value row rolled back, got %d records", v.Records())
	}
	if rows := tableRowCount(t, v.ValuePath); rows != 0 {
		t.Fatalf("expected persisted value table empty, got %d rows", rows)
	}
	if err := VerifyPair(v); err != nil {
		t.Fatalf("expected pair aligned after rollback: %v", err)
	}
}

func tableRowCount(t *testing.T, path string) int {
	t.Helper()
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return len(strings.Split(strings.TrimSpace(string(body)), "\n")) - 1
}

func TestVerifyPairDetectsDivergence(t *testing.T) {
	v := newVariable(t, "none", 0)
	if err := VerifyPair(v); err != nil {
		t.Fatalf("VerifyPair on empty pair: %v", err)
	}

	date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)
	if err := v.Values().Append("A2023105", date, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := VerifyPair(v); !errors.Is(err, ErrPairConsistency) {
		t.Fatalf("expected ErrPairConsistency, got %v", err)
	}
}

func TestFormatValueModes(t *testing.T) {
	cases := []struct {
		value    float64
		mode     string
		decimals int
		want     string
	}{
		{10.01, "ceil", 0, "11"},
		{10.99, "floor", 0, "10"},
		{10.5, "round", 0, "11"},
		{10.014, "ceil", 2, "10.02"},
		{10.125, "none", 0, "10.125"},
	}
	for _, c := range cases {
		if got := formatValue(c.value, c.mode, c.decimals); got != c.want {
			t.Errorf("formatValue(%v, %q, %d) = %q, want %q", c.value, c.mode, c.decimals, got, c.want)
		}
	}
}
