package main

import (
	"os"
	"strings"
	"testing"

	"basintab/internal/testsupport"
)

const stubResult = `catchment_id,value,valid_fraction
1001,42.5,1000
1002,17.25,850
1003,NA,0
`

func TestPendingCommandWithEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"pending", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	requireContains(t, out, "Nothing pending for test")
}

func TestExtractCommandRecordsScenes(t *testing.T) {
	env := setupCLITestEnv(t)
	writeStubEngine(t, env, stubResult)
	testsupport.WriteScene(t, env.cfg, "A2023105")

	out, _, err := runCLI(t, []string{"extract", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Succeeded")

	body, err := os.ReadFile(env.cfg.TablePath("ndvi.csv"))
	if err != nil {
		t.Fatalf("read value table: %v", err)
	}
	if !strings.Contains(string(body), "A2023105,2023-04-15,42.5,17.25,NA") {
		t.Fatalf("unexpected value table:\n%s", body)
	}

	// A second extraction finds nothing pending.
	out, _, err = runCLI(t, []string{"pending", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("pending after extract: %v", err)
	}
	requireContains(t, out, "Nothing pending for test (1 scenes already extracted)")
}

func TestStatusCommandReportsRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	writeStubEngine(t, env, stubResult)
	testsupport.WriteScene(t, env.cfg, "A2023105")

	if _, _, err := runCLI(t, []string{"extract", "test"}, env.configPath); err != nil {
		t.Fatalf("extract: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Catalog tables")
	requireContains(t, out, "ndvi")
	requireContains(t, out, "Recent runs")
	requireContains(t, out, "test")
}

func TestCheckCommandFlagsMissingEngine(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Engine.Binary = "definitely-not-installed"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	requireContains(t, out, "Engine")
}
