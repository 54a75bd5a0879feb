package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"basintab/internal/config"
	"basintab/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)

	configPath := filepath.Join(homeDir, ".config", "basintab", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	product := cfg.Products[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "[paths]\ntables_dir = %q\nlog_dir = %q\ntemp_dir = %q\ncatchments_file = %q\n\n",
		cfg.Paths.TablesDir, cfg.Paths.LogDir, cfg.Paths.TempDir, cfg.Paths.CatchmentsFile)
	fmt.Fprintf(&sb, "[engine]\nbinary = %q\nscript = %q\nextra_args = []\n\n",
		cfg.Engine.Binary, cfg.Engine.Script)
	fmt.Fprintf(&sb, "[[product]]\nname = %q\ndirectory = %q\npattern = '%s'\nscene_layout = %q\npolygon_catalog = %q\n\n",
		product.Name, product.Directory, product.Pattern, product.SceneLayout, product.PolygonCatalog)
	for _, v := range product.Variables {
		fmt.Fprintf(&sb, "[[product.variable]]\nname = %q\nvalue_table = %q\nfraction_table = %q\nrounding = %q\n\n",
			v.Name, v.ValueTable, v.FractionTable, v.Rounding)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeStubEngine replaces the engine with a shell script that copies a
// canned result table to the output path.
func writeStubEngine(t *testing.T, env *cliTestEnv, resultCSV string) {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\ncat <<'EOF' > \"$3\"\n%sEOF\n", resultCSV)
	if err := os.WriteFile(env.cfg.Engine.Script, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub engine: %v", err)
	}
	env.cfg.Engine.Binary = "/bin/sh"
	writeTestConfig(t, env.configPath, env.cfg)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
