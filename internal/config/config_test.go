package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"basintab/internal/config"
)

const minimalConfig = `
[paths]
tables_dir = "%s/tables"
log_dir = "%s/logs"
temp_dir = "%s/tmp"
catchments_file = "%s/catchments.txt"

[engine]
script = "%s/extract.R"

[[product]]
name = "mod13q1"
directory = "%s/scenes"
pattern = '^MOD13Q1\.(A\d{7})\..*\.hdf$'
scene_layout = "A2006002"
tiles_per_scene = 9
polygon_catalog = "%s/catchments.shp"

  [[product.variable]]
  name = "ndvi"
  value_table = "ndvi.csv"
  fraction_table = "ndvi_pc.csv"
  engine_args = ["250m 16 days NDVI"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	base := t.TempDir()
	body = strings.ReplaceAll(body, "%s", base)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesProductsAndExpandsPaths(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if !filepath.IsAbs(cfg.Paths.TablesDir) {
		t.Fatalf("expected absolute tables dir, got %q", cfg.Paths.TablesDir)
	}
	if cfg.Engine.Binary != "Rscript" {
		t.Fatalf("expected default engine binary, got %q", cfg.Engine.Binary)
	}
	if cfg.Engine.TimeoutSeconds != 3600 {
		t.Fatalf("unexpected engine timeout: %d", cfg.Engine.TimeoutSeconds)
	}

	product, ok := cfg.ProductByName("mod13q1")
	if !ok {
		t.Fatal("expected mod13q1 product")
	}
	if product.TilesPerScene != 9 {
		t.Fatalf("unexpected tiles per scene: %d", product.TilesPerScene)
	}
	if len(product.Variables) != 1 {
		t.Fatalf("expected one variable, got %d", len(product.Variables))
	}
	if product.Variables[0].Rounding != "ceil" {
		t.Fatalf("expected default rounding ceil, got %q", product.Variables[0].Rounding)
	}

	want := filepath.Join(cfg.Paths.TablesDir, "ndvi.csv")
	if got := cfg.TablePath(product.Variables[0].ValueTable); got != want {
		t.Fatalf("unexpected table path: got %q want %q", got, want)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
}

func TestLoadRejectsPatternWithoutCaptureGroup(t *testing.T) {
	body := strings.Replace(minimalConfig, `'^MOD13Q1\.(A\d{7})\..*\.hdf$'`, `'^MOD13Q1\.A\d{7}\..*\.hdf$'`, 1)
	path := writeConfig(t, body)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for pattern without capture group")
	}
	if !strings.Contains(err.Error(), "capture group") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsDuplicateVariableTables(t *testing.T) {
	body := minimalConfig + `
  [[product.variable]]
  name = "evi"
  value_table = "ndvi.csv"
  fraction_table = "evi_pc.csv"
`
	path := writeConfig(t, body)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for duplicate table assignment")
	}
}

func TestLoadRejectsUnknownRounding(t *testing.T) {
	path := writeConfig(t, minimalConfig+"  rounding = \"truncate\"\n")

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unknown rounding mode")
	}
	if !strings.Contains(err.Error(), "rounding") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRequiresCatchmentsFile(t *testing.T) {
	body := strings.Replace(minimalConfig, "catchments_file", "# catchments_file", 1)
	path := writeConfig(t, body)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error when catchments_file missing")
	}
	if !strings.Contains(err.Error(), "catchments_file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[[product]]") {
		t.Fatal("expected sample to include a product block")
	}
}
