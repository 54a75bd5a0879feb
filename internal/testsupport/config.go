package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"basintab/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test,
// a three-catchment universe file, and one single-tile product named "test"
// with an "ndvi" variable. Options adjust it from there.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TablesDir = filepath.Join(base, "tables")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.CatchmentsFile = filepath.Join(base, "catchments.txt")
	cfgVal.Engine.Script = filepath.Join(base, "extract.R")

	sceneDir := filepath.Join(base, "scenes")
	if err := os.MkdirAll(sceneDir, 0o755); err != nil {
		t.Fatalf("mkdir scene dir: %v", err)
	}
	cfgVal.Products = []config.Product{{
		Name:           "test",
		Directory:      sceneDir,
		Pattern:        `^scene\.(A\d{7})\.tif$`,
		SceneLayout:    "A2006002",
		TilesPerScene:  1,
		PolygonCatalog: filepath.Join(base, "basins.gpkg"),
		Variables: []config.Variable{{
			Name:          "ndvi",
			ValueTable:    "ndvi.csv",
			FractionTable: "ndvi_pc.csv",
			Rounding:      "none",
		}},
	}}

	WriteCatchments(t, cfgVal.Paths.CatchmentsFile, "1001", "1002", "1003")
	WriteFile(t, cfgVal.Products[0].PolygonCatalog, 1)
	WriteFile(t, cfgVal.Engine.Script, 1)

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithCatchments replaces the generated catchment universe.
func WithCatchments(ids ...string) ConfigOption {
	return func(b *configBuilder) {
		WriteCatchments(b.t, b.cfg.Paths.CatchmentsFile, ids...)
	}
}

// WithVariables replaces the variable blocks of the test product.
func WithVariables(variables ...config.Variable) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Products[0].Variables = variables
	}
}

// WriteCatchments writes a catchment universe file with one id per line.
func WriteCatchments(t testing.TB, path string, ids ...string) {
	t.Helper()
	body := strings.Join(ids, "\n") + "\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteScene creates an empty raster file for a scene identifier in the test
// product's directory.
func WriteScene(t testing.TB, cfg *config.Config, sceneID string) string {
	t.Helper()
	path := filepath.Join(cfg.Products[0].Directory, "scene."+sceneID+".tif")
	WriteFile(t, path, 1)
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TablesDir)
}
