package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration shared by every product.
type Paths struct {
	TablesDir      string `toml:"tables_dir"`
	LogDir         string `toml:"log_dir"`
	TempDir        string `toml:"temp_dir"`
	CatchmentsFile string `toml:"catchments_file"`
}

// Engine contains the areal-statistics engine invocation settings.
type Engine struct {
	Binary         string   `toml:"binary"`
	Script         string   `toml:"script"`
	ExtraArgs      []string `toml:"extra_args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Variable binds one extracted quantity to its table pair and the engine
// arguments that select it (band, layer, aggregation).
type Variable struct {
	Name          string   `toml:"name"`
	ValueTable    string   `toml:"value_table"`
	FractionTable string   `toml:"fraction_table"`
	EngineArgs    []string `toml:"engine_args"`
	Rounding      string   `toml:"rounding"`
	Decimals      int      `toml:"decimals"`
}

// Product describes one raster product directory and the variables
// extracted from it.
type Product struct {
	Name           string     `toml:"name"`
	Directory      string     `toml:"directory"`
	Pattern        string     `toml:"pattern"`
	SceneLayout    string     `toml:"scene_layout"`
	TilesPerScene  int        `toml:"tiles_per_scene"`
	PolygonCatalog string     `toml:"polygon_catalog"`
	Variables      []Variable `toml:"variable"`
}

// Config encapsulates all configuration values for basintab.
//
// Configuration sections:
//   - Paths: table, log, and temp directories plus the catchment universe file
//   - Engine: external areal-statistics engine command
//   - Logging: log format and level
//   - Products: one [[product]] block per raster product, each with nested
//     [[product.variable]] blocks
type Config struct {
	Paths    Paths     `toml:"paths"`
	Engine   Engine    `toml:"engine"`
	Logging  Logging   `toml:"logging"`
	Products []Product `toml:"product"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/basintab/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("basintab.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TablesDir, c.Paths.LogDir, c.Paths.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProductByName returns the product with the given name.
func (c *Config) ProductByName(name string) (*Product, bool) {
	name = strings.TrimSpace(name)
	for i := range c.Products {
		if c.Products[i].Name == name {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// TablePath resolves a table path from a variable block: absolute paths pass
// through, relative paths land under tables_dir.
func (c *Config) TablePath(table string) string {
	if filepath.IsAbs(table) {
		return table
	}
	return filepath.Join(c.Paths.TablesDir, table)
}

// RunLogPath returns the append-only extraction log path for a variable.
func (c *Config) RunLogPath(productName, variableName string) string {
	return filepath.Join(c.Paths.LogDir, fmt.Sprintf("%s_%s.log", productName, variableName))
}

// LockPath returns the single-writer lock file path for a product.
func (c *Config) LockPath(productName string) string {
	return filepath.Join(c.Paths.LogDir, productName+".lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
