package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	c.normalizeLogging()
	return c.normalizeProducts()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.TablesDir, err = expandPath(c.Paths.TablesDir); err != nil {
		return fmt.Errorf("paths.tables_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.CatchmentsFile, err = expandPath(c.Paths.CatchmentsFile); err != nil {
		return fmt.Errorf("paths.catchments_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() error {
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	var err error
	if c.Engine.Script, err = expandPath(strings.TrimSpace(c.Engine.Script)); err != nil {
		return fmt.Errorf("engine.script: %w", err)
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeProducts() error {
	for i := range c.Products {
		p := &c.Products[i]
		p.Name = strings.TrimSpace(p.Name)
		var err error
		if p.Directory, err = expandPath(strings.TrimSpace(p.Directory)); err != nil {
			return fmt.Errorf("product %q directory: %w", p.Name, err)
		}
		if p.PolygonCatalog, err = expandPath(strings.TrimSpace(p.PolygonCatalog)); err != nil {
			return fmt.Errorf("product %q polygon_catalog: %w", p.Name, err)
		}
		if p.TilesPerScene <= 0 {
			p.TilesPerScene = defaultTilesPerScene
		}
		for j := range p.Variables {
			v := &p.Variables[j]
			v.Name = strings.TrimSpace(v.Name)
			v.ValueTable = strings.TrimSpace(v.ValueTable)
			v.FractionTable = strings.TrimSpace(v.FractionTable)
			v.Rounding = strings.ToLower(strings.TrimSpace(v.Rounding))
			if v.Rounding == "" {
				v.Rounding = defaultRounding
			}
			if v.Decimals < 0 {
				v.Decimals = 0
			}
		}
	}
	return nil
}
