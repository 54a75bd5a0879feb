package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var roundingModes = map[string]struct{}{
	"ceil":  {},
	"floor": {},
	"round": {},
	"none":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	return c.validateProducts()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TablesDir) == "" {
		return errors.New("paths.tables_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CatchmentsFile) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/basintab/config.toml"
		}
		return fmt.Errorf("paths.catchments_file is required. Edit %s (create with 'basintab config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if strings.TrimSpace(c.Engine.Binary) == "" {
		return errors.New("engine.binary must be set")
	}
	if strings.TrimSpace(c.Engine.Script) == "" {
		return errors.New("engine.script must be set")
	}
	if c.Engine.TimeoutSeconds <= 0 {
		return errors.New("engine.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateProducts() error {
	if len(c.Products) == 0 {
		return errors.New("at least one [[product]] must be configured")
	}
	seen := make(map[string]struct{}, len(c.Products))
	for i := range c.Products {
		p := &c.Products[i]
		if p.Name == "" {
			return fmt.Errorf("product %d: name must be set", i+1)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("product %q is configured more than once", p.Name)
		}
		seen[p.Name] = struct{}{}
		if err := p.validate(); err != nil {
			return fmt.Errorf("product %q: %w", p.Name, err)
		}
	}
	return nil
}

func (p *Product) validate() error {
	if strings.TrimSpace(p.Directory) == "" {
		return errors.New("directory must be set")
	}
	if strings.TrimSpace(p.Pattern) == "" {
		return errors.New("pattern must be set")
	}
	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return fmt.Errorf("pattern must contain exactly one capture group for the scene identifier, got %d", re.NumSubexp())
	}
	if strings.TrimSpace(p.SceneLayout) == "" {
		return errors.New("scene_layout must be set")
	}
	if strings.TrimSpace(p.PolygonCatalog) == "" {
		return errors.New("polygon_catalog must be set")
	}
	if len(p.Variables) == 0 {
		return errors.New("at least one [[product.variable]] must be configured")
	}

	names := make(map[string]struct{}, len(p.Variables))
	tables := make(map[string]string, len(p.Variables)*2)
	for _, v := range p.Variables {
		if v.Name == "" {
			return errors.New("variable name must be set")
		}
		if _, dup := names[v.Name]; dup {
			return fmt.Errorf("variable %q is configured more than once", v.Name)
		}
		names[v.Name] = struct{}{}
		if v.ValueTable == "" {
			return fmt.Errorf("variable %q: value_table must be set", v.Name)
		}
		if v.FractionTable == "" {
			return fmt.Errorf("variable %q: fraction_table must be set", v.Name)
		}
		if v.ValueTable == v.FractionTable {
			return fmt.Errorf("variable %q: value_table and fraction_table must differ", v.Name)
		}
		for _, table := range []string{v.ValueTable, v.FractionTable} {
			if owner, dup := tables[table]; dup {
				return fmt.Errorf("table %q is claimed by both %q and %q", table, owner, v.Name)
			}
			tables[table] = v.Name
		}
		if _, ok := roundingModes[v.Rounding]; !ok {
			return fmt.Errorf("variable %q: rounding must be one of ceil, floor, round, none", v.Name)
		}
	}
	return nil
}
