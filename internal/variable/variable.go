package variable

import (
	"fmt"

	"basintab/internal/catalog"
	"basintab/internal/config"
)

// Variable binds one extracted quantity to its pair of catalog tables. The
// tables are loaded lazily on first access and cached for the lifetime of
// the process; merge appends are the only mutations after that.
type Variable struct {
	Name         string
	ValuePath    string
	FractionPath string
	EngineArgs   []string
	Rounding     string
	Decimals     int

	loaded    bool
	values    *catalog.Table
	fractions *catalog.Table
}

// New builds a Variable from its config block, resolving table paths.
func New(cfg config.Variable, root *config.Config) *Variable {
	return &Variable{
		Name:         cfg.Name,
		ValuePath:    root.TablePath(cfg.ValueTable),
		FractionPath: root.TablePath(cfg.FractionTable),
		EngineArgs:   append([]string{}, cfg.EngineArgs...),
		Rounding:     cfg.Rounding,
		Decimals:     cfg.Decimals,
	}
}

// Load reads both tables, creating them with the given catchment universe
// when absent, and registers universe entries existing tables do not have
// yet. Calling Load again is a no-op.
func (v *Variable) Load(universe []string) error {
	if v.loaded {
		return nil
	}
	values, err := catalog.Load(v.ValuePath, universe, catalog.Sentinel)
	if err != nil {
		return fmt.Errorf("variable %s: %w", v.Name, err)
	}
	fractions, err := catalog.Load(v.FractionPath, universe, catalog.FractionFill)
	if err != nil {
		return fmt.Errorf("variable %s: %w", v.Name, err)
	}

	if added := values.RegisterCatchments(universe); added > 0 {
		if err := values.Persist(); err != nil {
			return fmt.Errorf("variable %s: persist new catchments: %w", v.Name, err)
		}
	}
	if added := fractions.RegisterCatchments(universe); added > 0 {
		if err := fractions.Persist(); err != nil {
			return fmt.Errorf("variable %s: persist new catchments: %w", v.Name, err)
		}
	}

	v.values = values
	v.fractions = fractions
	v.loaded = true
	return nil
}

// Values returns the value table. Load must have succeeded first.
func (v *Variable) Values() *catalog.Table { return v.values }

// Fractions returns the valid-fraction table. Load must have succeeded first.
func (v *Variable) Fractions() *catalog.Table { return v.fractions }

// Has reports whether both tables already hold the scene.
func (v *Variable) Has(sceneID string) bool {
	return v.values.HasKey(sceneID) && v.fractions.HasKey(sceneID)
}

// Records returns the number of observations in the value table.
func (v *Variable) Records() int {
	if v.values == nil {
		return 0
	}
	return v.values.Len()
}
