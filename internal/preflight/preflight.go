package preflight

import (
	"context"
	"fmt"

	"basintab/internal/config"
	"basintab/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config: directory
// access, input files, scratch space, and the engine binary.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Tables directory", cfg.Paths.TablesDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckFileReadable("Catchment universe", cfg.Paths.CatchmentsFile),
		CheckFileReadable("Engine script", cfg.Engine.Script),
		CheckTempSpace(cfg.Paths.TempDir),
	}

	for _, product := range cfg.Products {
		results = append(results,
			CheckDirectoryAccess(fmt.Sprintf("Product %s directory", product.Name), product.Directory),
			CheckFileReadable(fmt.Sprintf("Product %s polygon catalog", product.Name), product.PolygonCatalog))
	}
	return results
}

// CheckSystemDeps evaluates the external commands a run needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "Engine",
			Command:     cfg.Engine.Binary,
			Description: "Required for zonal statistics extraction",
		},
	})
}

// AllPassed reports whether every result succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
