package engine

import (
	"context"
	"errors"
)

var (
	// ErrInvocation marks engine processes that failed to start or exited
	// non-zero. Scene-scoped: the scene is retried on a later run.
	ErrInvocation = errors.New("engine invocation error")
	// ErrOutput marks missing, empty, or unparseable engine output files.
	ErrOutput = errors.New("engine output error")
)

// Result is the outcome of one engine invocation. Values maps catchment
// identifiers to the aggregated raster statistic; Fractions maps them to the
// coverage-weighted fraction of non-missing cells, fixed-point 0-1000.
// Catchments the engine reported without a usable value appear only in
// Fractions.
type Result struct {
	Values    map[string]float64
	Fractions map[string]int
}

// Extractor is the capability the run controller needs from the
// areal-statistics engine. Implementations block until the engine returns.
type Extractor interface {
	Extract(ctx context.Context, rasterPaths []string, polygonPath string, args []string) (Result, error)
}
