// Package runner drives one incremental extraction pass for a product: it
// reconciles available scenes against the catalog tables, invokes the engine
// for each pending scene and variable, and merges the results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"basintab/internal/config"
	"basintab/internal/engine"
	"basintab/internal/journal"
	"basintab/internal/logging"
	"basintab/internal/merge"
	"basintab/internal/reconcile"
	"basintab/internal/scene"
	"basintab/internal/variable"
)

var (
	// ErrLocked marks a product whose lock another process holds.
	ErrLocked = errors.New("another run holds the product lock")
	// ErrUnknownProduct marks a product name absent from configuration.
	ErrUnknownProduct = errors.New("unknown product")
)

// Runner executes extraction runs. The journal store is optional; a nil
// store disables run history.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor engine.Extractor
	store     *journal.Store
}

// New constructs a runner.
func New(cfg *config.Config, logger *slog.Logger, extractor engine.Extractor, store *journal.Store) *Runner {
	return &Runner{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "runner"),
		extractor: extractor,
		store:     store,
	}
}

// Summary is the outcome of one run. Scene counters are per scene: a scene
// succeeds only when every variable extraction for it succeeded this run.
type Summary struct {
	RunID      string
	Product    string
	Available  int
	Pending    int
	Attempted  int
	Succeeded  int
	Failed     int
	Incomplete int
	Malformed  int
}

// Run performs one extraction pass over a product. limit restricts the run
// to the earliest pending scenes when positive. Scene-scoped failures are
// logged and skipped; a broken table pair aborts the run.
func (r *Runner) Run(ctx context.Context, productName string, limit int) (Summary, error) {
	product, ok := r.cfg.ProductByName(productName)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productName)
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return Summary{}, err
	}

	lock := flock.New(r.cfg.LockPath(product.Name))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire product lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	ctx = logging.WithProduct(ctx, product.Name)

	variables, err := r.loadVariables(product)
	if err != nil {
		return Summary{}, err
	}

	listing, pending, err := r.pendingScenes(product, variables, limit)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Product:    product.Name,
		Available:  len(listing.Scenes),
		Pending:    len(pending),
		Incomplete: len(listing.Incomplete),
		Malformed:  len(listing.Malformed),
	}
	if summary.Incomplete > 0 {
		r.logger.Warn("scenes awaiting missing tiles",
			logging.String(logging.FieldProduct, product.Name),
			logging.Int("count", summary.Incomplete))
	}
	if summary.Malformed > 0 {
		r.logger.Warn("files with unparseable scene identifiers",
			logging.String(logging.FieldProduct, product.Name),
			logging.Int("count", summary.Malformed))
	}

	if r.store != nil {
		runID, err := r.store.BeginRun(ctx, product.Name)
		if err != nil {
			return Summary{}, err
		}
		summary.RunID = runID
		ctx = logging.WithRunID(ctx, runID)
	}

	runErr := r.processScenes(ctx, product, variables, pending, &summary)

	if r.store != nil && summary.RunID != "" {
		if err := r.store.FinishRun(ctx, summary.RunID, summary.Attempted, summary.Succeeded, summary.Failed); err != nil {
			r.logger.Warn("record run completion", logging.Error(err))
		}
	}

	logging.WithContext(ctx, r.logger).Info("run complete",
		logging.Int("available", summary.Available),
		logging.Int("pending", summary.Pending),
		logging.Int("attempted", summary.Attempted),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed))
	return summary, runErr
}

// loadVariables loads every table pair of the product and verifies pair
// alignment before any extraction starts.
func (r *Runner) loadVariables(product *config.Product) ([]*variable.Variable, error) {
	universe, err := variable.ReadUniverse(r.cfg.Paths.CatchmentsFile)
	if err != nil {
		return nil, fmt.Errorf("read catchment universe: %w", err)
	}

	variables := make([]*variable.Variable, 0, len(product.Variables))
	for _, vc := range product.Variables {
		v := variable.New(vc, r.cfg)
		if err := v.Load(universe); err != nil {
			return nil, err
		}
		if err := merge.VerifyPair(v); err != nil {
			return nil, err
		}
		variables = append(variables, v)
	}
	return variables, nil
}

// pendingScenes lists the product directory and diffs complete scenes
// against the intersection of all variable key sets. A scene counts as done
// only when every variable holds it.
func (r *Runner) pendingScenes(product *config.Product, variables []*variable.Variable, limit int) (scene.Listing, []scene.Scene, error) {
	locator, err := scene.NewLocator(product.Pattern, product.SceneLayout, product.TilesPerScene)
	if err != nil {
		return scene.Listing{}, nil, err
	}
	listing, err := locator.List(product.Directory)
	if err != nil {
		return scene.Listing{}, nil, err
	}

	sets := make([]map[string]struct{}, 0, len(variables))
	for _, v := range variables {
		sets = append(sets, reconcile.Intersect(v.Values().KeySet(), v.Fractions().KeySet()))
	}
	done := reconcile.Intersect(sets...)
	return listing, reconcile.Pending(done, listing.Scenes, limit), nil
}

func (r *Runner) processScenes(ctx context.Context, product *config.Product, variables []*variable.Variable, pending []scene.Scene, summary *Summary) error {
	for _, s := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Attempted++
		sceneCtx := logging.WithScene(ctx, s.ID)
		logger := logging.WithContext(sceneCtx, r.logger)

		sceneFailed := false
		for _, v := range variables {
			if v.Has(s.ID) {
				r.recordEvent(sceneCtx, summary.RunID, s.ID, v.Name, journal.OutcomeSkipped, "", 0)
				continue
			}
			if err := r.extractOne(sceneCtx, product, v, s, summary.RunID); err != nil {
				if errors.Is(err, merge.ErrPairConsistency) {
					summary.Failed++
					return err
				}
				logger.Error("scene extraction failed",
					logging.String(logging.FieldVariable, v.Name),
					logging.Error(err))
				sceneFailed = true
			}
		}
		if sceneFailed {
			summary.Failed++
		} else {
			summary.Succeeded++
			logger.Info("scene extracted", logging.String("date", s.Date.Format("2006-01-02")))
		}
	}
	return nil
}

// extractOne runs the engine for a single scene and variable and merges the
// result into the variable's table pair.
func (r *Runner) extractOne(ctx context.Context, product *config.Product, v *variable.Variable, s scene.Scene, runID string) error {
	start := time.Now()
	result, err := r.extractor.Extract(ctx, s.Files, product.PolygonCatalog, v.EngineArgs)
	if err != nil {
		r.recordEvent(ctx, runID, s.ID, v.Name, journal.OutcomeFailed, err.Error(), time.Since(start))
		return err
	}
	if err := merge.AppendPair(v, s.ID, s.Date, result); err != nil {
		r.recordEvent(ctx, runID, s.ID, v.Name, journal.OutcomeFailed, err.Error(), time.Since(start))
		return err
	}
	elapsed := time.Since(start)
	r.recordEvent(ctx, runID, s.ID, v.Name, journal.OutcomeExtracted, "", elapsed)
	if err := appendRunLog(r.cfg.RunLogPath(product.Name, v.Name), s.ID, v.ValuePath, elapsed); err != nil {
		r.logger.Warn("write run log", logging.Error(err))
	}
	return nil
}

func (r *Runner) recordEvent(ctx context.Context, runID, sceneID, variableName, outcome, detail string, elapsed time.Duration) {
	if r.store == nil || runID == "" {
		return
	}
	err := r.store.RecordScene(ctx, journal.SceneEvent{
		RunID:    runID,
		SceneID:  sceneID,
		Variable: variableName,
		Outcome:  outcome,
		Detail:   detail,
		Duration: elapsed,
	})
	if err != nil {
		r.logger.Warn("record scene event", logging.Error(err))
	}
}
