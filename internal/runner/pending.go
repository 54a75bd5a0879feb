package runner

import (
	"fmt"

	"basintab/internal/scene"
)

// PendingReport describes what a run would do without performing it.
type PendingReport struct {
	Product       string
	Scenes        []scene.Scene
	Done          int
	Incomplete    []string
	Overpopulated []string
	Malformed     []string
}

// Pending lists the scenes a run for the product would extract. It takes no
// lock; the only write it can perform is creating missing tables.
func (r *Runner) Pending(productName string, limit int) (PendingReport, error) {
	product, ok := r.cfg.ProductByName(productName)
	if !ok {
		return PendingReport{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productName)
	}

	variables, err := r.loadVariables(product)
	if err != nil {
		return PendingReport{}, err
	}
	listing, pending, err := r.pendingScenes(product, variables, limit)
	if err != nil {
		return PendingReport{}, err
	}

	return PendingReport{
		Product:       product.Name,
		Scenes:        pending,
		Done:          len(listing.Scenes) - len(pending),
		Incomplete:    listing.Incomplete,
		Overpopulated: listing.Overpopulated,
		Malformed:     listing.Malformed,
	}, nil
}
