package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// ErrAmbiguousScene marks a naming collision: two files in one product
// directory resolving to the same scene identifier when the product expects
// a single file per scene.
var ErrAmbiguousScene = errors.New("ambiguous scene")

// Scene is one timestamped raster product instance: the identifier captured
// from the file names, its acquisition date, and the files carrying it
// (several for tiled products).
type Scene struct {
	ID    string
	Date  time.Time
	Files []string
}

// Listing is the outcome of scanning one product directory.
type Listing struct {
	// Scenes holds the complete scenes in ascending date order.
	Scenes []Scene
	// Incomplete lists identifiers with fewer files than the product's tile
	// count; they are expected to complete on a later download pass.
	Incomplete []string
	// Overpopulated lists identifiers with more files than the tile count.
	Overpopulated []string
	// Malformed lists file names whose captured identifier did not parse as
	// a date under the product's layout.
	Malformed []string
}

// Locator scans product directories for scenes. The pattern must carry
// exactly one capture group (the scene identifier); layout is the Go time
// layout the identifier parses with; tilesPerScene is the number of files
// that make a scene complete.
type Locator struct {
	pattern *regexp.Regexp
	layout  string
	tiles   int
}

// NewLocator compiles a locator from product configuration.
func NewLocator(pattern, layout string, tilesPerScene int) (*Locator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("scene pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("scene pattern must have exactly one capture group, got %d", re.NumSubexp())
	}
	if tilesPerScene <= 0 {
		tilesPerScene = 1
	}
	return &Locator{pattern: re, layout: layout, tiles: tilesPerScene}, nil
}

// List scans dir and groups recognized files into scenes, sorted ascending
// by acquisition date. Files that do not match the pattern are skipped.
// A duplicate identifier in a single-file product is an ErrAmbiguousScene.
func (l *Locator) List(dir string) (Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Listing{}, fmt.Errorf("read product directory: %w", err)
	}

	grouped := make(map[string][]string)
	dates := make(map[string]time.Time)
	var listing Listing
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		match := l.pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		id := match[1]
		if _, known := dates[id]; !known {
			date, err := time.Parse(l.layout, id)
			if err != nil {
				listing.Malformed = append(listing.Malformed, name)
				continue
			}
			dates[id] = date
		}
		grouped[id] = append(grouped[id], filepath.Join(dir, name))
	}

	for id, files := range grouped {
		switch {
		case len(files) < l.tiles:
			listing.Incomplete = append(listing.Incomplete, id)
		case len(files) > l.tiles:
			if l.tiles == 1 {
				return Listing{}, fmt.Errorf("%w: identifier %q matches %d files in %s", ErrAmbiguousScene, id, len(files), dir)
			}
			listing.Overpopulated = append(listing.Overpopulated, id)
		default:
			sort.Strings(files)
			listing.Scenes = append(listing.Scenes, Scene{ID: id, Date: dates[id], Files: files})
		}
	}

	sort.Slice(listing.Scenes, func(i, j int) bool {
		a, b := listing.Scenes[i], listing.Scenes[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	sort.Strings(listing.Incomplete)
	sort.Strings(listing.Overpopulated)
	sort.Strings(listing.Malformed)
	return listing, nil
}
