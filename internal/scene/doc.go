// Package scene discovers raster product instances in a directory by
// extracting a canonical scene identifier from each file name. Identifiers
// double as the row keys of the catalog tables, so discovery is the single
// source of what can be extracted.
package scene
