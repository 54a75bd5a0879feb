// Package engine runs the external areal-statistics engine as a subprocess
// and parses its per-catchment output table.
package engine
