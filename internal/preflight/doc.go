// Package preflight validates the runtime environment before a run:
// directory permissions, input files, scratch space, and the external
// engine binary.
package preflight
