// Package logging centralizes slog construction and the structured field
// vocabulary used across basintab: component, product, scene, and run
// identifiers. It provides a console handler for interactive use, a JSON
// handler for log shipping, and a no-op logger for tests.
package logging
