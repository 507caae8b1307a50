// Package logging builds the process slog logger and provides the attribute
// helpers and context plumbing used across components.
package logging
