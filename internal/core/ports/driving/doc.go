// Package driving defines the interfaces the CLI, the progress view and the
// batch watcher use to run and inspect merges. These are the "driving"
// ports in hexagonal architecture terminology.
//
// Implementations of these interfaces live in internal/core/services.
package driving
