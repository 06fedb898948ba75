// Package harness runs YAML scenarios against the catalog store.
//
// A scenario names one or more book catalogs and a list of steps (load,
// sort_by, select, clear_selection, restart). After each step the harness
// records a Snapshot of the derived views and checks the step's optional
// expectations. Traces can be compared against golden files with
// RunWithGolden.
//
// Restart closes the store and builds a new one over the same in-memory
// preferences, which exercises sort preference persistence across sessions.
package harness
