// Package testutil provides deterministic test doubles for the catalog:
// a gated data source for controlling load completion order and a fixed
// load token generator.
package testutil
