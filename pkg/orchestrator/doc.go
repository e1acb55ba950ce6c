// Package orchestrator runs an interactive session over a set of form
// definitions: each definition is bound into a coordinator, filled through a
// prompt filler and finally submitted as a whole.
package orchestrator
