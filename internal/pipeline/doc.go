// Package pipeline chains the analysis stages end to end: primitive index,
// candidate-edge expansion, typed graph, the three structural analyzers,
// and the combo skeleton and candidate lift. One Run is a single pass over
// immutable inputs producing an immutable Result; it holds no shared state
// and cannot fail. Malformed configuration falls back to defaults and
// structural problems surface only through the separate Validate pass,
// which returns a machine-readable report instead of an error.
package pipeline
