// Package thermal owns the temperature grid model and ROI statistics.
//
// Responsibilities: the immutable float32 temperature grid, rectangle
// normalisation, sanitisation of invalid readings, and the ROI statistics
// engine (mean/min/max with extremum positions in global image coordinates).
// Key types: Grid, Rect, ValidityRange, Result, Analyzer.
//
// Dependency rule: no file, network or rendering code is allowed in this
// package. Loading lives in rawgrid, presentation lives in render.
package thermal
