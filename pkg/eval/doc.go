// Package eval measures next-character models against held-out examples and
// searches hyperparameter grids for the most accurate configuration.
package eval
