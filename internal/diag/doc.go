// Package diag defines diagnostic descriptors, reported diagnostics and the
// sink rules report into.
package diag
