// Package timeutil provides the timestamp helpers shared by token claims:
// offset timestamps relative to now and the fixed UTC rendering used by
// the formatted claim accessors.
package timeutil
