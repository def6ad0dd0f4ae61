package cmap

import "errors"

var (
	// ErrNotFound is returned by At when the key is absent.
	ErrNotFound = errors.New("cmap: key not found")
)
