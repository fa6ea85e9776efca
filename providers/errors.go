package providers

import "errors"

// ErrNoBackend is returned when the configuration resolves to no usable
// database backend at all.
var ErrNoBackend = errors.New("no database backend is configured")
