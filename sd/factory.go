package sd

import "io"

// Factory is a function that converts an instance string (e.g. host:port) to
// a handle of type T. It also returns an io.Closer that's invoked when the
// handle is superseded or its owner shuts down. Users are expected to provide
// their own factory functions that assume specific transports.
type Factory[T any] func(instance string) (T, io.Closer, error)
