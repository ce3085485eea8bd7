package lb

import "github.com/pkg/errors"

// Picker yields instances according to some heuristic.
type Picker interface {
	Instance() (string, error)
}

// ErrNoInstances is returned when no qualifying instances are available.
var ErrNoInstances = errors.New("no instances available")
