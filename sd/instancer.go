package sd

import "strings"

// Instancer yields a set of identical instances on demand. An error indicates
// a problem with the source of record; an Instancer may yield no instances
// without error.
type Instancer interface {
	Instances() ([]string, error)
}

// FixedInstancer yields a fixed set of instances.
type FixedInstancer []string

// Instances implements Instancer.
func (s FixedInstancer) Instances() ([]string, error) { return s, nil }

// ParseInstances splits a comma-separated list of instances, e.g. the value
// of an environment variable. Whitespace around entries is removed and empty
// entries are dropped, so an empty string yields an empty FixedInstancer.
func ParseInstances(s string) FixedInstancer {
	return NewFixedInstancer(strings.Split(s, ",")...)
}

// NewFixedInstancer returns a FixedInstancer holding the trimmed, non-empty
// instances. The passed slice is not retained.
func NewFixedInstancer(instances ...string) FixedInstancer {
	s := make(FixedInstancer, 0, len(instances))
	for _, instance := range instances {
		if instance = strings.TrimSpace(instance); instance != "" {
			s = append(s, instance)
		}
	}
	return s
}
