package lb

import (
	"math/rand"
	"sync"

	"github.com/grapl-security/graphkit/sd"
)

// Rand is the source of randomness used by the random picker. It returns a
// uniformly distributed int in [0, n). *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// NewRandom returns a picker that selects instances randomly.
func NewRandom(s sd.Instancer, seed int64) Picker {
	return NewRandomFrom(s, rand.New(rand.NewSource(seed)))
}

// NewRandomFrom returns a picker that selects instances randomly, drawing
// from r. Calls to r are serialized, so r need not be safe for concurrent use.
func NewRandomFrom(s sd.Instancer, r Rand) Picker {
	return &random{
		s: s,
		r: r,
	}
}

type random struct {
	s sd.Instancer

	mtx sync.Mutex
	r   Rand
}

func (r *random) Instance() (string, error) {
	instances, err := r.s.Instances()
	if err != nil {
		return "", err
	}
	if len(instances) <= 0 {
		return "", ErrNoInstances
	}
	r.mtx.Lock()
	idx := r.r.Intn(len(instances))
	r.mtx.Unlock()
	return instances[idx], nil
}
