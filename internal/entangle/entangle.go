// Package entangle keeps the coupling strength and phase between named
// semantic domains. Couplings are symmetric: (a, b) and (b, a) address the
// same entry. Unknown pairs read as the zero coupling.
package entangle

import (
	"math"
	"sort"
	"sync"
)

// Domain names a semantic category a field or belief represents.
type Domain string

// Coupling is the relationship between two domains.
type Coupling struct {
	Strength float64 `json:"strength" yaml:"strength"`
	Phase    float64 `json:"phase" yaml:"phase"`
}

// Reader is the read-only view synthesizers consume.
type Reader interface {
	Coupling(a, b Domain) Coupling
}

// Overlay is one stored coupling with its canonical domain pair.
type Overlay struct {
	DomainA  Domain   `json:"domain_a"`
	DomainB  Domain   `json:"domain_b"`
	Coupling Coupling `json:"coupling"`
}

type pair struct {
	a, b Domain
}

// canonical orders the pair so the lexicographically smaller domain is first.
func canonical(a, b Domain) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// Map is the entanglement registry. It is safe for concurrent use.
type Map struct {
	mu        sync.RWMutex
	couplings map[pair]Coupling
}

// New returns an empty map.
func New() *Map {
	return &Map{couplings: make(map[pair]Coupling)}
}

// Coupling returns the coupling for the pair, or the zero coupling.
func (m *Map) Coupling(a, b Domain) Coupling {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.couplings[canonical(a, b)]
}

// UpdateCoupling accumulates delta into the pair's coupling, creating it
// if absent. The phase is wrapped to (-π, π].
func (m *Map) UpdateCoupling(a, b Domain, delta Coupling) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := canonical(a, b)
	c := m.couplings[key]
	c.Strength += delta.Strength
	c.Phase = wrapPhase(c.Phase + delta.Phase)
	m.couplings[key] = c
}

// Len returns the number of stored couplings.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.couplings)
}

// Pairs returns every stored coupling sorted by domain pair.
func (m *Map) Pairs() []Overlay {
	m.mu.RLock()
	out := make([]Overlay, 0, len(m.couplings))
	for k, c := range m.couplings {
		out = append(out, Overlay{DomainA: k.a, DomainB: k.b, Coupling: c})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DomainA != out[j].DomainA {
			return out[i].DomainA < out[j].DomainA
		}
		return out[i].DomainB < out[j].DomainB
	})
	return out
}

func wrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p <= -math.Pi {
		p += 2 * math.Pi
	} else if p > math.Pi {
		p -= 2 * math.Pi
	}
	return p
}
