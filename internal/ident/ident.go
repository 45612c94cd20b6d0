// Package ident supplies run and proposal identifiers. The source is
// injected so tests can use a deterministic sequence.
package ident

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Source yields identifiers for runs and proposal documents.
type Source interface {
	NewID() string
	ProposalNumber(t time.Time) string
}

// Random is the production source, uuid-backed.
type Random struct{}

// NewID returns a fresh uuid string.
func (Random) NewID() string {
	return uuid.New().String()
}

// ProposalNumber returns an id like SG-202608-3FA2B1.
func (Random) ProposalNumber(t time.Time) string {
	return fmt.Sprintf("SG-%s-%s", t.Format("200601"), strings.ToUpper(uuid.New().String()[:6]))
}

// Sequence is a deterministic source for tests.
type Sequence struct {
	mu sync.Mutex
	n  int
}

// NewID returns id-0001, id-0002, ...
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%04d", s.n)
}

// ProposalNumber returns SG-<yyyymm>-0001, incrementing with NewID's
// counter.
func (s *Sequence) ProposalNumber(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("SG-%s-%04d", t.Format("200601"), s.n)
}
