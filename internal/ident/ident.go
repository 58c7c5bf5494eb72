// Package ident generates unique identifiers for new records.
package ident

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces globally-unique identifiers.
type Generator interface {
	Next() string
}

type uuidGenerator struct{}

func (uuidGenerator) Next() string { return uuid.New().String() }

// UUID returns a Generator backed by random UUIDv4 values.
func UUID() Generator { return uuidGenerator{} }

// Sequence is a deterministic Generator for tests. Next returns
// "<prefix>-1", "<prefix>-2", and so on.
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	return fmt.Sprintf("%s-%d", s.Prefix, s.n.Add(1))
}
