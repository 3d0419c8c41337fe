package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator produces deterministic identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator that yields identifiers with the given
// prefix. When prefix is empty, "id" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}

// IntNSequence returns an intN replacement that plays back the supplied
// values in order, wrapping around when exhausted. It panics when values is
// empty so a misconfigured test fails loudly.
func IntNSequence(values ...int) func(n int) int {
	if len(values) == 0 {
		panic("testfixtures: IntNSequence requires at least one value")
	}
	var mu sync.Mutex
	index := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		value := values[index%len(values)]
		index++
		if n > 0 {
			value %= n
		}
		return value
	}
}
