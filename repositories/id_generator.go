package repositories

import "sync"

// IDGenerator hands out identifiers for stores that do not have a database sequence.
type IDGenerator interface {
	NextID(entity string) int
}

type SequenceIDGenerator struct {
	mu   sync.Mutex
	next map[string]int
}

func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{next: make(map[string]int)}
}

func (g *SequenceIDGenerator) NextID(entity string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[entity]++
	return g.next[entity]
}
