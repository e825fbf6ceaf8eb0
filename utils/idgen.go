package utils

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator hands out millisecond timestamp ids that strictly increase,
// even for requests landing in the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator starts after seed, normally the largest id already stored.
func NewIDGenerator(seed int64) *IDGenerator {
	return &IDGenerator{last: seed, now: time.Now}
}

// Next returns the next id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return strconv.FormatInt(id, 10)
}
