// internal/extract/collector.go

package extract

import (
	"iter"
	"strings"
)

// Post ids are numeric snowflakes; anything outside this length is a path fragment.
const (
	MinPostIDLength = 11
	MaxPostIDLength = 20
)

var postPathMarkers = []string{"/video/", "/photo/"}

// PostIDFromCandidate extracts a post id from an href or a bare id.
func PostIDFromCandidate(candidate string) (string, bool) {
	c := strings.TrimSpace(candidate)
	for _, marker := range postPathMarkers {
		if i := strings.LastIndex(c, marker); i >= 0 {
			c = c[i+len(marker):]
			if j := strings.IndexByte(c, '/'); j >= 0 {
				c = c[:j]
			}
			break
		}
	}
	if j := strings.IndexAny(c, "?#"); j >= 0 {
		c = c[:j]
	}
	if !validPostID(c) {
		return "", false
	}
	return c, true
}

func validPostID(id string) bool {
	if len(id) < MinPostIDLength || len(id) > MaxPostIDLength {
		return false
	}
	return allDigits(id)
}

// Collector accumulates unique post ids up to a target.
type Collector struct {
	target int
	seen   map[string]struct{}
	ids    []string
}

// NewCollector creates a Collector. A target below one is already done.
func NewCollector(target int) *Collector {
	if target < 0 {
		target = 0
	}
	return &Collector{target: target, seen: make(map[string]struct{}, target)}
}

// Offer accepts candidates from one batch in order and reports whether the
// target has been reached. Remaining candidates are ignored once it is.
func (c *Collector) Offer(batch []string) bool {
	for _, candidate := range batch {
		if c.Done() {
			break
		}
		id, ok := PostIDFromCandidate(candidate)
		if !ok {
			continue
		}
		if _, dup := c.seen[id]; dup {
			continue
		}
		c.seen[id] = struct{}{}
		c.ids = append(c.ids, id)
	}
	return c.Done()
}

// Done reports whether the target has been reached.
func (c *Collector) Done() bool { return len(c.ids) >= c.target }

// IDs returns the collected ids in first-seen order.
func (c *Collector) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// CollectPostIDs pulls batches until target ids are collected or batches run out.
// No further batch is requested once the target is reached.
func CollectPostIDs(batches iter.Seq[[]string], target int) []string {
	c := NewCollector(target)
	if c.Done() || batches == nil {
		return c.IDs()
	}
	for batch := range batches {
		if c.Offer(batch) {
			break
		}
	}
	return c.IDs()
}
