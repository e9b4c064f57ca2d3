// internal/scraper/pagination.go
package scraper

import (
	"context"
	"iter"

	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// LinkBatches yields the links already present on the profile page, then one
// batch per scroll, at most maxScrolls times. Iteration ends early on a
// scroll error or when ctx is done; the consumer stops it once enough ids are
// collected.
func LinkBatches(ctx context.Context, s Session, first []string, maxScrolls int, logger utils.Logger) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		if !yield(first) {
			return
		}
		for i := 0; i < maxScrolls; i++ {
			if ctx.Err() != nil {
				return
			}
			batch, err := s.NextLinkBatch(ctx)
			if err != nil {
				logger.Warnf("scroll %d failed: %v", i+1, err)
				return
			}
			if !yield(batch) {
				return
			}
		}
	}
}
