package features

import (
	"context"
	"strconv"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/search"
)

// GradePager walks the ranked key list one grade tier at a time.
type GradePager struct {
	matcher *search.Matcher
}

// NewGradePager creates a pager over matcher. The page size is the
// matcher's tier size.
func NewGradePager(matcher *search.Matcher) *GradePager {
	return &GradePager{matcher: matcher}
}

// ForEach calls fn with the hits of each tier in order, starting at tier 0.
// Iteration stops on the first error from fn, on the first empty tier, or
// when ctx is canceled.
func (p *GradePager) ForEach(ctx context.Context, fn func(tier int, hits []search.Hit) error) error {
	for tier := 0; ; tier++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := p.matcher.Search(ctx, search.Query{
			Text:  strconv.Itoa(tier),
			Index: core.IndexGrade,
		})
		if err != nil {
			return err
		}
		if len(res.Hits) == 0 {
			return nil
		}

		if err := fn(tier, res.Hits); err != nil {
			return err
		}
	}
}
