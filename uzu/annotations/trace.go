package annotations

import (
	"time"

	"github.com/wbrown/uzu-pattern/uzu"
	"github.com/wbrown/uzu-pattern/uzu/pattern"
)

// Traced wraps a pattern so every query reports begin/completed events
// to the collector. The wrapped pattern is unchanged; tracing composes
// like any other combinator.
func Traced(p *pattern.Pattern, c *Collector) *pattern.Pattern {
	if !c.Enabled() {
		return p
	}
	return pattern.New(func(span uzu.TimeSpan) []uzu.Hap {
		start := time.Now()
		c.AddTiming(QueryBegin, start, map[string]interface{}{
			"span": span.String(),
		})
		haps := p.QuerySpan(span)
		c.AddTiming(QueryCompleted, start, map[string]interface{}{
			"span":       span.String(),
			"haps.count": len(haps),
		})
		return haps
	})
}
