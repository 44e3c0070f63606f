package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/eventlink/pkg/records"
)

// collector concatenates group results in declaration order and tallies
// run statistics.
type collector struct {
	rows     []records.MatchedRow
	groups   []GroupStats
	failures []GroupFailure
	stats    ResultStatistics
	logger   *zerolog.Logger
}

func newCollector(logger *zerolog.Logger) *collector {
	return &collector{logger: logger}
}

// add folds one group result into the run.
func (c *collector) add(res GroupResult) {
	c.stats.Groups++

	switch r := res.(type) {
	case GroupSuccess:
		c.rows = append(c.rows, r.Rows...)
		c.groups = append(c.groups, r.Stats)
		c.stats.Matched += r.Stats.Matched
		c.stats.UnmatchedOutreach += r.Stats.UnmatchedOutreach
		c.stats.UnmatchedEvents += r.Stats.UnmatchedEvents
		c.stats.DroppedEmpty += r.Stats.DroppedEmpty
	case GroupFailure:
		c.failures = append(c.failures, r)
		c.groups = append(c.groups, GroupStats{Group: r.Group, Failed: true})
		c.stats.FailedGroups++
		c.logger.Error().
			Err(r.Err).
			Str("group", r.Group).
			Msg("Failed to reconcile group")
	}
}
