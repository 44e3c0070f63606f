package reconciler

import (
	"github.com/agentstation/eventlink/pkg/records"
)

// dropEmpty removes rows with no substantive field on either side and
// returns how many were removed.
func dropEmpty(rows []records.MatchedRow) ([]records.MatchedRow, int) {
	kept := rows[:0:0]
	for _, row := range rows {
		if row.Empty() {
			continue
		}
		kept = append(kept, row)
	}
	return kept, len(rows) - len(kept)
}
