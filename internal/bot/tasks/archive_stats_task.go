package tasks

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// newArchiveStatsTask logs the estimated archive size.
func newArchiveStatsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "archive_stats")

	return func(ctx context.Context) error {
		count, err := deps.Store.EstimatedCount(ctx)
		if err != nil {
			return fmt.Errorf("failed to read archive size: %w", err)
		}
		log.InfoContext(ctx, "Archive statistics",
			"records", count,
			"records_human", humanize.Comma(count))
		return nil
	}
}
