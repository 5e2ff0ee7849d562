package main

import (
	"context"
	"time"
)

// Periodically logs agent throughput
func statusReporter(ctx context.Context, agent *Agent) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Clean shutdown
			return
		case <-ticker.C:
			statusFields := []any{
				"msg", "Status report",
				"component", "status_reporter",
			}

			stdinStats := agent.stdin.Stats()
			if total, ok := stdinStats["total_lines"].(uint64); ok {
				statusFields = append(statusFields, "lines_read", total)
			}
			if jsonLines, ok := stdinStats["json_lines"].(uint64); ok {
				statusFields = append(statusFields, "json_lines", jsonLines)
			}

			chainStats := agent.chain.Stats()
			if processed, ok := chainStats["total_processed"].(uint64); ok {
				statusFields = append(statusFields, "events_filtered", processed)
			}
			if passed, ok := chainStats["total_passed"].(uint64); ok {
				statusFields = append(statusFields, "events_shipped", passed)
			}

			logger.Debug(statusFields...)
		}
	}
}
