package migration

import (
	"context"
	"time"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
)

// BatchResult counts the outcome of a chunked write.
type BatchResult struct {
	Success int
	Errors  int
}

// InsertInBatches writes items in fixed-size chunks with a rate-limit pause
// between chunks. A failed chunk falls back to per-record writes so one bad
// record costs one row, not a whole chunk. Never returns an error; failures
// are counted and logged.
func InsertInBatches[T any](
	ctx context.Context,
	items []T,
	batchSize int,
	delay time.Duration,
	writeBatch func(ctx context.Context, batch []T) error,
	writeOne func(ctx context.Context, item T) error,
	log *logger.Logger,
) BatchResult {
	result := BatchResult{}
	if len(items) == 0 {
		return result
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		if err := writeBatch(ctx, batch); err != nil {
			log.Warn("batch write failed, retrying per record",
				"offset", start, "size", len(batch), "error", err)
			for _, item := range batch {
				if err := writeOne(ctx, item); err != nil {
					log.Error("record write failed", "error", err)
					result.Errors++
					continue
				}
				result.Success++
			}
		} else {
			result.Success += len(batch)
		}

		if end < len(items) && delay > 0 {
			select {
			case <-ctx.Done():
				result.Errors += len(items) - end
				return result
			case <-time.After(delay):
			}
		}
	}
	return result
}
