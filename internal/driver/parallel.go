package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"nginxlog/internal/model"
	"nginxlog/internal/parser"
)

const (
	minChunk        = 512
	chunksPerWorker = 4
)

// ParseParallel parses lines with up to workers goroutines. Each goroutine
// owns a contiguous index range of the result, so the output keeps input
// order without any shared counter. The only error is ctx's.
func ParseParallel(ctx context.Context, p *parser.Parser, lines []string, workers int) ([]model.Outcome, error) {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]model.Outcome, len(lines))
	if len(lines) == 0 {
		return outcomes, nil
	}

	size := chunkSize(len(lines), workers)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				outcomes[i] = p.Parse(i+1, lines[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func chunkSize(n, workers int) int {
	chunks := workers * chunksPerWorker
	size := (n + chunks - 1) / chunks
	return max(size, minChunk)
}
