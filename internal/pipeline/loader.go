package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/ocstats/internal/model"
	"github.com/theirongolddev/ocstats/internal/source"
)

// BatchSize is the number of files parsed concurrently before their
// messages are handed to the visitor.
const BatchSize = 50

// ErrDataLoad wraps failures to enumerate the OpenCode message directory.
var ErrDataLoad = errors.New("failed to scan OpenCode message files")

// Visitor receives each unique, valid message. It is always called from the
// goroutine that invoked Load, in file order.
type Visitor func(msg model.Message)

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// LoadResult holds counters from one loading pass.
type LoadResult struct {
	TotalFiles   int
	Messages     int // unique messages handed to the visitor
	Skipped      int // valid JSON that is not an assistant message record
	Duplicates   int // messages whose ID was already visited
	FileErrors   int // unreadable files or broken JSON
	SessionCount int

	// Unreadable lists the files counted in FileErrors, in file order.
	Unreadable []FileError
}

// FileError is a message file that could not be read or decoded.
type FileError struct {
	Path string
	Err  error
}

// Load discovers and parses every message file under dataDir, calling visit
// once per unique message ID. Files are parsed in batches by a bounded
// worker pool.
func Load(ctx context.Context, dataDir string, visit Visitor, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, scanError(dataDir, err)
	}

	result := &LoadResult{
		TotalFiles:   len(files),
		SessionCount: source.CountSessions(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	c := newCollector(result, visit)
	var processed atomic.Int64

	for start := 0; start < len(files); start += BatchSize {
		batch := files[start:min(start+BatchSize, len(files))]

		parsed, err := parseBatch(ctx, batch, func() {
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(files))
			}
		})
		if err != nil {
			return result, err
		}

		for i, pr := range parsed {
			c.collect(batch[i].Path, pr)
		}
	}

	return result, nil
}

// parseBatch parses files concurrently and returns results in input order.
func parseBatch(ctx context.Context, batch []source.DiscoveredFile, done func()) ([]source.ParseResult, error) {
	results := make([]source.ParseResult, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(batch)))

	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(batch[i])
			if done != nil {
				done()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func workerCount(jobs int) int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 4
	}
	if n > jobs {
		n = jobs
	}
	return max(n, 1)
}

func scanError(dataDir string, err error) error {
	return fmt.Errorf("%w in %s: %w", ErrDataLoad, dataDir, err)
}

// collector applies de-duplication and bookkeeping to parse results before
// handing messages to the visitor.
type collector struct {
	result *LoadResult
	visit  Visitor
	seen   map[string]struct{}
}

func newCollector(result *LoadResult, visit Visitor) *collector {
	return &collector{
		result: result,
		visit:  visit,
		seen:   make(map[string]struct{}),
	}
}

func (c *collector) collect(path string, pr source.ParseResult) {
	switch {
	case pr.Err != nil:
		c.result.FileErrors++
		c.result.Unreadable = append(c.result.Unreadable, FileError{Path: path, Err: pr.Err})
	case !pr.Valid:
		c.result.Skipped++
	default:
		c.message(pr.Message)
	}
}

func (c *collector) message(msg model.Message) {
	if _, dup := c.seen[msg.ID]; dup {
		c.result.Duplicates++
		return
	}
	c.seen[msg.ID] = struct{}{}
	c.result.Messages++
	if c.visit != nil {
		c.visit(msg)
	}
}
