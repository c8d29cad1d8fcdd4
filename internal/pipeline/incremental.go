package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/theirongolddev/ocstats/internal/model"
	"github.com/theirongolddev/ocstats/internal/source"
	"github.com/theirongolddev/ocstats/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Pruned    int
}

// trackedFile pairs a discovered file with its on-disk stat and cache state.
type trackedFile struct {
	source.DiscoveredFile
	mtimeNs   int64
	sizeBytes int64
	statOK    bool
	cached    bool // unchanged since it was last parsed
	valid     bool // cached parse produced a message
}

// LoadWithCache discovers message files, diffs them against the cache,
// parses only changed files, and visits messages in the same order and with
// the same de-duplication as Load.
func LoadWithCache(ctx context.Context, dataDir string, cache *store.Cache, visit Visitor, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, scanError(dataDir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			SessionCount: source.CountSessions(files),
		},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into cached and changed
	entries := make([]trackedFile, len(files))
	present := make(map[string]struct{}, len(files))
	for i, f := range files {
		tf := trackedFile{DiscoveredFile: f}
		present[f.Path] = struct{}{}

		if info, err := os.Stat(f.Path); err == nil {
			tf.statOK = true
			tf.mtimeNs = info.ModTime().UnixNano()
			tf.sizeBytes = info.Size()

			if fi, ok := tracked[f.Path]; ok && fi.MtimeNs == tf.mtimeNs && fi.SizeBytes == tf.sizeBytes {
				tf.cached = true
				tf.valid = fi.Valid
			}
		}
		entries[i] = tf
	}

	var cachedMessages map[string]model.Message
	for _, tf := range entries {
		if tf.cached && tf.valid {
			cachedMessages, err = cache.LoadMessages()
			if err != nil {
				return nil, fmt.Errorf("loading cached messages: %w", err)
			}
			break
		}
	}

	c := newCollector(&result.LoadResult, visit)
	var processed atomic.Int64
	report := func() {
		n := processed.Add(1)
		if progressFn != nil {
			progressFn(int(n), len(entries))
		}
	}

	for start := 0; start < len(entries); start += BatchSize {
		batch := entries[start:min(start+BatchSize, len(entries))]

		// Cached entries whose message row went missing are reparsed.
		outcomes := make([]source.ParseResult, len(batch))
		var toParse []source.DiscoveredFile
		var toParseIdx []int
		for i, tf := range batch {
			if tf.cached {
				if !tf.valid {
					// zero ParseResult: counted as skipped
					result.CacheHits++
					report()
					continue
				}
				if msg, ok := cachedMessages[tf.Path]; ok {
					outcomes[i] = source.ParseResult{Message: msg, Valid: true}
					result.CacheHits++
					report()
					continue
				}
			}
			toParse = append(toParse, tf.DiscoveredFile)
			toParseIdx = append(toParseIdx, i)
		}

		if len(toParse) > 0 {
			parsed, err := parseBatch(ctx, toParse, report)
			if err != nil {
				return result, err
			}

			var saves []store.FileEntry
			for j, pr := range parsed {
				i := toParseIdx[j]
				outcomes[i] = pr
				result.Reparsed++

				tf := batch[i]
				if pr.Err != nil || !tf.statOK {
					continue
				}
				entry := store.FileEntry{Path: tf.Path, MtimeNs: tf.mtimeNs, SizeBytes: tf.sizeBytes}
				if pr.Valid {
					msg := pr.Message
					entry.Message = &msg
				}
				saves = append(saves, entry)
			}

			if err := cache.SaveFiles(saves); err != nil {
				return result, fmt.Errorf("saving to cache: %w", err)
			}
		} else if err := ctx.Err(); err != nil {
			return result, err
		}

		for i, pr := range outcomes {
			c.collect(batch[i].Path, pr)
		}
	}

	// Forget files that no longer exist
	var gone []string
	for path := range tracked {
		if _, ok := present[path]; !ok {
			gone = append(gone, path)
		}
	}
	if err := cache.DeleteFiles(gone); err != nil {
		return result, fmt.Errorf("pruning cache: %w", err)
	}
	result.Pruned = len(gone)

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ocstats")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ocstats")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "messages.db")
}
