// Package discover walks a repository's working tree into the set of
// readable source files ingestion will parse (spec.md §6.2). Grounded on
// the teacher's Scanner.ScanDirectory (internal/world/fs.go):
// filepath.WalkDir plus excluded-directory skipping and per-file content
// hashing, generalized from the teacher's hand-rolled semaphore-channel
// fan-out to golang.org/x/sync/errgroup, and from a fixed directory
// allow/deny map to doublestar glob ignore patterns (spec.md §6.2).
package discover

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/jayminwest/kotadb-index/internal/logging"
)

// File is one discovered source file, read and hashed.
type File struct {
	Path        string // relative to root, slash-normalized
	AbsPath     string
	Content     []byte
	ContentHash string
	SizeBytes   int64
}

// Options controls discovery (spec.md §6.2 ambient config).
type Options struct {
	IgnoreDirs   []string
	IgnoreGlobs  []string
	MaxFileBytes int64
	WorkerCount  int
}

// Walk discovers every file under root not excluded by ignoreDirs/ignoreGlobs
// or over MaxFileBytes, reading and hashing each with bounded concurrency.
func Walk(ctx context.Context, root string, opts Options) ([]File, error) {
	timer := logging.StartTimer(logging.CategoryDiscover, "Walk "+root)
	defer timer.Stop()

	ignoreDirs := toSet(opts.IgnoreDirs)

	var candidates []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && ignoreDirs[d.Name()] {
				logging.Get(logging.CategoryDiscover).Debugw("skipping excluded directory", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAnyGlob(rel, opts.IgnoreGlobs) {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	workers := opts.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]File, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range candidates {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			f, err := readFile(root, path, opts.MaxFileBytes)
			if err != nil {
				logging.Get(logging.CategoryDiscover).Warnw("skipping unreadable file", "path", path, "err", err)
				return nil
			}
			if f != nil {
				results[i] = *f
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]File, 0, len(results))
	for _, f := range results {
		if f.Path != "" {
			out = append(out, f)
		}
	}
	return out, nil
}

func readFile(root, absPath string, maxBytes int64) (*File, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("file exceeds max size: %d > %d", info.Size(), maxBytes)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(content)
	return &File{
		Path:        filepath.ToSlash(rel),
		AbsPath:     absPath,
		Content:     content,
		ContentHash: hex.EncodeToString(sum[:]),
		SizeBytes:   info.Size(),
	}, nil
}

func matchesAnyGlob(path string, globs []string) bool {
	for _, pattern := range globs {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[strings.TrimSpace(i)] = true
	}
	return out
}
