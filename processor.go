package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Walker recursively inventories a directory tree relative to a fixed root.
type Walker struct {
	cfg       *ScanConfig
	inspector *Inspector
	format    func(abs, rel string) string
	ignore    gitignore.IgnoreMatcher
	io        *semaphore.Weighted
	log       *logrus.Logger

	files, dirs, inspected, matched atomic.Int64
}

// NewWalker prepares a walker for cfg.Root. The root .gitignore is loaded here
// when RespectGitignore is set.
func NewWalker(cfg *ScanConfig, log *logrus.Logger) (*Walker, error) {
	w := &Walker{
		cfg:    cfg,
		format: cfg.PathMode.Formatter(),
		io:     semaphore.NewWeighted(int64(4 * runtime.NumCPU())),
		log:    log,
	}
	w.inspector = NewInspector(cfg, NewEncodingResolver(log), w.readFile, log)

	if cfg.RespectGitignore {
		path := filepath.Join(cfg.Root, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			matcher, err := gitignore.NewGitIgnore(path, cfg.Root)
			if err != nil {
				return nil, fatalIO("read", path, err)
			}
			w.ignore = matcher
			log.Debugf("using %s", path)
		}
	}
	return w, nil
}

// Walk lists the whole tree below the root. The root itself produces no row.
func (w *Walker) Walk(ctx context.Context) ([]Row, error) {
	return w.walk(ctx, w.cfg.Root)
}

// Summary reports counts gathered by the last Walk.
func (w *Walker) Summary() Summary {
	return Summary{
		Files:     int(w.files.Load()),
		Dirs:      int(w.dirs.Load()),
		Inspected: int(w.inspected.Load()),
		Matched:   int(w.matched.Load()),
	}
}

// walk fans out one task per entry of dir and waits for all of them. A
// directory's row precedes the rows of its subtree in the returned slice.
func (w *Walker) walk(ctx context.Context, dir string) ([]Row, error) {
	entries, err := w.readDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	results := make([][]Row, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			rows, err := w.visit(gctx, dir, entry.Name())
			results[i] = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, rows := range results {
		total += len(rows)
	}
	merged := make([]Row, 0, total)
	for _, rows := range results {
		merged = append(merged, rows...)
	}
	return merged, nil
}

func (w *Walker) visit(ctx context.Context, dir, name string) ([]Row, error) {
	abs := filepath.Join(dir, name)
	rel, err := filepath.Rel(w.cfg.Root, abs)
	if err != nil {
		return nil, err
	}

	info, err := w.stat(ctx, abs)
	if err != nil {
		return nil, err
	}
	isDir := info.IsDir()
	if w.skip(abs, rel, isDir) {
		w.log.Tracef("excluded %s", rel)
		return nil, nil
	}

	depth := depthOf(rel)
	path := w.format(abs, rel)

	if isDir {
		w.dirs.Add(1)
		row := newRow(path, "", "", depth, name+w.cfg.PathMode.Separator(), true)
		children, err := w.walk(ctx, abs)
		if err != nil {
			return nil, err
		}
		return append([]Row{row}, children...), nil
	}

	w.files.Add(1)
	res, err := w.inspector.Inspect(ctx, abs, name)
	if err != nil {
		return nil, err
	}
	if res.Read {
		w.inspected.Add(1)
	}
	if res.Matches > 0 {
		w.matched.Add(1)
	}
	return []Row{newRow(path, res.Title, res.Summary, depth, name, false)}, nil
}

// skip applies the optional exclude globs and .gitignore.
func (w *Walker) skip(abs, rel string, isDir bool) bool {
	slashRel := filepath.ToSlash(rel)
	for _, pat := range w.cfg.Exclude {
		if ok, _ := doublestar.Match(pat, slashRel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, filepath.Base(slashRel)); ok && !strings.Contains(pat, "/") {
			return true
		}
	}
	return w.ignore != nil && w.ignore.Match(abs, isDir)
}

// depthOf counts the directory levels between the root and the entry's parent.
func depthOf(rel string) int {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(strings.Trim(rel, "/"), "/")
}

func newRow(path, title, remark string, depth int, name string, isDir bool) Row {
	cells := make([]string, 0, fixedCells+depth+1)
	cells = append(cells, path, title, remark)
	for i := 0; i < depth; i++ {
		cells = append(cells, "")
	}
	cells = append(cells, name)
	return Row{Cells: cells, IsDir: isDir}
}

// The I/O helpers below take a slot from the shared semaphore, run the call
// under the per-operation timeout and wrap failures as FatalIOError.

func (w *Walker) readDir(ctx context.Context, dir string) ([]fs.DirEntry, error) {
	entries, err := withTimeout(ctx, w, func() ([]fs.DirEntry, error) {
		return os.ReadDir(dir)
	})
	if err != nil {
		return nil, fatalIO("list", dir, err)
	}
	return entries, nil
}

func (w *Walker) stat(ctx context.Context, path string) (fs.FileInfo, error) {
	info, err := withTimeout(ctx, w, func() (fs.FileInfo, error) {
		return os.Stat(path)
	})
	if err != nil {
		return nil, fatalIO("stat", path, err)
	}
	return info, nil
}

func (w *Walker) readFile(ctx context.Context, path string) ([]byte, error) {
	data, err := withTimeout(ctx, w, func() ([]byte, error) {
		return os.ReadFile(path)
	})
	if err != nil {
		return nil, fatalIO("read", path, err)
	}
	return data, nil
}

// withTimeout runs fn in its own goroutine so a hung filesystem call cannot
// outlive the deadline. The goroutine is abandoned, not killed, on timeout.
func withTimeout[T any](ctx context.Context, w *Walker, fn func() (T, error)) (T, error) {
	var zero T
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}
	if err := w.io.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer w.io.Release(1)
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
