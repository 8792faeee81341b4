package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// watcher reformats workflow files as they change.
type watcher struct {
	opts   options
	fsw    *fsnotify.Watcher
	roots  []string
	files  map[string]bool
	stdout io.Writer
	stderr io.Writer
}

func watch(ctx context.Context, opts options, paths []string, stdout, stderr io.Writer) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return &exitError{code: exitFailed, msg: fmt.Sprintf("create watcher: %v", err)}
	}
	defer fsw.Close()

	w := &watcher{
		opts:   opts,
		fsw:    fsw,
		files:  map[string]bool{},
		stdout: stdout,
		stderr: stderr,
	}
	for _, path := range paths {
		if path == stdinPath {
			return &exitError{code: exitFailed, msg: "cannot watch stdin"}
		}
		if err := w.add(path); err != nil {
			return &exitError{code: exitFailed, msg: err.Error()}
		}
	}

	// format everything once up front
	if err := run(ctx, opts, paths, nil, stdout, stderr); err != nil {
		slog.Warn("initial format failed", "error", err)
	}
	slog.Info("watching for changes", "paths", paths)
	return w.loop(ctx)
}

// add watches a file's directory or a whole directory tree.
func (w *watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		w.files[abs] = true
		return w.fsw.Add(filepath.Dir(abs))
	}
	w.roots = append(w.roots, abs)
	return w.addTree(abs, abs)
}

func (w *watcher) addTree(root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(root, path); rel != "." && w.opts.selector.excluded(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// selected reports whether a changed path should be formatted.
func (w *watcher) selected(path string) bool {
	if w.files[path] {
		return true
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		if w.opts.selector.included(filepath.ToSlash(rel)) {
			return true
		}
	}
	return false
}

func (w *watcher) loop(ctx context.Context) error {
	pending := map[string]bool{}
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.addNewDir(event.Name)
				continue
			}
			if w.selected(event.Name) {
				pending[event.Name] = true
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for path := range pending {
				files = append(files, path)
			}
			sort.Strings(files)
			clear(pending)

			results, err := formatFiles(ctx, w.opts, files, nil)
			if err != nil {
				return nil
			}
			// failures are reported and the watch goes on
			_ = report(w.opts, results, w.stdout, w.stderr)
		}
	}
}

func (w *watcher) addNewDir(dir string) {
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, dir); err == nil && filepath.IsLocal(rel) {
			if err := w.addTree(root, dir); err != nil {
				slog.Warn("cannot watch directory", "dir", dir, "error", err)
			}
			return
		}
	}
}
