package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// stdinPath stands for standard input.
const stdinPath = "-"

// selector decides which files below a directory are workflow files.
// Patterns are matched against slash-separated paths relative to the
// directory given on the command line.
type selector struct {
	include []string
	exclude []string
}

func (s selector) excluded(rel string) bool {
	return matchAny(s.exclude, rel)
}

func (s selector) included(rel string) bool {
	return matchAny(s.include, rel) && !s.excluded(rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		// patterns are validated up front
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// collectFiles expands paths into the files to format. Files named
// explicitly are always kept; directories are walked.
func collectFiles(paths []string, sel selector) ([]string, error) {
	var files []string
	for _, path := range paths {
		if path == stdinPath {
			files = append(files, path)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		found, err := walkDir(path, sel)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkDir(root string, sel selector) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && sel.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if sel.included(rel) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
