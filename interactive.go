package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// pickDirectory lists directories below start and lets the user choose the
// scan target with a fuzzy finder. An aborted selection returns "" and no error.
func pickDirectory(start string, showHidden bool) (string, error) {
	candidates, err := directoryCandidates(start, showHidden)
	if err != nil {
		return "", err
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the directory to inventory. Press Enter to confirm."
			}
			entries, err := os.ReadDir(filepath.Join(start, candidates[i]))
			if err != nil {
				return fmt.Sprintf("Path: %s\nError reading directory: %v", candidates[i], err)
			}
			var dirs, files int
			for _, e := range entries {
				if e.IsDir() {
					dirs++
				} else {
					files++
				}
			}
			return fmt.Sprintf("Path: %s\nDirectories: %d\nFiles: %d", candidates[i], dirs, files)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return filepath.Join(start, candidates[idx]), nil
}

// directoryCandidates lists start itself as "." followed by every directory
// below it, relative to start.
func directoryCandidates(start string, showHidden bool) ([]string, error) {
	candidates := []string{"."}
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == start || !d.IsDir() {
			return nil
		}
		if !showHidden && isHidden(d.Name()) {
			return fs.SkipDir
		}
		rel, err := filepath.Rel(start, path)
		if err != nil {
			return nil
		}
		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for directories: %w", err)
	}
	return candidates, nil
}

// isHidden checks if a base name is hidden (starts with '.').
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}
