package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const inspectFileName = "inspect.yml"

// ExtensionSets decides which files are read for title extraction and search.
type ExtensionSets struct {
	// Title extensions are always inspected.
	Title []string `yaml:"title"`
	// Search extensions are additionally inspected when a search pattern is set.
	Search []string `yaml:"search"`

	title  map[string]bool
	search map[string]bool
}

func defaultExtensionSets() *ExtensionSets {
	return newExtensionSets([]string{"html", "htm"}, []string{"txt", "js", "css"})
}

func newExtensionSets(title, search []string) *ExtensionSets {
	s := &ExtensionSets{Title: title, Search: search}
	s.index()
	return s
}

// index builds lookup maps keyed by lowercase extension without the dot.
func (s *ExtensionSets) index() {
	s.title = make(map[string]bool, len(s.Title))
	s.search = make(map[string]bool, len(s.Search))
	for _, ext := range s.Title {
		s.title[normalizeExt(ext)] = true
	}
	for _, ext := range s.Search {
		s.search[normalizeExt(ext)] = true
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Inspectable reports whether a file with this name should be read.
func (s *ExtensionSets) Inspectable(name string, searching bool) bool {
	ext := normalizeExt(filepath.Ext(name))
	if ext == "" {
		return false
	}
	if s.title[ext] {
		return true
	}
	return searching && s.search[ext]
}

// loadExtensionSets looks for inspect.yml in the config directory and then the
// working directory. Without one the built-in sets are used.
func loadExtensionSets() (*ExtensionSets, string, error) {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "filetree"))
	}
	dirs = append(dirs, ".")

	for _, dir := range dirs {
		path := filepath.Join(dir, inspectFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		sets, err := readExtensionSets(path)
		return sets, path, err
	}
	return defaultExtensionSets(), "", nil
}

// readExtensionSets parses an override file. Keys left out keep their defaults.
func readExtensionSets(path string) (*ExtensionSets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	var parsed ExtensionSets
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	sets := defaultExtensionSets()
	if parsed.Title != nil {
		sets.Title = parsed.Title
	}
	if parsed.Search != nil {
		sets.Search = parsed.Search
	}
	sets.index()
	return sets, nil
}
