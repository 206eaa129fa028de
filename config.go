package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dlclark/regexp2"
)

// PathMode selects how the path cell of each row is rendered.
type PathMode int

const (
	PathURL    PathMode = iota // "/docs/index.html"
	PathPC                     // "docs\index.html"
	PathPCFull                 // absolute native path
)

func parsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "url":
		return PathURL, nil
	case "pc":
		return PathPC, nil
	case "pcfull":
		return PathPCFull, nil
	default:
		return 0, fmt.Errorf("invalid path mode %q (expected url, pc or pcfull)", s)
	}
}

func (m PathMode) String() string {
	switch m {
	case PathPC:
		return "pc"
	case PathPCFull:
		return "pcfull"
	default:
		return "url"
	}
}

// Separator is appended to directory names in the name cell.
func (m PathMode) Separator() string {
	if m == PathURL {
		return "/"
	}
	return `\`
}

// Formatter resolves the mode once into a function of (absolute, root-relative) paths.
func (m PathMode) Formatter() func(abs, rel string) string {
	switch m {
	case PathPC:
		return func(_, rel string) string {
			return strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)
		}
	case PathPCFull:
		return func(abs, _ string) string {
			return abs
		}
	default:
		return func(_, rel string) string {
			u := url.URL{Path: "/" + filepath.ToSlash(rel)}
			return u.EscapedPath()
		}
	}
}

// TitleMode selects how titles are pulled out of decoded text.
type TitleMode int

const (
	TitleMarker TitleMode = iota // first <title> ... </title> by substring search
	TitleHTML                    // parse the document and read the <title> element
)

func parseTitleMode(s string) (TitleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "marker":
		return TitleMarker, nil
	case "html", "dom":
		return TitleHTML, nil
	default:
		return 0, fmt.Errorf("invalid title mode %q (expected marker or html)", s)
	}
}

// ScanOptions is the raw, unvalidated input collected from flags, env and config.
type ScanOptions struct {
	Dir              string
	Output           string
	Path             string
	Filter           string
	Search           string
	Debug            bool
	Timeout          time.Duration
	TitleMode        string
	Exclude          []string
	RespectGitignore bool
	Clipboard        bool
	PDFFont          string
}

// ScanConfig is built once per run and never mutated afterwards.
type ScanConfig struct {
	Root             string // absolute
	Output           string
	PathMode         PathMode
	Filter           *regexp2.Regexp // nil when no filter was given
	Search           *regexp2.Regexp // nil when no search was given
	Debug            bool
	Timeout          time.Duration // per operation, 0 disables
	TitleMode        TitleMode
	Exclude          []string
	RespectGitignore bool
	Clipboard        bool
	PDFFont          string
	Extensions       *ExtensionSets
}

const (
	defaultOutput  = "output.xlsx"
	defaultLogFile = "fileTree.log"
	defaultTimeout = 30 * time.Second
)

// NewScanConfig validates opts and resolves the target directory.
func NewScanConfig(opts ScanOptions, exts *ExtensionSets) (*ScanConfig, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fatalIO("stat", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target is not a directory: %s", root)
	}

	output := opts.Output
	if output == "" {
		output = defaultOutput
	}

	mode, err := parsePathMode(opts.Path)
	if err != nil {
		return nil, err
	}
	titleMode, err := parseTitleMode(opts.TitleMode)
	if err != nil {
		return nil, err
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", opts.Timeout)
	}

	filter, err := compileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	search, err := compileSearch(opts.Search)
	if err != nil {
		return nil, err
	}

	excludes := make([]string, 0, len(opts.Exclude))
	for _, pat := range opts.Exclude {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
		excludes = append(excludes, pat)
	}

	if exts == nil {
		exts = defaultExtensionSets()
	}

	return &ScanConfig{
		Root:             root,
		Output:           output,
		PathMode:         mode,
		Filter:           filter,
		Search:           search,
		Debug:            opts.Debug,
		Timeout:          opts.Timeout,
		TitleMode:        titleMode,
		Exclude:          excludes,
		RespectGitignore: opts.RespectGitignore,
		Clipboard:        opts.Clipboard,
		PDFFont:          opts.PDFFont,
		Extensions:       exts,
	}, nil
}

// compileFilter turns "html|htm" into a suffix pattern over the path cell.
func compileFilter(filter string) (*regexp2.Regexp, error) {
	filter = strings.Trim(strings.TrimSpace(filter), `"`)
	if filter == "" {
		return nil, nil
	}
	re, err := regexp2.Compile(`\.(?:`+filter+`)$`, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
	}
	return re, nil
}

func compileSearch(search string) (*regexp2.Regexp, error) {
	if search == "" {
		return nil, nil
	}
	re, err := regexp2.Compile(search, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", search, err)
	}
	return re, nil
}
