package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dlclark/regexp2"
	"github.com/sirupsen/logrus"
)

const (
	titleOpen  = "<title>"
	titleClose = "</title>"
	// appended to the match count in the search summary
	countSuffix = "件"
)

// Inspection is what the inspector learned about one file.
type Inspection struct {
	Title    string
	Summary  string
	Read     bool // the file content was read and decoded
	Matches  int
	Encoding Encoding
}

// Inspector extracts titles and search summaries from text-like files.
type Inspector struct {
	exts     *ExtensionSets
	search   *regexp2.Regexp
	mode     TitleMode
	resolver *EncodingResolver
	read     func(ctx context.Context, path string) ([]byte, error)
	log      *logrus.Logger
}

func NewInspector(cfg *ScanConfig, resolver *EncodingResolver, read func(ctx context.Context, path string) ([]byte, error), log *logrus.Logger) *Inspector {
	return &Inspector{
		exts:     cfg.Extensions,
		search:   cfg.Search,
		mode:     cfg.TitleMode,
		resolver: resolver,
		read:     read,
		log:      log,
	}
}

// Inspect returns empty cells without touching the file unless its extension is
// inspectable. Read errors are returned unchanged.
func (in *Inspector) Inspect(ctx context.Context, path, name string) (Inspection, error) {
	if !in.exts.Inspectable(name, in.search != nil) {
		return Inspection{}, nil
	}

	data, err := in.read(ctx, path)
	if err != nil {
		return Inspection{}, err
	}

	decoded := in.resolver.Decode(data)
	in.log.WithFields(logrus.Fields{
		"file":     name,
		"detected": decoded.Label,
		"encoding": decoded.Encoding,
	}).Debug("inspecting")

	res := Inspection{Read: true, Encoding: decoded.Encoding}
	switch in.mode {
	case TitleHTML:
		res.Title = documentTitle(decoded.Text)
	default:
		res.Title = extractTitle(decoded.Text)
	}
	if res.Title != "" {
		in.log.WithField("file", name).Tracef("title: %s", res.Title)
	}

	if in.search != nil {
		matches, err := findAll(in.search, decoded.Text)
		if err != nil {
			return Inspection{}, fmt.Errorf("search failed in %s: %w", path, err)
		}
		res.Matches = len(matches)
		res.Summary = searchSummary(matches)
		if res.Summary != "" {
			in.log.WithField("file", name).Debug(res.Summary)
		}
	}
	return res, nil
}

// extractTitle returns the text between the first opening marker and the first
// closing marker after it. A missing closing marker means no title.
func extractTitle(text string) string {
	start := strings.Index(text, titleOpen)
	if start < 0 {
		return ""
	}
	start += len(titleOpen)
	end := strings.Index(text[start:], titleClose)
	if end < 0 {
		return ""
	}
	return text[start : start+end]
}

// documentTitle parses text as HTML and returns the first <title> element's text.
func documentTitle(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return ""
	}
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return ""
	}
	return title.Text()
}

// findAll collects every non-overlapping match in order.
func findAll(re *regexp2.Regexp, text string) ([]string, error) {
	var matches []string
	m, err := re.FindStringMatch(text)
	for m != nil && err == nil {
		matches = append(matches, m.String())
		m, err = re.FindNextMatch(m)
	}
	return matches, err
}

// searchSummary formats matches as "<N>件, m1, m2, ...", or "" when there are none.
func searchSummary(matches []string) string {
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d%s", len(matches), countSuffix)
	for _, m := range matches {
		b.WriteString(", ")
		b.WriteString(m)
	}
	return b.String()
}
