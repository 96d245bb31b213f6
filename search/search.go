// server/search/search.go
package search

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/ViniZap4/carnet-server/domain"
	"github.com/ViniZap4/carnet-server/filesystem"
)

type MatchType string

const (
	MatchFolderName MatchType = "foldername"
	MatchFileName   MatchType = "filename"
	MatchContent    MatchType = "content"
)

func (m MatchType) rank() int {
	switch m {
	case MatchFolderName:
		return 0
	case MatchFileName:
		return 1
	}
	return 2
}

const (
	// Limit caps the number of results returned by Search.
	Limit = 50
	// contextLength is the number of bytes kept on each side of a content match.
	contextLength = 100
	// maxNoteSize bounds how much of a note is scanned for content matches.
	maxNoteSize = 8 << 20
)

type Result struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	IsDir       bool      `json:"isDir"`
	MatchType   MatchType `json:"matchType"`
	MatchText   string    `json:"matchText"`
	ContextText string    `json:"contextText,omitempty"`
}

// Search looks for query under root in folder names, note names and note
// contents. Hidden entries are skipped. A query containing glob
// metacharacters is matched as a doublestar pattern against names and
// root-relative paths instead of fuzzily.
func Search(ctx context.Context, root, query string) ([]Result, error) {
	const op = "search.Search"

	results := []Result{}
	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	canonRoot, err := filesystem.Resolve(root, "")
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(canonRoot)
	if err != nil || !info.IsDir() {
		return nil, domain.NewError(domain.KindRootNotFound, op, err, "")
	}

	matchName := nameMatcher(query)
	content := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))

	var mu sync.Mutex
	add := func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, canonRoot, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || p == canonRoot {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(canonRoot, p)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if matchName(name, rel) {
				add(Result{Path: p, Name: name, IsDir: true, MatchType: MatchFolderName, MatchText: name})
			}
			return nil
		}

		if !filesystem.IsNote(name) {
			return nil
		}
		if matchName(name, rel) {
			add(Result{Path: p, Name: name, MatchType: MatchFileName, MatchText: name})
		}
		if r, ok := matchContent(p, name, content); ok {
			add(r)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, domain.NewError(domain.KindReadDir, op, err, "")
	}

	Sort(results)
	if len(results) > Limit {
		results = results[:Limit]
	}
	return results, nil
}

// Sort orders results folder matches first, then name matches, then
// content matches, each group by name.
func Sort(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchType != b.MatchType {
			return a.MatchType.rank() < b.MatchType.rank()
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.Path < b.Path
	})
}

func isGlob(query string) bool {
	return strings.ContainsAny(query, "*?[{")
}

func nameMatcher(query string) func(name, rel string) bool {
	pattern := strings.ToLower(query)
	if isGlob(query) && doublestar.ValidatePattern(pattern) {
		return func(name, rel string) bool {
			if ok, _ := doublestar.Match(pattern, strings.ToLower(name)); ok {
				return true
			}
			ok, _ := doublestar.Match(pattern, strings.ToLower(filepath.ToSlash(rel)))
			return ok
		}
	}
	return func(name, _ string) bool {
		return FuzzyMatch(pattern, name)
	}
}

// FuzzyMatch reports whether the runes of pattern appear in text in order,
// ignoring case.
func FuzzyMatch(pattern, text string) bool {
	want := []rune(strings.ToLower(pattern))
	if len(want) == 0 {
		return true
	}
	i := 0
	for _, r := range strings.ToLower(text) {
		if r == want[i] {
			i++
			if i == len(want) {
				return true
			}
		}
	}
	return false
}

func matchContent(path, name string, re *regexp.Regexp) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxNoteSize {
		return Result{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return Result{}, false
	}

	text := string(data)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return Result{}, false
	}

	return Result{
		Path:        path,
		Name:        name,
		MatchType:   MatchContent,
		MatchText:   text[loc[0]:loc[1]],
		ContextText: Context(text, loc[0], loc[1]),
	}, true
}

// Context returns the text around text[start:end], whitespace collapsed.
func Context(text string, start, end int) string {
	from := max(start-contextLength, 0)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	to := min(end+contextLength, len(text))
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return strings.Join(strings.Fields(text[from:to]), " ")
}
