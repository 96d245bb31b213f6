// server/diff/diff.go
package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// CacheSize is the number of results a Service keeps before evicting the
// older half.
const CacheSize = 100

// Result holds change statistics between two versions of a note.
type Result struct {
	LinesAdded    int `json:"linesAdded"`
	LinesRemoved  int `json:"linesRemoved"`
	LinesModified int `json:"linesModified"`

	CharsAdded   int `json:"charsAdded"`
	CharsRemoved int `json:"charsRemoved"`
	WordsAdded   int `json:"wordsAdded"`
	WordsRemoved int `json:"wordsRemoved"`

	TotalLines int `json:"totalLines"`
	TotalChars int `json:"totalChars"`
	TotalWords int `json:"totalWords"`

	DiffContent string `json:"diffContent,omitempty"`
}

type Service struct {
	mu    sync.RWMutex
	cache map[string]Result
	order []string
}

func NewService() *Service {
	return &Service{cache: make(map[string]Result, CacheSize)}
}

// Calculate compares original with current. Results are cached by content.
func (s *Service) Calculate(original, current string) Result {
	key := cacheKey(original, current)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	res := Compute(original, current)
	s.store(key, res)
	return res
}

// Len returns the number of cached results.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Service) store(key string, res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[key]; ok {
		return
	}
	if len(s.cache) >= CacheSize {
		half := len(s.order) / 2
		for _, k := range s.order[:half] {
			delete(s.cache, k)
		}
		s.order = append([]string(nil), s.order[half:]...)
	}
	s.cache[key] = res
	s.order = append(s.order, key)
}

func cacheKey(original, current string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(original))))
	h.Write([]byte{0})
	h.Write([]byte(original))
	h.Write([]byte(current))
	return hex.EncodeToString(h.Sum(nil))
}

// Compute returns the statistics without caching. A line replaced by
// another counts as modified rather than as one addition and one removal.
func Compute(original, current string) Result {
	res := Result{
		TotalLines: len(strings.Split(current, "\n")),
		TotalChars: utf8.RuneCountInString(current),
		TotalWords: countWords(current),
	}
	if original == current {
		return res
	}

	m := difflib.NewMatcher(difflib.SplitLines(original), difflib.SplitLines(current))
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r':
			res.LinesRemoved += op.I2 - op.I1
			res.LinesAdded += op.J2 - op.J1
		case 'd':
			res.LinesRemoved += op.I2 - op.I1
		case 'i':
			res.LinesAdded += op.J2 - op.J1
		}
	}
	modified := min(res.LinesAdded, res.LinesRemoved)
	res.LinesModified = modified
	res.LinesAdded -= modified
	res.LinesRemoved -= modified

	res.CharsAdded, res.CharsRemoved = delta(utf8.RuneCountInString(original), res.TotalChars)
	res.WordsAdded, res.WordsRemoved = delta(countWords(original), res.TotalWords)
	return res
}

// Unified renders a unified diff of the two versions, with context lines.
func Unified(original, current string, context int) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(current),
		FromFile: "saved",
		ToFile:   "current",
		Context:  context,
	})
}

func delta(before, after int) (added, removed int) {
	if after > before {
		return after - before, 0
	}
	return 0, before - after
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
