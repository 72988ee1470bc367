package search

import (
	"slices"
	"sort"
	"strings"
	"unicode"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"
)

// Match is one title that matched a query
type Match struct {
	Index          int   // Index in source
	Score          int   // Match score (lower = better)
	MatchedIndexes []int // Rune positions that matched (for highlighting)
}

// Source is a list of lowercase titles. It is the same shape sahilm/fuzzy
// searches, so an index can be handed to either matcher.
type Source = sfuzzy.Source

// Find matches query against every title in src.
//
// Every query word has to match some word of the title, in any order. A word
// matches exactly, as a prefix, as a substring, or within a small edit
// distance. Titles that fail word matching may still match as a subsequence
// of the whole query, scored below every word match.
//
// Results are sorted best first.
func Find(query string, src Source) []Match {
	query = lower(strings.TrimSpace(query))
	if query == "" || src.Len() == 0 {
		return nil
	}

	words := tokenize(query)
	if len(words) == 0 {
		return nil
	}

	var matches []Match
	matched := make(map[int]bool)
	for i := 0; i < src.Len(); i++ {
		if m, ok := matchTitle(src.String(i), words); ok {
			m.Index = i
			matches = append(matches, m)
			matched[i] = true
		}
	}

	// FindFrom returns best first; keep that order below the word matches
	for rank, fm := range sfuzzy.FindFrom(query, src) {
		if matched[fm.Index] {
			continue
		}
		matches = append(matches, Match{
			Index:          fm.Index,
			Score:          subsequenceBase + rank,
			MatchedIndexes: byteToRuneIndexes(fm.Str, fm.MatchedIndexes),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		return len(src.String(matches[i].Index)) < len(src.String(matches[j].Index))
	})
	return matches
}

// FindStrings is Find over a plain slice
func FindStrings(query string, titles []string) []Match {
	src := make(stringSource, len(titles))
	for i, t := range titles {
		src[i] = lower(t)
	}
	return Find(query, src)
}

type stringSource []string

// lower maps rune by rune, so the result has as many runes as s and match
// positions carry over to the original title
func lower(s string) string {
	return strings.Map(unicode.ToLower, s)
}

func (s stringSource) String(i int) string { return s[i] }
func (s stringSource) Len() int            { return len(s) }

const (
	scoreExact      = 0
	scorePrefix     = 10
	scoreQueryLong  = 20
	scoreSubstring  = 50
	scoreTypo       = 100
	scoreAnywhere   = 150
	subsequenceBase = 1000
	extraWordCost   = 5
)

type token struct {
	text       string
	start, end int // rune offsets
}

func tokenize(text string) []token {
	var (
		tokens []token
		start  = -1
	)
	runes := []rune(text)
	for i, r := range runes {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			tokens = append(tokens, token{text: string(runes[start:i]), start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: string(runes[start:]), start: start, end: len(runes)})
	}
	return tokens
}

// matchTitle requires each query word to claim a distinct title word
func matchTitle(title string, words []token) (Match, bool) {
	titleWords := tokenize(title)
	used := make([]bool, len(titleWords))

	var (
		total   int
		indexes []int
	)
	for _, w := range words {
		score, idx, at := -1, []int(nil), -1
		for i, tw := range titleWords {
			if used[i] {
				continue
			}
			if s, ix := matchWord(w.text, tw); s >= 0 && (score < 0 || s < score) {
				score, idx, at = s, ix, i
			}
		}
		if score < 0 {
			pos := strings.Index(title, w.text)
			if pos < 0 {
				return Match{}, false
			}
			r := len([]rune(title[:pos]))
			score, idx = scoreAnywhere+r, span(r, r+len([]rune(w.text)))
		}
		if at >= 0 {
			used[at] = true
		}
		total += score
		indexes = append(indexes, idx...)
	}

	if extra := len(titleWords) - len(words); extra > 0 {
		total += extra * extraWordCost
	}

	slices.Sort(indexes)
	return Match{Score: total, MatchedIndexes: slices.Compact(indexes)}, true
}

func matchWord(q string, tw token) (int, []int) {
	t := tw.text
	qlen := len([]rune(q))
	switch {
	case q == t:
		return scoreExact, span(tw.start, tw.end)
	case strings.HasPrefix(t, q):
		return scorePrefix, span(tw.start, tw.start+qlen)
	case strings.HasPrefix(q, t):
		return scoreQueryLong, span(tw.start, tw.end)
	}
	if i := strings.Index(t, q); i >= 0 {
		r := len([]rune(t[:i]))
		return scoreSubstring + r, span(tw.start+r, tw.start+r+qlen)
	}
	if maxTypos := allowedTypos(qlen); maxTypos > 0 {
		if d := lfuzzy.LevenshteinDistance(q, t); d <= maxTypos {
			return scoreTypo + d*20, span(tw.start, tw.end)
		}
	}
	return -1, nil
}

// allowedTypos: 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}

func span(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// sahilm/fuzzy reports byte offsets; highlighting works in runes
func byteToRuneIndexes(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	out := make([]int, 0, len(byteIdx))
	r, next := 0, 0
	for b := range s {
		for next < len(byteIdx) && byteIdx[next] == b {
			out = append(out, r)
			next++
		}
		r++
	}
	return out
}
