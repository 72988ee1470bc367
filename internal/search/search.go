package search

// Result is an indexed item with its match metadata. MatchedIndexes are rune
// positions in Title.
type Result[T any] struct {
	Item           T
	Title          string
	MatchedIndexes []int
	Score          int
}

// Index is a searchable list of items. Titles are lowercased once at index
// time so a query does not allocate per item. Lowercasing keeps the rune
// count, so positions found in the lowercase title hold for the original.
type Index[T any] struct {
	items       []T
	titles      []string
	lowerTitles []string
}

// NewIndex creates an index with room for n items
func NewIndex[T any](n int) *Index[T] {
	return &Index[T]{
		items:       make([]T, 0, n),
		titles:      make([]string, 0, n),
		lowerTitles: make([]string, 0, n),
	}
}

// Add indexes item under title
func (x *Index[T]) Add(item T, title string) {
	x.items = append(x.items, item)
	x.titles = append(x.titles, title)
	x.lowerTitles = append(x.lowerTitles, lower(title))
}

// String returns the lowercase title at i (implements fuzzy.Source)
func (x *Index[T]) String(i int) string { return x.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (x *Index[T]) Len() int { return len(x.items) }

// Search returns up to limit matches, best first. A limit of zero or less
// returns every match.
func (x *Index[T]) Search(query string, limit int) []Result[T] {
	matches := Find(query, x)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	results := make([]Result[T], len(matches))
	for i, m := range matches {
		results[i] = Result[T]{
			Item:           x.items[m.Index],
			Title:          x.titles[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
