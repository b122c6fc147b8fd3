package question

// Index maps 1-based page numbers to their entries. Pages keeps insertion
// order, which is page order.
type Index struct {
	pages   []int
	entries map[int][]Entry
}

func NewIndex() *Index {
	return &Index{entries: make(map[int][]Entry)}
}

// Add records the entries of a page result. A page that was already added
// is replaced in place.
func (idx *Index) Add(res PageResult) {
	if _, ok := idx.entries[res.Page]; !ok {
		idx.pages = append(idx.pages, res.Page)
	}
	entries := res.Entries
	if entries == nil {
		entries = []Entry{}
	}
	idx.entries[res.Page] = entries
}

// Page returns the entries for page n and whether the page is indexed.
func (idx *Index) Page(n int) ([]Entry, bool) {
	entries, ok := idx.entries[n]
	return entries, ok
}

// Pages returns the indexed page numbers in page order.
func (idx *Index) Pages() []int {
	out := make([]int, len(idx.pages))
	copy(out, idx.pages)
	return out
}

// Find returns the first entry on page n with the given question number.
func (idx *Index) Find(n, qnum int) (Entry, bool) {
	for _, e := range idx.entries[n] {
		if e.QNum == qnum {
			return e, true
		}
	}
	return Entry{}, false
}

// Total counts entries across all pages.
func (idx *Index) Total() int {
	total := 0
	for _, p := range idx.pages {
		total += len(idx.entries[p])
	}
	return total
}

// Report collects per-page results from an indexing run.
type Report struct {
	Pages []PageResult
}

// Failed returns the results of pages that ended with an error.
func (r *Report) Failed() []PageResult {
	var out []PageResult
	for _, p := range r.Pages {
		if !p.OK() {
			out = append(out, p)
		}
	}
	return out
}
