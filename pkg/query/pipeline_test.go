package query

import (
	"strings"
	"testing"
)

type doc struct {
	Name    string
	Lang    string
	Stars   int
	Updated string
}

func docPipeline() *Pipeline[doc] {
	return &Pipeline[doc]{
		SearchFields: []func(doc) string{
			func(d doc) string { return d.Name },
			func(d doc) string { return d.Lang },
		},
		Sorts: map[string]LessFunc[doc]{
			"name":    func(a, b doc) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
			"stars":   func(a, b doc) bool { return a.Stars < b.Stars },
			"updated": func(a, b doc) bool { return a.Updated < b.Updated },
		},
		DefaultSort: "updated",
	}
}

func sampleDocs() []doc {
	return []doc{
		{Name: "alpha", Lang: "Go", Stars: 5, Updated: "2024-03-01T00:00:00Z"},
		{Name: "bravo", Lang: "Python", Stars: 12, Updated: "2024-01-15T00:00:00Z"},
		{Name: "Charlie", Lang: "Go", Stars: 2, Updated: "2024-06-20T00:00:00Z"},
		{Name: "delta", Lang: "Rust", Stars: 12, Updated: "2024-02-10T00:00:00Z"},
	}
}

func TestFilter(t *testing.T) {
	p := docPipeline()
	docs := sampleDocs()

	tests := []struct {
		name   string
		search string
		want   int
	}{
		{"empty query returns all", "", 4},
		{"whitespace query returns all", "   ", 4},
		{"case-insensitive name match", "CHARLIE", 1},
		{"language match", "go", 2},
		{"substring match", "lph", 1},
		{"no match", "zig", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Filter(docs, tt.search)
			if len(got) != tt.want {
				t.Errorf("Filter(%q) returned %d items, want %d", tt.search, len(got), tt.want)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	p := docPipeline()
	once := p.Filter(sampleDocs(), "go")
	twice := p.Filter(once, "go")

	if len(once) != len(twice) {
		t.Errorf("second filter changed result: %d -> %d items", len(once), len(twice))
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	p := docPipeline()
	docs := sampleDocs()
	p.Filter(docs, "go")

	if docs[0].Name != "alpha" || len(docs) != 4 {
		t.Error("Filter mutated its input")
	}
}

func TestSort_DefaultDescending(t *testing.T) {
	p := docPipeline()
	sorted := p.Sort(sampleDocs(), "", "", "")

	if sorted[0].Name != "Charlie" {
		t.Errorf("first item = %s, want Charlie (most recently updated)", sorted[0].Name)
	}
	if sorted[3].Name != "bravo" {
		t.Errorf("last item = %s, want bravo (oldest)", sorted[3].Name)
	}
}

func TestSort_TableSortOverrides(t *testing.T) {
	p := docPipeline()

	asc := p.Sort(sampleDocs(), "updated", "name", "")
	if asc[0].Name != "alpha" {
		t.Errorf("ascending table sort: first = %s, want alpha", asc[0].Name)
	}

	desc := p.Sort(sampleDocs(), "updated", "name", "desc")
	if desc[0].Name != "delta" {
		t.Errorf("descending table sort: first = %s, want delta", desc[0].Name)
	}
}

func TestSort_ReversalSymmetry(t *testing.T) {
	p := docPipeline()
	asc := p.Sort(sampleDocs(), "", "name", "asc")
	desc := p.Sort(sampleDocs(), "", "name", "desc")

	for i := range asc {
		if asc[i].Name != desc[len(desc)-1-i].Name {
			t.Fatalf("desc is not the reverse of asc at index %d: %s vs %s",
				i, asc[i].Name, desc[len(desc)-1-i].Name)
		}
	}
}

func TestSort_UnknownKeyFallsBack(t *testing.T) {
	p := docPipeline()
	sorted := p.Sort(sampleDocs(), "", "bogus", "asc")
	byDefault := p.Sort(sampleDocs(), "", "", "")

	for i := range sorted {
		if sorted[i].Name != byDefault[i].Name {
			t.Fatalf("unknown key order differs from default at index %d", i)
		}
	}
}

func TestSort_Stable(t *testing.T) {
	p := docPipeline()
	// bravo and delta tie on stars; input order must survive.
	sorted := p.Sort(sampleDocs(), "", "stars", "asc")

	var ties []string
	for _, d := range sorted {
		if d.Stars == 12 {
			ties = append(ties, d.Name)
		}
	}
	if len(ties) != 2 || ties[0] != "bravo" || ties[1] != "delta" {
		t.Errorf("tied items reordered: %v", ties)
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	p := docPipeline()
	docs := sampleDocs()
	p.Sort(docs, "", "name", "asc")

	if docs[0].Name != "alpha" {
		t.Error("Sort mutated its input")
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 95)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name       string
		page       int
		perPage    int
		wantLen    int
		wantPages  int
		wantNext   bool
		wantPrev   bool
		wantFirst  int
	}{
		{"first page", 1, 30, 30, 4, true, false, 0},
		{"middle page", 2, 30, 30, 4, true, true, 30},
		{"last partial page", 4, 30, 5, 4, false, true, 90},
		{"page past end is empty", 9, 30, 0, 4, false, true, -1},
		{"page below one clamps", 0, 30, 30, 4, true, false, 0},
		{"per_page above cap clamps", 1, 500, 95, 1, false, false, 0},
		{"per_page below one clamps", 1, 0, 1, 95, true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pg := Paginate(items, tt.page, tt.perPage)

			if len(page) != tt.wantLen {
				t.Errorf("page length = %d, want %d", len(page), tt.wantLen)
			}
			if pg.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", pg.TotalPages, tt.wantPages)
			}
			if pg.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", pg.HasNext, tt.wantNext)
			}
			if pg.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v, want %v", pg.HasPrev, tt.wantPrev)
			}
			if pg.TotalCount != 95 {
				t.Errorf("TotalCount = %d, want 95", pg.TotalCount)
			}
			if tt.wantFirst >= 0 && len(page) > 0 && page[0] != tt.wantFirst {
				t.Errorf("first item = %d, want %d", page[0], tt.wantFirst)
			}
		})
	}
}

func TestPaginate_EmptyCollection(t *testing.T) {
	page, pg := Paginate([]int{}, 1, 30)

	if len(page) != 0 {
		t.Errorf("page length = %d, want 0", len(page))
	}
	if pg.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1 for empty collection", pg.TotalPages)
	}
	if pg.HasNext || pg.HasPrev {
		t.Error("empty collection must have neither next nor prev")
	}
}

func TestRun_NoMatchKeepsEnvelope(t *testing.T) {
	p := docPipeline()
	page, pg := p.Run(sampleDocs(), Params{Search: "nothing-matches", Page: 1, PerPage: 30})

	if len(page) != 0 {
		t.Errorf("page length = %d, want 0", len(page))
	}
	if pg.TotalCount != 0 || pg.TotalPages != 1 {
		t.Errorf("envelope = {count %d, pages %d}, want {0, 1}", pg.TotalCount, pg.TotalPages)
	}
}
