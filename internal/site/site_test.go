package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"nailsite/internal/content"
	"nailsite/internal/models"
)

func page(folder, category string) models.Page {
	return models.Page{Title: strings.ToUpper(folder), Folder: folder, Category: category}
}

func folders(pages []models.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Folder
	}
	return out
}

func names(cats []models.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}

func equal(a, b []string) bool {
	return strings.Join(a, ",") == strings.Join(b, ",")
}

func TestGroup_Scenario(t *testing.T) {
	pages := []models.Page{
		page("intro", "Guides"),
		page("release-1-0", "Releases"),
		page("release-1-1", "Releases"),
	}

	cats := Group(pages, nil)

	if got := names(cats); !equal(got, []string{"Guides", "Releases"}) {
		t.Fatalf("categories = %v, want [Guides Releases]", got)
	}
	if got := folders(cats[0].Pages); !equal(got, []string{"intro"}) {
		t.Errorf("Guides = %v, want [intro]", got)
	}
	if got := folders(cats[1].Pages); !equal(got, []string{"release-1-0", "release-1-1"}) {
		t.Errorf("Releases = %v, want [release-1-0 release-1-1]", got)
	}
	if p := cats[1].Pages[0].Permalink(); !strings.HasSuffix(p, "/release-1-0") {
		t.Errorf("Permalink() = %q, want suffix /release-1-0", p)
	}
}

func TestGroup_Ordering(t *testing.T) {
	pages := []models.Page{
		page("a", "News"),
		page("b", "Guides"),
		page("c", "News"),
		page("d", "Releases"),
		page("e", "Guides"),
	}

	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{name: "first seen", order: nil, want: []string{"News", "Guides", "Releases"}},
		{name: "configured first", order: []string{"Releases", "Guides"}, want: []string{"Releases", "Guides", "News"}},
		{name: "unknown configured names dropped", order: []string{"Missing", "Guides"}, want: []string{"Guides", "News", "Releases"}},
		{name: "blank and repeated names ignored", order: []string{" ", "Guides", "Guides"}, want: []string{"Guides", "News", "Releases"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Group(pages, tt.order))
			if !equal(got, tt.want) {
				t.Errorf("Group() order = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGroup_CategoryNamesMatchLoosely verifies that spellings differing
// only in case or separators form a single category.
func TestGroup_CategoryNamesMatchLoosely(t *testing.T) {
	pages := []models.Page{
		page("a", "Releases"),
		page("b", "releases"),
		page("c", "Getting Started"),
		page("d", "getting-started"),
		page("e", " RELEASES "),
		page("f", "general"),
		page("g", ""),
	}

	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{name: "first spelling wins", order: nil, want: []string{"Releases", "Getting Started", "general"}},
		{name: "configured spelling wins", order: []string{"getting_started", "RELEASES"}, want: []string{"getting_started", "RELEASES", "general"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(Group(pages, tt.order)); !equal(got, tt.want) {
				t.Errorf("categories = %v, want %v", got, tt.want)
			}
		})
	}

	cats := Group(pages, nil)
	if got := folders(cats[0].Pages); !equal(got, []string{"a", "b", "e"}) {
		t.Errorf("Releases = %v, want [a b e]", got)
	}
	if got := folders(cats[1].Pages); !equal(got, []string{"c", "d"}) {
		t.Errorf("Getting Started = %v, want [c d]", got)
	}
	if got := folders(cats[2].Pages); !equal(got, []string{"f", "g"}) {
		t.Errorf("general = %v, want [f g]", got)
	}
}

// TestGroup_LoadedCategories verifies that a directory-derived category
// and the same name written in front matter end up together.
func TestGroup_LoadedCategories(t *testing.T) {
	fsys := fstest.MapFS{
		"releases/a.md": {Data: []byte("---\ntitle: A\ndate: 2024-02-01\n---\n")},
		"b.md":          {Data: []byte("---\ntitle: B\ncategory: releases\ndate: 2024-01-01\n---\n")},
	}
	pages, err := content.NewLoader(fsys, content.Options{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cats := Group(pages, nil)
	if len(cats) != 1 {
		t.Fatalf("categories = %v, want a single category", names(cats))
	}
	if cats[0].Name != "Releases" || !equal(folders(cats[0].Pages), []string{"a", "b"}) {
		t.Errorf("category = %q %v, want Releases [a b]", cats[0].Name, folders(cats[0].Pages))
	}
}

// TestGroup_PreservesPageOrder verifies that pages are not re-sorted
// within a category.
func TestGroup_PreservesPageOrder(t *testing.T) {
	pages := []models.Page{page("z", "A"), page("m", "A"), page("a", "A")}
	cats := Group(pages, nil)
	if got := folders(cats[0].Pages); !equal(got, []string{"z", "m", "a"}) {
		t.Errorf("pages = %v, want input order [z m a]", got)
	}
}

func TestGroup_DefaultCategory(t *testing.T) {
	pages := []models.Page{page("a", ""), page("b", "  "), page("c", "Guides")}
	cats := Group(pages, nil)

	if got := names(cats); !equal(got, []string{DefaultCategory, "Guides"}) {
		t.Fatalf("categories = %v", got)
	}
	if got := folders(cats[0].Pages); !equal(got, []string{"a", "b"}) {
		t.Errorf("%s = %v, want [a b]", DefaultCategory, got)
	}
}

// TestGroup_Completeness verifies that every page lands in exactly one
// category, for a range of input shapes.
func TestGroup_Completeness(t *testing.T) {
	inputs := [][]models.Page{
		nil,
		{page("solo", "")},
		{page("a", "X"), page("b", "Y"), page("c", "X"), page("d", ""), page("e", "Z")},
	}
	for i := 0; i < 50; i++ {
		var ps []models.Page
		for j := 0; j < i; j++ {
			ps = append(ps, page(fmt.Sprintf("p%d", j), fmt.Sprintf("c%d", (j*7)%5)))
		}
		inputs = append(inputs, ps)
	}

	for _, in := range inputs {
		cats := Group(in, []string{"c3", "X"})
		seen := make(map[string]int)
		for _, c := range cats {
			if len(c.Pages) == 0 {
				t.Errorf("empty category %q returned", c.Name)
			}
			for _, p := range c.Pages {
				seen[p.Folder]++
			}
		}
		if len(seen) != len(in) {
			t.Errorf("got %d distinct pages, want %d", len(seen), len(in))
		}
		for f, n := range seen {
			if n != 1 {
				t.Errorf("page %q appears %d times", f, n)
			}
		}
	}
}

func TestBuildSummary(t *testing.T) {
	cats := Group([]models.Page{
		page("intro", "Guides"),
		page("release-1-0", "Releases"),
		page("release-1-1", "Releases"),
	}, nil)

	s := BuildSummary(cats)

	if got := names(s.Categories); !equal(got, names(cats)) {
		t.Errorf("summary order = %v, want %v", got, names(cats))
	}
	for i := range cats {
		if !equal(folders(s.Categories[i].Pages), folders(cats[i].Pages)) {
			t.Errorf("category %d pages = %v, want %v", i, folders(s.Categories[i].Pages), folders(cats[i].Pages))
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	// The summary owns its slices.
	cats[1].Pages[0].Title = "changed"
	if s.Categories[1].Pages[0].Title == "changed" {
		t.Error("summary shares page storage with its input")
	}
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(nil)
	if len(s.Categories) != 0 || s.Len() != 0 {
		t.Errorf("BuildSummary(nil) = %+v, want empty", s)
	}
}

type fakeSource struct {
	pages []models.Page
	err   error
}

func (f fakeSource) Load(context.Context) ([]models.Page, error) {
	return f.pages, f.err
}

func TestBuild(t *testing.T) {
	src := fakeSource{pages: []models.Page{
		page("intro", "Guides"),
		page("release-1-0", "Releases"),
	}}

	snap, err := Build(context.Background(), src, Options{CategoryOrder: []string{"Releases"}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := names(snap.Summary().Categories); !equal(got, []string{"Releases", "Guides"}) {
		t.Errorf("categories = %v", got)
	}
	if got := folders(snap.Pages()); !equal(got, []string{"intro", "release-1-0"}) {
		t.Errorf("Pages() = %v", got)
	}

	p, ok := snap.Page("release-1-0")
	if !ok || p.Title != "RELEASE-1-0" {
		t.Errorf("Page(release-1-0) = %+v, %v", p, ok)
	}
	if _, ok := snap.Page("Release 1.0"); !ok {
		t.Error("Page() should normalise the folder")
	}
	if _, ok := snap.Page("missing"); ok {
		t.Error("Page(missing) should not be found")
	}
}

func TestBuild_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(context.Background(), fakeSource{err: boom}, Options{})
	if !errors.Is(err, boom) {
		t.Errorf("Build() error = %v, want wrapped boom", err)
	}
}

// TestSnapshot_AccessorsReturnCopies verifies that readers cannot change
// a published snapshot through the values it hands out.
func TestSnapshot_AccessorsReturnCopies(t *testing.T) {
	author := "Ian"
	src := page("intro", "Guides")
	src.Author = &author
	snap := NewSnapshot([]models.Page{src}, Options{})

	author = "changed by the caller"

	s := snap.Summary()
	s.Categories[0].Name = "MUTATED"
	s.Categories[0].Pages[0].Title = "MUTATED"
	*s.Categories[0].Pages[0].Author = "MUTATED"

	pages := snap.Pages()
	pages[0].Title = "MUTATED"
	*pages[0].Author = "MUTATED"

	p, _ := snap.Page("intro")
	p.Title = "MUTATED"
	*p.Author = "MUTATED"

	fresh := snap.Summary()
	if fresh.Categories[0].Name != "Guides" {
		t.Errorf("category name = %q, want Guides", fresh.Categories[0].Name)
	}
	got := fresh.Categories[0].Pages[0]
	if got.Title != "INTRO" || *got.Author != "Ian" {
		t.Errorf("summary page = %q by %q, want INTRO by Ian", got.Title, *got.Author)
	}
	if got, _ := snap.Page("intro"); got.Title != "INTRO" || *got.Author != "Ian" {
		t.Errorf("Page() = %q by %q, want INTRO by Ian", got.Title, *got.Author)
	}
	if got := snap.Pages()[0]; got.Title != "INTRO" || *got.Author != "Ian" {
		t.Errorf("Pages()[0] = %q by %q, want INTRO by Ian", got.Title, *got.Author)
	}
}

func TestStore(t *testing.T) {
	first := NewSnapshot([]models.Page{page("a", "")}, Options{})
	second := NewSnapshot([]models.Page{page("b", "")}, Options{})

	s := NewStore(first)
	if s.Load() != first {
		t.Fatal("Load() should return the initial snapshot")
	}
	if old := s.Swap(second); old != first {
		t.Error("Swap() should return the previous snapshot")
	}
	if s.Load() != second {
		t.Error("Load() should return the swapped snapshot")
	}
	if first.ID == second.ID {
		t.Error("snapshots should have distinct build IDs")
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(NewSnapshot(nil, Options{}))

	var builds int
	rebuild := func(ctx context.Context) (*Snapshot, error) {
		builds++
		return NewSnapshot([]models.Page{page(fmt.Sprintf("build-%d", builds), "")}, Options{}), nil
	}

	w := NewWatcher(dir, store, rebuild)
	w.debounce = 20 * time.Millisecond
	swapped := make(chan *Snapshot, 4)
	w.OnSwap = func(_, current *Snapshot) { swapped <- current }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "post.md"), []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case snap := <-swapped:
		if store.Load() != snap {
			t.Error("store should serve the rebuilt snapshot")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not rebuild after a file change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error: %v", err)
	}
}

func TestWatcher_FailedRebuildKeepsSnapshot(t *testing.T) {
	initial := NewSnapshot(nil, Options{})
	store := NewStore(initial)
	w := NewWatcher(t.TempDir(), store, func(context.Context) (*Snapshot, error) {
		return nil, errors.New("bad content")
	})

	w.reload(context.Background())

	if store.Load() != initial {
		t.Error("failed rebuild should keep the previous snapshot")
	}
}
