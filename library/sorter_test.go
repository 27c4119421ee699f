package library

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cinesort/cinesort/config"
	"github.com/cinesort/cinesort/models"
	"github.com/cinesort/cinesort/scan"
)

// stubScanner returns a fixed file list.
type stubScanner struct {
	files []scan.MovieFile
	err   error
}

func (s *stubScanner) ScanDirectory(dir string, recursive bool) ([]scan.MovieFile, error) {
	return s.files, s.err
}

// stubResolver maps movie names to canned records and counts lookups.
type stubResolver struct {
	mu      sync.Mutex
	records map[string]models.MovieRecord
	calls   int
}

func (r *stubResolver) Search(ctx context.Context, name, year string) models.MovieRecord {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if rec, ok := r.records[name]; ok {
		return rec
	}
	return models.ErrorRecord(models.MsgNoMatch)
}

func testLibraryCfg() config.LibraryConfig {
	return config.LibraryConfig{Workers: 2, RequestsPerSecond: 1000, Burst: 1000}
}

func TestSortFolder_ResolvesAllFiles(t *testing.T) {
	scanner := &stubScanner{files: []scan.MovieFile{
		{Path: "/lib/The.Matrix.1999.mkv", Name: "The Matrix", Year: "1999"},
		{Path: "/lib/Inception.2010.mp4", Name: "Inception", Year: "2010"},
	}}
	resolver := &stubResolver{records: map[string]models.MovieRecord{
		"The Matrix": {Title: "黑客帝国", Rating: "9.1", Year: "1999"},
		"Inception":  {Title: "盗梦空间", Rating: "8.8", Year: "2010"},
	}}

	sorter := NewSorter(scanner, resolver, testLibraryCfg())
	entries, err := sorter.SortFolder(context.Background(), "/lib", true)
	if err != nil {
		t.Fatalf("SortFolder() error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if resolver.calls != 2 {
		t.Errorf("lookups = %d, want 2", resolver.calls)
	}

	// Entries stay in scan order regardless of resolution order.
	if entries[0].Path != "/lib/The.Matrix.1999.mkv" {
		t.Errorf("entries[0].Path = %s", entries[0].Path)
	}
	if entries[0].Movie == nil || entries[0].Movie.Title != "黑客帝国" {
		t.Errorf("entries[0].Movie = %+v", entries[0].Movie)
	}
	if entries[1].Movie == nil || entries[1].Movie.Title != "盗梦空间" {
		t.Errorf("entries[1].Movie = %+v", entries[1].Movie)
	}
}

func TestSortFolder_FailuresCarriedInRecords(t *testing.T) {
	scanner := &stubScanner{files: []scan.MovieFile{
		{Path: "/lib/known.mkv", Name: "The Matrix", Year: "1999"},
		{Path: "/lib/unknown.mkv", Name: "Nothing Like This", Year: ""},
	}}
	resolver := &stubResolver{records: map[string]models.MovieRecord{
		"The Matrix": {Title: "黑客帝国", Rating: "9.1"},
	}}

	sorter := NewSorter(scanner, resolver, testLibraryCfg())
	entries, err := sorter.SortFolder(context.Background(), "/lib", false)
	if err != nil {
		t.Fatalf("SortFolder() error: %v", err)
	}

	if entries[0].Movie.Failed() {
		t.Errorf("entries[0] unexpectedly failed: %s", entries[0].Movie.Error)
	}
	if entries[1].Movie == nil || entries[1].Movie.Error != models.MsgNoMatch {
		t.Errorf("entries[1].Movie = %+v, want no-match record", entries[1].Movie)
	}
}

func TestSortFolder_ScanErrorPropagates(t *testing.T) {
	scanner := &stubScanner{err: errors.New("permission denied")}
	sorter := NewSorter(scanner, &stubResolver{}, testLibraryCfg())

	if _, err := sorter.SortFolder(context.Background(), "/nope", true); err == nil {
		t.Error("expected scan error to propagate")
	}
}

func TestSortFolder_EmptyFolder(t *testing.T) {
	sorter := NewSorter(&stubScanner{}, &stubResolver{}, testLibraryCfg())
	entries, err := sorter.SortFolder(context.Background(), "/empty", true)
	if err != nil {
		t.Fatalf("SortFolder() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestSortFolder_CanceledContextSkipsLookups(t *testing.T) {
	scanner := &stubScanner{files: []scan.MovieFile{
		{Path: "/lib/a.mkv", Name: "A Movie"},
	}}
	resolver := &stubResolver{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Rate limiter waits fail immediately on a canceled context, leaving the
	// entry unresolved rather than blocking.
	cfg := config.LibraryConfig{Workers: 1, RequestsPerSecond: 0.001, Burst: 0}
	sorter := NewSorter(scanner, resolver, cfg)
	entries, err := sorter.SortFolder(ctx, "/lib", true)
	if err != nil {
		t.Fatalf("SortFolder() error: %v", err)
	}
	if entries[0].Movie != nil {
		t.Errorf("entries[0].Movie = %+v, want nil for skipped lookup", entries[0].Movie)
	}
}
