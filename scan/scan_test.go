package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cinesort/cinesort/config"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(config.Load().Scanner)
	if err != nil {
		t.Fatalf("NewScanner() error: %v", err)
	}
	return s
}

func TestParseFile_Filenames(t *testing.T) {
	s := newTestScanner(t)

	tests := []struct {
		filename string
		wantName string
		wantYear string
	}{
		{"The.Matrix.1999.1080p.BluRay.x264.mkv", "The Matrix", "1999"},
		{"Inception.2010.720p.BDRip.mp4", "Inception", "2010"},
		{"Spirited_Away_2001.mp4", "Spirited Away", "2001"},
		{"[电影天堂]让子弹飞.2010.HD1080P.国语中字.mkv", "让子弹飞", "2010"},
		{"海上钢琴师.mkv", "海上钢琴师", ""},
		{"Parasite (2019) [2160p] [WEB-DL].mkv", "Parasite", "2019"},
		{"old.movie.avi", "old movie", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			mf, ok := s.parseFile(filepath.Join("/library", tt.filename))
			if !ok {
				t.Fatalf("parseFile(%q) rejected the file", tt.filename)
			}
			if mf.Name != tt.wantName {
				t.Errorf("name = %q, want %q", mf.Name, tt.wantName)
			}
			if mf.Year != tt.wantYear {
				t.Errorf("year = %q, want %q", mf.Year, tt.wantYear)
			}
			if mf.RawFilename != tt.filename {
				t.Errorf("raw filename = %q, want %q", mf.RawFilename, tt.filename)
			}
		})
	}
}

func TestParseFile_RejectsNonVideo(t *testing.T) {
	s := newTestScanner(t)

	for _, filename := range []string{"notes.txt", "poster.jpg", "subtitles.srt", "noextension"} {
		if _, ok := s.parseFile(filepath.Join("/library", filename)); ok {
			t.Errorf("parseFile(%q) accepted a non-video file", filename)
		}
	}
}

func TestParseFile_ExtensionCaseInsensitive(t *testing.T) {
	s := newTestScanner(t)

	mf, ok := s.parseFile("/library/The.Matrix.1999.MKV")
	if !ok {
		t.Fatal("uppercase extension rejected")
	}
	if mf.Extension != ".mkv" {
		t.Errorf("extension = %q, want .mkv", mf.Extension)
	}
}

func TestExtractYear_PrefersReleaseYearOverResolutionContext(t *testing.T) {
	if got := extractYear("Interstellar.2014.2160p.BluRay"); got != "2014" {
		t.Errorf("year = %q, want 2014", got)
	}

	// With two in-range candidates the later one wins on position.
	if got := extractYear("2012.2009.1080p"); got != "2009" {
		t.Errorf("year = %q, want 2009", got)
	}

	// Out-of-range candidates are never picked.
	if got := extractYear("Cyberpunk.2077.Gameplay.2021"); got != "2021" {
		t.Errorf("year = %q, want 2021", got)
	}

	// No candidate at all.
	if got := extractYear("Some.Movie.Title"); got != "" {
		t.Errorf("year = %q, want empty", got)
	}
}

func TestScanDirectory_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "The.Matrix.1999.mkv")
	writeFile(t, dir, "notes.txt")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "Inception.2010.mp4")

	s := newTestScanner(t)
	files, err := s.ScanDirectory(dir, false)
	if err != nil {
		t.Fatalf("ScanDirectory() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("found %d files, want 1: %+v", len(files), files)
	}
	if files[0].Name != "The Matrix" {
		t.Errorf("name = %q, want The Matrix", files[0].Name)
	}
}

func TestScanDirectory_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "The.Matrix.1999.mkv")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "Inception.2010.mp4")

	s := newTestScanner(t)
	files, err := s.ScanDirectory(dir, true)
	if err != nil {
		t.Fatalf("ScanDirectory() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %+v", len(files), files)
	}
}

func TestScanDirectory_MissingDir(t *testing.T) {
	s := newTestScanner(t)
	if _, err := s.ScanDirectory(filepath.Join(t.TempDir(), "nope"), false); err == nil {
		t.Error("expected error for missing directory")
	}
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
