package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/cinesort/cinesort/config"
)

// MovieFile is one video file found on disk, with the movie name and release
// year derived from its filename.
type MovieFile struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Year        string `json:"year,omitempty"`
	Extension   string `json:"extension"`
	RawFilename string `json:"raw_filename"`
}

// Year candidates outside this range are serial numbers or resolutions, not
// release years.
const (
	minYear = 1900
	maxYear = 2030
)

// techIndicators are release-quality tokens. A 4-digit run sitting next to
// one of these (e.g. "2160p", "DTS 2013 remaster") usually belongs to the
// release tags rather than being a stray number, so proximity raises
// confidence in the candidate.
var techIndicators = []string{
	"1080", "2160", "720", "4K", "8K", "HD", "BD", "DVD",
	"X264", "X265", "H264", "H265", "HEVC", "AAC", "DTS", "BLURAY", "WEB",
}

var (
	yearRe      = regexp.MustCompile(`(19|20)\d{2}`)
	yearWordRe  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	separatorRe = regexp.MustCompile(`[.\-_]+`)
	spaceRe     = regexp.MustCompile(`\s+`)
	nonWordRe   = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
)

// Scanner walks directories for video files and parses their filenames. The
// cleanup patterns are combined into one alternation compiled once at
// construction.
type Scanner struct {
	extensions map[string]struct{}
	cleanupRe  *regexp.Regexp
}

// NewScanner builds a scanner from configuration. Returns an error if any
// cleanup pattern fails to compile.
func NewScanner(cfg config.ScannerConfig) (*Scanner, error) {
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	joined := make([]string, len(cfg.CleanupPatterns))
	for i, p := range cfg.CleanupPatterns {
		joined[i] = "(?:" + p + ")"
	}
	cleanupRe, err := regexp.Compile(strings.Join(joined, "|"))
	if err != nil {
		return nil, fmt.Errorf("scan: compile cleanup patterns: %w", err)
	}

	return &Scanner{extensions: exts, cleanupRe: cleanupRe}, nil
}

// ScanDirectory finds video files under dir. With recursive set it walks the
// whole tree; otherwise only the top level is read. Unreadable subdirectories
// are logged and skipped rather than failing the scan.
func (s *Scanner) ScanDirectory(dir string, recursive bool) ([]MovieFile, error) {
	var files []MovieFile

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scan: read directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if mf, ok := s.parseFile(filepath.Join(dir, e.Name())); ok {
				files = append(files, mf)
			}
		}
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			slog.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if mf, ok := s.parseFile(path); ok {
			files = append(files, mf)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk directory: %w", err)
	}
	return files, nil
}

// parseFile turns one path into a MovieFile if its extension is a known video
// container.
func (s *Scanner) parseFile(path string) (MovieFile, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := s.extensions[ext]; !ok {
		return MovieFile{}, false
	}

	raw := filepath.Base(path)
	base := strings.TrimSuffix(raw, filepath.Ext(raw))

	year := extractYear(base)
	name := s.cleanName(base)
	if name == "" {
		return MovieFile{}, false
	}

	return MovieFile{
		Path:        path,
		Name:        name,
		Year:        year,
		Extension:   ext,
		RawFilename: raw,
	}, true
}

// extractYear picks the most plausible release year out of a filename. Every
// 4-digit candidate in range is scored: proximity to a release-spec token
// and a later position both raise the score, since scene names put the year
// after the title and specs after the year. Ties go to the later candidate.
func extractYear(base string) string {
	upper := strings.ToUpper(base)

	best := ""
	bestScore := -1.0
	for _, loc := range yearRe.FindAllStringIndex(base, -1) {
		candidate := base[loc[0]:loc[1]]
		n, _ := strconv.Atoi(candidate)
		if n < minYear || n > maxYear {
			continue
		}

		score := 0.0
		lo := loc[0] - 10
		if lo < 0 {
			lo = 0
		}
		hi := loc[1] + 10
		if hi > len(upper) {
			hi = len(upper)
		}
		context := upper[lo:hi]
		for _, ind := range techIndicators {
			if strings.Contains(context, ind) {
				score += 2
				break
			}
		}
		score += float64(loc[0]) / float64(len(base)) * 0.5

		if score >= bestScore {
			best, bestScore = candidate, score
		}
	}
	return best
}

// cleanName strips release noise from a filename base and returns the movie
// name. Falls back to the raw base with punctuation removed when cleanup
// eats everything.
func (s *Scanner) cleanName(base string) string {
	name := s.cleanupRe.ReplaceAllString(base, " ")
	name = separatorRe.ReplaceAllString(name, " ")
	name = yearWordRe.ReplaceAllString(name, " ")

	// Cleanup leaves behind stray single ASCII letters (codec fragments,
	// scene group initials); CJK single-rune words are real words and stay.
	words := strings.Fields(name)
	kept := words[:0]
	for _, w := range words {
		if len(w) == 1 && w[0] < 0x80 && !isDigit(w[0]) {
			continue
		}
		kept = append(kept, w)
	}
	name = strings.Join(kept, " ")

	if name == "" {
		name = strings.TrimSpace(spaceRe.ReplaceAllString(nonWordRe.ReplaceAllString(base, " "), " "))
	}
	return name
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
