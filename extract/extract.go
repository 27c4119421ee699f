package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/cinesort/cinesort/models"
)

// Precompiled selectors for the structured result layout.
var (
	resultSel    = cascadia.MustCompile("div.result")
	ratingSel    = cascadia.MustCompile("span.rating_nums")
	castSel      = cascadia.MustCompile("span.subject-cast")
	titleLinkSel = cascadia.MustCompile("h3 a")
	tagSel       = cascadia.MustCompile("h3 span")
	descSel      = cascadia.MustCompile("p")
)

var (
	sidRe      = regexp.MustCompile(`sid:\s*(\d+)`)
	reviewRe   = regexp.MustCompile(`\((\d+)人评价\)`)
	yearRe     = regexp.MustCompile(`\d{4}`)
	onlyYearRe = regexp.MustCompile(`^\d{4}$`)
	tagRe      = regexp.MustCompile(`^\[(.+)\]$`)
)

const (
	// movieKind is the category tag marking a movie result. Search pages mix
	// in books, music and TV, all tagged the same way.
	movieKind = "电影"

	maxActors      = 5
	maxDescription = 200
)

// candidate is one potential match found on the page, tagged with its
// category so non-movie results can be dropped before selection.
type candidate struct {
	kind   string
	record models.MovieRecord
}

// Extract parses a search result page into a single movie record. It tries
// the structured result layout first and degrades to loose anchor scanning
// when the layout is absent. A page yielding no movie candidates produces an
// error record with MsgNoMatch.
//
// Extraction is a pure function of its inputs: the same page and query always
// yield the same record, and selection never mutates the candidates.
func Extract(rawHTML string, q models.Query) models.MovieRecord {
	candidates := structuredTier(rawHTML)
	if len(candidates) == 0 {
		candidates = looseTier(rawHTML)
	}

	var movies []candidate
	for _, c := range candidates {
		if c.kind == movieKind {
			movies = append(movies, c)
		}
	}
	if len(movies) == 0 {
		return models.ErrorRecord(models.MsgNoMatch)
	}

	return pick(movies, q)
}

// pick selects the best candidate: the first whose year matches the query,
// falling back to the first in document order.
func pick(movies []candidate, q models.Query) models.MovieRecord {
	if q.Year != "" {
		for _, c := range movies {
			if c.record.Year == q.Year {
				return c.record
			}
		}
	}
	return movies[0].record
}

// structuredTier parses the canonical result layout: one div.result per hit,
// each carrying a category tag, a titled link with an sid reference, a rating
// and a cast line. Blocks missing a title or rating are skipped rather than
// emitted half-filled.
func structuredTier(rawHTML string) []candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var out []candidate
	doc.FindMatcher(resultSel).Each(func(_ int, block *goquery.Selection) {
		var c candidate

		if m := tagRe.FindStringSubmatch(strings.TrimSpace(block.FindMatcher(tagSel).First().Text())); m != nil {
			c.kind = m[1]
		}

		link := block.FindMatcher(titleLinkSel).First()
		c.record.Title = strings.TrimSpace(link.Text())
		c.record.Rating = strings.TrimSpace(block.FindMatcher(ratingSel).First().Text())
		if c.record.Title == "" || c.record.Rating == "" {
			return
		}

		if onclick, ok := link.Attr("onclick"); ok {
			if m := sidRe.FindStringSubmatch(onclick); m != nil {
				c.record.Sid = m[1]
			}
		}
		if c.record.Sid == "" {
			if blockHTML, err := block.Html(); err == nil {
				if m := sidRe.FindStringSubmatch(blockHTML); m != nil {
					c.record.Sid = m[1]
				}
			}
		}

		if m := reviewRe.FindStringSubmatch(block.Text()); m != nil {
			c.record.ReviewCount = m[1]
		}

		parseCastLine(block.FindMatcher(castSel).First().Text(), &c.record)

		desc := strings.Join(strings.Fields(block.FindMatcher(descSel).First().Text()), " ")
		c.record.Description = truncateRunes(desc, maxDescription)

		out = append(out, c)
	})
	return out
}

// parseCastLine fills credits from a slash-separated cast line, shaped like
// "原名:Inception / 克里斯托弗·诺兰 / 莱昂纳多·迪卡普里奥 / ... / 2010".
// The original-title prefix is optional; the director always comes first,
// actors follow until the trailing year, and the year is whichever 4-digit
// run appears last.
func parseCastLine(line string, rec *models.MovieRecord) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	parts := strings.Split(line, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if strings.HasPrefix(parts[0], "原名:") {
		rec.OriginalTitle = strings.TrimSpace(strings.TrimPrefix(parts[0], "原名:"))
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return
	}

	rec.Directors = []string{parts[0]}
	for _, p := range parts[1:] {
		if p == "" || onlyYearRe.MatchString(p) {
			break
		}
		rec.Actors = append(rec.Actors, p)
		if len(rec.Actors) >= maxActors {
			break
		}
	}

	if matches := yearRe.FindAllString(line, -1); len(matches) > 0 {
		rec.Year = matches[len(matches)-1]
	}
}

// truncateRunes shortens s to at most n runes without splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
