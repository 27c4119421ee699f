package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/cinesort/cinesort/models"
)

// junkKeywords mark anchors that are page furniture rather than titles.
var junkKeywords = []string{"可播放", "预告", "花絮", "回顶部", "↑", "&#8593;"}

// looseTier recovers bare titles from pages whose result layout is broken or
// redesigned. It scans twice: first for anchors inside movie-tagged headings,
// then, if that finds nothing, for any plausible title-length anchor. Records
// from this tier carry a title only.
func looseTier(rawHTML string) []candidate {
	if out := taggedAnchors(rawHTML); len(out) > 0 {
		return out
	}
	return bareAnchors(rawHTML)
}

// taggedAnchors finds anchor text inside h3 headings that carry the movie
// category tag.
func taggedAnchors(rawHTML string) []candidate {
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	var out []candidate
	inH3, movieTagged, inAnchor := false, false, false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			tn, _ := z.TagName()
			switch string(tn) {
			case "h3":
				inH3, movieTagged = true, false
			case "a":
				if inH3 {
					inAnchor = true
				}
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			switch string(tn) {
			case "h3":
				inH3, movieTagged = false, false
			case "a":
				inAnchor = false
			}
		case html.TextToken:
			text := strings.TrimSpace(string(z.Text()))
			if !inH3 || text == "" {
				continue
			}
			if strings.Contains(text, "["+movieKind+"]") {
				movieTagged = true
				continue
			}
			if inAnchor && movieTagged {
				out = append(out, candidate{
					kind:   movieKind,
					record: models.MovieRecord{Title: text},
				})
			}
		}
	}
}

// bareAnchors is the last resort: every anchor whose text is title-length and
// free of navigation junk. All hits are assumed to be movies since nothing on
// the page says otherwise.
func bareAnchors(rawHTML string) []candidate {
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	var out []candidate
	inAnchor := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			tn, _ := z.TagName()
			if string(tn) == "a" {
				inAnchor = true
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			if string(tn) == "a" {
				inAnchor = false
			}
		case html.TextToken:
			if !inAnchor {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if n := utf8.RuneCountInString(text); n < 2 || n > 50 {
				continue
			}
			if isJunk(text) {
				continue
			}
			out = append(out, candidate{
				kind:   movieKind,
				record: models.MovieRecord{Title: text},
			})
		}
	}
}

func isJunk(text string) bool {
	for _, kw := range junkKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
