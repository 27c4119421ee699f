package douban

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cinesort/cinesort/models"
)

// maxDetailActors caps the cast list parsed from a detail page.
const maxDetailActors = 5

var (
	altTitleRe = regexp.MustCompile(`又名:</span>([^<]+)`)
	parenYear  = regexp.MustCompile(`\d{4}`)
)

// Details fetches a subject detail page by sid and parses the extended
// record. Unlike Search, failures come back as errors: a detail lookup is an
// explicit single-item operation, not part of a batch.
func (c *Client) Details(ctx context.Context, sid string) (models.MovieDetails, error) {
	detailURL := fmt.Sprintf("%s/subject/%s/", c.cfg.MovieBaseURL, sid)

	res, err := resolve(ctx, c.newFetcher(), detailURL, c.cfg)
	if err != nil {
		return models.MovieDetails{}, err
	}

	details, err := parseDetails(res.HTML)
	if err != nil {
		return models.MovieDetails{}, err
	}
	details.Sid = sid
	return details, nil
}

// parseDetails extracts the structured record from a subject page. The page
// annotates its facts with RDFa properties, which are far more stable than
// the surrounding layout.
func parseDetails(rawHTML string) (models.MovieDetails, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return models.MovieDetails{}, models.NewAppError(models.ErrCodeInternal, "parse detail page", err)
	}

	var d models.MovieDetails
	d.Title = strings.TrimSpace(doc.Find(`span[property="v:itemreviewed"]`).First().Text())
	if d.Title == "" {
		return models.MovieDetails{}, models.NewAppError(models.ErrCodeNoMatch, "detail page has no title", nil)
	}

	d.Rating = strings.TrimSpace(doc.Find(`strong[property="v:average"]`).First().Text())

	if y := doc.Find("span.year").First().Text(); y != "" {
		d.Year = parenYear.FindString(y)
	}

	doc.Find(`a[rel="v:directedBy"]`).Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			d.Directors = append(d.Directors, name)
		}
	})

	doc.Find(`a[rel="v:starring"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if name := strings.TrimSpace(s.Text()); name != "" {
			d.Actors = append(d.Actors, name)
		}
		return len(d.Actors) < maxDetailActors
	})

	doc.Find(`span[property="v:genre"]`).Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			d.Genres = append(d.Genres, g)
		}
	})

	d.Summary = strings.Join(strings.Fields(doc.Find(`span[property="v:summary"]`).First().Text()), " ")

	// The alternate title has no RDFa property; it sits as loose text after
	// its label.
	if m := altTitleRe.FindStringSubmatch(rawHTML); m != nil {
		d.AlternateTitle = strings.TrimSpace(m[1])
	}

	return d, nil
}
