package models

// Query identifies one movie lookup. Immutable for the lifetime of a request;
// it drives both the outbound search term and post-hoc year disambiguation.
type Query struct {
	Name string `json:"name"`
	Year string `json:"year,omitempty"`
}

// Term returns the text sent to the site's search endpoint.
func (q Query) Term() string {
	if q.Year == "" {
		return q.Name
	}
	return q.Name + " " + q.Year
}

// Messages used for MovieRecord.Error. The public record is deliberately
// category-losing: transport failures and exhausted challenge retries both
// collapse to MsgNoContent, with the distinction preserved in logs only.
const (
	MsgNoContent = "no content retrieved"
	MsgNoMatch   = "no matching result"
)

// MovieRecord is the structured result of one search query.
//
// Error is populated exclusively on failure; every other field is then left
// at its zero value. Genres is reserved for the detail page and stays empty
// on search results. Sid is populated only when the structured extraction
// tier succeeds, and is what the detail endpoint consumes.
type MovieRecord struct {
	Title         string   `json:"title"`
	Rating        string   `json:"rating"`
	Description   string   `json:"description"`
	Directors     []string `json:"directors"`
	Actors        []string `json:"actors"`
	Year          string   `json:"year"`
	Genres        []string `json:"genres"`
	OriginalTitle string   `json:"original_title"`
	ReviewCount   string   `json:"review_count"`
	Sid           string   `json:"sid"`
	Error         string   `json:"error,omitempty"`
}

// Failed reports whether the record carries an error instead of data.
func (r MovieRecord) Failed() bool { return r.Error != "" }

// ErrorRecord returns a MovieRecord with only the error message populated.
func ErrorRecord(msg string) MovieRecord {
	return MovieRecord{Error: msg}
}

// MovieDetails is the extended record parsed from a subject detail page.
type MovieDetails struct {
	Sid            string   `json:"sid"`
	Title          string   `json:"title"`
	Rating         string   `json:"rating"`
	Year           string   `json:"year"`
	Directors      []string `json:"directors"`
	Actors         []string `json:"actors"`
	Genres         []string `json:"genres"`
	Summary        string   `json:"summary"`
	AlternateTitle string   `json:"alternate_title,omitempty"`
}
