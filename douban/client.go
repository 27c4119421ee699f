package douban

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/cinesort/cinesort/config"
	"github.com/cinesort/cinesort/extract"
	"github.com/cinesort/cinesort/models"
)

// searchCategory restricts search results to the movie category.
const searchCategory = "1002"

// Client performs movie lookups against the site. Each lookup gets a fresh
// session so a poisoned identity never leaks between queries.
type Client struct {
	cfg        config.DoubanConfig
	newFetcher func() Fetcher
}

// NewClient creates a client that fetches over real HTTP sessions.
func NewClient(cfg config.DoubanConfig) *Client {
	return &Client{
		cfg:        cfg,
		newFetcher: func() Fetcher { return NewSession(cfg) },
	}
}

// NewClientWithFetcher creates a client with a custom fetcher factory.
// Used in tests to substitute the transport.
func NewClientWithFetcher(cfg config.DoubanConfig, newFetcher func() Fetcher) *Client {
	return &Client{cfg: cfg, newFetcher: newFetcher}
}

// Search looks up one movie by name and optional year. It is total: any
// transport or challenge failure collapses into an error record rather than
// an error return, so batch callers never need per-item error handling.
func (c *Client) Search(ctx context.Context, name, year string) models.MovieRecord {
	q := models.Query{Name: name, Year: year}

	params := url.Values{
		"cat": {searchCategory},
		"q":   {q.Term()},
	}
	searchURL := c.cfg.SearchBaseURL + "/search?" + params.Encode()

	res, err := resolve(ctx, c.newFetcher(), searchURL, c.cfg)
	if err != nil {
		slog.Warn("search fetch failed", "name", name, "year", year, "error", err)
		return models.ErrorRecord(models.MsgNoContent)
	}

	return extract.Extract(res.HTML, q)
}
