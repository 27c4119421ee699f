package library

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cinesort/cinesort/config"
	"github.com/cinesort/cinesort/models"
	"github.com/cinesort/cinesort/scan"
)

// MovieResolver resolves one movie lookup. Satisfied by the site client.
type MovieResolver interface {
	Search(ctx context.Context, name, year string) models.MovieRecord
}

// Scanner finds video files to resolve. Satisfied by the filename scanner.
type Scanner interface {
	ScanDirectory(dir string, recursive bool) ([]scan.MovieFile, error)
}

// Sorter resolves every video file in a folder against the site. Lookups run
// on a bounded worker pool, with a shared rate limiter keeping the overall
// request pace polite regardless of pool size.
type Sorter struct {
	scanner Scanner
	client  MovieResolver
	workers int
	limiter *rate.Limiter
}

// NewSorter creates a sorter with the configured concurrency and pacing.
func NewSorter(scanner Scanner, client MovieResolver, cfg config.LibraryConfig) *Sorter {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Sorter{
		scanner: scanner,
		client:  client,
		workers: workers,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// SortFolder scans dir and resolves each file found. Entries come back in
// scan order with a nil Movie for lookups skipped by cancellation; individual
// lookup failures are carried inside the record, never as an error return.
func (s *Sorter) SortFolder(ctx context.Context, dir string, recursive bool) ([]*models.SortEntry, error) {
	files, err := s.scanner.ScanDirectory(dir, recursive)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.SortEntry, len(files))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, f := range files {
		entries[i] = &models.SortEntry{Path: f.Path, Name: f.Name, Year: f.Year}

		wg.Add(1)
		go func(idx int, file scan.MovieFile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.limiter.Wait(ctx); err != nil {
				slog.Warn("lookup skipped", "path", file.Path, "error", err)
				return
			}
			record := s.client.Search(ctx, file.Name, file.Year)
			entries[idx].Movie = &record
		}(i, f)
	}
	wg.Wait()

	return entries, nil
}
