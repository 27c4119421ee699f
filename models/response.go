package models

// SearchResponse is the response for POST /api/v1/search.
type SearchResponse struct {
	// Success indicates whether a movie record was produced.
	Success bool `json:"success"`

	// Movie is the extracted record. Present only on success.
	Movie *MovieRecord `json:"movie,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// DetailsResponse is the response for GET /api/v1/movie/:sid.
type DetailsResponse struct {
	Success bool          `json:"success"`
	Movie   *MovieDetails `json:"movie,omitempty"`
	Timing  TimingInfo    `json:"timing"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// SearchMs is the time spent fetching and extracting, challenge
	// retries included.
	SearchMs int64 `json:"search_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string     `json:"status"` // always "healthy" for now
	Uptime  string     `json:"uptime"`
	Cache   CacheStats `json:"cache"`
	Version string     `json:"version"`
}

// CacheStats reports the state of the search-record cache.
type CacheStats struct {
	Entries    int `json:"entries"`
	MaxEntries int `json:"max_entries"`
}

// SortResponse is the immediate response for POST /api/v1/sort.
type SortResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SortStatusResponse is the response for GET /api/v1/sort/:id.
type SortStatusResponse struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Entries   []*SortEntry `json:"entries,omitempty"`
}

// SortEntry pairs one scanned video file with its resolved movie record.
type SortEntry struct {
	Path  string       `json:"path"`
	Name  string       `json:"name"`
	Year  string       `json:"year,omitempty"`
	Movie *MovieRecord `json:"movie,omitempty"`
}

// SortJob tracks an in-progress library sort operation.
type SortJob struct {
	ID         string
	Status     string // "processing", "completed", "failed", "partial"
	Total      int
	Completed  int
	Entries    []*SortEntry
	CreatedAt     int64 // unix timestamp
	WebhookURL    string
	WebhookSecret string
}
