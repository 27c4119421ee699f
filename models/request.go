package models

// SearchRequest is the payload for POST /api/v1/search.
type SearchRequest struct {
	// Name is the movie name to search for. Required.
	Name string `json:"name" binding:"required"`

	// Year is the optional release year used for disambiguation.
	Year string `json:"year,omitempty" binding:"omitempty,len=4,numeric"`

	// Timeout is the max duration in seconds for the whole query,
	// challenge retries included. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// MaxAge enables cache lookup: a cached record younger than MaxAge
	// milliseconds is returned without hitting the site. 0 disables caching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}

// SortRequest is the payload for POST /api/v1/sort.
type SortRequest struct {
	// Directory is the local folder to scan for video files. Required.
	Directory string `json:"directory" binding:"required"`

	// Recursive controls whether subdirectories are scanned. Default: true.
	Recursive *bool `json:"recursive,omitempty"`

	// WebhookURL, if set, receives a sort.completed event when the job
	// finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret, if set, signs the webhook body with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SortRequest) Defaults() {
	if r.Recursive == nil {
		t := true
		r.Recursive = &t
	}
}
