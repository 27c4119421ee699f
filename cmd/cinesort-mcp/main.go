package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// searchRequest mirrors the CineSort API request model.
type searchRequest struct {
	Name string `json:"name"`
	Year string `json:"year,omitempty"`
}

// movieRecord mirrors the CineSort movie record model.
type movieRecord struct {
	Title         string   `json:"title"`
	Rating        string   `json:"rating"`
	Description   string   `json:"description"`
	Directors     []string `json:"directors"`
	Actors        []string `json:"actors"`
	Year          string   `json:"year"`
	OriginalTitle string   `json:"original_title"`
	ReviewCount   string   `json:"review_count"`
	Sid           string   `json:"sid"`
	Error         string   `json:"error"`
}

// searchResponse mirrors the CineSort API search response.
type searchResponse struct {
	Success bool         `json:"success"`
	Movie   *movieRecord `json:"movie"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// detailsResponse mirrors the CineSort API details response.
type detailsResponse struct {
	Success bool            `json:"success"`
	Movie   json.RawMessage `json:"movie"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// sortResponse mirrors the CineSort sort API response.
type sortResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// sortStatusResponse mirrors the CineSort sort status API response.
type sortStatusResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Entries   []struct {
		Path  string       `json:"path"`
		Name  string       `json:"name"`
		Year  string       `json:"year"`
		Movie *movieRecord `json:"movie"`
	} `json:"entries"`
}

func main() {
	_ = godotenv.Load()

	apiURL := os.Getenv("CINESORT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("CINESORT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "CINESORT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"cinesort",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchMovieTool := mcp.NewTool("search_movie",
		mcp.WithDescription("Look up a movie by name (and optional release year) and return its rating, credits and description."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The movie name to search for"),
		),
		mcp.WithString("year",
			mcp.Description("Optional 4-digit release year used to disambiguate remakes"),
		),
	)
	s.AddTool(searchMovieTool, handleSearchMovie(apiURL, apiKey))

	movieDetailsTool := mcp.NewTool("movie_details",
		mcp.WithDescription("Fetch the full detail record for a movie by its subject id (sid), including genres and a plot summary."),
		mcp.WithString("sid",
			mcp.Required(),
			mcp.Description("The subject id returned by search_movie"),
		),
	)
	s.AddTool(movieDetailsTool, handleMovieDetails(apiURL, apiKey))

	sortLibraryTool := mcp.NewTool("sort_library",
		mcp.WithDescription("Scan a local folder for video files and resolve each one to a movie record. Returns one line per file with its rating."),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Absolute path of the folder to scan"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Whether to scan subdirectories (default: true)"),
		),
	)
	s.AddTool(sortLibraryTool, handleSortLibrary(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the CineSort API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiGet sends a GET request to the CineSort API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			body, err := apiGet(ctx, client, apiURL, apiKey, endpoint)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			// Quick check if still processing.
			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleSearchMovie(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		year := request.GetString("year", "")

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/search", searchRequest{Name: name, Year: year})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search request failed: %v", err)), nil
		}

		var searchResp searchResponse
		if err := json.Unmarshal(respBody, &searchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !searchResp.Success || searchResp.Movie == nil {
			errMsg := "search failed"
			if searchResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", searchResp.Error.Code, searchResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatMovie(searchResp.Movie)), nil
	}
}

func handleMovieDetails(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sid, err := request.RequireString("sid")
		if err != nil {
			return mcp.NewToolResultError("sid is required"), nil
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/movie/"+sid)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("details request failed: %v", err)), nil
		}

		var detailsResp detailsResponse
		if err := json.Unmarshal(respBody, &detailsResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !detailsResp.Success {
			errMsg := "details lookup failed"
			if detailsResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", detailsResp.Error.Code, detailsResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		// Format the record as pretty JSON.
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, detailsResp.Movie, "", "  "); err != nil {
			pretty.Write(detailsResp.Movie)
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}

func handleSortLibrary(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		directory, err := request.RequireString("directory")
		if err != nil {
			return mcp.NewToolResultError("directory is required"), nil
		}

		payload := map[string]interface{}{"directory": directory}
		if args := request.GetArguments(); args != nil {
			if recursive, ok := args["recursive"]; ok {
				payload["recursive"] = recursive
			}
		}

		// POST to create sort job.
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/sort", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("sort request failed: %v", err)), nil
		}

		var sortResp sortResponse
		if err := json.Unmarshal(respBody, &sortResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse sort response: %v", err)), nil
		}

		if sortResp.ID == "" {
			return mcp.NewToolResultError("sort job creation failed"), nil
		}

		// Poll for completion.
		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/sort/"+sortResp.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling sort job failed: %v", err)), nil
		}

		var statusResp sortStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse sort status: %v", err)), nil
		}

		// Format results.
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Sort %s: %s (%d/%d files)\n\n", statusResp.ID, statusResp.Status, statusResp.Completed, statusResp.Total))

		for _, e := range statusResp.Entries {
			switch {
			case e.Movie == nil:
				sb.WriteString(fmt.Sprintf("%s — not resolved\n", e.Path))
			case e.Movie.Error != "":
				sb.WriteString(fmt.Sprintf("%s — FAILED: %s\n", e.Path, e.Movie.Error))
			default:
				sb.WriteString(fmt.Sprintf("%s — %s (%s) rating %s\n", e.Path, e.Movie.Title, e.Movie.Year, e.Movie.Rating))
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatMovie renders one movie record as readable text.
func formatMovie(m *movieRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", m.Title))
	if m.OriginalTitle != "" {
		sb.WriteString(fmt.Sprintf("Original title: %s\n", m.OriginalTitle))
	}
	if m.Year != "" {
		sb.WriteString(fmt.Sprintf("Year: %s\n", m.Year))
	}
	if m.Rating != "" {
		sb.WriteString(fmt.Sprintf("Rating: %s", m.Rating))
		if m.ReviewCount != "" {
			sb.WriteString(fmt.Sprintf(" (%s reviews)", m.ReviewCount))
		}
		sb.WriteString("\n")
	}
	if len(m.Directors) > 0 {
		sb.WriteString(fmt.Sprintf("Directors: %s\n", strings.Join(m.Directors, ", ")))
	}
	if len(m.Actors) > 0 {
		sb.WriteString(fmt.Sprintf("Actors: %s\n", strings.Join(m.Actors, ", ")))
	}
	if m.Sid != "" {
		sb.WriteString(fmt.Sprintf("Sid: %s\n", m.Sid))
	}
	if m.Description != "" {
		sb.WriteString("\n" + m.Description + "\n")
	}
	return sb.String()
}
