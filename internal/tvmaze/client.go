// Package tvmaze fetches episode catalogs from the TVMaze public API.
package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sevanw/episodic/internal/catalog"
)

const defaultBaseURL = "https://api.tvmaze.com"

// ErrShowNotFound means the search found no show for the given name.
var ErrShowNotFound = errors.New("show not found")

type Config struct {
	// BaseURL overrides the API endpoint, used in tests.
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Show is the subset of TVMaze show data the engine needs.
type Show struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type episode struct {
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	AirDate string `json:"airdate"`
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	fullURL, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	u, err := url.Parse(fullURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrShowNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// FindShow resolves a show name to a TVMaze show via single-search, which
// returns the API's best fuzzy match.
func (c *Client) FindShow(ctx context.Context, name string) (Show, error) {
	var show Show
	query := url.Values{"q": {name}}
	if err := c.get(ctx, "/singlesearch/shows", query, &show); err != nil {
		if errors.Is(err, ErrShowNotFound) {
			return Show{}, fmt.Errorf("%w: %s", ErrShowNotFound, name)
		}
		return Show{}, err
	}
	return show, nil
}

// Episodes fetches the full episode list for a show. Specials carry no
// episode number on TVMaze and are dropped; the catalog cannot address them.
func (c *Client) Episodes(ctx context.Context, showID int) ([]catalog.Entry, error) {
	var eps []episode
	if err := c.get(ctx, fmt.Sprintf("/shows/%d/episodes", showID), nil, &eps); err != nil {
		return nil, err
	}

	entries := make([]catalog.Entry, 0, len(eps))
	for _, ep := range eps {
		if ep.Number == 0 {
			continue
		}
		entry := catalog.Entry{
			Season:  ep.Season,
			Episode: ep.Number,
			Title:   ep.Name,
		}
		if ep.AirDate != "" {
			if d, err := time.Parse("2006-01-02", ep.AirDate); err == nil {
				entry.AirDate = d
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// EpisodesByName resolves a show name and fetches its episode list in one
// call.
func (c *Client) EpisodesByName(ctx context.Context, name string) (Show, []catalog.Entry, error) {
	show, err := c.FindShow(ctx, name)
	if err != nil {
		return Show{}, nil, err
	}
	entries, err := c.Episodes(ctx, show.ID)
	if err != nil {
		return Show{}, nil, err
	}
	return show, entries, nil
}
