package tvmaze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFindShow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/singlesearch/shows" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("q") != "Show Name" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Show{ID: 42, Name: "Show Name"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	show, err := client.FindShow(context.Background(), "Show Name")
	if err != nil {
		t.Fatalf("FindShow failed: %v", err)
	}
	if show.ID != 42 || show.Name != "Show Name" {
		t.Errorf("unexpected show: %+v", show)
	}
}

func TestFindShowQueryEncoding(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Show{ID: 9, Name: "Cloak & Dagger"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.FindShow(context.Background(), "Cloak & Dagger"); err != nil {
		t.Fatalf("FindShow failed: %v", err)
	}
	// The search term must travel in the query string, never folded into
	// an escaped path segment.
	if gotPath != "/singlesearch/shows" {
		t.Errorf("request path = %q, want /singlesearch/shows", gotPath)
	}
	if gotQuery != "Cloak & Dagger" {
		t.Errorf("q parameter = %q, want %q", gotQuery, "Cloak & Dagger")
	}
}

func TestFindShowNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FindShow(context.Background(), "No Such Show")
	if !errors.Is(err, ErrShowNotFound) {
		t.Fatalf("expected ErrShowNotFound, got %v", err)
	}
}

func TestEpisodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shows/42/episodes" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]episode{
			{Name: "Pilot", Season: 1, Number: 1, AirDate: "2019-03-01"},
			{Name: "The Return", Season: 2, Number: 5, AirDate: "2020-04-12"},
			// Specials have no episode number and are not addressable
			{Name: "Holiday Special", Season: 1, Number: 0, AirDate: "2019-12-25"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	entries, err := client.Episodes(context.Background(), 42)
	if err != nil {
		t.Fatalf("Episodes failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Pilot" || entries[0].Season != 1 || entries[0].Episode != 1 {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	wantDate := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	if !entries[0].AirDate.Equal(wantDate) {
		t.Errorf("AirDate = %v, want %v", entries[0].AirDate, wantDate)
	}
}

func TestEpisodesByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/singlesearch/shows":
			json.NewEncoder(w).Encode(Show{ID: 7, Name: "Show Name"})
		case "/shows/7/episodes":
			json.NewEncoder(w).Encode([]episode{
				{Name: "Pilot", Season: 1, Number: 1},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	show, entries, err := client.EpisodesByName(context.Background(), "show name")
	if err != nil {
		t.Fatalf("EpisodesByName failed: %v", err)
	}
	if show.ID != 7 {
		t.Errorf("show ID = %d, want 7", show.ID)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Episodes(context.Background(), 1); err == nil {
		t.Fatal("expected error for server failure")
	}
}
