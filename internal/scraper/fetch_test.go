package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofir/maccabi-ics/internal/fixture"
)

func TestFetcher_SeasonURL(t *testing.T) {
	tests := []struct {
		name string
		opts FetcherOptions
		comp fixture.Competition
		year int
		want string
	}{
		{
			name: "defaults",
			comp: fixture.EuroLeague,
			year: 2026,
			want: "https://www.maccabi.co.il/season.asp?cMode=0&cType=1&cYear=2026&lang=en",
		},
		{
			name: "base without trailing slash",
			opts: FetcherOptions{BaseURL: "http://localhost:8080/mirror", Lang: "he"},
			comp: fixture.WinnerLeague,
			year: 2025,
			want: "http://localhost:8080/mirror/season.asp?cMode=0&cType=2&cYear=2025&lang=he",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewFetcher(tt.opts).SeasonURL(tt.comp, tt.year); got != tt.want {
				t.Errorf("SeasonURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetcher_FetchSeason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != UserAgent {
			t.Errorf("User-Agent = %q, want %q", ua, UserAgent)
		}
		if r.URL.Path != "/season.asp" {
			t.Errorf("path = %q, want /season.asp", r.URL.Path)
		}
		q := r.URL.Query()
		for key, want := range map[string]string{"cMode": "0", "cType": "1", "cYear": "2026", "lang": "en"} {
			if got := q.Get(key); got != want {
				t.Errorf("query %s = %q, want %q", key, got, want)
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><div>28/10/2025</div><div> 21:15 </div><script>ignored()</script></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{BaseURL: server.URL})
	page, err := f.FetchSeason(context.Background(), fixture.EuroLeague, 2026)
	require.NoError(t, err)

	assert.Contains(t, page.Markup, "<script>ignored()</script>")
	assert.Equal(t, "28/10/2025\n21:15", page.Text)
}

func TestFetcher_FetchSeason_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1255")
		// "מכבי" in windows-1255
		w.Write([]byte("<p>\xee\xeb\xe1\xe9 28/10/2025</p>"))
	}))
	defer server.Close()

	page, err := NewFetcher(FetcherOptions{BaseURL: server.URL}).FetchSeason(context.Background(), fixture.WinnerLeague, 2026)
	require.NoError(t, err)
	assert.Equal(t, "מכבי 28/10/2025", page.Text)
}

func TestFetcher_FetchSeason_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retries   int
		wantHits  int32
		wantIsErr error
	}{
		{"not found is not retried", http.StatusNotFound, 3, 1, ErrUnexpectedStatus},
		{"server error without retries", http.StatusInternalServerError, 0, 1, ErrUnexpectedStatus},
		{"server error is retried", http.StatusBadGateway, 2, 3, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			f := NewFetcher(FetcherOptions{
				BaseURL:   server.URL,
				Retries:   tt.retries,
				RetryWait: time.Millisecond,
			})
			_, err := f.FetchSeason(context.Background(), fixture.EuroLeague, 2026)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantIsErr), "error %v should wrap %v", err, tt.wantIsErr)
			assert.Contains(t, err.Error(), server.URL)
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(&hits))
		})
	}
}

func TestFetcher_FetchSeason_RecoversAfterRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<p>15.11.2025 19:00</p>"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{BaseURL: server.URL, Retries: 1, RetryWait: time.Millisecond})
	page, err := f.FetchSeason(context.Background(), fixture.WinnerLeague, 2026)
	require.NoError(t, err)
	assert.True(t, strings.Contains(page.Text, "15.11.2025"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetcher_FetchSeason_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(FetcherOptions{BaseURL: server.URL, Retries: 5, RetryWait: time.Millisecond})
	_, err := f.FetchSeason(ctx, fixture.EuroLeague, 2026)
	assert.Error(t, err)
}
