package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html/charset"

	"github.com/ofir/maccabi-ics/internal/fixture"
	"github.com/ofir/maccabi-ics/internal/logger"
)

const (
	DefaultBaseURL = "https://www.maccabi.co.il/"
	DefaultLang    = "en"
	UserAgent      = "Mozilla/5.0 (CalendarBot; +https://github.com)"
	Timeout        = 30 * time.Second

	maxBodyBytes = 10 << 20
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// FetcherOptions configures a Fetcher. Zero values take the package defaults.
type FetcherOptions struct {
	BaseURL   string
	Lang      string
	UserAgent string
	Timeout   time.Duration
	// Retries is the number of extra attempts after a failed GET. 4xx responses are not retried.
	Retries   int
	RetryWait time.Duration
	Client    *http.Client
}

// Fetcher handles fetching season fixture pages
type Fetcher struct {
	client    *http.Client
	baseURL   string
	lang      string
	userAgent string
	retries   int
	retryWait time.Duration
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		client:    opts.Client,
		baseURL:   opts.BaseURL,
		lang:      opts.Lang,
		userAgent: opts.UserAgent,
		retries:   opts.Retries,
		retryWait: opts.RetryWait,
	}
	if f.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = Timeout
		}
		f.client = &http.Client{Timeout: timeout}
	}
	if f.baseURL == "" {
		f.baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(f.baseURL, "/") {
		f.baseURL += "/"
	}
	if f.lang == "" {
		f.lang = DefaultLang
	}
	if f.userAgent == "" {
		f.userAgent = UserAgent
	}
	if f.retries < 0 {
		f.retries = 0
	}
	if f.retryWait <= 0 {
		f.retryWait = time.Second
	}
	return f
}

// SeasonURL returns the fixture listing URL of a competition for season year.
func (f *Fetcher) SeasonURL(c fixture.Competition, year int) string {
	return fmt.Sprintf("%sseason.asp?cMode=0&cType=%d&cYear=%d&lang=%s",
		f.baseURL, c.ID, year, url.QueryEscape(f.lang))
}

// FetchSeason fetches and parses the fixture page of a competition.
func (f *Fetcher) FetchSeason(ctx context.Context, c fixture.Competition, year int) (*Page, error) {
	u := f.SeasonURL(c, year)

	start := time.Now()
	body, err := f.get(ctx, u)
	logger.RecordTiming("fetch", time.Since(start))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", u)
	}

	page, err := NewPage(body)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", u)
	}
	return page, nil
}

// get issues the GET, retrying transient failures with exponential backoff.
func (f *Fetcher) get(ctx context.Context, u string) (string, error) {
	var body string
	attempt := 0

	op := func() error {
		attempt++
		b, err := f.getOnce(ctx, u)
		if err != nil {
			if attempt <= f.retries {
				logger.Debug("Retrying fetch", logger.Fields{"url": u, "attempt": attempt, "error": err.Error()})
			}
			return err
		}
		body = b
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(f.retries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return body, nil
}

func (f *Fetcher) getOnce(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", backoff.Permanent(errors.Wrap(err, "creating request"))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetching page")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := errors.Wrapf(ErrUnexpectedStatus, "status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", errors.Wrap(err, "decoding body")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading body")
	}
	return string(data), nil
}
