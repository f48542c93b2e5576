// Package config holds the settings of a calendar build: where fixtures are
// fetched from, how they are read and where the calendar is written.
//
// Defaults publish the Maccabi Tel Aviv fixtures calendar. A YAML file may
// override any of them:
//
//	base_url: https://www.maccabi.co.il/
//	lang: en
//	timeout: 30s
//	retries: 2
//	competitions:
//	  - id: 1
//	    name: EuroLeague
//	output: docs/maccabi.ics
//	schedule: "0 */6 * * *"
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zoneinfo for hosts without it

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/ofir/maccabi-ics/internal/calendar"
	"github.com/ofir/maccabi-ics/internal/fixture"
	"github.com/ofir/maccabi-ics/internal/scraper"
)

const (
	DefaultTimeZone = "Asia/Jerusalem"
	DefaultOutput   = "docs/maccabi.ics"
	DefaultSchedule = "0 */6 * * *"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete settings of one run.
type Config struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Lang      string        `yaml:"lang" validate:"required,alpha"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	Retries   int           `yaml:"retries" validate:"min=0,max=10"`
	RetryWait time.Duration `yaml:"retry_wait" validate:"gte=0"`

	TimeZone     string                `yaml:"timezone" validate:"required"`
	Competitions []fixture.Competition `yaml:"competitions" validate:"required,min=1,unique=ID,dive"`
	Radius       int                   `yaml:"radius" validate:"min=1"`
	MaxEvents    int                   `yaml:"max_events" validate:"min=1"`

	Output       string `yaml:"output" validate:"required"`
	ProductID    string `yaml:"product_id" validate:"required"`
	CalendarName string `yaml:"calendar_name" validate:"required"`
	UIDPrefix    string `yaml:"uid_prefix" validate:"required"`
	UIDDomain    string `yaml:"uid_domain" validate:"required"`

	// DataDir enables the snapshot diff when set.
	DataDir  string `yaml:"data_dir"`
	// Schedule is the standard five-field cron expression used by watch.
	Schedule string `yaml:"schedule" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:      scraper.DefaultBaseURL,
		Lang:         scraper.DefaultLang,
		UserAgent:    scraper.UserAgent,
		Timeout:      scraper.Timeout,
		RetryWait:    time.Second,
		TimeZone:     DefaultTimeZone,
		Competitions: fixture.DefaultCompetitions(),
		Radius:       scraper.DefaultRadius,
		MaxEvents:    fixture.MaxEvents,
		Output:       DefaultOutput,
		ProductID:    calendar.DefaultProductID,
		CalendarName: calendar.DefaultName,
		UIDPrefix:    calendar.DefaultUIDPrefix,
		UIDDomain:    calendar.DefaultUIDDomain,
		Schedule:     DefaultSchedule,
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path yields the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
		if err := cfg.decode(data); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(c)
}

// Validate checks field constraints, that the timezone is known and that the
// schedule parses.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.Wrap(ErrInvalid, strings.Join(msgs, "; "))
		}
		return errors.Mark(err, ErrInvalid)
	}
	if _, err := c.Location(); err != nil {
		return errors.Wrapf(ErrInvalid, "timezone %q: %v", c.TimeZone, err)
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return errors.Wrapf(ErrInvalid, "schedule %q: %v", c.Schedule, err)
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errors.Wrap(err, "loading timezone")
	}
	return loc, nil
}

// FetcherOptions maps the fetch settings onto a scraper.Fetcher.
func (c *Config) FetcherOptions() scraper.FetcherOptions {
	return scraper.FetcherOptions{
		BaseURL:   c.BaseURL,
		Lang:      c.Lang,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		Retries:   c.Retries,
		RetryWait: c.RetryWait,
	}
}

// Metadata returns the calendar metadata for loc.
func (c *Config) Metadata(loc *time.Location) calendar.Metadata {
	return calendar.Metadata{
		ProductID: c.ProductID,
		Name:      c.CalendarName,
		Location:  loc,
		UIDPrefix: c.UIDPrefix,
		UIDDomain: c.UIDDomain,
	}
}
