package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains app config
type Config struct {
	PiazzaConfig
	WatcherConfig
	TarantoolConfig
	MattermostConfig

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// PiazzaConfig contains Piazza account config
type PiazzaConfig struct {
	Email             string        `env:"PIAZZA_EMAIL,required,notEmpty"`
	Password          string        `env:"PIAZZA_PASSWORD,required,notEmpty"`
	ClassID           string        `env:"PIAZZA_CLASS_ID,required,notEmpty"`
	BaseURL           string        `env:"PIAZZA_BASE_URL" envDefault:"https://piazza.com"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"2"`
}

// WatcherConfig contains poll watcher config
type WatcherConfig struct {
	PollAnswerIndex int      `env:"POLL_ANSWER_INDEX" envDefault:"0"`
	ScanInterval    Interval `env:"CHECK_INTERVAL" envDefault:"60"`
	FeedPageSize    int      `env:"FEED_PAGE_SIZE" envDefault:"10"`
	MaxVoteAttempts int      `env:"MAX_VOTE_ATTEMPTS" envDefault:"0"`
}

// Interval is a duration given either as plain seconds ("60", "1.5") or
// as a Go duration string ("60s", "2m")
type Interval time.Duration

// UnmarshalText parses an Interval from its env value
func (i *Interval) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*i = Interval(secs * float64(time.Second))
		return nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid interval %q: want seconds or a duration like 60s", s)
	}
	*i = Interval(d)
	return nil
}

// TarantoolConfig contains Tarantool config. An empty address keeps the
// answered set in memory.
type TarantoolConfig struct {
	TarantoolAddr string `env:"TARANTOOL_ADDR"`
	TarantoolUser string `env:"TARANTOOL_USER" envDefault:"storage"`
	TarantoolPass string `env:"TARANTOOL_PASS" envDefault:"password"`
}

// MattermostConfig contains Mattermost notifier config
type MattermostConfig struct {
	MattermostURL       string `env:"MATTERMOST_URL"`
	MattermostToken     string `env:"MATTERMOST_TOKEN"`
	MattermostChannelID string `env:"MATTERMOST_CHANNEL_ID"`
}

// NewConfig loads the .env file if present and parses the environment
func NewConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Println("Error loading .env file:", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CheckInterval returns the base interval between scans
func (c WatcherConfig) CheckInterval() time.Duration {
	return time.Duration(c.ScanInterval)
}

// TarantoolEnabled reports whether answered polls should be kept in Tarantool
func (c TarantoolConfig) TarantoolEnabled() bool {
	return c.TarantoolAddr != ""
}

// MattermostEnabled reports whether vote notifications should be posted
func (c MattermostConfig) MattermostEnabled() bool {
	return c.MattermostURL != "" && c.MattermostToken != "" && c.MattermostChannelID != ""
}

func (c *Config) validate() error {
	if c.PollAnswerIndex < 0 {
		return fmt.Errorf("POLL_ANSWER_INDEX must be non-negative, got %d", c.PollAnswerIndex)
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive, got %v", c.CheckInterval())
	}
	if c.FeedPageSize <= 0 {
		return fmt.Errorf("FEED_PAGE_SIZE must be positive, got %d", c.FeedPageSize)
	}
	if c.MaxVoteAttempts < 0 {
		return fmt.Errorf("MAX_VOTE_ATTEMPTS must be non-negative, got %d", c.MaxVoteAttempts)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must be positive, got %v", c.RequestsPerSecond)
	}
	return nil
}
