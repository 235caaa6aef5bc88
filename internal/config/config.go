package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default feed endpoints: the New York Times covid-19-data CSV mirror
// for cases and the COVID Tracking Project API for testing totals.
const (
	defaultNationalCasesURL   = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us.csv"
	defaultStateCasesURL      = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-states.csv"
	defaultCountyCasesURL     = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-counties.csv"
	defaultNationalTestingURL = "https://api.covidtracking.com/v1/us/daily.json"
	defaultStateTestingURL    = "https://api.covidtracking.com/v1/states/daily.json"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	NationalCasesURL   string
	StateCasesURL      string
	CountyCasesURL     string
	NationalTestingURL string
	StateTestingURL    string

	OutputDir   string
	HTTPTimeout time.Duration

	// Trailing-window shape: the dashboard shows WindowDays days and
	// computes a moving average needing LookbackDays of lead-in.
	WindowDays   int
	LookbackDays int

	// Sanity-check minimums guarding against truncated upstream responses.
	MinSeriesRows    int
	MinCountyRegions int

	LogLevel  string
	LogFormat string

	// Optional run-completion notification (enabled when the topic is set).
	KafkaBrokers     []string
	KafkaNotifyTopic string
	NotifyEnabled    bool

	// Optional Prometheus Pushgateway (enabled when the URL is set).
	PushgatewayURL string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	httpTimeout, err := getenvDuration("HTTP_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	windowDays, err := getenvInt("TRAILING_WINDOW_DAYS", 90)
	if err != nil {
		return nil, err
	}
	lookbackDays, err := getenvInt("WINDOW_LOOKBACK_DAYS", 7)
	if err != nil {
		return nil, err
	}
	minSeriesRows, err := getenvInt("MIN_SERIES_ROWS", 10)
	if err != nil {
		return nil, err
	}
	minCountyRegions, err := getenvInt("MIN_COUNTY_REGIONS", 50)
	if err != nil {
		return nil, err
	}

	notifyTopic := os.Getenv("KAFKA_NOTIFY_TOPIC")

	cfg := &Config{
		NationalCasesURL:   getenv("NATIONAL_CASES_URL", defaultNationalCasesURL),
		StateCasesURL:      getenv("STATE_CASES_URL", defaultStateCasesURL),
		CountyCasesURL:     getenv("COUNTY_CASES_URL", defaultCountyCasesURL),
		NationalTestingURL: getenv("NATIONAL_TESTING_URL", defaultNationalTestingURL),
		StateTestingURL:    getenv("STATE_TESTING_URL", defaultStateTestingURL),

		OutputDir:   getenv("OUTPUT_DIR", "data/extract"),
		HTTPTimeout: httpTimeout,

		WindowDays:   windowDays,
		LookbackDays: lookbackDays,

		MinSeriesRows:    minSeriesRows,
		MinCountyRegions: minCountyRegions,

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		KafkaBrokers:     splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotifyTopic: notifyTopic,
		NotifyEnabled:    notifyTopic != "",

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	for name, url := range map[string]string{
		"NATIONAL_CASES_URL":   cfg.NationalCasesURL,
		"STATE_CASES_URL":      cfg.StateCasesURL,
		"COUNTY_CASES_URL":     cfg.CountyCasesURL,
		"NATIONAL_TESTING_URL": cfg.NationalTestingURL,
		"STATE_TESTING_URL":    cfg.StateTestingURL,
	} {
		if url == "" {
			return nil, fmt.Errorf("%s must not be empty", name)
		}
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR must not be empty")
	}
	if cfg.WindowDays <= 0 {
		return nil, errors.New("TRAILING_WINDOW_DAYS must be positive")
	}
	if cfg.LookbackDays < 0 {
		return nil, errors.New("WINDOW_LOOKBACK_DAYS must not be negative")
	}
	if cfg.NotifyEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_NOTIFY_TOPIC is set but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
