package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds one invocation's settings, populated from CLI arguments
// and environment variables. Flags and positional arguments win over
// their environment fallbacks; the env-only path backs the container
// deployment.
type Config struct {
	PostalCode string
	DistanceMi float64
	APIKey     string

	// InfluxDB sink, enabled only when all four settings are present.
	InfluxEnabled bool
	InfluxURL     string
	InfluxOrg     string
	InfluxBucket  string
	InfluxToken   string

	// PollInterval of 0 runs a single cycle and exits.
	PollInterval   time.Duration
	HTTPAddr       string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
}

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// Load parses args (without the program name) and environment variables.
func Load(args []string) (*Config, error) {
	// A .env file is optional; container deployments set real env vars.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("airquality", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: airquality [flags] <postal_code> <distance_miles> <api_key>\n\n")
		fmt.Fprintf(fs.Output(), "Queries AirNow for the closest monitor per pollutant near a postal code.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	bucket := fs.String("bucket", os.Getenv("INFLUX_BUCKET"), "InfluxDB bucket; the sink is enabled when -bucket, -org, -token and -url are all set")
	org := fs.String("org", os.Getenv("INFLUX_ORG"), "InfluxDB organization")
	token := fs.String("token", os.Getenv("INFLUX_TOKEN"), "InfluxDB token")
	influxURL := fs.String("url", os.Getenv("INFLUX_URL"), "InfluxDB URL")
	poll := fs.String("poll", envOrDefault("POLL_INTERVAL", "0"), "poll interval, e.g. 30m; 0 runs once and exits")
	httpAddr := fs.String("http-addr", envOrDefault("HTTP_ADDR", ":8080"), "health and metrics listen address (poll mode only)")
	timeout := fs.String("timeout", envOrDefault("REQUEST_TIMEOUT", "10s"), "HTTP request timeout for external APIs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		PostalCode:   os.Getenv("POSTAL_CODE"),
		APIKey:       os.Getenv("API_KEY"),
		InfluxURL:    *influxURL,
		InfluxOrg:    *org,
		InfluxBucket: *bucket,
		InfluxToken:  *token,
		HTTPAddr:     *httpAddr,
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "text"),
	}

	distanceStr := os.Getenv("DISTANCE_MI")
	switch positional := fs.Args(); len(positional) {
	case 0:
		// Env-only invocation.
	case 3:
		cfg.PostalCode = positional[0]
		distanceStr = positional[1]
		cfg.APIKey = positional[2]
	default:
		fs.Usage()
		return nil, fmt.Errorf("expected 3 positional arguments (postal_code distance_miles api_key), got %d", len(positional))
	}

	if !postalCodeRe.MatchString(cfg.PostalCode) {
		return nil, fmt.Errorf("postal code must be 5 digits, got %q", cfg.PostalCode)
	}

	distance, err := strconv.ParseFloat(distanceStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid distance %q: %w", distanceStr, err)
	}
	if distance <= 0 {
		return nil, fmt.Errorf("distance must be positive, got %v", distance)
	}
	cfg.DistanceMi = distance

	if cfg.APIKey == "" {
		return nil, errors.New("AirNow API key is required")
	}

	pollInterval, err := time.ParseDuration(*poll)
	if err != nil || pollInterval < 0 {
		return nil, fmt.Errorf("invalid poll interval %q", *poll)
	}
	cfg.PollInterval = pollInterval

	requestTimeout, err := time.ParseDuration(*timeout)
	if err != nil || requestTimeout <= 0 {
		return nil, fmt.Errorf("invalid request timeout %q", *timeout)
	}
	cfg.RequestTimeout = requestTimeout

	switch countSet(cfg.InfluxURL, cfg.InfluxOrg, cfg.InfluxBucket, cfg.InfluxToken) {
	case 0:
		cfg.InfluxEnabled = false
	case 4:
		cfg.InfluxEnabled = true
	default:
		return nil, errors.New("InfluxDB requires all of -url, -org, -bucket and -token (or their INFLUX_* equivalents)")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
