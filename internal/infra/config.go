package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv  string
	Port    string
	Version string

	OutputDir     string
	PublicBaseURL string

	MaxConcurrentJobs int
	GenerationTimeout time.Duration
	MaxJobs           int

	NominatimBaseURL  string
	OverpassEndpoints []string

	ResendAPIKey string
	EmailFrom    string
	EmailReplyTo string

	EmailRateLimit  int
	EmailRateWindow time.Duration
	IPRateLimit     int
	IPRateWindow    time.Duration

	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// DefaultOverpassEndpoints are equivalent public Overpass mirrors tried in
// order when fetching map data.
var DefaultOverpassEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		Version: getEnv("APP_VERSION", "1.0.0"),

		OutputDir:     getEnv("OUTPUT_DIR", "./output"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 3),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 300)),
		MaxJobs:           getEnvInt("MAX_JOBS", 500),

		NominatimBaseURL:  getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		OverpassEndpoints: getEnvList("OVERPASS_ENDPOINTS", DefaultOverpassEndpoints),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "Cartographix <posters@cartographix.local>"),
		EmailReplyTo: os.Getenv("EMAIL_REPLY_TO"),

		EmailRateLimit:  getEnvInt("EMAIL_RATE_LIMIT", 3),
		EmailRateWindow: time.Second * time.Duration(getEnvInt("EMAIL_RATE_WINDOW_SECONDS", 86400)),
		IPRateLimit:     getEnvInt("IP_RATE_LIMIT", 5),
		IPRateWindow:    time.Second * time.Duration(getEnvInt("IP_RATE_WINDOW_SECONDS", 3600)),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", nil),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
