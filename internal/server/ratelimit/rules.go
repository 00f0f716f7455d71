package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits requests whose method matches and whose path equals Path, or
// starts with it when Path ends in "/".
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per Window; zero means unlimited
	Window time.Duration
	Burst  int // bucket capacity, defaults to Limit
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(path, r.Path)
	}
	return r.Path == path
}

func (r Rule) key() string {
	return r.Method + " " + r.Path
}

// DefaultRules throttle document generation and uploads hardest, deletes
// moderately, and leave health checks unlimited. Everything else falls under
// Config.Default.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodGet, Path: "/health"},

		// Uploads fan out to the backend's parser
		{Method: http.MethodPost, Path: "/upload/stream", Limit: 30, Window: time.Hour, Burst: 5},

		// Rendering may start a browser
		{Method: http.MethodPost, Path: "/render/", Limit: 60, Window: time.Minute, Burst: 10},
		{Method: http.MethodGet, Path: "/history/", Limit: 300, Window: time.Minute, Burst: 30},

		{Method: http.MethodDelete, Path: "/history/", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Default applies to requests no rule matches.
	Default Rule
	Rules   []Rule
	// Allow bypasses limits, Deny rejects outright. Keyed by client IP.
	Allow map[string]bool
	Deny  map[string]bool
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL time.Duration
}

// DefaultConfig returns limits suited to a single-user localhost server.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Default: Rule{Limit: 600, Window: time.Minute},
		Rules:   DefaultRules(),
		Allow:   map[string]bool{},
		Deny:    map[string]bool{},
		IdleTTL: time.Hour,
	}
}

// LoadConfig reads overrides from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	if v, err := strconv.ParseBool(os.Getenv("RATE_LIMIT_ENABLED")); err == nil {
		cfg.Enabled = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_DEFAULT_LIMIT")); err == nil {
		cfg.Default.Limit = v
	}
	if v, err := time.ParseDuration(os.Getenv("RATE_LIMIT_DEFAULT_WINDOW")); err == nil {
		cfg.Default.Window = v
	}
	cfg.Allow = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Deny = parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

func (c *Config) match(method, path string) Rule {
	for _, r := range c.Rules {
		if r.matches(method, path) {
			return r
		}
	}
	return c.Default
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
