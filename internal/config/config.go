// Package config provides configuration loading and validation for the CLI
// and the preview server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by MergeWithDefaults via Default().
const (
	DefaultBackendURL   = "http://localhost:8000"
	DefaultPollInterval = time.Second
	DefaultHistoryLimit = 100
	DefaultRowsPerPage  = 5
	DefaultPDFTimeout   = 60 * time.Second
	DefaultPort         = 8080
	DefaultOutputDir    = "."
)

// DefaultFormats are the documents written for every completed record.
var DefaultFormats = []string{"pdf", "docx"}

// Environment variable names read by FromEnv.
const (
	EnvBackendURL   = "RESUME_BACKEND_URL"
	EnvTokenPath    = "RESUME_TOKEN_PATH"
	EnvPollInterval = "RESUME_POLL_INTERVAL"
	EnvPollTimeout  = "RESUME_POLL_TIMEOUT"
	EnvChromeURL    = "RESUME_CHROME_URL"
	EnvOutputDir    = "RESUME_OUTPUT_DIR"
	EnvLogFile      = "RESUME_LOG_FILE"
	EnvPort         = "RESUME_PORT"
)

// Duration is a time.Duration that reads and writes "1s" style strings in JSON.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Bare numbers are seconds
		var n float64
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return fmt.Errorf("duration must be a string like \"1s\": %w", err)
		}
		*d = Duration(n * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config holds settings that can be loaded from a JSON file. All fields are
// optional; missing values fall back to the environment, then to defaults.
type Config struct {
	// Backend
	BackendURL string `json:"backend_url,omitempty" validate:"omitempty,url"`
	TokenPath  string `json:"token_path,omitempty"`

	// Polling
	PollInterval Duration `json:"poll_interval,omitempty" validate:"gte=0"`
	PollTimeout  Duration `json:"poll_timeout,omitempty" validate:"gte=0"`

	// History
	HistoryLimit int `json:"history_limit,omitempty" validate:"gte=0,lte=1000"`
	RowsPerPage  int `json:"rows_per_page,omitempty" validate:"omitempty,oneof=5 10 25"`

	// Output
	OutputDir  string   `json:"output_dir,omitempty"`
	Formats    []string `json:"formats,omitempty" validate:"dive,oneof=html pdf docx"`
	ChromeURL  string   `json:"chrome_url,omitempty" validate:"omitempty,url"`
	PDFTimeout Duration `json:"pdf_timeout,omitempty" validate:"gte=0"`

	// Behavior
	LogFile string `json:"log_file,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
	Port    int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BackendURL:   DefaultBackendURL,
		PollInterval: Duration(DefaultPollInterval),
		HistoryLimit: DefaultHistoryLimit,
		RowsPerPage:  DefaultRowsPerPage,
		OutputDir:    DefaultOutputDir,
		Formats:      append([]string(nil), DefaultFormats...),
		PDFTimeout:   Duration(DefaultPDFTimeout),
		Port:         DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Unset or
// unparsable variables leave the field zero.
func FromEnv() Config {
	var cfg Config
	cfg.BackendURL = os.Getenv(EnvBackendURL)
	cfg.TokenPath = os.Getenv(EnvTokenPath)
	cfg.ChromeURL = os.Getenv(EnvChromeURL)
	cfg.OutputDir = os.Getenv(EnvOutputDir)
	cfg.LogFile = os.Getenv(EnvLogFile)

	if d, err := time.ParseDuration(os.Getenv(EnvPollInterval)); err == nil {
		cfg.PollInterval = Duration(d)
	}
	if d, err := time.ParseDuration(os.Getenv(EnvPollTimeout)); err == nil {
		cfg.PollTimeout = Duration(d)
	}
	if p, err := strconv.Atoi(os.Getenv(EnvPort)); err == nil {
		cfg.Port = p
	}
	return cfg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.PollTimeout > 0 && c.PollInterval > 0 && c.PollTimeout < c.PollInterval {
		return fmt.Errorf("config error: 'poll_timeout' must not be shorter than 'poll_interval'")
	}

	if c.OutputDir != "" {
		if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: output_dir is not a directory: %s", c.OutputDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// Layers are applied as file.MergeWithDefaults(env).MergeWithDefaults(Default()).
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BackendURL == "" {
		result.BackendURL = defaults.BackendURL
	}
	if result.TokenPath == "" {
		result.TokenPath = defaults.TokenPath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.ChromeURL == "" {
		result.ChromeURL = defaults.ChromeURL
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if len(result.Formats) == 0 {
		result.Formats = append([]string(nil), defaults.Formats...)
	}

	// Numeric fields: use default if zero
	if result.PollInterval == 0 {
		result.PollInterval = defaults.PollInterval
	}
	if result.PollTimeout == 0 {
		result.PollTimeout = defaults.PollTimeout
	}
	if result.PDFTimeout == 0 {
		result.PDFTimeout = defaults.PDFTimeout
	}
	if result.HistoryLimit == 0 {
		result.HistoryLimit = defaults.HistoryLimit
	}
	if result.RowsPerPage == 0 {
		result.RowsPerPage = defaults.RowsPerPage
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Resolve layers an optional config file over the environment and defaults.
func Resolve(path string) (Config, error) {
	var file Config
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		file = *loaded
	}
	env := FromEnv()
	merged := file.MergeWithDefaults(env)
	merged = merged.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}
