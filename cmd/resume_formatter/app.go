package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-formatter/internal/auth"
	"github.com/jonathan/resume-formatter/internal/client"
	"github.com/jonathan/resume-formatter/internal/config"
	"github.com/jonathan/resume-formatter/internal/logging"
	"github.com/jonathan/resume-formatter/internal/observability"
	"github.com/jonathan/resume-formatter/internal/rendering"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	backendURL string
	tokenFile  string
	logFile    string
	verbose    bool
	jsonLogs   bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to JSON config file")
	pf.StringVar(&backendURL, "backend-url", "", "Backend base URL (default "+config.DefaultBackendURL+")")
	pf.StringVar(&tokenFile, "token-file", "", "Where the login token is stored")
	pf.StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	pf.BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
}

// app carries what every command needs, built once per invocation.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	tokens  *auth.Store
	client  *client.Client
	printer *observability.Printer
}

var current *app

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	// Flags win over file and environment
	pf := cmd.Flags()
	if pf.Changed("backend-url") {
		cfg.BackendURL = backendURL
	}
	if pf.Changed("token-file") {
		cfg.TokenPath = tokenFile
	}
	if pf.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if pf.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		JSON:    jsonLogs || cmd.Name() == "serve",
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
		Console: cmd.ErrOrStderr(),
	})

	tokens := auth.NewStore(cfg.TokenPath)
	token, err := tokens.Load()
	if err != nil && !errors.Is(err, auth.ErrNotLoggedIn) {
		logger.Warn("could not read stored token", zap.Error(err))
	}

	c, err := client.New(cfg.BackendURL, &client.Options{Token: token, Logger: logger})
	if err != nil {
		return err
	}

	current = &app{
		cfg:     cfg,
		logger:  logger,
		tokens:  tokens,
		client:  c,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
	}
	return nil
}

func teardownApp() {
	if current != nil {
		_ = current.logger.Sync()
	}
}

func (a *app) renderer() *rendering.Renderer {
	pdf := rendering.NewChromeConverter(a.cfg.ChromeURL, a.cfg.PDFTimeout.Std(), a.logger)
	return rendering.NewRenderer(pdf, a.logger)
}

// requireLogin fails early when no token is stored.
func (a *app) requireLogin() error {
	if a.client.Token() == "" {
		return fmt.Errorf("%w: run 'resume_formatter login' first", auth.ErrNotLoggedIn)
	}
	return nil
}

// parseFormats turns "pdf,docx" into formats, defaulting to the configured list.
func parseFormats(value string, defaults []string) ([]rendering.Format, error) {
	names := defaults
	if strings.TrimSpace(value) != "" {
		names = strings.Split(value, ",")
	}
	formats := make([]rendering.Format, 0, len(names))
	seen := make(map[rendering.Format]bool)
	for _, name := range names {
		f, err := rendering.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}
