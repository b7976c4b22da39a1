// Package cli implements the citenet command line: one-shot network builds,
// schema migrations and ingest event publishing against the configured
// backends.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/keyip-citation-network/internal/app"
	"github.com/turtacn/keyip-citation-network/internal/config"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration

	containerOptions []app.Option
	publisher        kafka.Publisher
}

// RootOption customizes the command tree, mostly for tests.
type RootOption func(*rootSettings)

type rootSettings struct {
	logger           logging.Logger
	containerOptions []app.Option
	publisher        kafka.Publisher
}

// WithLogger replaces the stderr console logger.
func WithLogger(l logging.Logger) RootOption {
	return func(s *rootSettings) { s.logger = l }
}

// WithContainerOptions is passed to app.NewContainer by commands that build a
// citation service.
func WithContainerOptions(opts ...app.Option) RootOption {
	return func(s *rootSettings) { s.containerOptions = append(s.containerOptions, opts...) }
}

// WithPublisher makes publish use p instead of dialing the configured brokers.
func WithPublisher(p kafka.Publisher) RootOption {
	return func(s *rootSettings) { s.publisher = p }
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand(options ...RootOption) *cobra.Command {
	opts := &RootOptions{}
	settings := &rootSettings{}
	for _, o := range options {
		o(settings)
	}

	cmd := &cobra.Command{
		Use:   "citenet",
		Short: "Citation network builder for patent analytics",
		Long: "citenet builds bounded citation networks around a patent from the\n" +
			"configured Neo4j or PostgreSQL citation store, manages the PostgreSQL\n" +
			"schema and publishes ingest events for the cache warm-up worker.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, settings)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./citenet.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); default from config")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")

	cmd.AddCommand(
		newNetworkCmd(),
		newMigrateCmd(),
		newPublishCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, settings *rootSettings) error {
	switch strings.ToLower(opts.OutputFormat) {
	case OutputText, OutputJSON:
	default:
		return errors.Newf(errors.ErrCodeValidation, "invalid output format %q; expected text|json", opts.OutputFormat)
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := settings.logger
	if logger == nil {
		logger, err = initLogger(cfg, opts)
		if err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	}

	cliCtx := &CLIContext{
		Config:           cfg,
		Logger:           logger,
		OutputFormat:     strings.ToLower(opts.OutputFormat),
		Verbose:          opts.Verbose,
		Timeout:          opts.Timeout,
		containerOptions: settings.containerOptions,
		publisher:        settings.publisher,
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(context.WithValue(parent, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flag path > search paths > env only.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./citenet.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".citenet", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/citenet/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// initLogger creates a console logger on stderr so stdout stays parseable.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// withTimeout bounds a command by --timeout; zero means no bound.
func (c *CLIContext) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult writes data as JSON, or through text when the text format is
// selected and text is non-nil.
func PrintResult(cmd *cobra.Command, data interface{}, text func(*cobra.Command) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err == nil && cliCtx.OutputFormat == OutputText && text != nil {
		return text(cmd)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range colWidths {
			if i > 0 {
				sb.WriteString("  ")
			}
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(colWidths)-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(padRight(cell, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	seps := make([]string, len(colWidths))
	for i, w := range colWidths {
		seps[i] = strings.Repeat("-", w)
	}
	writeRow(seps)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
