package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/config"
	"github.com/pfrederiksen/bracket-extract/internal/extract"
	"github.com/pfrederiksen/bracket-extract/internal/logger"
	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
	"github.com/pfrederiksen/bracket-extract/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// openDocument opens PDFs for the parse command.
var openDocument extract.OpenFunc = pdfsource.Open

// options holds the persistent flags shared by every command.
type options struct {
	configPath  string
	outDir      string
	format      string
	backend     string
	bracketSize int
	verbose     bool
	logLevel    string
	postgresDSN string

	stdout io.Writer
	stderr io.Writer
}

// NewRootCmd creates the root command writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "bracket-extract <pdf> [category]",
		Short: "Extract a tournament bracket from a results PDF",
		Long: `Extract the round-1 bracket of one category from a multi-page results PDF.

The category page is located by its label, the roster below the header is
parsed into players, first-round matches are paired and scores and the
champion are read from the bracket drawing. The result is written to
tournament_<category>.json in the output directory.`,
		Example: `  bracket-extract result_1005226.pdf
  bracket-extract result_1005226.pdf "女子ダブルス 70歳以上" --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.outDir, "out-dir", ".", "Directory for result files")
	flags.StringVar(&opts.format, "format", "text", "Summary format: text or json")
	flags.StringVar(&opts.backend, "backend", "tabula", "PDF backend: tabula or ledongthuc")
	flags.IntVar(&opts.bracketSize, "bracket-size", 16, "Draw size (power of two)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.postgresDSN, "postgres-dsn", "", "Also store the result in PostgreSQL")

	cmd.AddCommand(newInspectCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))

	return cmd
}

// setupLogging installs the default logger for this run.
func (o *options) setupLogging() error {
	level := logger.LevelWarn
	if o.verbose {
		level = logger.LevelDebug
	}
	if o.logLevel != "" {
		parsed, err := logger.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		level = parsed
	}
	logger.SetDefault(logger.New(level, o.stderr))
	return nil
}

// loadConfig reads the config file and applies explicitly set flags on top.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("out-dir") {
		cfg.OutDir = o.outDir
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("bracket-size") {
		cfg.Bracket.Size = o.bracketSize
	}
	if flags.Changed("postgres-dsn") {
		cfg.Postgres.DSN = o.postgresDSN
	}
	if !flags.Changed("log-level") && !o.verbose && cfg.Log.Level != "" {
		level, err := logger.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		logger.SetDefault(logger.New(level, o.stderr))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}
	return format, nil
}

// checkFile fails early, before any PDF library touches the path.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// runParse is the main command logic
func runParse(cmd *cobra.Command, opts *options, args []string) error {
	cmd.SilenceUsage = true

	format, err := opts.outputFormat()
	if err != nil {
		return err
	}
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	category := cfg.Category
	if len(args) > 1 {
		category = args[1]
	}

	if err := checkFile(path); err != nil {
		return err
	}

	logger.Info("parsing", logger.Fields{
		"path":     path,
		"category": category,
		"backend":  cfg.Backend,
	})

	td, err := extract.NewParser(cfg).WithOpener(openDocument).ParseCategory(path, category)
	if err != nil {
		logger.Error("parse failed", logger.Fields{
			"path":     path,
			"category": category,
			"stack":    string(debug.Stack()),
		}, err)
		return err
	}

	store, err := storage.New(cfg.OutDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	var changes []storage.Change
	previous, err := store.LoadResult(td.Category)
	switch {
	case err == nil:
		changes = storage.Diff(previous, storage.NewResult(td))
		logger.Info("compared with previous result", logger.Fields{
			"path":    store.Path(td.Category),
			"changes": len(changes),
		})
	case !errors.Is(err, os.ErrNotExist):
		logger.Warn("previous result unreadable, skipping comparison", logger.Fields{
			"path":  store.Path(td.Category),
			"error": err.Error(),
		})
	}

	outFile, err := store.SaveResult(td)
	if err != nil {
		return err
	}

	if cfg.Postgres.DSN != "" {
		if err := storeInPostgres(cmd.Context(), cfg.Postgres.DSN, td); err != nil {
			return err
		}
	}

	logger.Debug("metrics", logger.MetricsSnapshot())

	summary := NewSummary(td, outFile)
	summary.Changes = changes
	return WriteOutput(opts.stdout, summary, format)
}

func storeInPostgres(ctx context.Context, dsn string, td *bracket.TournamentData) error {
	sink, err := storage.NewPostgresSink(ctx, dsn)
	if err != nil {
		return err
	}
	defer sink.Close()

	id, err := sink.Store(ctx, td)
	if err != nil {
		return fmt.Errorf("storing in postgres: %w", err)
	}

	stored, err := sink.CountPlayers(ctx, id)
	if err != nil {
		return err
	}
	if stored != len(td.Players) {
		return fmt.Errorf("postgres holds %d players for tournament %d, expected %d", stored, id, len(td.Players))
	}
	return nil
}

// Execute runs the CLI and exits with its status.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command line args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
