package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jinaai/internal/config"
	"jinaai/internal/logging"
)

// errReported marks a failure whose envelope has already been written.
var errReported = errors.New("error already reported")

// options holds the flag values of one root command.
type options struct {
	verbose    bool
	configPath string
	timeout    time.Duration
	inputPath  string
	pretty     bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "jinaai",
		Short: "JinaAI Reader, Search and Grounding adapter",
		Long: `jinaai reads one JSON object from stdin, runs the command it names
against the JinaAI Reader, Search or Grounding API and writes a JSON
envelope to stdout:

  {"status":"success","result":"..."}  or  {"status":"error","error":"..."}

Batch mode: suffix keys with a number (command1, url1, command2, query2, ...)
to run several commands concurrently in one call.

Example:
  echo '{"command":"read_url","url":"https://example.com"}' | jinaai`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlugin(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall deadline for the run (0 = per-request timeouts only)")
	rootCmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "Read the request from a file instead of stdin")
	rootCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Render the result as formatted markdown instead of JSON")

	rootCmd.AddCommand(newCommandsCmd(opts))
	return rootCmd
}

// setup loads configuration and installs the stderr logger.
func (o *options) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg

	debug := o.verbose || cfg.Logging.DebugMode
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.Logging.Format == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if lvl, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.InitializeWith(logger, logging.Settings{
		DebugMode:  debug,
		Categories: cfg.Logging.Categories,
	})
	logging.BootDebug("Configuration loaded (config=%q, credential=%v, image store=%v)",
		o.configPath, cfg.HasCredential(), cfg.ImageStore.Configured())
	if !cfg.HasCredential() {
		logging.BootWarn("JINA_API_KEY not set; requests go out without Authorization")
	}
	return nil
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			writeFailure(os.Stdout, os.Stderr, err)
		}
		os.Exit(1)
	}
}
