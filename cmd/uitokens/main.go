package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/uitokens/pkg/document"
	mcpserver "github.com/gnana997/uitokens/pkg/mcp"
	"github.com/gnana997/uitokens/pkg/service"
	"github.com/gnana997/uitokens/pkg/tokens"
	"github.com/gnana997/uitokens/pkg/util"
)

var version = "0.1.0-dev"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *ProjectConfig
	log *slog.Logger

	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "uitokens",
		Short:         "uitokens: design token extraction",
		Long:          "uitokens reads the resolved styles of a web page and reports the colors, typography, spacing, borders, shadows and transitions it actually uses.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newExtractCmd(a),
		newSnapshotCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newCategoriesCmd(a),
		newConfigCmd(a),
		newSetupCmd(a),
		newVersionCmd(a),
	)
	return root
}

// init loads the config file and applies the logging flags.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadProjectConfig(a.configPath)
	if err != nil {
		return a.fail(err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}

	lc := cfg.loggerConfig()
	lc.Output = a.stderr
	a.cfg = cfg
	a.log = util.NewLogger(lc)
	util.SetDefault(a.log)
	mcpserver.SetVersion(version)
	return nil
}

// newService builds the loader, extractor and cache from the config.
func (a *app) newService() *service.Service {
	lc := a.cfg.loaderConfig()
	lc.Logger = a.log
	sc := a.cfg.serviceConfig()
	sc.Logger = a.log
	return service.New(
		document.NewLoader(lc),
		tokens.NewExtractor(tokens.ExtractorConfig{Logger: a.log}),
		sc,
	)
}

// fail prints err for the user and returns it so cobra exits non-zero.
func (a *app) fail(err error) error {
	if errors.Is(err, tokens.ErrUnreachableTarget) {
		fmt.Fprintf(a.stderr, "error: %v (only http(s) pages, local HTML files and JSON snapshots can be analyzed)\n", err)
		return err
	}
	fmt.Fprintf(a.stderr, "error: %v\n", err)
	return err
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintf(a.stdout, "uitokens %s\n", version)
			return nil
		},
	}
}
