package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/uitokens/pkg/export"
	"github.com/gnana997/uitokens/pkg/httpapi"
	mcpserver "github.com/gnana997/uitokens/pkg/mcp"
	"github.com/gnana997/uitokens/pkg/mcplog"
	"github.com/gnana997/uitokens/pkg/tokens"
	"github.com/gnana997/uitokens/pkg/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		stdio   bool
		http    bool
		addr    string
		mcpLog  string
		stealth bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio) and optionally the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !stdio && !http {
				return a.fail(errors.New("nothing to serve: enable --stdio or --http"))
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("mcp-log") {
				a.cfg.MCPLog = mcpLog
			}
			if cmd.Flags().Changed("stealth") {
				a.cfg.Browser.Stealth = stealth
			}

			svc := a.newService()
			defer svc.Close()

			var logger *mcplog.Logger
			if a.cfg.MCPLog != "" {
				l, err := mcplog.NewLogger(a.cfg.MCPLog)
				if err != nil {
					return a.fail(fmt.Errorf("open mcp log: %w", err))
				}
				defer l.Close()
				logger = l
			}

			ctx := cmd.Context()
			if http {
				h := httpapi.NewRouter(svc, a.log)
				if !stdio {
					return httpapi.ListenAndServe(ctx, a.cfg.HTTPAddr, h, a.log)
				}
				go func() {
					if err := httpapi.ListenAndServe(ctx, a.cfg.HTTPAddr, h, a.log); err != nil {
						a.log.Error("http api stopped", "error", err)
					}
				}()
			}

			a.log.Info("mcp server starting", "transport", "stdio", "version", version)
			if err := mcpserver.NewServer(svc, logger).ServeStdio(); err != nil {
				return a.fail(fmt.Errorf("server error: %w", err))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&stdio, "stdio", true, "serve MCP over stdin/stdout")
	f.BoolVar(&http, "http", false, "serve the HTTP API")
	f.StringVar(&addr, "addr", "", "HTTP listen address (default from config)")
	f.StringVar(&mcpLog, "mcp-log", "", "append one JSONL entry per MCP tool call to this file")
	f.BoolVar(&stealth, "stealth", false, "apply stealth evasions to browser tabs")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		format   string
		outDir   string
		debounce int
	)
	cmd := &cobra.Command{
		Use:   "watch <dir | page.html>",
		Short: "Re-extract local pages whenever their HTML or CSS changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return a.fail(err)
			}
			root, pages, err := watchTargets(args[0])
			if err != nil {
				return a.fail(err)
			}
			if len(pages) == 0 {
				return a.fail(fmt.Errorf("no HTML pages found under %s", root))
			}

			svc := a.newService()
			defer svc.Close()

			emit := func(r watch.Result) {
				if r.Err != nil {
					fmt.Fprintf(a.stderr, "%s: %v\n", r.Page, r.Err)
					return
				}
				if outDir != "" {
					out, err := export.Render(r.Report, f)
					if err != nil {
						a.log.Warn("render failed", "page", r.Page, "error", err)
						return
					}
					a.writeExport(outDir, 0, 1, f, r.Report, out)
					return
				}
				stats := export.Summarize(r.Report)
				fmt.Fprintf(a.stdout, "%s  Colors: %d  Font sizes: %d  Spacing: %d\n",
					r.Page, stats.Colors, stats.FontSizes, stats.Spacing)
			}

			rb := watch.NewRebuilder(svc, pages, emit, a.log)
			ctx := cmd.Context()
			for _, page := range rb.Pages() {
				report, err := svc.Extract(ctx, page, false)
				emit(watch.Result{Page: page, Report: report, Err: err})
			}

			opts := watch.DefaultOptions()
			if debounce > 0 {
				opts.DebounceMs = debounce
			}
			w, err := watch.New(opts, func(paths []string) { rb.Handle(ctx, paths) }, a.log)
			if err != nil {
				return a.fail(err)
			}
			if err := w.Start(root); err != nil {
				return a.fail(err)
			}
			defer w.Stop()

			<-ctx.Done()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "json", "export format with --out: json, css or summary")
	f.StringVarP(&outDir, "out", "o", "", "write a report file per change instead of printing stats")
	f.IntVar(&debounce, "debounce", 0, "debounce delay in milliseconds (default 200)")
	return cmd
}

// watchTargets resolves the watch argument to the directory to watch and
// the pages to track.
func watchTargets(arg string) (string, []string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", tokens.ErrUnreachableTarget, err)
	}
	if info.IsDir() {
		pages, err := watch.DiscoverPages(arg)
		return arg, pages, err
	}
	ext := strings.ToLower(filepath.Ext(arg))
	if ext != ".html" && ext != ".htm" {
		return "", nil, fmt.Errorf("watch expects a directory or an HTML file, got %s", arg)
	}
	return filepath.Dir(arg), []string{arg}, nil
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List token categories",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			nameW := 0
			for _, c := range tokens.Categories() {
				nameW = max(nameW, len(c))
			}
			for _, c := range tokens.Categories() {
				kind := ""
				if c.IsColor() {
					kind = "  (color)"
				}
				fmt.Fprintf(a.stdout, "%-*s  %s%s\n", nameW, c, export.Title(c), kind)
			}
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := writeProjectConfig(a.configPath, defaultProjectConfig()); err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.stdout, "Generated default config file: %s\n", a.configPath)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return writeYAML(a.stdout, a.cfg)
		},
	})
	return cmd
}
