package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/uitokens/pkg/document"
	"github.com/gnana997/uitokens/pkg/export"
	"github.com/gnana997/uitokens/pkg/tokens"
)

// extractOptions holds parsed flags for the extract command.
type extractOptions struct {
	format   string
	outDir   string
	category string
	css      []string
	limit    int
	workers  int
	remote   string
	stealth  bool
	refresh  bool
}

func newExtractCmd(a *app) *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract <target>...",
		Short: "Extract design tokens from pages",
		Long: `Extract design tokens from one or more targets. A target is an http(s) URL
(loaded in headless Chrome), a local HTML file (resolved offline) or a JSON
document snapshot.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("remote") {
				a.cfg.Browser.RemoteURL = opts.remote
			}
			if cmd.Flags().Changed("stealth") {
				a.cfg.Browser.Stealth = opts.stealth
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Workers
			}
			a.cfg.Stylesheets = append(a.cfg.Stylesheets, opts.css...)
			return a.runExtract(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "summary", "output format: json, css or summary")
	f.StringVarP(&opts.outDir, "out", "o", "", "write each report to a design-tokens-<ms> file in this directory")
	f.StringVarP(&opts.category, "category", "c", "", "print a single category")
	f.StringArrayVar(&opts.css, "css", nil, "extra stylesheet glob for local pages (repeatable)")
	f.IntVarP(&opts.limit, "limit", "n", 0, "entries per list in summary output (0 = all)")
	f.IntVar(&opts.workers, "workers", 0, "targets extracted in parallel (0 = auto)")
	f.StringVar(&opts.remote, "remote", "", "DevTools WebSocket URL of a running Chrome")
	f.BoolVar(&opts.stealth, "stealth", false, "apply stealth evasions to browser tabs")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached reports")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, targets []string, opts extractOptions) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return a.fail(err)
	}
	var category tokens.Category
	if opts.category != "" {
		if category, err = tokens.ParseCategory(opts.category); err != nil {
			return a.fail(err)
		}
		if format == export.FormatCSS {
			return a.fail(errors.New("--category cannot be combined with --format css"))
		}
	}

	svc := a.newService()
	defer svc.Close()

	results := svc.ExtractAll(cmd.Context(), targets, opts.workers, opts.refresh)

	var firstErr error
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			a.log.Error("extraction failed", "target", r.Target, "error", r.Err)
			continue
		}

		out, err := renderReport(r.Report, format, category, opts.limit)
		if err != nil {
			return a.fail(err)
		}
		if opts.outDir == "" {
			if _, err := a.stdout.Write(out); err != nil {
				return a.fail(err)
			}
			continue
		}
		a.writeExport(opts.outDir, i, len(results), format, r.Report, out)
	}

	if failed > 0 {
		return a.fail(fmt.Errorf("%d of %d targets failed: %w", failed, len(results), firstErr))
	}
	return nil
}

// renderReport produces the command output for one report. A category
// narrows the output to one list.
func renderReport(report *tokens.TokenReport, format export.Format, category tokens.Category, limit int) ([]byte, error) {
	if category == "" {
		if format == export.FormatSummary {
			var b bytes.Buffer
			if err := export.WriteReport(&b, report, export.ListOptions{Limit: limit}); err != nil {
				return nil, err
			}
			return b.Bytes(), nil
		}
		return export.Render(report, format)
	}

	list, err := report.Tokens(category)
	if err != nil {
		return nil, err
	}
	if format == export.FormatJSON {
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		out, err := json.MarshalIndent(export.Usages(list), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}

	var b bytes.Buffer
	if err := export.WriteList(&b, category, list, export.ListOptions{Limit: limit}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// writeExport saves one rendered report. A failed write is reported as a
// warning; the report itself is still valid.
func (a *app) writeExport(dir string, i, total int, format export.Format, report *tokens.TokenReport, out []byte) {
	name := export.Filename(format, report.Meta.Timestamp)
	if total > 1 {
		name = fmt.Sprintf("%d-%s", i+1, name)
	}
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0755); err != nil {
		a.log.Warn("failed to write export", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		a.log.Warn("failed to write export", "path", path, "error", err)
		return
	}
	fmt.Fprintf(a.stdout, "%s -> %s\n", report.Meta.URL, path)
}

func newSnapshotCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "snapshot <target>",
		Short: "Save the resolved styles of a page as a JSON snapshot",
		Long: `Save the resolved style of every element of a page as a JSON document
snapshot. Snapshots can be passed back to extract as targets, which makes a
captured page reproducible without a browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc := a.cfg.loaderConfig()
			lc.Logger = a.log
			loader := document.NewLoader(lc)
			defer loader.Close()

			src, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				return a.fail(err)
			}
			snap, err := snapshotOf(src)
			if err != nil {
				return a.fail(err)
			}

			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return a.fail(err)
			}
			data = append(data, '\n')
			if out == "" {
				_, err = a.stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return a.fail(fmt.Errorf("write snapshot: %w", err))
			}
			a.log.Info("snapshot written", "path", out, "elements", len(snap.Nodes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func snapshotOf(src tokens.Source) (*tokens.Snapshot, error) {
	switch s := src.(type) {
	case *tokens.Snapshot:
		return s, nil
	case interface{ Snapshot() *tokens.Snapshot }:
		return s.Snapshot(), nil
	}
	return nil, fmt.Errorf("source %T cannot be snapshotted", src)
}
