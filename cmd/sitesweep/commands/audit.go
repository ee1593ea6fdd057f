// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/cmd/sitesweep/opts"
	"github.com/walteh/sitesweep/pkg/audit"
	"github.com/walteh/sitesweep/pkg/log"
)

const maxListedFiles = 3

func NewAuditCmd(o *opts.RootOpts) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read-only checks over the site",
		Long: `Audit inspects pages without changing them.
Subcommands:
  links    broken internal links, weak anchor text, crowded paragraphs
  cookies  inventory of cookie consent code and the pages carrying it
  nav      pages missing parts of the global navigation`,
	}

	cmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "files to read at once (default GOMAXPROCS)")

	run := func(cmd *cobra.Command, check audit.Check) (*audit.Report, error) {
		ctx := cmd.Context()
		cfg := o.Config
		logger := log.FromContext(ctx)

		logger.StartRun(ctx, log.Run{Command: "audit " + check.Name(), Root: cfg.Root})
		report, err := audit.Run(ctx, audit.Options{
			Root:    cfg.Root,
			Include: cfg.Include,
			Exclude: cfg.Exclude,
			Jobs:    jobs,
		}, check)
		if err != nil {
			return nil, errors.Errorf("auditing %s: %w", check.Name(), err)
		}
		for _, f := range report.Errors() {
			logger.Errorf("%s: %v", f.Path, f.Err)
		}
		return report, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "links",
			Short: "Check internal links",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := run(cmd, audit.Links(o.Config.Site.BaseURL))
				if err != nil {
					return err
				}
				findings := report.Findings()
				if len(findings) == 0 {
					log.FromContext(cmd.Context()).Successf("%d files, no link problems", len(report.Files))
					return nil
				}
				data := [][]string{{"file", "kind", "value", "detail"}}
				for _, f := range findings {
					data = append(data, []string{f.Path, f.Kind, f.Value, f.Detail})
				}
				if err := printTable(cmd.OutOrStdout(), data); err != nil {
					return err
				}
				log.FromContext(cmd.Context()).Warningf("%d link problems in %d of %d files", len(findings), len(report.Worst()), len(report.Files))
				return nil
			},
		},
		&cobra.Command{
			Use:   "cookies",
			Short: "Inventory cookie consent code",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := run(cmd, audit.Cookies())
				if err != nil {
					return err
				}
				entries := audit.Inventory(report)
				if len(entries) == 0 {
					log.FromContext(cmd.Context()).Successf("%d files, no cookie consent code", len(report.Files))
					return nil
				}
				data := [][]string{{"kind", "value", "files", "pages"}}
				for _, e := range entries {
					pages := e.Files
					more := ""
					if len(pages) > maxListedFiles {
						more = fmt.Sprintf(" and %d more", len(pages)-maxListedFiles)
						pages = pages[:maxListedFiles]
					}
					data = append(data, []string{e.Kind, e.Value, strconv.Itoa(len(e.Files)), strings.Join(pages, ", ") + more})
				}
				if err := printTable(cmd.OutOrStdout(), data); err != nil {
					return err
				}
				carrying := len(report.Files) - len(report.Clean()) - len(report.Errors())
				log.FromContext(cmd.Context()).Infof("%d of %d files carry cookie consent code", carrying, len(report.Files))
				return nil
			},
		},
		&cobra.Command{
			Use:   "nav",
			Short: "Check navigation completeness",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := run(cmd, audit.Navigation(audit.DefaultNavComponents(o.Config.Site.Name)))
				if err != nil {
					return err
				}
				worst := report.Worst()
				if len(worst) == 0 {
					log.FromContext(cmd.Context()).Successf("%d files, navigation complete", len(report.Files))
					return nil
				}
				data := [][]string{{"file", "missing", "components"}}
				for _, f := range worst {
					names := make([]string, 0, len(f.Findings))
					for _, finding := range f.Findings {
						names = append(names, finding.Value)
					}
					data = append(data, []string{f.Path, strconv.Itoa(len(names)), strings.Join(names, ", ")})
				}
				if err := printTable(cmd.OutOrStdout(), data); err != nil {
					return err
				}
				log.FromContext(cmd.Context()).Warningf("%d complete, %d incomplete", len(report.Clean()), len(worst))
				return nil
			},
		},
	)

	return cmd
}

func printTable(w io.Writer, data [][]string) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering table: %w", err)
	}
	fmt.Fprintln(w, out)
	return nil
}
