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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/cmd/sitesweep/opts"
	"github.com/walteh/sitesweep/pkg/log"
	"github.com/walteh/sitesweep/pkg/operation"
	"github.com/walteh/sitesweep/pkg/rules"
	"github.com/walteh/sitesweep/pkg/status"
)

func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var (
		dryRun  bool
		backup  bool
		verbose bool
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "run [rule-set...]",
		Short: "Apply rule sets to every page under the root",
		Long: `Run threads every page under the root through the named rule sets,
or through the configured pipeline when none are named.
It will:
1. Discover the html files, skipping templates, backups and debug pages
2. Apply each rule whose end state is not already present
3. Write a page back only when its text changed
4. Print a summary of what changed

Running the same rule sets twice changes nothing the second time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)
			cfg := o.Config

			sets := args
			if len(sets) == 0 {
				sets = cfg.Pipeline
			}
			list, err := rules.NewRegistry(cfg).Resolve(sets...)
			if err != nil {
				return errors.Errorf("resolving rule sets: %w", err)
			}

			if !cmd.Flags().Changed("backup") {
				backup = cfg.Backup
			}

			mgr := status.NewManager(cfg.Root, nil)
			logger.SetVerbose(verbose)
			logger.StartRun(ctx, log.Run{
				Command: "run",
				Root:    cfg.Root,
				Sets:    sets,
				DryRun:  dryRun,
				Backup:  backup,
			})

			op := operation.NewTransformOperation(operation.Options{
				Root:      cfg.Root,
				BaseURL:   cfg.Site.BaseURL,
				Rules:     list,
				Include:   cfg.Include,
				Exclude:   append(append([]string{}, cfg.Exclude...), exclude...),
				Backup:    backup,
				DryRun:    dryRun,
				StatusMgr: mgr,
			})
			runErr := operation.NewRunner(zerolog.Ctx(ctx)).Run(ctx, op)

			// report whatever was processed, even after an interrupt
			report := mgr.Report(ctx)
			for _, f := range report.Files {
				logger.LogFileOperation(ctx, f)
			}
			logger.EndRun(ctx, report)

			if runErr != nil {
				return runErr
			}
			if n := report.Counts().Errored; n > 0 {
				logger.Warningf("%d files could not be processed", n)
			}
			if dryRun {
				logger.Info("dry run, no files were written")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report changes without writing files")
	cmd.Flags().BoolVarP(&backup, "backup", "b", false, "write a .backup copy before overwriting a file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every change and unchanged file")
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "e", nil, "extra doublestar globs to skip")

	return cmd
}
