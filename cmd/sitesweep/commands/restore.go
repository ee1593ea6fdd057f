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

	"github.com/walteh/sitesweep/cmd/sitesweep/opts"
	"github.com/walteh/sitesweep/pkg/log"
	"github.com/walteh/sitesweep/pkg/operation"
	"github.com/walteh/sitesweep/pkg/status"
)

func NewRestoreCmd(o *opts.RootOpts) *cobra.Command {
	var dryRun, discard bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Put every .backup file back over the page it protects",
		Long: `Restore undoes runs made with --backup.
It will:
1. Find every .backup file under the root
2. Rename it over the original page (or delete it with --discard)
3. Report the restored pages`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)
			cfg := o.Config

			mgr := status.NewManager(cfg.Root, nil)
			command, newOp := "restore", operation.NewRestoreOperation
			if discard {
				command, newOp = "discard", operation.NewDiscardOperation
			}
			logger.StartRun(ctx, log.Run{Command: command, Root: cfg.Root, DryRun: dryRun})

			op := newOp(operation.Options{
				Root:      cfg.Root,
				DryRun:    dryRun,
				StatusMgr: mgr,
			})
			runErr := operation.NewRunner(zerolog.Ctx(ctx)).Run(ctx, op)

			report := mgr.Report(ctx)
			for _, f := range report.Files {
				logger.LogFileOperation(ctx, f)
			}
			logger.EndRun(ctx, report)

			if runErr != nil {
				return runErr
			}
			if len(report.Files) == 0 {
				logger.Info("no backups found")
			} else if n := report.Counts().Discarded; n > 0 {
				logger.Infof("%d backups discarded, pages kept as they are", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "list the backups without restoring them")
	cmd.Flags().BoolVar(&discard, "discard", false, "delete the backups instead of restoring them")

	return cmd
}
