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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/cmd/sitesweep/commands"
	"github.com/walteh/sitesweep/cmd/sitesweep/opts"
	"github.com/walteh/sitesweep/pkg/log"
)

func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitesweep",
		Short: "Batch rewrite the pages of a static review site",
		Long: `sitesweep walks a static site and applies idempotent text rewrites to
every page: cookie consent cleanup, analytics fixes, navigation, technical
seo, internal links and more. Pages are written back only when they change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(o.Debug)
			mirror := zerolog.Disabled
			if o.Debug {
				mirror = zerolog.DebugLevel
			}
			o.Logger = log.New(cmd.OutOrStdout(), mirror)

			ctx := logger.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, o.Logger)

			if err := o.Load(ctx); err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewRestoreCmd(o),
		commands.NewRulesCmd(o),
		commands.NewAuditCmd(o),
		newVersionCmd(),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: .sitesweep.{hcl,yaml,yml,json} if present)")
	cmd.PersistentFlags().StringVarP(&o.Root, "root", "r", "", "site root, overrides the config")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging builds the context logger. Per-file results go to the console
// logger, so the structured log only carries warnings unless --debug is set.
func setupLogging(debug bool) zerolog.Logger {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
