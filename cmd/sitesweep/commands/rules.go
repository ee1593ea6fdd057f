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
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/cmd/sitesweep/opts"
	"github.com/walteh/sitesweep/pkg/rules"
)

func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [rule-set]",
		Short: "List the rule sets, or the rules of one set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := rules.NewRegistry(o.Config)

			var data [][]string
			if len(args) == 1 {
				set, ok := reg.Get(args[0])
				if !ok {
					return errors.Errorf("%w: %s", rules.ErrUnknownSet, args[0])
				}
				data = [][]string{{"rule", "description"}}
				for _, r := range set.Rules {
					data = append(data, []string{r.Name, r.Description})
				}
			} else {
				pipeline := map[string]int{}
				for i, name := range o.Config.Pipeline {
					pipeline[name] = i + 1
				}
				data = [][]string{{"set", "rules", "pipeline", "description"}}
				for _, name := range reg.Names() {
					set, _ := reg.Get(name)
					step := "-"
					if i, ok := pipeline[name]; ok {
						step = strconv.Itoa(i)
					}
					data = append(data, []string{name, strconv.Itoa(len(set.Rules)), step, set.Description})
				}
			}

			return printTable(cmd.OutOrStdout(), data)
		},
	}

	return cmd
}
