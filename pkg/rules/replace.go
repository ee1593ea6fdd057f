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

package rules

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

// 🔄 Replace turns literal replacements into rules. A replacement with a file
// glob only applies to pages whose path matches it.
func Replace(reps []config.Replacement) []rewrite.Rule {
	rules := make([]rewrite.Rule, 0, len(reps))
	for i, r := range reps {
		r := r
		applies := func(page rewrite.Page) bool {
			if r.File == "" {
				return true
			}
			ok, err := doublestar.Match(r.File, page.Path)
			return err == nil && ok
		}
		rules = append(rules, rewrite.Rule{
			Name:        fmt.Sprintf("replace-%d", i+1),
			Description: fmt.Sprintf("replaced %q with %q", r.Old, r.New),
			Done: func(doc string, page rewrite.Page) bool {
				return !applies(page) || !strings.Contains(doc, r.Old)
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				n := strings.Count(doc, r.Old)
				return strings.ReplaceAll(doc, r.Old, r.New),
					[]string{counted(fmt.Sprintf("replaced %q with %q", r.Old, r.New), n)}
			},
		})
	}
	return rules
}
