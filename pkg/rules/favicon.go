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
	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

// 🖼️ Favicon points every icon link at the configured favicon.
func Favicon(f *config.Favicon) []rewrite.Rule {
	return []rewrite.Rule{
		editing("favicon", "updated favicon link", func(doc string, _ rewrite.Page) []edit {
			var edits []edit
			for _, tag := range rewrite.Tags(doc) {
				if tag.Closing || tag.Name != "link" {
					continue
				}
				rel, _ := rewrite.Attr(tag.Raw, "rel")
				if !hasToken(rel, "icon") {
					continue
				}
				raw := tag.Raw
				if href, _ := rewrite.Attr(raw, "href"); href != f.URL {
					raw = rewrite.SetAttr(raw, "href", f.URL)
				}
				if _, ok := rewrite.Attr(raw, "type"); !ok && f.Type != "" {
					raw = rewrite.SetAttr(raw, "type", f.Type)
				}
				if raw != tag.Raw {
					edits = append(edits, edit{span: tag.Span, text: raw})
				}
			}
			return edits
		}),
	}
}
