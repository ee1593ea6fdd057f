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
	_ "embed"
	"strings"

	"github.com/walteh/sitesweep/pkg/rewrite"
)

// MobileNavMarker identifies the inline mobile navigation script.
const MobileNavMarker = "Mobile navigation functionality"

//go:embed assets/mobile-nav.js
var mobileNavJS string

// legacyNavSelectors are the per-page navigation styles that predate the global header.
var legacyNavSelectors = map[string]bool{
	"header":                            true,
	"nav":                               true,
	".logo":                             true,
	".nav-links":                        true,
	".nav-links li":                     true,
	".nav-links a":                      true,
	".nav-links a:hover":                true,
	".dropdown":                         true,
	".dropdown > a::after":              true,
	".dropdown-content":                 true,
	".dropdown:hover .dropdown-content": true,
	".dropdown-content a":               true,
	".dropdown-content a:hover":         true,
	".mobile-menu-toggle":               true,
}

func isLegacyNavSelector(sel string) bool {
	return legacyNavSelectors[sel]
}

// mobileNavSnippet wraps the embedded script for insertion before </body>.
func mobileNavSnippet() string {
	var b strings.Builder
	b.WriteString("    <script>\n")
	for _, line := range strings.Split(strings.TrimRight(mobileNavJS, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("        " + line + "\n")
	}
	b.WriteString("    </script>\n")
	return b.String()
}

// 🧭 Navigation removes the legacy per-page navigation css, clears code that
// leaked into external script tags and installs the mobile navigation script.
func Navigation() []rewrite.Rule {
	return []rewrite.Rule{
		removal("nav-legacy-css", "removed legacy navigation css", func(doc string, _ rewrite.Page) []rewrite.Span {
			return cssPrune(doc, isLegacyNavSelector, func(prelude string) bool {
				return strings.Contains(strings.ReplaceAll(prelude, " ", ""), "max-width:768px")
			})
		}),
		editing("nav-stray-script", "cleared inline code inside external script tag", planStrayScripts),
		rewrite.Insert("nav-mobile-script", "added mobile navigation script",
			MobileNavMarker, rewrite.BodyClose, true, mobileNavSnippet()),
	}
}

// planStrayScripts empties script elements that have both a src and a body.
// Browsers ignore the body, so it is dead code.
func planStrayScripts(doc string, _ rewrite.Page) []edit {
	var edits []edit
	for _, el := range rewrite.ScriptBlocks(doc) {
		if _, ok := rewrite.Attr(el.Open.Raw, "src"); !ok {
			continue
		}
		if el.Inner.Len() > 0 {
			edits = append(edits, edit{span: el.Inner, text: ""})
		}
	}
	return edits
}
