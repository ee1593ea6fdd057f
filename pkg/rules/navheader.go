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
	"regexp"
	"strings"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

// SiteHeaderClass marks the global header element.
const SiteHeaderClass = "site-header"

var disclosureLabel = regexp.MustCompile(`(?i)<strong>\s*affiliate disclosure:?\s*</strong>`)

// 🧭 NavHeader installs the global site header after <body>, links its stylesheet
// and moves the affiliate disclosure to the bottom of the page.
func NavHeader(site *config.Site, nav *config.Nav) []rewrite.Rule {
	header := headerSnippet(site.Name, nav.Items)
	return []rewrite.Rule{
		rewrite.Insert("nav-header-stylesheet", "linked global navigation stylesheet",
			nav.Stylesheet, rewrite.HeadClose, true,
			fmt.Sprintf("    <link rel=\"stylesheet\" href=\"%s\">\n", attrValue(nav.Stylesheet))),
		{
			Name:        "nav-header",
			Description: "added global site header",
			Done: func(doc string, _ rewrite.Page) bool {
				_, hasBody := rewrite.FirstTag(doc, "body", false)
				return !hasBody || hasSiteHeader(doc)
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				body, ok := rewrite.FirstTag(doc, "body", false)
				if !ok {
					return doc, nil
				}
				at := body.Span.End
				return doc[:at] + "\n" + header + doc[at:], []string{"added global site header"}
			},
			Warn: func(doc string, page rewrite.Page) []string {
				if _, ok := rewrite.FirstTag(doc, "body", false); !ok {
					return []string{fmt.Sprintf("%s: no <body> tag, site header not added", page.Path)}
				}
				return nil
			},
		},
		{
			Name:        "nav-disclosure-bottom",
			Description: "moved affiliate disclosure to the bottom",
			Done: func(doc string, _ rewrite.Page) bool {
				_, ok := misplacedDisclosure(doc)
				return !ok
			},
			Apply: moveDisclosure,
		},
	}
}

func hasSiteHeader(doc string) bool {
	for _, t := range rewrite.Tags(doc) {
		if t.Name == "header" && !t.Closing && rewrite.HasClassOrID(t.Raw, SiteHeaderClass) {
			return true
		}
	}
	return false
}

func headerSnippet(siteName string, items []config.NavItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "    <header class=\"%s\">\n", SiteHeaderClass)
	b.WriteString("        <nav class=\"site-nav\">\n")
	fmt.Fprintf(&b, "            <a href=\"/\" class=\"logo\">%s</a>\n", attrValue(siteName))
	b.WriteString("            <ul class=\"nav-links\">\n")
	for _, item := range items {
		if len(item.Links) == 0 {
			fmt.Fprintf(&b, "                <li><a href=\"%s\">%s</a></li>\n", attrValue(item.URL), attrValue(item.Title))
			continue
		}
		b.WriteString("                <li class=\"dropdown\">\n")
		fmt.Fprintf(&b, "                    <a href=\"%s\" aria-haspopup=\"true\" aria-expanded=\"false\">%s</a>\n", attrValue(item.URL), attrValue(item.Title))
		b.WriteString("                    <div class=\"dropdown-content\" role=\"menu\">\n")
		for _, l := range item.Links {
			fmt.Fprintf(&b, "                        <a href=\"%s\" role=\"menuitem\">%s</a>\n", attrValue(l.URL), attrValue(l.Title))
		}
		b.WriteString("                    </div>\n")
		b.WriteString("                </li>\n")
	}
	b.WriteString("            </ul>\n")
	b.WriteString("            <button class=\"mobile-menu-toggle\" aria-label=\"Toggle mobile menu\">&#9776;</button>\n")
	b.WriteString("        </nav>\n")
	b.WriteString("    </header>")
	return b.String()
}

// findDisclosure returns the innermost div holding the affiliate disclosure,
// either by class or id or by its bold label. Divs wrapping <main> or <body>
// are never picked.
func findDisclosure(doc string) (rewrite.Element, bool) {
	var best rewrite.Element
	found := false
	for _, el := range rewrite.FindElements(doc, "div", nil) {
		inner := el.Inner.Text(doc)
		if !rewrite.HasClassOrID(el.Open.Raw, "disclosure") && !disclosureLabel.MatchString(inner) {
			continue
		}
		if rewrite.ContainsFold(inner, "<main") || rewrite.ContainsFold(inner, "<body") {
			continue
		}
		if !found || el.Span.Len() < best.Span.Len() {
			best, found = el, true
		}
	}
	return best, found
}

// bottomAnchor is the first </main>, or </body> when the page has no main.
func bottomAnchor(doc string) (*regexp.Regexp, int, bool) {
	for _, anchor := range []*regexp.Regexp{mainClose, bodyClose} {
		if loc := anchor.FindStringIndex(doc); loc != nil {
			return anchor, loc[0], true
		}
	}
	return nil, 0, false
}

// misplacedDisclosure finds a disclosure that sits before the bottom anchor with
// content after it. Trailing scripts and comments don't count as content.
func misplacedDisclosure(doc string) (rewrite.Element, bool) {
	el, ok := findDisclosure(doc)
	if !ok {
		return el, false
	}
	_, at, ok := bottomAnchor(doc)
	if !ok || el.Span.End > at {
		return el, false
	}
	tail := doc[el.Span.End:at]
	var filler []rewrite.Span
	for _, s := range rewrite.ScriptBlocks(tail) {
		filler = append(filler, s.Span)
	}
	filler = append(filler, rewrite.Comments(tail)...)
	if strings.TrimSpace(rewrite.RemoveSpans(tail, filler)) == "" {
		return el, false
	}
	return el, true
}

func moveDisclosure(doc string, _ rewrite.Page) (string, []string) {
	el, ok := misplacedDisclosure(doc)
	if !ok {
		return doc, nil
	}
	block := el.Span.Text(doc)
	out := rewrite.RemoveSpans(doc, []rewrite.Span{rewrite.WholeLines(doc, el.Span)})
	anchor, _, ok := bottomAnchor(out)
	if !ok {
		return doc, nil
	}
	out, _ = rewrite.InsertBeforeFirst(out, anchor, "    "+block+"\n")
	return out, []string{"moved affiliate disclosure to the bottom"}
}
