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

package audit

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/walteh/sitesweep/pkg/rules"
)

// KindMissingNav marks a navigation component a page lacks
const KindMissingNav = "missing-nav"

// 🧭 NavComponent is one piece of the global navigation
type NavComponent struct {
	Name    string
	Present func(nav *goquery.Selection, navText string, page *Page) bool
}

func textHas(needles ...string) func(*goquery.Selection, string, *Page) bool {
	return func(_ *goquery.Selection, text string, _ *Page) bool {
		for _, s := range needles {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// inOrder reports whether every item appears in text, each after the previous one
func inOrder(items ...string) func(*goquery.Selection, string, *Page) bool {
	return func(_ *goquery.Selection, text string, _ *Page) bool {
		at := 0
		for _, item := range items {
			i := strings.Index(text[at:], item)
			if i < 0 {
				return false
			}
			at += i + len(item)
		}
		return true
	}
}

// DefaultNavComponents lists the components every page's navigation carries
func DefaultNavComponents(siteName string) []NavComponent {
	return []NavComponent{
		{Name: "logo", Present: textHas(siteName)},
		{Name: "best-apps", Present: textHas("Best Apps", "Best Tools")},
		{Name: "categories", Present: textHas("Categories")},
		{Name: "quick-faqs", Present: textHas("Quick FAQs")},
		{Name: "by-store-size", Present: textHas("By Store Size")},
		{Name: "disclosure", Present: func(_ *goquery.Selection, _ string, page *Page) bool {
			return page.Doc.Find(`a[href*="affiliate"]`).FilterFunction(func(_ int, a *goquery.Selection) bool {
				return strings.Contains(a.Text(), "Disclosure")
			}).Length() > 0
		}},
		{Name: "dropdowns", Present: func(nav *goquery.Selection, _ string, _ *Page) bool {
			return nav.Find(".dropdown-content").Length() > 0
		}},
		{Name: "categories-menu", Present: inOrder("Email Marketing", "Conversion", "Reviews", "Customer Service", "CRM", "Analytics", "Free Apps")},
		{Name: "faqs-menu", Present: inOrder("Email Marketing FAQ", "Attribution FAQ", "Sales FAQ")},
		{Name: "store-size-menu", Present: inOrder("Small Stores", "Medium Stores", "Enterprise")},
		{Name: "mobile-nav", Present: func(_ *goquery.Selection, _ string, page *Page) bool {
			return strings.Contains(page.Raw, rules.MobileNavMarker)
		}},
	}
}

// 🧭 Navigation reports every component missing from a page's <nav> and
// <header> elements.
func Navigation(components []NavComponent) Check {
	return navCheck{components: components}
}

type navCheck struct {
	components []NavComponent
}

func (navCheck) Name() string { return "nav" }

func (c navCheck) Inspect(_ context.Context, page *Page) []Finding {
	nav := page.Doc.Find("nav, header")
	text := collapse(nav.Text())

	var out []Finding
	for _, comp := range c.components {
		if !comp.Present(nav, text, page) {
			out = append(out, Finding{Path: page.Path, Kind: KindMissingNav, Value: comp.Name})
		}
	}
	return out
}
