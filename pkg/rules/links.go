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
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

const maxRelated = 3

var (
	containerOpen = regexp.MustCompile(`(?i)<div\s+class=["']container["']\s*>`)
	h1Close       = regexp.MustCompile(`(?i)</h1\s*>`)
	footerOpen    = regexp.MustCompile(`(?i)[ \t]*<footer[\s>]`)
	mainClose     = regexp.MustCompile(`(?i)[ \t]*</main\s*>`)
	bodyClose     = regexp.MustCompile(`(?i)[ \t]*</body\s*>`)
)

// 🔗 term is a phrase that links to a page
type term struct {
	phrase  string
	url     string
	pattern *regexp.Regexp
}

// sortedTerms orders phrases longest first so "zoho crm" wins over "crm", then alphabetically.
func sortedTerms(table map[string]string) []term {
	terms := make([]term, 0, len(table))
	for phrase, url := range table {
		terms = append(terms, term{
			phrase:  phrase,
			url:     url,
			pattern: phrasePattern(phrase),
		})
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i].phrase) != len(terms[j].phrase) {
			return len(terms[i].phrase) > len(terms[j].phrase)
		}
		return terms[i].phrase < terms[j].phrase
	})
	return terms
}

// phrasePattern matches phrase case-insensitively, anchored on word boundaries
// where the phrase starts or ends with a word character.
func phrasePattern(phrase string) *regexp.Regexp {
	p := regexp.QuoteMeta(phrase)
	if startsWithWordByte(phrase) {
		p = `\b` + p
	}
	if endsWithWordByte(phrase) {
		p += `\b`
	}
	return regexp.MustCompile(`(?i)` + p)
}

// 🕸️ linker holds the link tables for one rule set
type linker struct {
	apps       []term
	categories []term
	groups     []config.LinkGroup
	popular    []string
	names      map[string]string // review url to display name
}

func newLinker(l *config.Links) *linker {
	lk := &linker{
		apps:       sortedTerms(l.Apps),
		categories: sortedTerms(l.Categories),
		groups:     l.Groups,
		popular:    l.Popular,
		names:      map[string]string{},
	}
	// a phrase spelling out the review slug names it, so /kit-review/ is "Kit" not "Convertkit"
	slugify := strings.NewReplacer(" ", "-", ".", "-")
	for _, app := range lk.apps {
		_, named := lk.names[app.url]
		if !named || reviewURL(slugify.Replace(app.phrase)) == app.url {
			lk.names[app.url] = titleCase(app.phrase)
		}
	}
	return lk
}

func reviewURL(slug string) string {
	return "/" + slug + "-review/"
}

// displayName names an app slug, preferring the phrase from the app table.
func (lk *linker) displayName(slug string) string {
	if name, ok := lk.names[reviewURL(slug)]; ok {
		return name
	}
	return titleCase(strings.ReplaceAll(slug, "-", " "))
}

func (lk *linker) groupOf(slug string) (config.LinkGroup, bool) {
	for _, g := range lk.groups {
		for _, app := range g.Apps {
			if app == slug {
				return g, true
			}
		}
	}
	return config.LinkGroup{}, false
}

// related lists up to maxRelated other apps from the same group, falling back to popular apps.
func (lk *linker) related(slug string) []string {
	pool := lk.popular
	if g, ok := lk.groupOf(slug); ok {
		pool = g.Apps
	}
	var out []string
	for _, app := range pool {
		if app != slug && len(out) < maxRelated {
			out = append(out, app)
		}
	}
	return out
}

// 🔗 Links builds the internal linking rules: breadcrumb, category link, app
// mention links and the related reviews section.
func Links(l *config.Links) []rewrite.Rule {
	lk := newLinker(l)
	return []rewrite.Rule{
		{
			Name:        "links-breadcrumb",
			Description: "added breadcrumb",
			Done: func(doc string, page rewrite.Page) bool {
				return page.Kind != rewrite.KindReview || rewrite.ContainsFold(doc, "breadcrumb")
			},
			Apply: lk.addBreadcrumb,
		},
		editing("links-category", "linked category mention", lk.planCategory),
		editing("links-apps", "linked app mention", lk.planApps),
		{
			Name:        "links-related",
			Description: "added related reviews section",
			Done: func(doc string, page rewrite.Page) bool {
				return page.Kind != rewrite.KindReview || rewrite.ContainsFold(doc, "related-apps")
			},
			Apply: lk.addRelated,
		},
	}
}

func (lk *linker) addBreadcrumb(doc string, page rewrite.Page) (string, []string) {
	group, ok := lk.groupOf(page.App)
	if !ok {
		group = config.LinkGroup{Title: "Apps", URL: "/app-categories/"}
	}
	snippet := fmt.Sprintf("\n    <div class=\"breadcrumb-context\">\n"+
		"        <a href=\"/\">Home</a> &gt;\n"+
		"        <a href=\"%s\">%s</a> &gt;\n"+
		"        <span>%s Review</span>\n"+
		"    </div>",
		attrValue(group.URL), attrValue(group.Title), attrValue(lk.displayName(page.App)))
	out, _ := insertAfterAny(doc, snippet, rewrite.MainOpen, containerOpen, h1Close)
	return out, nil
}

func (lk *linker) addRelated(doc string, page rewrite.Page) (string, []string) {
	apps := lk.related(page.App)
	if len(apps) == 0 {
		return doc, nil
	}
	var b strings.Builder
	b.WriteString("    <section class=\"related-apps\">\n")
	b.WriteString("        <h2>Related App Reviews</h2>\n")
	b.WriteString("        <ul>\n")
	for _, app := range apps {
		fmt.Fprintf(&b, "            <li><a href=\"%s\">%s Review</a></li>\n", attrValue(reviewURL(app)), attrValue(lk.displayName(app)))
	}
	b.WriteString("        </ul>\n")
	b.WriteString("    </section>\n")
	out, _ := insertBeforeAny(doc, b.String(), footerOpen, mainClose, bodyClose)
	return out, nil
}

// planCategory links a category phrase in the first paragraph that mentions one,
// on review pages. When that paragraph already holds a link it is left alone,
// which is also what keeps the rule from moving on to later paragraphs.
func (lk *linker) planCategory(doc string, page rewrite.Page) []edit {
	if page.Kind != rewrite.KindReview {
		return nil
	}
	for _, p := range rewrite.FindElements(doc, "p", nil) {
		inner := p.Inner.Text(doc)
		if !lk.mentionsCategory(inner) {
			continue
		}
		if strings.Contains(inner, "href=") {
			return nil
		}

		best, bestAt := term{}, rewrite.Span{Start: -1}
		for _, s := range rewrite.TextSpans(doc) {
			if !p.Inner.Contains(s) {
				continue
			}
			text := s.Text(doc)
			for _, c := range lk.categories {
				loc := c.pattern.FindStringIndex(text)
				if loc == nil {
					continue
				}
				at := rewrite.Span{Start: s.Start + loc[0], End: s.Start + loc[1]}
				if bestAt.Start < 0 || at.Start < bestAt.Start {
					best, bestAt = c, at
				}
			}
			if bestAt.Start >= 0 {
				break
			}
		}
		if bestAt.Start < 0 {
			return nil
		}

		// swallow a trailing "apps"/"app" so the link text reads naturally
		end := bestAt.End
		rest := doc[end:p.Inner.End]
		trimmed := strings.TrimLeft(rest, " ")
		for _, suffix := range []string{"apps", "app"} {
			if len(trimmed) >= len(suffix) && strings.EqualFold(trimmed[:len(suffix)], suffix) && !startsWithWordByte(trimmed[len(suffix):]) {
				end += len(rest) - len(trimmed) + len(suffix)
				break
			}
		}
		text := fmt.Sprintf("<a href=\"%s\">best %s apps for Shopify</a>", attrValue(best.url), strings.ToLower(best.phrase))
		return []edit{{span: rewrite.Span{Start: bestAt.Start, End: end}, text: text}}
	}
	return nil
}

func (lk *linker) mentionsCategory(s string) bool {
	for _, c := range lk.categories {
		if c.pattern.MatchString(s) {
			return true
		}
	}
	return false
}

func endsWithWordByte(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func startsWithWordByte(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// planApps links the first proper-noun mention of each app in body copy.
// An app already linked anywhere on the page, and the page's own app, are skipped.
// Mentions followed by "review" are left alone.
func (lk *linker) planApps(doc string, page rewrite.Page) []edit {
	own := ""
	if page.Kind == rewrite.KindReview {
		own = reviewURL(page.App)
	}
	spans := rewrite.TextSpans(doc)
	used := map[string]bool{}
	var edits []edit
	var taken []rewrite.Span

	for _, app := range lk.apps {
		if app.url == own || used[app.url] || linksTo(doc, app.url) {
			continue
		}
		at, ok := firstMention(doc, spans, app.pattern, taken, properNoun)
		if !ok {
			continue
		}
		used[app.url] = true
		taken = append(taken, at)
		edits = append(edits, edit{
			span: at,
			text: fmt.Sprintf("<a href=\"%s\">%s</a>", attrValue(app.url), at.Text(doc)),
		})
	}
	return edits
}

// mentionFilter decides whether a match at text[loc[0]:loc[1]] counts as a mention.
type mentionFilter func(text string, loc []int) bool

// properNoun accepts capitalized mentions that are not followed by "review".
func properNoun(text string, loc []int) bool {
	r, _ := utf8.DecodeRuneInString(text[loc[0]:])
	if !unicode.IsUpper(r) {
		return false
	}
	next := strings.ToLower(strings.TrimLeft(text[loc[1]:], " "))
	return !strings.HasPrefix(next, "review")
}

func anyMention(string, []int) bool { return true }

func firstMention(doc string, spans []rewrite.Span, pattern *regexp.Regexp, taken []rewrite.Span, accept mentionFilter) (rewrite.Span, bool) {
	for _, s := range spans {
		text := s.Text(doc)
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			at := rewrite.Span{Start: s.Start + loc[0], End: s.Start + loc[1]}
			if overlaps(at, taken) || !accept(text, loc) {
				continue
			}
			return at, true
		}
	}
	return rewrite.Span{}, false
}

func overlaps(s rewrite.Span, others []rewrite.Span) bool {
	for _, o := range others {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}
