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
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

const relatedHeading = "Related App Reviews"

var ulClose = regexp.MustCompile(`(?i)[ \t]*</ul\s*>`)

// workflow is a compiled config.Workflow
type workflow struct {
	config.Workflow
	patterns []*regexp.Regexp
}

// 🔀 advancedLinker holds the tables for the second linking pass
type advancedLinker struct {
	*linker
	storeSize    []term
	integrations []term
	hubs         []term
	hubPages     []string
	topics       []config.Topic
	workflows    []workflow
}

func newAdvancedLinker(l *config.Links) *advancedLinker {
	al := &advancedLinker{
		linker:       newLinker(l),
		storeSize:    sortedTerms(l.StoreSize),
		integrations: sortedTerms(l.Integrations),
		hubs:         sortedTerms(l.Hubs),
		hubPages:     l.HubPages,
		topics:       l.Topics,
	}
	for _, w := range l.Workflows {
		phrases := make(map[string]string, len(w.Phrases))
		for _, p := range w.Phrases {
			phrases[p] = w.URL
		}
		cw := workflow{Workflow: w}
		for _, t := range sortedTerms(phrases) {
			cw.patterns = append(cw.patterns, t.pattern)
		}
		al.workflows = append(al.workflows, cw)
	}
	return al
}

// 🔗 LinksAdvanced builds the second linking pass: cross-category workflow links,
// store size, integration and hub page links, and the browse link in the
// related reviews section. It expects Links to have run first.
func LinksAdvanced(l *config.Links) []rewrite.Rule {
	al := newAdvancedLinker(l)
	return []rewrite.Rule{
		editing("links-workflow", "linked related workflow", al.planWorkflows),
		editing("links-store-size", "linked store size mention", func(doc string, _ rewrite.Page) []edit {
			return planTerms(doc, al.storeSize)
		}),
		editing("links-integration", "linked integration mention", func(doc string, _ rewrite.Page) []edit {
			return planTerms(doc, al.integrations)
		}),
		editing("links-hub", "linked category hub", func(doc string, page rewrite.Page) []edit {
			if !al.isHubPage(page.Path) {
				return nil
			}
			return planTerms(doc, al.hubs)
		}),
		{
			Name:        "links-related-browse",
			Description: "added category browse link to related reviews",
			Done: func(doc string, page rewrite.Page) bool {
				_, ok := al.browseTarget(doc, page)
				return !ok
			},
			Apply: al.addBrowse,
		},
	}
}

// topicOf classifies a page by the first topic with a keyword in its path.
func (al *advancedLinker) topicOf(path string) string {
	lower := strings.ToLower(path)
	for _, t := range al.topics {
		for _, k := range t.Keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				return t.Name
			}
		}
	}
	return ""
}

func (al *advancedLinker) isHubPage(path string) bool {
	for _, pattern := range al.hubPages {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// planWorkflows links the first mention of each workflow that applies to the
// page's topic. The link text is the workflow's own text.
func (al *advancedLinker) planWorkflows(doc string, page rewrite.Page) []edit {
	topic := al.topicOf(page.Path)
	if topic == "" {
		return nil
	}
	spans := rewrite.TextSpans(doc)
	var edits []edit
	var taken []rewrite.Span
	for _, w := range al.workflows {
		if !slices.Contains(w.Topics, topic) || linksTo(doc, w.URL) {
			continue
		}
		for _, pattern := range w.patterns {
			at, ok := firstMention(doc, spans, pattern, taken, anyMention)
			if !ok {
				continue
			}
			taken = append(taken, at)
			edits = append(edits, edit{
				span: at,
				text: fmt.Sprintf("<a href=\"%s\">%s</a>", attrValue(w.URL), attrValue(w.Text)),
			})
			break
		}
	}
	return edits
}

// planTerms links the first mention of each target not yet linked from the page.
// Several phrases can share a target, only the longest one mentioned is linked.
func planTerms(doc string, terms []term) []edit {
	spans := rewrite.TextSpans(doc)
	used := map[string]bool{}
	var edits []edit
	var taken []rewrite.Span
	for _, t := range terms {
		if used[t.url] || linksTo(doc, t.url) {
			continue
		}
		at, ok := firstMention(doc, spans, t.pattern, taken, anyMention)
		if !ok {
			continue
		}
		used[t.url] = true
		taken = append(taken, at)
		edits = append(edits, edit{
			span: at,
			text: fmt.Sprintf("<a href=\"%s\">%s</a>", attrValue(t.url), at.Text(doc)),
		})
	}
	return edits
}

func linksTo(doc, url string) bool {
	return strings.Contains(doc, `href="`+url+`"`)
}

// browseTarget returns the related reviews section of a review page when it
// does not yet link to the app's category.
func (al *advancedLinker) browseTarget(doc string, page rewrite.Page) (rewrite.Element, bool) {
	if page.Kind != rewrite.KindReview {
		return rewrite.Element{}, false
	}
	sections := rewrite.FindElements(doc, "section", func(t rewrite.Tag) bool {
		return rewrite.HasClassOrID(t.Raw, "related-apps")
	})
	if len(sections) == 0 {
		return rewrite.Element{}, false
	}
	section := sections[0]
	group := al.browseGroup(page.App)
	inner := section.Inner.Text(doc)
	if linksTo(inner, group.URL) || ulClose.FindStringIndex(inner) == nil {
		return rewrite.Element{}, false
	}
	return section, true
}

func (al *advancedLinker) browseGroup(slug string) config.LinkGroup {
	if g, ok := al.groupOf(slug); ok {
		return g
	}
	return config.LinkGroup{Title: "App Categories", URL: "/app-categories/"}
}

func (al *advancedLinker) addBrowse(doc string, page rewrite.Page) (string, []string) {
	section, ok := al.browseTarget(doc, page)
	if !ok {
		return doc, nil
	}
	group := al.browseGroup(page.App)
	inner := section.Inner.Text(doc)
	inner = strings.Replace(inner, ">"+relatedHeading+"</h2>", ">"+relatedHeading+" &amp; Categories</h2>", 1)
	li := fmt.Sprintf("            <li><a href=\"%s\">Browse All %s &rarr;</a></li>\n", attrValue(group.URL), attrValue(group.Title))
	inner, _ = rewrite.InsertBeforeFirst(inner, ulClose, li)
	return doc[:section.Inner.Start] + inner + doc[section.Inner.End:], nil
}
