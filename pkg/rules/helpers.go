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
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/walteh/sitesweep/pkg/rewrite"
)

// finder locates the spans a removal rule deletes.
type finder func(doc string, page rewrite.Page) []rewrite.Span

// 🗑️ removal builds a rule that deletes every span find returns. A span that sits
// alone on its lines takes the lines with it. The rule is done when find comes up empty.
func removal(name, description string, find finder) rewrite.Rule {
	return rewrite.Rule{
		Name:        name,
		Description: description,
		Done: func(doc string, page rewrite.Page) bool {
			return len(find(doc, page)) == 0
		},
		Apply: func(doc string, page rewrite.Page) (string, []string) {
			spans := find(doc, page)
			if len(spans) == 0 {
				return doc, nil
			}
			for i := range spans {
				spans[i] = rewrite.WholeLines(doc, spans[i])
			}
			return rewrite.RemoveSpans(doc, spans), []string{counted(description, len(spans))}
		},
	}
}

// edit is one replacement planned by an editing rule.
type edit struct {
	span rewrite.Span
	text string
}

// planner computes the edits an editing rule would make.
type planner func(doc string, page rewrite.Page) []edit

// ✏️ editing builds a rule that applies the edits plan returns. The rule is done
// when plan comes up empty.
func editing(name, description string, plan planner) rewrite.Rule {
	return rewrite.Rule{
		Name:        name,
		Description: description,
		Done: func(doc string, page rewrite.Page) bool {
			return len(plan(doc, page)) == 0
		},
		Apply: func(doc string, page rewrite.Page) (string, []string) {
			edits := plan(doc, page)
			if len(edits) == 0 {
				return doc, nil
			}
			spans := make([]rewrite.Span, len(edits))
			texts := make([]string, len(edits))
			for i, e := range edits {
				spans[i] = e.span
				texts[i] = e.text
			}
			return rewrite.Replace(doc, spans, texts), []string{counted(description, len(edits))}
		},
	}
}

func counted(description string, n int) string {
	if n == 1 {
		return description
	}
	return fmt.Sprintf("%s (x%d)", description, n)
}

// offset shifts spans found inside a sub-slice of a document back to document offsets.
func offset(spans []rewrite.Span, by int) []rewrite.Span {
	for i := range spans {
		spans[i].Start += by
		spans[i].End += by
	}
	return spans
}

// inlineScripts returns the inner spans of script elements without a src attribute
// whose type is javascript.
func inlineScripts(doc string) []rewrite.Span {
	var spans []rewrite.Span
	for _, el := range rewrite.ScriptBlocks(doc) {
		if _, ok := rewrite.Attr(el.Open.Raw, "src"); ok {
			continue
		}
		if typ, ok := rewrite.Attr(el.Open.Raw, "type"); ok && !strings.Contains(strings.ToLower(typ), "javascript") && typ != "module" {
			continue
		}
		spans = append(spans, el.Inner)
	}
	return spans
}

// scriptSpans runs find over the text of every inline script and returns document spans.
func scriptSpans(doc string, find func(src string) []rewrite.Span) []rewrite.Span {
	var out []rewrite.Span
	for _, inner := range inlineScripts(doc) {
		out = append(out, offset(find(inner.Text(doc)), inner.Start)...)
	}
	return out
}

// hasMeta reports whether doc has a meta tag whose attr equals value (case-insensitive).
func hasMeta(doc, attr, value string) bool {
	_, ok := findMeta(doc, attr, value)
	return ok
}

func findMeta(doc, attr, value string) (rewrite.Tag, bool) {
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing || tag.Name != "meta" {
			continue
		}
		if v, ok := rewrite.Attr(tag.Raw, attr); ok && strings.EqualFold(strings.TrimSpace(v), value) {
			return tag, true
		}
	}
	return rewrite.Tag{}, false
}

// findLinkRel returns the first <link> whose rel tokens include rel.
func findLinkRel(doc, rel string) (rewrite.Tag, bool) {
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing || tag.Name != "link" {
			continue
		}
		if v, ok := rewrite.Attr(tag.Raw, "rel"); ok && hasToken(v, rel) {
			return tag, true
		}
	}
	return rewrite.Tag{}, false
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(strings.ToLower(list)) {
		if f == strings.ToLower(token) {
			return true
		}
	}
	return false
}

// insertAfterAny splices snippet after the first anchor that matches, trying anchors in order.
func insertAfterAny(doc, snippet string, anchors ...*regexp.Regexp) (string, bool) {
	for _, a := range anchors {
		if out, ok := rewrite.InsertAfterFirst(doc, a, snippet); ok {
			return out, true
		}
	}
	return doc, false
}

// insertBeforeAny splices snippet before the first anchor that matches, trying anchors in order.
func insertBeforeAny(doc, snippet string, anchors ...*regexp.Regexp) (string, bool) {
	for _, a := range anchors {
		if out, ok := rewrite.InsertBeforeFirst(doc, a, snippet); ok {
			return out, true
		}
	}
	return doc, false
}

func attrValue(s string) string {
	return html.EscapeString(s)
}

// cssPrune returns the spans of css rules inside inline <style> elements whose
// selectors all satisfy match. @media and @supports blocks are searched too and
// removed whole when every rule inside matches, or when dropAt accepts the
// lower-cased prelude of a block with at least one match.
func cssPrune(doc string, match func(selector string) bool, dropAt func(prelude string) bool) []rewrite.Span {
	var spans []rewrite.Span
	for _, el := range rewrite.StyleBlocks(doc) {
		for _, rule := range rewrite.CSSRules(doc, el.Inner) {
			if !strings.HasPrefix(rule.Prelude, "@") {
				if allSelectors(rule, match) {
					spans = append(spans, rule.Span)
				}
				continue
			}
			lower := strings.ToLower(rule.Prelude)
			if !strings.HasPrefix(lower, "@media") && !strings.HasPrefix(lower, "@supports") {
				continue
			}
			inner := rewrite.CSSRules(doc, rule.Body)
			var hits []rewrite.Span
			for _, r := range inner {
				if !strings.HasPrefix(r.Prelude, "@") && allSelectors(r, match) {
					hits = append(hits, r.Span)
				}
			}
			switch {
			case len(hits) > 0 && (len(hits) == len(inner) || (dropAt != nil && dropAt(lower))):
				spans = append(spans, rule.Span)
			default:
				spans = append(spans, hits...)
			}
		}
	}
	return spans
}

func allSelectors(rule rewrite.CSSRule, match func(string) bool) bool {
	sels := rule.Selectors()
	if len(sels) == 0 {
		return false
	}
	for _, s := range sels {
		if !match(strings.ToLower(s)) {
			return false
		}
	}
	return true
}

// titleCase upper-cases the first letter of each space separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
