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
	"path"
	"regexp"
	"strings"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

var (
	jsFunctionDecl  = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)\s*\(`)
	jsStorageCall   = regexp.MustCompile(`(?m)^[ \t]*localStorage\.(?:setItem|removeItem)\(\s*['"]([^'"\n]*)['"]`)
	jsListener      = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_$][\w$.]*)\.addEventListener\(`)
	jsElementLookup = regexp.MustCompile(`(?m)^[ \t]*(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*document\.(?:getElementById|querySelector)\(`)
	jsWindowExport  = regexp.MustCompile(`(?m)^[ \t]*window\.([A-Za-z_$][\w$]*)\s*=\s*([A-Za-z_$][\w$]*)\s*;?[ \t]*$`)
	jsBareCall      = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_$][\w$]*)\(`)
	jsHandlerArg    = regexp.MustCompile(`^\(\s*['"][\w-]+['"]\s*,\s*([A-Za-z_$][\w$]*)\s*\)$`)
	consentButton   = regexp.MustCompile(`(?i)^(?:accept|reject|decline)(?:all)?(?:btn|button)s?$`)
)

// isConsentName reports whether a javascript identifier, storage key, id or class
// belongs to a cookie consent implementation.
func isConsentName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "cookie") ||
		strings.Contains(lower, "consent") ||
		strings.Contains(lower, "gdpr") ||
		consentButton.MatchString(name)
}

// isConsentSelector matches css selectors that only style consent banners.
func isConsentSelector(sel string) bool {
	for _, part := range strings.Fields(sel) {
		for _, marker := range []string{".cookie", "#cookie", ".consent", "#consent", ".accept-all", ".reject-all", ".decline-all"} {
			if strings.Contains(part, marker) {
				return true
			}
		}
	}
	return false
}

// 🍪 ConsentAdd installs the global consent stylesheet and script.
func ConsentAdd(c *config.Consent) []rewrite.Rule {
	return []rewrite.Rule{
		rewrite.Insert("consent-stylesheet", "added global cookie consent stylesheet",
			path.Base(c.Stylesheet), rewrite.HeadOpen, false,
			fmt.Sprintf("\n    <link rel=\"stylesheet\" href=\"%s\">", attrValue(c.Stylesheet))),
		rewrite.Insert("consent-script", "added global cookie consent script",
			path.Base(c.Script), rewrite.BodyClose, true,
			fmt.Sprintf("    <script src=\"%s\"></script>\n", attrValue(c.Script))),
	}
}

// 🧹 ConsentRemove strips legacy inline consent implementations: banner markup,
// marker comments, css, javascript and inline handlers. The global assets stay.
func ConsentRemove() []rewrite.Rule {
	return []rewrite.Rule{
		removal("consent-banner", "removed legacy cookie consent banner", findConsentBanners),
		removal("consent-comments", "removed cookie consent comment block", findConsentComments),
		removal("consent-css", "removed cookie consent css rule", func(doc string, _ rewrite.Page) []rewrite.Span {
			return cssPrune(doc, isConsentSelector, nil)
		}),
		removal("consent-js", "removed cookie consent javascript", func(doc string, _ rewrite.Page) []rewrite.Span {
			return scriptSpans(doc, findConsentJS)
		}),
		editing("consent-onclick", "removed cookie consent onclick handler", planConsentOnclick),
		removal("consent-empty-tags", "removed empty script or style tag", findEmptyTags),
	}
}

// 🔥 ConsentPurge removes every consent implementation including the global asset tags.
func ConsentPurge(c *config.Consent) []rewrite.Rule {
	assets := []string{path.Base(c.Stylesheet), path.Base(c.Script)}
	purge := removal("consent-assets", "removed global cookie consent asset", func(doc string, _ rewrite.Page) []rewrite.Span {
		var spans []rewrite.Span
		for _, tag := range rewrite.Tags(doc) {
			if tag.Closing || tag.Name != "link" {
				continue
			}
			if href, ok := rewrite.Attr(tag.Raw, "href"); ok && endsWithAny(href, assets) {
				spans = append(spans, tag.Span)
			}
		}
		for _, el := range rewrite.ScriptBlocks(doc) {
			if src, ok := rewrite.Attr(el.Open.Raw, "src"); ok && endsWithAny(src, assets) {
				spans = append(spans, el.Span)
			}
		}
		return spans
	})
	return append(ConsentRemove(), purge)
}

func endsWithAny(ref string, names []string) bool {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	for _, n := range names {
		if path.Base(ref) == n {
			return true
		}
	}
	return false
}

func findConsentBanners(doc string, _ rewrite.Page) []rewrite.Span {
	var spans []rewrite.Span
	for _, el := range rewrite.FindElements(doc, "div", func(tag rewrite.Tag) bool {
		return rewrite.HasClassOrID(tag.Raw, "cookie", "consent")
	}) {
		spans = append(spans, el.Span)
	}
	return spans
}

func commentText(doc string, s rewrite.Span) string {
	text := s.Text(doc)
	text = strings.TrimPrefix(text, "<!--")
	text = strings.TrimSuffix(text, "-->")
	return strings.ToLower(strings.TrimSpace(text))
}

func isEndMarker(text string) bool {
	return strings.HasPrefix(text, "end ") || strings.HasPrefix(text, "/")
}

// findConsentComments pairs "<!-- Cookie Consent -->" style markers with their
// "End"/"/" counterparts and returns the whole block. Unpaired comments that
// mention cookie consent are returned alone.
func findConsentComments(doc string, _ rewrite.Page) []rewrite.Span {
	comments := rewrite.Comments(doc)
	var spans []rewrite.Span
	for i := 0; i < len(comments); i++ {
		text := commentText(doc, comments[i])
		if !strings.Contains(text, "cookie") || !strings.Contains(text, "consent") {
			continue
		}
		span := comments[i]
		if !isEndMarker(text) {
			for j := i + 1; j < len(comments); j++ {
				next := commentText(doc, comments[j])
				if isEndMarker(next) && strings.Contains(next, "cookie") {
					span.End = comments[j].End
					i = j
					break
				}
			}
		}
		spans = append(spans, span)
	}
	return spans
}

// findConsentJS returns the consent function declarations, storage calls, bare
// calls, listeners, element lookups and window exports in one script body.
func findConsentJS(src string) []rewrite.Span {
	var spans []rewrite.Span

	for _, m := range jsFunctionDecl.FindAllStringSubmatchIndex(src, -1) {
		if !isConsentName(src[m[2]:m[3]]) {
			continue
		}
		if block, ok := rewrite.FindBraceBlock(src, m[1]-1); ok {
			spans = append(spans, rewrite.Span{Start: m[0], End: block.End})
		}
	}

	statement := func(re *regexp.Regexp, keep func(src string, m []int) bool) {
		for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
			if keep(src, m) {
				start := m[0] + len(src[m[0]:m[1]]) - len(strings.TrimLeft(src[m[0]:m[1]], " \t"))
				spans = append(spans, rewrite.Span{Start: start, End: rewrite.StatementEnd(src, start)})
			}
		}
	}

	statement(jsStorageCall, func(src string, m []int) bool {
		return isConsentName(src[m[2]:m[3]])
	})
	statement(jsElementLookup, func(src string, m []int) bool {
		return isConsentName(src[m[2]:m[3]])
	})
	statement(jsBareCall, func(src string, m []int) bool {
		return isConsentName(src[m[2]:m[3]])
	})
	statement(jsWindowExport, func(src string, m []int) bool {
		return isConsentName(src[m[2]:m[3]]) || isConsentName(src[m[4]:m[5]])
	})
	statement(jsListener, func(src string, m []int) bool {
		receiver := src[m[2]:m[3]]
		if isConsentName(receiver[strings.LastIndex(receiver, ".")+1:]) {
			return true
		}
		end, ok := rewrite.MatchParen(src, m[1]-1)
		if !ok {
			return false
		}
		h := jsHandlerArg.FindStringSubmatch(src[m[1]-1 : end])
		return h != nil && isConsentName(h[1])
	})

	return spans
}

func planConsentOnclick(doc string, _ rewrite.Page) []edit {
	var edits []edit
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing {
			continue
		}
		if v, ok := rewrite.Attr(tag.Raw, "onclick"); ok && isConsentName(v) {
			edits = append(edits, edit{span: tag.Span, text: rewrite.RemoveAttr(tag.Raw, "onclick")})
		}
	}
	return edits
}

func findEmptyTags(doc string, _ rewrite.Page) []rewrite.Span {
	var spans []rewrite.Span
	for _, name := range []string{"script", "style"} {
		for _, el := range rewrite.FindElements(doc, name, nil) {
			if _, ok := rewrite.Attr(el.Open.Raw, "src"); ok {
				continue
			}
			if strings.TrimSpace(el.Inner.Text(doc)) == "" {
				spans = append(spans, el.Span)
			}
		}
	}
	return spans
}
