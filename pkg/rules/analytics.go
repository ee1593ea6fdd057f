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

// MeasurementPlaceholder is the stand-in id left behind by page templates.
const MeasurementPlaceholder = "GA_MEASUREMENT_ID"

const gtagLoader = "googletagmanager.com/gtag/js"

var (
	gtagConfigCall     = regexp.MustCompile(`(?m)^[ \t]*gtag\(\s*['"]config['"]\s*,\s*['"]([^'"\n]+)['"]`)
	legacyTrackingHead = regexp.MustCompile(`(?m)^[ \t]*// (?:Track affiliate clicks|Analytics tracking|Track scroll depth)[^\n]*\n`)
)

// 📈 Analytics fixes Google Analytics wiring: placeholder ids, inline gtag
// handlers, duplicate loaders and config calls, legacy tracking blocks, and the
// shared analytics config script.
func Analytics(a *config.Analytics) []rewrite.Rule {
	return []rewrite.Rule{
		{
			Name:        "analytics-placeholder",
			Description: "replaced " + MeasurementPlaceholder + " with " + a.MeasurementID,
			Done: func(doc string, _ rewrite.Page) bool {
				return !strings.Contains(doc, MeasurementPlaceholder)
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				n := strings.Count(doc, MeasurementPlaceholder)
				return strings.ReplaceAll(doc, MeasurementPlaceholder, a.MeasurementID),
					[]string{counted("replaced "+MeasurementPlaceholder+" with "+a.MeasurementID, n)}
			},
		},
		editing("analytics-onclick", "removed inline gtag onclick handler", planGtagOnclick),
		{
			Name:        "analytics-loader",
			Description: "collapsed gtag loaders into one after <head>",
			Done: func(doc string, _ rewrite.Page) bool {
				return len(findLoaders(doc)) < 2
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				return collapseLoaders(doc, a.MeasurementID)
			},
		},
		removal("analytics-config", "removed duplicate gtag config call", func(doc string, _ rewrite.Page) []rewrite.Span {
			return findDuplicateConfigs(doc)
		}),
		removal("analytics-legacy", "removed legacy tracking block", func(doc string, _ rewrite.Page) []rewrite.Span {
			return scriptSpans(doc, findLegacyTracking)
		}),
		removal("analytics-empty-scripts", "removed emptied script tag", findEmptyTags),
		rewrite.Insert("analytics-config-script", "added analytics config script",
			path.Base(a.ConfigScript), rewrite.BodyClose, true,
			fmt.Sprintf("    <script src=\"%s\" defer></script>\n", attrValue(a.ConfigScript))),
	}
}

func planGtagOnclick(doc string, _ rewrite.Page) []edit {
	var edits []edit
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing {
			continue
		}
		if v, ok := rewrite.Attr(tag.Raw, "onclick"); ok && strings.Contains(v, "gtag(") {
			edits = append(edits, edit{span: tag.Span, text: rewrite.RemoveAttr(tag.Raw, "onclick")})
		}
	}
	return edits
}

// findLoaders returns every gtag.js loader script.
func findLoaders(doc string) []rewrite.Span {
	var spans []rewrite.Span
	for _, el := range rewrite.ScriptBlocks(doc) {
		if src, ok := rewrite.Attr(el.Open.Raw, "src"); ok && strings.Contains(src, gtagLoader) {
			spans = append(spans, el.Span)
		}
	}
	return spans
}

// collapseLoaders replaces duplicate loaders with a single loader for id right
// after <head>. Without a <head> the first loader stays where it is.
func collapseLoaders(doc, id string) (string, []string) {
	spans := findLoaders(doc)
	if len(spans) < 2 {
		return doc, nil
	}
	head := rewrite.HeadOpen.MatchString(doc)
	desc := fmt.Sprintf("collapsed %d gtag loaders into one after <head>", len(spans))
	if !head {
		spans = spans[1:]
		desc = counted("removed duplicate gtag loader", len(spans))
	}
	for i := range spans {
		spans[i] = rewrite.WholeLines(doc, spans[i])
	}
	out := rewrite.RemoveSpans(doc, spans)
	if head {
		loader := fmt.Sprintf("\n    <script async src=\"https://www.%s?id=%s\"></script>", gtagLoader, attrValue(id))
		out, _ = insertAfterAny(out, loader, rewrite.HeadOpen)
	}
	return out, []string{desc}
}

// findDuplicateConfigs returns repeated gtag('config', id) calls for an id
// already configured earlier in the document. The first call per id stays.
func findDuplicateConfigs(doc string) []rewrite.Span {
	var spans []rewrite.Span
	seen := map[string]bool{}
	for _, inner := range inlineScripts(doc) {
		src := inner.Text(doc)
		for _, m := range gtagConfigCall.FindAllStringSubmatchIndex(src, -1) {
			id := src[m[2]:m[3]]
			if !seen[id] {
				seen[id] = true
				continue
			}
			start := m[0] + len(src[m[0]:m[1]]) - len(strings.TrimLeft(src[m[0]:m[1]], " \t"))
			spans = append(spans, rewrite.Span{Start: inner.Start + start, End: inner.Start + rewrite.StatementEnd(src, start)})
		}
	}
	return spans
}

// findLegacyTracking returns the marker comment and the statement that follows it.
func findLegacyTracking(src string) []rewrite.Span {
	var spans []rewrite.Span
	for _, m := range legacyTrackingHead.FindAllStringIndex(src, -1) {
		body := m[1]
		for body < len(src) && (src[body] == ' ' || src[body] == '\t' || src[body] == '\n' || src[body] == '\r') {
			body++
		}
		spans = append(spans, rewrite.Span{Start: m[0], End: rewrite.StatementEnd(src, body)})
	}
	return spans
}
