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
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Link finding kinds
const (
	KindBrokenLink     = "broken-link"
	KindWeakAnchor     = "weak-anchor"
	KindDenseParagraph = "dense-paragraph"
)

const (
	minAnchorLen = 3
	maxAnchorLen = 100
)

var genericAnchors = map[string]bool{
	"click here": true,
	"here":       true,
	"link":       true,
	"learn more": true,
	"more":       true,
	"read more":  true,
	"this":       true,
	"this link":  true,
}

var externalPrefixes = []string{"http:", "https:", "mailto:", "tel:", "javascript:", "data:", "//", "#"}

// 🔗 Links checks internal links: targets that do not exist under the root,
// weak anchor text and paragraphs carrying more than one link. Absolute links
// to baseURL's host are checked like site-relative ones.
func Links(baseURL string) Check {
	return linkCheck{base: baseURL}
}

type linkCheck struct {
	base string
}

func (linkCheck) Name() string { return "links" }

func (c linkCheck) Inspect(_ context.Context, page *Page) []Finding {
	var out []Finding
	add := func(kind, value, detail string) {
		out = append(out, Finding{Path: page.Path, Kind: kind, Value: value, Detail: detail})
	}

	page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		candidates, ok := linkCandidates(page.Path, sameSite(href, c.base))
		if !ok {
			return
		}
		if !anyExists(page.Site, candidates) {
			add(KindBrokenLink, href, "no file at "+strings.Join(candidates, " or "))
		}

		text := collapse(a.Text())
		if issue := anchorIssue(text, a); issue != "" {
			add(KindWeakAnchor, text, fmt.Sprintf("%s (%s)", issue, href))
		}
	})

	page.Doc.Find("p").Each(func(i int, p *goquery.Selection) {
		if n := p.Find("a[href]").Length(); n > 1 {
			add(KindDenseParagraph, fmt.Sprintf("paragraph %d", i+1), fmt.Sprintf("%d links", n))
		}
	})

	return out
}

// sameSite rewrites an absolute http(s) link to base's host, www or not, as a
// site-relative path. Other links come back unchanged.
func sameSite(href, base string) string {
	if base == "" {
		return href
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || !strings.EqualFold(strings.TrimPrefix(u.Hostname(), "www."), strings.TrimPrefix(b.Hostname(), "www.")) {
		return href
	}
	rel := u.EscapedPath()
	if rel == "" {
		rel = "/"
	}
	return rel
}

// linkCandidates resolves an internal href against the page to the files that
// could serve it. External, fragment-only and empty links are not internal.
func linkCandidates(pagePath, href string) ([]string, bool) {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	for _, p := range externalPrefixes {
		if strings.HasPrefix(lower, p) {
			return nil, false
		}
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if href == "" {
		return nil, false
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}

	dir := strings.HasSuffix(href, "/")
	var target string
	if strings.HasPrefix(href, "/") {
		target = path.Clean(strings.TrimPrefix(href, "/"))
	} else {
		target = path.Join(path.Dir(pagePath), href)
	}
	if target == "" || target == "." || target == "/" {
		return []string{"index.html"}, true
	}

	switch {
	case dir:
		return []string{target + "/index.html", target + ".html"}, true
	case path.Ext(target) == "":
		return []string{target + ".html", target + "/index.html"}, true
	default:
		return []string{target}, true
	}
}

func anyExists(site fs.FS, candidates []string) bool {
	for _, c := range candidates {
		if !fs.ValidPath(c) {
			continue
		}
		if info, err := fs.Stat(site, c); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func anchorIssue(text string, a *goquery.Selection) string {
	if text == "" {
		if a.Find("img[alt]").Length() > 0 {
			return ""
		}
		return "empty anchor text"
	}
	if genericAnchors[strings.ToLower(text)] {
		return "generic anchor text"
	}
	switch n := utf8.RuneCountInString(text); {
	case n < minAnchorLen:
		return "anchor text too short"
	case n > maxAnchorLen:
		return "anchor text too long"
	}
	return ""
}
