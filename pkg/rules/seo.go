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
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

const (
	maxDescription   = 155
	minTitleForDescr = 50
	schemaContext    = "https://schema.org"
)

var (
	charsetMeta   = regexp.MustCompile(`(?i)<meta\s+charset[^>]*>`)
	viewportMeta  = regexp.MustCompile(`(?i)<meta\s+name=["']viewport["'][^>]*>`)
	canonicalLink = regexp.MustCompile(`(?i)<link\s[^>]*rel=["']canonical["'][^>]*>`)
	descMeta      = regexp.MustCompile(`(?i)<meta\s+name=["']description["'][^>]*>`)
)

// 🔎 pageInfo is what the seo rules read from a document
type pageInfo struct {
	Title       string
	H1          string
	Description string
}

// readPageInfo parses doc with goquery. Parse failures yield an empty info.
func readPageInfo(doc string) pageInfo {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return pageInfo{}
	}
	info := pageInfo{
		Title: collapse(d.Find("title").First().Text()),
		H1:    collapse(d.Find("h1").First().Text()),
	}
	if v, ok := d.Find(`meta[name="description"]`).First().Attr("content"); ok {
		info.Description = collapse(v)
	}
	return info
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// description derives a meta description: a long enough title, else the first heading.
func (p pageInfo) description() string {
	if p.Description != "" {
		return p.Description
	}
	if len([]rune(p.Title)) > minTitleForDescr {
		return truncate(p.Title, maxDescription)
	}
	return truncate(p.H1, maxDescription)
}

// 🔍 SEO adds the technical seo baseline: charset, viewport, description,
// canonical, Open Graph and Twitter tags, image attributes, security meta tags,
// safe external links and a JSON-LD @context.
func SEO(site *config.Site) []rewrite.Rule {
	return []rewrite.Rule{
		{
			Name:        "seo-charset",
			Description: "added charset meta tag",
			Done: func(doc string, _ rewrite.Page) bool {
				return charsetMeta.MatchString(doc)
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				out, _ := insertAfterAny(doc, "\n    <meta charset=\"UTF-8\">", rewrite.HeadOpen)
				return out, nil
			},
		},
		{
			Name:        "seo-viewport",
			Description: "added viewport meta tag",
			Done: func(doc string, _ rewrite.Page) bool {
				return hasMeta(doc, "name", "viewport")
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				out, _ := insertAfterAny(doc, "\n    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">", charsetMeta, rewrite.HeadOpen)
				return out, nil
			},
		},
		{
			Name:        "seo-description",
			Description: "added meta description",
			Done: func(doc string, _ rewrite.Page) bool {
				return hasMeta(doc, "name", "description")
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				desc := readPageInfo(doc).description()
				if desc == "" {
					return doc, nil
				}
				out, _ := insertAfterAny(doc, fmt.Sprintf("\n    <meta name=\"description\" content=\"%s\">", attrValue(desc)), rewrite.TitleClose)
				return out, nil
			},
		},
		editing("seo-canonical-absolute", "made canonical url absolute", func(doc string, _ rewrite.Page) []edit {
			tag, ok := findLinkRel(doc, "canonical")
			if !ok {
				return nil
			}
			href, _ := rewrite.Attr(tag.Raw, "href")
			if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
				return nil
			}
			return []edit{{span: tag.Span, text: rewrite.SetAttr(tag.Raw, "href", site.BaseURL+href)}}
		}),
		{
			Name:        "seo-canonical",
			Description: "added canonical link",
			Done: func(doc string, _ rewrite.Page) bool {
				_, ok := findLinkRel(doc, "canonical")
				return ok
			},
			Apply: func(doc string, page rewrite.Page) (string, []string) {
				out, _ := insertAfterAny(doc, fmt.Sprintf("\n    <link rel=\"canonical\" href=\"%s\">", attrValue(page.URL)), descMeta, rewrite.TitleClose, rewrite.HeadOpen)
				return out, nil
			},
		},
		{
			Name:        "seo-open-graph",
			Description: "added Open Graph tags",
			Done: func(doc string, _ rewrite.Page) bool {
				return hasMeta(doc, "property", "og:title")
			},
			Apply: func(doc string, page rewrite.Page) (string, []string) {
				info := readPageInfo(doc)
				if info.Title == "" {
					return doc, nil
				}
				var b strings.Builder
				writeMeta(&b, "property", "og:title", info.Title)
				writeMeta(&b, "property", "og:description", info.description())
				writeMeta(&b, "property", "og:url", page.URL)
				writeMeta(&b, "property", "og:type", "article")
				writeMeta(&b, "property", "og:site_name", site.Name)
				out, _ := insertAfterAny(doc, b.String(), canonicalLink, descMeta, rewrite.TitleClose)
				return out, nil
			},
		},
		{
			Name:        "seo-twitter",
			Description: "added Twitter card tags",
			Done: func(doc string, _ rewrite.Page) bool {
				return hasMeta(doc, "name", "twitter:card")
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				info := readPageInfo(doc)
				if info.Title == "" {
					return doc, nil
				}
				var b strings.Builder
				writeMeta(&b, "name", "twitter:card", "summary_large_image")
				writeMeta(&b, "name", "twitter:title", info.Title)
				writeMeta(&b, "name", "twitter:description", info.description())
				if tag, ok := lastMetaWithPrefix(doc, "property", "og:"); ok {
					return doc[:tag.Span.End] + b.String() + doc[tag.Span.End:], nil
				}
				out, _ := insertAfterAny(doc, b.String(), rewrite.TitleClose)
				return out, nil
			},
		},
		editing("seo-images", "updated image attributes", planImages),
		{
			Name:        "seo-nosniff",
			Description: "added X-Content-Type-Options meta tag",
			Done: func(doc string, _ rewrite.Page) bool {
				return hasMeta(doc, "http-equiv", "X-Content-Type-Options")
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				out, _ := insertAfterAny(doc, "\n    <meta http-equiv=\"X-Content-Type-Options\" content=\"nosniff\">", viewportMeta, charsetMeta, rewrite.HeadOpen)
				return out, nil
			},
		},
		{
			Name:        "seo-referrer",
			Description: "added referrer policy meta tag",
			Done: func(doc string, _ rewrite.Page) bool {
				return hasMeta(doc, "name", "referrer")
			},
			Apply: func(doc string, _ rewrite.Page) (string, []string) {
				out, _ := insertAfterAny(doc, "\n    <meta name=\"referrer\" content=\"strict-origin-when-cross-origin\">", viewportMeta, charsetMeta, rewrite.HeadOpen)
				return out, nil
			},
		},
		editing("seo-noopener", "added rel=\"noopener noreferrer\" to external link", func(doc string, _ rewrite.Page) []edit {
			return planNoopener(doc, site.BaseURL)
		}),
		jsonLDRule(),
	}
}

func writeMeta(b *strings.Builder, attr, key, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(b, "\n    <meta %s=\"%s\" content=\"%s\">", attr, key, attrValue(content))
}

func lastMetaWithPrefix(doc, attr, prefix string) (rewrite.Tag, bool) {
	var last rewrite.Tag
	found := false
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing || tag.Name != "meta" {
			continue
		}
		if v, ok := rewrite.Attr(tag.Raw, attr); ok && strings.HasPrefix(strings.ToLower(v), prefix) {
			last, found = tag, true
		}
	}
	return last, found
}

// altFromSource derives alt text from an image file name.
func altFromSource(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	name := path.Base(src)
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return collapse(name)
}

func planImages(doc string, _ rewrite.Page) []edit {
	var edits []edit
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing || tag.Name != "img" {
			continue
		}
		raw := tag.Raw
		if _, ok := rewrite.Attr(raw, "alt"); !ok {
			src, _ := rewrite.Attr(raw, "src")
			raw = rewrite.SetAttr(raw, "alt", altFromSource(src))
		}
		lower := strings.ToLower(tag.Raw)
		if _, ok := rewrite.Attr(raw, "loading"); !ok && !strings.Contains(lower, "logo") && !strings.Contains(lower, "icon") {
			raw = rewrite.SetAttr(raw, "loading", "lazy")
		}
		if _, ok := rewrite.Attr(raw, "decoding"); !ok {
			raw = rewrite.SetAttr(raw, "decoding", "async")
		}
		if raw != tag.Raw {
			edits = append(edits, edit{span: tag.Span, text: raw})
		}
	}
	return edits
}

// isExternal reports whether href leaves the site at base.
func isExternal(href, base string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "") {
		return false
	}
	b, err := url.Parse(base)
	if err != nil {
		return true
	}
	return !strings.EqualFold(strings.TrimPrefix(u.Hostname(), "www."), strings.TrimPrefix(b.Hostname(), "www."))
}

func planNoopener(doc, base string) []edit {
	var edits []edit
	for _, tag := range rewrite.Tags(doc) {
		if tag.Closing || tag.Name != "a" {
			continue
		}
		target, _ := rewrite.Attr(tag.Raw, "target")
		href, _ := rewrite.Attr(tag.Raw, "href")
		if !strings.EqualFold(target, "_blank") || !isExternal(href, base) {
			continue
		}
		rel, _ := rewrite.Attr(tag.Raw, "rel")
		want := strings.Fields(rel)
		for _, tok := range []string{"noopener", "noreferrer"} {
			if !hasToken(rel, tok) {
				want = append(want, tok)
			}
		}
		if len(want) == len(strings.Fields(rel)) {
			continue
		}
		edits = append(edits, edit{span: tag.Span, text: rewrite.SetAttr(tag.Raw, "rel", strings.Join(want, " "))})
	}
	return edits
}

// jsonLDBlocks returns the inner spans of application/ld+json scripts.
func jsonLDBlocks(doc string) []rewrite.Span {
	var spans []rewrite.Span
	for _, el := range rewrite.ScriptBlocks(doc) {
		if typ, ok := rewrite.Attr(el.Open.Raw, "type"); ok && strings.EqualFold(strings.TrimSpace(typ), "application/ld+json") {
			spans = append(spans, el.Inner)
		}
	}
	return spans
}

// hasTopLevelKey reports whether the json object has key at the top level.
// Keys starting with '@' are gjson modifiers in a path, so the object is walked.
func hasTopLevelKey(obj gjson.Result, key string) bool {
	found := false
	obj.ForEach(func(k, _ gjson.Result) bool {
		if k.String() == key {
			found = true
			return false
		}
		return true
	})
	return found
}

func jsonLDRule() rewrite.Rule {
	r := editing("seo-jsonld-context", "added @context to JSON-LD", func(doc string, _ rewrite.Page) []edit {
		var edits []edit
		for _, inner := range jsonLDBlocks(doc) {
			src := inner.Text(doc)
			trimmed := strings.TrimSpace(src)
			if !gjson.Valid(trimmed) {
				continue
			}
			obj := gjson.Parse(trimmed)
			if !obj.IsObject() || hasTopLevelKey(obj, "@context") {
				continue
			}
			brace := strings.IndexByte(src, '{')
			insert := fmt.Sprintf(`"@context": %q, `, schemaContext)
			if strings.HasPrefix(strings.TrimSpace(src[brace+1:]), "}") {
				insert = fmt.Sprintf(`"@context": %q`, schemaContext)
			}
			at := inner.Start + brace + 1
			edits = append(edits, edit{span: rewrite.Span{Start: at, End: at}, text: insert})
		}
		return edits
	})
	r.Warn = func(doc string, page rewrite.Page) []string {
		var warnings []string
		for _, inner := range jsonLDBlocks(doc) {
			if !gjson.Valid(strings.TrimSpace(inner.Text(doc))) {
				warnings = append(warnings, fmt.Sprintf("%s: invalid JSON-LD at byte %d", page.Path, inner.Start))
			}
		}
		return warnings
	}
	return r
}
