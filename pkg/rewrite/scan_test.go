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

package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	doc := `<!DOCTYPE html><html><!-- <div> --><head><script>if (a < b) { x = "</div>"; }</script></head>` +
		`<body class="x"><img src="a.png" /><p title='a > b'>hi</p></body></html>`

	var names []string
	for _, tag := range Tags(doc) {
		prefix := ""
		if tag.Closing {
			prefix = "/"
		}
		names = append(names, prefix+tag.Name)
	}

	assert.Equal(t, []string{
		"html", "head", "script", "/script", "/head",
		"body", "img", "p", "/p", "/body", "/html",
	}, names, "comments, doctype and script bodies should be skipped")

	img, ok := FirstTag(doc, "IMG", false)
	require.True(t, ok, "img should be found")
	assert.True(t, img.SelfClosing, "img should be self closing")

	p, ok := FirstTag(doc, "p", false)
	require.True(t, ok, "p should be found")
	assert.Equal(t, `<p title='a > b'>`, p.Raw, "quoted > should not end the tag")

	assert.Len(t, Comments(doc), 1, "one comment")
}

func TestFindElements(t *testing.T) {
	doc := `<div id="outer"><div class="cookie-banner"><div>inner</div><p>x</p></div></div><div class="cookie">b</div>`

	all := FindElements(doc, "div", nil)
	require.Len(t, all, 4, "four divs")
	assert.Equal(t, Span{0, len(doc) - len(`<div class="cookie">b</div>`)}, all[0].Span, "outer div should span its nested children")

	cookies := FindElements(doc, "div", func(tag Tag) bool {
		return HasClassOrID(tag.Raw, "cookie")
	})
	require.Len(t, cookies, 2, "two cookie divs")
	assert.Equal(t, `<div class="cookie-banner"><div>inner</div><p>x</p></div>`, cookies[0].Span.Text(doc))
	assert.Equal(t, "b", cookies[1].Inner.Text(doc))

	unclosed := FindElements(`<div class="cookie"><div>open`, "div", nil)
	assert.Empty(t, unclosed, "unclosed elements should be dropped")
}

func TestTextSpans(t *testing.T) {
	doc := `<head><title>Klaviyo</title></head><body><h1>Klaviyo</h1><p>Use Klaviyo <a href="/x">Klaviyo</a> and <!-- Klaviyo --> more</p><script>Klaviyo()</script></body>`

	var texts []string
	for _, s := range TextSpans(doc) {
		texts = append(texts, s.Text(doc))
	}
	joined := strings.Join(texts, "|")
	assert.Equal(t, "Use Klaviyo | and | more", joined, "only body copy outside skipped elements")
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		attr   string
		want   string
		wantOK bool
	}{
		{name: "double_quoted", raw: `<a href="/x" target="_blank">`, attr: "target", want: "_blank", wantOK: true},
		{name: "single_quoted", raw: `<a href='/x'>`, attr: "href", want: "/x", wantOK: true},
		{name: "unquoted", raw: `<img src=a.png alt=logo>`, attr: "alt", want: "logo", wantOK: true},
		{name: "case_insensitive", raw: `<LINK REL="Icon">`, attr: "rel", want: "Icon", wantOK: true},
		{name: "boolean", raw: `<script async src="a.js">`, attr: "async", want: "", wantOK: true},
		{name: "escaped", raw: `<meta content="a &amp; b">`, attr: "content", want: "a & b", wantOK: true},
		{name: "missing", raw: `<img src="a.png" />`, attr: "alt", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Attr(tt.raw, tt.attr)
			assert.Equal(t, tt.wantOK, ok, "presence should match")
			assert.Equal(t, tt.want, got, "value should match")
		})
	}
}

func TestSetAttr(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		attr  string
		value string
		want  string
	}{
		{name: "append", raw: `<img src="a.png">`, attr: "loading", value: "lazy", want: `<img src="a.png" loading="lazy">`},
		{name: "append_self_closing", raw: `<img src="a.png" />`, attr: "alt", value: "a", want: `<img src="a.png" alt="a" />`},
		{name: "replace", raw: `<link rel="icon" href="/old.ico">`, attr: "href", value: "/new.png", want: `<link rel="icon" href="/new.png">`},
		{name: "replace_unquoted", raw: `<a rel=nofollow>`, attr: "rel", value: "noopener noreferrer", want: `<a rel="noopener noreferrer">`},
		{name: "escape", raw: `<img>`, attr: "alt", value: `a "b"`, want: `<img alt="a &#34;b&#34;">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetAttr(tt.raw, tt.attr, tt.value))
		})
	}

	assert.Equal(t, `<a href="/x">`, RemoveAttr(`<a href="/x" onclick="gtag('event')">`, "onclick"))
}

func TestFindBraceBlock(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		wantOK bool
	}{
		{
			name:   "nested",
			src:    `function a() { if (x) { y(); } return {z: 1}; } after`,
			want:   `{ if (x) { y(); } return {z: 1}; }`,
			wantOK: true,
		},
		{
			name:   "braces_in_strings",
			src:    "function a() { var s = \"}\"; var t = '{'; var u = `${v}}`; }",
			want:   "{ var s = \"}\"; var t = '{'; var u = `${v}}`; }",
			wantOK: true,
		},
		{
			name:   "braces_in_comments",
			src:    "function a() { // }\n /* } */ b(); }",
			want:   "{ // }\n /* } */ b(); }",
			wantOK: true,
		},
		{
			name:   "unbalanced",
			src:    `function a() { if (x) {`,
			wantOK: false,
		},
		{
			name:   "no_brace",
			src:    `var a = 1;`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := FindBraceBlock(tt.src, 0)
			require.Equal(t, tt.wantOK, ok, "ok should match")
			if ok {
				assert.Equal(t, tt.want, span.Text(tt.src))
			}
		})
	}

	end, ok := MatchParen(`(a, ")", (b)) {`, 0)
	require.True(t, ok)
	assert.Equal(t, 13, end, "paren group should skip strings and nesting")
}

func TestStatementEnd(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "semicolon",
			src:  "gtag('config', 'G-1'); gtag('event');",
			want: "gtag('config', 'G-1');",
		},
		{
			name: "multi_line_call",
			src:  "document.addEventListener('click', function() {\n  a(';');\n});\nnext();",
			want: "document.addEventListener('click', function() {\n  a(';');\n});",
		},
		{
			name: "no_semicolon",
			src:  "x = 1\ny = 2",
			want: "x = 1",
		},
		{
			name: "enclosing_block",
			src:  "a() }",
			want: "a() ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.src[:StatementEnd(tt.src, 0)])
		})
	}
}

func TestCSSRules(t *testing.T) {
	css := `
/* header */
header { color: red; }
.nav-links a, .nav-links a:hover { content: "}"; }
@import url("x.css");
@media (max-width: 768px) {
    .nav-links { display: none; }
    .site-nav { padding: 0; }
}
`
	rules := CSSRules(css, Span{0, len(css)})
	require.Len(t, rules, 3, "three top level rules")
	assert.Equal(t, "header", rules[0].Prelude)
	assert.Equal(t, []string{".nav-links a", ".nav-links a:hover"}, rules[1].Selectors())
	assert.Equal(t, "@media (max-width: 768px)", rules[2].Prelude)

	inner := CSSRules(css, rules[2].Body)
	require.Len(t, inner, 2, "two nested rules")
	assert.Equal(t, ".nav-links", inner[0].Prelude)
	assert.Equal(t, ".site-nav { padding: 0; }", inner[1].Span.Text(css))
}

func TestInsertAndRemove(t *testing.T) {
	doc := "<html>\n<body>\n<p>x</p>\n</body>\n</html>"

	out, ok := InsertBeforeFirst(doc, BodyClose, "<script></script>\n")
	require.True(t, ok)
	assert.Equal(t, "<html>\n<body>\n<p>x</p>\n<script></script>\n</body>\n</html>", out)

	_, ok = InsertAfterFirst("<p>no head</p>", HeadOpen, "x")
	assert.False(t, ok, "missing anchor should report false")

	s := strings.Index(doc, "<p>")
	span := WholeLines(doc, Span{s, s + len("<p>x</p>")})
	assert.Equal(t, "<html>\n<body>\n</body>\n</html>", RemoveSpans(doc, []Span{span}), "whole line should be removed")

	inline := "a <b>x</b> c"
	span = WholeLines(inline, Span{2, 10})
	assert.Equal(t, Span{2, 10}, span, "inline spans are not widened")

	assert.Equal(t, "ad", RemoveSpans("abcd", []Span{{1, 3}, {1, 2}, {2, 3}}), "nested and overlapping spans merge")
	assert.Equal(t, "aXcY", Replace("abcd", []Span{{3, 4}, {1, 2}}, []string{"Y", "X"}))
}

func TestFold(t *testing.T) {
	assert.Equal(t, 4, IndexFold("abc <BODY>", "<body", 0))
	assert.Equal(t, -1, IndexFold("abc", "b", 5))
	assert.True(t, ContainsFold("Cookie-Consent.JS", "cookie-consent.js"))

	in := "ÉCOLE <Body>"
	out := asciiLower(in)
	assert.Len(t, out, len(in), "byte offsets are preserved")
	assert.Equal(t, "École <body>", out, "only ascii letters are folded")
	assert.Equal(t, 7, IndexFold(in, "<body>", 0), "offsets index into the original text")
}
