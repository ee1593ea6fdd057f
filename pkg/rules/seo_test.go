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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewTitle = "Klaviyo Review 2025: Features, Pricing, Pros and Cons for Shopify Stores"

func TestSEO(t *testing.T) {
	cfg := testConfig(t)
	doc := `<!DOCTYPE html>
<html>
<head>
    <title>` + reviewTitle + `</title>
    <link rel="canonical" href="/klaviyo-review/">
    <script type="application/ld+json">{"@type": "Review", "name": "Klaviyo"}</script>
    <script type="application/ld+json">{not json}</script>
</head>
<body>
    <h1>Klaviyo Review</h1>
    <img src="/images/klaviyo-dashboard_view.png">
    <img src="/logo.png" alt="Logo">
    <a href="https://www.klaviyo.com/pricing" target="_blank">pricing</a>
    <a href="https://shopifyappauthority.com/about/" target="_blank">about</a>
</body>
</html>`

	res := run(t, SEO(cfg.Site), "klaviyo-review/index.html", doc)
	out := res.Text

	tests := []struct {
		name string
		want string
	}{
		{name: "charset", want: `<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="referrer" content="strict-origin-when-cross-origin">
    <meta http-equiv="X-Content-Type-Options" content="nosniff">`},
		{name: "description", want: `<meta name="description" content="` + reviewTitle + `">`},
		{name: "canonical", want: `<link rel="canonical" href="https://shopifyappauthority.com/klaviyo-review/">`},
		{name: "og_url", want: `<meta property="og:url" content="https://shopifyappauthority.com/klaviyo-review/">`},
		{name: "og_type", want: `<meta property="og:type" content="article">`},
		{name: "og_site_name", want: `<meta property="og:site_name" content="ShopifyAppAuthority">
    <meta name="twitter:card" content="summary_large_image">`},
		{name: "image", want: `<img src="/images/klaviyo-dashboard_view.png" alt="klaviyo dashboard view" loading="lazy" decoding="async">`},
		{name: "logo", want: `<img src="/logo.png" alt="Logo" decoding="async">`},
		{name: "external_link", want: `<a href="https://www.klaviyo.com/pricing" target="_blank" rel="noopener noreferrer">pricing</a>`},
		{name: "internal_link", want: `<a href="https://shopifyappauthority.com/about/" target="_blank">about</a>`},
		{name: "jsonld", want: `{"@context": "https://schema.org", "@type": "Review", "name": "Klaviyo"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.want)
		})
	}

	require.Len(t, res.Warnings, 1, "invalid JSON-LD should warn once")
	assert.Contains(t, res.Warnings[0], "klaviyo-review/index.html: invalid JSON-LD")
	assert.Contains(t, out, "{not json}", "invalid JSON-LD should be left alone")
	assert.Contains(t, res.Changes, "made canonical url absolute")
}

func TestSEOCanonicalAdded(t *testing.T) {
	cfg := testConfig(t)
	doc := "<html>\n<head>\n<title>Home</title>\n</head>\n<body><h1>Best Shopify apps</h1></body>\n</html>"

	res := run(t, SEO(cfg.Site), "index.html", doc)
	assert.Contains(t, res.Text, "<title>Home</title>\n    <meta name=\"description\" content=\"Best Shopify apps\">")
	assert.Contains(t, res.Text, `<link rel="canonical" href="https://shopifyappauthority.com/">`)
	assert.Equal(t, 1, strings.Count(res.Text, `rel="canonical"`))

	order := []string{
		`<meta name="description"`,
		`<link rel="canonical"`,
		`<meta property="og:title"`,
		`<meta property="og:site_name"`,
		`<meta name="twitter:card"`,
		`<meta name="twitter:description"`,
		"</head>",
	}
	at := 0
	for _, want := range order {
		i := strings.Index(res.Text[at:], want)
		require.GreaterOrEqual(t, i, 0, "%s should follow the previous head tag", want)
		at += i + len(want)
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		name string
		info pageInfo
		want string
	}{
		{
			name: "existing_description",
			info: pageInfo{Title: reviewTitle, Description: "already here"},
			want: "already here",
		},
		{
			name: "long_title",
			info: pageInfo{Title: reviewTitle, H1: "Klaviyo"},
			want: reviewTitle,
		},
		{
			name: "short_title_uses_heading",
			info: pageInfo{Title: "Klaviyo", H1: "Klaviyo Review"},
			want: "Klaviyo Review",
		},
		{
			name: "truncated",
			info: pageInfo{H1: strings.Repeat("é", 200)},
			want: strings.Repeat("é", maxDescription),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.description())
		})
	}
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{href: "https://www.klaviyo.com", want: true},
		{href: "https://shopifyappauthority.com/x/", want: false},
		{href: "https://www.shopifyappauthority.com/x/", want: false},
		{href: "/klaviyo-review/", want: false},
		{href: "mailto:hi@example.com", want: false},
		{href: "//cdn.example.com/a.js", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, isExternal(tt.href, baseURL))
		})
	}
}
