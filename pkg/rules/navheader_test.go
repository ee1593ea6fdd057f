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

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

func testNav() *config.Nav {
	return &config.Nav{
		Stylesheet: "/assets/site-nav.css",
		Items: []config.NavItem{
			{Title: "Best Tools", URL: "/best/"},
			{
				Title: "Categories",
				URL:   "/app-categories/",
				Links: []config.NavLink{{Title: "Email & SMS", URL: "/email/"}},
			},
		},
	}
}

func namedRule(t *testing.T, rules []rewrite.Rule, name string) []rewrite.Rule {
	t.Helper()
	for _, r := range rules {
		if r.Name == name {
			return []rewrite.Rule{r}
		}
	}
	require.Failf(t, "rule not found", "no rule named %q", name)
	return nil
}

func TestNavHeader(t *testing.T) {
	site := &config.Site{Name: "ShopifyAppAuthority"}
	doc := `<html>
<head>
<title>T</title>
</head>
<body class="page">
<main>
<div class="affiliate-disclosure"><strong>Affiliate Disclosure:</strong> we earn commissions.</div>
<h1>Title</h1>
<p>Body.</p>
</main>
</body>
</html>`

	res := run(t, NavHeader(site, testNav()), "index.html", doc)

	assert.Equal(t, `<html>
<head>
<title>T</title>
    <link rel="stylesheet" href="/assets/site-nav.css">
</head>
<body class="page">
    <header class="site-header">
        <nav class="site-nav">
            <a href="/" class="logo">ShopifyAppAuthority</a>
            <ul class="nav-links">
                <li><a href="/best/">Best Tools</a></li>
                <li class="dropdown">
                    <a href="/app-categories/" aria-haspopup="true" aria-expanded="false">Categories</a>
                    <div class="dropdown-content" role="menu">
                        <a href="/email/" role="menuitem">Email &amp; SMS</a>
                    </div>
                </li>
            </ul>
            <button class="mobile-menu-toggle" aria-label="Toggle mobile menu">&#9776;</button>
        </nav>
    </header>
<main>
<h1>Title</h1>
<p>Body.</p>
    <div class="affiliate-disclosure"><strong>Affiliate Disclosure:</strong> we earn commissions.</div>
</main>
</body>
</html>`, res.Text)
	assert.Equal(t, []string{"nav-header-stylesheet", "nav-header", "nav-disclosure-bottom"}, res.Fired)
}

func TestNavHeaderSkips(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name     string
		doc      string
		warnings int
	}{
		{
			name:     "existing_site_header",
			doc:      "<head>\n<link rel=\"stylesheet\" href=\"/assets/site-nav.css\">\n</head>\n<body>\n<header class=\"site-header\"><a href=\"/\">Home</a></header>\n</body>",
			warnings: 0,
		},
		{
			name:     "no_body",
			doc:      "<div>\n<p>partial</p>\n</div>",
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, namedRule(t, NavHeader(cfg.Site, cfg.Nav), "nav-header"), "partial.html", tt.doc)
			assert.Equal(t, tt.doc, res.Text, "text should be unchanged")
			assert.Len(t, res.Warnings, tt.warnings)
		})
	}
}

func TestNavHeaderWithNavigation(t *testing.T) {
	cfg := testConfig(t)
	doc := "<html>\n<head>\n<style>\n.hero { padding: 0; }\n</style>\n</head>\n<body>\n<p>x</p>\n</body>\n</html>"

	rules := append(Navigation(), NavHeader(cfg.Site, cfg.Nav)...)
	res := run(t, rules, "index.html", doc)

	assert.Equal(t, 1, strings.Count(res.Text, `<header class="site-header">`))
	assert.Contains(t, res.Text, "<style>\n.hero { padding: 0; }\n</style>", "header styles live in the linked stylesheet")
}

func TestNavDisclosureBottom(t *testing.T) {
	cfg := testConfig(t)
	rules := namedRule(t, NavHeader(cfg.Site, cfg.Nav), "nav-disclosure-bottom")

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no_main_moves_before_body_close",
			doc:  "<body>\n<div class=\"note\"><strong>Affiliate Disclosure:</strong> we earn.</div>\n<p>copy</p>\n</body>",
			want: "<body>\n<p>copy</p>\n    <div class=\"note\"><strong>Affiliate Disclosure:</strong> we earn.</div>\n</body>",
		},
		{
			name: "nested_in_section",
			doc:  "<main>\n<section>\n    <div class=\"affiliate-disclosure\">we earn.</div>\n    <p>copy</p>\n</section>\n</main>",
			want: "<main>\n<section>\n    <p>copy</p>\n</section>\n    <div class=\"affiliate-disclosure\">we earn.</div>\n</main>",
		},
		{
			name: "already_last_before_trailing_script",
			doc:  "<main>\n<p>copy</p>\n<div class=\"disclosure\">we earn.</div>\n<!-- end -->\n<script>init()</script>\n</main>",
			want: "<main>\n<p>copy</p>\n<div class=\"disclosure\">we earn.</div>\n<!-- end -->\n<script>init()</script>\n</main>",
		},
		{
			name: "inside_footer",
			doc:  "<main>\n<p>copy</p>\n</main>\n<footer><div class=\"affiliate-disclosure\">we earn.</div></footer>",
			want: "<main>\n<p>copy</p>\n</main>\n<footer><div class=\"affiliate-disclosure\">we earn.</div></footer>",
		},
		{
			name: "wrapper_around_main_ignored",
			doc:  "<div class=\"disclosure-wrap\">\n<main>\n<p>copy</p>\n</main>\n</div>",
			want: "<div class=\"disclosure-wrap\">\n<main>\n<p>copy</p>\n</main>\n</div>",
		},
		{
			name: "no_disclosure",
			doc:  "<main>\n<div class=\"intro\">hello</div>\n<p>copy</p>\n</main>",
			want: "<main>\n<div class=\"intro\">hello</div>\n<p>copy</p>\n</main>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, rules, "page.html", tt.doc)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}
