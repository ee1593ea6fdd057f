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
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalytics(t *testing.T) {
	cfg := testConfig(t)
	doc := `<html>
<head>
<script async src="https://www.googletagmanager.com/gtag/js?id=G-J09TH92K0M"></script>
<script>
gtag('config', 'G-J09TH92K0M');
</script>
<script async src="https://www.googletagmanager.com/gtag/js?id=GA_MEASUREMENT_ID"></script>
<script>
gtag('config', 'GA_MEASUREMENT_ID');
</script>
</head>
<body>
<a href="https://x.com" onclick="gtag('event', 'click')">x</a>
<script>
// Track affiliate clicks
document.querySelectorAll('a').forEach(function(link) {
    link.addEventListener('click', function() {});
});
console.log("keep");
</script>
</body>
</html>`

	res := run(t, Analytics(cfg.Analytics), "index.html", doc)

	assert.Equal(t, `<html>
<head>
    <script async src="https://www.googletagmanager.com/gtag/js?id=G-J09TH92K0M"></script>
<script>
gtag('config', 'G-J09TH92K0M');
</script>
</head>
<body>
<a href="https://x.com">x</a>
<script>
console.log("keep");
</script>
    <script src="/analytics-config.js" defer></script>
</body>
</html>`, res.Text)

	assert.Equal(t, []string{
		"analytics-placeholder",
		"analytics-onclick",
		"analytics-loader",
		"analytics-config",
		"analytics-legacy",
		"analytics-empty-scripts",
		"analytics-config-script",
	}, res.Fired)
	assert.Equal(t, "replaced GA_MEASUREMENT_ID with G-J09TH92K0M (x2)", res.Changes[0])
	assert.Contains(t, res.Changes, "collapsed 2 gtag loaders into one after <head>")
}

func TestAnalyticsKeepsDistinctConfigs(t *testing.T) {
	cfg := testConfig(t)
	doc := "<body>\n<script>\ngtag('config', 'G-AAA');\ngtag('config', 'G-BBB');\n</script>\n</body>"

	res := run(t, Analytics(cfg.Analytics), "index.html", doc)
	assert.Contains(t, res.Text, "gtag('config', 'G-AAA');")
	assert.Contains(t, res.Text, "gtag('config', 'G-BBB');")
	assert.Equal(t, 1, strings.Count(res.Text, "analytics-config.js"))
}

func TestAnalyticsLoaders(t *testing.T) {
	cfg := testConfig(t)
	loader := func(id string) string {
		return `<script async src="https://www.googletagmanager.com/gtag/js?id=` + id + `"></script>`
	}

	tests := []struct {
		name  string
		doc   string
		want  string
		fired bool
	}{
		{
			name:  "body_loaders_move_to_head",
			doc:   "<html>\n<head>\n<title>x</title>\n</head>\n<body>\n" + loader("G-OLD") + "\n<p>x</p>\n" + loader("G-J09TH92K0M") + "\n</body>\n</html>",
			want:  "<html>\n<head>\n    " + loader("G-J09TH92K0M") + "\n<title>x</title>\n</head>\n<body>\n<p>x</p>\n",
			fired: true,
		},
		{
			name:  "no_head_keeps_first",
			doc:   "<body>\n" + loader("G-AAA") + "\n" + loader("G-BBB") + "\n</body>",
			want:  "<body>\n" + loader("G-AAA") + "\n    <script src=",
			fired: true,
		},
		{
			name: "single_loader_stays_put",
			doc:  "<html>\n<head>\n</head>\n<body>\n" + loader("G-AAA") + "\n</body>\n</html>",
			want: "<body>\n" + loader("G-AAA") + "\n",
		},
		{
			name: "no_loader_is_not_added",
			doc:  "<html>\n<head>\n</head>\n<body>\n</body>\n</html>",
			want: "<html>\n<head>\n</head>\n<body>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, Analytics(cfg.Analytics), "index.html", tt.doc)
			assert.Contains(t, res.Text, tt.want)
			assert.Equal(t, tt.fired, slices.Contains(res.Fired, "analytics-loader"))
			assert.LessOrEqual(t, strings.Count(res.Text, "gtag/js"), 1)
		})
	}
}
