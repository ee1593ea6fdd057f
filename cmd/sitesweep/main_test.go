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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sitesweep/cmd/sitesweep/opts"
)

const page = "<html>\n<head><title>Klaviyo Review</title></head>\n<body>\n<p>hi</p>\n</body>\n</html>\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})

	cmd := newRootCmd(&opts.RootOpts{})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	logger := zerolog.New(zerolog.NewTestWriter(t))
	err := cmd.ExecuteContext(logger.WithContext(context.Background()))
	return buf.String(), err
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		errContains string
		check       func(t *testing.T, dir, out string)
	}{
		{
			name: "applies_named_sets",
			args: []string{"run", "email-capture"},
			check: func(t *testing.T, dir, out string) {
				assert.Contains(t, read(t, dir, "klaviyo-review.html"), `<script src="/email-capture.js" defer></script>`)
				assert.Contains(t, out, "klaviyo-review.html")
				assert.Contains(t, out, "added email capture script")
				assert.NoFileExists(t, filepath.Join(dir, "klaviyo-review.html.backup"))
			},
		},
		{
			name: "dry_run",
			args: []string{"run", "--dry-run", "email-capture"},
			check: func(t *testing.T, dir, out string) {
				assert.Equal(t, page, read(t, dir, "klaviyo-review.html"))
				assert.Contains(t, out, "dry run")
			},
		},
		{
			name: "backup_flag",
			args: []string{"run", "--backup", "email-capture"},
			check: func(t *testing.T, dir, out string) {
				assert.Equal(t, page, read(t, dir, "klaviyo-review.html.backup"))
			},
		},
		{
			name: "exclude_flag",
			args: []string{"run", "--exclude", "klaviyo-*", "email-capture"},
			check: func(t *testing.T, dir, out string) {
				assert.Equal(t, page, read(t, dir, "klaviyo-review.html"))
			},
		},
		{
			name: "default_pipeline",
			args: []string{"run"},
			check: func(t *testing.T, dir, out string) {
				got := read(t, dir, "klaviyo-review.html")
				assert.Contains(t, got, "/assets/cookie-consent.js")
				assert.Contains(t, got, `rel="canonical"`)
				assert.Contains(t, got, "/email-capture.js")
			},
		},
		{
			name:        "unknown_set",
			args:        []string{"run", "email-capture", "bogus"},
			wantErr:     true,
			errContains: "unknown rule set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSite(t, map[string]string{"klaviyo-review.html": page})

			out, err := execute(t, append(tt.args, "--root", dir)...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, dir, out)
		})
	}
}

func TestRunTwiceWritesNothing(t *testing.T) {
	dir := writeSite(t, map[string]string{"klaviyo-review.html": page})

	_, err := execute(t, "run", "--root", dir)
	require.NoError(t, err)
	first := read(t, dir, "klaviyo-review.html")
	info, err := os.Stat(filepath.Join(dir, "klaviyo-review.html"))
	require.NoError(t, err)

	_, err = execute(t, "run", "--root", dir)
	require.NoError(t, err)
	assert.Equal(t, first, read(t, dir, "klaviyo-review.html"))

	again, err := os.Stat(filepath.Join(dir, "klaviyo-review.html"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime(), "an unchanged page is never rewritten")
}

func TestRestoreCommand(t *testing.T) {
	dir := writeSite(t, map[string]string{"klaviyo-review.html": page})

	_, err := execute(t, "run", "--backup", "--root", dir, "email-capture")
	require.NoError(t, err)
	require.NotEqual(t, page, read(t, dir, "klaviyo-review.html"))

	out, err := execute(t, "restore", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "restored")
	assert.Equal(t, page, read(t, dir, "klaviyo-review.html"))
	assert.NoFileExists(t, filepath.Join(dir, "klaviyo-review.html.backup"))
}

func TestRestoreDiscard(t *testing.T) {
	dir := writeSite(t, map[string]string{"klaviyo-review.html": page})

	_, err := execute(t, "run", "--backup", "--root", dir, "email-capture")
	require.NoError(t, err)
	swept := read(t, dir, "klaviyo-review.html")
	require.FileExists(t, filepath.Join(dir, "klaviyo-review.html.backup"))

	out, err := execute(t, "restore", "--discard", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "discarded")
	assert.Equal(t, swept, read(t, dir, "klaviyo-review.html"))
	assert.NoFileExists(t, filepath.Join(dir, "klaviyo-review.html.backup"))

	out, err = execute(t, "restore", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no backups found")
	assert.Equal(t, swept, read(t, dir, "klaviyo-review.html"))
}

func TestConfigFile(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"site/index.html": page,
		".sitesweep.yaml": "root: site\npipeline:\n  - email-capture\n",
	})

	_, err := execute(t, "run", "--config", filepath.Join(dir, ".sitesweep.yaml"))
	require.NoError(t, err)

	got := read(t, dir, "site/index.html")
	assert.Contains(t, got, "/email-capture.js")
	assert.NotContains(t, got, "cookie-consent", "only the configured pipeline runs")
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	for _, name := range []string{"consent-add", "consent-remove", "consent-purge", "analytics", "nav", "nav-header", "seo", "links", "links-advanced", "favicon", "email-capture", "replace"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "rules", "email-capture")
	require.NoError(t, err)
	assert.Contains(t, out, "added email capture script")

	out, err = execute(t, "rules", "nav-header")
	require.NoError(t, err)
	assert.Contains(t, out, "moved affiliate disclosure to the bottom")

	_, err = execute(t, "rules", "bogus")
	require.Error(t, err)
}

func TestAuditCommand(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html": `<p><a href="/missing/">Missing page</a></p><script>function acceptCookies() {}</script>`,
	})

	out, err := execute(t, "audit", "links", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "broken-link")
	assert.Contains(t, out, "/missing/")

	out, err = execute(t, "audit", "cookies", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "acceptCookies")

	out, err = execute(t, "audit", "nav", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "mobile-nav")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sitesweep version info")
}
