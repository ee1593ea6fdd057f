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

package operation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/operation"
	"github.com/walteh/sitesweep/pkg/rewrite"
	"github.com/walteh/sitesweep/pkg/status"
)

const (
	marker  = "<!-- swept -->"
	baseURL = "https://shopifyappauthority.com"
)

// 🧪 countingManager counts file reads and writes and can fail writes for one path
type countingManager struct {
	*status.Manager
	reads     []string
	writes    []string
	failWrite string
}

func (c *countingManager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	c.reads = append(c.reads, path)
	return c.Manager.ReadFile(ctx, path)
}

func (c *countingManager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	if path == c.failWrite {
		return errors.New("disk full")
	}
	c.writes = append(c.writes, path)
	return c.Manager.WriteFileAtomic(ctx, path, content)
}

// 🧪 createTestEnv creates a test environment
func createTestEnv(t *testing.T, files map[string]string) (context.Context, string, *countingManager) {
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	return ctx, dir, &countingManager{Manager: status.NewManager(dir, nil)}
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err, "reading %s", rel)
	return string(data)
}

func markerRules() []rewrite.Rule {
	return []rewrite.Rule{
		rewrite.Insert("marker", "added marker", marker, rewrite.BodyClose, true, marker+"\n"),
	}
}

func transform(ctx context.Context, dir string, mgr operation.StatusManager, mutate ...func(*operation.Options)) error {
	opts := operation.Options{
		Root:      dir,
		BaseURL:   baseURL,
		Rules:     markerRules(),
		StatusMgr: mgr,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return operation.NewTransformOperation(opts).Execute(ctx)
}

func TestTransformOperation(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		opts        func(*operation.Options)
		check       func(t *testing.T, dir string, mgr *countingManager)
		wantErr     bool
		errContains string
	}{
		{
			name: "writes_only_changed_files",
			files: map[string]string{
				"a.html":      "<body>\n</body>",
				"b.html":      "<p>fragment</p>",
				"blog/c.html": "<body>\n" + marker + "\n</body>",
			},
			check: func(t *testing.T, dir string, mgr *countingManager) {
				assert.Equal(t, []string{"a.html"}, mgr.writes, "only a.html changes")
				assert.Equal(t, "<body>\n"+marker+"\n</body>", readFile(t, dir, "a.html"))
				assert.Equal(t, "<p>fragment</p>", readFile(t, dir, "b.html"))

				report := mgr.Report(context.Background())
				assert.Equal(t, status.Counts{Scanned: 3, Modified: 1, Unchanged: 2}, report.Counts())
				if assert.Len(t, report.Modified(), 1) {
					assert.Equal(t, []string{"added marker"}, report.Modified()[0].Changes)
				}
			},
		},
		{
			name: "dry_run_writes_nothing",
			files: map[string]string{
				"a.html": "<body>\n</body>",
			},
			opts: func(o *operation.Options) { o.DryRun = true },
			check: func(t *testing.T, dir string, mgr *countingManager) {
				assert.Empty(t, mgr.writes)
				assert.Equal(t, "<body>\n</body>", readFile(t, dir, "a.html"))
				assert.Equal(t, 1, mgr.Report(context.Background()).Counts().Modified, "changes are still reported")
				assert.NoFileExists(t, filepath.Join(dir, "a.html.backup"))
			},
		},
		{
			name: "backup_before_write",
			files: map[string]string{
				"a.html": "<body>\n</body>",
				"b.html": "<p>fragment</p>",
			},
			opts: func(o *operation.Options) { o.Backup = true },
			check: func(t *testing.T, dir string, mgr *countingManager) {
				assert.Equal(t, "<body>\n</body>", readFile(t, dir, "a.html.backup"))
				assert.NoFileExists(t, filepath.Join(dir, "b.html.backup"), "unchanged files get no backup")
			},
		},
		{
			name: "exclusions_are_never_read",
			files: map[string]string{
				"a.html":                    "<body>\n</body>",
				"TEMPLATE-review.html":      "<body>\n</body>",
				"blog/template.html":        "<body>\n</body>",
				"a.html.backup":             "<body>\n</body>",
				"debug-nav.html":            "<body>\n</body>",
				".cache/x.html":             "<body>\n</body>",
				"node_modules/pkg/doc.html": "<body>\n</body>",
				"notes.txt":                 "<body>\n</body>",
			},
			check: func(t *testing.T, dir string, mgr *countingManager) {
				assert.Equal(t, []string{"a.html"}, mgr.reads)
				assert.Equal(t, "<body>\n</body>", readFile(t, dir, "TEMPLATE-review.html"))
				assert.Equal(t, "<body>\n</body>", readFile(t, dir, "a.html.backup"))

				counts := mgr.Report(context.Background()).Counts()
				assert.Equal(t, 1, counts.Scanned)
				assert.Equal(t, 4, counts.Skipped, "template, backup and debug files are reported as skipped")
			},
		},
		{
			name: "extra_exclude_globs",
			files: map[string]string{
				"a.html":        "<body>\n</body>",
				"drafts/b.html": "<body>\n</body>",
			},
			opts: func(o *operation.Options) { o.Exclude = []string{"drafts/**"} },
			check: func(t *testing.T, dir string, mgr *countingManager) {
				assert.Equal(t, []string{"a.html"}, mgr.writes)
			},
		},
		{
			name:        "missing_root",
			opts:        func(o *operation.Options) { o.Root = filepath.Join(o.Root, "nope") },
			wantErr:     true,
			errContains: "discovering files",
		},
		{
			name:        "missing_status_manager",
			opts:        func(o *operation.Options) { o.StatusMgr = nil },
			wantErr:     true,
			errContains: "status manager is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dir, mgr := createTestEnv(t, tt.files)

			opts := []func(*operation.Options){}
			if tt.opts != nil {
				opts = append(opts, tt.opts)
			}
			err := transform(ctx, dir, mgr, opts...)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, dir, mgr)
			}
		})
	}
}

func TestTransformIsIdempotent(t *testing.T) {
	ctx, dir, mgr := createTestEnv(t, map[string]string{
		"a.html": "<body>\n</body>",
		"b.html": "<body>\n</body>",
	})

	require.NoError(t, transform(ctx, dir, mgr))
	assert.Len(t, mgr.writes, 2)

	second := &countingManager{Manager: status.NewManager(dir, nil)}
	require.NoError(t, transform(ctx, dir, second))
	assert.Empty(t, second.writes, "second run should write nothing")
	assert.Equal(t, 2, second.Report(ctx).Counts().Unchanged)
}

func TestTransformBatchResilience(t *testing.T) {
	ctx, dir, mgr := createTestEnv(t, map[string]string{
		"1.html": "<body>\n</body>",
		"2.html": "<body>\n</body>",
		"3.html": "<body>\xff\xfe</body>",
		"4.html": "<body>\n</body>",
		"5.html": "<body>\n</body>",
	})

	require.NoError(t, transform(ctx, dir, mgr), "per-file errors should not fail the batch")

	report := mgr.Report(ctx)
	assert.Equal(t, status.Counts{Scanned: 4, Modified: 4, Errored: 1}, report.Counts())

	files := report.Files
	require.Len(t, files, 5)
	assert.Equal(t, "3.html", files[2].Path)
	assert.Equal(t, status.StatusError, files[2].Status)
	assert.Equal(t, "4.html", files[3].Path, "files after the failure are still processed")
	assert.Equal(t, status.StatusModified, files[4].Status)

	err := files[2].Error
	assert.True(t, errors.Is(err, operation.ErrRead), "undecodable content is a read error")
	var fe *operation.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "3.html", fe.Path)
	assert.Equal(t, "<body>\xff\xfe</body>", readFile(t, dir, "3.html"), "failed file is left alone")
}

func TestTransformPatternError(t *testing.T) {
	ctx, dir, mgr := createTestEnv(t, map[string]string{
		"a.html": "<body>\n</body>",
		"b.html": "<body>\n</body>",
	})

	boom := rewrite.Rule{
		Name: "boom",
		Apply: func(doc string, page rewrite.Page) (string, []string) {
			if page.Path == "a.html" {
				panic("bad span")
			}
			return doc, nil
		},
	}

	err := transform(ctx, dir, mgr, func(o *operation.Options) {
		o.Rules = append(markerRules(), boom)
	})
	require.NoError(t, err)

	info, err := mgr.GetFileInfo(ctx, "a.html")
	require.NoError(t, err)
	assert.Equal(t, status.StatusError, info.Status)
	assert.True(t, errors.Is(info.Error, operation.ErrPattern))
	assert.True(t, errors.Is(info.Error, rewrite.ErrRulePanic))
	assert.Equal(t, "<body>\n</body>", readFile(t, dir, "a.html"), "no partial write")

	info, err = mgr.GetFileInfo(ctx, "b.html")
	require.NoError(t, err)
	assert.Equal(t, status.StatusModified, info.Status)
}

func TestTransformWriteError(t *testing.T) {
	ctx, dir, mgr := createTestEnv(t, map[string]string{
		"a.html": "<body>\n</body>",
		"b.html": "<body>\n</body>",
	})
	mgr.failWrite = "a.html"

	require.NoError(t, transform(ctx, dir, mgr))

	info, err := mgr.GetFileInfo(ctx, "a.html")
	require.NoError(t, err)
	assert.True(t, errors.Is(info.Error, operation.ErrWrite))
	assert.Contains(t, info.Error.Error(), "disk full")
	assert.Equal(t, []string{"b.html"}, mgr.writes)
}

func TestTransformCancelled(t *testing.T) {
	ctx, dir, mgr := createTestEnv(t, map[string]string{
		"a.html": "<body>\n</body>",
	})
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	err := transform(ctx, dir, mgr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, mgr.writes)
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx, dir, mgr := createTestEnv(t, map[string]string{
		"a.html":      "<body>\n</body>",
		"blog/b.html": "<body>\n</body>",
	})

	require.NoError(t, transform(ctx, dir, mgr, func(o *operation.Options) { o.Backup = true }))
	assert.Contains(t, readFile(t, dir, "a.html"), marker)

	restoreMgr := status.NewManager(dir, nil)
	err := operation.NewRestoreOperation(operation.Options{Root: dir, StatusMgr: restoreMgr}).Execute(ctx)
	require.NoError(t, err)

	assert.Equal(t, "<body>\n</body>", readFile(t, dir, "a.html"))
	assert.Equal(t, "<body>\n</body>", readFile(t, dir, "blog/b.html"))
	assert.NoFileExists(t, filepath.Join(dir, "a.html.backup"))
	assert.NoFileExists(t, filepath.Join(dir, "blog/b.html.backup"))
	assert.Equal(t, 2, restoreMgr.Report(ctx).Counts().Restored)
}

func TestRestoreDryRun(t *testing.T) {
	ctx, dir, _ := createTestEnv(t, map[string]string{
		"a.html":        "modified",
		"a.html.backup": "original",
	})

	mgr := status.NewManager(dir, nil)
	err := operation.NewRestoreOperation(operation.Options{Root: dir, StatusMgr: mgr, DryRun: true}).Execute(ctx)
	require.NoError(t, err)

	assert.Equal(t, "modified", readFile(t, dir, "a.html"))
	assert.FileExists(t, filepath.Join(dir, "a.html.backup"))
	assert.Equal(t, 1, mgr.Report(ctx).Counts().Restored)
}

func TestDiscardBackups(t *testing.T) {
	tests := []struct {
		name   string
		dryRun bool
	}{
		{name: "discard"},
		{name: "dry_run", dryRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dir, _ := createTestEnv(t, map[string]string{
				"a.html":             "modified",
				"a.html.backup":      "original",
				"blog/b.html.backup": "orphan",
			})

			mgr := status.NewManager(dir, nil)
			err := operation.NewDiscardOperation(operation.Options{Root: dir, StatusMgr: mgr, DryRun: tt.dryRun}).Execute(ctx)
			require.NoError(t, err)

			assert.Equal(t, "modified", readFile(t, dir, "a.html"), "pages are never touched")
			assert.NoFileExists(t, filepath.Join(dir, "blog/b.html"))
			if tt.dryRun {
				assert.FileExists(t, filepath.Join(dir, "a.html.backup"))
				assert.FileExists(t, filepath.Join(dir, "blog/b.html.backup"))
			} else {
				assert.NoFileExists(t, filepath.Join(dir, "a.html.backup"))
				assert.NoFileExists(t, filepath.Join(dir, "blog/b.html.backup"))
			}

			counts := mgr.Report(ctx).Counts()
			assert.Equal(t, 2, counts.Discarded)
			assert.Zero(t, counts.Restored)
		})
	}
}

// 🧪 recordingOperation records its execution order
type recordingOperation struct {
	name string
	log  *[]string
	err  error
}

func (r *recordingOperation) Execute(ctx context.Context) error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestRunner(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())
	runner := operation.NewRunner(&logger)

	var order []string
	err := runner.Run(ctx,
		&recordingOperation{name: "first", log: &order},
		&recordingOperation{name: "second", log: &order, err: errors.New("nope")},
		&recordingOperation{name: "third", log: &order},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing operation 2: nope")
	assert.Equal(t, []string{"first", "second"}, order, "runner should stop at the first error")
}
