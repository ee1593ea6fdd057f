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
	"bytes"
	"context"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/sitesweep/pkg/fileset"
	"github.com/walteh/sitesweep/pkg/status"
)

// 🔎 Finding is one observation about one file
type Finding struct {
	Path   string // slash separated, relative to the root
	Kind   string // what was found, one of the Kind constants
	Value  string // the subject: an href, a function name, a component
	Detail string
}

// 📄 FileResult holds the findings for one file
type FileResult struct {
	Path     string
	Findings []Finding
	Err      error
}

// 📋 Report holds one result per discovered file, in discovery order
type Report struct {
	Files []FileResult
}

// Findings flattens every finding in file order
func (r *Report) Findings() []Finding {
	var out []Finding
	for _, f := range r.Files {
		out = append(out, f.Findings...)
	}
	return out
}

// Errors returns the files that could not be read or parsed
func (r *Report) Errors() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Clean returns the paths with no findings and no error
func (r *Report) Clean() []string {
	var out []string
	for _, f := range r.Files {
		if f.Err == nil && len(f.Findings) == 0 {
			out = append(out, f.Path)
		}
	}
	return out
}

// Worst returns the files with findings, most findings first
func (r *Report) Worst() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if len(f.Findings) > 0 {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Findings) > len(out[j].Findings)
	})
	return out
}

// 📄 Page is a parsed file handed to a check
type Page struct {
	Path string
	Raw  string
	Doc  *goquery.Document
	Site fs.FS // the site root, for resolving link targets
}

// 🔍 Check inspects one page. Checks never modify anything and must be safe
// for concurrent use.
type Check interface {
	Name() string
	Inspect(ctx context.Context, page *Page) []Finding
}

// ⚙️ Options configure an audit run
type Options struct {
	Root    string
	Include []string
	Exclude []string
	Skip    func(path string) bool
	// Jobs bounds the number of files read at once. Defaults to GOMAXPROCS.
	Jobs int
	// Files reads the pages. Defaults to a status.Manager rooted at Root.
	Files status.FileManager
}

// 🏃 Run discovers the files under the root and runs check over each of them
// concurrently. Read and parse failures are recorded per file. Only discovery
// failures and cancellation return an error.
func Run(ctx context.Context, opts Options, check Check) (*Report, error) {
	logger := zerolog.Ctx(ctx)

	set, err := fileset.Discover(ctx, opts.Root, fileset.Options{
		Include: opts.Include,
		Exclude: opts.Exclude,
		Skip:    opts.Skip,
	})
	if err != nil {
		return nil, errors.Errorf("discovering files: %w", err)
	}

	files := opts.Files
	if files == nil {
		files = status.NewManager(opts.Root, nil)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	site := os.DirFS(opts.Root)

	// each goroutine owns its index, no lock needed
	results := make([]FileResult, set.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, set.Len())))

	for i, path := range set.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			content, err := files.ReadFile(gctx, path)
			if err != nil {
				results[i] = FileResult{Path: path, Err: errors.Errorf("reading %s: %w", path, err)}
				return nil
			}
			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
			if err != nil {
				results[i] = FileResult{Path: path, Err: errors.Errorf("parsing %s: %w", path, err)}
				return nil
			}

			findings := check.Inspect(gctx, &Page{Path: path, Raw: string(content), Doc: doc, Site: site})
			results[i] = FileResult{Path: path, Findings: findings}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("audit interrupted: %w", err)
	}

	logger.Debug().
		Str("check", check.Name()).
		Int("files", len(results)).
		Msg("audit complete")

	return &Report{Files: results}, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
