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

package fileset

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultInclude matches every html file below the root.
var DefaultInclude = []string{"**/*.html"}

// BackupSuffix marks backup copies written next to the file they protect.
const BackupSuffix = ".backup"

// 📂 Set is the ordered list of files selected for one run
type Set struct {
	Root     string   // directory the paths are relative to
	Files    []string // slash separated, lexical order
	Excluded []string // paths that matched an include glob but were excluded
}

// 🔧 Options controls discovery
type Options struct {
	// Include lists doublestar globs a file must match. Defaults to DefaultInclude.
	Include []string
	// Exclude lists extra doublestar globs, checked after Skip.
	Exclude []string
	// Skip is the exclusion predicate. Defaults to DefaultExclude.
	Skip func(path string) bool
}

// 🔍 Discover walks root and returns the files to process.
// The walk is lexical so two runs over the same tree visit files in the same order.
func Discover(ctx context.Context, root string, opts Options) (*Set, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("checking root: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %q is not a directory", root)
	}

	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	skip := opts.Skip
	if skip == nil {
		skip = DefaultExclude
	}

	set := &Set{Root: root}

	err = fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				logger.Debug().Str("dir", p).Msg("skipping directory")
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if !matchAny(include, p) && !strings.HasSuffix(p, BackupSuffix) {
			return nil
		}
		if skip(p) || matchAny(opts.Exclude, p) {
			logger.Debug().Str("file", p).Msg("file excluded")
			set.Excluded = append(set.Excluded, p)
			return nil
		}

		set.Files = append(set.Files, p)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	logger.Debug().
		Str("root", root).
		Int("files", len(set.Files)).
		Int("excluded", len(set.Excluded)).
		Msg("discovery complete")

	return set, nil
}

// Len returns the number of files selected.
func (s *Set) Len() int {
	return len(s.Files)
}

// 🚫 DefaultExclude reports whether a slash separated relative path is never processed:
// hidden segments, dependency caches, templates, backups, debug and test pages.
func DefaultExclude(p string) bool {
	segments := strings.Split(p, "/")
	for _, seg := range segments[:len(segments)-1] {
		if skipDir(seg) {
			return true
		}
	}

	base := path.Base(p)
	lower := strings.ToLower(p)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.Contains(lower, "template"):
		return true
	case strings.HasSuffix(p, BackupSuffix):
		return true
	case strings.Contains(strings.ToLower(base), "debug"):
		return true
	case strings.HasPrefix(base, "test-"):
		return true
	}
	return false
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return name == "node_modules" || name == "__pycache__"
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}
