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
	"path"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrRulePanic is wrapped by the error Chain returns when a rule panics.
var ErrRulePanic = errors.New("rule panicked")

// 📄 Kind classifies a page by its path
type Kind int

const (
	KindOther Kind = iota
	KindReview
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindReview:
		return "review"
	case KindCategory:
		return "category"
	default:
		return "other"
	}
}

// 🗺️ Page is the read-only context a rule sees alongside the document text
type Page struct {
	Path string // slash separated, relative to the site root
	URL  string // absolute canonical url
	Kind Kind
	App  string // reviewed app slug, set on review pages
}

// NewPage derives the page context for a relative path. a/index.html maps to
// /a/, a.html maps to /a/ and index.html maps to /.
func NewPage(relPath, baseURL string) Page {
	p := strings.TrimPrefix(strings.ReplaceAll(relPath, "\\", "/"), "./")

	urlPath := "/" + p
	switch {
	case p == "index.html":
		urlPath = "/"
	case strings.HasSuffix(p, "/index.html"):
		urlPath = "/" + strings.TrimSuffix(p, "index.html")
	case strings.HasSuffix(p, ".html"):
		urlPath = "/" + strings.TrimSuffix(p, ".html") + "/"
	}

	page := Page{
		Path: p,
		URL:  strings.TrimRight(baseURL, "/") + urlPath,
		Kind: KindOther,
	}

	slug := path.Base(strings.TrimSuffix(path.Base(p), ".html"))
	if path.Base(p) == "index.html" {
		slug = path.Base(path.Dir(p))
	}

	switch {
	case strings.Contains(p, "-review"):
		page.Kind = KindReview
		page.App = strings.TrimSuffix(slug, "-review")
	case strings.Contains(p, "best-") && strings.Contains(p, "-apps"):
		page.Kind = KindCategory
	}
	return page
}

// 🔧 Rule is one idempotent rewrite.
//
// Done is the precondition: it reports whether the document is already in the
// end state, in which case Apply is not called. Apply returns the new text and
// descriptions of what it did. Warn, when set, reports problems the rule found
// but will not fix; it never changes the text.
type Rule struct {
	Name        string
	Description string
	Done        func(doc string, page Page) bool
	Apply       func(doc string, page Page) (string, []string)
	Warn        func(doc string, page Page) []string
}

// 📋 Result is the outcome of running a chain of rules over one document
type Result struct {
	Text     string
	Changes  []string // descriptions from rules that changed the text
	Fired    []string // names of rules that changed the text
	Skipped  []string // names of rules whose precondition already held
	Warnings []string
}

// Changed reports whether the final text differs from the input.
func (r Result) Changed(original string) bool {
	return r.Text != original
}

// ⛓️ Chain applies rules in order, threading the text through. A rule whose
// precondition holds is skipped. A rule that returns the text unchanged records
// nothing. A panic in any rule aborts the chain and returns the original text
// together with an error wrapping ErrRulePanic.
func Chain(doc string, page Page, rules []Rule) (res Result, err error) {
	current := ""
	defer func() {
		if r := recover(); r != nil {
			res = Result{Text: doc}
			err = errors.Errorf("%w: rule %q on %s: %v", ErrRulePanic, current, page.Path, r)
		}
	}()

	res.Text = doc
	for _, rule := range rules {
		current = rule.Name

		if rule.Warn != nil {
			res.Warnings = append(res.Warnings, rule.Warn(res.Text, page)...)
		}
		if rule.Done != nil && rule.Done(res.Text, page) {
			res.Skipped = append(res.Skipped, rule.Name)
			continue
		}

		out, changes := rule.Apply(res.Text, page)
		if out == res.Text {
			continue
		}
		if len(changes) == 0 {
			changes = []string{rule.Description}
		}
		res.Text = out
		res.Fired = append(res.Fired, rule.Name)
		res.Changes = append(res.Changes, changes...)
	}
	return res, nil
}

// 🧩 Insert builds a rule that splices snippet next to the first match of anchor
// unless marker is already present (case-insensitive).
func Insert(name, description, marker string, anchor *regexp.Regexp, before bool, snippet string) Rule {
	return Rule{
		Name:        name,
		Description: description,
		Done: func(doc string, _ Page) bool {
			return ContainsFold(doc, marker)
		},
		Apply: func(doc string, _ Page) (string, []string) {
			var out string
			var ok bool
			if before {
				out, ok = InsertBeforeFirst(doc, anchor, snippet)
			} else {
				out, ok = InsertAfterFirst(doc, anchor, snippet)
			}
			if !ok {
				return doc, nil
			}
			return out, []string{description}
		},
	}
}
