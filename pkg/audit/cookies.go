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
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cookie inventory kinds, in report order
const (
	KindFunction = "function"
	KindID       = "id"
	KindClass    = "class"
	KindOnclick  = "onclick"
	KindListener = "listener"
	KindStorage  = "storage"
)

var cookieKinds = []string{KindFunction, KindID, KindClass, KindOnclick, KindListener, KindStorage}

var (
	consentFunc     = regexp.MustCompile(`(?i)function\s+(\w*(?:cookie|consent)\w*)\s*\(`)
	consentListener = regexp.MustCompile(`addEventListener\(\s*["']([^"']+)["']\s*,\s*([^,)]+)`)
	consentStorage  = regexp.MustCompile(`localStorage\.(?:getItem|setItem|removeItem)\(\s*["']([^"']*)["']`)
)

func isConsentWord(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "cookie") || strings.Contains(lower, "consent")
}

// 🍪 Cookies inventories consent code: function names, element ids and
// classes, onclick handlers, event listeners and localStorage keys.
// Each distinct value is reported once per file.
func Cookies() Check {
	return cookieCheck{}
}

type cookieCheck struct{}

func (cookieCheck) Name() string { return "cookies" }

func (cookieCheck) Inspect(_ context.Context, page *Page) []Finding {
	if !isConsentWord(page.Raw) {
		return nil
	}

	var out []Finding
	seen := map[string]bool{}
	add := func(kind, value string) {
		key := kind + "\x00" + value
		if value == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Finding{Path: page.Path, Kind: kind, Value: value})
	}

	for _, m := range consentFunc.FindAllStringSubmatch(page.Raw, -1) {
		add(KindFunction, m[1])
	}
	page.Doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, _ := s.Attr("id"); isConsentWord(id) {
			add(KindID, id)
		}
	})
	page.Doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		for _, c := range strings.Fields(class) {
			if isConsentWord(c) {
				add(KindClass, c)
			}
		}
	})
	page.Doc.Find("[onclick]").Each(func(_ int, s *goquery.Selection) {
		if h, _ := s.Attr("onclick"); isConsentWord(h) {
			add(KindOnclick, collapse(h))
		}
	})
	for _, m := range consentListener.FindAllStringSubmatch(page.Raw, -1) {
		if handler := strings.TrimSpace(m[2]); isConsentWord(handler) {
			add(KindListener, m[1]+" -> "+handler)
		}
	}
	for _, m := range consentStorage.FindAllStringSubmatch(page.Raw, -1) {
		if isConsentWord(m[1]) {
			add(KindStorage, m[1])
		}
	}

	return out
}

// 📦 Entry is one distinct piece of consent code and the files carrying it
type Entry struct {
	Kind  string
	Value string
	Files []string // in discovery order
}

// 📦 Inventory groups the findings of a cookie audit by kind and value
func Inventory(r *Report) []Entry {
	index := map[string]int{}
	var entries []Entry
	for _, f := range r.Findings() {
		key := f.Kind + "\x00" + f.Value
		i, ok := index[key]
		if !ok {
			i = len(entries)
			index[key] = i
			entries = append(entries, Entry{Kind: f.Kind, Value: f.Value})
		}
		entries[i].Files = append(entries[i].Files, f.Path)
	}

	rank := map[string]int{}
	for i, k := range cookieKinds {
		rank[k] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return rank[entries[i].Kind] < rank[entries[j].Kind]
		}
		return entries[i].Value < entries[j].Value
	})
	return entries
}
