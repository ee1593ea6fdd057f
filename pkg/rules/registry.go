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
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

// ErrUnknownSet is returned by Resolve for a rule set name that is not registered.
var ErrUnknownSet = errors.New("unknown rule set")

// 📦 Set is a named, ordered list of rules
type Set struct {
	Name        string
	Description string
	Rules       []rewrite.Rule
}

// 📚 Registry holds every rule set built from one configuration
type Registry struct {
	sets map[string]Set
}

// 🏭 NewRegistry builds all rule sets from a validated configuration.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{sets: map[string]Set{}}
	r.add("consent-remove", "strip legacy inline cookie consent code", ConsentRemove())
	r.add("consent-add", "install the global cookie consent assets", ConsentAdd(cfg.Consent))
	r.add("consent-purge", "strip every cookie consent implementation, global assets included", ConsentPurge(cfg.Consent))
	r.add("analytics", "fix Google Analytics tags", Analytics(cfg.Analytics))
	r.add("nav", "remove legacy navigation css and add the mobile navigation script", Navigation())
	r.add("nav-header", "add the global site header and move the affiliate disclosure to the bottom", NavHeader(cfg.Site, cfg.Nav))
	r.add("seo", "add technical seo tags and attributes", SEO(cfg.Site))
	r.add("links", "add internal links, breadcrumbs and related reviews", Links(cfg.Links))
	r.add("links-advanced", "add workflow, store size, integration and hub links", LinksAdvanced(cfg.Links))
	r.add("favicon", "point icon links at the configured favicon", Favicon(cfg.Favicon))
	r.add("email-capture", "add the email capture script", EmailCapture(cfg.EmailCapture))
	r.add("replace", "apply configured literal replacements", Replace(cfg.Replacements))
	return r
}

func (r *Registry) add(name, description string, rules []rewrite.Rule) {
	r.sets[name] = Set{Name: name, Description: description, Rules: rules}
}

// Names lists the registered rule sets alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named rule set.
func (r *Registry) Get(name string) (Set, bool) {
	s, ok := r.sets[name]
	return s, ok
}

// 🔍 Resolve concatenates the named sets in the order given.
func (r *Registry) Resolve(names ...string) ([]rewrite.Rule, error) {
	var out []rewrite.Rule
	var unknown []string
	for _, name := range names {
		s, ok := r.sets[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, s.Rules...)
	}
	if len(unknown) > 0 {
		return nil, errors.Errorf("%w: %s (known: %s)", ErrUnknownSet, strings.Join(unknown, ", "), strings.Join(r.Names(), ", "))
	}
	return out, nil
}
