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

package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 📚 Config is the complete sitesweep configuration
type Config struct {
	// Root is the site directory to sweep
	Root string `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`
	// Include lists doublestar globs (relative to Root) of files to process
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	// Exclude lists extra doublestar globs skipped on top of the built-in exclusions
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	// Pipeline is the ordered list of rule sets applied by `run` without arguments
	Pipeline []string `json:"pipeline,omitempty" yaml:"pipeline,omitempty" hcl:"pipeline,optional"`
	// Backup writes a .backup sibling before overwriting a file
	Backup bool `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`

	Site         *Site         `json:"site,omitempty" yaml:"site,omitempty" hcl:"site,block"`
	Analytics    *Analytics    `json:"analytics,omitempty" yaml:"analytics,omitempty" hcl:"analytics,block"`
	Consent      *Consent      `json:"consent,omitempty" yaml:"consent,omitempty" hcl:"consent,block"`
	EmailCapture *EmailCapture `json:"email_capture,omitempty" yaml:"email_capture,omitempty" hcl:"email_capture,block"`
	Favicon      *Favicon      `json:"favicon,omitempty" yaml:"favicon,omitempty" hcl:"favicon,block"`
	Links        *Links        `json:"links,omitempty" yaml:"links,omitempty" hcl:"links,block"`
	Nav          *Nav          `json:"nav,omitempty" yaml:"nav,omitempty" hcl:"nav,block"`

	// Replacements are literal rewrites applied by the "replace" rule set
	Replacements []Replacement `json:"replacements,omitempty" yaml:"replacements,omitempty" hcl:"replacement,block"`

	location string
}

// 🌐 Site identifies the published site
type Site struct {
	BaseURL string `json:"base_url" yaml:"base_url" hcl:"base_url,optional"`
	Name    string `json:"name" yaml:"name" hcl:"name,optional"`
}

// 📈 Analytics configures the Google Analytics fixes
type Analytics struct {
	MeasurementID string `json:"measurement_id" yaml:"measurement_id" hcl:"measurement_id,optional"`
	ConfigScript  string `json:"config_script" yaml:"config_script" hcl:"config_script,optional"`
}

// 🍪 Consent points at the global cookie consent assets
type Consent struct {
	Stylesheet string `json:"stylesheet" yaml:"stylesheet" hcl:"stylesheet,optional"`
	Script     string `json:"script" yaml:"script" hcl:"script,optional"`
}

// 📧 EmailCapture points at the email capture script
type EmailCapture struct {
	Script string `json:"script" yaml:"script" hcl:"script,optional"`
}

// 🖼️ Favicon is the favicon every page should reference
type Favicon struct {
	URL  string `json:"url" yaml:"url" hcl:"url,optional"`
	Type string `json:"type" yaml:"type" hcl:"type,optional"`
}

// 🔗 Links holds the internal linking tables
type Links struct {
	// Apps maps an app name as it appears in copy to its review page
	Apps map[string]string `json:"apps,omitempty" yaml:"apps,omitempty" hcl:"apps,optional"`
	// Categories maps a category phrase to its roundup page
	Categories map[string]string `json:"categories,omitempty" yaml:"categories,omitempty" hcl:"categories,optional"`
	// Groups cluster reviewed apps for breadcrumbs and related sections
	Groups []LinkGroup `json:"groups,omitempty" yaml:"groups,omitempty" hcl:"group,block"`
	// Popular is the fallback related list for apps outside every group
	Popular []string `json:"popular,omitempty" yaml:"popular,omitempty" hcl:"popular,optional"`

	// StoreSize maps store size phrases to the store size guide
	StoreSize map[string]string `json:"store_size,omitempty" yaml:"store_size,omitempty" hcl:"store_size,optional"`
	// Integrations maps integration phrases to the page covering them
	Integrations map[string]string `json:"integrations,omitempty" yaml:"integrations,omitempty" hcl:"integrations,optional"`
	// Hubs maps category phrases to roundup pages, linked only on HubPages
	Hubs map[string]string `json:"hubs,omitempty" yaml:"hubs,omitempty" hcl:"hubs,optional"`
	// HubPages are doublestar globs of the pillar pages Hubs apply to
	HubPages []string `json:"hub_pages,omitempty" yaml:"hub_pages,omitempty" hcl:"hub_pages,optional"`
	// Topics classify pages by path keyword, first match wins
	Topics []Topic `json:"topics,omitempty" yaml:"topics,omitempty" hcl:"topic,block"`
	// Workflows link related workflows on pages of the listed topics
	Workflows []Workflow `json:"workflows,omitempty" yaml:"workflows,omitempty" hcl:"workflow,block"`
}

// 🏷️ Topic names the subject of pages whose path contains one of Keywords
type Topic struct {
	Name     string   `json:"name" yaml:"name" hcl:"name,label"`
	Keywords []string `json:"keywords" yaml:"keywords" hcl:"keywords"`
}

// 🔀 Workflow is a cross-category link: the first mention of any phrase on a
// page of one of Topics becomes a link to URL reading Text.
type Workflow struct {
	Name    string   `json:"name" yaml:"name" hcl:"name,label"`
	Phrases []string `json:"phrases" yaml:"phrases" hcl:"phrases"`
	Text    string   `json:"text" yaml:"text" hcl:"text"`
	URL     string   `json:"url" yaml:"url" hcl:"url"`
	Topics  []string `json:"topics" yaml:"topics" hcl:"topics"`
}

// 🧭 Nav describes the global site header
type Nav struct {
	// Stylesheet is the global navigation stylesheet linked from every page
	Stylesheet string `json:"stylesheet" yaml:"stylesheet" hcl:"stylesheet,optional"`
	// Items render left to right, items with Links as dropdowns
	Items []NavItem `json:"items,omitempty" yaml:"items,omitempty" hcl:"item,block"`
}

// 📌 NavItem is a top level header entry
type NavItem struct {
	Title string    `json:"title" yaml:"title" hcl:"title,label"`
	URL   string    `json:"url" yaml:"url" hcl:"url"`
	Links []NavLink `json:"links,omitempty" yaml:"links,omitempty" hcl:"link,block"`
}

// NavLink is a dropdown entry
type NavLink struct {
	Title string `json:"title" yaml:"title" hcl:"title,label"`
	URL   string `json:"url" yaml:"url" hcl:"url"`
}

// 🧩 LinkGroup is a category of reviewed apps
type LinkGroup struct {
	Name  string   `json:"name" yaml:"name" hcl:"name,label"`
	Title string   `json:"title" yaml:"title" hcl:"title"`
	URL   string   `json:"url" yaml:"url" hcl:"url"`
	Apps  []string `json:"apps" yaml:"apps" hcl:"apps"`
}

// 🔄 Replacement is a literal string replacement
type Replacement struct {
	Old string `json:"old" yaml:"old" hcl:"old"`
	New string `json:"new" yaml:"new" hcl:"new"`
	// File optionally limits the replacement to paths matching a doublestar glob
	File string `json:"file,omitempty" yaml:"file,omitempty" hcl:"file,optional"`
}

var measurementIDPattern = regexp.MustCompile(`^G-[A-Z0-9]+$`)

// 📍 Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate normalizes the configuration, fills defaults and checks values
func (cfg *Config) Validate() error {
	def := Default()

	if cfg.Root == "" {
		cfg.Root = def.Root
	}
	cfg.Root = filepath.Clean(cfg.Root)

	if len(cfg.Include) == 0 {
		cfg.Include = def.Include
	}
	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	if len(cfg.Pipeline) == 0 {
		cfg.Pipeline = def.Pipeline
	}

	if cfg.Site == nil {
		cfg.Site = def.Site
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = def.Site.BaseURL
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = def.Site.Name
	}
	u, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return errors.Errorf("parsing site.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return errors.Errorf("site.base_url must be an absolute http(s) url, got %q", cfg.Site.BaseURL)
	}
	cfg.Site.BaseURL = strings.TrimRight(cfg.Site.BaseURL, "/")

	if cfg.Analytics == nil {
		cfg.Analytics = def.Analytics
	}
	if cfg.Analytics.MeasurementID == "" {
		cfg.Analytics.MeasurementID = def.Analytics.MeasurementID
	}
	if cfg.Analytics.ConfigScript == "" {
		cfg.Analytics.ConfigScript = def.Analytics.ConfigScript
	}
	if !measurementIDPattern.MatchString(cfg.Analytics.MeasurementID) {
		return errors.Errorf("analytics.measurement_id %q is not a GA4 measurement id", cfg.Analytics.MeasurementID)
	}

	if cfg.Consent == nil {
		cfg.Consent = def.Consent
	}
	if cfg.Consent.Stylesheet == "" {
		cfg.Consent.Stylesheet = def.Consent.Stylesheet
	}
	if cfg.Consent.Script == "" {
		cfg.Consent.Script = def.Consent.Script
	}

	if cfg.EmailCapture == nil {
		cfg.EmailCapture = def.EmailCapture
	}
	if cfg.EmailCapture.Script == "" {
		cfg.EmailCapture.Script = def.EmailCapture.Script
	}

	if cfg.Favicon == nil {
		cfg.Favicon = def.Favicon
	}
	if cfg.Favicon.URL == "" {
		cfg.Favicon.URL = def.Favicon.URL
	}
	if cfg.Favicon.Type == "" {
		cfg.Favicon.Type = def.Favicon.Type
	}

	if cfg.Links == nil {
		cfg.Links = def.Links
	}
	if cfg.Links.Apps == nil {
		cfg.Links.Apps = def.Links.Apps
	}
	if cfg.Links.Categories == nil {
		cfg.Links.Categories = def.Links.Categories
	}
	if cfg.Links.Groups == nil {
		cfg.Links.Groups = def.Links.Groups
	}
	if cfg.Links.Popular == nil {
		cfg.Links.Popular = def.Links.Popular
	}
	if cfg.Links.StoreSize == nil {
		cfg.Links.StoreSize = def.Links.StoreSize
	}
	if cfg.Links.Integrations == nil {
		cfg.Links.Integrations = def.Links.Integrations
	}
	if cfg.Links.Hubs == nil {
		cfg.Links.Hubs = def.Links.Hubs
	}
	if cfg.Links.HubPages == nil {
		cfg.Links.HubPages = def.Links.HubPages
	}
	if cfg.Links.Topics == nil {
		cfg.Links.Topics = def.Links.Topics
	}
	if cfg.Links.Workflows == nil {
		cfg.Links.Workflows = def.Links.Workflows
	}
	tables := []struct {
		name  string
		table map[string]string
	}{
		{"apps", cfg.Links.Apps},
		{"categories", cfg.Links.Categories},
		{"store_size", cfg.Links.StoreSize},
		{"integrations", cfg.Links.Integrations},
		{"hubs", cfg.Links.Hubs},
	}
	for _, t := range tables {
		for name, target := range t.table {
			if strings.TrimSpace(name) == "" || !strings.HasPrefix(target, "/") {
				return errors.Errorf("links.%s[%q]: target must be a site-relative path, got %q", t.name, name, target)
			}
		}
	}
	for _, pattern := range cfg.Links.HubPages {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("links.hub_pages: invalid glob pattern %q", pattern)
		}
	}
	for _, w := range cfg.Links.Workflows {
		if len(w.Phrases) == 0 || w.Text == "" || !strings.HasPrefix(w.URL, "/") {
			return errors.Errorf("links.workflow %q: phrases, text and a site-relative url are required", w.Name)
		}
	}

	if cfg.Nav == nil {
		cfg.Nav = def.Nav
	}
	if cfg.Nav.Stylesheet == "" {
		cfg.Nav.Stylesheet = def.Nav.Stylesheet
	}
	if cfg.Nav.Items == nil {
		cfg.Nav.Items = def.Nav.Items
	}
	for _, item := range cfg.Nav.Items {
		if item.Title == "" || item.URL == "" {
			return errors.Errorf("nav.item %q: title and url are required", item.Title)
		}
	}

	for i, r := range cfg.Replacements {
		if r.Old == "" {
			return errors.Errorf("replacement %d: old is required", i)
		}
		// a replacement whose output still contains its input would fire on every run
		if strings.Contains(r.New, r.Old) {
			return errors.Errorf("replacement %d: new text contains old text %q", i, r.Old)
		}
		if r.File != "" && !doublestar.ValidatePattern(r.File) {
			return errors.Errorf("replacement %d: invalid file glob %q", i, r.File)
		}
	}

	return nil
}

// 🔑 Hash returns a stable digest of the configuration
func (cfg *Config) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	src := cfg.location
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("%s [%s] (%s)", cfg.Root, strings.Join(cfg.Pipeline, ","), src)
}
