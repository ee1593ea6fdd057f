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

package status

import (
	"regexp"
	"sort"
	"strconv"
)

// 📋 Report is the change report of one run: every file in processing order.
type Report struct {
	Files []FileInfo
}

// 🔢 Counts are the global totals of a report
type Counts struct {
	Scanned   int // read and transformed, modified or not
	Modified  int
	Unchanged int
	Skipped   int // excluded
	Errored   int
	Restored  int
	Discarded int // backups deleted without restoring
}

// Counts totals the report by status
func (r *Report) Counts() Counts {
	var c Counts
	for _, f := range r.Files {
		switch f.Status {
		case StatusModified:
			c.Modified++
			c.Scanned++
		case StatusUnchanged:
			c.Unchanged++
			c.Scanned++
		case StatusExcluded:
			c.Skipped++
		case StatusError:
			c.Errored++
		case StatusRestored:
			c.Restored++
		case StatusDiscarded:
			c.Discarded++
		}
	}
	return c
}

func (r *Report) filter(s FileStatus) []FileInfo {
	var out []FileInfo
	for _, f := range r.Files {
		if f.Status == s {
			out = append(out, f)
		}
	}
	return out
}

// Modified lists the modified files with their change descriptions
func (r *Report) Modified() []FileInfo {
	return r.filter(StatusModified)
}

// Errors lists the files that failed
func (r *Report) Errors() []FileInfo {
	return r.filter(StatusError)
}

// Warnings lists every rule warning in file order. Each warning names its file.
func (r *Report) Warnings() []string {
	var out []string
	for _, f := range r.Files {
		out = append(out, f.Warnings...)
	}
	return out
}

// 📊 ChangeCount is how often one kind of change was made across a run
type ChangeCount struct {
	Description string
	Count       int
}

var repeatSuffix = regexp.MustCompile(`^(.*) \(x(\d+)\)$`)

// ChangeCounts aggregates change descriptions across files. A description
// ending in " (xN)" counts N times. Most frequent first.
func (r *Report) ChangeCounts() []ChangeCount {
	totals := map[string]int{}
	for _, f := range r.Files {
		for _, change := range f.Changes {
			desc, n := change, 1
			if m := repeatSuffix.FindStringSubmatch(change); m != nil {
				if v, err := strconv.Atoi(m[2]); err == nil {
					desc, n = m[1], v
				}
			}
			totals[desc] += n
		}
	}

	out := make([]ChangeCount, 0, len(totals))
	for desc, n := range totals {
		out = append(out, ChangeCount{Description: desc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Description < out[j].Description
	})
	return out
}
