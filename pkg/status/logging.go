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
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 45 // Base width for filename
	statusWidth  = 10 // Width for status text
	detailIndent = 8  // spaces to indent change descriptions
)

// 🎯 FormatFileOperation formats a file outcome as one console line
func FormatFileOperation(info FileInfo) string {
	// Determine prefix symbol
	var prefix, statusText string
	switch info.Status {
	case StatusModified:
		prefix = color.YellowString("⟳")
		statusText = color.YellowString("%-*s", statusWidth, info.Status.String())
	case StatusRestored:
		prefix = color.GreenString("↺")
		statusText = color.GreenString("%-*s", statusWidth, info.Status.String())
	case StatusError:
		prefix = color.RedString("✗")
		statusText = color.RedString("%-*s", statusWidth, info.Status.String())
	default:
		prefix = color.HiBlackString("-")
		statusText = color.HiBlackString("%-*s", statusWidth, info.Status.String())
	}

	// Format parts with padding
	namePart := fmt.Sprintf("%-*s", nameWidth, info.Path)

	var detail string
	switch {
	case info.Error != nil:
		detail = info.Error.Error()
	case len(info.Changes) == 1:
		detail = "1 change"
	case len(info.Changes) > 1:
		detail = fmt.Sprintf("%d changes", len(info.Changes))
	}

	// Build final string with indentation
	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		statusText,
		detail,
	), " ")
}

// 📝 FormatChanges formats change descriptions as indented detail lines
func FormatChanges(changes []string) []string {
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, strings.Repeat(" ", detailIndent)+color.HiBlackString("• ")+c)
	}
	return lines
}
