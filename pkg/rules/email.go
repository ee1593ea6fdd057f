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
	"fmt"
	"path"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/rewrite"
)

// 📧 EmailCapture adds the email capture script before </body>.
func EmailCapture(e *config.EmailCapture) []rewrite.Rule {
	return []rewrite.Rule{
		rewrite.Insert("email-capture", "added email capture script",
			path.Base(e.Script), rewrite.BodyClose, true,
			fmt.Sprintf("    <script src=\"%s\" defer></script>\n", attrValue(e.Script))),
	}
}
