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

package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/rewrite"
	"github.com/walteh/sitesweep/pkg/status"
)

// 🎯 Operation is one unit of work over a site tree
type Operation interface {
	Execute(ctx context.Context) error
}

// 💾 StatusManager stores files and records what happened to them
type StatusManager interface {
	status.FileManager
	status.StatusReporter
}

// 🔧 Options contains configuration for operations
type Options struct {
	// Root is the site directory
	Root string
	// BaseURL is the absolute site url pages are resolved against
	BaseURL string
	// Rules are applied to every file, in order
	Rules []rewrite.Rule
	// Include and Exclude are doublestar globs relative to Root
	Include []string
	Exclude []string
	// Skip is the exclusion predicate. Defaults to fileset.DefaultExclude.
	Skip func(path string) bool
	// Backup keeps a .backup copy of every file before its first rewrite
	Backup bool
	// DryRun computes changes without writing anything
	DryRun bool
	// StatusMgr handles file storage and status tracking
	StatusMgr StatusManager
}

// 🏗️ BaseOperation provides common functionality for operations
type BaseOperation struct {
	Options
}

// NewBaseOperation creates a new base operation
func NewBaseOperation(opts Options) BaseOperation {
	return BaseOperation{Options: opts}
}

func (op *BaseOperation) validate() error {
	if op.Root == "" {
		return errors.New("root is required")
	}
	if op.StatusMgr == nil {
		return errors.New("status manager is required")
	}
	return nil
}
