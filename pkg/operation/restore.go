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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/status"
)

// ⏪ NewRestoreOperation creates an operation that renames every .backup file
// under the root back over the file it protects.
func NewRestoreOperation(opts Options) Operation {
	return &restoreOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 🗑️ NewDiscardOperation creates an operation that deletes every .backup file
// under the root and keeps the pages as they are.
func NewDiscardOperation(opts Options) Operation {
	return &restoreOperation{
		BaseOperation: NewBaseOperation(opts),
		discard:       true,
	}
}

// ⏪ restoreOperation implements the restore and discard operations
type restoreOperation struct {
	BaseOperation
	discard bool
}

// 🏃 Execute runs the restore operation
func (op *restoreOperation) Execute(ctx context.Context) error {
	if err := op.validate(); err != nil {
		return errors.Errorf("invalid restore options: %w", err)
	}

	files, err := op.StatusMgr.ListBackups(ctx)
	if err != nil {
		return errors.Errorf("listing backups: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Int("backups", len(files)).Msg("found backups")

	op.StatusMgr.StartOperation(ctx, len(files))
	defer op.StatusMgr.FinishOperation(ctx)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("restore interrupted after %d of %d files: %w", i, len(files), err)
		}

		info := status.FileInfo{Path: path, Status: status.StatusRestored}
		apply := op.StatusMgr.RestoreFile
		if op.discard {
			info.Status = status.StatusDiscarded
			apply = op.StatusMgr.RemoveBackup
		}
		if !op.DryRun {
			if err := apply(ctx, path); err != nil {
				info = status.FileInfo{Path: path, Status: status.StatusError, Error: fileError(ErrWrite, path, err)}
			}
		}
		op.StatusMgr.TrackFile(ctx, info)
		op.StatusMgr.UpdateProgress(ctx, i+1)
	}

	return nil
}
