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
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/fileset"
	"github.com/walteh/sitesweep/pkg/rewrite"
	"github.com/walteh/sitesweep/pkg/status"
)

var errNotUTF8 = errors.New("content is not valid UTF-8")

// 🔄 NewTransformOperation creates the batch transformer: every discovered
// file is read once, threaded through the rules and written back only when
// the text changed.
func NewTransformOperation(opts Options) Operation {
	return &transformOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 🔄 transformOperation implements the transform operation
type transformOperation struct {
	BaseOperation
}

// 🏃 Execute runs the transform operation. Per-file failures are recorded and
// the batch continues. Only setup failures and cancellation return an error.
func (op *transformOperation) Execute(ctx context.Context) error {
	if err := op.validate(); err != nil {
		return errors.Errorf("invalid transform options: %w", err)
	}
	logger := zerolog.Ctx(ctx)

	set, err := fileset.Discover(ctx, op.Root, fileset.Options{
		Include: op.Include,
		Exclude: op.Exclude,
		Skip:    op.Skip,
	})
	if err != nil {
		return errors.Errorf("discovering files: %w", err)
	}

	for _, p := range set.Excluded {
		op.StatusMgr.TrackFile(ctx, status.FileInfo{Path: p, Status: status.StatusExcluded})
	}

	// Start tracking progress
	op.StatusMgr.StartOperation(ctx, set.Len())
	defer op.StatusMgr.FinishOperation(ctx)

	for i, p := range set.Files {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("processed", i).Int("total", set.Len()).Msg("transform interrupted")
			return errors.Errorf("transform interrupted after %d of %d files: %w", i, set.Len(), err)
		}

		info := op.processFile(ctx, p)
		op.StatusMgr.TrackFile(ctx, info)
		op.StatusMgr.UpdateProgress(ctx, i+1)
	}

	return nil
}

// 📄 processFile runs the rules over one file and never returns an error:
// failures end up in the FileInfo.
func (op *transformOperation) processFile(ctx context.Context, path string) status.FileInfo {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	failed := func(kind error, err error) status.FileInfo {
		return status.FileInfo{Path: path, Status: status.StatusError, Error: fileError(kind, path, err)}
	}

	content, err := op.StatusMgr.ReadFile(ctx, path)
	if err != nil {
		return failed(ErrRead, err)
	}
	if !utf8.Valid(content) {
		return failed(ErrRead, errNotUTF8)
	}

	original := string(content)
	page := rewrite.NewPage(path, op.BaseURL)
	res, err := rewrite.Chain(original, page, op.Rules)
	if err != nil {
		return failed(ErrPattern, err)
	}

	for _, name := range res.Fired {
		logger.Debug().Str("rule", name).Msg("rule applied")
	}
	for _, w := range res.Warnings {
		logger.Warn().Msg(w)
	}

	info := status.FileInfo{
		Path:     path,
		Status:   status.StatusUnchanged,
		Warnings: res.Warnings,
		Checksum: status.Checksum(content),
	}
	if !res.Changed(original) {
		return info
	}

	info.Status = status.StatusModified
	info.Changes = res.Changes
	info.Checksum = status.Checksum([]byte(res.Text))

	if op.DryRun {
		logger.Debug().Int("changes", len(res.Changes)).Msg("dry run, not writing")
		return info
	}

	if op.Backup {
		if err := op.StatusMgr.BackupFile(ctx, path); err != nil {
			return failed(ErrWrite, err)
		}
	}
	if err := op.StatusMgr.WriteFileAtomic(ctx, path, []byte(res.Text)); err != nil {
		return failed(ErrWrite, err)
	}

	return info
}
