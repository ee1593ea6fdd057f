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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Per-file failure kinds. None of them aborts a batch.
var (
	ErrRead    = errors.New("read error")
	ErrWrite   = errors.New("write error")
	ErrPattern = errors.New("pattern error")
)

// ❌ FileError is a failure confined to one file
type FileError struct {
	Kind error // ErrRead, ErrWrite or ErrPattern
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func fileError(kind error, path string, err error) *FileError {
	return &FileError{Kind: kind, Path: path, Err: err}
}
