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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/fileset"
)

// 📊 FileStatus represents what a run did to a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusUnchanged            // read and left byte-for-byte identical
	StatusModified             // rewritten with new content
	StatusExcluded             // skipped by the exclusion rules
	StatusError                // read, rule or write failure
	StatusRestored             // replaced by its backup
	StatusDiscarded            // backup deleted, page kept
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusExcluded:
		return "excluded"
	case StatusError:
		return "error"
	case StatusRestored:
		return "restored"
	case StatusDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// 📄 FileInfo is the outcome for one file
type FileInfo struct {
	Path     string     // slash separated, relative to the root
	Status   FileStatus // what happened
	Changes  []string   // change descriptions, in rule order
	Warnings []string   // problems rules found but did not fix
	Checksum string     // content hash after the run
	Error    error      // set when Status is StatusError
}

// 💾 FileManager handles all file system operations under a root
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFileAtomic replaces path with content in one rename
	WriteFileAtomic(ctx context.Context, path string, content []byte) error

	// Backup operations
	BackupFile(ctx context.Context, path string) error
	RemoveBackup(ctx context.Context, path string) error
	RestoreFile(ctx context.Context, path string) error
	ListBackups(ctx context.Context) ([]string, error)
}

// 📈 StatusReporter tracks file status and reports progress
type StatusReporter interface {
	// Status tracking
	TrackFile(ctx context.Context, info FileInfo)
	GetFileInfo(ctx context.Context, path string) (FileInfo, error)
	ListFiles(ctx context.Context) []FileInfo

	// Progress reporting
	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

var (
	_ FileManager    = (*Manager)(nil)
	_ StatusReporter = (*Manager)(nil)
)

// 🔧 Manager implements both FileManager and StatusReporter
type Manager struct {
	baseDir   string        // Base directory for all operations
	formatter FileFormatter // Formatter for status messages

	// Status tracking, in the order files were tracked
	mu    sync.RWMutex
	order []string
	files map[string]FileInfo

	// Progress tracking
	total     int
	processed int
}

// 🏭 NewManager creates a status manager rooted at baseDir. A nil formatter
// uses the default one.
func NewManager(baseDir string, formatter FileFormatter) *Manager {
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		formatter: formatter,
		files:     make(map[string]FileInfo),
	}
}

// BaseDir returns the root the manager operates in
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// 🔒 getAbsPath returns the absolute path for a given relative path
func (m *Manager) getAbsPath(path string) string {
	return filepath.Join(m.baseDir, filepath.FromSlash(path))
}

func backupPath(absPath string) string {
	return absPath + fileset.BackupSuffix
}

// 🔍 Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// FileManager interface implementation

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFileAtomic writes content to a temp file next to path and renames it
// over path. The existing file mode is kept.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)

	mode := fs.FileMode(0o644)
	if st, err := os.Stat(absPath); err == nil {
		mode = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// BackupFile copies path to its .backup sibling. An existing backup is kept, so
// the backup always holds the content from before the first run.
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	bak := backupPath(absPath)

	if _, err := os.Stat(bak); err == nil {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("backup already exists")
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("checking backup existence: %w", err)
	}

	st, err := os.Stat(absPath)
	if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return errors.Errorf("reading file for backup: %w", err)
	}
	if err := os.WriteFile(bak, content, st.Mode().Perm()); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	return nil
}

// RemoveBackup deletes the .backup sibling of path if there is one.
func (m *Manager) RemoveBackup(ctx context.Context, path string) error {
	if err := os.Remove(backupPath(m.getAbsPath(path))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("removing backup: %w", err)
	}
	return nil
}

// RestoreFile renames the .backup sibling of path over path.
func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	bak := backupPath(absPath)

	if _, err := os.Stat(bak); err != nil {
		return errors.Errorf("checking backup existence: %w", err)
	}

	if err := os.Rename(bak, absPath); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}

	return nil
}

// ListBackups returns the paths, relative to the root and without the backup
// suffix, of every file that has a backup. Hidden directories are not searched.
func (m *Manager) ListBackups(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(m.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != m.baseDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), fileset.BackupSuffix) {
			return nil
		}
		rel, err := filepath.Rel(m.baseDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, strings.TrimSuffix(filepath.ToSlash(rel), fileset.BackupSuffix))
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("listing backups: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// StatusReporter interface implementation

// TrackFile records the outcome for a file. Tracking the same path again
// replaces the entry but keeps its original position.
func (m *Manager) TrackFile(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[info.Path]; !ok {
		m.order = append(m.order, info.Path)
	}
	m.files[info.Path] = info

	logger := zerolog.Ctx(ctx)
	msg := m.formatter.FormatFileOperation(info)
	switch info.Status {
	case StatusError:
		logger.Warn().Str("path", info.Path).Err(info.Error).Msg(m.formatter.FormatError(info.Error))
	case StatusModified, StatusRestored, StatusDiscarded:
		logger.Info().Str("path", info.Path).Int("changes", len(info.Changes)).Msg(msg)
	default:
		logger.Debug().Str("path", info.Path).Str("status", info.Status.String()).Msg(msg)
	}
}

func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns tracked files in the order they were first tracked
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.order))
	for _, path := range m.order {
		files = append(files, m.files[path])
	}
	return files
}

// Report snapshots the tracked files into a report
func (m *Manager) Report(ctx context.Context) *Report {
	return &Report{Files: m.ListFiles(ctx)}
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	zerolog.Ctx(ctx).Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	zerolog.Ctx(ctx).Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}
