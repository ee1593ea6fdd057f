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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/sitesweep/pkg/status"
)

const warningIndent = 8

// 📦 Run describes one sweep over a site for logging
type Run struct {
	Command string   // run, restore, audit
	Root    string   // site root
	Sets    []string // rule sets, in pipeline order
	DryRun  bool
	Backup  bool
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	verbose bool
	current *Run
	files   []status.FileInfo
}

// 🏭 New creates a new logger. Console lines go to console; the mirrored
// structured events go to stderr at the given level.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔊 SetVerbose makes LogFileOperation print every change description
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogFileOperation prints the outcome for one file. Unchanged and
// excluded files are only printed in verbose mode.
func (l *Logger) LogFileOperation(ctx context.Context, info status.FileInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = append(l.files, info)

	quiet := info.Status == status.StatusUnchanged || info.Status == status.StatusExcluded
	if !quiet || l.verbose {
		fmt.Fprintln(l.console, status.FormatFileOperation(info))
	}
	if l.verbose {
		for _, line := range status.FormatChanges(info.Changes) {
			fmt.Fprintln(l.console, line)
		}
	}
	for _, w := range info.Warnings {
		fmt.Fprintf(l.console, "%s%s\n", strings.Repeat(" ", warningIndent), color.YellowString("! "+w))
	}

	l.zlog.Debug().
		Str("file", info.Path).
		Str("status", info.Status.String()).
		Int("changes", len(info.Changes)).
		Int("warnings", len(info.Warnings)).
		Err(info.Error).
		Msg("file operation")
}

// 📝 StartRun prints the run header
func (l *Logger) StartRun(ctx context.Context, run Run) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &run
	l.files = nil

	fmt.Fprintf(l.console, "[%s %s]\n", run.Command, color.New(color.FgCyan).Sprint(run.Root))

	if len(run.Sets) > 0 {
		var mode []string
		if run.DryRun {
			mode = append(mode, "dry run")
		}
		if run.Backup {
			mode = append(mode, "backup")
		}
		line := fmt.Sprintf("%s %s",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(strings.Join(run.Sets, ", ")))
		if len(mode) > 0 {
			line += fmt.Sprintf(" %s %s",
				color.New(color.Faint).Sprint("•"),
				color.New(color.FgYellow).Sprint(strings.Join(mode, ", ")))
		}
		fmt.Fprintln(l.console, line)
	}

	l.zlog.Info().
		Str("command", run.Command).
		Str("root", run.Root).
		Strs("sets", run.Sets).
		Bool("dry_run", run.DryRun).
		Bool("backup", run.Backup).
		Msg("starting run")
}

// 📝 EndRun prints the summary table for the report and ends the current run
func (l *Logger) EndRun(ctx context.Context, report *status.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := report.Counts()
	fmt.Fprintln(l.console)
	fmt.Fprint(l.console, renderTable([][]string{
		{"scanned", "modified", "unchanged", "skipped", "errors", "restored"},
		{
			strconv.Itoa(counts.Scanned),
			strconv.Itoa(counts.Modified),
			strconv.Itoa(counts.Unchanged),
			strconv.Itoa(counts.Skipped),
			strconv.Itoa(counts.Errored),
			strconv.Itoa(counts.Restored),
		},
	}))

	if changes := report.ChangeCounts(); len(changes) > 0 {
		data := [][]string{{"change", "count"}}
		for _, c := range changes {
			data = append(data, []string{c.Description, strconv.Itoa(c.Count)})
		}
		fmt.Fprintln(l.console)
		fmt.Fprint(l.console, renderTable(data))
	}

	evt := l.zlog.Info()
	if l.current != nil {
		evt = evt.Str("command", l.current.Command)
	}
	evt.Int("scanned", counts.Scanned).
		Int("modified", counts.Modified).
		Int("errors", counts.Errored).
		Int("logged", len(l.files)).
		Msg("run complete")

	l.current = nil
	l.files = nil
}

// 📊 renderTable renders data with a header row, falling back to tab separated
// text if pterm cannot render it
func renderTable(data [][]string) string {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		var b strings.Builder
		for _, row := range data {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		return b.String()
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("sitesweep")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
