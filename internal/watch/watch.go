// Package watch recompiles bsql sources when they change on disk.
//
// Each source is compiled to a sibling output file. A source that fails to
// compile leaves its previous output untouched; the failure is logged and
// reported through the OnCompile callback.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/bettersql/pkg/compiler"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Event reports the outcome of compiling one source file.
type Event struct {
	Source string    `json:"source"`
	Output string    `json:"output"`
	OK     bool      `json:"ok"`
	SQL    string    `json:"sql,omitempty"`
	Error  string    `json:"error,omitempty"`
	Line   int       `json:"line,omitempty"`
	Column int       `json:"column,omitempty"`
	Time   time.Time `json:"time"`
}

// Config holds configuration for a Watcher.
type Config struct {
	Dir        string
	SourceExt  string                     // default ".bsql"
	OutputPath func(source string) string // default: source extension replaced by ".sql"
	Debounce   time.Duration
	Logger     *slog.Logger
	OnCompile  func(Event)
}

// Watcher compiles every source below Dir and recompiles on change.
type Watcher struct {
	cfg      Config
	compiler *compiler.Compiler
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Watcher.
func New(cfg Config) *Watcher {
	if cfg.SourceExt == "" {
		cfg.SourceExt = ".bsql"
	}
	if cfg.OutputPath == nil {
		ext := cfg.SourceExt
		cfg.OutputPath = func(source string) string {
			return strings.TrimSuffix(source, ext) + ".sql"
		}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Watcher{
		cfg:      cfg,
		compiler: compiler.New(logger),
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run has registered its watches.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// IsSource reports whether path names a source file.
func (w *Watcher) IsSource(path string) bool {
	return filepath.Ext(path) == w.cfg.SourceExt
}

// CompileFile compiles one source and writes its output on success.
func (w *Watcher) CompileFile(path string) Event {
	ev := Event{Source: path, Output: w.cfg.OutputPath(path), Time: time.Now()}

	data, err := os.ReadFile(path)
	if err != nil {
		ev.Error = err.Error()
		w.logger.Error("failed to read source", "file", path, "error", err)
		w.emit(ev)
		return ev
	}

	res := w.compiler.Compile(path, string(data))
	if !res.OK() {
		ev.Error = res.Err.Message
		ev.Line = res.Err.Pos.Line
		ev.Column = res.Err.Pos.Column
		w.logger.Warn("compile failed, keeping previous output", "file", path, "error", res.Err)
		w.emit(ev)
		return ev
	}

	if err := os.WriteFile(ev.Output, []byte(res.SQL), 0o644); err != nil { //nolint:gosec
		ev.Error = fmt.Sprintf("write %s: %v", ev.Output, err)
		w.logger.Error("failed to write output", "file", ev.Output, "error", err)
		w.emit(ev)
		return ev
	}

	ev.OK = true
	ev.SQL = res.SQL
	w.logger.Info("compiled", "file", path, "output", ev.Output, "duration", res.Duration)
	w.emit(ev)
	return ev
}

// CompileAll compiles every source below the watched directory, in path order.
func (w *Watcher) CompileAll() ([]Event, error) {
	var paths []string
	err := filepath.WalkDir(w.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && w.IsSource(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.cfg.Dir, err)
	}
	sort.Strings(paths)

	events := make([]Event, 0, len(paths))
	for _, p := range paths {
		events = append(events, w.CompileFile(p))
	}
	return events, nil
}

// Run watches the directory tree and recompiles changed sources until ctx
// is cancelled. Changes arriving within the debounce window are batched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.logger.Debug("watching", "dir", w.cfg.Dir, "debounce", w.cfg.Debounce)

	var (
		mu            sync.Mutex
		pending       = make(map[string]struct{})
		debounceTimer *time.Timer
	)
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		mu.Unlock()

		sort.Strings(paths)
		for _, p := range paths {
			if ctx.Err() != nil {
				return
			}
			w.logger.Debug("file changed, recompiling", "file", p)
			w.CompileFile(p)
		}
	}
	defer func() {
		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDirRecursive(watcher, event.Name); err != nil {
						w.logger.Error("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.IsSource(event.Name) {
				continue
			}

			mu.Lock()
			pending[event.Name] = struct{}{}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.cfg.Debounce, flush)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) emit(ev Event) {
	if w.cfg.OnCompile != nil {
		w.cfg.OnCompile(ev)
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
