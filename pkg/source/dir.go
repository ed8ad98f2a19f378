package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ruleExtension is the file extension rule documents carry.
const ruleExtension = ".rules"

// debounceInterval coalesces bursts of file events into one reload.
const debounceInterval = 100 * time.Millisecond

// DirectorySource loads rule documents from a local directory.
// Every *.rules file becomes one document named after its base name.
type DirectorySource struct {
	path   string
	logger *slog.Logger
}

// NewDirectorySource creates a source over the given directory.
func NewDirectorySource(path string) *DirectorySource {
	return &DirectorySource{
		path:   path,
		logger: slog.Default().With("component", "source.dir"),
	}
}

// Load implements Source.
func (s *DirectorySource) Load(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("read rule directory %q: %w", s.path, err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ruleExtension) {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(s.path, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rule document %q: %w", path, err)
		}
		docs = append(docs, Document{
			Name: strings.TrimSuffix(entry.Name(), ruleExtension),
			Path: path,
			Data: data,
		})
	}

	return docs, nil
}

// Watch blocks, invoking onChange after rule files in the directory are
// created, modified, renamed, or removed. Bursts of events within the
// debounce interval trigger a single onChange. Watch returns when the
// context is cancelled.
func (s *DirectorySource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.path); err != nil {
		return fmt.Errorf("watch %q: %w", s.path, err)
	}

	s.logger.Info("watching rule directory", "path", s.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !s.relevant(event) {
				continue
			}
			s.logger.Debug("rule file event", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceInterval)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant filters events down to writes on rule documents.
func (s *DirectorySource) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, ruleExtension)
}
