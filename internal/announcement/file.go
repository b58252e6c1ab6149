package announcement

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns the built-in announcements.
func Seed() (Static, error) {
	items, err := Parse(seedYAML)
	if err != nil {
		return nil, err
	}
	return Static(items), nil
}

// Parse decodes a YAML list of announcements.
func Parse(b []byte) ([]Item, error) {
	var items []Item
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("announcement %d: %w", i, err)
		}
		if it.ID == 0 {
			items[i].ID = int64(i + 1)
		}
	}
	SortNewestFirst(items)
	return items, nil
}

// FileSource serves announcements from a YAML file and reloads it when the
// file changes on disk. A reload that fails to parse keeps the last good
// collection.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	items []Item
}

func OpenFile(path string, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs := &FileSource{path: path, logger: logger}
	if err := fs.reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileSource) List(context.Context) ([]Item, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *FileSource) reload() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	items, err := Parse(b)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Watch reloads the file on change until ctx ends. The parent directory is
// watched so editors that replace the file atomically are picked up.
func (f *FileSource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return err
	}
	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := f.reload(); err != nil {
				f.logger.Warn("announcements reload failed", slog.String("path", f.path), slog.Any("error", err))
				continue
			}
			f.logger.Info("announcements reloaded", slog.String("path", f.path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("announcements watcher error", slog.Any("error", err))
		}
	}
}
