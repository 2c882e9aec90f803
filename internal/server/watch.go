package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher drops the listing cache of an FSStore whenever something under
// the skills root changes, so edits made by running skills show up.
type Watcher struct {
	store   *FSStore
	watcher *fsnotify.Watcher
	watched map[string]bool
}

// NewWatcher watches the store root and every skill directory in it. The
// root is created when missing.
func NewWatcher(store *FSStore) (*Watcher, error) {
	if err := os.MkdirAll(store.Root(), 0o755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{store: store, watcher: fw, watched: make(map[string]bool)}
	if err := w.add(store.Root()); err != nil {
		fw.Close()
		return nil, err
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		fw.Close()
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.add(filepath.Join(store.Root(), e.Name())); err != nil {
				slog.Warn("failed to watch skill directory", "dir", e.Name(), "err", err)
			}
		}
	}
	return w, nil
}

func (w *Watcher) add(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	slog.Debug("watching directory", "dir", dir)
	return nil
}

// Run processes events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("skills watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Ext(event.Name) == ".tmp" {
		return
	}
	if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == w.store.Root() {
		if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
			if err := w.add(event.Name); err != nil {
				slog.Warn("failed to watch skill directory", "dir", event.Name, "err", err)
			}
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.watched, event.Name)
	}
	slog.Debug("skills changed on disk", "path", event.Name, "op", event.Op.String())
	w.store.Invalidate()
}
