// Package watch reports changes to a set of files.
package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Writes to the same file within this interval are reported once.
const debounce = 100 * time.Millisecond

type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool

	// Changes receives the path of every changed file.
	// It is closed once the watcher stops.
	Changes chan string

	closeCh chan struct{}
	once    sync.Once
}

// Files watches the given files. The parent directories are watched,
// as editors often replace a file instead of writing it.
func Files(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := map[string]bool{}
	dirs := map[string]bool{}

	for _, path := range paths {
		path = filepath.Clean(path)
		files[path] = true

		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}

		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}

		dirs[dir] = true
	}

	watcher := &Watcher{
		watcher: w,
		files:   files,
		Changes: make(chan string, 16),
		closeCh: make(chan struct{}),
	}

	go watcher.run()

	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})

	return err
}

func (w *Watcher) run() {
	defer close(w.Changes)

	last := map[string]time.Time{}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}

			now := time.Now()
			if t, ok := last[path]; ok && now.Sub(t) < debounce {
				continue
			}

			last[path] = now

			select {
			case w.Changes <- path:
			case <-w.closeCh:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			slog.Warn("File watcher failed", slog.Any("err", err))

		case <-w.closeCh:
			return
		}
	}
}
