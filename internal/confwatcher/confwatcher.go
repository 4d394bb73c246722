// Package confwatcher contains a configuration file watcher.
package confwatcher

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	minInterval = 1 * time.Second
	settleTime  = 10 * time.Millisecond
)

// ConfWatcher notifies when the configuration file changes.
// The parent directory is watched, so that files replaced by editors
// or by symlink swaps are followed.
type ConfWatcher struct {
	FilePath string

	inner   *fsnotify.Watcher
	absPath string

	// in
	terminate chan struct{}

	// out
	changed chan struct{}
	done    chan struct{}
}

// Initialize initializes a ConfWatcher.
func (w *ConfWatcher) Initialize() error {
	_, err := os.Stat(w.FilePath)
	if err != nil {
		return err
	}

	w.inner, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.absPath, _ = filepath.Abs(w.FilePath)

	err = w.inner.Add(filepath.Dir(w.absPath))
	if err != nil {
		w.inner.Close() //nolint:errcheck
		return err
	}

	w.terminate = make(chan struct{})
	w.changed = make(chan struct{})
	w.done = make(chan struct{})

	go w.run()

	return nil
}

// Close closes a ConfWatcher.
func (w *ConfWatcher) Close() {
	close(w.terminate)
	<-w.done
}

func resolve(p string) string {
	p, _ = filepath.Abs(p)
	p, _ = filepath.EvalSymlinks(p)
	return p
}

func isWriteOrCreate(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create)
}

func (w *ConfWatcher) run() {
	defer close(w.done)
	defer w.inner.Close() //nolint:errcheck
	defer close(w.changed)

	var lastNotify time.Time
	target := resolve(w.absPath)

	for {
		select {
		case event := <-w.inner.Events:
			if time.Since(lastNotify) < minInterval {
				continue
			}

			current := resolve(w.absPath)

			// file removed, a later create will trigger the reload
			if current == "" {
				target = ""
				continue
			}

			if current == target && (resolve(event.Name) != current || !isWriteOrCreate(event.Op)) {
				continue
			}

			time.Sleep(settleTime)
			target = current
			lastNotify = time.Now()

			select {
			case w.changed <- struct{}{}:
			case <-w.terminate:
				return
			}

		case <-w.inner.Errors:
			return

		case <-w.terminate:
			return
		}
	}
}

// Watch returns a channel that receives a value every time the file changes.
func (w *ConfWatcher) Watch() chan struct{} {
	return w.changed
}
