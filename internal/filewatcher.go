package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a file for changes and calls a callback function when the file is modified.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	filename string
	callback func()
	closeC   chan struct{}
	started  atomic.Bool
}

// NewFileWatcher creates a new file watcher for the given path and callback function.
func NewFileWatcher(path string, callback func()) *FileWatcher {
	return &FileWatcher{
		path:     filepath.Dir(path),
		filename: filepath.Base(path),
		callback: callback,
	}
}

func (fw *FileWatcher) Start() error {
	if !fw.started.CompareAndSwap(false, true) {
		slog.Debug("File watcher already started")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fw.started.Store(false)
		return fmt.Errorf("start watcher: %w", err)
	}
	fw.watcher = watcher
	if err := watcher.Add(fw.path); err != nil {
		fw.started.Store(false)
		return fmt.Errorf("failed to add watcher: %w", err)
	}
	fw.closeC = make(chan struct{})
	go fw.watchLoop()
	return nil
}

func (fw *FileWatcher) Close() error {
	if !fw.started.CompareAndSwap(true, false) {
		return nil
	}
	close(fw.closeC)
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop() {
	var (
		// time to wait for no new events before calling the callback
		waitFor = 100 * time.Millisecond

		timer       *time.Timer
		timerAccess sync.Mutex
	)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fw.filename || (!event.Has(fsnotify.Create) && !event.Has(fsnotify.Write)) {
				continue
			}
			slog.Debug("File modified: " + event.Name)

			// Writers may land the file in chunks, so hold off until events go
			// quiet for a bit before firing. Another event while waiting resets
			// the timer.
			timerAccess.Lock()
			if timer == nil {
				timer = time.AfterFunc(waitFor, func() {
					fw.callback()
					timerAccess.Lock()
					timer = nil
					timerAccess.Unlock()
				})
			} else {
				timer.Reset(waitFor)
			}
			timerAccess.Unlock()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Error watching file", "error", err)
		case <-fw.closeC:
			return
		}
	}
}
