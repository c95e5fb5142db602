package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports file changes under a set of directories, debounced so
// a burst of writes produces a single notification.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch recursively watches dirs and calls onChange with the changed
// path once write/create events have settled for the debounce window.
// Only files with one of the given extensions are reported; hidden and
// vendor directories are not descended into, and dirs that do not
// exist are skipped.
func Watch(dirs []string, exts []string, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:  fsw,
		done: make(chan struct{}),
	}
	for _, dir := range dirs {
		if err := w.addDir(dir); err != nil && !os.IsNotExist(err) {
			fsw.Close()
			return nil, err
		}
	}

	go w.loop(exts, debounce, onChange)
	return w, nil
}

func (w *Watcher) addDir(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(info.Name(), ".") || info.Name() == "vendor") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop(exts []string, debounce time.Duration, onChange func(string)) {
	var timer *time.Timer
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !hasExt(event.Name, exts) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			path := event.Name
			timer = time.AfterFunc(debounce, func() {
				onChange(path)
			})
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher. The onChange callback is not invoked after
// Close returns, except for an already-elapsed debounce timer.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func hasExt(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
