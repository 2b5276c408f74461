package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/lixenwraith/chimera-mind/logger"
)

// Watcher reloads the config file on change and hands valid configs to a
// callback. Invalid intermediate states (editor temp files, half-written
// saves) are logged and skipped; the last good config stays in effect.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching the config file's directory. The callback runs on
// the watcher goroutine; keep it short.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func(Config)) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				logger.Warn("config reload skipped", "path", w.path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", w.path)
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watch error", "error", err)
		}
	}
}

// Close stops the watcher and waits for the loop to exit
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
