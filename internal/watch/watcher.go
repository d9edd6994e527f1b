// Package watch reloads the data snapshot when the feed workbook or roster
// file is rewritten on disk. Everything downstream stays pure; this is the
// only place that reacts to filesystem events.
package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
)

// Watcher triggers onChange when one of the tracked files is replaced.
type Watcher struct {
	paths    []string
	onChange func()
}

func New(onChange func(), paths ...string) *Watcher {
	return &Watcher{paths: paths, onChange: onChange}
}

// Start watches the parent directories of the tracked files until the
// context is cancelled. Editors and downloaders replace files via rename,
// so create and rename events count as changes too.
func (w *Watcher) Start(ctx context.Context) error {
	log := logger.WithComponent("watch")
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dirs := map[string]bool{}
	for _, p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return err
		}
	}

	go func() {
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-fw.Events:
				if w.Matches(evt) {
					log.WithField("file", evt.Name).Info("feed file changed, reloading")
					w.onChange()
				}
			case err := <-fw.Errors:
				log.WithField("error", err.Error()).Warn("watcher error")
			}
		}
	}()
	return nil
}

// Matches reports whether an event concerns one of the tracked files with
// an op that can change its content.
func (w *Watcher) Matches(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	for _, p := range w.paths {
		if filepath.Clean(evt.Name) == filepath.Clean(p) {
			return true
		}
	}
	return false
}
