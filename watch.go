package todostore

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const reloadTimeout = 5 * time.Second

// watcher follows the directory of the document: saves replace the file
// by rename, so a watch on the file itself would be lost after the first one.
type watcher struct {
	s      *Store
	path   string
	fw     *fsnotify.Watcher
	stopCh chan struct{}
	doneCh chan struct{}
}

func newWatcher(s *Store, path string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "could not create file watcher")
	}

	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "could not watch %s", filepath.Dir(path))
	}

	w := &watcher{
		s:      s,
		path:   path,
		fw:     fw,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go w.run()

	return w, nil
}

func (w *watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if filepath.Clean(ev.Name) != w.path {
				continue
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			w.s.log.Warn("todo document watcher error", zap.Error(err))
		}
	}
}

func (w *watcher) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if err := w.s.Reload(ctx); err != nil && !errors.Is(err, ErrStoreClosed) {
		w.s.log.Error("todo document reload failed", zap.String("path", w.path), zap.Error(err))
	}
}

func (w *watcher) stop() {
	close(w.stopCh)
	_ = w.fw.Close()
	<-w.doneCh
}
