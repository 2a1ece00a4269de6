package registry

import (
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
)

// EnableFileWatching subscribes the registry to filesystem change events on
// its backing file and reloads on every write. A reload failure is logged
// and swallowed; the previously loaded definitions stay authoritative.
func (r *Registry[T]) EnableFileWatching() error {
	if r.path == "" {
		return errors.New("registry has no backing file to watch")
	}

	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watchStop != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the containing directory so atomic rename-over-the-file edits
	// are still observed.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return err
	}

	stop := make(chan struct{})
	r.watchStop = stop

	go r.watchLoop(watcher, stop)

	r.log.Info("file watching enabled",
		logger.String("registry", r.kind),
		logger.String("path", r.path))
	return nil
}

// DisableFileWatching stops the registry's file watcher. Safe to call when
// watching is not enabled.
func (r *Registry[T]) DisableFileWatching() {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watchStop == nil {
		return
	}
	close(r.watchStop)
	r.watchStop = nil
}

func (r *Registry[T]) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	defer watcher.Close()

	target := filepath.Clean(r.path)
	for {
		select {
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.Reload(); err != nil {
				r.log.Error("watched reload failed, keeping current definitions",
					logger.String("registry", r.kind),
					logger.String("path", r.path),
					logger.Error(err))
				continue
			}
			r.log.Info("definitions reloaded from watched file",
				logger.String("registry", r.kind),
				logger.Int("count", r.Len()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("file watcher error",
				logger.String("registry", r.kind),
				logger.Error(err))
		}
	}
}
