package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/lhanjian/yarhs/pkg/domain"
	"github.com/lhanjian/yarhs/pkg/storage"
)

// Watcher reloads the startup config file on write and republishes it as a
// wholesale ConfigSnapshot replacement, the file-based counterpart to an xDS
// POST (spec.md §6's "the config file may be edited and the server SIGHUP'd
// or made to pick up changes automatically"). Debounced-reload-on-fsnotify
// pattern grounded on the teacher's pkg/config/file_provider.go watchLoop.
type Watcher struct {
	path     string
	registry *domain.Registry
	store    storage.SnapshotStore
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
}

// NewWatcher starts watching path's parent directory and begins republishing
// the registry on every debounced change. store may be nil to disable
// persistence. Close stops it.
func NewWatcher(path string, registry *domain.Registry, store storage.SnapshotStore) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{path: absPath, registry: registry, store: store, watcher: fsw, cancel: cancel}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher goroutine and releases the underlying fsnotify
// handle.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	const debounce = 100 * time.Millisecond
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("path", w.path).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.Error().Err(err).Str("path", w.path).Msg("config reload failed, keeping previous snapshot")
		return
	}
	version := w.registry.ReplaceAll(cfg.ToSnapshot())
	if w.store != nil {
		if err := w.store.Save(w.registry.Current()); err != nil {
			log.Warn().Err(err).Msg("failed to persist config snapshot after file reload")
		}
	}
	log.Info().Str("path", w.path).Str("version_info", version).Msg("config reloaded from disk")
}
