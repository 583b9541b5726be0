package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// WatchDebounce is how long Watch waits for writes to settle.
var WatchDebounce = 100 * time.Millisecond

// Watch reloads the file at path whenever it changes and hands the result
// to fn. A reload that fails to parse or validate is passed as an error;
// the caller keeps its previous config. The parent directory is watched so
// editors that replace the file are followed. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "resolving config path").WithContext("path", path)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "creating watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "watching config directory").WithContext("path", path)
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(WatchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "watch error").WithContext("path", path))
		case <-timer.C:
			fn(LoadFromPath(abs))
		}
	}
}
