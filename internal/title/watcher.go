// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package title

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bychat/bychat/internal/kvstore"
)

// Watcher reloads title settings when the store file is rewritten on
// disk, so edits made outside the running process take effect without
// a restart.
//
// The store file is replaced by rename on every write, so the watch is
// on the containing directory rather than the file itself.
type Watcher struct {
	store    *kvstore.Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(Settings)
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher that calls onChange with the freshly
// loaded settings after each change to the store file.
func NewWatcher(store *kvstore.Store, onChange func(Settings)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		store:    store,
		watcher:  fw,
		debounce: 200 * time.Millisecond,
		onChange: onChange,
	}, nil
}

// Watch starts watching. It returns once the watch is established; the
// event loop runs until Close.
func (w *Watcher) Watch() error {
	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.processEvents(ctx)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	target := filepath.Clean(w.store.Path())

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: an atomic replace can surface as several
			// events in quick succession.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Reload(); err != nil {
		return
	}
	if w.onChange != nil {
		w.onChange(LoadSettings(w.store))
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.watcher.Close()
}
