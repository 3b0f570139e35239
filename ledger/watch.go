package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce groups the several events editors emit for a single save.
const watchDebounce = 100 * time.Millisecond

// StartWatcher watches the ledger directory and rebuilds the index whenever
// the active month's file is written, created, removed or renamed, including
// by other programs such as a spreadsheet editor. onChange is called after
// every reload with the reload error, if any. The watcher stops when ctx is
// done.
func (l *Ledger) StartWatcher(ctx context.Context, onChange func(err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// The month file may not exist yet, so watch its directory.
	if err := watcher.Add(l.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}

	go l.runWatcher(ctx, watcher, onChange)

	return nil
}

func (l *Ledger) runWatcher(ctx context.Context, watcher *fsnotify.Watcher, onChange func(err error)) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(l.Path()) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				err := l.LoadMonth(ctx, l.activeMonth())
				if err != nil {
					l.logger.Warn("failed to reload month file", "path", l.Path(), "err", err)
				}
				if onChange != nil {
					onChange(err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("file watcher error", "err", err)
		}
	}
}
