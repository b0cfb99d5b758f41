package coeffs

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with a freshly loaded
// Store each time the file is written. It runs until ctx is cancelled.
//
// A Store is never modified in place. If a reload fails (e.g. invalid YAML or
// a non-positive divisor), the error is logged, onErr is called if non-nil,
// and onChange is not called, so the previous Store stays active.
func Watch(ctx context.Context, path string, onChange func(*Store), onErr func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("coeffs: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// An atomic save replaces the inode and drops the watch. Re-add
			// before loading so later saves are seen whether or not this
			// version parses.
			if err := watcher.Add(path); err != nil {
				slog.Error("coeffs: re-watch failed", "path", path, "err", err)
				if onErr != nil {
					onErr(err)
				}
				continue
			}

			st, err := Load(path)
			if err != nil {
				slog.Error("coeffs: reload failed, keeping previous coefficients",
					"path", path, "err", err)
				if onErr != nil {
					onErr(err)
				}
				continue
			}

			slog.Info("coeffs: reloaded", "path", path, "version", st.Version())
			onChange(st)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("coeffs: watcher error", "err", err)
		}
	}
}
