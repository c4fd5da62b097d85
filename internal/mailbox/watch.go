package mailbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ActivityCallback is called when a thread's spool directory changes.
type ActivityCallback func(threadID string)

// Watch runs an fsnotify watcher over the spool root until ctx is
// cancelled, calling cb with the thread id whose directory saw a new
// or changed message file. Thread directories created at runtime are
// added to the watch list.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb ActivityCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("spool watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("spool watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("spool watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			// Ignore temp files mid-write; only settled message files count.
			base := filepath.Base(ev.Name)
			if !strings.HasSuffix(base, ".json") || strings.HasPrefix(base, ".") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}
			threadID := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
			if threadID == "" || threadID == "." {
				continue
			}
			logger.Debug("spool watcher: thread activity",
				slog.String("thread", threadID),
				slog.String("file", base))
			if cb != nil {
				cb(threadID)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("spool watcher: error", slog.String("error", err.Error()))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
