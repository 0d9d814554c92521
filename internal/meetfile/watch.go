package meetfile

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/pkg/logger"
)

// Watch reloads path on every write and calls onChange with the result. A
// failed reload is passed to onChange as an error so the caller can keep its
// previous meet. It runs until ctx is canceled.
func Watch(ctx context.Context, path string, onChange func(model.Meet, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	log := logger.Get().Named("meetfile")
	log.Debug(ctx, "watching meet file", logger.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save by rename, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			onChange(Load(path))

			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, "meet file watcher error", logger.Error(err))
		}
	}
}
