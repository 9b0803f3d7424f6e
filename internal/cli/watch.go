package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/skelly-dev/cnote/internal/ignore"
	"github.com/skelly-dev/cnote/internal/output"
)

const watchDebounce = 200 * time.Millisecond

// watch lists once, then lists again after every burst of filesystem
// events until ctx is done. Each listing is a complete rescan. rendered,
// when set, receives a value after each listing.
func (l *listing) watch(ctx context.Context, rendered chan<- struct{}) error {
	if ctx == nil {
		ctx = context.Background()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	matcher, err := l.env.matcher()
	if err != nil {
		return err
	}
	dirs, err := watchDirs(l.req.paths, l.req.recursive, matcher)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		l.env.logger.Debug("watching", zap.String("dir", dir))
	}

	l.req.progress = false
	runs := 0
	render := func() {
		if runs > 0 && l.format == output.FormatText {
			fmt.Fprintln(l.env.out)
		}
		runs++
		if err := l.run((*output.Printer).Entries); err != nil {
			l.env.logger.Warn("listing failed", zap.Error(err))
		}
		if rendered != nil {
			select {
			case rendered <- struct{}{}:
			case <-ctx.Done():
			}
		}
	}
	render()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			l.env.logger.Debug("filesystem event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if l.req.recursive && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						l.env.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.env.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			render()
		}
	}
}

func relevantEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Ext(event.Name) != ".lock"
}

// watchDirs lists the directories whose changes can alter a listing of
// paths: each directory argument (and, when recursive, its unignored
// subdirectories) and the parent of each file argument.
func watchDirs(paths []string, recursive bool, matcher *ignore.Matcher) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %q: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		if !recursive {
			add(path)
			continue
		}
		root := path
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if rel, relErr := filepath.Rel(root, p); relErr == nil && matcher.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	return dirs, nil
}
