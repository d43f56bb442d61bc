package platform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/netdrv/netdrv/errs"
	"github.com/netdrv/netdrv/logging"
)

// LoadOverrideDir registers every *.yaml file in dir as a platform
// definition, then watches dir for changes and re-registers a file as
// soon as it's created or written. Returned is a function the caller
// should call to stop watching and release the fsnotify watcher.
func LoadOverrideDir(dir string) (stop func() error, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap("platform: reading override directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		if err := loadOverrideFile(filepath.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap("platform: creating fsnotify watcher", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, errs.Wrap("platform: watching override directory", err)
	}

	go watchLoop(watcher)

	return watcher.Close, nil
}

func watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(event.Name, ".yaml") {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := loadOverrideFile(event.Name); err != nil {
				logging.Log().Warn("platform: failed reloading override file", "path", event.Name, "error", err)
				continue
			}

			logging.Log().Info("platform: reloaded override file", "path", event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Log().Warn("platform: fsnotify watcher error", "error", err)
		}
	}
}

func loadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrapf("platform: reading override file %s", err, path)
	}

	return Register(data)
}
