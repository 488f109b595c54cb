package pricing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// fileTable is the YAML shape of an external price table.
type fileTable struct {
	Plans  []Plan  `yaml:"plans"`
	AddOns []AddOn `yaml:"addons"`
}

// LoadFile replaces the table contents from a YAML file.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read price table: %w", err)
	}

	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return fmt.Errorf("failed to parse price table: %w", err)
	}
	if len(ft.Plans) == 0 {
		return fmt.Errorf("price table %s defines no plans", path)
	}

	t.replace(ft.Plans, ft.AddOns)
	return nil
}

// Watch reloads the table whenever the file changes. A reload that fails to
// parse keeps the previous table. The returned stop function closes the
// watcher.
func (t *Table) Watch(path string, logger *logrus.Logger) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory rather than the file so editors that rename on
	// save do not break the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if err := t.LoadFile(path); err != nil {
					logger.WithError(err).Warn("price table reload failed, keeping previous table")
					continue
				}
				logger.WithField("path", path).Info("price table reloaded")
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(werr).Warn("price table watcher error")
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
