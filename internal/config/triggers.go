package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// TriggerFile is the YAML layout of a trigger configuration file.
//
//	defaults:
//	  - type: negative_mood_pattern
//	    enabled: true
//	    threshold: {occurrences: 3, timeframe: 7}
//	    description: Multiple negative mood entries
//	users:
//	  user-123:
//	    - type: boundary_violation
//	      enabled: true
//	      threshold: {occurrences: 1, timeframe: 3}
type TriggerFile struct {
	Defaults []domain.CoachingTrigger            `yaml:"defaults"`
	Users    map[string][]domain.CoachingTrigger `yaml:"users"`
}

// ParseTriggerFile decodes a trigger file. Triggers with negative
// thresholds are kept but disabled.
func ParseTriggerFile(data []byte) (*TriggerFile, error) {
	var tf TriggerFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing trigger config YAML: %w", err)
	}
	disableInvalid(tf.Defaults)
	for _, triggers := range tf.Users {
		disableInvalid(triggers)
	}
	return &tf, nil
}

func disableInvalid(triggers []domain.CoachingTrigger) {
	for i := range triggers {
		if !triggers[i].Valid() {
			triggers[i].Enabled = false
		}
	}
}

// FileTriggerConfig implements domain.TriggerConfigLoader on top of a YAML file.
type FileTriggerConfig struct {
	path     string
	fallback []domain.CoachingTrigger

	mu   sync.RWMutex
	file *TriggerFile
}

// NewFileTriggerConfig loads path. fallback is used for users without an
// override when the file has no defaults of its own.
func NewFileTriggerConfig(path string, fallback []domain.CoachingTrigger) (*FileTriggerConfig, error) {
	c := &FileTriggerConfig{path: path, fallback: fallback}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the file. On error the previous configuration is kept.
func (c *FileTriggerConfig) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading trigger config: %w", err)
	}
	tf, err := ParseTriggerFile(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.file = tf
	c.mu.Unlock()
	return nil
}

func (c *FileTriggerConfig) LoadTriggerConfig(_ context.Context, userID domain.UserID) ([]domain.CoachingTrigger, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if t, ok := c.file.Users[string(userID)]; ok {
		return append([]domain.CoachingTrigger(nil), t...), nil
	}
	if len(c.file.Defaults) > 0 {
		return append([]domain.CoachingTrigger(nil), c.file.Defaults...), nil
	}
	return append([]domain.CoachingTrigger(nil), c.fallback...), nil
}

// Watch reloads the file whenever it changes, until ctx is done.
func (c *FileTriggerConfig) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		watcher.Close()
		return err
	}

	log := observability.Logger().With("trigger_config", c.path)
	target := filepath.Clean(c.path)

	go func() {
		defer watcher.Close()
		var debounceTimer *time.Timer

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				// Debounce: wait 200ms after last change
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
					if err := c.Reload(); err != nil {
						log.Warn("trigger config reload failed", "error", err)
						return
					}
					log.Info("trigger config reloaded")
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("trigger config watcher error", "error", err)

			case <-ctx.Done():
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			}
		}
	}()

	return nil
}
