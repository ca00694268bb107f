package npc

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a Registry whenever YAML files in its directory change.
// A reload that fails to parse or validate leaves the previous templates live.
type Watcher struct {
	dir    string
	reg    *Registry
	logger *zap.Logger
	fsw    *fsnotify.Watcher
	// OnReload, when set, is called after every successful reload.
	OnReload func(ids []string)
}

// NewWatcher watches dir and reloads reg on change.
//
// Precondition: dir must be a readable directory; reg must be non-nil.
// Postcondition: Returns a Watcher whose Run must be called to process events.
func NewWatcher(dir string, reg *Registry, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating content watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %q: %w", dir, err)
	}
	return &Watcher{dir: dir, reg: reg, logger: logger, fsw: fsw}, nil
}

// Run processes file events until ctx is cancelled. Bursts of events are
// coalesced into one reload after a short quiet period.
//
// Postcondition: the underlying fsnotify watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isTemplateFile(event.Name) {
				continue
			}
			fire = time.After(reloadDebounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	templates, err := LoadTemplates(w.dir)
	if err != nil {
		w.logger.Warn("enemy template reload failed", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	w.reg.Replace(templates)
	ids := w.reg.IDs()
	w.logger.Info("enemy templates reloaded", zap.String("dir", w.dir), zap.Strings("ids", ids))
	if w.OnReload != nil {
		w.OnReload(ids)
	}
}
