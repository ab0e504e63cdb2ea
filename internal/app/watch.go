package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/engine"
	"github.com/specialistvlad/assetpipe/internal/reload"
	"github.com/specialistvlad/assetpipe/internal/watch"
)

// watch builds and loads the manifest, then rebuilds and reloads it after
// every settled batch of file changes until ctx is cancelled.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	src, err := engine.ResolveSource(ctx, a.config.Path)
	if err != nil {
		return err
	}
	if src.Package != "" {
		return fmt.Errorf("%w: %s", ErrNeedsManifest, src.Package)
	}

	var notifier reload.Notifier
	if a.config.NotifyURL != "" {
		n, err := reload.Dial(ctx, reload.Options{URL: a.config.NotifyURL})
		if err != nil {
			logger.Warn("Reload notifications disabled.", "url", a.config.NotifyURL, "error", err)
		} else {
			notifier = n
			defer n.Close()
		}
	}
	return a.watchWith(ctx, src.Manifest, notifier)
}

func (a *App) watchWith(ctx context.Context, manifestPath string, notifier reload.Notifier) error {
	w, err := watch.New(filepath.Dir(manifestPath), a.config.Debounce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	a.rebuild(ctx, manifestPath, nil, notifier)
	err = w.Run(ctx, func(ctx context.Context, changed []string) {
		a.rebuild(ctx, manifestPath, changed, notifier)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// rebuild reloads the manifest, replacing the instances already mounted.
func (a *App) rebuild(ctx context.Context, manifestPath string, changed []string, notifier reload.Notifier) {
	logger := ctxlog.FromContext(ctx)
	if len(changed) > 0 {
		logger.Info("Rebuilding after changes.", "changed", changed)
	}

	ev := reload.Event{Mount: a.config.Mount, Changed: changed}
	b, res, err := a.engine.BuildAndLoad(ctx, manifestPath, a.config.Mount)
	if err != nil {
		logger.Error("Rebuild failed.", "error", err)
	} else {
		a.printSummary(b, res)
		ev.Loaded = len(res.Order)
		ev.Ok = res.Ok
	}

	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, ev); err != nil {
		logger.Warn("Failed to send reload notification.", "error", err)
	}
}
