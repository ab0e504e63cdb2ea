package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
)

// ErrBuildFailed is returned when at least one asset could not be generated
// or loaded. Everything that could be processed still was.
var ErrBuildFailed = errors.New("some assets failed to build or load")

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command, "path", a.config.Path)

	if a.config.HealthcheckPort > 0 {
		if _, err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthCheckServer(ctx)
	}

	var err error
	switch a.config.Command {
	case CommandBuild:
		err = a.build(ctx)
	case CommandPack:
		err = a.pack(ctx)
	case CommandInspect:
		err = a.inspect(ctx)
	case CommandWatch:
		err = a.watch(ctx)
	case CommandClean:
		err = a.clean(ctx)
	default:
		err = fmt.Errorf("unknown command '%s'", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}
