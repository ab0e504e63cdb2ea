package testutil

import (
	"context"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// NoOpFormat is the format of the "NoOp" generator and loader.
var NoOpFormat = asset.NewFormat("NoOp", 1)

// NoOpModule registers a "NoOp" generator that emits nothing and a loader
// that returns a nil instance. It is useful for tests that only care about
// discovery or ordering.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterGenerator("NoOp", NoOpFormat, plugin.GeneratorFunc(func(*plugin.Context) error {
		return nil
	}))
	r.RegisterLoader("NoOp", NoOpFormat, plugin.LoaderFunc(func(context.Context, plugin.Input) (plugin.Instance, error) {
		return nil, nil
	}))
}
