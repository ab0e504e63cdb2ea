package testutil

import (
	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single generator and/or loader, optionally bound to an extension.
type SimpleModule struct {
	Name      string
	Format    asset.Format
	Generator plugin.Generator
	Loader    plugin.Loader
	Extension string
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Generator != nil {
		r.RegisterGenerator(m.Name, m.Format, m.Generator)
	}
	if m.Loader != nil {
		r.RegisterLoader(m.Name, m.Format, m.Loader)
	}
	if m.Extension != "" {
		r.BindAssetExtension(m.Extension, m.Name, m.Name)
	}
}
