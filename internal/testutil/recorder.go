package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// RecordingFormat is the format used by RecordingModule.
var RecordingFormat = asset.NewFormat("Recording", 1)

// Loaded is the instance RecordingModule's loader produces.
type Loaded struct {
	Name        string
	Data        []byte
	SideStreams map[string][]byte

	module *RecordingModule
}

// Destroy records the instance's destruction.
func (l *Loaded) Destroy() {
	l.module.mu.Lock()
	defer l.module.mu.Unlock()
	l.module.Destroyed = append(l.module.Destroyed, l.Name)
}

// RecordingModule registers a generator and loader named Name that copy
// source files verbatim while recording every call.
//
// The generator understands these manifest attributes:
//
//	depends_on  list of load dependencies
//	fail        fail the generation
//	never_cache / never_package / no_compress  set the matching flag
//	side        map of side stream name to content
//	wildcard    store the cache entry under the wildcard hash
type RecordingModule struct {
	Name      string
	Extension string
	// FailLoad lists asset names whose load fails.
	FailLoad map[string]bool

	mu        sync.Mutex
	Generated map[string]int
	LoadOrder []string
	Destroyed []string
}

// NewRecordingModule creates a module registering generator and loader name,
// bound to ext when it is not empty.
func NewRecordingModule(name, ext string) *RecordingModule {
	return &RecordingModule{Name: name, Extension: ext, Generated: map[string]int{}}
}

// Register implements the registry.Module interface.
func (m *RecordingModule) Register(r *registry.Registry) {
	r.RegisterGenerator(m.Name, RecordingFormat, plugin.GeneratorFunc(m.generate))
	r.RegisterLoader(m.Name, RecordingFormat, plugin.LoaderFunc(m.load))
	if m.Extension != "" {
		r.BindAssetExtension(m.Extension, m.Name, m.Name)
	}
}

// Generations returns how often assetName was generated.
func (m *RecordingModule) Generations(assetName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Generated[assetName]
}

// Loads returns the asset names in the order they were loaded.
func (m *RecordingModule) Loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.LoadOrder...)
}

func (m *RecordingModule) generate(c *plugin.Context) error {
	m.mu.Lock()
	m.Generated[c.AssetName()]++
	m.mu.Unlock()

	f := c.Fragment()
	if fail, _ := f.Bool("fail"); fail {
		return fmt.Errorf("asked to fail")
	}
	data, err := os.ReadFile(c.SourceFile())
	if err != nil {
		return err
	}
	c.Output().Write(data)

	for _, dep := range f.Strings("depends_on") {
		c.AddLoadDependency(dep)
	}
	if v, _ := f.Bool("never_cache"); v {
		c.SetFlags(asset.NeverCache)
	}
	if v, _ := f.Bool("never_package"); v {
		c.SetFlags(asset.NeverPackage)
	}
	if v, _ := f.Bool("no_compress"); v {
		c.SetFlags(asset.DisableCompression)
	}
	if v, _ := f.Bool("wildcard"); v {
		c.UseWildcardHash()
	}
	side := f.Sub("side")
	for _, name := range side.Keys() {
		content, _ := side.String(name)
		c.AddSideStream(name, []byte(content))
	}
	return nil
}

func (m *RecordingModule) load(_ context.Context, in plugin.Input) (plugin.Instance, error) {
	if m.FailLoad[in.Name] {
		return nil, fmt.Errorf("asked to fail loading %s", in.Name)
	}
	m.mu.Lock()
	m.LoadOrder = append(m.LoadOrder, in.Name)
	m.mu.Unlock()
	return &Loaded{Name: in.Name, Data: in.Data, SideStreams: in.SideStreams, module: m}, nil
}
