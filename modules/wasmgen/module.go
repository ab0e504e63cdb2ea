// Package wasmgen turns WebAssembly modules found in a plugin directory into
// generators.
//
// Every "<name>.wasm" file becomes a generator called <name>. A plugin must
// export, as a global or a zero-argument function:
//
//	input_ptr         where the host writes the source bytes
//	input_bytes_cap   how many bytes fit there
//	output_ptr        where the plugin leaves its result
//	output_bytes_cap  the most bytes run may report
//
// and a function run(input_size i32) -> i32 returning the output byte count.
// The result is emitted in the raw format, so raw loaders read it.
package wasmgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/fsutil"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/modules/raw"
)

// Extension of plugin files.
const Extension = ".wasm"

var (
	ErrMissingExport  = errors.New("wasm plugin is missing a required export")
	ErrInputTooLarge  = errors.New("input is larger than the plugin's input capacity")
	ErrOutputTooLarge = errors.New("plugin returned more bytes than its output capacity")
)

// Module registers one generator per plugin file under Dir. Install it with
// registry.SetPluginModule so the directory is only scanned when a lookup
// needs it.
type Module struct {
	Dir string

	mu       sync.Mutex
	runtime  wazero.Runtime
	compiled map[string]wazero.CompiledModule
}

// Register scans Dir and registers a generator per plugin file. Compilation
// happens on first use.
func (m *Module) Register(r *registry.Registry) {
	logger := r.Logger().With("plugin_dir", m.Dir)
	if m.Dir == "" {
		return
	}
	files, err := fsutil.FindFilesByExtension(m.Dir, Extension)
	if err != nil {
		logger.Error("Failed to scan plugin directory.", "error", err)
		return
	}
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), Extension)
		r.RegisterGenerator(name, raw.Format, &Generator{module: m, name: name, path: path})
		logger.Debug("Registered wasm generator.", "generator", name, "path", path)
	}
	logger.Info("Wasm plugins registered.", "count", len(files))
}

// Close releases the runtime and every compiled plugin.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runtime == nil {
		return nil
	}
	err := m.runtime.Close(ctx)
	m.runtime = nil
	m.compiled = nil
	return err
}

// compile returns the compiled plugin at path, compiling it on first use.
func (m *Module) compile(ctx context.Context, path string) (wazero.Runtime, wazero.CompiledModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runtime == nil {
		m.runtime = wazero.NewRuntime(ctx)
		m.compiled = make(map[string]wazero.CompiledModule)
	}
	if c, ok := m.compiled[path]; ok {
		return m.runtime, c, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plugin '%s': %w", path, err)
	}
	c, err := m.runtime.CompileModule(ctx, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile plugin '%s': %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Compiled wasm plugin.", "path", path)
	m.compiled[path] = c
	return m.runtime, c, nil
}

// Generator runs one plugin over an asset's source file.
type Generator struct {
	module *Module
	name   string
	path   string
}

// Generate feeds the source file to the plugin and writes what it returns.
// Both the source and the plugin file are recorded as file dependencies.
func (g *Generator) Generate(c *plugin.Context) error {
	ctx := c.Context()
	src := c.SourceFile()
	c.FileDependency(g.path)

	input, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read source file '%s': %w", src, err)
	}
	rt, compiled, err := g.module.compile(ctx, g.path)
	if err != nil {
		return err
	}
	output, err := Run(ctx, rt, compiled, input)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", g.name, err)
	}
	c.Output().Write(output)
	raw.ApplyCommonAttributes(c)
	return nil
}

// Run instantiates compiled, hands it input and returns its output.
func Run(ctx context.Context, rt wazero.Runtime, compiled wazero.CompiledModule, input []byte) ([]byte, error) {
	// An empty name lets the same plugin be instantiated more than once.
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate: %w", err)
	}
	defer mod.Close(ctx)

	exports := make(map[string]uint64, 4)
	for _, export := range []string{"input_ptr", "input_bytes_cap", "output_ptr", "output_bytes_cap"} {
		v, ok := exportedValue(ctx, mod, export)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, export)
		}
		exports[export] = v
	}
	run := mod.ExportedFunction("run")
	if run == nil {
		return nil, fmt.Errorf("%w: run", ErrMissingExport)
	}
	if mod.Memory() == nil {
		return nil, fmt.Errorf("%w: memory", ErrMissingExport)
	}

	if uint64(len(input)) > exports["input_bytes_cap"] {
		return nil, fmt.Errorf("%w: %d > %d", ErrInputTooLarge, len(input), exports["input_bytes_cap"])
	}
	if !mod.Memory().Write(uint32(exports["input_ptr"]), input) {
		return nil, fmt.Errorf("could not write %d input bytes", len(input))
	}

	results, err := run.Call(ctx, uint64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("run failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("run returned no output size")
	}
	count := uint32(results[0])
	if uint64(count) > exports["output_bytes_cap"] {
		return nil, fmt.Errorf("%w: %d > %d", ErrOutputTooLarge, count, exports["output_bytes_cap"])
	}
	out, ok := mod.Memory().Read(uint32(exports["output_ptr"]), count)
	if !ok {
		return nil, fmt.Errorf("could not read %d output bytes", count)
	}
	// Read aliases linear memory, which goes away with the instance.
	return append([]byte(nil), out...), nil
}

// exportedValue reads name from an exported global, or calls an exported
// zero-argument function of that name.
func exportedValue(ctx context.Context, mod api.Module, name string) (uint64, bool) {
	if global := mod.ExportedGlobal(name); global != nil {
		return global.Get(), true
	}
	if fn := mod.ExportedFunction(name); fn != nil {
		result, err := fn.Call(ctx)
		if err == nil && len(result) > 0 {
			return result[0], true
		}
	}
	return 0, false
}
