package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/manifest"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/internal/testutil"
)

var textureFormat = asset.NewFormat("Texture2D", 3)

func writeConst(data string) plugin.Generator {
	return plugin.GeneratorFunc(func(c *plugin.Context) error {
		c.Output().WriteString(data)
		return nil
	})
}

func TestRegisterGenerator_OverwriteWarns(t *testing.T) {
	logger, logs := testutil.NewLogger(t)
	r := registry.New(logger)

	r.RegisterGenerator("Texture2D", textureFormat, writeConst("first"))
	r.RegisterGenerator("Texture2D", textureFormat, writeConst("second"))

	assert.Equal(t, 1, testutil.CountLogLines(logs.String(), "level=WARN", "Generator already registered", "name=Texture2D"))
	assert.Equal(t, []string{"Texture2D"}, r.Generators())

	res, err := r.Generate(context.Background(), registry.Request{Generator: "Texture2D", Asset: "tex.png"})
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), res.Generated.Data)
	assert.Equal(t, textureFormat, res.Generated.Format)
}

func TestRegistry_SortedNames(t *testing.T) {
	r := registry.New(nil)
	for _, name := range []string{"Shader", "Audio", "Mesh"} {
		r.RegisterGenerator(name, asset.NewFormat(name, 1), writeConst(name))
	}
	assert.Equal(t, []string{"Audio", "Mesh", "Shader"}, r.Generators())
}

func TestGenerate_NotFound(t *testing.T) {
	r := registry.New(nil)
	_, err := r.Generate(context.Background(), registry.Request{Generator: "Missing", Asset: "a.bin"})
	require.ErrorIs(t, err, asset.ErrGeneratorNotFound)
}

func TestGenerate_FailureIsWrapped(t *testing.T) {
	r := registry.New(nil)
	boom := errors.New("boom")
	r.RegisterGenerator("Broken", textureFormat, plugin.GeneratorFunc(func(*plugin.Context) error { return boom }))

	_, err := r.Generate(context.Background(), registry.Request{Generator: "Broken", Asset: "a.png"})
	require.ErrorIs(t, err, asset.ErrGenerateFailed)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "a.png")
}

func TestGenerate_ContextCarriesRequest(t *testing.T) {
	r := registry.New(nil)
	dir := t.TempDir()
	fragment := manifest.NewFragment(cty.ObjectVal(map[string]cty.Value{"quality": cty.NumberIntVal(7)}))
	root := manifest.NewFragment(cty.ObjectVal(map[string]cty.Value{"version": cty.StringVal("2")}))

	r.RegisterGenerator("Probe", textureFormat, plugin.GeneratorFunc(func(c *plugin.Context) error {
		q, _ := c.Fragment().Int("quality")
		v, _ := c.Root().String("version")
		assert.Equal(t, int64(7), q)
		assert.Equal(t, "2", v)
		assert.Equal(t, dir, c.Dir())
		c.FileDependency("textures/a.png")
		c.AddLoadDependency("palette.pal")
		c.UseWildcardHash()
		return nil
	}))

	res, err := r.Generate(context.Background(), registry.Request{
		Dir: dir, Generator: "Probe", Asset: "textures/a.png", Fragment: fragment, Root: root,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"textures/a.png"}, res.Generated.FileDependencies)
	assert.Equal(t, []string{"palette.pal"}, res.Generated.LoadDependencies)
	assert.True(t, res.WildcardHash)
}

func TestLoader_Lookup(t *testing.T) {
	r := registry.New(nil)
	r.Register(&testutil.NoOpModule{})

	entry, err := r.Loader("NoOp")
	require.NoError(t, err)
	assert.Equal(t, testutil.NoOpFormat, entry.Format)

	_, err = r.Loader("Texture2D")
	require.ErrorIs(t, err, asset.ErrLoaderNotFound)
}

func TestBinding(t *testing.T) {
	r := registry.New(nil)
	r.BindAssetExtension(".PNG", "Texture2D", "Texture2D")
	r.BindAssetExtension("wgsl", "Shader", "ShaderCompiler")

	b, err := r.Binding("textures/hero.png")
	require.NoError(t, err)
	assert.Equal(t, registry.Binding{Extension: "png", Loader: "Texture2D", Generator: "Texture2D"}, b)

	b, err = r.Binding("lit.WGSL")
	require.NoError(t, err)
	assert.Equal(t, "ShaderCompiler", b.Generator)

	_, err = r.Binding("model.obj")
	require.ErrorIs(t, err, asset.ErrUnknownAssetExtension)
	_, err = r.Binding("README")
	require.ErrorIs(t, err, asset.ErrUnknownAssetExtension)
}

func TestValidate(t *testing.T) {
	ctx, logs := testutil.Context(t)
	r := registry.New(nil)
	r.Register(&testutil.SimpleModule{Name: "Texture2D", Format: textureFormat, Generator: writeConst("x"), Extension: "png"})

	problems := r.Validate(ctx)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], `loader "Texture2D" is not registered`)
	assert.Equal(t, 1, testutil.CountLogLines(logs.String(), "level=WARN"))
}

type countingModule struct {
	mu    sync.Mutex
	calls int
}

func (m *countingModule) Register(r *registry.Registry) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	r.RegisterGenerator("Wasm", textureFormat, writeConst("plugin"))
}

type moduleFunc func(r *registry.Registry)

func (f moduleFunc) Register(r *registry.Registry) { f(r) }

func TestPluginModule_RegisterMayListButNotLookUp(t *testing.T) {
	r := registry.New(nil)
	r.RegisterLoader("Texture2D", textureFormat, plugin.LoaderFunc(func(context.Context, plugin.Input) (plugin.Instance, error) {
		return nil, nil
	}))

	var seen []string
	r.SetPluginModule(moduleFunc(func(r *registry.Registry) {
		seen = r.Loaders()
		r.RegisterGenerator("Wasm", textureFormat, writeConst("plugin"))
		r.BindAssetExtension("wtex", "Texture2D", "Wasm")
	}))

	done := make(chan error, 1)
	go func() {
		_, err := r.Binding("sky.wtex")
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("plugin registration did not finish")
	}
	assert.Equal(t, []string{"Texture2D"}, seen)
	assert.True(t, r.PluginsLoaded())
}

func TestPluginModule_LoadedOnceOnFirstLookup(t *testing.T) {
	r := registry.New(nil)
	m := &countingModule{}
	r.SetPluginModule(m)
	assert.False(t, r.PluginsLoaded())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Generator("Wasm")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, r.PluginsLoaded())
	assert.Equal(t, 1, m.calls)
}
