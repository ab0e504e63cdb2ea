package raw_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/cache"
	"github.com/specialistvlad/assetpipe/internal/clock"
	"github.com/specialistvlad/assetpipe/internal/engine"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/internal/testutil"
	"github.com/specialistvlad/assetpipe/modules/raw"
)

func TestGenerate_CopiesSourceAndHonorsAttributes(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"sprites/hero.png": "pixels"})

	c, _ := testutil.GeneratorContext(t, dir, "sprites/hero.png", map[string]cty.Value{
		"depends_on":    cty.TupleVal([]cty.Value{cty.StringVal("palette.bin")}),
		"compress":      cty.False,
		"never_package": cty.True,
	})
	require.NoError(t, raw.Generate(c))

	g := c.Result(raw.Format)
	assert.Equal(t, []byte("pixels"), g.Data)
	assert.Equal(t, []string{"sprites/hero.png"}, g.FileDependencies)
	assert.Equal(t, []string{"palette.bin"}, g.LoadDependencies)
	assert.True(t, g.Flags.Has(asset.DisableCompression|asset.NeverPackage))
	assert.False(t, g.Flags.Has(asset.NeverCache))
}

func TestGenerate_SourceAttribute(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"art/hero_v2.png": "v2"})

	c, _ := testutil.GeneratorContext(t, dir, "hero.png", map[string]cty.Value{
		"source": cty.StringVal("art/hero_v2.png"),
	})
	require.NoError(t, raw.Generate(c))
	assert.Equal(t, "v2", c.Output().String())
	assert.Equal(t, []string{"art/hero_v2.png"}, c.Result(raw.Format).FileDependencies)
}

func TestGenerate_MissingSource(t *testing.T) {
	c, _ := testutil.GeneratorContext(t, t.TempDir(), "missing.bin", nil)
	err := raw.Generate(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read source file")
}

func TestModule_BuildsAndLoadsThroughEngine(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"assets.yaml":  "assets:\n  - name: tex.png\n  - name: sfx/jump.wav\n",
		"tex.png":      "\x89PNG",
		"sfx/jump.wav": "RIFF",
	})
	ctx, _ := testutil.Context(t)

	reg := registry.New(nil)
	reg.Register(&raw.Module{})
	fake := clock.NewFake(time.Now().Add(time.Hour))
	fake.AutoStep(time.Millisecond)
	e := engine.New(reg, engine.Options{CachePolicy: cache.DefaultPolicy(), Clock: fake})

	require.True(t, e.LoadAssets(ctx, filepath.Join(dir, "assets.yaml"), "game"))

	tex, ok := engine.Get[*raw.Blob](e, "game/tex.png")
	require.True(t, ok)
	assert.Equal(t, []byte("\x89PNG"), tex.Data)

	jump, ok := engine.Get[*raw.Blob](e, "game/sfx/jump.wav")
	require.True(t, ok)
	assert.Equal(t, []byte("RIFF"), jump.Data)
}
