package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/assetpipe/internal/engine"
	"github.com/specialistvlad/assetpipe/internal/pack"
	"github.com/specialistvlad/assetpipe/internal/reload"
	"github.com/specialistvlad/assetpipe/internal/testutil"
	"github.com/specialistvlad/assetpipe/modules/params"
	"github.com/specialistvlad/assetpipe/modules/raw"
	"github.com/specialistvlad/assetpipe/modules/text"
)

const gameManifest = `
asset {
  name = "tex.png"
}

asset {
  name       = "shaders/blit.wgsl"
  depends_on = ["/tex.png"]
}

asset {
  name    = "tuning.params"
  gravity = 9.81
}

asset {
  regex = "sfx/.*[.]wav"
}
`

func gameDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "game")
	testutil.WriteFiles(t, dir, map[string]string{
		"assets.hcl":        gameManifest,
		"tex.png":           "\x89PNG",
		"shaders/blit.wgsl": "fn main() {}\r\n",
		"sfx/jump.wav":      "RIFF jump",
		"sfx/land.wav":      "RIFF land",
	})
	return dir
}

func TestRun_BuildLoadsEveryAsset(t *testing.T) {
	dir := gameDir(t)
	a, out := SetupAppTest(t, Config{Command: CommandBuild, Path: dir, Mount: "game"})

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Loaded 5 of 5 assets into /game")

	shader, ok := engine.Get[*text.Document](a.Engine(), "game/shaders/blit.wgsl")
	require.True(t, ok)
	assert.Equal(t, "fn main() {}\n", shader.Text)

	tuning, ok := engine.Get[params.Values](a.Engine(), "game/tuning.params")
	require.True(t, ok)
	assert.Equal(t, 9.81, tuning["gravity"])

	_, ok = engine.Get[*raw.Blob](a.Engine(), "game/sfx/land.wav")
	assert.True(t, ok)
}

func TestRun_BuildReportsFailures(t *testing.T) {
	dir := gameDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tex.png")))
	a, _ := SetupAppTest(t, Config{Command: CommandBuild, Path: dir})

	err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrBuildFailed)

	// The shader depends on the missing texture; the sounds do not.
	_, ok := a.Engine().Find("shaders/blit.wgsl")
	assert.False(t, ok)
	_, ok = a.Engine().Find("sfx/jump.wav")
	assert.True(t, ok)
}

func TestRun_PackInspectAndLoadPackage(t *testing.T) {
	dir := gameDir(t)
	out := filepath.Join(t.TempDir(), "dist", "game.eap")

	packer, packOut := SetupAppTest(t, Config{Command: CommandPack, Path: dir, Out: out})
	require.NoError(t, packer.Run(context.Background()))
	assert.Contains(t, packOut.String(), "Wrote "+out)

	f, err := os.Open(out)
	require.NoError(t, err)
	entries, _, err := pack.Read(f)
	f.Close()
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Len(t, names, 5)
	assert.Less(t, indexOf(names, "tex.png"), indexOf(names, "shaders/blit.wgsl"))

	inspector, inspectOut := SetupAppTest(t, Config{Command: CommandInspect, Path: out})
	require.NoError(t, inspector.Run(context.Background()))
	assert.Contains(t, inspectOut.String(), "5 entries, loaders:")
	assert.Contains(t, inspectOut.String(), "shaders/blit.wgsl")

	loader, _ := SetupAppTest(t, Config{Command: CommandBuild, Path: out, Mount: "shipped"})
	require.NoError(t, loader.Run(context.Background()))
	doc, ok := engine.Get[*text.Document](loader.Engine(), "shipped/shaders/blit.wgsl")
	require.True(t, ok)
	assert.Equal(t, "fn main() {}\n", doc.Text)
}

func TestRun_PackDefaultsNextToManifestDir(t *testing.T) {
	dir := gameDir(t)
	a, _ := SetupAppTest(t, Config{Command: CommandPack, Path: filepath.Join(dir, "assets.hcl")})
	require.NoError(t, a.Run(context.Background()))

	_, err := os.Stat(dir + pack.Extension)
	require.NoError(t, err)

	// With the manifest gone, the directory path falls back to the package.
	require.NoError(t, os.Remove(filepath.Join(dir, "assets.hcl")))
	b, _ := SetupAppTest(t, Config{Command: CommandBuild, Path: dir})
	require.NoError(t, b.Run(context.Background()))
	assert.Equal(t, 5, b.Engine().Len())
}

func TestRun_PackRejectsPackage(t *testing.T) {
	dir := gameDir(t)
	a, _ := SetupAppTest(t, Config{Command: CommandPack, Path: dir})
	require.NoError(t, a.Run(context.Background()))

	b, _ := SetupAppTest(t, Config{Command: CommandPack, Path: dir + pack.Extension})
	require.ErrorIs(t, b.Run(context.Background()), ErrNeedsManifest)
}

func TestRun_InspectManifest(t *testing.T) {
	dir := gameDir(t)
	a, out := SetupAppTest(t, Config{Command: CommandInspect, Path: dir})
	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "tex.png")
	assert.Equal(t, 0, a.Engine().Len(), "inspect does not load anything")
}

func TestRun_Clean(t *testing.T) {
	dir := gameDir(t)
	testutil.WriteFiles(t, dir, map[string]string{".AssetCache/tex.png.eab": "stale"})

	a, out := SetupAppTest(t, Config{Command: CommandClean, Path: dir})
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Cleaned cache")
	_, err := os.Stat(filepath.Join(dir, ".AssetCache"))
	assert.True(t, os.IsNotExist(err))
}

func TestHealthcheckServer(t *testing.T) {
	dir := gameDir(t)
	a, _ := SetupAppTest(t, Config{Command: CommandBuild, Path: dir, Mount: "game"})
	ctx := context.Background()
	require.NoError(t, a.build(ctx))

	addr, err := a.startHealthcheckServer(0)
	require.NoError(t, err)
	t.Cleanup(func() { a.closeHealthCheckServer(ctx) })
	base := fmt.Sprintf("http://%s", addr)

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/assets?prefix=game/sfx")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []AssetStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []AssetStatus{
		{Path: "game/sfx/jump.wav", Loader: raw.Name, Type: "*raw.Blob"},
		{Path: "game/sfx/land.wav", Loader: raw.Name, Type: "*raw.Blob"},
	}, list)
}

func TestWatch_ReloadsAndNotifies(t *testing.T) {
	dir := gameDir(t)
	a, _ := SetupAppTest(t, Config{Command: CommandWatch, Path: dir, Mount: "game", Debounce: 50 * time.Millisecond})

	var mu sync.Mutex
	var events []reload.Event
	notifier := reload.NotifierFunc(func(_ context.Context, ev reload.Event) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
		return nil
	})
	eventCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(events)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.watchWith(ctx, filepath.Join(dir, "assets.hcl"), notifier) }()

	require.Eventually(t, func() bool { return eventCount() >= 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "blit.wgsl"), []byte("fn changed() {}"), 0o644))

	require.Eventually(t, func() bool {
		doc, ok := engine.Get[*text.Document](a.Engine(), "game/shaders/blit.wgsl")
		return ok && doc.Text == "fn changed() {}"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Nil(t, events[0].Changed)
	assert.True(t, events[0].Ok)
	assert.Equal(t, 5, events[0].Loaded)
	assert.Contains(t, events[len(events)-1].Changed, "shaders/blit.wgsl")
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
