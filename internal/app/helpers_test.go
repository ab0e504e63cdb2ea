package app

import (
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs and
// command output go to the returned buffer.
func SetupAppTest(t *testing.T, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	buf := &testutil.SafeBuffer{}
	testApp := NewApp(buf, validated, modules...)

	t.Cleanup(func() {
		testApp.Close(context.Background())
		if os.Getenv("ASSETPIPE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return testApp, buf
}
