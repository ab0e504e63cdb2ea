package reload

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/assetpipe/internal/testutil"
)

func TestEvent_Payload(t *testing.T) {
	ev := Event{Mount: "game", Changed: []string{"tex.png"}, Loaded: 3, Ok: true}
	assert.Equal(t, map[string]any{
		"mount":   "game",
		"changed": []any{"tex.png"},
		"loaded":  3,
		"ok":      true,
	}, ev.Payload())

	assert.Equal(t, []any{}, Event{}.Payload()["changed"])
}

func TestNotifierFunc(t *testing.T) {
	var got []Event
	var n Notifier = NotifierFunc(func(_ context.Context, ev Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, n.Notify(context.Background(), Event{Mount: "a"}))
	require.NoError(t, n.Close())
	assert.Equal(t, []Event{{Mount: "a"}}, got)
}

func TestDial_RejectsRelativeURL(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, err := Dial(ctx, Options{URL: "localhost:3000"})
	require.Error(t, err)
}

func TestDial_FailsWithoutServer(t *testing.T) {
	// Reserve a port, then free it so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, _ := testutil.Context(t)
	start := time.Now()
	_, err = Dial(ctx, Options{URL: "http://" + addr, ConnectTimeout: 2 * time.Second})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
