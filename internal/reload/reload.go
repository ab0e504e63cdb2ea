// Package reload tells running clients that assets were rebuilt.
package reload

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
)

// EventName is the socket.io event emitted after every rebuild.
const EventName = "assets:reloaded"

// DefaultConnectTimeout bounds how long Dial waits for the server.
const DefaultConnectTimeout = 15 * time.Second

// Event describes one rebuild.
type Event struct {
	Mount   string
	Changed []string
	Loaded  int
	Ok      bool
}

// Payload is the event as sent on the wire.
func (e Event) Payload() map[string]any {
	changed := make([]any, 0, len(e.Changed))
	for _, c := range e.Changed {
		changed = append(changed, c)
	}
	return map[string]any{
		"mount":   e.Mount,
		"changed": changed,
		"loaded":  e.Loaded,
		"ok":      e.Ok,
	}
}

// Notifier publishes rebuild events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
func (f NotifierFunc) Close() error                               { return nil }

// Options configure a socket.io connection.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO emits rebuild events over a persistent socket.io connection.
type SocketIO struct {
	client *socket.Socket
}

// Dial connects to a socket.io server and waits for the handshake.
func Dial(ctx context.Context, opts Options) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("url", opts.URL)
	logger.Info("Connecting reload notifier...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL '%s' must be absolute", opts.URL)
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	sockOpts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sockOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Reload notifier connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Notify emits EventName with the event's payload.
func (s *SocketIO) Notify(ctx context.Context, ev Event) error {
	if !s.client.Connected() {
		return fmt.Errorf("reload notifier is not connected")
	}
	ctxlog.FromContext(ctx).Debug("Emitting reload event.", "sid", s.client.Id(), "changed", len(ev.Changed))
	return s.client.Emit(EventName, ev.Payload())
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.client.Disconnect()
	return nil
}
