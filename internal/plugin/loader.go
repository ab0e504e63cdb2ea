package plugin

import "context"

// Instance is a live, loaded asset. Its concrete type is owned by the loader
// that produced it.
type Instance any

// Destroyer is implemented by instances that hold resources which must be
// released when their namespace is unloaded.
type Destroyer interface {
	Destroy()
}

// Input is what a loader receives: the asset's payload and any side streams
// produced alongside it.
type Input struct {
	Name        string
	Data        []byte
	SideStreams map[string][]byte
}

// SideStream returns the named side stream.
func (in Input) SideStream(name string) ([]byte, bool) {
	data, ok := in.SideStreams[name]
	return data, ok
}

// Loader decodes generated bytes into a live instance.
type Loader interface {
	Load(ctx context.Context, in Input) (Instance, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, in Input) (Instance, error)

func (f LoaderFunc) Load(ctx context.Context, in Input) (Instance, error) { return f(ctx, in) }
