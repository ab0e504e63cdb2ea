package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
)

// Validate checks that every extension binding points at a registered
// generator and loader. Problems are logged as warnings and returned; they are
// not fatal because an unbound extension only matters once an asset uses it.
func (r *Registry) Validate(ctx context.Context) []string {
	logger := ctxlog.FromContext(ctx)
	r.ensurePlugins()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var problems []string
	r.bindings.Scan(func(ext string, b Binding) bool {
		if _, ok := r.generators.Get(b.Generator); !ok {
			problems = append(problems, fmt.Sprintf("extension %q: generator %q is not registered", ext, b.Generator))
		}
		if _, ok := r.loaders.Get(b.Loader); !ok {
			problems = append(problems, fmt.Sprintf("extension %q: loader %q is not registered", ext, b.Loader))
		}
		return true
	})

	for _, p := range problems {
		logger.Warn("Registry binding is incomplete.", "problem", p)
	}
	return problems
}
