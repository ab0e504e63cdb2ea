package dag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
)

// LoadFunc loads one task whose dependencies are already loaded.
type LoadFunc func(ctx context.Context, t *Task) error

// Result is the outcome of one resolution pass.
type Result struct {
	// Order holds task indices in the order they reached Loaded.
	Order []int
	// States holds the final state of every task, by index.
	States []State
	// Ok is true when every task loaded.
	Ok bool
}

// Loaded returns the tasks in load order.
func (r Result) Loaded(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(r.Order))
	for _, i := range r.Order {
		out = append(out, tasks[i])
	}
	return out
}

// Resolver loads tasks in dependency order.
type Resolver struct {
	tasks []*Task
	index map[string]int
}

// NewResolver indexes tasks by name. When two tasks share a name the first
// one wins.
func NewResolver(tasks []*Task) *Resolver {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, dup := index[t.Name]; !dup {
			index[t.Name] = i
		}
	}
	return &Resolver{tasks: tasks, index: index}
}

// pass holds the visitation state of a single Resolve call.
type pass struct {
	ctx    context.Context
	logger *slog.Logger
	load   LoadFunc
	states []State
	// origin marks tasks that failed on their own rather than because a
	// dependency did. Only direct dependents of an origin log the failure.
	origin []bool
	order  []int
}

// Resolve visits every task, loading each after its dependencies. Tasks
// without generated data are failed up front. Failures stay local to the task
// and whatever depends on it.
func (r *Resolver) Resolve(ctx context.Context, load LoadFunc) Result {
	p := &pass{
		ctx:    ctx,
		logger: ctxlog.FromContext(ctx),
		load:   load,
		states: make([]State, len(r.tasks)),
		origin: make([]bool, len(r.tasks)),
	}
	for i, t := range r.tasks {
		if t.Generated == nil {
			p.states[i] = Failed
			p.origin[i] = true
		}
	}
	for i := range r.tasks {
		r.visit(p, i)
	}

	ok := true
	for _, s := range p.states {
		if s != Loaded {
			ok = false
			break
		}
	}
	return Result{Order: p.order, States: p.states, Ok: ok}
}

func (r *Resolver) visit(p *pass, i int) bool {
	t := r.tasks[i]
	switch p.states[i] {
	case Loaded:
		return true
	case Failed:
		return false
	case Processing:
		p.logger.Error("Circular load dependency.", "asset", t.Name,
			"error", fmt.Errorf("%w: %s", asset.ErrCircularLoadDependency, t.Name))
		p.states[i] = Failed
		p.origin[i] = true
		return false
	}

	p.states[i] = Processing
	for _, ref := range t.Generated.LoadDependencies {
		name := asset.ResolveName(t.Name, ref)
		j, ok := r.index[name]
		if !ok {
			p.logger.Warn("Load dependency not found, skipping it.", "asset", t.Name, "dependency", name,
				"error", fmt.Errorf("%w: %s", asset.ErrMissingLoadDependency, name))
			continue
		}
		if r.visit(p, j) {
			continue
		}
		if p.origin[j] && j != i {
			p.logger.Warn("Asset not loaded: dependency failed.", "asset", t.Name, "dependency", name)
		}
		p.states[i] = Failed
		return false
	}

	if err := p.load(p.ctx, t); err != nil {
		p.logger.Error("Asset failed to load.", "asset", t.Name, "loader", t.Loader, "error", err)
		p.states[i] = Failed
		p.origin[i] = true
		return false
	}
	p.states[i] = Loaded
	p.order = append(p.order, i)
	return true
}
