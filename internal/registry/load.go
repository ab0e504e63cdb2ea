package registry

// SetPluginModule installs an external module whose registration is deferred
// until a generator, loader or binding is first looked up. Loading external
// plugins can be expensive, and many runs never need them.
//
// m.Register runs while that first lookup waits for it. It may register, bind
// and use the listing methods (Generators, Loaders, Bindings), which never
// trigger the load. Calling Generator, Loader, Binding, Generate or Validate
// on r from inside it deadlocks. Install the module after validating the
// eagerly registered ones, since Validate triggers the load.
func (r *Registry) SetPluginModule(m Module) {
	r.plugin = m
}

// PluginsLoaded reports whether the plugin module has been registered.
func (r *Registry) PluginsLoaded() bool {
	return r.pluginsLoaded.Load()
}

// ensurePlugins registers the plugin module at most once, however many
// goroutines race to trigger it. Once loaded, the check is a single atomic read.
func (r *Registry) ensurePlugins() {
	if r.plugin == nil || r.pluginsLoaded.Load() {
		return
	}
	r.pluginOnce.Do(func() {
		r.logger.Debug("Loading plugin module.")
		r.plugin.Register(r)
		r.pluginsLoaded.Store(true)
	})
}
