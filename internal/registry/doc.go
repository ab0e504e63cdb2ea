// Package registry provides the central "glue" for the pipeline's plugins.
//
// The Registry maps the string identifiers used in manifests (generator and
// loader names such as "Texture2D") to the compiled Go values that implement
// them, and maps file extensions to a default loader/generator pair for
// manifest entries that name neither.
//
// A Registry is constructed explicitly and populated once at startup by the
// modules passed to it; registration order does not matter. Registering a name
// twice replaces the first registration and logs a warning, which is what hot
// reload of a plugin relies on.
package registry
