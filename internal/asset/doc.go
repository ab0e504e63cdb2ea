// Package asset defines the vocabulary shared by every stage of the pipeline:
// the Format a generator emits and a loader consumes, the Generated blob a
// generator produces, its flags, the sentinel errors used across packages, and
// the slash-path helpers that place assets in the namespace.
package asset
