// Package plugin defines the contracts between the pipeline and its pluggable
// encoders and decoders.
//
// A Generator turns a manifest fragment and the files it reads into an opaque
// blob. It talks to the pipeline only through a Context: files it reads are
// declared with FileDependency so the cache can invalidate the result, and
// assets that must be loaded first are declared with AddLoadDependency.
//
// A Loader turns a blob back into a live instance. Instances that hold
// resources beyond memory implement Destroyer; Destroy is called when the
// namespace holding them is unloaded.
package plugin
