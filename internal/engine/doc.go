// Package engine orchestrates the pipeline: it turns a manifest into tasks,
// generates or fetches each task's blob from the cache, loads the results in
// dependency order into a mount namespace, and reads and writes packages.
//
// Per-asset failures are logged and isolated. The top-level entry points
// report success as a bool and leave whatever did load in the namespace.
package engine
