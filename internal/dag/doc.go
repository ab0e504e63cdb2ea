// Package dag orders asset loading by load dependency.
//
// Resolver walks the discovered tasks depth first with three-state visitation
// (initial, processing, done) kept in a map built fresh for every pass. A task
// revisited while still processing closes a cycle: it is reported once and
// failed, and so is every task that depends on it. Dependency names that match
// no task are logged and skipped. The order in which tasks finish loading is a
// valid topological order, which is what packages are written in.
//
// Graph is the static view of the same edges, used for diagnostics.
package dag
