// Package cache stores generated assets on disk so unchanged inputs are not
// regenerated.
//
// Each asset gets one entry at <manifestDir>/.AssetCache/<assetName>.eab. An
// entry is keyed by the hash of the manifest fragment that produced it and is
// valid while the producing generator's format is unchanged and none of the
// files the generator read has been modified since the entry was written.
//
// Reads fail closed: anything unexpected about an entry is a cache miss, and
// the caller regenerates.
package cache
