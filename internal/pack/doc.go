// Package pack reads and writes package files: a single container holding a
// dependency-ordered set of generated assets, so they can be loaded without
// running any generator.
//
// Layout, all integers little endian:
//
//	magic        "EAP1"
//	assetCount   u32
//	loaderCount  u32, then loaderCount × (u32 length, name bytes), sorted and unique
//	assetCount × {
//	    name        u32 length, bytes
//	    loader      u32 index into the loader table
//	    format      u32 name hash, u32 version
//	    size        u64, top bit set when the payload is compressed
//	    payload     size raw bytes, or u64 compressed size then a DEFLATE stream
//	}
//
// Entries are read back in the order they were written; a writer must put
// every asset after its load dependencies.
//
// Side streams travel as ordinary entries named "<asset>@<stream>" with the
// reserved loader SideLoader, placed immediately before the asset that owns
// them. A reader attributes them to the next asset entry (see SideStreamName).
package pack
