// Package manifest reads the documents that declare which assets to build.
//
// A manifest lists asset entries. Each entry names one asset (`name`) or a
// POSIX extended regular expression (`regex`) matched against every file found
// under the manifest directory, optionally pins a `loader` and `generator`,
// and carries any further attributes as generator parameters. Entries are
// represented as cty values regardless of the source format, so generators and
// the cache key see the same structure whether the manifest was written in
// HCL, JSON (comments allowed), or YAML.
//
//	asset {
//	  name      = "textures/tex.png"
//	  mip_count = 4
//	}
//
//	asset {
//	  regex     = "models/.*\\.obj"
//	  generator = "Mesh"
//	}
package manifest
