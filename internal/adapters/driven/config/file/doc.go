// Package file provides a TOML file implementation of driven.ConfigStore.
//
// Keys are exposed as dotted paths ("blob.dir") and written back as nested
// TOML tables, so the file stays hand-editable:
//
//	[blob]
//	backend = "local"
//	dir = "/srv/uploads"
package file
