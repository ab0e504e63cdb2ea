package asset

import (
	"path"
	"strings"
)

// Clean canonicalizes an asset name: slash separated, no leading slash, no
// "." or ".." segments.
func Clean(name string) string {
	cleaned := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(cleaned, "/")
}

// ParentPath returns the directory part of an asset name ("" for top level).
func ParentPath(name string) string {
	dir := path.Dir(Clean(name))
	if dir == "." {
		return ""
	}
	return dir
}

// BaseName returns the last segment of an asset name.
func BaseName(name string) string {
	return path.Base(Clean(name))
}

// ResolveName resolves a load-dependency reference made by the asset named
// from. References starting with "/" are absolute within the manifest.
func ResolveName(from, ref string) string {
	if strings.HasPrefix(ref, "/") {
		return Clean(ref)
	}
	return Clean(path.Join(ParentPath(from), ref))
}
