package asset

import "errors"

var (
	ErrGeneratorNotFound      = errors.New("generator not found")
	ErrLoaderNotFound         = errors.New("loader not found")
	ErrUnknownAssetExtension  = errors.New("unknown asset extension")
	ErrGenerateFailed         = errors.New("generate failed")
	ErrCacheCorrupt           = errors.New("cache entry corrupt")
	ErrCircularLoadDependency = errors.New("circular load dependency")
	ErrMissingLoadDependency  = errors.New("missing load dependency")
	ErrPackageFormatMismatch  = errors.New("package format mismatch")
	ErrPackageCorruptMagic    = errors.New("package magic mismatch")
)
