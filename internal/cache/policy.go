package cache

import (
	"time"

	"github.com/specialistvlad/assetpipe/internal/asset"
)

// DefaultThreshold is the generation time below which a result is not worth
// a disk write.
const DefaultThreshold = 500 * time.Microsecond

// Policy decides which generation results are written to the cache.
type Policy struct {
	// Threshold is the minimum generation time for a result to be saved.
	Threshold time.Duration
	// Disabled turns off both cache reads and writes.
	Disabled bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold}
}

// ShouldSave reports whether a result that took elapsed to generate should be
// saved.
func (p Policy) ShouldSave(elapsed time.Duration, flags asset.Flags) bool {
	if p.Disabled || flags.Has(asset.NeverCache) {
		return false
	}
	return elapsed > p.Threshold
}
