package harness

import "sync"

// Brand is the process-wide identity used to distinguish externrefs
// minted by this harness's action executor from those produced elsewhere.
type Brand struct{ id uint64 }

// Equal reports whether two brands are the same identity.
func (b Brand) Equal(other Brand) bool { return b.id == other.id }

var (
	hostBrandOnce sync.Once
	hostBrand     Brand
	brandSeq      uint64
)

// HostBrand returns the lazily initialized, immutable-after-init brand
// used by ValueOfConst when minting externref literals.
func HostBrand() Brand {
	hostBrandOnce.Do(func() {
		brandSeq++
		hostBrand = Brand{id: brandSeq}
	})
	return hostBrand
}
