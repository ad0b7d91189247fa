package snapshot

import (
	"github.com/chainlog-project/chainlog/pkg/canonical"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// MerkleRoot folds an ordered sequence of chain hashes down to a
// single root. Each layer is reduced pairwise: SHA-256 of the two hex
// digests concatenated as bytes. An unpaired trailing leaf is combined
// with itself, not promoted unchanged; this is a fixed contract of the
// manifest format, not an implementation detail.
//
// An empty sequence yields the genesis value.
func MerkleRoot(hashes []model.HashValue) model.HashValue {
	if len(hashes) == 0 {
		return model.GenesisHash
	}

	layer := append([]model.HashValue(nil), hashes...)
	for len(layer) > 1 {
		next := make([]model.HashValue, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			left := layer[i]
			right := left
			if i+1 < len(layer) {
				right = layer[i+1]
			}
			next = append(next, canonical.Combine(left, right))
		}
		layer = next
	}
	return layer[0]
}
