// Package chain models the ambient execution environment the registry needs:
// the current block number and the short history of block hashes the chain
// itself can confirm. It is injected as a read-only capability so the gate
// stays unit-testable without a live node.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// HashRetentionWindow is how many trailing block hashes Ethereum-like
// environments keep available, mirroring the BLOCKHASH opcode.
const HashRetentionWindow = 256

// Reader exposes the environment's own view of the chain. BlockHash returns
// the zero hash for blocks whose hash the environment no longer retains.
type Reader interface {
	BlockNumber(ctx context.Context) (*big.Int, error)
	BlockHash(ctx context.Context, number *big.Int) (common.Hash, error)
}

// VerifyBlockHash reports whether providedHash is the environment's recorded
// hash for blockNumber. Current and future blocks fail: their hash is not
// fixed from the verifier's point of view. The reader is queried fresh on
// every call; caching its answers would be a correctness bug.
func VerifyBlockHash(ctx context.Context, reader Reader, blockNumber *big.Int, providedHash common.Hash) bool {
	current, err := reader.BlockNumber(ctx)
	if err != nil {
		return false
	}
	if blockNumber.Cmp(current) >= 0 {
		return false
	}

	recorded, err := reader.BlockHash(ctx, blockNumber)
	if err != nil {
		return false
	}
	if recorded == (common.Hash{}) {
		// outside the retention window
		return false
	}

	return recorded == providedHash
}
