package proof

import (
	"bytes"
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/celer-network/go-inheritance/types"
)

// verifyBinaryMerkle checks the compatibility proof shape: a flat path of
// 32-byte sibling hashes from the account leaf up to the root, hashed with
// Keccak256 like the rest of the state commitment.
func verifyBinaryMerkle(account common.Address, stateRoot common.Hash, state *types.AccountState, siblings [][]byte) bool {
	encoded, err := state.EncodeForLeaf()
	if err != nil {
		return false
	}
	hasher := sha3.NewLegacyKeccak256()
	key := digest(hasher, account.Bytes())
	return VerifyMerklePath(key, encoded, stateRoot.Bytes(), siblings, hasher)
}

// VerifyMerklePath folds a sibling path over an arbitrary hasher. The leaf
// is Hash(key || Hash(value)); sibling order at level i follows bit i of the
// key. An empty path is the single-member tree: the root is the leaf itself.
func VerifyMerklePath(key []byte, value []byte, root []byte, siblings [][]byte, hasher hash.Hash) bool {
	leafValue := digest(hasher, value)
	current := digest(hasher, key, leafValue)

	for i, sibling := range siblings {
		if len(sibling) != hasher.Size() {
			return false
		}
		if hasBit(key, i) == 1 {
			current = digest(hasher, sibling, current)
		} else {
			current = digest(hasher, current, sibling)
		}
	}

	return bytes.Equal(current, root)
}

func digest(hasher hash.Hash, parts ...[]byte) []byte {
	hasher.Reset()
	for _, part := range parts {
		hasher.Write(part)
	}
	return hasher.Sum(nil)
}

func hasBit(data []byte, position int) int {
	if position/8 >= len(data) {
		return 0
	}
	if int(data[position/8])&(1<<(uint(position)%8)) > 0 {
		return 1
	}
	return 0
}
