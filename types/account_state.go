package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// AccountState is the claimed state of an account at some historical block:
// the canonical 4-tuple committed into the state trie.
type AccountState struct {
	Nonce       uint64
	Balance     *big.Int
	StorageHash common.Hash
	CodeHash    common.Hash
}

// EncodeForLeaf returns the canonical RLP encoding of the account tuple,
// byte-identical to the value stored at the account's leaf in the state trie.
func (state *AccountState) EncodeForLeaf() ([]byte, error) {
	return rlp.EncodeToBytes(state)
}
