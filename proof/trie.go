package proof

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/celer-network/go-inheritance/types"
)

const (
	shortNodeElems  = 2
	branchNodeElems = 17
	branchValueSlot = 16
)

// verifyTrie checks a Merkle-Patricia proof for the account leaf. Nodes are
// RLP-encoded trie nodes ordered from the state root down to the leaf, the
// layout eth_getProof returns. Each node must hash to the reference held by
// its parent, and the terminal value must be the canonical account tuple.
func verifyTrie(account common.Address, stateRoot common.Hash, state *types.AccountState, nodes [][]byte) bool {
	if len(nodes) == 0 {
		return false
	}
	wantValue, err := state.EncodeForLeaf()
	if err != nil {
		return false
	}

	key := keybytesToHex(crypto.Keccak256(account.Bytes()))
	want := stateRoot

	for nodeIndex := 0; nodeIndex < len(nodes); nodeIndex++ {
		raw := nodes[nodeIndex]
		if crypto.Keccak256Hash(raw) != want {
			return false
		}

		// Children shorter than 32 bytes are embedded in their parent, so a
		// single proof element can cover several logical nodes.
		elem := raw
		for {
			elems, err := splitList(elem)
			if err != nil {
				return false
			}

			var child []byte
			switch len(elems) {
			case branchNodeElems:
				if key[0] == terminatorNibble {
					payload, err := stringPayload(elems[branchValueSlot])
					return err == nil && bytes.Equal(payload, wantValue)
				}
				child = elems[int(key[0])]
				key = key[1:]
			case shortNodeElems:
				compact, err := stringPayload(elems[0])
				if err != nil {
					return false
				}
				nodeKey := compactToHex(compact)
				if len(nodeKey) > len(key) || !bytes.Equal(key[:len(nodeKey)], nodeKey) {
					return false
				}
				key = key[len(nodeKey):]
				child = elems[1]
			default:
				return false
			}

			if len(key) == 0 {
				// leaf reached, child holds the account tuple
				payload, err := stringPayload(child)
				return err == nil && bytes.Equal(payload, wantValue)
			}

			if isListItem(child) {
				elem = child
				continue
			}

			payload, err := stringPayload(child)
			if err != nil || len(payload) != common.HashLength {
				return false
			}
			want = common.BytesToHash(payload)
			break
		}
	}

	// ran out of proof nodes before resolving the leaf
	return false
}
