// Package proof decides whether a claimed account state is the true state
// under a given state root. Verification is pure: no ambient state, no
// side effects, and failures of any shape surface as a false result rather
// than an error.
package proof

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/celer-network/go-inheritance/types"
)

// Verify checks the account state tuple against stateRoot using the proof's
// declared kind. ProofKindAuto keeps the legacy behavior for untagged
// proofs: two or more nodes are tried as a trie proof first, falling back to
// the binary Merkle path on any failure.
func Verify(account common.Address, stateRoot common.Hash, state *types.AccountState, prf *types.Proof) bool {
	if state == nil || state.Balance == nil || prf == nil {
		return false
	}
	switch prf.Kind {
	case types.ProofKindTrie:
		return verifyTrie(account, stateRoot, state, prf.Nodes)
	case types.ProofKindBinaryMerkle:
		return verifyBinaryMerkle(account, stateRoot, state, prf.Nodes)
	case types.ProofKindAuto:
		if len(prf.Nodes) >= 2 && verifyTrie(account, stateRoot, state, prf.Nodes) {
			return true
		}
		return verifyBinaryMerkle(account, stateRoot, state, prf.Nodes)
	default:
		return false
	}
}
