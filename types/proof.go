package types

// ProofKind discriminates the shape of a state proof. The caller states what
// it is supplying instead of the verifier sniffing the shape.
type ProofKind uint8

const (
	// ProofKindAuto keeps the legacy selection rule for callers that cannot
	// tag their proofs yet: two or more nodes are tried as a trie proof
	// first, with a fallback to the binary Merkle path on failure.
	ProofKindAuto ProofKind = iota
	// ProofKindTrie marks Nodes as RLP-encoded Patricia trie nodes ordered
	// from the root down to the account leaf, as returned by eth_getProof.
	ProofKindTrie
	// ProofKindBinaryMerkle marks Nodes as 32-byte sibling hashes of a flat
	// binary Merkle path, ordered from the leaf up.
	ProofKindBinaryMerkle
)

func (kind ProofKind) String() string {
	switch kind {
	case ProofKindAuto:
		return "auto"
	case ProofKindTrie:
		return "trie"
	case ProofKindBinaryMerkle:
		return "binary-merkle"
	default:
		return "unknown"
	}
}

// Proof carries the evidence for an AccountState claim. Validity is only
// meaningful in combination with a state root.
type Proof struct {
	Kind  ProofKind
	Nodes [][]byte
}
