// Package header decodes raw RLP block headers just far enough to anchor a
// state root to a block number. It deliberately does not validate the full
// header: only the canonical field order of Ethereum headers is relied on,
// which also keeps it working for headers with trailing post-London fields.
package header

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrMalformedHeader is returned when the bytes do not decode to a header
// list with at least nine fields and a 32-byte state root.
var ErrMalformedHeader = errors.New("malformed block header")

const (
	stateRootFieldIndex   = 3
	blockNumberFieldIndex = 8
	minHeaderFields       = 9
)

// BlockHeader is the narrow view of a parsed header. Hash is the Keccak256
// of the raw bytes, which must match the chain's own hash for Number.
type BlockHeader struct {
	Number    *big.Int
	StateRoot common.Hash
	Hash      common.Hash
}

// Parse decodes raw header bytes. The 4th field is the state root and the
// 9th is the block number; everything else is skipped.
func Parse(raw []byte) (*BlockHeader, error) {
	stream := rlp.NewStream(bytes.NewReader(raw), uint64(len(raw)))
	if _, err := stream.List(); err != nil {
		return nil, ErrMalformedHeader
	}

	fields := make([][]byte, 0, minHeaderFields)
	for i := 0; i < minHeaderFields; i++ {
		field, err := stream.Bytes()
		if err != nil {
			return nil, ErrMalformedHeader
		}
		fields = append(fields, field)
	}

	stateRoot := fields[stateRootFieldIndex]
	if len(stateRoot) != common.HashLength {
		return nil, ErrMalformedHeader
	}

	return &BlockHeader{
		Number:    new(big.Int).SetBytes(fields[blockNumberFieldIndex]),
		StateRoot: common.BytesToHash(stateRoot),
		Hash:      crypto.Keccak256Hash(raw),
	}, nil
}
