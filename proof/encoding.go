package proof

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
)

// terminatorNibble flags the end of a leaf key in hex-nibble form.
const terminatorNibble = 16

// splitList returns the raw RLP items of a list, header bytes included.
func splitList(buf []byte) ([][]byte, error) {
	stream := rlp.NewStream(bytes.NewReader(buf), uint64(len(buf)))
	if _, err := stream.List(); err != nil {
		return nil, err
	}
	var elems [][]byte
	for {
		raw, err := stream.Raw()
		if err == rlp.EOL {
			break
		}
		if err != nil {
			return nil, err
		}
		elems = append(elems, raw)
	}
	return elems, nil
}

// stringPayload decodes a raw RLP byte string and returns its payload. It
// errors for list items, which doubles as the string/list discriminator.
func stringPayload(raw []byte) ([]byte, error) {
	var payload []byte
	if err := rlp.DecodeBytes(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func isListItem(raw []byte) bool {
	return len(raw) > 0 && raw[0] >= 0xc0
}

// keybytesToHex turns key bytes into nibbles with a trailing terminator.
func keybytesToHex(str []byte) []byte {
	l := len(str)*2 + 1
	nibbles := make([]byte, l)
	for i, b := range str {
		nibbles[i*2] = b / 16
		nibbles[i*2+1] = b % 16
	}
	nibbles[l-1] = terminatorNibble
	return nibbles
}

// compactToHex expands hex-prefix encoded node keys. Leaf keys keep their
// terminator nibble so they line up with keybytesToHex output.
func compactToHex(compact []byte) []byte {
	if len(compact) == 0 {
		return compact
	}
	base := keybytesToHex(compact)
	// delete terminator flag
	if base[0] < 2 {
		base = base[:len(base)-1]
	}
	// apply odd flag
	chop := 2 - base[0]&1
	return base[chop:]
}

// hexToCompact is the inverse of compactToHex.
func hexToCompact(hex []byte) []byte {
	terminator := byte(0)
	if len(hex) > 0 && hex[len(hex)-1] == terminatorNibble {
		terminator = 1
		hex = hex[:len(hex)-1]
	}
	buf := make([]byte, len(hex)/2+1)
	buf[0] = terminator << 5 // the flag byte
	if len(hex)&1 == 1 {
		buf[0] |= 1 << 4 // odd flag
		buf[0] |= hex[0] // first nibble is contained in the first byte
		hex = hex[1:]
	}
	for bi, ni := 1, 0; ni < len(hex); bi, ni = bi+1, ni+2 {
		buf[bi] = hex[ni]<<4 | hex[ni+1]
	}
	return buf
}
