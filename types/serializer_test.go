package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationRoundtrip(t *testing.T) {
	s, err := NewSerializer()
	require.NoError(t, err)

	config := &InheritanceConfiguration{
		Inheritor:        common.HexToAddress("0xd5B478483B65B8987A2ee5B14a56E1ff0E1B91b8"),
		InactivityPeriod: big.NewInt(1314000),
		Active:           true,
	}
	data, err := config.Serialize(s)
	require.NoError(t, err)

	decoded, err := s.DeserializeConfiguration(data)
	require.NoError(t, err)
	assert.Equal(t, config.Inheritor, decoded.Inheritor)
	assert.Zero(t, config.InactivityPeriod.Cmp(decoded.InactivityPeriod))
	assert.True(t, decoded.Active)
}

func TestInactivityRecordRoundtrip(t *testing.T) {
	s, err := NewSerializer()
	require.NoError(t, err)

	record := &InactivityRecord{
		StartBlock: big.NewInt(1000),
		StartNonce: big.NewInt(42),
		Marked:     true,
	}
	data, err := record.Serialize(s)
	require.NoError(t, err)

	decoded, err := s.DeserializeInactivityRecord(data)
	require.NoError(t, err)
	assert.Zero(t, record.StartBlock.Cmp(decoded.StartBlock))
	assert.Zero(t, record.StartNonce.Cmp(decoded.StartNonce))
	assert.True(t, decoded.Marked)
}

func TestAccountStateLeafEncoding(t *testing.T) {
	state := &AccountState{
		Nonce:       42,
		Balance:     new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
		StorageHash: common.HexToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"),
		CodeHash:    common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
	}
	encoded, err := state.EncodeForLeaf()
	require.NoError(t, err)

	// leading-zero-trimmed integers, 32-byte hashes with their length tag
	assert.Contains(t, common.Bytes2Hex(encoded), "a056e81f17")

	var decoded AccountState
	require.NoError(t, rlp.DecodeBytes(encoded, &decoded))
	assert.Equal(t, state.Nonce, decoded.Nonce)
	assert.Zero(t, state.Balance.Cmp(decoded.Balance))
	assert.Equal(t, state.StorageHash, decoded.StorageHash)
	assert.Equal(t, state.CodeHash, decoded.CodeHash)

	// encoding commits to every field
	other := *state
	other.Nonce = 43
	otherEncoded, err := other.EncodeForLeaf()
	require.NoError(t, err)
	assert.NotEqual(t, encoded, otherEncoded)
}
