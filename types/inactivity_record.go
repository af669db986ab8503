package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// InactivityRecord pins the start of an account's observed dormancy.
// StartNonce is the only activity signal consumed at claim time.
type InactivityRecord struct {
	StartBlock *big.Int
	StartNonce *big.Int
	Marked     bool
}

func createInactivityRecordArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "startBlock", Type: r.uint256Ty, Indexed: false},
		{Name: "startNonce", Type: r.uint256Ty, Indexed: false},
		{Name: "marked", Type: r.boolTy, Indexed: false},
	})
}

func (record *InactivityRecord) Serialize(s *Serializer) ([]byte, error) {
	data, err := s.inactivityRecordArguments.Pack(
		record.StartBlock,
		record.StartNonce,
		record.Marked,
	)
	if err != nil {
		return nil, fmt.Errorf("Serialize InactivityRecord %v: %w", record, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeInactivityRecord(data []byte) (*InactivityRecord, error) {
	var record InactivityRecord
	err := s.inactivityRecordArguments.Unpack(&record, data)
	if err != nil {
		return nil, fmt.Errorf("Deserialize InactivityRecord: %w", err)
	}
	return &record, nil
}
