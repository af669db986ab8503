package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// InheritanceConfiguration is the per-account inheritance setup. Invariants
// are enforced by the registry on write: Inheritor is non-zero and differs
// from the account, InactivityPeriod is positive.
type InheritanceConfiguration struct {
	Inheritor        common.Address
	InactivityPeriod *big.Int
	Active           bool
}

func createConfigurationArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "inheritor", Type: r.addressTy, Indexed: false},
		{Name: "inactivityPeriod", Type: r.uint256Ty, Indexed: false},
		{Name: "active", Type: r.boolTy, Indexed: false},
	})
}

func (config *InheritanceConfiguration) Serialize(s *Serializer) ([]byte, error) {
	data, err := s.configurationArguments.Pack(
		config.Inheritor,
		config.InactivityPeriod,
		config.Active,
	)
	if err != nil {
		return nil, fmt.Errorf("Serialize InheritanceConfiguration %v: %w", config, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeConfiguration(data []byte) (*InheritanceConfiguration, error) {
	var config InheritanceConfiguration
	err := s.configurationArguments.Unpack(&config, data)
	if err != nil {
		return nil, fmt.Errorf("Deserialize InheritanceConfiguration: %w", err)
	}
	return &config, nil
}
