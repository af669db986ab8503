package types

import "github.com/ethereum/go-ethereum/accounts/abi"

// Serializer packs and unpacks the persisted registry records. The layouts
// are plain ABI tuples so external consumers of getConfiguration and
// isClaimed can decode them without custom tooling.
type Serializer struct {
	typeRegistry             *typeRegistry
	configurationArguments   abi.Arguments
	inactivityRecordArguments abi.Arguments
}

func NewSerializer() (*Serializer, error) {
	typeRegistry, err := newTypeRegistry()
	if err != nil {
		return nil, err
	}
	return &Serializer{
		typeRegistry:              typeRegistry,
		configurationArguments:    createConfigurationArguments(typeRegistry),
		inactivityRecordArguments: createInactivityRecordArguments(typeRegistry),
	}, nil
}
