package types

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

type typeRegistry struct {
	addressTy abi.Type
	uint256Ty abi.Type
	boolTy    abi.Type
}

func newTypeRegistry() (*typeRegistry, error) {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}
	boolTy, err := abi.NewType("bool", "", nil)
	if err != nil {
		return nil, err
	}
	return &typeRegistry{
		addressTy: addressTy,
		uint256Ty: uint256Ty,
		boolTy:    boolTy,
	}, nil
}
