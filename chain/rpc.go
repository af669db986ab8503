package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RPCReader satisfies Reader over an Ethereum JSON-RPC endpoint. It applies
// the retention window itself so that verification against an archive node
// behaves the same as inside the execution environment.
type RPCReader struct {
	client *ethclient.Client
}

func NewRPCReader(client *ethclient.Client) *RPCReader {
	return &RPCReader{client: client}
}

func (reader *RPCReader) BlockNumber(ctx context.Context) (*big.Int, error) {
	head, err := reader.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	return head.Number, nil
}

func (reader *RPCReader) BlockHash(ctx context.Context, number *big.Int) (common.Hash, error) {
	head, err := reader.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, err
	}

	age := new(big.Int).Sub(head.Number, number)
	if age.Sign() <= 0 || age.Cmp(big.NewInt(HashRetentionWindow)) > 0 {
		return common.Hash{}, nil
	}

	h, err := reader.client.HeaderByNumber(ctx, number)
	if err == ethereum.NotFound {
		return common.Hash{}, nil
	}
	if err != nil {
		return common.Hash{}, err
	}
	return h.Hash(), nil
}
