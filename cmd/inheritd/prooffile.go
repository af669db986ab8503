package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/celer-network/go-inheritance/types"
)

// proofFile is the JSON shape produced by eth_getProof plus the proof kind.
type proofFile struct {
	Nonce       uint64   `json:"nonce"`
	Balance     string   `json:"balance"`
	StorageHash string   `json:"storageHash"`
	CodeHash    string   `json:"codeHash"`
	Kind        string   `json:"kind"`
	Nodes       []string `json:"nodes"`
}

func loadHeaderFile(path string) ([]byte, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := common.FromHex(strings.TrimSpace(string(data)))
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s holds no header bytes", path)
	}
	return raw, nil
}

func loadProofFile(path string) (*types.AccountState, *types.Proof, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var pf proofFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	balance, ok := new(big.Int).SetString(strings.TrimPrefix(pf.Balance, "0x"), 16)
	if !ok {
		balance, ok = new(big.Int).SetString(pf.Balance, 10)
	}
	if !ok {
		return nil, nil, fmt.Errorf("invalid balance %q", pf.Balance)
	}
	state := &types.AccountState{
		Nonce:       pf.Nonce,
		Balance:     balance,
		StorageHash: common.HexToHash(pf.StorageHash),
		CodeHash:    common.HexToHash(pf.CodeHash),
	}

	var kind types.ProofKind
	switch strings.ToLower(pf.Kind) {
	case "trie":
		kind = types.ProofKindTrie
	case "merkle", "binary-merkle":
		kind = types.ProofKindBinaryMerkle
	case "", "auto":
		kind = types.ProofKindAuto
	default:
		return nil, nil, fmt.Errorf("unknown proof kind %q", pf.Kind)
	}
	nodes := make([][]byte, len(pf.Nodes))
	for i, node := range pf.Nodes {
		nodes[i] = common.FromHex(node)
	}
	return state, &types.Proof{Kind: kind, Nodes: nodes}, nil
}
