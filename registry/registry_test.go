package registry

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/celer-network/go-inheritance/chain"
	"github.com/celer-network/go-inheritance/db/memorydb"
	"github.com/celer-network/go-inheritance/header"
	"github.com/celer-network/go-inheritance/types"
)

var (
	account   = common.HexToAddress("0x318b2e1e3b5b2d1a1a2c0b1f7e1d9f1e5a4b3c2d")
	inheritor = common.HexToAddress("0xd5B478483B65B8987A2ee5B14a56E1ff0E1B91b8")
	delegate  = common.HexToAddress("0x47e9Fbef8C83A1714F1951F142132E6e90F5fa5D")
	stranger  = common.HexToAddress("0x9aD1a6b8B57de01f1B8e8a23f0fC4eB8eEaB3b5b")

	inactivityPeriod = big.NewInt(1314000)
	dormantBalance   = new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
)

type fakeReader struct {
	current *big.Int
	hashes  map[uint64]common.Hash
}

func (r *fakeReader) BlockNumber(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(r.current), nil
}

func (r *fakeReader) BlockHash(ctx context.Context, number *big.Int) (common.Hash, error) {
	age := new(big.Int).Sub(r.current, number)
	if age.Sign() <= 0 || age.Cmp(big.NewInt(chain.HashRetentionWindow)) > 0 {
		return common.Hash{}, nil
	}
	return r.hashes[number.Uint64()], nil
}

var _ chain.Reader = (*fakeReader)(nil)

type testEnv struct {
	registry *Registry
	reader   *fakeReader
}

func newTestEnv(t *testing.T) *testEnv {
	reader := &fakeReader{
		current: big.NewInt(1100),
		hashes:  make(map[uint64]common.Hash),
	}
	reg, err := New(memorydb.NewDB(), reader)
	require.NoError(t, err)
	return &testEnv{registry: reg, reader: reader}
}

func dormantState(nonce uint64, balance *big.Int) *types.AccountState {
	return &types.AccountState{
		Nonce:       nonce,
		Balance:     new(big.Int).Set(balance),
		StorageHash: common.HexToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"),
		CodeHash:    common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
	}
}

// singleLeafRoot is the state root of the one-account tree, matching the
// verifier's single-leaf convention.
func singleLeafRoot(t *testing.T, acct common.Address, state *types.AccountState) common.Hash {
	encoded, err := state.EncodeForLeaf()
	require.NoError(t, err)
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(encoded)
	leafValue := hasher.Sum(nil)
	hasher.Reset()
	hasher.Write(crypto.Keccak256(acct.Bytes()))
	hasher.Write(leafValue)
	return common.BytesToHash(hasher.Sum(nil))
}

// sealHeader builds raw header bytes for the given block and registers the
// header hash with the fake environment.
func (env *testEnv) sealHeader(t *testing.T, number int64, root common.Hash) []byte {
	h := &ethtypes.Header{
		Root:       root,
		Number:     big.NewInt(number),
		Difficulty: big.NewInt(1),
		GasLimit:   8000000,
		Time:       1600000000 + uint64(number),
	}
	raw, err := rlp.EncodeToBytes(h)
	require.NoError(t, err)
	env.reader.hashes[uint64(number)] = h.Hash()
	return raw
}

func (env *testEnv) configure(t *testing.T) {
	require.NoError(t, env.registry.Configure(account, account, inheritor, inactivityPeriod))
}

func (env *testEnv) mark(t *testing.T, state *types.AccountState) {
	raw := env.sealHeader(t, 1000, singleLeafRoot(t, account, state))
	require.NoError(t, env.registry.MarkInactivityStart(context.Background(), account, raw,
		state, &types.Proof{Kind: types.ProofKindBinaryMerkle}))
}

func TestConfigureValidation(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, ErrInvalidInheritor,
		env.registry.Configure(account, account, common.Address{}, inactivityPeriod))
	assert.Equal(t, ErrInvalidInheritor,
		env.registry.Configure(account, account, account, inactivityPeriod))
	assert.Equal(t, ErrInvalidPeriod,
		env.registry.Configure(account, account, inheritor, big.NewInt(0)))
	assert.Equal(t, ErrUnauthorizedCaller,
		env.registry.Configure(stranger, account, inheritor, inactivityPeriod))

	assert.NoError(t, env.registry.Configure(account, account, inheritor, inactivityPeriod))
	config, err := env.registry.GetConfiguration(account)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, inheritor, config.Inheritor)
	assert.True(t, config.Active)
}

func TestAuthorizeSignerDelegation(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.registry.AuthorizeSigner(account, delegate))
	assert.NoError(t, env.registry.Configure(delegate, account, inheritor, inactivityPeriod))
	assert.Equal(t, ErrUnauthorizedCaller,
		env.registry.Configure(stranger, account, inheritor, inactivityPeriod))

	// clearing the delegation removes the privilege
	require.NoError(t, env.registry.AuthorizeSigner(account, common.Address{}))
	assert.Equal(t, ErrUnauthorizedCaller,
		env.registry.Configure(delegate, account, inheritor, inactivityPeriod))
}

func TestMarkRequiresConfiguration(t *testing.T) {
	env := newTestEnv(t)
	state := dormantState(42, dormantBalance)
	raw := env.sealHeader(t, 1000, singleLeafRoot(t, account, state))

	err := env.registry.MarkInactivityStart(context.Background(), account, raw,
		state, &types.Proof{Kind: types.ProofKindBinaryMerkle})
	assert.Equal(t, ErrInheritanceNotConfigured, err)
}

func TestMarkRejections(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	state := dormantState(42, dormantBalance)
	ctx := context.Background()
	prf := &types.Proof{Kind: types.ProofKindBinaryMerkle}

	// malformed header bytes
	err := env.registry.MarkInactivityStart(ctx, account, []byte{0x01, 0x02}, state, prf)
	assert.Equal(t, header.ErrMalformedHeader, err)

	// header for a block the environment has not sealed
	h := &ethtypes.Header{Root: singleLeafRoot(t, account, state), Number: big.NewInt(1050), Difficulty: big.NewInt(1)}
	raw, err := rlp.EncodeToBytes(h)
	require.NoError(t, err)
	err = env.registry.MarkInactivityStart(ctx, account, raw, state, prf)
	assert.Equal(t, ErrInvalidBlockHash, err)

	// future block
	future := env.sealHeader(t, 5000, singleLeafRoot(t, account, state))
	err = env.registry.MarkInactivityStart(ctx, account, future, state, prf)
	assert.Equal(t, ErrInvalidBlockHash, err)

	// valid header, proof for a different tuple
	valid := env.sealHeader(t, 1000, singleLeafRoot(t, account, state))
	wrongState := dormantState(43, dormantBalance)
	err = env.registry.MarkInactivityStart(ctx, account, valid, wrongState, prf)
	assert.Equal(t, ErrInvalidStateProof, err)
}

func TestMarkAndClaimScenario(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	ctx := context.Background()

	marked := dormantState(42, dormantBalance)
	env.mark(t, marked)

	record, err := env.registry.GetInactivityRecord(account)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Zero(t, record.StartBlock.Cmp(big.NewInt(1000)))
	assert.Zero(t, record.StartNonce.Cmp(big.NewInt(42)))
	assert.True(t, record.Marked)

	// half the period elapsed
	env.reader.current = new(big.Int).Add(big.NewInt(1000), new(big.Int).Div(inactivityPeriod, big.NewInt(2)))
	stale := dormantState(42, dormantBalance)
	staleHeader := env.sealHeader(t, env.reader.current.Int64()-1, singleLeafRoot(t, account, stale))
	err = env.registry.Claim(ctx, inheritor, account, staleHeader, stale, &types.Proof{Kind: types.ProofKindBinaryMerkle})
	assert.Equal(t, ErrInactivityPeriodNotMet, err)

	status, err := env.registry.CanClaim(ctx, account)
	require.NoError(t, err)
	assert.False(t, status.CanClaim)
	assert.True(t, status.IsConfigured)
	assert.Equal(t, inheritor, status.Inheritor)
	assert.True(t, status.BlocksRemaining.Sign() > 0)

	// full period elapsed, balance changed in the meantime (incoming
	// transfers must not grief the claim)
	env.reader.current = new(big.Int).Add(big.NewInt(1001), inactivityPeriod)
	fresh := dormantState(42, new(big.Int).Add(dormantBalance, big.NewInt(777)))
	freshHeader := env.sealHeader(t, env.reader.current.Int64()-1, singleLeafRoot(t, account, fresh))

	claimedCh := make(chan ClaimedEvent, 1)
	sub := env.registry.SubscribeClaimed(claimedCh)
	defer sub.Unsubscribe()

	require.NoError(t, env.registry.Claim(ctx, inheritor, account, freshHeader, fresh,
		&types.Proof{Kind: types.ProofKindBinaryMerkle}))

	claimed, err := env.registry.IsClaimed(account)
	require.NoError(t, err)
	assert.True(t, claimed)

	signer, exists, err := env.registry.AuthorizedSigner(account)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, inheritor, signer)

	event := <-claimedCh
	assert.Equal(t, account, event.Account)
	assert.Equal(t, inheritor, event.Inheritor)

	status, err = env.registry.CanClaim(ctx, account)
	require.NoError(t, err)
	assert.False(t, status.CanClaim)
}

func TestClaimRejectsActiveAccount(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	ctx := context.Background()
	env.mark(t, dormantState(42, dormantBalance))

	env.reader.current = new(big.Int).Add(big.NewInt(1001), inactivityPeriod)
	active := dormantState(43, dormantBalance)
	raw := env.sealHeader(t, env.reader.current.Int64()-1, singleLeafRoot(t, account, active))

	err := env.registry.Claim(ctx, inheritor, account, raw, active,
		&types.Proof{Kind: types.ProofKindBinaryMerkle})
	assert.Equal(t, ErrAccountStillActive, err)

	claimed, _ := env.registry.IsClaimed(account)
	assert.False(t, claimed)
}

func TestClaimAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	state := dormantState(42, dormantBalance)
	raw := env.sealHeader(t, 1000, singleLeafRoot(t, account, state))
	prf := &types.Proof{Kind: types.ProofKindBinaryMerkle}

	err := env.registry.Claim(ctx, inheritor, account, raw, state, prf)
	assert.Equal(t, ErrInheritanceNotConfigured, err)

	env.configure(t)
	err = env.registry.Claim(ctx, stranger, account, raw, state, prf)
	assert.Equal(t, ErrUnauthorizedCaller, err)

	// the authorized signer manages configuration but can never claim
	require.NoError(t, env.registry.AuthorizeSigner(account, delegate))
	err = env.registry.Claim(ctx, delegate, account, raw, state, prf)
	assert.Equal(t, ErrUnauthorizedCaller, err)

	err = env.registry.Claim(ctx, inheritor, account, raw, state, prf)
	assert.Equal(t, ErrInactivityNotMarked, err)
}

func TestClaimOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	ctx := context.Background()
	env.mark(t, dormantState(42, dormantBalance))

	env.reader.current = new(big.Int).Add(big.NewInt(1001), inactivityPeriod)
	fresh := dormantState(42, dormantBalance)
	raw := env.sealHeader(t, env.reader.current.Int64()-1, singleLeafRoot(t, account, fresh))
	prf := &types.Proof{Kind: types.ProofKindBinaryMerkle}

	require.NoError(t, env.registry.Claim(ctx, inheritor, account, raw, fresh, prf))
	err := env.registry.Claim(ctx, inheritor, account, raw, fresh, prf)
	assert.Equal(t, ErrInheritanceAlreadyClaimed, err)
}

func TestReMarkResetsClock(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.mark(t, dormantState(42, dormantBalance))

	// later proof restarts the clock with a fresh nonce
	env.reader.current = big.NewInt(2100)
	state := dormantState(45, dormantBalance)
	raw := env.sealHeader(t, 2000, singleLeafRoot(t, account, state))
	require.NoError(t, env.registry.MarkInactivityStart(context.Background(), account, raw,
		state, &types.Proof{Kind: types.ProofKindBinaryMerkle}))

	record, err := env.registry.GetInactivityRecord(account)
	require.NoError(t, err)
	assert.Zero(t, record.StartBlock.Cmp(big.NewInt(2000)))
	assert.Zero(t, record.StartNonce.Cmp(big.NewInt(45)))
}

func TestMarkBlockedAfterClaim(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	ctx := context.Background()
	env.mark(t, dormantState(42, dormantBalance))

	env.reader.current = new(big.Int).Add(big.NewInt(1001), inactivityPeriod)
	fresh := dormantState(42, dormantBalance)
	raw := env.sealHeader(t, env.reader.current.Int64()-1, singleLeafRoot(t, account, fresh))
	require.NoError(t, env.registry.Claim(ctx, inheritor, account, raw, fresh,
		&types.Proof{Kind: types.ProofKindBinaryMerkle}))

	err := env.registry.MarkInactivityStart(ctx, account, raw, fresh,
		&types.Proof{Kind: types.ProofKindBinaryMerkle})
	assert.Equal(t, ErrInheritanceAlreadyClaimed, err)
}

func TestRevoke(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.mark(t, dormantState(42, dormantBalance))

	assert.Equal(t, ErrUnauthorizedCaller, env.registry.Revoke(stranger, account))
	require.NoError(t, env.registry.Revoke(account, account))

	config, err := env.registry.GetConfiguration(account)
	require.NoError(t, err)
	assert.Nil(t, config)
	record, err := env.registry.GetInactivityRecord(account)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRevokeBlockedAfterClaim(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	ctx := context.Background()
	env.mark(t, dormantState(42, dormantBalance))

	env.reader.current = new(big.Int).Add(big.NewInt(1001), inactivityPeriod)
	fresh := dormantState(42, dormantBalance)
	raw := env.sealHeader(t, env.reader.current.Int64()-1, singleLeafRoot(t, account, fresh))
	require.NoError(t, env.registry.Claim(ctx, inheritor, account, raw, fresh,
		&types.Proof{Kind: types.ProofKindBinaryMerkle}))

	assert.Equal(t, ErrInheritanceAlreadyClaimed, env.registry.Revoke(account, account))

	// the handover record survives
	signer, exists, err := env.registry.AuthorizedSigner(account)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, inheritor, signer)
}
