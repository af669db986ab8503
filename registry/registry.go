// Package registry owns all persisted inheritance state and drives the
// configure → mark-inactive → claim lifecycle. Each operation runs to
// completion against the store; multi-record effects commit through one
// db transaction so a rejection never leaves partial state behind.
package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/celer-network/go-inheritance/chain"
	"github.com/celer-network/go-inheritance/db"
	"github.com/celer-network/go-inheritance/header"
	"github.com/celer-network/go-inheritance/log"
	"github.com/celer-network/go-inheritance/proof"
	"github.com/celer-network/go-inheritance/types"
)

var claimedMarker = []byte{1}

type Registry struct {
	db         db.DB
	chain      chain.Reader
	serializer *types.Serializer
	logger     *log.Logger

	configuredFeed event.Feed
	markedFeed     event.Feed
	claimedFeed    event.Feed
	scope          event.SubscriptionScope
}

func New(database db.DB, reader chain.Reader) (*Registry, error) {
	serializer, err := types.NewSerializer()
	if err != nil {
		return nil, err
	}
	return &Registry{
		db:         database,
		chain:      reader,
		serializer: serializer,
		logger:     log.NewLogger("registry"),
	}, nil
}

// Close unsubscribes all event listeners. The db is owned by the caller.
func (r *Registry) Close() {
	r.scope.Close()
}

// Configure writes or overwrites the account's inheritance setup. The caller
// must be the account itself or its authorized signer.
func (r *Registry) Configure(caller, account, inheritor common.Address, period *big.Int) error {
	if err := r.checkManager(caller, account); err != nil {
		return err
	}
	if inheritor == (common.Address{}) || inheritor == account {
		return ErrInvalidInheritor
	}
	if period == nil || period.Sign() <= 0 {
		return ErrInvalidPeriod
	}

	config := &types.InheritanceConfiguration{
		Inheritor:        inheritor,
		InactivityPeriod: new(big.Int).Set(period),
		Active:           true,
	}
	data, err := config.Serialize(r.serializer)
	if err != nil {
		return err
	}
	if err := r.db.Set(db.NamespaceConfiguration, account.Bytes(), data); err != nil {
		return err
	}

	r.logger.Info().Str("account", account.Hex()).Str("inheritor", inheritor.Hex()).
		Str("period", period.String()).Msg("Inheritance configured")
	r.configuredFeed.Send(ConfiguredEvent{
		Account:          account,
		Inheritor:        inheritor,
		InactivityPeriod: new(big.Int).Set(period),
	})
	return nil
}

// Revoke clears the configuration and any inactivity record. A claimed
// account is terminal: revoking it would orphan the authorized-signer
// handover, so it is rejected.
func (r *Registry) Revoke(caller, account common.Address) error {
	if err := r.checkManager(caller, account); err != nil {
		return err
	}
	claimed, err := r.IsClaimed(account)
	if err != nil {
		return err
	}
	if claimed {
		return ErrInheritanceAlreadyClaimed
	}

	tx := r.db.NewTx()
	if err := tx.Delete(db.NamespaceConfiguration, account.Bytes()); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Delete(db.NamespaceInactivityRecord, account.Bytes()); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info().Str("account", account.Hex()).Msg("Inheritance revoked")
	return nil
}

// AuthorizeSigner names a delegate treated as equivalent to the caller's own
// account for Configure and Revoke. It never affects who may claim. The zero
// address clears the delegation.
func (r *Registry) AuthorizeSigner(caller, signer common.Address) error {
	if signer == (common.Address{}) {
		return r.db.Delete(db.NamespaceAuthorizedSigner, caller.Bytes())
	}
	return r.db.Set(db.NamespaceAuthorizedSigner, caller.Bytes(), signer.Bytes())
}

// MarkInactivityStart starts (or restarts) the dormancy clock for account.
// It is deliberately permissionless: any observer with a verifiable header
// and state proof may call it. Re-marking an unclaimed account overwrites
// the previous record and resets the clock.
func (r *Registry) MarkInactivityStart(
	ctx context.Context,
	account common.Address,
	headerBytes []byte,
	state *types.AccountState,
	prf *types.Proof,
) error {
	config, exists, err := r.configuration(account)
	if err != nil {
		return err
	}
	if !exists || !config.Active {
		return ErrInheritanceNotConfigured
	}
	claimed, err := r.IsClaimed(account)
	if err != nil {
		return err
	}
	if claimed {
		return ErrInheritanceAlreadyClaimed
	}

	parsed, err := header.Parse(headerBytes)
	if err != nil {
		return err
	}
	if !chain.VerifyBlockHash(ctx, r.chain, parsed.Number, parsed.Hash) {
		return ErrInvalidBlockHash
	}
	if !proof.Verify(account, parsed.StateRoot, state, prf) {
		return ErrInvalidStateProof
	}

	record := &types.InactivityRecord{
		StartBlock: new(big.Int).Set(parsed.Number),
		StartNonce: new(big.Int).SetUint64(state.Nonce),
		Marked:     true,
	}
	data, err := record.Serialize(r.serializer)
	if err != nil {
		return err
	}
	if err := r.db.Set(db.NamespaceInactivityRecord, account.Bytes(), data); err != nil {
		return err
	}

	r.logger.Info().Str("account", account.Hex()).Str("block", parsed.Number.String()).
		Uint64("nonce", state.Nonce).Msg("Inactivity start marked")
	r.markedFeed.Send(InactivityMarkedEvent{
		Account:     account,
		BlockNumber: new(big.Int).Set(parsed.Number),
		Nonce:       state.Nonce,
		Balance:     new(big.Int).Set(state.Balance),
	})
	return nil
}

// Claim transfers authority over account to its configured inheritor, after
// re-verifying dormancy. The nonce is the single activity signal: balance is
// deliberately never compared, since anyone can change a balance by sending
// value to the dormant account.
func (r *Registry) Claim(
	ctx context.Context,
	caller, account common.Address,
	headerBytes []byte,
	state *types.AccountState,
	prf *types.Proof,
) error {
	config, exists, err := r.configuration(account)
	if err != nil {
		return err
	}
	if !exists || !config.Active {
		return ErrInheritanceNotConfigured
	}
	if caller != config.Inheritor {
		return ErrUnauthorizedCaller
	}

	claimed, err := r.IsClaimed(account)
	if err != nil {
		return err
	}
	if claimed {
		return ErrInheritanceAlreadyClaimed
	}

	record, exists, err := r.inactivityRecord(account)
	if err != nil {
		return err
	}
	if !exists || !record.Marked {
		return ErrInactivityNotMarked
	}

	current, err := r.chain.BlockNumber(ctx)
	if err != nil {
		return err
	}
	deadline := new(big.Int).Add(record.StartBlock, config.InactivityPeriod)
	if current.Cmp(deadline) < 0 {
		return ErrInactivityPeriodNotMet
	}

	parsed, err := header.Parse(headerBytes)
	if err != nil {
		return err
	}
	if !chain.VerifyBlockHash(ctx, r.chain, parsed.Number, parsed.Hash) {
		return ErrInvalidBlockHash
	}
	if !proof.Verify(account, parsed.StateRoot, state, prf) {
		return ErrInvalidStateProof
	}
	if new(big.Int).SetUint64(state.Nonce).Cmp(record.StartNonce) != 0 {
		return ErrAccountStillActive
	}

	tx := r.db.NewTx()
	if err := tx.Set(db.NamespaceClaimedFlag, account.Bytes(), claimedMarker); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Set(db.NamespaceAuthorizedSigner, account.Bytes(), config.Inheritor.Bytes()); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info().Str("account", account.Hex()).Str("inheritor", config.Inheritor.Hex()).
		Msg("Inheritance claimed")
	r.claimedFeed.Send(ClaimedEvent{Account: account, Inheritor: config.Inheritor})
	return nil
}

// GetConfiguration returns the stored configuration, or nil if none exists.
func (r *Registry) GetConfiguration(account common.Address) (*types.InheritanceConfiguration, error) {
	config, exists, err := r.configuration(account)
	if err != nil || !exists {
		return nil, err
	}
	return config, nil
}

// GetInactivityRecord returns the stored record, or nil if none exists.
func (r *Registry) GetInactivityRecord(account common.Address) (*types.InactivityRecord, error) {
	record, exists, err := r.inactivityRecord(account)
	if err != nil || !exists {
		return nil, err
	}
	return record, nil
}

func (r *Registry) IsClaimed(account common.Address) (bool, error) {
	return r.db.Exist(db.NamespaceClaimedFlag, account.Bytes())
}

// AuthorizedSigner returns who currently controls configuration for account.
// After a claim this is the inheritor, and it is what the delegation
// forwarder consults.
func (r *Registry) AuthorizedSigner(account common.Address) (common.Address, bool, error) {
	data, exists, err := r.db.Get(db.NamespaceAuthorizedSigner, account.Bytes())
	if err != nil || !exists {
		return common.Address{}, false, err
	}
	return common.BytesToAddress(data), true, nil
}

// ClaimStatus is the read-only answer to "could the inheritor claim now".
type ClaimStatus struct {
	CanClaim        bool
	BlocksRemaining *big.Int
	Inheritor       common.Address
	IsConfigured    bool
}

// CanClaim evaluates claimability without verifying any proof: it only
// checks configuration, marking and elapsed blocks. A true answer still
// requires a fresh header and state proof to actually claim. When the clock
// has not been started, BlocksRemaining reports the full period.
func (r *Registry) CanClaim(ctx context.Context, account common.Address) (*ClaimStatus, error) {
	status := &ClaimStatus{BlocksRemaining: new(big.Int)}

	config, exists, err := r.configuration(account)
	if err != nil {
		return nil, err
	}
	if !exists || !config.Active {
		return status, nil
	}
	status.IsConfigured = true
	status.Inheritor = config.Inheritor

	claimed, err := r.IsClaimed(account)
	if err != nil {
		return nil, err
	}
	if claimed {
		return status, nil
	}

	record, exists, err := r.inactivityRecord(account)
	if err != nil {
		return nil, err
	}
	if !exists || !record.Marked {
		status.BlocksRemaining.Set(config.InactivityPeriod)
		return status, nil
	}

	current, err := r.chain.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	deadline := new(big.Int).Add(record.StartBlock, config.InactivityPeriod)
	if current.Cmp(deadline) >= 0 {
		status.CanClaim = true
	} else {
		status.BlocksRemaining.Sub(deadline, current)
	}
	return status, nil
}

func (r *Registry) checkManager(caller, account common.Address) error {
	if caller == account {
		return nil
	}
	signer, exists, err := r.AuthorizedSigner(account)
	if err != nil {
		return err
	}
	if exists && signer == caller {
		return nil
	}
	return ErrUnauthorizedCaller
}

func (r *Registry) configuration(account common.Address) (*types.InheritanceConfiguration, bool, error) {
	data, exists, err := r.db.Get(db.NamespaceConfiguration, account.Bytes())
	if err != nil || !exists {
		return nil, false, err
	}
	config, err := r.serializer.DeserializeConfiguration(data)
	if err != nil {
		return nil, false, err
	}
	return config, true, nil
}

func (r *Registry) inactivityRecord(account common.Address) (*types.InactivityRecord, bool, error) {
	data, exists, err := r.db.Get(db.NamespaceInactivityRecord, account.Bytes())
	if err != nil || !exists {
		return nil, false, err
	}
	record, err := r.serializer.DeserializeInactivityRecord(data)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}
