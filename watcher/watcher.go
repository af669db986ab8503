// Package watcher is the permissionless observer side of the protocol: it
// follows new chain heads and reports tracked accounts whose inheritance
// has become claimable, so an inheritor (or any monitor) knows when to act.
package watcher

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/celer-network/go-inheritance/log"
	"github.com/celer-network/go-inheritance/registry"
)

// HeadSource delivers new chain heads. *ethclient.Client satisfies it.
type HeadSource interface {
	SubscribeNewHead(ctx context.Context, ch chan<- *ethtypes.Header) (ethereum.Subscription, error)
}

// ClaimableEvent reports that an account's inactivity period has elapsed.
type ClaimableEvent struct {
	Account   common.Address
	Inheritor common.Address
}

type Watcher struct {
	registry *registry.Registry
	heads    HeadSource
	logger   *log.Logger

	lock     sync.Mutex
	accounts map[common.Address]bool
	notified map[common.Address]bool

	claimableCh chan ClaimableEvent
	quit        chan struct{}
	stopOnce    sync.Once
}

func New(reg *registry.Registry, heads HeadSource) *Watcher {
	return &Watcher{
		registry:    reg,
		heads:       heads,
		logger:      log.NewLogger("watcher"),
		accounts:    make(map[common.Address]bool),
		notified:    make(map[common.Address]bool),
		claimableCh: make(chan ClaimableEvent, 16),
		quit:        make(chan struct{}),
	}
}

// Track adds an account to the watch set.
func (w *Watcher) Track(account common.Address) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.accounts[account] = true
}

// Untrack removes an account from the watch set.
func (w *Watcher) Untrack(account common.Address) {
	w.lock.Lock()
	defer w.lock.Unlock()
	delete(w.accounts, account)
	delete(w.notified, account)
}

// Claimable streams one event per tracked account when it becomes claimable.
func (w *Watcher) Claimable() <-chan ClaimableEvent {
	return w.claimableCh
}

// Start subscribes to new heads and blocks until the subscription fails,
// the context ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	headCh := make(chan *ethtypes.Header, 8)
	sub, err := w.heads.SubscribeNewHead(ctx, headCh)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	claimedCh := make(chan registry.ClaimedEvent, 8)
	claimedSub := w.registry.SubscribeClaimed(claimedCh)
	defer claimedSub.Unsubscribe()

	for {
		select {
		case head := <-headCh:
			w.checkAccounts(ctx, head)
		case claimed := <-claimedCh:
			w.logger.Info().Str("account", claimed.Account.Hex()).
				Str("inheritor", claimed.Inheritor.Hex()).Msg("Inheritance claimed, untracking")
			w.Untrack(claimed.Account)
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-w.quit:
			return nil
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
}

func (w *Watcher) checkAccounts(ctx context.Context, head *ethtypes.Header) {
	w.lock.Lock()
	accounts := make([]common.Address, 0, len(w.accounts))
	for account := range w.accounts {
		if !w.notified[account] {
			accounts = append(accounts, account)
		}
	}
	w.lock.Unlock()

	for _, account := range accounts {
		status, err := w.registry.CanClaim(ctx, account)
		if err != nil {
			w.logger.Error().Err(err).Str("account", account.Hex()).Msg("Fail to evaluate claim status")
			continue
		}
		if !status.CanClaim {
			if w.logger.IsDebugEnabled() {
				w.logger.Debug().Str("account", account.Hex()).Str("block", head.Number.String()).
					Str("blocksRemaining", status.BlocksRemaining.String()).Msg("Not claimable yet")
			}
			continue
		}

		w.logger.Info().Str("account", account.Hex()).Str("inheritor", status.Inheritor.Hex()).
			Str("block", head.Number.String()).Msg("Inheritance claimable")
		w.lock.Lock()
		w.notified[account] = true
		w.lock.Unlock()

		select {
		case w.claimableCh <- ClaimableEvent{Account: account, Inheritor: status.Inheritor}:
		default:
			// listener is behind, it can query CanClaim itself
		}
	}
}
