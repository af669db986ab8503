package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// ConfiguredEvent is emitted when an account (re)configures inheritance.
type ConfiguredEvent struct {
	Account          common.Address
	Inheritor        common.Address
	InactivityPeriod *big.Int
}

// InactivityMarkedEvent is emitted when a dormancy clock starts. Balance is
// informational only; it never participates in claim checks.
type InactivityMarkedEvent struct {
	Account     common.Address
	BlockNumber *big.Int
	Nonce       uint64
	Balance     *big.Int
}

// ClaimedEvent is emitted exactly once per account, when authority transfers
// to the inheritor.
type ClaimedEvent struct {
	Account   common.Address
	Inheritor common.Address
}

// SubscribeConfigured streams ConfiguredEvent to ch until unsubscribed.
func (r *Registry) SubscribeConfigured(ch chan<- ConfiguredEvent) event.Subscription {
	return r.scope.Track(r.configuredFeed.Subscribe(ch))
}

// SubscribeInactivityMarked streams InactivityMarkedEvent to ch.
func (r *Registry) SubscribeInactivityMarked(ch chan<- InactivityMarkedEvent) event.Subscription {
	return r.scope.Track(r.markedFeed.Subscribe(ch))
}

// SubscribeClaimed streams ClaimedEvent to ch.
func (r *Registry) SubscribeClaimed(ch chan<- ClaimedEvent) event.Subscription {
	return r.scope.Track(r.claimedFeed.Subscribe(ch))
}
