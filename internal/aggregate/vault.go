package aggregate

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/approve"
	"github.com/pinmine/pincli/internal/errclass"
	"github.com/pinmine/pincli/internal/facet"
	"github.com/pinmine/pincli/internal/gateway"
)

// VaultAggregator maintains the deposits/yield/auction view for one player
// and runs the vault-side mutations.
type VaultAggregator struct {
	gw     *gateway.Gateway
	signer gateway.Signer
	owner  common.Address

	mu      sync.RWMutex
	view    *Vault
	loading bool
}

// NewVault creates an aggregator for owner. signer may be nil for a
// read-only view.
func NewVault(gw *gateway.Gateway, signer gateway.Signer, owner common.Address) *VaultAggregator {
	return &VaultAggregator{gw: gw, signer: signer, owner: owner}
}

// View returns the last derived view and whether a refresh is running.
func (a *VaultAggregator) View() (*Vault, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view, a.loading
}

// Refresh re-reads the whole vault view in one batched multicall.
func (a *VaultAggregator) Refresh(ctx context.Context) (*Vault, error) {
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	}()

	results, err := a.gw.ReadBatch(ctx, []gateway.CallSpec{
		{Facet: facet.Data, Function: "sharesOf", Args: []interface{}{a.owner}},
		{Facet: facet.Data, Function: "claimableYield", Args: []interface{}{a.owner}},
		{Facet: facet.Data, Function: "totalDeposits"},
		{Facet: facet.Auction, Function: "auctionState"},
		{Facet: facet.PaymentToken, Function: "balanceOf", Args: []interface{}{a.owner}},
		{Facet: facet.GameToken, Function: "balanceOf", Args: []interface{}{a.owner}},
	})
	if err != nil {
		return nil, errclass.Wrap(err, &errclass.Context{Facet: "data", Function: "vault"})
	}

	view := &Vault{}
	for i, want := range []string{"sharesOf", "claimableYield", "totalDeposits"} {
		if !results[i].OK {
			return nil, errclass.Wrap(fmt.Errorf("vault read incomplete: %s", want), nil)
		}
	}
	if view.Shares, err = asBig(results[0].Values[0]); err != nil {
		return nil, err
	}
	if view.ClaimableYield, err = asBig(results[1].Values[0]); err != nil {
		return nil, err
	}
	if view.TotalDeposits, err = asBig(results[2].Values[0]); err != nil {
		return nil, err
	}

	// The auction is standalone and may be between lots; its failure does
	// not fail the view.
	if results[3].OK {
		price, err := asBig(results[3].Values[0])
		if err != nil {
			return nil, err
		}
		remaining, err := asBig(results[3].Values[1])
		if err != nil {
			return nil, err
		}
		endsAt, err := asUint64(results[3].Values[2])
		if err != nil {
			return nil, err
		}
		view.Auction = &AuctionState{Price: price, LotRemaining: remaining, EndsAt: endsAt}
	}

	if results[4].OK {
		if view.PaymentBalance, err = asBig(results[4].Values[0]); err != nil {
			return nil, err
		}
	}
	if results[5].OK {
		if view.GameBalance, err = asBig(results[5].Values[0]); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
	return view, nil
}

// Deposit approves the payment token when needed, deposits, and re-reads.
func (a *VaultAggregator) Deposit(ctx context.Context, amount *big.Int) (*gateway.WriteResult, error) {
	if a.signer == nil {
		return nil, ErrReadOnly
	}
	cctx := &errclass.Context{Facet: "vault", Function: "deposit"}

	err := approve.EnsureApproval(ctx, a.gw, a.signer, facet.PaymentToken, common.Address{}, a.gw.Book().Diamond, amount)
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}
	return a.write(ctx, facet.Vault, "deposit", cctx, amount)
}

// Withdraw pulls deposited tokens back out.
func (a *VaultAggregator) Withdraw(ctx context.Context, amount *big.Int) (*gateway.WriteResult, error) {
	return a.write(ctx, facet.Vault, "withdraw", &errclass.Context{Facet: "vault", Function: "withdraw"}, amount)
}

// Claim collects accrued yield.
func (a *VaultAggregator) Claim(ctx context.Context) (*gateway.WriteResult, error) {
	return a.write(ctx, facet.Vault, "claimYield", &errclass.Context{Facet: "vault", Function: "claimYield"})
}

// Vote casts a share-weighted vote on a proposal.
func (a *VaultAggregator) Vote(ctx context.Context, proposalID *big.Int, support bool) (*gateway.WriteResult, error) {
	return a.write(ctx, facet.Governance, "vote", &errclass.Context{Facet: "governance", Function: "vote"}, proposalID, support)
}

// Bid buys from the Dutch auction at the current price, approving the
// payment token for the auction house first.
func (a *VaultAggregator) Bid(ctx context.Context, amount *big.Int) (*gateway.WriteResult, error) {
	if a.signer == nil {
		return nil, ErrReadOnly
	}
	cctx := &errclass.Context{Facet: "auction", Function: "bid"}

	auctionAddr, err := facet.Auction.Resolve(a.gw.Book(), common.Address{})
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}
	err = approve.EnsureApproval(ctx, a.gw, a.signer, facet.PaymentToken, common.Address{}, auctionAddr, amount)
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}
	return a.write(ctx, facet.Auction, "bid", cctx, amount)
}

// FlashLoan borrows from the vault for the duration of one transaction.
func (a *VaultAggregator) FlashLoan(ctx context.Context, receiver common.Address, amount *big.Int, data []byte) (*gateway.WriteResult, error) {
	return a.write(ctx, facet.Vault, "flashLoan", &errclass.Context{Facet: "vault", Function: "flashLoan"}, receiver, amount, data)
}

func (a *VaultAggregator) write(ctx context.Context, f facet.Facet, fn string, cctx *errclass.Context, args ...interface{}) (*gateway.WriteResult, error) {
	if a.signer == nil {
		return nil, ErrReadOnly
	}
	res, err := a.gw.Write(ctx, gateway.CallSpec{Facet: f, Function: fn, Args: args}, a.signer)
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}
	a.Refresh(ctx) //nolint:errcheck // stale view self-heals on the next poll
	return res, nil
}
