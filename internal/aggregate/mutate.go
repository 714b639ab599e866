package aggregate

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/approve"
	"github.com/pinmine/pincli/internal/errclass"
	"github.com/pinmine/pincli/internal/facet"
	"github.com/pinmine/pincli/internal/gateway"
)

// ErrReadOnly is returned by mutators on an aggregator built without a signer.
var ErrReadOnly = errors.New("no signing wallet — connect one to act")

// Buy purchases one unit of a flair type, topping up the payment-token
// approval first when needed, then re-reads the view.
func (a *CollectionAggregator) Buy(ctx context.Context, typeID *big.Int, price *big.Int) (*gateway.WriteResult, error) {
	if a.signer == nil {
		return nil, ErrReadOnly
	}
	cctx := &errclass.Context{Facet: "flair", Function: "buyFlair"}

	err := approve.EnsureApproval(ctx, a.gw, a.signer, facet.PaymentToken, common.Address{}, a.gw.Book().Diamond, price)
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}

	res, err := a.gw.Write(ctx, gateway.CallSpec{
		Facet:    facet.Flair,
		Function: "buyFlair",
		Args:     []interface{}{typeID},
	}, a.signer)
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}

	a.Refresh(ctx) //nolint:errcheck // stale view self-heals on the next poll
	return res, nil
}

// Equip moves a flair into a slot. Equipping transfers the item into the
// pool's custody, which needs operator approval on the multi-token standard.
func (a *CollectionAggregator) Equip(ctx context.Context, typeID *big.Int, slot uint8) (*gateway.WriteResult, error) {
	return a.mutate(ctx, "equipFlair", true, typeID, slot)
}

// Unequip clears a slot, returning the item to the wallet.
func (a *CollectionAggregator) Unequip(ctx context.Context, slot uint8) (*gateway.WriteResult, error) {
	return a.mutate(ctx, "unequipFlair", false, slot)
}

// Fuse combines two flair types into a new one. Both inputs are burned,
// which needs operator approval.
func (a *CollectionAggregator) Fuse(ctx context.Context, typeA, typeB *big.Int) (*gateway.WriteResult, error) {
	return a.mutate(ctx, "fuseFlair", true, typeA, typeB)
}

func (a *CollectionAggregator) mutate(ctx context.Context, fn string, needsOperator bool, args ...interface{}) (*gateway.WriteResult, error) {
	if a.signer == nil {
		return nil, ErrReadOnly
	}
	cctx := &errclass.Context{Facet: "flair", Function: fn}

	if needsOperator {
		if err := a.ensureOperator(ctx); err != nil {
			return nil, errclass.Wrap(err, cctx)
		}
	}

	res, err := a.gw.Write(ctx, gateway.CallSpec{
		Facet:    facet.Flair,
		Function: fn,
		Args:     args,
	}, a.signer)
	if err != nil {
		return nil, errclass.Wrap(err, cctx)
	}

	a.Refresh(ctx) //nolint:errcheck
	return res, nil
}

// ensureOperator grants the pool operator rights when missing, waiting two
// confirmations — the immediately following transaction depends on the
// approval being visible to the node serving it.
func (a *CollectionAggregator) ensureOperator(ctx context.Context) error {
	operator := a.gw.Book().Diamond

	out, err := a.gw.Read(ctx, gateway.CallSpec{
		Facet:    facet.Flair,
		Function: "isApprovedForAll",
		Args:     []interface{}{a.owner, operator},
	})
	if err != nil {
		return err
	}
	if approved, ok := out[0].(bool); ok && approved {
		return nil
	}

	res, err := a.gw.Write(ctx, gateway.CallSpec{
		Facet:    facet.Flair,
		Function: "setApprovalForAll",
		Args:     []interface{}{operator, true},
	}, a.signer)
	if err != nil {
		return err
	}

	_, err = a.gw.Client().WaitConfirmations(ctx, res.TxHash, operatorConfirmations)
	return err
}
