package aggregate

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/errclass"
	"github.com/pinmine/pincli/internal/facet"
	"github.com/pinmine/pincli/internal/gateway"
)

// operatorConfirmations is how many confirmations a fresh
// setApprovalForAll waits for before the dependent transaction is sent.
// Two, not one: the next call must see the approval on the node serving it.
const operatorConfirmations = 2

// CollectionAggregator maintains the pins-and-flair view for one player and
// runs the equip/buy/fuse mutations.
type CollectionAggregator struct {
	gw     *gateway.Gateway
	signer gateway.Signer
	owner  common.Address

	mu      sync.RWMutex
	view    *Collection
	loading bool
}

// NewCollection creates an aggregator for owner. signer may be nil for a
// read-only view; mutators then fail with a guidance error.
func NewCollection(gw *gateway.Gateway, signer gateway.Signer, owner common.Address) *CollectionAggregator {
	return &CollectionAggregator{gw: gw, signer: signer, owner: owner}
}

// View returns the last derived view and whether a refresh is running.
func (a *CollectionAggregator) View() (*Collection, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view, a.loading
}

// Refresh re-reads everything the collection view needs in two batched
// multicalls (the second depends on the flair-type count from the first)
// and derives a fresh view.
func (a *CollectionAggregator) Refresh(ctx context.Context) (*Collection, error) {
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	}()

	view, err := a.load(ctx)
	if err != nil {
		return nil, errclass.Wrap(err, &errclass.Context{Facet: "data", Function: "collection"})
	}

	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
	return view, nil
}

func (a *CollectionAggregator) load(ctx context.Context) (*Collection, error) {
	base, err := a.gw.ReadBatch(ctx, []gateway.CallSpec{
		{Facet: facet.Data, Function: "pinOf", Args: []interface{}{a.owner}},
		{Facet: facet.Data, Function: "equippedSlots", Args: []interface{}{a.owner}},
		{Facet: facet.Data, Function: "flairTypeCount"},
		{Facet: facet.Data, Function: "baseFeeRateBps"},
	})
	if err != nil {
		return nil, err
	}

	view := &Collection{}

	if base[0].OK {
		tokenID, err := asBig(base[0].Values[0])
		if err != nil {
			return nil, err
		}
		contentID, err := asString(base[0].Values[1])
		if err != nil {
			return nil, err
		}
		if tokenID.Sign() > 0 {
			view.Pin = &PinInfo{TokenID: tokenID, ContentID: contentID}
		}
	}

	if !base[1].OK || !base[2].OK || !base[3].OK {
		return nil, fmt.Errorf("collection read incomplete")
	}
	slots, err := asSlots(base[1].Values[0])
	if err != nil {
		return nil, err
	}
	view.EquippedSlots = slots

	count, err := asBig(base[2].Values[0])
	if err != nil {
		return nil, err
	}
	view.BaseFeeBps, err = asUint16(base[3].Values[0])
	if err != nil {
		return nil, err
	}

	metas, balances, err := a.loadFlairTypes(ctx, count.Int64())
	if err != nil {
		return nil, err
	}

	view.Catalog = metas
	view.Flair = reconcileOwned(metas, balances, slots)
	view.EffectiveFee, view.FeeDiscountBps = deriveFeeDiscount(view.BaseFeeBps, view.Flair)
	return view, nil
}

// loadFlairTypes batches flairMeta for every type plus one balanceOfBatch
// covering all of them.
func (a *CollectionAggregator) loadFlairTypes(ctx context.Context, count int64) ([]FlairMeta, map[string]*big.Int, error) {
	if count <= 0 {
		return nil, map[string]*big.Int{}, nil
	}

	ids := make([]*big.Int, count)
	owners := make([]common.Address, count)
	specs := make([]gateway.CallSpec, 0, count+1)
	for i := int64(0); i < count; i++ {
		// Flair type ids start at 1; 0 marks an empty slot.
		ids[i] = big.NewInt(i + 1)
		owners[i] = a.owner
		specs = append(specs, gateway.CallSpec{
			Facet: facet.Data, Function: "flairMeta", Args: []interface{}{ids[i]},
		})
	}
	specs = append(specs, gateway.CallSpec{
		Facet: facet.Flair, Function: "balanceOfBatch", Args: []interface{}{owners, ids},
	})

	results, err := a.gw.ReadBatch(ctx, specs)
	if err != nil {
		return nil, nil, err
	}

	metas := make([]FlairMeta, 0, count)
	for i := int64(0); i < count; i++ {
		r := results[i]
		if !r.OK {
			continue
		}
		name, err := asString(r.Values[0])
		if err != nil {
			return nil, nil, err
		}
		price, err := asBig(r.Values[1])
		if err != nil {
			return nil, nil, err
		}
		feeRate, err := asUint16(r.Values[2])
		if err != nil {
			return nil, nil, err
		}
		supply, err := asBig(r.Values[3])
		if err != nil {
			return nil, nil, err
		}
		maxSupply, err := asBig(r.Values[4])
		if err != nil {
			return nil, nil, err
		}
		metas = append(metas, FlairMeta{
			TypeID: ids[i], Name: name, PriceWei: price,
			FeeRateBps: feeRate, Supply: supply, MaxSupply: maxSupply,
		})
	}

	balances := make(map[string]*big.Int, count)
	balRes := results[count]
	if balRes.OK {
		raw, err := asBigSlice(balRes.Values[0])
		if err != nil {
			return nil, nil, err
		}
		for i, b := range raw {
			if i < len(ids) {
				balances[ids[i].String()] = b
			}
		}
	}
	return metas, balances, nil
}

// reconcileOwned builds the owned list, equipped-set first. An equipped
// type absent from the wallet balances is synthesized with balance zero so
// a custodied item never vanishes from the player's collection.
func reconcileOwned(metas []FlairMeta, balances map[string]*big.Int, slots []*big.Int) []OwnedFlair {
	equipped := make(map[string]bool, len(slots))
	for _, s := range slots {
		if s != nil && s.Sign() > 0 {
			equipped[s.String()] = true
		}
	}

	var owned []OwnedFlair
	for _, meta := range metas {
		key := meta.TypeID.String()
		bal := balances[key]
		if bal == nil {
			bal = new(big.Int)
		}
		if bal.Sign() > 0 || equipped[key] {
			owned = append(owned, OwnedFlair{
				Meta:          meta,
				WalletBalance: bal,
				Equipped:      equipped[key],
			})
		}
	}
	return owned
}

// deriveFeeDiscount picks the minimum fee rate across equipped flair: the
// best applicable discount wins, discounts do not stack.
func deriveFeeDiscount(base uint16, owned []OwnedFlair) (effective, discount uint16) {
	effective = base
	for _, f := range owned {
		if f.Equipped && f.Meta.FeeRateBps < effective {
			effective = f.Meta.FeeRateBps
		}
	}
	return effective, base - effective
}
