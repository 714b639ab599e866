package orchestrate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/approve"
	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/facet"
	"github.com/pinmine/pincli/internal/gateway"
	"github.com/pinmine/pincli/internal/pinsvc"
)

func convert(total *big.Int, useAlternate bool, rate *big.Float) (*big.Int, error) {
	return approve.ConvertPaymentAmount(total, useAlternate, rate)
}

// Wire builds the production Deps for one plan: approvals through the
// approval manager, generation through the pin service, and submission as
// one atomic diamond multicall through the gateway.
func Wire(gw *gateway.Gateway, signer gateway.Signer, pins *pinsvc.Client, plan Plan, onProgress func(Phase, int)) Deps {
	paymentFacet := facet.PaymentToken
	if plan.UseAltPayment {
		paymentFacet = facet.GameToken
	}
	spender := gw.Book().Diamond

	return Deps{
		SignerAddress: signer.Address(),
		OnProgress:    onProgress,
		EnsureApproval: func(ctx context.Context, total *big.Int) error {
			return approve.EnsureApproval(ctx, gw, signer, paymentFacet, common.Address{}, spender, total)
		},
		GeneratePin: func(ctx context.Context, identityID string) (*pinsvc.Pin, error) {
			return pins.GeneratePin(ctx, identityID)
		},
		SubmitMint: func(ctx context.Context, contentID string, p Plan) (string, *chain.TxReceipt, error) {
			calls, err := buildMintCalls(gw, contentID, p)
			if err != nil {
				return "", nil, err
			}
			res, err := gw.Write(ctx, gateway.CallSpec{
				Facet:    facet.Router,
				Function: "multicall",
				Args:     []interface{}{calls},
			}, signer)
			if err != nil {
				return "", nil, err
			}
			return res.TxHash, res.Receipt, nil
		},
	}
}

// buildMintCalls encodes the run's independent sub-calls. The router
// executes them atomically, so a revert in any one undoes them all.
func buildMintCalls(gw *gateway.Gateway, contentID string, plan Plan) ([][]byte, error) {
	var calls [][]byte

	mint, err := gw.Encode(gateway.CallSpec{
		Facet:    facet.Pin,
		Function: "mintPin",
		Args:     []interface{}{contentID},
	})
	if err != nil {
		return nil, err
	}
	calls = append(calls, mint)

	if plan.IncludeDeposit && plan.DepositAmount != nil && plan.DepositAmount.Sign() > 0 {
		deposit, err := gw.Encode(gateway.CallSpec{
			Facet:    facet.Vault,
			Function: "deposit",
			Args:     []interface{}{plan.DepositAmount},
		})
		if err != nil {
			return nil, err
		}
		calls = append(calls, deposit)
	}

	if plan.StarterFlair != nil && plan.StarterFlair.Sign() > 0 {
		buyEquip, err := gw.Encode(gateway.CallSpec{
			Facet:    facet.Flair,
			Function: "buyAndEquipFlair",
			Args:     []interface{}{plan.StarterFlair, plan.StarterSlot},
		})
		if err != nil {
			return nil, err
		}
		calls = append(calls, buyEquip)
	}

	return calls, nil
}
