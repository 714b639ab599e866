// Package approve guarantees a spender holds sufficient ERC-20 allowance
// before a paying action runs. Allowances are advisory: they are re-read
// before every use and never cached, since they can be reduced externally.
package approve

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/facet"
	"github.com/pinmine/pincli/internal/gateway"
)

// EnsureApproval checks the owner→spender allowance on token and, when it is
// short of required, submits an approval for exactly the required amount
// (never unlimited) and waits for it to confirm. A sufficient allowance is a
// silent no-op; a failed approval transaction is a loud error.
func EnsureApproval(ctx context.Context, gw *gateway.Gateway, signer gateway.Signer, token facet.Facet, tokenAddr, spender common.Address, required *big.Int) error {
	if required == nil || required.Sign() <= 0 {
		return nil
	}

	addr, err := token.Resolve(gw.Book(), tokenAddr)
	if err != nil {
		return err
	}
	owner := signer.Address()

	allowance, err := gw.Client().GetAllowance(ctx, addr.Hex(), owner, spender.Hex())
	if err != nil {
		return fmt.Errorf("reading allowance: %w", err)
	}
	if allowance.Cmp(required) >= 0 {
		return nil
	}

	_, err = gw.Write(ctx, gateway.CallSpec{
		Facet:    token,
		Function: "approve",
		Target:   tokenAddr,
		Args:     []interface{}{spender, required},
	}, signer)
	if err != nil {
		return fmt.Errorf("approving %s: %w", required, err)
	}
	return nil
}

// ConvertPaymentAmount converts a price denominated in the reference
// currency (WETH) into the equivalent amount of the alternate payment token
// using the current exchange rate (alternate tokens per one reference
// token). Rounds up so the approval can never fall short of the charge.
// Callers must pass a rate fetched this render cycle, never a stale one.
func ConvertPaymentAmount(baseAmount *big.Int, useAlternate bool, rate *big.Float) (*big.Int, error) {
	if baseAmount == nil {
		return nil, fmt.Errorf("nil base amount")
	}
	if !useAlternate {
		return new(big.Int).Set(baseAmount), nil
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, fmt.Errorf("exchange rate not available")
	}

	out := new(big.Float).SetInt(baseAmount)
	out.Mul(out, rate)

	converted, accuracy := out.Int(nil)
	if accuracy == big.Below {
		// Truncation lost a fraction; round up to avoid under-approval.
		converted.Add(converted, big.NewInt(1))
	}
	return converted, nil
}
