package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/gateway"
	"github.com/pinmine/pincli/internal/orchestrate"
	"github.com/pinmine/pincli/internal/pinsvc"
	"github.com/pinmine/pincli/internal/price"
	"github.com/pinmine/pincli/internal/ui"
	"github.com/pinmine/pincli/internal/wallet"
)

var (
	mintWallet  string
	mintFree    bool
	mintDeposit string
	mintFlair   string
	mintSlot    uint8
	mintAltPay  bool
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint your pin and join the pool",
	Long: `Run the full onboarding pipeline: approve token spend, generate
the pin artwork, then submit one atomic transaction that mints the pin,
makes the initial deposit, and equips the starter flair.

The paid path posts a deposit alongside the mint; --free uses a free
eligibility and skips the deposit. Pay with the alternate token via
--alt-pay; the amount is converted at the live reference rate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		signer, err := resolveSigner(mintWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(ctx)
		if err != nil {
			return err
		}
		if cfg.PinServiceURL == "" {
			return fmt.Errorf("pin service URL not configured — run `pincli config set pin-service <url>`")
		}
		pins := pinsvc.NewClient(cfg.PinServiceURL)

		plan, err := buildMintPlan(ctx, gw, signer)
		if err != nil {
			return err
		}

		identityID, err := resolveIdentity(ctx, pins, signer)
		if err != nil {
			return err
		}

		onProgress := func(phase orchestrate.Phase, pct int) {
			fmt.Printf("\r%s", ui.MintProgress(string(phase), pct))
		}

		deps := orchestrate.Wire(gw, signer, pins, plan, onProgress)
		orch := orchestrate.New(deps, plan)

		res, err := orch.Run(ctx, identityID)
		fmt.Println()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Pin minted!"))
		fmt.Println(ui.Val("  content: " + res.Pin.ContentID))
		if res.Pin.ImageURL != "" {
			fmt.Println(ui.Meta("  image:   " + res.Pin.ImageURL))
		}
		fmt.Println(ui.Addr("  tx:      " + res.TxHash))
		return nil
	},
}

// buildMintPlan assembles the paid or free plan from flags, looking up the
// starter flair price on-chain and the conversion rate when paying with the
// alternate token.
func buildMintPlan(ctx context.Context, gw *gateway.Gateway, signer *wallet.Signer) (orchestrate.Plan, error) {
	var starterFlair, flairPrice *big.Int
	if mintFlair != "" {
		var ok bool
		starterFlair, ok = new(big.Int).SetString(mintFlair, 10)
		if !ok {
			return orchestrate.Plan{}, fmt.Errorf("invalid flair type id %q", mintFlair)
		}

		coll := aggregate.NewCollection(gw, nil, common.HexToAddress(signer.Address()))
		view, err := coll.Refresh(ctx)
		if err != nil {
			return orchestrate.Plan{}, err
		}
		for _, meta := range view.Catalog {
			if meta.TypeID.Cmp(starterFlair) == 0 {
				flairPrice = meta.PriceWei
				break
			}
		}
		if flairPrice == nil {
			return orchestrate.Plan{}, fmt.Errorf("flair type %s not found", mintFlair)
		}
	}

	var plan orchestrate.Plan
	if mintFree {
		plan = orchestrate.FreePlan(flairPrice, starterFlair, mintSlot)
	} else {
		if mintDeposit == "" {
			return orchestrate.Plan{}, fmt.Errorf("--deposit is required (or pass --free)")
		}
		deposit, err := parseTokenAmount(mintDeposit)
		if err != nil {
			return orchestrate.Plan{}, err
		}
		plan = orchestrate.PaidPlan(deposit, flairPrice, starterFlair, mintSlot)
	}

	if mintAltPay {
		if cfg.PriceFeedURL == "" {
			return orchestrate.Plan{}, fmt.Errorf("price feed URL not configured — run `pincli config set price-feed <url>`")
		}
		rate, err := price.NewFetcher(cfg.PriceFeedURL).GetReferencePrice(ctx)
		if err != nil {
			return orchestrate.Plan{}, fmt.Errorf("fetching conversion rate: %w", err)
		}
		plan.UseAltPayment = true
		plan.Rate = rate
	}
	return plan, nil
}

// resolveIdentity returns a pin-service identity token, reusing the cached
// session token when present and logging in with a signed challenge when not.
func resolveIdentity(ctx context.Context, pins *pinsvc.Client, signer *wallet.Signer) (string, error) {
	addr := signer.Address()
	if token, ok := wallet.GetSessionIdentity(addr); ok {
		return token, nil
	}

	spin := ui.NewSpinner("Signing in to pin service…")
	spin.Start()
	token, err := pins.Login(ctx, addr, signer.SignMessage)
	spin.Stop()
	if err != nil {
		return "", fmt.Errorf("pin service login: %w", err)
	}
	wallet.SetSessionIdentity(addr, token) //nolint:errcheck
	return token, nil
}

func init() {
	mintCmd.Flags().StringVar(&mintWallet, "wallet", "", "wallet name (default: config)")
	mintCmd.Flags().BoolVar(&mintFree, "free", false, "use a free eligibility (skips the deposit)")
	mintCmd.Flags().StringVar(&mintDeposit, "deposit", "", "initial deposit amount (paid path)")
	mintCmd.Flags().StringVar(&mintFlair, "flair", "", "starter flair type id to buy and equip")
	mintCmd.Flags().Uint8Var(&mintSlot, "slot", 0, "slot for the starter flair (0-5)")
	mintCmd.Flags().BoolVar(&mintAltPay, "alt-pay", false, "pay with the alternate token at the live rate")
	mintCmd.MarkFlagsMutuallyExclusive("free", "deposit")
}
