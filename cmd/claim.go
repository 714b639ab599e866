package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var claimWallet string

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim accrued vault yield",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := resolveSigner(claimWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		owner := common.HexToAddress(signer.Address())
		vault := aggregate.NewVault(gw, signer, owner)

		// Show what's claimable before sending.
		if v, err := vault.Refresh(cmd.Context()); err == nil {
			if v.ClaimableYield.Sign() == 0 {
				fmt.Println(ui.Meta("Nothing to claim yet."))
				return nil
			}
			fmt.Println(ui.Meta("  claimable: " + fmtToken(v.ClaimableYield)))
		}

		spin := ui.NewSpinner("Claiming yield…")
		spin.Start()
		res, err := vault.Claim(cmd.Context())
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

func init() {
	claimCmd.Flags().StringVar(&claimWallet, "wallet", "", "wallet name (default: config)")
}
