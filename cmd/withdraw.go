package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var withdrawWallet string

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw vault shares back to game tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokenAmount(args[0])
		if err != nil {
			return err
		}

		signer, err := resolveSigner(withdrawWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		vault := aggregate.NewVault(gw, signer, common.HexToAddress(signer.Address()))

		spin := ui.NewSpinner(fmt.Sprintf("Withdrawing %s…", args[0]))
		spin.Start()
		res, err := vault.Withdraw(cmd.Context(), amount)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		if v, _ := vault.View(); v != nil {
			fmt.Println(ui.Meta("  shares: " + fmtToken(v.Shares)))
		}
		return nil
	},
}

func init() {
	withdrawCmd.Flags().StringVar(&withdrawWallet, "wallet", "", "wallet name (default: config)")
}
