package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var depositWallet string

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Deposit game tokens into the yield vault",
	Long: `Deposit game tokens into the vault to earn yield shares.

Approves the pool for the exact deposit amount first when the current
allowance is short, then sends the deposit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokenAmount(args[0])
		if err != nil {
			return err
		}

		signer, err := resolveSigner(depositWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		vault := aggregate.NewVault(gw, signer, common.HexToAddress(signer.Address()))

		spin := ui.NewSpinner(fmt.Sprintf("Depositing %s…", args[0]))
		spin.Start()
		res, err := vault.Deposit(cmd.Context(), amount)
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
	depositCmd.Flags().StringVar(&depositWallet, "wallet", "", "wallet name (default: config)")
}
