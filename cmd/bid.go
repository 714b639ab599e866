package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var bidWallet string

var bidCmd = &cobra.Command{
	Use:   "bid <amount>",
	Short: "Bid in the live flair Dutch auction",
	Long: `Place a bid at or above the auction's current falling price.
The current price and lot remaining are shown before the bid goes out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokenAmount(args[0])
		if err != nil {
			return err
		}

		signer, err := resolveSigner(bidWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		vault := aggregate.NewVault(gw, signer, common.HexToAddress(signer.Address()))

		if v, err := vault.Refresh(cmd.Context()); err == nil && v.Auction != nil {
			fmt.Println(ui.KeyValueBlock("Auction", [][2]string{
				{"Current price", fmtToken(v.Auction.Price)},
				{"Lot remaining", v.Auction.LotRemaining.String()},
				{"Your bid", args[0]},
			}))
			if amount.Cmp(v.Auction.Price) < 0 {
				fmt.Println(ui.Warn("Bid is below the current price — it will revert."))
				if !ui.Confirm("Send anyway?") {
					fmt.Println(ui.Meta("Cancelled."))
					return nil
				}
			}
		}

		spin := ui.NewSpinner("Placing bid…")
		spin.Start()
		res, err := vault.Bid(cmd.Context(), amount)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

func init() {
	bidCmd.Flags().StringVar(&bidWallet, "wallet", "", "wallet name (default: config)")
}
