package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var (
	flashloanWallet   string
	flashloanReceiver string
	flashloanData     string
)

var flashloanCmd = &cobra.Command{
	Use:   "flashloan <amount>",
	Short: "Take a flash loan from the vault",
	Long: `Borrow from the vault for a single transaction. The receiver
contract must repay the loan plus fee before the transaction ends or
the whole thing reverts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseTokenAmount(args[0])
		if err != nil {
			return err
		}
		if flashloanReceiver == "" {
			return fmt.Errorf("--receiver is required")
		}
		if !common.IsHexAddress(flashloanReceiver) {
			return fmt.Errorf("invalid receiver address %q", flashloanReceiver)
		}

		var calldata []byte
		if flashloanData != "" {
			calldata, err = hex.DecodeString(strings.TrimPrefix(flashloanData, "0x"))
			if err != nil {
				return fmt.Errorf("invalid --data hex: %w", err)
			}
		}

		signer, err := resolveSigner(flashloanWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		vault := aggregate.NewVault(gw, signer, common.HexToAddress(signer.Address()))

		if !ui.ConfirmDanger(fmt.Sprintf("Flash-loan %s to %s?", args[0], ui.TruncateAddr(flashloanReceiver))) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner("Executing flash loan…")
		spin.Start()
		res, err := vault.FlashLoan(cmd.Context(), common.HexToAddress(flashloanReceiver), amount, calldata)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

func init() {
	flashloanCmd.Flags().StringVar(&flashloanWallet, "wallet", "", "wallet name (default: config)")
	flashloanCmd.Flags().StringVar(&flashloanReceiver, "receiver", "", "borrower contract address (required)")
	flashloanCmd.Flags().StringVar(&flashloanData, "data", "", "hex calldata forwarded to the receiver")
}
