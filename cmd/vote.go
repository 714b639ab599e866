package cmd

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var (
	voteWallet  string
	voteAgainst bool
)

var voteCmd = &cobra.Command{
	Use:   "vote <proposal-id>",
	Short: "Vote on a pool governance proposal",
	Long: `Cast a vote with your vault shares. Votes are for by default;
pass --against to vote the other way.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proposalID, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid proposal id %q", args[0])
		}

		signer, err := resolveSigner(voteWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		vault := aggregate.NewVault(gw, signer, common.HexToAddress(signer.Address()))

		dir := "for"
		if voteAgainst {
			dir = "against"
		}
		spin := ui.NewSpinner(fmt.Sprintf("Voting %s proposal %s…", dir, args[0]))
		spin.Start()
		res, err := vault.Vote(cmd.Context(), proposalID, !voteAgainst)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

func init() {
	voteCmd.Flags().StringVar(&voteWallet, "wallet", "", "wallet name (default: config)")
	voteCmd.Flags().BoolVar(&voteAgainst, "against", false, "vote against instead of for")
}
