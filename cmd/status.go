package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/gateway"
	"github.com/pinmine/pincli/internal/ui"
)

var (
	statusWallet string
	statusWatch  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your pin, deposits, yield, and flair",
	Long: `Fetch the full player position in two batched reads: pin, vault
shares, claimable yield, equipped flair, and the effective fee rate.

With --watch the view refreshes on the configured poll interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		signer, err := resolveSigner(statusWallet)
		if err != nil {
			return err
		}
		owner := common.HexToAddress(signer.Address())

		gw, err := newGateway(ctx)
		if err != nil {
			return err
		}

		vault := aggregate.NewVault(gw, nil, owner)
		coll := aggregate.NewCollection(gw, nil, owner)

		if statusWatch {
			model := ui.StatusModel{
				Address:  signer.Address(),
				Interval: time.Duration(cfg.PollInterval) * time.Second,
				Fetch: func() ui.StatusSnapshot {
					return fetchStatus(ctx, gw, vault, coll)
				},
			}
			_, err := tea.NewProgram(model).Run()
			return err
		}

		snap := fetchStatus(ctx, gw, vault, coll)
		if snap.ErrMsg != "" {
			return fmt.Errorf("%s", snap.ErrMsg)
		}
		printStatus(signer.Address(), snap)
		return nil
	},
}

// fetchStatus refreshes both aggregators and flattens them for display.
func fetchStatus(ctx context.Context, gw *gateway.Gateway, vault *aggregate.VaultAggregator, coll *aggregate.CollectionAggregator) ui.StatusSnapshot {
	var snap ui.StatusSnapshot

	block, err := gw.Client().BlockNumber(ctx)
	if err != nil {
		snap.ErrMsg = err.Error()
		return snap
	}
	snap.Block = block

	v, err := vault.Refresh(ctx)
	if err != nil {
		snap.ErrMsg = err.Error()
		return snap
	}
	c, err := coll.Refresh(ctx)
	if err != nil {
		snap.ErrMsg = err.Error()
		return snap
	}

	snap.Shares = fmtToken(v.Shares)
	snap.Claimable = fmtToken(v.ClaimableYield)
	snap.TotalDeposits = fmtToken(v.TotalDeposits)
	if v.GameBalance != nil {
		snap.GameBalance = fmtToken(v.GameBalance)
	}
	if v.PaymentBalance != nil {
		snap.PaymentBalance = fmtToken(v.PaymentBalance)
	}
	if v.Auction != nil {
		snap.AuctionPrice = fmtToken(v.Auction.Price)
		snap.AuctionRemain = v.Auction.LotRemaining.String()
	}

	if c.Pin != nil {
		snap.PinContentID = c.Pin.ContentID
		snap.PinTokenID = c.Pin.TokenID.String()
	}
	snap.BaseFeeBps = int(c.BaseFeeBps)
	snap.EffectiveBps = int(c.EffectiveFee)
	snap.DiscountBps = int(c.FeeDiscountBps)
	for _, f := range c.Flair {
		if f.Equipped {
			snap.Equipped = append(snap.Equipped, f.Meta.Name)
		}
	}
	return snap
}

// printStatus renders a one-shot (non-watch) status view.
func printStatus(address string, s ui.StatusSnapshot) {
	pin := "not minted"
	if s.PinContentID != "" {
		pin = s.PinContentID + "  (token #" + s.PinTokenID + ")"
	}
	pairs := [][2]string{
		{"Wallet", ui.TruncateAddr(address)},
		{"Pin", pin},
		{"Shares", s.Shares},
		{"Claimable", s.Claimable},
		{"Pool deposits", s.TotalDeposits},
	}
	if s.GameBalance != "" {
		pairs = append(pairs, [2]string{"Game token", s.GameBalance})
	}
	if s.PaymentBalance != "" {
		pairs = append(pairs, [2]string{"Payment token", s.PaymentBalance})
	}
	fee := fmt.Sprintf("%d bps", s.EffectiveBps)
	if s.DiscountBps > 0 {
		fee += fmt.Sprintf(" (base %d, flair −%d)", s.BaseFeeBps, s.DiscountBps)
	}
	pairs = append(pairs, [2]string{"Fee rate", fee})
	if len(s.Equipped) > 0 {
		pairs = append(pairs, [2]string{"Equipped", strings.Join(s.Equipped, ", ")})
	}
	if s.AuctionPrice != "" {
		pairs = append(pairs,
			[2]string{"Auction price", s.AuctionPrice},
			[2]string{"Lot remaining", s.AuctionRemain},
		)
	}
	fmt.Println(ui.KeyValueBlock("Pin Status", pairs))
	fmt.Println(ui.Meta(fmt.Sprintf("  block #%d", s.Block)))
}

func init() {
	statusCmd.Flags().StringVar(&statusWallet, "wallet", "", "wallet name (default: config)")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "refresh continuously")
}
