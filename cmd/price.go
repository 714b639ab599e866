package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/price"
	"github.com/pinmine/pincli/internal/ui"
)

var priceWatch bool

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show the alternate-token conversion rate",
	Long: `Fetch the reference rate used when paying with the alternate token.
The displayed rate is informational; each transaction re-fetches a fresh
rate at submit time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.PriceFeedURL == "" {
			return fmt.Errorf("price feed URL not configured — run `pincli config set price-feed <url>`")
		}
		fetcher := price.NewFetcher(cfg.PriceFeedURL)

		if !priceWatch {
			rate, err := fetcher.GetReferencePrice(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(ui.Val(rate.Text('f', 6)) + " " + ui.Meta("alt per reference"))
			return nil
		}

		interval := time.Duration(cfg.PollInterval) * time.Second
		poller := price.NewPoller(fetcher, interval)
		go poller.Run(cmd.Context())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-ticker.C:
				if snap, ok := poller.Last(); ok {
					fmt.Printf("\r%s %s  %s",
						ui.Val(snap.Rate.Text('f', 6)),
						ui.Meta("alt per reference"),
						ui.Meta(snap.At.Format("15:04:05")))
				}
			}
		}
	},
}

func init() {
	priceCmd.Flags().BoolVarP(&priceWatch, "watch", "w", false, "refresh continuously")
}
