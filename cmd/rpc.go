package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/rpc"
	"github.com/pinmine/pincli/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Benchmark configured RPC endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.RPCs) == 0 {
			fmt.Println(ui.Meta("No RPCs configured."))
			fmt.Println(ui.Meta("Add one with: pincli config add-rpc <url>"))
			return nil
		}

		spin := ui.NewSpinner(fmt.Sprintf("Checking %d endpoint(s)…", len(cfg.RPCs)))
		spin.Start()
		endpoints := rpc.CheckAll(cmd.Context(), cfg.RPCs)
		spin.Stop()

		for _, ep := range endpoints {
			if ep.Healthy {
				fmt.Printf("%s %-48s %6dms  #%d\n",
					ui.StyleSuccess.Render("✓"), ep.URL, ep.Latency.Milliseconds(), ep.BlockNumber)
			} else {
				fmt.Printf("%s %-48s %s\n",
					ui.StyleError.Render("✗"), ep.URL, ui.Meta("unreachable"))
			}
		}

		picker := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm))
		if best, err := picker.Pick(endpoints); err == nil {
			fmt.Println(ui.Meta("best: " + best.URL))
		}
		return nil
	},
}
