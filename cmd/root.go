package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/pinmine/pincli/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
	rpcFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "pincli",
	Short: "Pin mining from the terminal",
	Long: `pincli — terminal client for the pin mining pool.

  Mint pins, deposit into the yield vault, buy and equip flair,
  vote on proposals, and bid in the flair Dutch auction.

Contract addresses and RPC endpoints live in the config file
(default: ~/.pincli/config.json). Set them once with:
  pincli config set diamond 0x…`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printClassified(err)
		os.Exit(1)
	}
}

func init() {
	// PINCLI_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("PINCLI_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.pincli)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC endpoint override")

	rootCmd.AddCommand(
		mintCmd,
		depositCmd,
		withdrawCmd,
		claimCmd,
		voteCmd,
		bidCmd,
		flashloanCmd,
		flairCmd,
		statusCmd,
		priceCmd,
		walletCmd,
		configCmd,
		rpcCmd,
	)
}
