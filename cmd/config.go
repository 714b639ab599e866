package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orDash := func(s string) string {
			if s == "" {
				return ui.Meta("—")
			}
			return s
		}
		fmt.Println(ui.KeyValueBlock("Configuration", [][2]string{
			{"diamond", orDash(cfg.Diamond)},
			{"auction", orDash(cfg.Auction)},
			{"game-token", orDash(cfg.GameToken)},
			{"payment-token", orDash(cfg.PaymentToken)},
			{"multicall", orDash(cfg.Multicall)},
			{"pin-service", orDash(cfg.PinServiceURL)},
			{"price-feed", orDash(cfg.PriceFeedURL)},
			{"rpc-algorithm", cfg.RPCAlgorithm},
			{"poll-interval", fmt.Sprintf("%ds", cfg.PollInterval)},
			{"default-wallet", orDash(cfg.DefaultWallet)},
			{"rpcs", orDash(strings.Join(cfg.RPCs, ", "))},
		}))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Keys: diamond, auction, game-token, payment-token, multicall,
pin-service, price-feed, rpc-algorithm, poll-interval`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		setAddr := func(dst *string) error {
			if !common.IsHexAddress(value) {
				return fmt.Errorf("invalid address %q", value)
			}
			*dst = common.HexToAddress(value).Hex()
			return nil
		}

		var err error
		switch key {
		case "diamond":
			err = setAddr(&cfg.Diamond)
		case "auction":
			err = setAddr(&cfg.Auction)
		case "game-token":
			err = setAddr(&cfg.GameToken)
		case "payment-token":
			err = setAddr(&cfg.PaymentToken)
		case "multicall":
			err = setAddr(&cfg.Multicall)
		case "pin-service":
			cfg.PinServiceURL = value
		case "price-feed":
			cfg.PriceFeedURL = value
		case "rpc-algorithm":
			switch value {
			case "fastest", "round-robin", "failover":
				cfg.RPCAlgorithm = value
			default:
				err = fmt.Errorf("unknown algorithm %q (fastest|round-robin|failover)", value)
			}
		case "poll-interval":
			var n int
			n, err = strconv.Atoi(value)
			if err != nil || n <= 0 {
				err = fmt.Errorf("poll-interval must be a positive number of seconds")
			} else {
				cfg.PollInterval = n
			}
		default:
			err = fmt.Errorf("unknown config key %q", key)
		}
		if err != nil {
			return err
		}

		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set.", key)))
		return nil
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Add an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC added."))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <url>",
	Short: "Remove an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC removed."))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configAddRPCCmd, configRemoveRPCCmd)
}
