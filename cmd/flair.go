package cmd

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pinmine/pincli/internal/aggregate"
	"github.com/pinmine/pincli/internal/ui"
)

var flairWallet string

var flairCmd = &cobra.Command{
	Use:   "flair",
	Short: "Buy, equip, and fuse flair",
}

var flairListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flair types and what you own",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		// Listing works without a signing wallet; ownership columns need one.
		var owner common.Address
		if signer, err := resolveSigner(flairWallet); err == nil {
			owner = common.HexToAddress(signer.Address())
		}

		coll := aggregate.NewCollection(gw, nil, owner)
		view, err := coll.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		if len(view.Catalog) == 0 {
			fmt.Println(ui.Meta("No flair types available."))
			return nil
		}

		owned := make(map[string]aggregate.OwnedFlair, len(view.Flair))
		for _, f := range view.Flair {
			owned[f.Meta.TypeID.String()] = f
		}

		fmt.Println(ui.StyleTitle.Render("Flair"))
		for _, meta := range view.Catalog {
			mark := " "
			held := "0"
			if f, ok := owned[meta.TypeID.String()]; ok {
				held = f.WalletBalance.String()
				if f.Equipped {
					mark = ui.StyleSuccess.Render("●")
				}
			}
			line := fmt.Sprintf("%s %-4s %-18s %10s  fee %4d bps  held %s  [%s/%s]",
				mark,
				"#"+meta.TypeID.String(),
				meta.Name,
				fmtToken(meta.PriceWei),
				meta.FeeRateBps,
				held,
				meta.Supply.String(), meta.MaxSupply.String(),
			)
			fmt.Println("  " + line)
		}
		if view.FeeDiscountBps > 0 {
			fmt.Println(ui.Meta(fmt.Sprintf("  fee: %d bps (flair discount −%d)", view.EffectiveFee, view.FeeDiscountBps)))
		}
		return nil
	},
}

var flairBuyCmd = &cobra.Command{
	Use:   "buy <type-id>",
	Short: "Buy one flair of the given type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeID, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid flair type id %q", args[0])
		}

		signer, err := resolveSigner(flairWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		coll := aggregate.NewCollection(gw, signer, common.HexToAddress(signer.Address()))

		// Look up the listed price so the approval covers exactly it.
		view, err := coll.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		var price *big.Int
		for _, meta := range view.Catalog {
			if meta.TypeID.Cmp(typeID) == 0 {
				price = meta.PriceWei
				break
			}
		}
		if price == nil {
			return fmt.Errorf("flair type %s not found", args[0])
		}

		fmt.Println(ui.Meta("  price: " + fmtToken(price)))
		spin := ui.NewSpinner("Buying flair…")
		spin.Start()
		res, err := coll.Buy(cmd.Context(), typeID, price)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

var flairEquipCmd = &cobra.Command{
	Use:   "equip <type-id> <slot>",
	Short: "Equip an owned flair into a slot (0-5)",
	Long: `Equip flair into one of the six slots. The pool contract takes
custody of the item, so the first equip asks the token contract to
approve the pool as operator and waits for that approval to settle.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeID, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid flair type id %q", args[0])
		}
		slot, err := parseSlot(args[1])
		if err != nil {
			return err
		}

		signer, err := resolveSigner(flairWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		coll := aggregate.NewCollection(gw, signer, common.HexToAddress(signer.Address()))

		spin := ui.NewSpinner(fmt.Sprintf("Equipping flair #%s into slot %d…", args[0], slot))
		spin.Start()
		res, err := coll.Equip(cmd.Context(), typeID, slot)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

var flairUnequipCmd = &cobra.Command{
	Use:   "unequip <slot>",
	Short: "Unequip whatever is in the given slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}

		signer, err := resolveSigner(flairWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		coll := aggregate.NewCollection(gw, signer, common.HexToAddress(signer.Address()))

		spin := ui.NewSpinner(fmt.Sprintf("Unequipping slot %d…", slot))
		spin.Start()
		res, err := coll.Unequip(cmd.Context(), slot)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

var flairFuseCmd = &cobra.Command{
	Use:   "fuse <type-a> <type-b>",
	Short: "Fuse two owned flair into a higher tier",
	Long: `Fuse consumes both inputs. The result can be better or worse
than what went in, so you are asked to confirm first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeA, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid flair type id %q", args[0])
		}
		typeB, ok := new(big.Int).SetString(args[1], 10)
		if !ok {
			return fmt.Errorf("invalid flair type id %q", args[1])
		}

		signer, err := resolveSigner(flairWallet)
		if err != nil {
			return err
		}
		gw, err := newGateway(cmd.Context())
		if err != nil {
			return err
		}

		coll := aggregate.NewCollection(gw, signer, common.HexToAddress(signer.Address()))

		if !ui.ConfirmDanger(fmt.Sprintf("Fuse flair #%s and #%s? Both inputs are destroyed.", args[0], args[1])) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner("Fusing flair…")
		spin.Start()
		res, err := coll.Fuse(cmd.Context(), typeA, typeB)
		spin.Stop()
		if err != nil {
			return err
		}

		printReceipt(res)
		return nil
	},
}

func parseSlot(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n > 5 {
		return 0, fmt.Errorf("invalid slot %q (must be 0-5)", s)
	}
	return uint8(n), nil
}

func init() {
	flairCmd.PersistentFlags().StringVar(&flairWallet, "wallet", "", "wallet name (default: config)")
	flairCmd.AddCommand(flairListCmd, flairBuyCmd, flairEquipCmd, flairUnequipCmd, flairFuseCmd)
}
