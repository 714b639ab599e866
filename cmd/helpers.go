package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/errclass"
	"github.com/pinmine/pincli/internal/gateway"
	"github.com/pinmine/pincli/internal/rpc"
	"github.com/pinmine/pincli/internal/ui"
	"github.com/pinmine/pincli/internal/wallet"
)

// tokenDecimals is shared by the game and payment tokens.
const tokenDecimals = 18

// newGateway selects an RPC endpoint, connects, and builds the contract
// gateway from the configured address book.
func newGateway(ctx context.Context) (*gateway.Gateway, error) {
	url := rpcFlag
	if url == "" {
		picker := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm))
		var err error
		url, err = picker.Select(ctx, cfg.RPCs)
		if err != nil {
			return nil, fmt.Errorf("no usable RPC — add one with `pincli config add-rpc <url>`: %w", err)
		}
	}

	client := chain.NewEVMClient(url)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}

	book := cfg.AddressBook()
	if book.Diamond == (common.Address{}) {
		return nil, fmt.Errorf("diamond address not configured — run `pincli config set diamond 0x…`")
	}
	return gateway.New(client, book, chainID), nil
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	store := wallet.NewJSONStore(cfg.WalletsPath())
	return wallet.NewManager(wallet.WithStore(store))
}

// resolveSigner loads a signing wallet by name, falling back to the
// configured default.
func resolveSigner(name string) (*wallet.Signer, error) {
	mgr := newWalletManager()
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name == "" {
		if w := mgr.Default(); w != nil {
			name = w.Name
		}
	}
	if name == "" {
		return nil, fmt.Errorf("no wallet configured — run `pincli wallet add <name> --key <private-key>`")
	}
	signer, err := mgr.Signer(name)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

// printClassified renders any error through the classifier so reverts,
// balance problems, and network trouble come out as plain guidance.
func printClassified(err error) {
	var parsed errclass.Parsed
	if p, ok := errclass.From(err); ok {
		parsed = p
	} else {
		parsed = errclass.Classify(err, nil)
	}

	switch parsed.Severity {
	case errclass.SeverityWarning:
		fmt.Println(ui.Warn(parsed.Title))
	default:
		fmt.Println(ui.Err(parsed.Title))
	}
	if parsed.Message != "" {
		fmt.Println("  " + parsed.Message)
	}
	if parsed.ActionHint != "" {
		fmt.Println(ui.Meta("  → " + parsed.ActionHint))
	}
	if verbose && parsed.Technical != "" {
		fmt.Println(ui.Meta("  " + parsed.Technical))
	}
}

// parseTokenAmount converts a decimal amount string to base units.
func parseTokenAmount(s string) (*big.Int, error) {
	amount, err := chain.ParseUnits(s, tokenDecimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

// fmtToken formats base units for display.
func fmtToken(raw *big.Int) string {
	return chain.FormatUnits(raw, tokenDecimals)
}

// printReceipt renders the outcome of a write.
func printReceipt(res *gateway.WriteResult) {
	fmt.Println(ui.Success("Transaction confirmed"))
	fmt.Println(ui.Addr("  hash:  " + res.TxHash))
	if res.Receipt != nil {
		fmt.Println(ui.Meta(fmt.Sprintf("  block: #%d  gas used: %d", res.Receipt.BlockNumber, res.Receipt.GasUsed)))
	}
}
