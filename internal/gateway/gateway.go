package gateway

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/facet"
)

// CallSpec names one contract call: which facet, which function, and the
// arguments. Target is only consulted for standalone facets; diamond facets
// always resolve to the proxy address.
type CallSpec struct {
	Facet    facet.Facet
	Function string
	Target   common.Address
	Args     []interface{}
}

// WriteResult is returned by Write after the transaction is confirmed.
// Simulated holds the dry-run return value, stringified — on-chain return
// values of writes are not authoritative until state is re-read.
type WriteResult struct {
	TxHash    string
	Receipt   *chain.TxReceipt
	Simulated string
}

// Signer is the wallet surface the gateway needs for writes.
type Signer interface {
	Address() string
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Gateway dispatches reads and writes against game contracts. Writes follow
// simulate → submit → await-confirmation, strictly in that order, so a
// failing call is caught before the key is ever touched.
type Gateway struct {
	client  *chain.EVMClient
	book    facet.AddressBook
	chainID *big.Int
}

// New creates a Gateway.
func New(client *chain.EVMClient, book facet.AddressBook, chainID *big.Int) *Gateway {
	return &Gateway{client: client, book: book, chainID: chainID}
}

// Client exposes the underlying RPC client for low-level reads.
func (g *Gateway) Client() *chain.EVMClient { return g.client }

// Book returns the configured address book.
func (g *Gateway) Book() facet.AddressBook { return g.book }

// Encode packs the call into calldata without executing it. Used to compose
// atomic multi-call submissions.
func (g *Gateway) Encode(spec CallSpec) ([]byte, error) {
	return facet.Pack(spec.Facet, spec.Function, spec.Args...)
}

// Resolve returns the concrete address the call dispatches to.
func (g *Gateway) Resolve(spec CallSpec) (common.Address, error) {
	return spec.Facet.Resolve(g.book, spec.Target)
}

// Read performs a single eth_call and returns the decoded values.
// No retries: read-side callers poll, they do not retry in place.
func (g *Gateway) Read(ctx context.Context, spec CallSpec) ([]interface{}, error) {
	addr, err := g.Resolve(spec)
	if err != nil {
		return nil, err
	}
	calldata, err := g.Encode(spec)
	if err != nil {
		return nil, err
	}

	raw, err := g.client.CallContract(ctx, addr.Hex(), "0x"+hex.EncodeToString(calldata))
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", spec.Facet, spec.Function, err)
	}

	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%s.%s: bad return data: %w", spec.Facet, spec.Function, err)
	}
	return facet.Unpack(spec.Facet, spec.Function, data)
}

// Write simulates the call, signs and broadcasts it, and blocks until the
// receipt is available. A simulation failure short-circuits before signing,
// yielding a fast, walletless failure.
func (g *Gateway) Write(ctx context.Context, spec CallSpec, signer Signer) (*WriteResult, error) {
	addr, err := g.Resolve(spec)
	if err != nil {
		return nil, err
	}
	calldata, err := g.Encode(spec)
	if err != nil {
		return nil, err
	}
	hexData := "0x" + hex.EncodeToString(calldata)
	from := signer.Address()

	ok, simulated, revert, err := g.client.SimulateCall(ctx, from, addr.Hex(), hexData, nil)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: simulation: %w", spec.Facet, spec.Function, err)
	}
	if !ok {
		return nil, normalizeRevert(spec, revert)
	}

	gas, err := g.client.EstimateGas(ctx, from, addr.Hex(), hexData, nil)
	if err != nil {
		gas = 300000 // fallback
	}
	gasPrice, err := g.client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}
	nonce, err := g.client.GetNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	toAddr := addr
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   g.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := signer.SignTx(tx, g.chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := g.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		var rpcErr *chain.RPCError
		if asRPC(err, &rpcErr) {
			return nil, normalizeRevert(spec, rpcErr)
		}
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	receipt, err := g.client.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", spec.Facet, spec.Function, err)
	}

	return &WriteResult{TxHash: hash, Receipt: receipt, Simulated: simulated}, nil
}

func asRPC(err error, target **chain.RPCError) bool {
	e, ok := err.(*chain.RPCError)
	if ok {
		*target = e
	}
	return ok
}

// BatchResult is one entry of a batched multicall read.
type BatchResult struct {
	OK     bool
	Values []interface{}
}

// multicall3Result mirrors the aggregate3 return tuple.
type multicall3Result struct {
	Success    bool
	ReturnData []byte
}

type multicall3Call struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// ReadBatch issues every spec in a single aggregate3 eth_call and decodes
// each sub-result with its own facet ABI. Failed sub-calls come back with
// OK=false instead of failing the whole batch.
func (g *Gateway) ReadBatch(ctx context.Context, specs []CallSpec) ([]BatchResult, error) {
	mcAddr, err := facet.Multicall.Resolve(g.book, common.Address{})
	if err != nil {
		return nil, err
	}

	calls := make([]multicall3Call, len(specs))
	for i, spec := range specs {
		addr, err := g.Resolve(spec)
		if err != nil {
			return nil, err
		}
		calldata, err := g.Encode(spec)
		if err != nil {
			return nil, err
		}
		calls[i] = multicall3Call{Target: addr, AllowFailure: true, CallData: calldata}
	}

	packed, err := facet.Pack(facet.Multicall, "aggregate3", calls)
	if err != nil {
		return nil, err
	}

	raw, err := g.client.CallContract(ctx, mcAddr.Hex(), "0x"+hex.EncodeToString(packed))
	if err != nil {
		return nil, fmt.Errorf("multicall read: %w", err)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("multicall read: bad return data: %w", err)
	}

	out, err := facet.Unpack(facet.Multicall, "aggregate3", data)
	if err != nil {
		return nil, err
	}
	results := *abi.ConvertType(out[0], new([]multicall3Result)).(*[]multicall3Result)
	if len(results) != len(specs) {
		return nil, fmt.Errorf("multicall read: %d results for %d calls", len(results), len(specs))
	}

	decoded := make([]BatchResult, len(specs))
	for i, r := range results {
		if !r.Success {
			continue
		}
		values, err := facet.Unpack(specs[i].Facet, specs[i].Function, r.ReturnData)
		if err != nil {
			continue
		}
		decoded[i] = BatchResult{OK: true, Values: values}
	}
	return decoded, nil
}
