package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// selector returns the 4-byte function selector for a canonical signature,
// 0x-prefixed.
func selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// EVMClient is a minimal JSON-RPC client for the chain the game lives on.
type EVMClient struct {
	url    string
	client *http.Client
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// RPCError is a structured JSON-RPC error. Data carries hex-encoded revert
// data when the node exposes it, which lets callers decode custom errors
// instead of string-matching the message.
type RPCError struct {
	Code    int
	Message string
	Data    string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// RevertData returns the raw revert data (0x-prefixed), or "" if absent.
func (e *RPCError) RevertData() string { return e.Data }

// GetBalance returns the native balance in wei for an address.
func (c *EVMClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	result, err := c.call(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return nil, err
	}
	return parseBigResult(result, "balance")
}

// GetTokenBalance returns the raw ERC-20 balance of walletAddr on tokenAddr.
func (c *EVMClient) GetTokenBalance(ctx context.Context, tokenAddr, walletAddr string) (*big.Int, error) {
	data := selector("balanceOf(address)") + fmt.Sprintf("%064s", strings.TrimPrefix(walletAddr, "0x"))

	result, err := c.call(ctx, "eth_call", map[string]string{
		"to":   tokenAddr,
		"data": data,
	}, "latest")
	if err != nil {
		return nil, err
	}
	return parseBigResult(result, "token balance")
}

// GetAllowance returns the ERC-20 allowance that owner has granted spender
// on the given token contract.
func (c *EVMClient) GetAllowance(ctx context.Context, tokenAddr, owner, spender string) (*big.Int, error) {
	data := selector("allowance(address,address)") +
		fmt.Sprintf("%064s", strings.TrimPrefix(owner, "0x")) +
		fmt.Sprintf("%064s", strings.TrimPrefix(spender, "0x"))

	result, err := c.call(ctx, "eth_call", map[string]string{
		"to":   tokenAddr,
		"data": data,
	}, "latest")
	if err != nil {
		return nil, err
	}
	return parseBigResult(result, "allowance")
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	n, err := parseBigResult(result, "block number")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	result, err := c.call(ctx, "eth_chainId")
	if err != nil {
		return nil, err
	}
	return parseBigResult(result, "chain id")
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	result, err := c.call(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	return parseBigResult(result, "gas price")
}

// GetNonce returns the transaction count for an address, including pending
// transactions so queued writes do not collide.
func (c *EVMClient) GetNonce(ctx context.Context, address string) (uint64, error) {
	result, err := c.call(ctx, "eth_getTransactionCount", address, "pending")
	if err != nil {
		return 0, err
	}
	n, err := parseBigResult(result, "nonce")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// EstimateGas estimates gas for a transaction.
func (c *EVMClient) EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error) {
	params := map[string]string{
		"from": from,
		"to":   to,
	}
	if data != "" {
		params["data"] = data
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = "0x" + value.Text(16)
	}

	result, err := c.call(ctx, "eth_estimateGas", params, "latest")
	if err != nil {
		return 0, err
	}
	n, err := parseBigResult(result, "gas estimate")
	if err != nil {
		return 21000, nil
	}
	return n.Uint64(), nil
}

// CallContract performs a read-only eth_call with the given calldata.
func (c *EVMClient) CallContract(ctx context.Context, toAddr, calldata string) (string, error) {
	result, err := c.call(ctx, "eth_call", map[string]string{
		"to":   toAddr,
		"data": calldata,
	}, "latest")
	if err != nil {
		return "", err
	}
	s, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result: %T", result)
	}
	return s, nil
}

// SimulateCall dry-runs a write call using eth_call with a from field.
// Returns (true, returnData, nil, nil) on success or (false, "", revertErr,
// nil) when the call reverts — revertErr carries the structured revert data
// when the node exposes it. Network failures return a non-nil final error.
func (c *EVMClient) SimulateCall(ctx context.Context, from, to, data string, value *big.Int) (bool, string, *RPCError, error) {
	params := map[string]string{
		"from": from,
		"to":   to,
	}
	if data != "" {
		params["data"] = data
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = "0x" + value.Text(16)
	}

	result, err := c.call(ctx, "eth_call", params, "latest")
	if err != nil {
		if rpcErr, ok := err.(*RPCError); ok {
			return false, "", rpcErr, nil
		}
		return false, "", nil, err
	}

	hexStr, _ := result.(string)
	return true, hexStr, nil, nil
}

// SendRawTransaction broadcasts a signed raw transaction.
func (c *EVMClient) SendRawTransaction(ctx context.Context, rawTx string) (string, error) {
	result, err := c.call(ctx, "eth_sendRawTransaction", rawTx)
	if err != nil {
		return "", err
	}
	hash, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result: %T", result)
	}
	return hash, nil
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash        string
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash string) (*TxReceipt, error) {
	result, err := c.call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil // still pending
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	var r struct {
		Status      string `json:"status"`
		BlockNumber string `json:"blockNumber"`
		GasUsed     string `json:"gasUsed"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	receipt := &TxReceipt{Hash: hash}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	return receipt, nil
}

// receiptPollInterval is how often WaitForReceipt re-checks a pending hash.
// Overridable in tests.
var receiptPollInterval = 2 * time.Second

// WaitForReceipt polls until the transaction is mined or ctx is done.
// Submitted transactions cannot be withdrawn, so there is no client-side
// deadline beyond the caller's context. Returns an error if the transaction
// reverted (Status == 0).
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash string) (*TxReceipt, error) {
	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("transaction reverted (hash: %s)", hash)
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

// WaitConfirmations waits for the transaction to be mined and then for the
// chain head to advance until the receipt has n confirmations. n == 1 is
// equivalent to WaitForReceipt.
func (c *EVMClient) WaitConfirmations(ctx context.Context, hash string, n uint64) (*TxReceipt, error) {
	receipt, err := c.WaitForReceipt(ctx, hash)
	if err != nil {
		return receipt, err
	}
	if n <= 1 {
		return receipt, nil
	}
	for {
		head, err := c.BlockNumber(ctx)
		if err != nil {
			return receipt, err
		}
		if head >= receipt.BlockNumber+n-1 {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return receipt, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	return latency, blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rawRPCError    `json:"error"`
}

type rawRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *EVMClient) call(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error.toRPCError()
	}

	var result interface{}
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}

	return result, nil
}

// toRPCError flattens the wire error into an RPCError, pulling hex revert
// data out of the data field. Providers disagree on the shape: some return a
// bare hex string, some nest it as {"data": "0x..."} or {"originalError": ...}.
func (e *rawRPCError) toRPCError() *RPCError {
	return &RPCError{Code: e.Code, Message: e.Message, Data: extractHexData(e.Data)}
}

func extractHexData(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.HasPrefix(s, "0x") {
			return s
		}
		return ""
	}
	var nested struct {
		Data          json.RawMessage `json:"data"`
		OriginalError json.RawMessage `json:"originalError"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		if d := extractHexData(nested.Data); d != "" {
			return d
		}
		return extractHexData(nested.OriginalError)
	}
	return ""
}

// --- math helpers ---

func parseBigResult(result interface{}, what string) (*big.Int, error) {
	hexStr, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", result)
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse %s hex: %s", what, hexStr)
	}
	return n, nil
}

func parseBigHex(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0), true
	}
	n, ok := new(big.Int).SetString(s, 16)
	return n, ok
}

// FormatUnits converts a raw token amount to a decimal string.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if decimals <= 0 {
		return raw.String()
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f := new(big.Float).SetInt(raw)
	f.Quo(f, new(big.Float).SetInt(div))
	return f.Text('f', decimals)
}

// ParseUnits converts a decimal amount string to a raw token amount.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	f, ok := new(big.Float).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	mul := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f.Mul(f, mul)
	out, _ := f.Int(nil)
	return out, nil
}
