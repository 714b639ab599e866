package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC
// error, optionally with revert data.
func rpcErrorServer(t *testing.T, code int, msg string, data interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		errObj := map[string]interface{}{"code": code, "message": msg}
		if data != nil {
			errObj["data"] = data
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   errObj,
		})
	}))
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ---------------------------------------------------------------------------
// parseBigHex
// ---------------------------------------------------------------------------

func TestParseBigHexValid(t *testing.T) {
	n, ok := parseBigHex("0x64")
	require.True(t, ok)
	assert.Equal(t, int64(100), n.Int64())
}

func TestParseBigHexNoPrefix(t *testing.T) {
	n, ok := parseBigHex("64")
	require.True(t, ok)
	assert.Equal(t, int64(100), n.Int64())
}

func TestParseBigHexEmptyIsZero(t *testing.T) {
	n, ok := parseBigHex("0x")
	require.True(t, ok)
	assert.Equal(t, int64(0), n.Int64())
}

func TestParseBigHexInvalid(t *testing.T) {
	_, ok := parseBigHex("xyz")
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// FormatUnits / ParseUnits
// ---------------------------------------------------------------------------

func TestFormatUnitsOneToken(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, "1.000000000000000000", FormatUnits(one, 18))
}

func TestFormatUnitsNil(t *testing.T) {
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestFormatUnitsZeroDecimals(t *testing.T) {
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
}

func TestParseUnitsRoundTrip(t *testing.T) {
	n, err := ParseUnits("1.5", 18)
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, expected, n)
}

func TestParseUnitsInvalid(t *testing.T) {
	_, err := ParseUnits("not-a-number", 18)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// EVMClient — reads
// ---------------------------------------------------------------------------

func TestGetBalanceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getBalance": "0x1BC16D674EC80000", // 2 ETH
	})
	defer srv.Close()

	bal, err := NewEVMClient(srv.URL).GetBalance(ctxT(t), "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	two := new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	assert.Equal(t, two, bal)
}

func TestBlockNumberSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_blockNumber": "0x1388", // 5000
	})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).BlockNumber(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), n)
}

func TestChainIDSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_chainId": "0x2105", // 8453
	})
	defer srv.Close()

	id, err := NewEVMClient(srv.URL).ChainID(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, int64(8453), id.Int64())
}

func TestGetAllowanceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x00000000000000000000000000000000000000000000000000000000000003e8",
	})
	defer srv.Close()

	allowance, err := NewEVMClient(srv.URL).GetAllowance(ctxT(t),
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		"0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), allowance.Int64())
}

func TestGetNonceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionCount": "0xa",
	})
	defer srv.Close()

	nonce, err := NewEVMClient(srv.URL).GetNonce(ctxT(t), "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), nonce)
}

func TestGetBalanceRPCError(t *testing.T) {
	srv := rpcErrorServer(t, -32602, "invalid params", nil)
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GetBalance(ctxT(t), "0x1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC error")
}

func TestGetBalanceConnectionRefused(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:19999").GetBalance(ctxT(t), "0x1234")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// EVMClient — SimulateCall
// ---------------------------------------------------------------------------

func TestSimulateCallSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x0000000000000000000000000000000000000000000000000000000000000001",
	})
	defer srv.Close()

	ok, ret, rpcErr, err := NewEVMClient(srv.URL).SimulateCall(ctxT(t),
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"0xdeadbeef", nil)
	require.NoError(t, err)
	assert.Nil(t, rpcErr)
	assert.True(t, ok)
	assert.NotEmpty(t, ret)
}

func TestSimulateCallRevertWithBareData(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted", "0x08c379a0")
	defer srv.Close()

	ok, _, rpcErr, err := NewEVMClient(srv.URL).SimulateCall(ctxT(t), "0xfrom", "0xto", "0xdata", nil)
	require.NoError(t, err)
	require.NotNil(t, rpcErr)
	assert.False(t, ok)
	assert.Equal(t, "0x08c379a0", rpcErr.RevertData())
}

func TestSimulateCallRevertWithNestedData(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted",
		map[string]interface{}{"data": "0x1234abcd"})
	defer srv.Close()

	_, _, rpcErr, err := NewEVMClient(srv.URL).SimulateCall(ctxT(t), "0xfrom", "0xto", "0xdata", nil)
	require.NoError(t, err)
	require.NotNil(t, rpcErr)
	assert.Equal(t, "0x1234abcd", rpcErr.RevertData())
}

func TestSimulateCallRevertWithOriginalError(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted",
		map[string]interface{}{"originalError": map[string]interface{}{"data": "0xcafebabe"}})
	defer srv.Close()

	_, _, rpcErr, err := NewEVMClient(srv.URL).SimulateCall(ctxT(t), "0xfrom", "0xto", "0xdata", nil)
	require.NoError(t, err)
	require.NotNil(t, rpcErr)
	assert.Equal(t, "0xcafebabe", rpcErr.RevertData())
}

func TestSimulateCallNetworkError(t *testing.T) {
	_, _, rpcErr, err := NewEVMClient("http://127.0.0.1:19999").SimulateCall(ctxT(t), "0xfrom", "0xto", "", nil)
	require.Error(t, err)
	assert.Nil(t, rpcErr)
}

// ---------------------------------------------------------------------------
// EVMClient — receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": nil,
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(ctxT(t), "0xabc")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestGetTransactionReceiptMined(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0x64",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(ctxT(t), "0xabc")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, uint64(100), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
}

func TestWaitForReceiptPollsUntilMined(t *testing.T) {
	old := receiptPollInterval
	receiptPollInterval = 10 * time.Millisecond
	defer func() { receiptPollInterval = old }()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		// First two polls: pending. Third: mined.
		var result interface{}
		if calls.Add(1) >= 3 {
			result = map[string]interface{}{"status": "0x1", "blockNumber": "0x10", "gasUsed": "0x5208"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(ctxT(t), "0xabc")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitForReceiptRevertedStatus(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x0",
			"blockNumber": "0x10",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(ctxT(t), "0xdead")
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.Contains(t, err.Error(), "reverted")
}

func TestWaitForReceiptContextCancelled(t *testing.T) {
	old := receiptPollInterval
	receiptPollInterval = 10 * time.Millisecond
	defer func() { receiptPollInterval = old }()

	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": nil, // forever pending
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, "0xabc")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitConfirmationsHeadAdvance(t *testing.T) {
	old := receiptPollInterval
	receiptPollInterval = 10 * time.Millisecond
	defer func() { receiptPollInterval = old }()

	var head atomic.Uint64
	head.Store(0x10) // receipt block
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		var result interface{}
		switch req.Method {
		case "eth_getTransactionReceipt":
			result = map[string]interface{}{"status": "0x1", "blockNumber": "0x10", "gasUsed": "0x5208"}
		case "eth_blockNumber":
			// Head advances one block per poll.
			result = "0x" + big.NewInt(int64(head.Add(1)-1)).Text(16)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitConfirmations(ctxT(t), "0xabc", 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x10), receipt.BlockNumber)
}

// ---------------------------------------------------------------------------
// extractHexData
// ---------------------------------------------------------------------------

func TestExtractHexDataNonHexString(t *testing.T) {
	assert.Equal(t, "", extractHexData(json.RawMessage(`"revert reason text"`)))
}

func TestExtractHexDataEmpty(t *testing.T) {
	assert.Equal(t, "", extractHexData(nil))
}

// ---------------------------------------------------------------------------
// selector
// ---------------------------------------------------------------------------

func TestSelectorWellKnownSignatures(t *testing.T) {
	assert.Equal(t, "0x70a08231", selector("balanceOf(address)"))
	assert.Equal(t, "0xdd62ed3e", selector("allowance(address,address)"))
	assert.Equal(t, "0xa9059cbb", selector("transfer(address,uint256)"))
}
