package aggregate

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/facet"
	"github.com/pinmine/pincli/internal/gateway"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

var testBook = facet.AddressBook{
	Diamond:      common.HexToAddress("0x1000000000000000000000000000000000000001"),
	Auction:      common.HexToAddress("0x2000000000000000000000000000000000000002"),
	GameToken:    common.HexToAddress("0x3000000000000000000000000000000000000003"),
	PaymentToken: common.HexToAddress("0x4000000000000000000000000000000000000004"),
	Multicall:    common.HexToAddress("0x5000000000000000000000000000000000000005"),
}

var testOwner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type fakeSigner struct {
	signCalls atomic.Int32
}

func (s *fakeSigner) Address() string { return testOwner.Hex() }

func (s *fakeSigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	s.signCalls.Add(1)
	return []byte{0x01, 0x02, 0x03}, nil
}

// rpcHandler answers one JSON-RPC method. Return (result, nil) for success
// or (nil, errObj) for a JSON-RPC error.
type rpcHandler func(params []json.RawMessage) (interface{}, map[string]interface{})

func rpcNode(t *testing.T, handlers map[string]rpcHandler) (*httptest.Server, *map[string]*atomic.Int32) {
	t.Helper()
	counts := map[string]*atomic.Int32{}
	for m := range handlers {
		counts[m] = &atomic.Int32{}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if h, ok := handlers[req.Method]; ok {
			counts[req.Method].Add(1)
			result, errObj := h(req.Params)
			if errObj != nil {
				resp["error"] = errObj
			} else {
				resp["result"] = result
			}
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found: " + req.Method}
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &counts
}

func ok(result interface{}) rpcHandler {
	return func([]json.RawMessage) (interface{}, map[string]interface{}) { return result, nil }
}

func rpcFail(msg string) map[string]interface{} {
	return map[string]interface{}{"code": -32000, "message": msg}
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestGateway(url string) *gateway.Gateway {
	return gateway.New(chain.NewEVMClient(url), testBook, big.NewInt(31337))
}

// packOut ABI-encodes a function's return values, the way a node would.
func packOut(t *testing.T, f facet.Facet, fn string, values ...interface{}) []byte {
	t.Helper()
	out, err := f.ABI().Methods[fn].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

// mcCall / mcResult mirror the aggregate3 call and return tuples.
type mcCall struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type mcResult struct {
	Success    bool
	ReturnData []byte
}

func packBatch(t *testing.T, results []mcResult) string {
	t.Helper()
	out, err := facet.Multicall.ABI().Methods["aggregate3"].Outputs.Pack(results)
	require.NoError(t, err)
	return "0x" + hex.EncodeToString(out)
}

// decodeBatchCalls unpacks an incoming aggregate3 calldata into its
// sub-calls. Returns nil on malformed input; handlers run off the test
// goroutine, so no require here.
func decodeBatchCalls(data []byte) []mcCall {
	method := facet.Multicall.ABI().Methods["aggregate3"]
	if len(data) < 4 {
		return nil
	}
	out, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil
	}
	return *abi.ConvertType(out[0], new([]mcCall)).(*[]mcCall)
}

// ethCallInput extracts the destination and calldata of an eth_call.
func ethCallInput(params []json.RawMessage) (common.Address, []byte) {
	var call struct {
		To   string `json:"to"`
		Data string `json:"data"`
	}
	if len(params) > 0 {
		json.Unmarshal(params[0], &call) //nolint:errcheck
	}
	raw, _ := hex.DecodeString(strings.TrimPrefix(call.Data, "0x"))
	return common.HexToAddress(call.To), raw
}

func selectorOf(f facet.Facet, fn string) string {
	return hex.EncodeToString(f.ABI().Methods[fn].ID)
}
