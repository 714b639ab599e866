package aggregate

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinmine/pincli/internal/facet"
)

// flairNode mocks the full equip/unequip transaction flow. eth_call is
// dispatched on the calldata selector; seen() returns the selector order.
type flairNode struct {
	mu       sync.Mutex
	selector []string
	approved bool // isApprovedForAll answer
}

func (n *flairNode) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.selector...)
}

func (n *flairNode) handlers(t *testing.T) map[string]rpcHandler {
	t.Helper()
	isApproved := packOut(t, facet.Flair, "isApprovedForAll", n.approved)
	return map[string]rpcHandler{
		"eth_call": func(params []json.RawMessage) (interface{}, map[string]interface{}) {
			to, data := ethCallInput(params)
			if to == testBook.Multicall {
				// Post-write refresh; its failure never fails the mutation.
				return nil, rpcFail("refresh unavailable")
			}
			if len(data) < 4 {
				return nil, rpcFail("empty calldata")
			}
			sel := hex.EncodeToString(data[:4])
			n.mu.Lock()
			n.selector = append(n.selector, sel)
			n.mu.Unlock()

			if sel == selectorOf(facet.Flair, "isApprovedForAll") {
				return "0x" + hex.EncodeToString(isApproved), nil
			}
			return "0x", nil // write simulations succeed
		},
		"eth_estimateGas":         ok("0x30d40"),
		"eth_gasPrice":            ok("0x77359400"),
		"eth_getTransactionCount": ok("0x5"),
		"eth_sendRawTransaction":  ok("0x2222222222222222222222222222222222222222222222222222222222222222"),
		"eth_getTransactionReceipt": ok(map[string]interface{}{
			"status": "0x1", "blockNumber": "0x64", "gasUsed": "0x5208",
		}),
		// Head is already one past the approval's block: two confirmations.
		"eth_blockNumber": ok("0x65"),
	}
}

// ---------------------------------------------------------------------------
// Equip / Unequip / Fuse
// ---------------------------------------------------------------------------

func TestEquipGrantsOperatorFirst(t *testing.T) {
	node := &flairNode{approved: false}
	srv, counts := rpcNode(t, node.handlers(t))

	signer := &fakeSigner{}
	agg := NewCollection(newTestGateway(srv.URL), signer, testOwner)
	res, err := agg.Equip(ctxT(t), big.NewInt(2), 0)
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)

	// Two transactions: setApprovalForAll, then equipFlair.
	assert.Equal(t, int32(2), (*counts)["eth_sendRawTransaction"].Load())
	assert.Equal(t, int32(2), signer.signCalls.Load())

	want := []string{
		selectorOf(facet.Flair, "isApprovedForAll"),
		selectorOf(facet.Flair, "setApprovalForAll"),
		selectorOf(facet.Flair, "equipFlair"),
	}
	assert.Equal(t, want, node.seen())

	// The approval waited on the chain head, not just its own receipt.
	assert.GreaterOrEqual(t, (*counts)["eth_blockNumber"].Load(), int32(1))
}

func TestEquipSkipsGrantWhenOperatorSet(t *testing.T) {
	node := &flairNode{approved: true}
	srv, counts := rpcNode(t, node.handlers(t))

	agg := NewCollection(newTestGateway(srv.URL), &fakeSigner{}, testOwner)
	_, err := agg.Equip(ctxT(t), big.NewInt(2), 3)
	require.NoError(t, err)

	assert.Equal(t, int32(1), (*counts)["eth_sendRawTransaction"].Load())
	assert.Equal(t, int32(0), (*counts)["eth_blockNumber"].Load())
	assert.NotContains(t, node.seen(), selectorOf(facet.Flair, "setApprovalForAll"))
}

func TestUnequipNeedsNoOperator(t *testing.T) {
	// Unequipping returns custody to the wallet; no operator grant involved.
	node := &flairNode{approved: false}
	srv, counts := rpcNode(t, node.handlers(t))

	agg := NewCollection(newTestGateway(srv.URL), &fakeSigner{}, testOwner)
	_, err := agg.Unequip(ctxT(t), 3)
	require.NoError(t, err)

	assert.Equal(t, int32(1), (*counts)["eth_sendRawTransaction"].Load())
	assert.NotContains(t, node.seen(), selectorOf(facet.Flair, "isApprovedForAll"))
}

func TestFuseGrantsOperatorFirst(t *testing.T) {
	// Fusing burns both inputs, so it runs the same operator check as equip.
	node := &flairNode{approved: false}
	srv, counts := rpcNode(t, node.handlers(t))

	agg := NewCollection(newTestGateway(srv.URL), &fakeSigner{}, testOwner)
	_, err := agg.Fuse(ctxT(t), big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)

	assert.Equal(t, int32(2), (*counts)["eth_sendRawTransaction"].Load())
	assert.Contains(t, node.seen(), selectorOf(facet.Flair, "setApprovalForAll"))
}

func TestCollectionMutatorsRequireSigner(t *testing.T) {
	agg := NewCollection(newTestGateway("http://127.0.0.1:1"), nil, testOwner)
	ctx := ctxT(t)

	_, err := agg.Buy(ctx, big.NewInt(1), big.NewInt(100))
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = agg.Equip(ctx, big.NewInt(1), 0)
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = agg.Unequip(ctx, 0)
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = agg.Fuse(ctx, big.NewInt(1), big.NewInt(2))
	assert.ErrorIs(t, err, ErrReadOnly)
}
