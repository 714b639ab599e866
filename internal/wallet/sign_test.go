package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signingWallet(t *testing.T) (*Wallet, KeystoreBackend) {
	t.Helper()
	ks := NewInMemoryKeystore()
	m := NewManager(WithKeystore(ks))
	require.NoError(t, m.AddWithKey("main", testKey))
	w, err := m.Get("main")
	require.NoError(t, err)
	return w, ks
}

// ---------------------------------------------------------------------------
// SignTx
// ---------------------------------------------------------------------------

func TestSignTxRecoversSender(t *testing.T) {
	w, ks := signingWallet(t)
	chainID := big.NewInt(31337)
	to := common.HexToAddress("0x1000000000000000000000000000000000000001")

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     5,
		GasTipCap: big.NewInt(2_000_000_000),
		GasFeeCap: big.NewInt(4_000_000_000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})

	raw, err := NewSigner(w, ks).SignTx(tx, chainID)
	require.NoError(t, err)

	var signed types.Transaction
	require.NoError(t, signed.UnmarshalBinary(raw))

	sender, err := types.Sender(types.NewLondonSigner(chainID), &signed)
	require.NoError(t, err)
	assert.Equal(t, testAddr, sender.Hex())
}

func TestSignTxWatchOnlyRefuses(t *testing.T) {
	w := &Wallet{Name: "cold", Address: testAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, NewInMemoryKeystore()).SignTx(nil, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignTxMissingKey(t *testing.T) {
	w := &Wallet{Name: "main", Address: testAddr, Type: TypeSigning, KeyRef: "pincli.gone"}
	_, err := NewSigner(w, NewInMemoryKeystore()).SignTx(nil, big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

// ---------------------------------------------------------------------------
// SignMessage / VerifyMessage
// ---------------------------------------------------------------------------

func TestSignMessageRoundTrip(t *testing.T) {
	w, ks := signingWallet(t)
	message := []byte("login challenge 1234")

	sig, err := SignMessage(w, ks, message)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	// V is presented as 27/28 for verifier compatibility.
	assert.Contains(t, []byte{27, 28}, sig[64])

	recovered, err := VerifyMessage(message, sig)
	require.NoError(t, err)
	assert.Equal(t, testAddr, recovered.Hex())
}

func TestVerifyMessageWrongMessage(t *testing.T) {
	w, ks := signingWallet(t)
	sig, err := SignMessage(w, ks, []byte("original"))
	require.NoError(t, err)

	recovered, err := VerifyMessage([]byte("tampered"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, testAddr, recovered.Hex())
}

func TestVerifyMessageBadLength(t *testing.T) {
	_, err := VerifyMessage([]byte("msg"), []byte{0x01, 0x02})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature length")
}

func TestSignMessageWatchOnlyRefuses(t *testing.T) {
	w := &Wallet{Name: "cold", Address: testAddr, Type: TypeWatchOnly}
	_, err := SignMessage(w, NewInMemoryKeystore(), []byte("msg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

// ---------------------------------------------------------------------------
// session cache
// ---------------------------------------------------------------------------

func TestSessionIdentityRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	_, ok := GetSessionIdentity(testAddr)
	assert.False(t, ok)

	require.NoError(t, SetSessionIdentity(testAddr, "token-xyz"))
	token, ok := GetSessionIdentity(testAddr)
	require.True(t, ok)
	assert.Equal(t, "token-xyz", token)

	require.NoError(t, ClearSessionKey(identityRef(testAddr)))
	_, ok = GetSessionIdentity(testAddr)
	assert.False(t, ok)
}
