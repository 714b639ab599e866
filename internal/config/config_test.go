package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 10, cfg.PollInterval)
	assert.Empty(t, cfg.RPCs)
	assert.Empty(t, cfg.Diamond)
}

func TestLoadCreatesConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".pincli")
	_, err := Load(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.Diamond = "0x1000000000000000000000000000000000000001"
	cfg.DefaultWallet = "main"
	cfg.RPCAlgorithm = "failover"
	cfg.PollInterval = 5
	require.NoError(t, cfg.AddRPC("https://rpc.example"))
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Diamond, loaded.Diamond)
	assert.Equal(t, "main", loaded.DefaultWallet)
	assert.Equal(t, "failover", loaded.RPCAlgorithm)
	assert.Equal(t, 5, loaded.PollInterval)
	assert.Equal(t, []string{"https://rpc.example"}, loaded.RPCs)
}

func TestSaveRestrictsFilePermissions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadEnvDirFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PINCLI_CONFIG_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoadNormalizesBadPollInterval(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"poll_interval": -3}`), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PollInterval)
}

// ---------------------------------------------------------------------------
// RPC list
// ---------------------------------------------------------------------------

func TestAddRPCDuplicate(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("https://a.example"))
	assert.Error(t, cfg.AddRPC("https://a.example"))
	assert.Len(t, cfg.RPCs, 1)
}

func TestRemoveRPC(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("https://a.example"))
	require.NoError(t, cfg.AddRPC("https://b.example"))
	require.NoError(t, cfg.RemoveRPC("https://a.example"))
	assert.Equal(t, []string{"https://b.example"}, cfg.RPCs)

	assert.Error(t, cfg.RemoveRPC("https://gone.example"))
}

// ---------------------------------------------------------------------------
// AddressBook
// ---------------------------------------------------------------------------

func TestAddressBookResolvesConfigured(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Diamond = "0x1000000000000000000000000000000000000001"
	cfg.Multicall = "0x5000000000000000000000000000000000000005"

	book := cfg.AddressBook()
	assert.Equal(t, common.HexToAddress(cfg.Diamond), book.Diamond)
	assert.Equal(t, common.HexToAddress(cfg.Multicall), book.Multicall)
	// Unconfigured entries stay zero so facet resolution can fail loudly.
	assert.Equal(t, common.Address{}, book.Auction)
}
