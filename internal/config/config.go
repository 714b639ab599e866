package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pinmine/pincli/internal/facet"
)

const (
	configFile  = "config.json"
	walletsFile = "wallets.json"

	defaultAlgorithm    = "fastest"
	defaultPollInterval = 10 // seconds
)

// Config holds all pincli configuration.
type Config struct {
	RPCs          []string `json:"rpcs"`
	RPCAlgorithm  string   `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	DefaultWallet string   `json:"default_wallet"`
	PollInterval  int      `json:"poll_interval"` // seconds, status/price refresh

	// Deployed game contracts.
	Diamond      string `json:"diamond"`
	Auction      string `json:"auction"`
	GameToken    string `json:"game_token"`
	PaymentToken string `json:"payment_token"`
	Multicall    string `json:"multicall"`

	// External collaborators.
	PinServiceURL string `json:"pin_service_url"`
	PriceFeedURL  string `json:"price_feed_url"`

	// internal: config dir path used for Save()
	configDir string
}

func defaults(dir string) *Config {
	return &Config{
		RPCAlgorithm: defaultAlgorithm,
		PollInterval: defaultPollInterval,
		configDir:    dir,
	}
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.pincli.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv("PINCLI_CONFIG_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".pincli")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// WalletsPath returns the wallets.json path inside the config dir.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// AddRPC adds an RPC URL.
func (c *Config) AddRPC(url string) error {
	if slices.Contains(c.RPCs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.RPCs = append(c.RPCs, url)
	return nil
}

// RemoveRPC removes an RPC URL.
func (c *Config) RemoveRPC(url string) error {
	idx := slices.Index(c.RPCs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found", url)
	}
	c.RPCs = slices.Delete(c.RPCs, idx, idx+1)
	return nil
}

// AddressBook resolves the configured contract addresses. Missing entries
// stay zero and fail at facet resolution with a pointed error.
func (c *Config) AddressBook() facet.AddressBook {
	return facet.AddressBook{
		Diamond:      common.HexToAddress(c.Diamond),
		Auction:      common.HexToAddress(c.Auction),
		GameToken:    common.HexToAddress(c.GameToken),
		PaymentToken: common.HexToAddress(c.PaymentToken),
		Multicall:    common.HexToAddress(c.Multicall),
	}
}
