// Package price retrieves the reference exchange rate between the game's
// payment currencies: how many units of the alternate token equal one unit
// of the WETH-denominated reference price.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// Fetcher retrieves the reference rate from the price feed endpoint.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for the given feed URL.
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetReferencePrice fetches the current rate. Zero or missing rates are
// errors: a not-yet-loaded oracle must never silently convert to zero.
func (f *Fetcher) GetReferencePrice(ctx context.Context) (*big.Float, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price feed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned %d", resp.StatusCode)
	}

	var out struct {
		Rate string `json:"rate"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parsing price feed response: %w", err)
	}

	rate, ok := new(big.Float).SetString(out.Rate)
	if !ok {
		return nil, fmt.Errorf("invalid rate: %q", out.Rate)
	}
	if rate.Sign() <= 0 {
		return nil, fmt.Errorf("price feed returned non-positive rate")
	}
	return rate, nil
}

// Snapshot is one observed rate with its observation time. Financial
// computations must take a Snapshot fetched in the current cycle, never a
// stored one.
type Snapshot struct {
	Rate *big.Float
	At   time.Time
}

// Poller refreshes the rate on a fixed interval for display purposes.
type Poller struct {
	fetcher  *Fetcher
	interval time.Duration

	mu   sync.RWMutex
	last Snapshot
}

// NewPoller creates a poller over fetcher with the given refresh interval.
func NewPoller(fetcher *Fetcher, interval time.Duration) *Poller {
	return &Poller{fetcher: fetcher, interval: interval}
}

// Run polls until ctx is done. Errors are skipped; the previous snapshot
// stays visible until a fresh read succeeds.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	rate, err := p.fetcher.GetReferencePrice(ctx)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.last = Snapshot{Rate: rate, At: time.Now()}
	p.mu.Unlock()
}

// Last returns the most recent snapshot. Display-only: for approvals,
// fetch fresh via the Fetcher instead.
func (p *Poller) Last() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.last.Rate != nil
}
