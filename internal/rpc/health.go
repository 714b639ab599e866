package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/pinmine/pincli/internal/chain"
)

// HealthCheck pings a single EVM RPC and returns whether it's healthy.
// A node is considered healthy if it responds within timeout and its block
// is within staleBlockThreshold of bestBlock (pass 0 to skip recency check).
func HealthCheck(ctx context.Context, url string, bestBlock uint64) (Endpoint, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := chain.NewEVMClient(url)
	latency, blockNum, err := c.Ping(timeoutCtx)

	ep := Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: blockNum,
		Healthy:     err == nil,
		Checked:     true,
	}

	// Apply stale-block check.
	if err == nil && bestBlock > 0 && bestBlock-blockNum > staleBlockThreshold {
		ep.Healthy = false
	}

	return ep, err
}

// CheckAll health-checks every URL concurrently and returns the results
// in input order.
func CheckAll(ctx context.Context, urls []string) []Endpoint {
	endpoints := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			ep, _ := HealthCheck(ctx, url, 0)
			endpoints[i] = ep
		}(i, url)
	}
	wg.Wait()
	return endpoints
}

// Select health-checks the configured URLs and picks one according to the
// picker's algorithm. Single-URL configs skip the benchmark entirely.
func (p *Picker) Select(ctx context.Context, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	ep, err := p.Pick(CheckAll(ctx, urls))
	if err != nil {
		return "", err
	}
	return ep.URL, nil
}
