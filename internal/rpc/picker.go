package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when every configured endpoint is down or
// too far behind the chain head.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm names an endpoint-selection strategy.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"
)

// A node serving a head more than this many blocks behind the best one
// would feed the aggregators stale game state, so it is never picked.
const staleBlockThreshold = 3

// winnerTTL is how long a fastest-pick winner is reused before the
// endpoints are benchmarked again. Game state polling issues many small
// reads per minute; re-racing the endpoints on each would cost more than
// it saves.
const winnerTTL = 5 * time.Minute

// Endpoint is one RPC URL with its last measured health attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked
	Checked     bool // true once the endpoint has been health-checked
}

// Picker chooses an endpoint per the configured algorithm. Safe for
// concurrent use; round-robin position and the fastest-pick winner are
// carried across calls.
type Picker struct {
	algo        Algorithm
	mu          sync.Mutex
	rrIndex     int
	winner      string
	winnerUntil time.Time
	onBenchmark func()
}

func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// OnBenchmark registers a hook invoked on every fresh benchmark run.
func (p *Picker) OnBenchmark(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBenchmark = fn
}

// Pick selects one of endpoints according to the algorithm. Unknown
// algorithms fall back to fastest.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}
	switch p.algo {
	case AlgorithmRoundRobin:
		return p.pickRoundRobin(endpoints)
	case AlgorithmFailover:
		return p.pickFailover(endpoints)
	default:
		return p.pickFastest(endpoints)
	}
}

func (p *Picker) pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.winner != "" && time.Now().Before(p.winnerUntil) {
		for i := range endpoints {
			if endpoints[i].URL == p.winner {
				return &endpoints[i], nil
			}
		}
		// The cached winner left the configured set; fall through and race.
	}

	if p.onBenchmark != nil {
		p.onBenchmark()
	}

	bestBlock := uint64(0)
	for _, e := range endpoints {
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var best *Endpoint
	bestRank := 0.0
	for _, e := range candidates(endpoints) {
		if bestBlock > 0 && bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if r := rank(e, bestBlock); best == nil || r > bestRank {
			best, bestRank = e, r
		}
	}
	if best == nil {
		return nil, ErrNoHealthyRPC
	}

	p.winner = best.URL
	p.winnerUntil = time.Now().Add(winnerTTL)
	return best, nil
}

func (p *Picker) pickRoundRobin(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	healthy := candidates(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyRPC
	}
	idx := p.rrIndex % len(healthy)
	p.rrIndex = (idx + 1) % len(healthy)
	return healthy[idx], nil
}

// pickFailover keeps the configured order: the first endpoint not known
// to be down wins, so the primary is always preferred when it is up.
func (p *Picker) pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		return e, nil
	}
	return nil, ErrNoHealthyRPC
}

// rank scores an endpoint for the fastest pick: inverse latency, plus a
// recency bonus that loses one point per block behind the best head.
func rank(e *Endpoint, bestBlock uint64) float64 {
	r := 0.0
	if e.Latency > 0 {
		r += 1000.0 / float64(e.Latency.Milliseconds())
	}
	if bestBlock > 0 {
		r += float64(10 - (bestBlock - e.BlockNumber))
	}
	return r
}

// candidates filters endpoints for selection. An endpoint that was
// health-checked and failed is out; one that was never checked stays a
// candidate, so a fresh config with no probe data can still pick.
func candidates(endpoints []Endpoint) []*Endpoint {
	anyChecked := false
	for _, e := range endpoints {
		if e.Checked {
			anyChecked = true
			break
		}
	}
	if !anyChecked {
		all := make([]*Endpoint, len(endpoints))
		for i := range endpoints {
			all[i] = &endpoints[i]
		}
		return all
	}

	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
