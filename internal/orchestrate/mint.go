// Package orchestrate sequences the multi-step onboarding mint:
// approval → off-chain pin generation → one atomic multi-call transaction.
// Each run owns its machine; a repeated trigger while a run is in flight is
// a no-op.
package orchestrate

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/pinsvc"
)

// Phase is the machine state. Failed and Complete are transient: the
// machine resets to Idle afterward so the next attempt starts clean.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseApproving  Phase = "approving"
	PhaseGenerating Phase = "generating_metadata"
	PhaseSubmitting Phase = "submitting"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// Progress checkpoints per phase. Coarse on purpose: confirmation latency
// is not reliably estimable, so progress communicates phase, not percent of
// wall time.
const (
	progressIdle       = 0
	progressApproving  = 10
	progressApproved   = 30
	progressGenerating = 35
	progressGenerated  = 45
	progressSubmitting = 50
	progressComplete   = 100
)

var (
	// ErrBusy is returned on a re-entrant Run while a run is in flight.
	ErrBusy = errors.New("a mint is already in progress")
	// ErrNoWallet is the guidance error when no signing wallet is available.
	ErrNoWallet = errors.New("connect a wallet before minting")
	// ErrNoIdentity is the guidance error when the identity token is missing.
	ErrNoIdentity = errors.New("sign in before minting — an identity token is required")
)

// Plan parameterizes one mint variant. The paid path approves and deposits
// an amount alongside the pin; the free eligibility path skips the deposit
// entirely.
type Plan struct {
	IncludeDeposit bool
	DepositAmount  *big.Int // reference-currency units; nil/zero when free
	FlairPrice     *big.Int // starter flair price in the reference currency
	StarterFlair   *big.Int // flair type bought and equipped during onboarding
	StarterSlot    uint8
	UseAltPayment  bool
	Rate           *big.Float // alternate-per-reference rate, fetched this cycle
}

// PaidPlan builds the plan for the paying eligibility path.
func PaidPlan(deposit, flairPrice, starterFlair *big.Int, slot uint8) Plan {
	return Plan{
		IncludeDeposit: true,
		DepositAmount:  deposit,
		FlairPrice:     flairPrice,
		StarterFlair:   starterFlair,
		StarterSlot:    slot,
	}
}

// FreePlan builds the plan for the free eligibility path: no deposit, and
// only the flair price (if any) needs approval.
func FreePlan(flairPrice, starterFlair *big.Int, slot uint8) Plan {
	return Plan{
		IncludeDeposit: false,
		FlairPrice:     flairPrice,
		StarterFlair:   starterFlair,
		StarterSlot:    slot,
	}
}

// ApprovalTotal is the sum of every amount the run pays for, converted to
// the chosen payment token.
func (p Plan) ApprovalTotal() (*big.Int, error) {
	total := new(big.Int)
	if p.IncludeDeposit && p.DepositAmount != nil {
		total.Add(total, p.DepositAmount)
	}
	if p.FlairPrice != nil {
		total.Add(total, p.FlairPrice)
	}
	return convert(total, p.UseAltPayment, p.Rate)
}

// Deps are the collaborators one run drives, injected explicitly so every
// transition is reproducible in tests.
type Deps struct {
	SignerAddress string
	EnsureApproval func(ctx context.Context, total *big.Int) error
	GeneratePin    func(ctx context.Context, identityID string) (*pinsvc.Pin, error)
	SubmitMint     func(ctx context.Context, contentID string, plan Plan) (string, *chain.TxReceipt, error)
	OnProgress     func(phase Phase, progress int)
}

// Result is returned from a completed run.
type Result struct {
	Pin     *pinsvc.Pin
	TxHash  string
	Receipt *chain.TxReceipt
}

// Orchestrator drives one user action's mint machine.
type Orchestrator struct {
	deps Deps
	plan Plan

	mu       sync.Mutex
	phase    Phase
	progress int
}

// New creates an idle orchestrator for the given plan.
func New(deps Deps, plan Plan) *Orchestrator {
	return &Orchestrator{deps: deps, plan: plan, phase: PhaseIdle}
}

// Phase returns the current machine phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Progress returns the current 0–100 progress value.
func (o *Orchestrator) Progress() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

func (o *Orchestrator) set(phase Phase, progress int) {
	o.mu.Lock()
	o.phase = phase
	o.progress = progress
	cb := o.deps.OnProgress
	o.mu.Unlock()
	if cb != nil {
		cb(phase, progress)
	}
}

// Run executes the machine once. While a run is in flight, further calls
// return ErrBusy without touching phase or progress. Preconditions that
// fail leave the machine in idle with a guidance error.
func (o *Orchestrator) Run(ctx context.Context, identityID string) (*Result, error) {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	// Guards: never leave idle when preconditions are unmet.
	if o.deps.SignerAddress == "" {
		o.mu.Unlock()
		return nil, ErrNoWallet
	}
	if identityID == "" {
		o.mu.Unlock()
		return nil, ErrNoIdentity
	}
	o.phase = PhaseApproving
	o.progress = progressApproving
	o.mu.Unlock()
	if o.deps.OnProgress != nil {
		o.deps.OnProgress(PhaseApproving, progressApproving)
	}

	result, err := o.run(ctx, identityID)
	if err != nil {
		o.set(PhaseFailed, o.Progress())
		o.set(PhaseIdle, progressIdle)
		return nil, err
	}

	o.set(PhaseComplete, progressComplete)
	o.set(PhaseIdle, progressIdle)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, identityID string) (*Result, error) {
	total, err := o.plan.ApprovalTotal()
	if err != nil {
		return nil, err
	}
	if err := o.deps.EnsureApproval(ctx, total); err != nil {
		return nil, err
	}
	o.set(PhaseApproving, progressApproved)

	o.set(PhaseGenerating, progressGenerating)
	pin, err := o.deps.GeneratePin(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if pin == nil || pin.ContentID == "" {
		return nil, errors.New("pin generation returned no content id")
	}
	o.set(PhaseGenerating, progressGenerated)

	o.set(PhaseSubmitting, progressSubmitting)
	txHash, receipt, err := o.deps.SubmitMint(ctx, pin.ContentID, o.plan)
	if err != nil {
		return nil, err
	}

	return &Result{Pin: pin, TxHash: txHash, Receipt: receipt}, nil
}
