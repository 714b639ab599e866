package orchestrate

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/pinsvc"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// recorder tracks what the orchestrator called and in what order.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	approved *big.Int
	phases   []Phase
	progress []int

	approvalErr error
	generateErr error
	submitErr   error
	pin         *pinsvc.Pin
	block       chan struct{} // when set, GeneratePin blocks until closed
}

func (r *recorder) deps(addr string) Deps {
	return Deps{
		SignerAddress: addr,
		EnsureApproval: func(ctx context.Context, total *big.Int) error {
			r.mu.Lock()
			r.calls = append(r.calls, "approve")
			r.approved = total
			r.mu.Unlock()
			return r.approvalErr
		},
		GeneratePin: func(ctx context.Context, identityID string) (*pinsvc.Pin, error) {
			r.mu.Lock()
			r.calls = append(r.calls, "generate")
			block := r.block
			r.mu.Unlock()
			if block != nil {
				<-block
			}
			if r.generateErr != nil {
				return nil, r.generateErr
			}
			return r.pin, nil
		},
		SubmitMint: func(ctx context.Context, contentID string, plan Plan) (string, *chain.TxReceipt, error) {
			r.mu.Lock()
			r.calls = append(r.calls, "submit:"+contentID)
			r.mu.Unlock()
			if r.submitErr != nil {
				return "", nil, r.submitErr
			}
			return "0xhash", &chain.TxReceipt{Status: 1, BlockNumber: 7}, nil
		},
		OnProgress: func(phase Phase, progress int) {
			r.mu.Lock()
			r.phases = append(r.phases, phase)
			r.progress = append(r.progress, progress)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) callNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

const testAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func newRecorder() *recorder {
	return &recorder{pin: &pinsvc.Pin{ContentID: "pin-123", ImageURL: "https://img/pin-123"}}
}

// ---------------------------------------------------------------------------
// happy paths
// ---------------------------------------------------------------------------

func TestRunPaidPath(t *testing.T) {
	r := newRecorder()
	plan := PaidPlan(big.NewInt(5000), big.NewInt(300), big.NewInt(2), 1)
	orch := New(r.deps(testAddr), plan)

	res, err := orch.Run(context.Background(), "identity-1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "0xhash", res.TxHash)
	assert.Equal(t, "pin-123", res.Pin.ContentID)

	// Approval covers deposit + flair price, and runs before generation
	// and submission.
	assert.Equal(t, []string{"approve", "generate", "submit:pin-123"}, r.callNames())
	assert.Equal(t, int64(5300), r.approved.Int64())

	// Machine settles back to idle for the next run.
	assert.Equal(t, PhaseIdle, orch.Phase())
	assert.Equal(t, 0, orch.Progress())
}

func TestRunFreePathSkipsDepositAmount(t *testing.T) {
	r := newRecorder()
	plan := FreePlan(big.NewInt(300), big.NewInt(2), 0)
	orch := New(r.deps(testAddr), plan)

	_, err := orch.Run(context.Background(), "identity-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), r.approved.Int64())
}

func TestRunProgressSequence(t *testing.T) {
	r := newRecorder()
	orch := New(r.deps(testAddr), FreePlan(nil, nil, 0))

	_, err := orch.Run(context.Background(), "identity-1")
	require.NoError(t, err)

	assert.Equal(t, []Phase{
		PhaseApproving, PhaseApproving,
		PhaseGenerating, PhaseGenerating,
		PhaseSubmitting,
		PhaseComplete, PhaseIdle,
	}, r.phases)
	assert.Equal(t, []int{10, 30, 35, 45, 50, 100, 0}, r.progress)
}

// ---------------------------------------------------------------------------
// guards
// ---------------------------------------------------------------------------

func TestRunNoWallet(t *testing.T) {
	r := newRecorder()
	orch := New(r.deps(""), FreePlan(nil, nil, 0))

	_, err := orch.Run(context.Background(), "identity-1")
	assert.ErrorIs(t, err, ErrNoWallet)
	assert.Equal(t, PhaseIdle, orch.Phase())
	assert.Empty(t, r.callNames())
}

func TestRunNoIdentity(t *testing.T) {
	r := newRecorder()
	orch := New(r.deps(testAddr), FreePlan(nil, nil, 0))

	_, err := orch.Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, PhaseIdle, orch.Phase())
	assert.Empty(t, r.callNames())
}

func TestRunWhileBusyIsNoop(t *testing.T) {
	r := newRecorder()
	r.block = make(chan struct{})
	orch := New(r.deps(testAddr), FreePlan(nil, nil, 0))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := orch.Run(context.Background(), "identity-1")
		assert.NoError(t, err)
	}()

	// Wait until the first run is inside GeneratePin.
	for orch.Phase() != PhaseGenerating {
		time.Sleep(time.Millisecond)
	}
	phaseBefore := orch.Phase()
	progressBefore := orch.Progress()

	_, err := orch.Run(context.Background(), "identity-2")
	assert.ErrorIs(t, err, ErrBusy)
	// The in-flight run's state is untouched by the rejected call.
	assert.Equal(t, phaseBefore, orch.Phase())
	assert.Equal(t, progressBefore, orch.Progress())

	close(r.block)
	<-done

	// Only the first run's calls happened.
	assert.Equal(t, []string{"approve", "generate", "submit:pin-123"}, r.callNames())
}

// ---------------------------------------------------------------------------
// failures
// ---------------------------------------------------------------------------

func TestRunApprovalFailureStopsPipeline(t *testing.T) {
	r := newRecorder()
	r.approvalErr = errors.New("insufficient funds")
	orch := New(r.deps(testAddr), PaidPlan(big.NewInt(100), nil, nil, 0))

	_, err := orch.Run(context.Background(), "identity-1")
	require.Error(t, err)
	assert.Equal(t, []string{"approve"}, r.callNames())
	assert.Equal(t, PhaseIdle, orch.Phase())
}

func TestRunEmptyContentIDFails(t *testing.T) {
	r := newRecorder()
	r.pin = &pinsvc.Pin{ContentID: ""}
	orch := New(r.deps(testAddr), FreePlan(nil, nil, 0))

	_, err := orch.Run(context.Background(), "identity-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content id")
	// Submission never happened.
	assert.Equal(t, []string{"approve", "generate"}, r.callNames())
}

func TestRunSubmitFailurePassesThroughFailedToIdle(t *testing.T) {
	r := newRecorder()
	r.submitErr = errors.New("execution reverted: Pin__AlreadyMinted")
	orch := New(r.deps(testAddr), FreePlan(nil, nil, 0))

	_, err := orch.Run(context.Background(), "identity-1")
	require.Error(t, err)

	// Failure surfaces through the progress stream, then the machine resets.
	assert.Contains(t, r.phases, PhaseFailed)
	assert.Equal(t, PhaseIdle, orch.Phase())
	assert.Equal(t, 0, orch.Progress())
}

func TestRunReusableAfterFailure(t *testing.T) {
	r := newRecorder()
	r.generateErr = errors.New("pin service down")
	orch := New(r.deps(testAddr), FreePlan(nil, nil, 0))

	_, err := orch.Run(context.Background(), "identity-1")
	require.Error(t, err)

	r.generateErr = nil
	res, err := orch.Run(context.Background(), "identity-1")
	require.NoError(t, err)
	assert.Equal(t, "0xhash", res.TxHash)
}

// ---------------------------------------------------------------------------
// plan conversion
// ---------------------------------------------------------------------------

func TestApprovalTotalAlternatePayment(t *testing.T) {
	plan := PaidPlan(big.NewInt(100), big.NewInt(50), big.NewInt(1), 0)
	plan.UseAltPayment = true
	plan.Rate = big.NewFloat(2000)

	total, err := plan.ApprovalTotal()
	require.NoError(t, err)
	assert.Equal(t, int64(300000), total.Int64())
}

func TestApprovalTotalAlternateWithoutRate(t *testing.T) {
	plan := PaidPlan(big.NewInt(100), nil, nil, 0)
	plan.UseAltPayment = true

	_, err := plan.ApprovalTotal()
	require.Error(t, err)
}
