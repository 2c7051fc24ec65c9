package session

import (
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swap "go-token-swap"
)

// task one scheduled callback, visible to the test
type task struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// fakeScheduler records scheduled tasks and lets tests fire them by hand,
// so no test waits on the wall clock.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &task{delay: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
	}
}

// fire runs every task pending at the time of the call. Tasks armed while
// firing stay pending for the next call, so tests can observe intermediate
// states.
func (s *fakeScheduler) fire() {
	s.mu.Lock()
	batch := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			t.fired = true
			batch = append(batch, t)
		}
	}
	s.mu.Unlock()

	for _, t := range batch {
		t.fn()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

// stubRates a mutable rate source
type stubRates struct {
	mu    sync.Mutex
	rates swap.Rates
}

func (s *stubRates) RateOf(symbol swap.Symbol) (swap.Rate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rate, ok := s.rates[symbol]
	return rate, ok
}

func (s *stubRates) remove(symbol swap.Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rates, symbol)
}

var (
	eth  = swap.Token{Symbol: "ETH", Name: "Ethereum", Price: 1850}
	blur = swap.Token{Symbol: "BLUR", Name: "Blur", Price: 0.3}
)

func testConfig() Config {
	return Config{
		Debounce:        200 * time.Millisecond,
		SwapDuration:    2 * time.Second,
		SuccessDuration: 5 * time.Second,
		Slippage:        "0.50",
	}
}

func newTestSession(t *testing.T) (*Session, *fakeScheduler, *stubRates) {
	t.Helper()
	scheduler := &fakeScheduler{}
	rates := &stubRates{rates: swap.Rates{"ETH": 1850, "BLUR": 0.3}}
	s := New(testConfig(), rates, scheduler, log.NewNopLogger(), Options{
		From:       &eth,
		To:         &blur,
		AmountText: "500",
	})
	t.Cleanup(s.Close)
	return s, scheduler, rates
}

func TestNew_SeededInputsOpenDebounceWindow(t *testing.T) {
	s, scheduler, _ := newTestSession(t)

	snapshot := s.Snapshot()
	assert.Equal(t, StateCalculating, snapshot.State)
	assert.Nil(t, snapshot.ToAmount)

	scheduler.fire()

	snapshot = s.Snapshot()
	assert.Equal(t, StateReady, snapshot.State)
	require.NotNil(t, snapshot.ToAmount)
	assert.Equal(t, swap.Amount(3083333), *snapshot.ToAmount)
	assert.Equal(t, swap.Rate(6166), snapshot.UnitRate)
}

func TestNew_UnsetTokensStartIdle(t *testing.T) {
	scheduler := &fakeScheduler{}
	rates := &stubRates{rates: swap.Rates{"ETH": 1850}}
	s := New(testConfig(), rates, scheduler, log.NewNopLogger(), Options{AmountText: "500"})
	defer s.Close()

	assert.Equal(t, StateIdle, s.Snapshot().State)
	assert.Equal(t, 0, scheduler.pending())
}

func TestSetAmount_RejectsInvalidInput(t *testing.T) {
	s, _, _ := newTestSession(t)

	assert.False(t, s.SetAmount("5.0"))
	assert.False(t, s.SetAmount("-5"))
	assert.False(t, s.SetAmount("abc"))

	// the previous text is kept
	assert.Equal(t, "500", s.Snapshot().FromAmountText)
}

func TestSetAmount_EmptyTextClearsOutputImmediately(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()
	require.Equal(t, StateReady, s.Snapshot().State)

	assert.True(t, s.SetAmount(""))

	// no stale output, no debounce window: straight to idle
	snapshot := s.Snapshot()
	assert.Equal(t, StateIdle, snapshot.State)
	assert.Nil(t, snapshot.ToAmount)
	assert.Equal(t, 0, scheduler.pending())
}

func TestSetAmount_SupersededTimerNeverPublishes(t *testing.T) {
	s, scheduler, _ := newTestSession(t)

	require.True(t, s.SetAmount("100"))
	first := scheduler.tasks[len(scheduler.tasks)-1]

	require.True(t, s.SetAmount("600"))

	// run the superseded callback anyway, as if cancellation raced the
	// timer firing
	first.fn()
	snapshot := s.Snapshot()
	assert.Equal(t, StateCalculating, snapshot.State)
	assert.Nil(t, snapshot.ToAmount)

	scheduler.fire()

	snapshot = s.Snapshot()
	require.NotNil(t, snapshot.ToAmount)
	// 600 * 1850 / 0.3, never the superseded 100-based value
	assert.Equal(t, swap.Amount(3700000), *snapshot.ToAmount)
}

func TestCalculate_UsesRatesCurrentAtExpiry(t *testing.T) {
	s, scheduler, rates := newTestSession(t)

	// the table is replaced while the debounce window is open
	rates.mu.Lock()
	rates.rates["ETH"] = 1900
	rates.mu.Unlock()

	scheduler.fire()

	snapshot := s.Snapshot()
	require.NotNil(t, snapshot.ToAmount)
	assert.Equal(t, swap.Amount(3166666), *snapshot.ToAmount)
}

func TestSelect_AlreadyChosenElsewhereIsANoOp(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()

	s.SelectFrom(blur)
	snapshot := s.Snapshot()
	assert.Equal(t, swap.Symbol("ETH"), snapshot.From.Symbol)
	assert.Equal(t, swap.Symbol("BLUR"), snapshot.To.Symbol)

	s.SelectTo(eth)
	snapshot = s.Snapshot()
	assert.Equal(t, swap.Symbol("ETH"), snapshot.From.Symbol)
	assert.Equal(t, swap.Symbol("BLUR"), snapshot.To.Symbol)
}

func TestSelect_MissingRateDropsToIdle(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()

	s.SelectTo(swap.Token{Symbol: "GMX", Name: "GMX", Price: 36})

	snapshot := s.Snapshot()
	assert.Equal(t, StateIdle, snapshot.State)
	assert.Nil(t, snapshot.ToAmount)
}

func TestInvert_IsInvolutiveOnTokenPair(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()

	s.Invert()
	snapshot := s.Snapshot()
	assert.Equal(t, swap.Symbol("BLUR"), snapshot.From.Symbol)
	assert.Equal(t, swap.Symbol("ETH"), snapshot.To.Symbol)
	// seeded with the previous output
	assert.Equal(t, "3083333", snapshot.FromAmountText)
	assert.Nil(t, snapshot.ToAmount)
	assert.NotEqual(t, StateSubmitting, snapshot.State)

	s.Invert()
	snapshot = s.Snapshot()
	assert.Equal(t, swap.Symbol("ETH"), snapshot.From.Symbol)
	assert.Equal(t, swap.Symbol("BLUR"), snapshot.To.Symbol)
}

func TestInvert_WithoutOutputSeedsZero(t *testing.T) {
	s, _, _ := newTestSession(t)

	// still calculating, no output yet
	s.Invert()

	snapshot := s.Snapshot()
	assert.Equal(t, "0", snapshot.FromAmountText)
	assert.Equal(t, StateIdle, snapshot.State)
}

func TestSubmit_RejectsMissingTokens(t *testing.T) {
	scheduler := &fakeScheduler{}
	rates := &stubRates{rates: swap.Rates{"ETH": 1850, "BLUR": 0.3}}
	s := New(testConfig(), rates, scheduler, log.NewNopLogger(), Options{AmountText: "500"})
	defer s.Close()

	before := s.Snapshot().State
	assert.False(t, s.Submit())

	snapshot := s.Snapshot()
	assert.Equal(t, before, snapshot.State)
	assert.Equal(t, "Please select both tokens", snapshot.ErrorMessage)
}

func TestSubmit_RejectsNonPositiveAmount(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()

	require.True(t, s.SetAmount("0"))
	scheduler.fire()

	assert.False(t, s.Submit())
	snapshot := s.Snapshot()
	assert.Equal(t, "Please enter a valid amount", snapshot.ErrorMessage)
	assert.NotEqual(t, StateSubmitting, snapshot.State)
}

func TestSubmit_RejectedWhileCalculating(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.Equal(t, StateCalculating, s.Snapshot().State)

	assert.False(t, s.Submit())
	assert.Equal(t, StateCalculating, s.Snapshot().State)
}

func TestSubmit_SettlesAndAutoDismisses(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()

	require.True(t, s.Submit())
	snapshot := s.Snapshot()
	assert.Equal(t, StateSubmitting, snapshot.State)

	// a second submit must not start concurrently
	assert.False(t, s.Submit())

	scheduler.fire()
	snapshot = s.Snapshot()
	assert.Equal(t, StateSettled, snapshot.State)
	assert.Equal(t, "Successfully swapped 500 ETH for 3083333 BLUR!", snapshot.SuccessMessage)

	// the auto-dismiss window expires
	scheduler.fire()
	snapshot = s.Snapshot()
	assert.Equal(t, StateReady, snapshot.State)
	assert.Empty(t, snapshot.SuccessMessage)
	require.NotNil(t, snapshot.ToAmount)
	assert.Equal(t, swap.Amount(3083333), *snapshot.ToAmount)
}

func TestSubmit_ExplicitDismiss(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()
	require.True(t, s.Submit())
	scheduler.fire()
	require.Equal(t, StateSettled, s.Snapshot().State)

	s.DismissSuccess()

	snapshot := s.Snapshot()
	assert.Equal(t, StateReady, snapshot.State)
	assert.Empty(t, snapshot.SuccessMessage)
	assert.Empty(t, snapshot.ErrorMessage)
	// the auto-dismiss timer is dead
	assert.Equal(t, 0, scheduler.pending())
}

func TestSubmit_ClearsPreviousMessages(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()

	require.True(t, s.SetAmount("0"))
	assert.False(t, s.Submit())
	require.NotEmpty(t, s.Snapshot().ErrorMessage)

	require.True(t, s.SetAmount("500"))
	scheduler.fire()
	require.True(t, s.Submit())

	assert.Empty(t, s.Snapshot().ErrorMessage)
}

func TestSubmit_EditDuringSettlementDoesNotRewriteMessage(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()
	require.True(t, s.Submit())

	// typing while the swap settles keeps the session submitting
	require.True(t, s.SetAmount("9"))
	assert.Equal(t, StateSubmitting, s.Snapshot().State)

	scheduler.fire()

	snapshot := s.Snapshot()
	// the confirmation reflects what was submitted, not the later edit
	assert.Equal(t, "Successfully swapped 500 ETH for 3083333 BLUR!", snapshot.SuccessMessage)
}

func TestSettle_FailsWhenRatesDisappearMidFlight(t *testing.T) {
	s, scheduler, rates := newTestSession(t)
	scheduler.fire()
	require.True(t, s.Submit())

	rates.remove("BLUR")
	scheduler.fire()

	snapshot := s.Snapshot()
	assert.Equal(t, StateFailed, snapshot.State)
	assert.NotEmpty(t, snapshot.ErrorMessage)
	assert.Empty(t, snapshot.SuccessMessage)
}

func TestClose_PendingTimersAreNoOps(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	require.Equal(t, 1, scheduler.pending())

	pending := scheduler.tasks[len(scheduler.tasks)-1]
	s.Close()
	assert.Equal(t, 0, scheduler.pending())

	// even a callback that raced past cancellation must not write into
	// the closed session
	pending.fn()
	snapshot := s.Snapshot()
	assert.Nil(t, snapshot.ToAmount)
	assert.NotEqual(t, StateReady, snapshot.State)
}

func TestClose_DuringSettlement(t *testing.T) {
	s, scheduler, _ := newTestSession(t)
	scheduler.fire()
	require.True(t, s.Submit())

	settle := scheduler.tasks[len(scheduler.tasks)-1]
	s.Close()

	settle.fn()
	assert.Empty(t, s.Snapshot().SuccessMessage)
}

func TestClose_Idempotent(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Close()
	s.Close()

	assert.False(t, s.SetAmount("1"))
	assert.False(t, s.Submit())
}
