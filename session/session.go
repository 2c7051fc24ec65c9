// Package session drives the swap lifecycle: token selection, the debounced
// output computation and the simulated settlement of a submitted swap.
package session

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-kit/log"

	swap "go-token-swap"
	"go-token-swap/exchange"
)

// State the lifecycle phase of a session
type State string

const (
	// StateIdle no output computed
	StateIdle State = "idle"

	// StateCalculating the debounce window is open, any previous output is stale
	StateCalculating State = "calculating"

	// StateReady an output amount is available and current
	StateReady State = "ready"

	// StateSubmitting a settlement is in flight
	StateSubmitting State = "submitting"

	// StateSettled the settlement succeeded; reverts to ready after the
	// success display window
	StateSettled State = "settled"

	// StateFailed the settlement could not complete, e.g. a token's rate
	// disappeared from the table while the swap was in flight
	StateFailed State = "failed"
)

// User-facing validation messages. Cleared at the start of the next submit.
const (
	msgSelectTokens = "Please select both tokens"
	msgEnterAmount  = "Please enter a valid amount"
	msgRatesGone    = "Token rates are no longer available"
)

// Config holds the timing constants and the display-only slippage label.
type Config struct {
	// Debounce how long after the last edit the output computation runs
	Debounce time.Duration

	// SwapDuration the simulated settlement delay
	SwapDuration time.Duration

	// SuccessDuration how long the success message stays before
	// auto-dismissing
	SuccessDuration time.Duration

	// Slippage display-only slippage label, never computed with
	Slippage string
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	From           *swap.Token
	To             *swap.Token
	FromAmountText string
	ToAmount       *swap.Amount
	State          State
	UnitRate       swap.Rate
	Slippage       string
	ErrorMessage   string
	SuccessMessage string
}

// Session is the stateful core of one swap widget. It is created on mount
// with both tokens unset (or seeded via Options) and must be Closed on
// unmount. All methods are safe for concurrent use; timer callbacks re-enter
// through the same lock.
type Session struct {
	mu sync.Mutex

	rates     exchange.RateSource
	scheduler Scheduler
	cfg       Config
	logger    log.Logger

	from           *swap.Token
	to             *swap.Token
	fromAmountText string
	toAmount       *swap.Amount
	state          State
	errorMessage   string
	successMessage string

	// Generations guard against late timer firings: a callback only acts
	// when its generation is still current. Cancel functions are kept so
	// Close can stop pending timers eagerly.
	debounceGen    uint64
	cancelDebounce func()
	submitGen      uint64
	cancelSettle   func()
	dismissGen     uint64
	cancelDismiss  func()

	closed bool
}

// Options seeds a new session.
type Options struct {
	From       *swap.Token
	To         *swap.Token
	AmountText string
}

// New constructs a session and, when the seeded inputs are already valid,
// opens the first debounce window immediately.
func New(cfg Config, rates exchange.RateSource, scheduler Scheduler, logger log.Logger, opts Options) *Session {
	s := &Session{
		rates:          rates,
		scheduler:      scheduler,
		cfg:            cfg,
		logger:         logger,
		fromAmountText: opts.AmountText,
		state:          StateIdle,
	}
	if opts.From != nil {
		from := *opts.From
		s.from = &from
	}
	if opts.To != nil {
		to := *opts.To
		s.to = &to
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute()
	return s
}

// SelectFrom commits a new source token. Selecting the token already chosen
// on the destination side is a no-op, so the pair never becomes equal.
func (s *Session) SelectFrom(token swap.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.to != nil && s.to.Symbol == token.Symbol {
		return
	}
	t := token
	s.from = &t
	s.recompute()
}

// SelectTo commits a new destination token, with the same no-op rule.
func (s *Session) SelectTo(token swap.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.from != nil && s.from.Symbol == token.Symbol {
		return
	}
	t := token
	s.to = &t
	s.recompute()
}

// SetAmount applies an edit to the raw amount text. Edits that are not empty
// or digits-only are rejected outright and the previous text is kept.
func (s *Session) SetAmount(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if !exchange.IsValidNumericInput(text) {
		return false
	}
	s.fromAmountText = text
	s.recompute()
	return true
}

// Invert swaps the trade direction: tokens exchange places, the amount text
// is reseeded from the previous output (or "0" when none existed) and the
// output is cleared so it recomputes. Inverting twice restores the original
// token pair. This never produces a submitting state.
func (s *Session) Invert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	seed := "0"
	if s.toAmount != nil {
		seed = formatAmount(*s.toAmount)
	}

	s.from, s.to = s.to, s.from
	s.fromAmountText = seed
	s.toAmount = nil
	s.recompute()
}

// Submit starts the settlement of the current swap. Validation failures are
// rejected synchronously: the lifecycle does not change, only the error
// message is set. While calculating or submitting the control is disabled
// and a submit is rejected rather than silently accepted.
func (s *Session) Submit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.state == StateCalculating || s.state == StateSubmitting {
		return false
	}

	s.errorMessage = ""
	s.successMessage = ""
	s.stopDismiss()

	if s.from == nil || s.to == nil {
		s.errorMessage = msgSelectTokens
		return false
	}

	amount, ok := parseAmount(s.fromAmountText)
	if !ok || amount <= 0 {
		s.errorMessage = msgEnterAmount
		return false
	}

	// Capture the message inputs now so later edits cannot rewrite what
	// was actually swapped.
	fromText := s.fromAmountText
	fromSymbol := s.from.Symbol
	toSymbol := s.to.Symbol
	toText := "0"
	if s.toAmount != nil {
		toText = formatAmount(*s.toAmount)
	}

	s.state = StateSubmitting
	s.logger.Log("msg", "swap submitted", "from", fromSymbol, "to", toSymbol, "amount", fromText)

	s.submitGen++
	gen := s.submitGen
	s.cancelSettle = s.scheduler.Schedule(s.cfg.SwapDuration, func() {
		s.settle(gen, fromText, fromSymbol, toText, toSymbol)
	})
	return true
}

// DismissSuccess closes the success message before the display window runs
// out.
func (s *Session) DismissSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.dismiss()
}

// Close tears the session down: every pending timer is cancelled and any
// timer that already fired becomes a no-op. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopDebounce()
	s.stopSettle()
	s.stopDismiss()
}

// Snapshot returns a copy of the current state. The unit rate is derived
// from the current input and output; it is 0 unless both are present and
// positive.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		FromAmountText: s.fromAmountText,
		State:          s.state,
		Slippage:       s.cfg.Slippage,
		ErrorMessage:   s.errorMessage,
		SuccessMessage: s.successMessage,
	}
	if s.from != nil {
		from := *s.from
		snapshot.From = &from
	}
	if s.to != nil {
		to := *s.to
		snapshot.To = &to
	}
	if s.toAmount != nil {
		out := *s.toAmount
		snapshot.ToAmount = &out
		if amount, ok := parseAmount(s.fromAmountText); ok {
			snapshot.UnitRate = exchange.CalculateRate(amount, out)
		}
	}
	return snapshot
}

// recompute reacts to an input change. Valid inputs cancel any pending
// debounce timer and open a new window; anything invalid clears the output
// and drops straight back to idle so no stale output is ever shown.
// Callers hold the lock.
func (s *Session) recompute() {
	s.stopDebounce()

	// Settlement is not cancellable. An edit made while a swap is in
	// flight is kept, and the output recomputes when the swap completes.
	if s.state == StateSubmitting {
		s.toAmount = nil
		return
	}

	if !s.inputsValid() {
		s.toAmount = nil
		s.state = StateIdle
		return
	}

	s.toAmount = nil
	s.state = StateCalculating

	s.debounceGen++
	gen := s.debounceGen
	s.cancelDebounce = s.scheduler.Schedule(s.cfg.Debounce, func() {
		s.calculate(gen)
	})
}

// calculate runs when a debounce window expires. The rates and the amount
// are read now, not at arm time, so the output always reflects the most
// recent input. A superseded or torn-down timer does nothing.
func (s *Session) calculate(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.debounceGen || s.state != StateCalculating {
		return
	}

	if !s.inputsValid() {
		s.toAmount = nil
		s.state = StateIdle
		return
	}

	amount, _ := parseAmount(s.fromAmountText)
	fromRate, _ := s.rates.RateOf(s.from.Symbol)
	toRate, _ := s.rates.RateOf(s.to.Symbol)

	out := exchange.CalculateExchange(amount, fromRate, toRate)
	s.toAmount = &out
	s.state = StateReady
}

// settle completes a submitted swap after the settlement delay. Settlement
// is not cancellable once entered, but a session closed mid-flight must not
// be written to.
func (s *Session) settle(gen uint64, fromText string, fromSymbol swap.Symbol, toText string, toSymbol swap.Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.submitGen || s.state != StateSubmitting {
		return
	}

	// The table may have been replaced while the swap settled. A swap
	// whose tokens no longer have rates cannot be confirmed.
	if _, ok := s.rates.RateOf(fromSymbol); !ok {
		s.fail(msgRatesGone)
		return
	}
	if _, ok := s.rates.RateOf(toSymbol); !ok {
		s.fail(msgRatesGone)
		return
	}

	s.state = StateSettled
	s.successMessage = fmt.Sprintf("Successfully swapped %v %v for %v %v!", fromText, fromSymbol, toText, toSymbol)
	s.logger.Log("msg", "swap settled", "from", fromSymbol, "to", toSymbol, "amount", fromText)

	s.dismissGen++
	dismissGen := s.dismissGen
	s.cancelDismiss = s.scheduler.Schedule(s.cfg.SuccessDuration, func() {
		s.autoDismiss(dismissGen)
	})
}

// autoDismiss fires when the success display window runs out.
func (s *Session) autoDismiss(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.dismissGen {
		return
	}
	s.dismiss()
}

// dismiss clears messages and returns the session to ready or idle per the
// current input validity. Callers hold the lock.
func (s *Session) dismiss() {
	s.stopDismiss()
	s.successMessage = ""
	s.errorMessage = ""

	if s.state != StateSettled && s.state != StateFailed {
		return
	}
	if s.inputsValid() && s.toAmount != nil {
		s.state = StateReady
		return
	}
	s.recompute()
}

// fail marks a settlement that could not complete. Callers hold the lock.
func (s *Session) fail(message string) {
	s.state = StateFailed
	s.errorMessage = message
	s.logger.Log("msg", "swap failed", "reason", message)
}

// inputsValid reports whether both tokens are set, both have rates and the
// amount text parses to a positive number. Callers hold the lock.
func (s *Session) inputsValid() bool {
	if s.from == nil || s.to == nil {
		return false
	}
	amount, ok := parseAmount(s.fromAmountText)
	if !ok || amount <= 0 {
		return false
	}
	if _, ok := s.rates.RateOf(s.from.Symbol); !ok {
		return false
	}
	if _, ok := s.rates.RateOf(s.to.Symbol); !ok {
		return false
	}
	return true
}

func (s *Session) stopDebounce() {
	s.debounceGen++
	if s.cancelDebounce != nil {
		s.cancelDebounce()
		s.cancelDebounce = nil
	}
}

func (s *Session) stopSettle() {
	s.submitGen++
	if s.cancelSettle != nil {
		s.cancelSettle()
		s.cancelSettle = nil
	}
}

func (s *Session) stopDismiss() {
	s.dismissGen++
	if s.cancelDismiss != nil {
		s.cancelDismiss()
		s.cancelDismiss = nil
	}
}

// parseAmount parses the raw amount text. The text is digits-only by
// construction, but an empty string or an overflowing value is still
// invalid.
func parseAmount(text string) (swap.Amount, bool) {
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return swap.Amount(f), true
}

// formatAmount renders an amount the way it is displayed, without a trailing
// fraction for whole values.
func formatAmount(a swap.Amount) string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}
