package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/falculator/falculator/config"
	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

// Simulator drives one sanitized Config through its tick loop, producing an
// append-only sequence of SimFrame snapshots. A Simulator is single-use and
// single-threaded internally; running two independent Configs concurrently
// is safe only because each gets its own Simulator, IdRegistry, and
// TagRegistry.
type Simulator struct {
	cfg      *config.Config
	logger   *core.DebugLogger
	withhold item.WithholdFunc
	stepFn   func(core.SimDate) core.SimDate

	byID map[string]*item.FinancialItem

	totalSteps int
	stepIndex  int
	currDate   core.SimDate

	mu     sync.Mutex
	frames []SimFrame
	done   bool

	cancelCh chan struct{}
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// New constructs a Simulator over an already-Sanitized Config. It is the
// caller's responsibility to have run config.Sanitize first — New does not
// re-validate.
func New(cfg *config.Config) *Simulator {
	byID := make(map[string]*item.FinancialItem, len(cfg.Items))
	for _, fi := range cfg.Items {
		byID[fi.ID] = fi
	}

	startDate := cfg.StartDate
	if cfg.StartDateIsToday {
		startDate = core.Today()
	}

	s := &Simulator{
		cfg:        cfg,
		logger:     core.NewDebugLogger("sim", cfg.LogLevel.ToCoreLevel()),
		withhold:   withholdFuncFor(cfg.TaxMode, cfg.TaxPercent),
		stepFn:     cfg.StepIncrement.StepDuration(),
		byID:       byID,
		totalSteps: cfg.TotalSteps(),
		currDate:   startDate,
		cancelCh:   make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	for _, fi := range cfg.Items {
		fi.SetEnabledBySim(fi.StartEnabled)
	}
	s.frames = append(s.frames, s.snapshot(nil, nil, core.Zero, false))
	return s
}

// Cancel requests cooperative cancellation. The current tick (if one is in
// flight) always completes and is appended before Run returns; there is no
// mid-tick partial state.
func (s *Simulator) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.cancelCh:
	default:
		close(s.cancelCh)
	}
}

func (s *Simulator) cancelled() bool {
	select {
	case <-s.cancelCh:
		return true
	default:
		return false
	}
}

// Frames returns a read-only copy of the snapshot history accumulated so
// far. Safe to call while Run is in progress.
func (s *Simulator) Frames() []SimFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SimFrame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Progress reports the current step index and total step count.
func (s *Simulator) Progress() (step, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepIndex, s.totalSteps
}

// Wait blocks until a Run invoked on another goroutine has returned, for
// callers that fire off a simulation in the background and need to know
// when it's safe to read the final Frames().
func (s *Simulator) Wait() {
	s.wg.Wait()
}

// Done returns a channel that closes once Run has returned.
func (s *Simulator) Done() <-chan struct{} {
	return s.stopped
}

// Run advances the tick loop to natural completion, cancellation, or
// overdraw, whichever comes first. It blocks the calling goroutine; callers
// that want a background run should invoke Run from their own goroutine and
// call Cancel/Frames/Progress from elsewhere, matching the scheduler shape
// this package is grounded on.
func (s *Simulator) Run(ctx context.Context) error {
	s.wg.Add(1)
	defer s.wg.Done()
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if s.cancelled() {
			s.logger.Info("cancelled at step %d/%d", s.stepIndex, s.totalSteps)
			return core.ErrCancelled
		}
		frame, more := s.tick()
		if frame != nil {
			s.mu.Lock()
			s.frames = append(s.frames, *frame)
			s.mu.Unlock()
		}
		if !more {
			return nil
		}
	}
}

// tick executes exactly one step of the six-step algorithm and returns the
// resulting frame, plus whether the loop should keep going. It returns
// (nil, false) once every step has been consumed.
func (s *Simulator) tick() (*SimFrame, bool) {
	if s.stepIndex >= s.totalSteps || s.done {
		return nil, false
	}

	prevDate := s.currDate
	s.currDate = s.stepFn(s.currDate)
	currDate := s.currDate
	s.stepIndex++

	age := core.FloorYears(s.cfg.BirthDate, currDate)
	liquidAssets, mainSavingsBalance := s.aggregates()

	amounts := make(map[string]*tickAmounts, len(s.cfg.Items))
	acc := func(id string) *tickAmounts {
		a, ok := amounts[id]
		if !ok {
			a = &tickAmounts{}
			amounts[id] = a
		}
		return a
	}

	var totalTax core.Money
	var events []SimEvent

	mainSavings := s.cfg.MainSavings()

	for _, fi := range s.itemsInEvalOrder() {
		active := fi.EvaluateSelfTrigger(item.SelfTriggerInput{
			Items:              s.taggedItems(),
			SimDate:            currDate,
			Age:                age,
			LiquidAssets:       liquidAssets,
			MainSavingsBalance: mainSavingsBalance,
			LogWarn:            s.logger.WarnFunc(),
		})
		if !active {
			continue
		}

		if fi.LiquidateSelfOnTrigger && fi.SelfTrigger.HasAnyConditions() {
			amount := fi.Liquidate()
			if !amount.IsZero() && mainSavings != nil {
				acc(mainSavings.ID).cashFlow = acc(mainSavings.ID).cashFlow.Add(amount)
				events = append(events, SimEvent{SourceID: fi.ID, TargetID: fi.ID, Kind: item.TransferLiquidate, Amount: amount})
			}
			continue
		}

		interestAmount, interestTax := fi.ApplyInterest(prevDate, currDate, s.withhold)
		itemAcc := acc(fi.ID)
		itemAcc.interest = interestAmount
		itemAcc.tax = itemAcc.tax.Add(interestTax)
		totalTax = totalTax.Add(interestTax)

		cashIn, cashOut, flow, cashTax := fi.ApplyCashFlow(prevDate, currDate, s.withhold)
		itemAcc.cashIn = cashIn
		itemAcc.cashOut = cashOut
		itemAcc.cashFlow = itemAcc.cashFlow.Add(flow)
		itemAcc.tax = itemAcc.tax.Add(cashTax)
		totalTax = totalTax.Add(cashTax)

		for i := range fi.Events {
			ev := &fi.Events[i]
			target := s.byID[ev.TargetID]
			if target == nil {
				continue
			}
			if !ev.Evaluate(fi, target, item.EvalContext{
				Items:              s.taggedItems(),
				SimDate:            currDate,
				Age:                age,
				LiquidAssets:       liquidAssets,
				MainSavingsBalance: mainSavingsBalance,
				LogWarn:            s.logger.WarnFunc(),
			}) {
				continue
			}
			fired := ev.Apply(prevDate, currDate, fi, target)
			if fired == nil {
				continue
			}
			events = append(events, SimEvent{
				EventID: fired.EventID, SourceID: fired.SourceID, TargetID: fired.TargetID,
				Kind: fired.Kind, Amount: fired.Amount,
			})
			s.applyFiredCashFlow(acc, fired, mainSavings)
		}
	}

	var totalFlow core.Money
	for _, a := range amounts {
		totalFlow = totalFlow.Add(a.cashFlow)
	}
	if mainSavings != nil {
		mainSavings.Value = mainSavings.Value.Add(totalFlow)
	}

	overdrawn := false
	if s.cfg.FailOnOverdraw && mainSavings != nil && mainSavings.Value.IsNegative() {
		overdrawn = true
		s.done = true
		s.logger.Warn("overdraw at step %d: main savings balance %s", s.stepIndex, mainSavings.Value.String())
	}

	frame := s.snapshot(amounts, events, totalTax, overdrawn)
	return &frame, !s.done && s.stepIndex < s.totalSteps
}

// applyFiredCashFlow folds one EventItem firing into this tick's cash_flow
// accumulators. The source side always moves with the transfer regardless
// of where it lands; the target side only moves through cash_flow when
// Apply didn't already mutate target.Value directly (SweepToCashFlow).
// A liquidate event's proceeds bypass both source and target cash_flow and
// land straight in main savings, per "target.value fully moved to main
// savings".
func (s *Simulator) applyFiredCashFlow(acc func(string) *tickAmounts, fired *item.Fired, mainSavings *item.FinancialItem) {
	switch fired.Kind {
	case item.TransferPush:
		a := acc(fired.SourceID)
		a.cashFlow = a.cashFlow.Sub(fired.Amount)
		if fired.SweepToCashFlow {
			b := acc(fired.TargetID)
			b.cashFlow = b.cashFlow.Add(fired.Amount)
		}
	case item.TransferPull:
		a := acc(fired.SourceID)
		a.cashFlow = a.cashFlow.Add(fired.Amount)
		if fired.SweepToCashFlow {
			b := acc(fired.TargetID)
			b.cashFlow = b.cashFlow.Sub(fired.Amount)
		}
	case item.TransferLiquidate:
		if mainSavings != nil {
			a := acc(mainSavings.ID)
			a.cashFlow = a.cashFlow.Add(fired.Amount)
		}
	case item.TransferStateChange:
		// no cash movement
	}
}

// aggregates computes the sim-wide values the current tick's self-trigger
// and event evaluation need, from the portfolio's state as it stood at the
// end of the previous tick.
func (s *Simulator) aggregates() (liquidAssets, mainSavingsBalance core.Money) {
	for _, fi := range s.cfg.Items {
		if fi.IsLiquidAsset && fi.EnabledBySim() {
			liquidAssets = liquidAssets.Add(fi.Value)
		}
	}
	if ms := s.cfg.MainSavings(); ms != nil {
		mainSavingsBalance = ms.Value
	}
	return liquidAssets, mainSavingsBalance
}

func (s *Simulator) itemsInEvalOrder() []*item.FinancialItem {
	out := make([]*item.FinancialItem, len(s.cfg.Items))
	copy(out, s.cfg.Items)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].EvalOrder > out[j].EvalOrder; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func (s *Simulator) taggedItems() []core.TaggedItem {
	out := make([]core.TaggedItem, len(s.cfg.Items))
	for i, fi := range s.cfg.Items {
		out[i] = fi
	}
	return out
}

func (s *Simulator) snapshot(amounts map[string]*tickAmounts, events []SimEvent, totalTax core.Money, overdrawn bool) SimFrame {
	states := make([]ItemState, len(s.cfg.Items))
	for i, fi := range s.cfg.Items {
		var tick tickAmounts
		if a, ok := amounts[fi.ID]; ok {
			tick = *a
		}
		states[i] = snapshotItem(fi, tick)
	}
	return SimFrame{
		StepIndex:    s.stepIndex,
		FrameDate:    s.currDate,
		ItemStates:   states,
		TotalTaxPaid: totalTax,
		Events:       events,
		Overdrawn:    overdrawn,
	}
}

func (s *Simulator) String() string {
	return fmt.Sprintf("Simulator(%s, step %d/%d)", s.cfg.SimName, s.stepIndex, s.totalSteps)
}
