package form

import (
	"fmt"

	"github.com/dealdesk/dealdesk/internal/transaction"
)

// Sequencer drives the wizard through its active step list. All state
// transitions are synchronous responses to discrete user actions; there is
// no concurrency here.
type Sequencer struct {
	values *Values
	steps  []StepID
	index  int

	// fieldErrors holds the fields that blocked the last Next attempt so
	// the UI can highlight them. Cleared on any successful navigation.
	fieldErrors []string
}

// NewSequencer starts a wizard over the given draft values, positioned at
// the first step.
func NewSequencer(values *Values) *Sequencer {
	return &Sequencer{
		values: values,
		steps:  stepsFor(values),
	}
}

func (s *Sequencer) Values() *Values { return s.values }

// Steps returns the active step list for the current market type.
func (s *Sequencer) Steps() []StepID { return s.steps }

func (s *Sequencer) Index() int { return s.index }

// Current returns the active step.
func (s *Sequencer) Current() StepID { return s.steps[s.index] }

// IsLast reports whether the active step is the final one.
func (s *Sequencer) IsLast() bool { return s.index == len(s.steps)-1 }

// FieldErrors returns the fields that blocked the last forward attempt.
func (s *Sequencer) FieldErrors() []string { return s.fieldErrors }

// Next advances to the following step if the active step's validator is
// satisfied. On failure the index is unchanged and the offending fields are
// recorded. Entering the commission step applies the percentage-mode
// defaults and recalculates the derived value.
func (s *Sequencer) Next() bool {
	if missing := Validate(s.Current(), s.values); len(missing) > 0 {
		s.fieldErrors = missing
		return false
	}

	s.fieldErrors = nil

	if s.index < len(s.steps)-1 {
		s.index++
	}

	if s.Current() == StepCommission {
		ApplyCommissionDefaults(s.values)
		RecalculateCommission(s.values)
	}

	return true
}

// Previous steps back unconditionally, floored at the first step.
func (s *Sequencer) Previous() {
	if s.index > 0 {
		s.index--
	}

	s.fieldErrors = nil
}

// JumpTo moves directly to a step at or before the current one. Skipping
// ahead is not permitted.
func (s *Sequencer) JumpTo(id StepID) error {
	for i, stepID := range s.steps {
		if stepID != id {
			continue
		}

		if i > s.index {
			return fmt.Errorf("cannot skip ahead to step %q", id)
		}

		s.index = i
		s.fieldErrors = nil

		return nil
	}

	return fmt.Errorf("step %q not in the active flow", id)
}

// CommissionIndex returns the position of the commission step, which
// differs between market types because the primary flow has one extra step.
func (s *Sequencer) CommissionIndex() int {
	for i, stepID := range s.steps {
		if stepID == StepCommission {
			return i
		}
	}

	return -1
}

// JumpToCommission is the named shortcut back to the commission step. Like
// JumpTo it never skips ahead.
func (s *Sequencer) JumpToCommission() error {
	if err := s.JumpTo(StepCommission); err != nil {
		return err
	}

	ApplyCommissionDefaults(s.values)
	RecalculateCommission(s.values)

	return nil
}

// SetMarketType switches the form branch. Changing an already-chosen market
// type resets the wizard to the first step and clears the fields exclusive
// to the branch being left, so stale branch data never carries over into a
// structurally different step sequence.
func (s *Sequencer) SetMarketType(mt transaction.MarketType) {
	prev := s.values.MarketType
	if prev == mt {
		return
	}

	s.values.MarketType = mt

	if mt == transaction.MarketPrimary {
		// Primary-market deals are always sales.
		s.values.TransactionType = transaction.TypeSale
	}

	if prev != "" {
		s.index = 0
		s.fieldErrors = nil
		s.clearBranchFields(prev)
	}

	s.steps = stepsFor(s.values)
}

// clearBranchFields drops the fields that only exist on the branch being
// left.
func (s *Sequencer) clearBranchFields(prev transaction.MarketType) {
	switch prev {
	case transaction.MarketPrimary:
		s.values.PropertyDeveloper = ""
		s.values.PropertyProject = ""
		s.values.PropertySelected = false
	case transaction.MarketSecondary:
		s.values.AnnualRent = ""
	}
}
