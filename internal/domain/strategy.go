package domain

import (
	"fmt"
	"strings"
)

// RolloverStrategy decides how a task's accumulated value moves on a missed
// day and on a completed day. It is chosen once per deployment.
type RolloverStrategy int

const (
	// StrategyAccumulative adds the daily target for every missed day.
	StrategyAccumulative RolloverStrategy = iota
	// StrategyReset forgets missed days and starts each day at the daily target.
	StrategyReset
)

// DefaultRolloverStrategy is used when no strategy is configured.
const DefaultRolloverStrategy = StrategyAccumulative

// AllRolloverStrategies returns every known strategy.
func AllRolloverStrategies() []RolloverStrategy {
	return []RolloverStrategy{StrategyAccumulative, StrategyReset}
}

// ParseRolloverStrategy converts a configuration name to a strategy.
// Matching is case-insensitive; an empty name yields the default.
func ParseRolloverStrategy(name string) (RolloverStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultRolloverStrategy, nil
	case "accumulative":
		return StrategyAccumulative, nil
	case "reset":
		return StrategyReset, nil
	default:
		return 0, fmt.Errorf("%w: %q (want accumulative or reset)", ErrInvalidStrategy, name)
	}
}

// Name returns the configuration name of the strategy.
func (s RolloverStrategy) Name() string {
	switch s {
	case StrategyAccumulative:
		return "accumulative"
	case StrategyReset:
		return "reset"
	default:
		return fmt.Sprintf("RolloverStrategy(%d)", int(s))
	}
}

// String implements fmt.Stringer.
func (s RolloverStrategy) String() string {
	return s.Name()
}

// OnMissedDay returns the accumulated value after a day without a completion.
func (s RolloverStrategy) OnMissedDay(t *Task) int {
	switch s {
	case StrategyAccumulative:
		return t.AccumulatedValue + t.DailyTargetValue
	case StrategyReset:
		return t.DailyTargetValue
	default:
		panic(fmt.Sprintf("unknown rollover strategy %d", int(s)))
	}
}

// OnCompletion returns the accumulated value after the task was completed.
func (s RolloverStrategy) OnCompletion(t *Task) int {
	switch s {
	case StrategyAccumulative, StrategyReset:
		return t.DailyTargetValue
	default:
		panic(fmt.Sprintf("unknown rollover strategy %d", int(s)))
	}
}
