// Package guard implements the per-run resource guard: instruction,
// call-depth, value-stack-depth, and wall-clock budgets, modeled on
// a conventional Budget/Charge(n) error pattern.
package guard

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Limits configures the four budgets a run enforces. A field left at
// zero (or negative) disables that check; use Defaults() to get the
// built-in defaults (instruction budget 250000, call depth 128,
// value stack depth 2048, wall clock 1s).
type Limits struct {
	InstructionBudget  int64
	MaxCallDepth       int
	MaxValueStackDepth int
	WallClockLimit     time.Duration
}

func Defaults() Limits {
	return Limits{
		InstructionBudget:  250_000,
		MaxCallDepth:       128,
		MaxValueStackDepth: 2048,
		WallClockLimit:     time.Second,
	}
}

// InstructionBudgetExceededError, CallDepthExceededError,
// ValueStackExceededError, and TimeLimitExceededError are the typed
// resource errors a Guard can raise.
type InstructionBudgetExceededError struct {
	Executed, Budget int64
}

func (e InstructionBudgetExceededError) Error() string {
	return fmt.Sprintf("instruction budget exceeded: executed %s of %s instructions",
		humanize.Comma(e.Executed), humanize.Comma(e.Budget))
}

type CallDepthExceededError struct{ Depth, Max int }

func (e CallDepthExceededError) Error() string {
	return fmt.Sprintf("call depth exceeded: %d > max %d", e.Depth, e.Max)
}

type ValueStackExceededError struct{ Depth, Max int }

func (e ValueStackExceededError) Error() string {
	return fmt.Sprintf("value stack depth exceeded: %d > max %d", e.Depth, e.Max)
}

type TimeLimitExceededError struct{ Elapsed, Limit time.Duration }

func (e TimeLimitExceededError) Error() string {
	return fmt.Sprintf("time limit exceeded: ran for %s, limit %s", e.Elapsed, e.Limit)
}

// Guard tracks the live counters for a single VM run. It is not safe
// for concurrent use: one Guard belongs to exactly one VM instance
// for the duration of one run() call, mirroring the VM's own
// single-use lifecycle.
type Guard struct {
	limits   Limits
	executed int64
	started  time.Time
}

func New(limits Limits) *Guard {
	return &Guard{limits: limits, started: time.Now()}
}

// OnInstruction is called before every instruction executes. It
// increments the executed count, fails with
// InstructionBudgetExceededError when over budget, then checks
// wall-clock and fails with TimeLimitExceededError if elapsed exceeds
// the limit.
func (g *Guard) OnInstruction() error {
	g.executed++
	if g.limits.InstructionBudget > 0 && g.executed > g.limits.InstructionBudget {
		return InstructionBudgetExceededError{Executed: g.executed, Budget: g.limits.InstructionBudget}
	}
	if g.limits.WallClockLimit > 0 {
		if elapsed := time.Since(g.started); elapsed > g.limits.WallClockLimit {
			return TimeLimitExceededError{Elapsed: elapsed, Limit: g.limits.WallClockLimit}
		}
	}
	return nil
}

// EnsureCallDepth is called after each push of a user-function frame.
func (g *Guard) EnsureCallDepth(depth int) error {
	if g.limits.MaxCallDepth > 0 && depth > g.limits.MaxCallDepth {
		return CallDepthExceededError{Depth: depth, Max: g.limits.MaxCallDepth}
	}
	return nil
}

// EnsureValueStackDepth is called after every push onto the value
// stack.
func (g *Guard) EnsureValueStackDepth(depth int) error {
	if g.limits.MaxValueStackDepth > 0 && depth > g.limits.MaxValueStackDepth {
		return ValueStackExceededError{Depth: depth, Max: g.limits.MaxValueStackDepth}
	}
	return nil
}

// Executed returns the number of instructions executed so far, a
// monotonically non-decreasing counter.
func (g *Guard) Executed() int64 { return g.executed }
