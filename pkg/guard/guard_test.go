package guard

import (
	"testing"
	"time"
)

func TestInstructionBudgetExceeded(t *testing.T) {
	g := New(Limits{InstructionBudget: 2, WallClockLimit: time.Hour})
	if err := g.OnInstruction(); err != nil {
		t.Fatalf("unexpected error on first instruction: %v", err)
	}
	if err := g.OnInstruction(); err != nil {
		t.Fatalf("unexpected error on second instruction: %v", err)
	}
	err := g.OnInstruction()
	if _, ok := err.(InstructionBudgetExceededError); !ok {
		t.Fatalf("expected InstructionBudgetExceededError, got %v", err)
	}
}

func TestExecutedMonotonic(t *testing.T) {
	g := New(Limits{InstructionBudget: 100, WallClockLimit: time.Hour})
	var prev int64
	for i := 0; i < 5; i++ {
		g.OnInstruction()
		if g.Executed() <= prev {
			t.Fatalf("executed count did not strictly increase: %d -> %d", prev, g.Executed())
		}
		prev = g.Executed()
	}
}

func TestCallDepthExceeded(t *testing.T) {
	g := New(Limits{MaxCallDepth: 3})
	if err := g.EnsureCallDepth(3); err != nil {
		t.Fatalf("unexpected error at exactly the limit: %v", err)
	}
	if err := g.EnsureCallDepth(4); err == nil {
		t.Fatal("expected CallDepthExceededError")
	}
}

func TestValueStackExceeded(t *testing.T) {
	g := New(Limits{MaxValueStackDepth: 2})
	if err := g.EnsureValueStackDepth(3); err == nil {
		t.Fatal("expected ValueStackExceededError")
	}
}
