// Package dice provides the randomness abstraction used by every battle decision:
// boss action draws, loot drops, and dodge arrow selection.
package dice

import "fmt"

// RollResult holds the audit trail for a single dice roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "1d100"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string, e.g. "1d100 → [42] +0 = 42".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for every draw in a battle.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Expression is a parsed "NdS+M" dice expression.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Roll evaluates expr against src.
//
// Precondition: expr.Count >= 1 and expr.Sides >= 2; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and every die is in [1, Sides].
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}
