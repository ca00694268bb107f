package combat

import "math"

// BaseDamage is the unmodified hit: max(0, atk - defense).
func BaseDamage(atk, defense int) int {
	if d := atk - defense; d > 0 {
		return d
	}
	return 0
}

// HalveRoundUp halves n rounding .5 upward: 1→1, 2→1, 3→2.
//
// Precondition: n >= 0.
func HalveRoundUp(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 1) / 2
}

// Scale multiplies damage by mult and rounds half up.
//
// Postcondition: Returns >= 0 for damage >= 0 and mult >= 0.
func Scale(damage int, mult float64) int {
	if damage <= 0 || mult <= 0 {
		return 0
	}
	return int(math.Floor(float64(damage)*mult + 0.5))
}

// CalcDamage computes an enemy hit against a defender with guard charges.
// When guard > 0 the hit is halved (round half up) and one charge is consumed.
//
// Postcondition: damage >= 0; updatedGuard == guard-1 when guard > 0, else guard.
func CalcDamage(atk, defense, guard int) (damage, updatedGuard int) {
	damage = BaseDamage(atk, defense)
	if guard > 0 {
		return HalveRoundUp(damage), guard - 1
	}
	return damage, guard
}
