package combat

import "math"

// NormalizeAngle maps any angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// HitZone is a contiguous arc of the attack wheel. The arc may cross 0°.
type HitZone struct {
	Start float64 // degrees
	Width float64 // degrees, in (0, 360)
}

// End returns the normalized end angle of the arc.
func (z HitZone) End() float64 {
	return NormalizeAngle(z.Start + z.Width)
}

// Contains reports whether angle lies within the arc, inclusive at both edges.
func (z HitZone) Contains(angle float64) bool {
	a := NormalizeAngle(angle)
	start := NormalizeAngle(z.Start)
	end := z.End()
	if start < end {
		return start <= a && a <= end
	}
	return a >= start || a <= end
}

// DodgeZones are the nested distance bands measured from the dodge bar's center.
//
// Invariant: 0 < Inner < Middle < Outer.
type DodgeZones struct {
	Inner  float64 // ×0.25 half-width
	Middle float64 // ×0.50 outer bound
	Outer  float64 // ×0.75 outer bound
}

// Multipliers for each dodge band.
const (
	MultPerfect = 0.25
	MultGood    = 0.50
	MultGlance  = 0.75
	MultFull    = 1.00
)

// Multiplier maps a distance from the bar center onto a damage multiplier.
// A distance exactly on a band's outer edge resolves to that (cheaper) band.
func (z DodgeZones) Multiplier(distance float64) float64 {
	d := math.Abs(distance)
	switch {
	case d <= z.Inner:
		return MultPerfect
	case d <= z.Middle:
		return MultGood
	case d <= z.Outer:
		return MultGlance
	default:
		return MultFull
	}
}

// DodgeDamage resolves one dodge round. forcedFail applies the full multiplier.
// A guard charge halves the result and is consumed.
//
// Postcondition: damage >= 0; updatedGuard == guard-1 when guard > 0, else guard.
func DodgeDamage(atk, defense int, mult float64, forcedFail bool, guard int) (damage, updatedGuard int) {
	base := BaseDamage(atk, defense)
	if forcedFail {
		mult = MultFull
	}
	damage = Scale(base, mult)
	if guard > 0 {
		return HalveRoundUp(damage), guard - 1
	}
	return damage, guard
}
