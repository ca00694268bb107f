// Package combat holds the combatant stat block and the pure arithmetic shared by
// every battle: damage, healing, guard halving, and the QTE step functions.
package combat

// Stats is the stat block shared by the player and every enemy.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= MP <= MaxMP after every mutation
// performed through its methods.
type Stats struct {
	Name    string
	HP      int
	MaxHP   int
	MP      int
	MaxMP   int
	Atk     int
	Defense int
	Spd     int
}

// Combatant is anything that fights: the player character and enemy instances.
type Combatant interface {
	// CombatStats returns the live, mutable stat block.
	CombatStats() *Stats
}

// CombatStats returns s itself so a bare Stats satisfies Combatant.
func (s *Stats) CombatStats() *Stats { return s }

// IsDead reports whether HP has reached zero.
func (s *Stats) IsDead() bool { return s.HP <= 0 }

// ApplyDamage reduces HP by amount, flooring at zero, and returns the HP actually lost.
//
// Precondition: amount >= 0; negative amounts are treated as zero.
// Postcondition: HP >= 0.
func (s *Stats) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := s.HP
	s.HP -= amount
	if s.HP < 0 {
		s.HP = 0
	}
	return before - s.HP
}

// Heal restores up to amount HP without exceeding MaxHP.
//
// Postcondition: returns min(MaxHP - HP, amount) (never negative); HP <= MaxHP.
func (s *Stats) Heal(amount int) int {
	healed := clampGain(s.HP, s.MaxHP, amount)
	s.HP += healed
	return healed
}

// RestoreMP restores up to amount MP without exceeding MaxMP.
//
// Postcondition: returns min(MaxMP - MP, amount) (never negative); MP <= MaxMP.
func (s *Stats) RestoreMP(amount int) int {
	restored := clampGain(s.MP, s.MaxMP, amount)
	s.MP += restored
	return restored
}

// SpendMP deducts cost MP if enough is available.
//
// Postcondition: returns false and leaves MP unchanged when MP < cost.
func (s *Stats) SpendMP(cost int) bool {
	if cost < 0 || s.MP < cost {
		return false
	}
	s.MP -= cost
	return true
}

// Clamp forces HP and MP back into their invariant ranges.
func (s *Stats) Clamp() {
	s.HP = clampInt(s.HP, 0, s.MaxHP)
	s.MP = clampInt(s.MP, 0, s.MaxMP)
}

// HPPercent returns HP as a whole-number percentage of MaxHP, or 0 when MaxHP <= 0.
func (s *Stats) HPPercent() int {
	if s.MaxHP <= 0 {
		return 0
	}
	return s.HP * 100 / s.MaxHP
}

func clampGain(cur, max, amount int) int {
	gain := max - cur
	if amount < gain {
		gain = amount
	}
	if gain < 0 {
		return 0
	}
	return gain
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
