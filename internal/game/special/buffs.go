package special

// Kind identifies one of the player's buffs.
type Kind string

const (
	// Overclock doubles the damage of a completed attack.
	Overclock Kind = "overclock"
	// Guard halves one incoming hit.
	Guard Kind = "guard"
	// Repair heals once per elapsed repair delay on the player's turn.
	Repair Kind = "repair"
)

// Valid reports whether k names a known buff.
func (k Kind) Valid() bool {
	switch k {
	case Overclock, Guard, Repair:
		return true
	}
	return false
}

// Buffs holds the remaining charges of each buff for one battle.
// It is not safe for concurrent use; the battle session serialises access.
//
// Invariant: every counter is >= 0.
type Buffs struct {
	Overclock int
	Guard     int
	Repair    int
}

// Any reports whether at least one buff has charges left.
func (b Buffs) Any() bool {
	return b.Overclock > 0 || b.Guard > 0 || b.Repair > 0
}

// Clear zeroes every counter.
func (b *Buffs) Clear() {
	*b = Buffs{}
}

// Add grants n charges of kind. Non-positive n and unknown kinds are ignored.
//
// Postcondition: Returns the new count for kind.
func (b *Buffs) Add(kind Kind, n int) int {
	p := b.counter(kind)
	if p == nil {
		return 0
	}
	if n > 0 {
		*p += n
	}
	return *p
}

// Consume removes one charge of kind if any remain.
//
// Postcondition: Returns true iff a charge was removed.
func (b *Buffs) Consume(kind Kind) bool {
	p := b.counter(kind)
	if p == nil || *p <= 0 {
		return false
	}
	*p--
	return true
}

// Count returns the remaining charges of kind.
func (b *Buffs) Count(kind Kind) int {
	if p := b.counter(kind); p != nil {
		return *p
	}
	return 0
}

func (b *Buffs) counter(kind Kind) *int {
	switch kind {
	case Overclock:
		return &b.Overclock
	case Guard:
		return &b.Guard
	case Repair:
		return &b.Repair
	}
	return nil
}
