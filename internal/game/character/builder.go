package character

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/cory-johannsen/redarchon/internal/game/combat"
)

// Loadout is the starting state a character is built from and reset to.
type Loadout struct {
	MaxHP   int
	HP      int
	MaxMP   int
	MP      int
	Atk     int
	Defense int
	Spd     int
	Items   map[string]int
}

// DefaultLoadout is the starting player of a new run.
func DefaultLoadout() Loadout {
	return Loadout{
		MaxHP:   50,
		HP:      50,
		MaxMP:   50,
		MP:      50,
		Atk:     12,
		Defense: 8,
		Spd:     10,
		Items:   map[string]int{HPPotion: 1, MPPotion: 1},
	}
}

// Validate checks the loadout invariants.
//
// Postcondition: Returns nil iff maxima are positive, current values lie in
// [0, max], stats are non-negative, and every item is known with a
// non-negative quantity.
func (l Loadout) Validate() error {
	if l.MaxHP < 1 || l.HP < 0 || l.HP > l.MaxHP {
		return fmt.Errorf("loadout: need 0 <= hp <= max_hp and max_hp >= 1, got %d/%d", l.HP, l.MaxHP)
	}
	if l.MaxMP < 0 || l.MP < 0 || l.MP > l.MaxMP {
		return fmt.Errorf("loadout: need 0 <= mp <= max_mp, got %d/%d", l.MP, l.MaxMP)
	}
	if l.Atk < 0 || l.Defense < 0 || l.Spd < 0 {
		return errors.New("loadout: atk, defense and spd must be >= 0")
	}
	for id, qty := range l.Items {
		if _, ok := LookupItem(id); !ok {
			return fmt.Errorf("loadout: unknown item %q", id)
		}
		if qty < 0 {
			return fmt.Errorf("loadout: item %q quantity must be >= 0", id)
		}
	}
	return nil
}

// Build constructs a new Character named name from l.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a Character with a fresh ID, or a non-nil error.
func Build(name string, l Loadout) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	c := &Character{ID: uuid.New(), loadout: l}
	c.Stats.Name = name
	c.Reset()
	return c, nil
}

// Reset restores the stats and inventory the character was built with.
func (c *Character) Reset() {
	l := c.loadout
	c.Stats = combat.Stats{
		Name:    c.Stats.Name,
		HP:      l.HP,
		MaxHP:   l.MaxHP,
		MP:      l.MP,
		MaxMP:   l.MaxMP,
		Atk:     l.Atk,
		Defense: l.Defense,
		Spd:     l.Spd,
	}
	c.Inventory = maps.Clone(l.Items)
	if c.Inventory == nil {
		c.Inventory = make(map[string]int)
	}
}
