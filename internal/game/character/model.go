// Package character defines the player character and its consumable inventory.
package character

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/redarchon/internal/game/combat"
)

// Resource names the stat a consumable restores.
type Resource string

const (
	ResourceHP Resource = "hp"
	ResourceMP Resource = "mp"
)

// Item IDs of the built-in consumables.
const (
	HPPotion = "hp_potion"
	MPPotion = "mp_potion"
)

// ItemDef describes a consumable.
type ItemDef struct {
	ID       string
	Name     string
	Restores Resource
	Amount   int
}

// Items are the consumables known to the battle menus, in menu order.
var Items = []ItemDef{
	{ID: HPPotion, Name: "HP Potion", Restores: ResourceHP, Amount: 20},
	{ID: MPPotion, Name: "MP Potion", Restores: ResourceMP, Amount: 20},
}

// LookupItem returns the definition for id.
func LookupItem(id string) (ItemDef, bool) {
	for _, it := range Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemDef{}, false
}

// Character is the player. It satisfies combat.Combatant through the embedded Stats.
//
// The battle session mutates it directly; it is not safe for concurrent use.
type Character struct {
	ID uuid.UUID
	combat.Stats
	// Inventory maps item ID to quantity held.
	Inventory map[string]int

	loadout Loadout
}

// Count returns how many of itemID the character holds.
func (c *Character) Count(itemID string) int {
	return c.Inventory[itemID]
}

// Pickup adds qty of itemID to the inventory; non-positive quantities are ignored.
func (c *Character) Pickup(itemID string, qty int) {
	if qty <= 0 {
		return
	}
	if c.Inventory == nil {
		c.Inventory = make(map[string]int)
	}
	c.Inventory[itemID] += qty
}

// UseItem consumes one itemID and applies its restore.
//
// Postcondition: Returns (restored, true) when an item was consumed, where
// restored is min(max - current, Amount); returns (0, false) and changes
// nothing when none are held or the item is unknown. A potion used at full
// value is still consumed.
func (c *Character) UseItem(itemID string) (int, bool) {
	def, ok := LookupItem(itemID)
	if !ok || c.Inventory[itemID] <= 0 {
		return 0, false
	}
	c.Inventory[itemID]--
	switch def.Restores {
	case ResourceMP:
		return c.RestoreMP(def.Amount), true
	default:
		return c.Heal(def.Amount), true
	}
}
