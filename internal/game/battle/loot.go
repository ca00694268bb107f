package battle

import (
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
)

// LootService rolls the drops of a defeated enemy and hands them to the player.
type LootService interface {
	// RollLoot returns the items granted to player; an empty result means no drop.
	RollLoot(enemy npc.Enemy, player *character.Character) []npc.LootItem
}

// TableLoot rolls the enemy template's loot table.
type TableLoot struct {
	Roller *dice.Roller
}

// RollLoot rolls enemies that implement npc.LootDropper and adds every drop to
// the player's inventory.
func (l TableLoot) RollLoot(enemy npc.Enemy, player *character.Character) []npc.LootItem {
	dropper, ok := enemy.(npc.LootDropper)
	if !ok {
		return nil
	}
	items := dropper.DropLoot(l.Roller)
	for _, it := range items {
		player.Pickup(it.ItemDefID, it.Quantity)
	}
	return items
}
