package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/game/character"
)

// Attack starts the attack QTE.
//
// Postcondition: returns true and enters PlayerAttacking only from PlayerTurn.
func (s *Session) Attack() bool {
	if s.state != PlayerTurn || s.ended {
		return false
	}
	s.combo = newAttackCombo(s.cfg.Attack)
	s.setState(PlayerAttacking)
	return true
}

// UseItem consumes one potion and passes the turn to the enemy.
//
// Postcondition: returns true iff the item was used and the turn consumed.
// With none held a popup explains why and the player keeps the turn.
func (s *Session) UseItem(itemID string) bool {
	if s.state != PlayerTurn || s.ended {
		return false
	}
	def, ok := character.LookupItem(itemID)
	if !ok {
		return false
	}
	if s.player.Count(itemID) <= 0 {
		s.showPopup(fmt.Sprintf("You have no %ss left!", def.Name))
		return false
	}
	restored, _ := s.player.UseItem(itemID)
	s.syncBars()
	unit := "HP"
	if def.Restores == character.ResourceMP {
		unit = "MP"
	} else {
		s.emit(Event{Kind: EventHeal, Target: s.player.Name, Amount: restored})
	}
	s.showPopup(fmt.Sprintf("You used an %s and restored %d %s!", def.Name, restored, unit))
	s.logger.Debug("item used", zap.String("item", itemID), zap.Int("restored", restored))
	s.passTurn()
	return true
}

// UseSpecial spends MP on a special move and passes the turn to the enemy.
//
// Postcondition: returns true iff the move was applied and the turn consumed.
// With too little MP a popup explains why and the player keeps the turn.
func (s *Session) UseSpecial(id string) bool {
	if s.state != PlayerTurn || s.ended {
		return false
	}
	def, ok := s.specials.Get(id)
	if !ok {
		return false
	}
	if !s.player.SpendMP(def.MPCost) {
		s.showPopup(fmt.Sprintf("Not enough MP for %s!", def.Name))
		return false
	}
	s.buffs.Add(def.Grant.Buff, def.Grant.Charges)
	s.syncBars()
	s.emit(Event{Kind: EventBuffChanged, Buffs: s.buffs})
	s.showPopup(fmt.Sprintf("You used %s!", def.Name))
	s.logger.Debug("special used",
		zap.String("special", id),
		zap.Int("mp", s.player.MP),
		zap.Int("overclock", s.buffs.Overclock),
		zap.Int("guard", s.buffs.Guard),
		zap.Int("repair", s.buffs.Repair),
	)
	s.passTurn()
	return true
}

func (s *Session) passTurn() {
	s.enemyDelay.Start(s.cfg.EnemyActionDelay)
	s.setState(EnemyTurnPending)
}
