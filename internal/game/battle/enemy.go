package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/game/anim"
	"github.com/cory-johannsen/redarchon/internal/game/combat"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
)

// PendingDamage is damage already computed but held until its gating
// animation completes.
type PendingDamage struct {
	Amount int
	Target combat.Combatant
	gate   *anim.FrameSequence
}

// Ready reports whether the gating animation has finished.
func (p *PendingDamage) Ready() bool { return p.gate == nil || p.gate.Done() }

// Pending returns the queued enemy damage, if any.
func (s *Session) Pending() (PendingDamage, bool) {
	if s.pending == nil {
		return PendingDamage{}, false
	}
	return *s.pending, true
}

func (s *Session) applyPending() {
	p := s.pending
	if p == nil || !p.Ready() {
		return
	}
	s.pending = nil
	s.showPopup(fmt.Sprintf("%s attacked! You took %d damage!", s.enemyStats().Name, p.Amount))
	s.damagePlayer(p.Amount)
}

func (s *Session) runEnemyTurn() {
	if s.boss == nil {
		s.basicAttack()
		return
	}
	name := s.enemyStats().Name
	action := s.boss.DecideAction(s.buffs.Any(), s.roller)
	s.logger.Debug("boss action", zap.Stringer("action", action), zap.Int("hp", s.enemyStats().HP))
	switch action {
	case npc.ActionHeal:
		healed := s.boss.Heal()
		s.syncBars()
		s.emit(Event{Kind: EventHeal, Target: name, Amount: healed})
		s.showPopup(fmt.Sprintf("The %s healed %d HP!", name, healed))
		s.gate = s.playClip(ClipSpecial, s.boss.SpecialFrames())
		s.setState(EnemyActionAnimating)
	case npc.ActionDebuff:
		s.boss.Debuff(&s.buffs)
		s.repairTimer.Stop()
		s.emit(Event{Kind: EventBuffChanged, Buffs: s.buffs})
		s.showPopup(fmt.Sprintf("The %s nullified your specials!", name))
		s.gate = s.playClip(ClipSpecial, s.boss.SpecialFrames())
		s.setState(EnemyActionAnimating)
	default:
		s.startDodge()
		s.setState(EnemyActionAnimating)
	}
}

func (s *Session) basicAttack() {
	dmg, guard := s.enemy.CalcDamage(s.buffs.Guard, s.player.Defense)
	if guard != s.buffs.Guard {
		s.buffs.Guard = guard
		s.emit(Event{Kind: EventBuffChanged, Buffs: s.buffs})
	}
	gate := s.playClip(ClipAttack, s.enemy.AttackFrames())
	s.gate = gate
	s.pending = &PendingDamage{Amount: dmg, Target: s.player, gate: gate}
	s.audio.Play(CueEnemyAttack)
	s.logger.Debug("enemy attack queued", zap.Int("damage", dmg), zap.Int("guard", guard))
	s.setState(EnemyActionAnimating)
}
