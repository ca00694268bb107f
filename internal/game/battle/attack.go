package battle

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/combat"
	"github.com/cory-johannsen/redarchon/internal/game/special"
)

// AttackCombo is a chain of successful attack QTE presses.
type AttackCombo struct {
	Hits  int
	Total int
	// Active is true while a press window is open.
	Active bool

	cfg      config.AttackConfig
	angle    float64
	speed    float64
	swept    float64
	resolved bool
}

func newAttackCombo(cfg config.AttackConfig) *AttackCombo {
	c := &AttackCombo{Active: true, cfg: cfg, speed: cfg.Speed}
	c.openWindow()
	return c
}

func (c *AttackCombo) openWindow() {
	c.angle = combat.NormalizeAngle(c.cfg.StartAngle)
	c.swept = 0
}

func (c *AttackCombo) zone() combat.HitZone {
	return combat.HitZone{Start: c.cfg.ZoneStart, Width: c.cfg.ZoneWidth}
}

// AttackView is the attack QTE state exposed to the presentation layer.
type AttackView struct {
	Angle  float64
	Speed  float64
	Zone   combat.HitZone
	Hits   int
	Total  int
	Active bool
}

// AttackQTE returns the current combo, if any.
func (s *Session) AttackQTE() (AttackView, bool) {
	if s.combo == nil {
		return AttackView{}, false
	}
	c := s.combo
	return AttackView{Angle: c.angle, Speed: c.speed, Zone: c.zone(), Hits: c.Hits, Total: c.Total, Active: c.Active}, true
}

func (s *Session) tickCombo(dt time.Duration) {
	c := s.combo
	if c == nil || !c.Active {
		return
	}
	step := c.speed * dt.Seconds()
	c.angle = combat.NormalizeAngle(c.angle + step)
	c.swept += step
	if c.swept >= c.cfg.Sweep {
		s.endCombo()
	}
}

func (s *Session) pressAttack() bool {
	if s.state != PlayerAttacking || s.combo == nil || !s.combo.Active {
		return false
	}
	c := s.combo
	if !c.zone().Contains(c.angle) {
		s.endCombo()
		return true
	}
	dmg := combat.BaseDamage(s.player.Atk, s.enemyStats().Defense)
	c.Hits++
	c.Total += dmg
	c.speed += c.cfg.SpeedStep
	c.openWindow()
	s.playClip(ClipHurt, s.enemy.HurtFrames())
	s.emit(Event{Kind: EventComboHit, Amount: c.Total})
	s.logger.Debug("combo hit", zap.Int("hits", c.Hits), zap.Int("total", c.Total), zap.Float64("speed", c.speed))
	return true
}

func (s *Session) endCombo() {
	s.combo.Active = false
	s.setState(Resolving)
}

// ResolveAttack applies the finished combo to the enemy: the accumulated total,
// doubled when an Overclock charge is spent. A charge is spent on every
// resolution, misses included. It then starts the victory sequence or hands
// the turn to the enemy.
//
// Postcondition: returns false and changes nothing unless a finished,
// unresolved combo is waiting in Resolving; calling it twice is safe.
func (s *Session) ResolveAttack() bool {
	if s.state != Resolving || s.combo == nil || s.combo.resolved {
		return false
	}
	c := s.combo
	c.resolved = true
	c.Active = false

	es := s.enemyStats()
	dmg := c.Total
	if s.buffs.Consume(special.Overclock) {
		dmg *= 2
		s.emit(Event{Kind: EventBuffChanged, Buffs: s.buffs})
	}
	if c.Hits == 0 {
		s.showPopup(fmt.Sprintf("You missed %s!", es.Name))
	} else {
		s.dealt += es.ApplyDamage(dmg)
		s.syncBars()
		s.emit(Event{Kind: EventDamage, Target: es.Name, Amount: dmg})
		s.showPopup(fmt.Sprintf("You dealt %d total damage to %s!", dmg, es.Name))
		if dmg > 0 {
			s.audio.Play(CueHit)
		}
		s.logger.Debug("attack resolved", zap.Int("hits", c.Hits), zap.Int("damage", dmg), zap.Int("hp", es.HP))
	}

	if es.IsDead() {
		s.victory()
		return true
	}
	s.enemyDelay.Start(s.cfg.EnemyWaitDelay)
	s.setState(EnemyTurnPending)
	return true
}
