package battle

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/game/anim"
	"github.com/cory-johannsen/redarchon/internal/game/combat"
)

type dodgePhase int

const (
	dodgeWaiting dodgePhase = iota
	dodgeMoving
	dodgeStrike
)

// DodgeSession is the boss's multi-round attack. Each round the player must
// press the shown arrow while a pointer crosses the bar; the closer to the
// center, the less damage.
type DodgeSession struct {
	RoundsRemaining int
	Round           int
	Direction       Direction
	// Pointer is the signed offset from the bar center.
	Pointer float64
	// Speed is in bar units per second.
	Speed       float64
	Accumulated int
	// LastMultiplier is the multiplier applied in the latest round.
	LastMultiplier float64

	phase  dodgePhase
	delay  anim.Countdown
	strike *anim.FrameSequence
}

// DodgeView is the dodge QTE state exposed to the presentation layer.
type DodgeView struct {
	Round       int
	Rounds      int
	Direction   Direction
	Pointer     float64
	BarWidth    float64
	Zones       combat.DodgeZones
	Moving      bool
	Accumulated int
}

// DodgeQTE returns the running dodge session, if any.
func (s *Session) DodgeQTE() (DodgeView, bool) {
	d := s.dodge
	if d == nil {
		return DodgeView{}, false
	}
	return DodgeView{
		Round:       d.Round,
		Rounds:      s.cfg.Dodge.Rounds,
		Direction:   d.Direction,
		Pointer:     d.Pointer,
		BarWidth:    s.cfg.Dodge.BarWidth,
		Zones:       s.dodgeZones(),
		Moving:      d.phase == dodgeMoving,
		Accumulated: d.Accumulated,
	}, true
}

func (s *Session) dodgeZones() combat.DodgeZones {
	return combat.DodgeZones{Inner: s.cfg.Dodge.Zone1, Middle: s.cfg.Dodge.Zone2, Outer: s.cfg.Dodge.Zone3}
}

func (s *Session) startDodge() {
	s.dodge = &DodgeSession{
		RoundsRemaining: s.cfg.Dodge.Rounds,
		Speed:           s.cfg.Dodge.BarWidth / s.cfg.Dodge.Traverse.Seconds(),
	}
	s.startDodgeRound()
}

func (s *Session) startDodgeRound() {
	d := s.dodge
	d.Round++
	d.Direction = Direction(s.roller.Pick(4))
	d.Pointer = -s.cfg.Dodge.BarWidth / 2
	d.phase = dodgeWaiting
	d.strike = nil
	d.delay.Start(s.cfg.Dodge.StartDelay)
	s.emit(Event{Kind: EventDodgeRound, Amount: d.Round, Text: d.Direction.String()})
}

func (s *Session) tickDodge(dt time.Duration) {
	d := s.dodge
	switch d.phase {
	case dodgeWaiting:
		if d.delay.Tick(dt) {
			d.phase = dodgeMoving
		}
	case dodgeMoving:
		half := s.cfg.Dodge.BarWidth / 2
		d.Pointer += d.Speed * dt.Seconds()
		if d.Pointer >= half {
			d.Pointer = half
			s.resolveDodgeRound(combat.MultFull, true)
		}
	case dodgeStrike:
		if !d.strike.Done() {
			return
		}
		if d.RoundsRemaining > 0 {
			s.startDodgeRound()
			return
		}
		s.finishDodge()
	}
}

func (s *Session) pressDodge(dir Direction) bool {
	d := s.dodge
	if s.state != EnemyActionAnimating || d == nil || d.phase != dodgeMoving {
		return false
	}
	if dir != d.Direction {
		s.resolveDodgeRound(combat.MultFull, true)
		return true
	}
	s.resolveDodgeRound(s.dodgeZones().Multiplier(d.Pointer), false)
	return true
}

// resolveDodgeRound deducts this round's damage immediately so that a lethal
// round ends the battle before the next one starts.
func (s *Session) resolveDodgeRound(mult float64, forcedFail bool) {
	d := s.dodge
	es := s.enemyStats()
	dmg, guard := combat.DodgeDamage(es.Atk, s.player.Defense, mult, forcedFail, s.buffs.Guard)
	if guard != s.buffs.Guard {
		s.buffs.Guard = guard
		s.emit(Event{Kind: EventBuffChanged, Buffs: s.buffs})
	}
	if forcedFail {
		mult = combat.MultFull
	}
	d.LastMultiplier = mult
	d.Accumulated += dmg
	d.RoundsRemaining--
	s.logger.Debug("dodge round",
		zap.Int("round", d.Round),
		zap.Float64("pointer", d.Pointer),
		zap.Float64("multiplier", mult),
		zap.Int("damage", dmg),
	)
	s.audio.Play(CueEnemyAttack)
	if s.damagePlayer(dmg) {
		return
	}
	d.strike = s.playClip(ClipAttack, s.enemy.AttackFrames())
	d.phase = dodgeStrike
}

func (s *Session) finishDodge() {
	total := s.dodge.Accumulated
	s.dodge = nil
	s.showPopup(fmt.Sprintf("The %s attacked! You took %d damage!", s.enemyStats().Name, total))
	s.beginPlayerTurn()
}
