package presentation

import (
	"time"

	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/special"
)

// Gauge is one resource bar: the true value and the interpolated display value.
type Gauge struct {
	Current int
	Max     int
	Display float64
}

// Fraction returns Display/Max clamped to [0, 1].
func (g Gauge) Fraction() float64 {
	if g.Max <= 0 {
		return 0
	}
	f := g.Display / float64(g.Max)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// View is a read-only snapshot of everything the presentation layer draws.
// It is taken between ticks and never aliases session state.
type View struct {
	State   battle.TurnState
	Ended   bool
	Outcome battle.Outcome
	Elapsed time.Duration

	PlayerName string
	PlayerHP   Gauge
	PlayerMP   Gauge
	Potions    map[string]int

	EnemyName string
	Boss      bool
	EnemyHP   Gauge
	Clip      battle.ClipKind
	Frame     int

	Buffs special.Buffs

	Popup          string
	PopupRemaining time.Duration

	Menu battle.MenuView

	Attack    battle.AttackView
	HasAttack bool
	Dodge     battle.DodgeView
	HasDodge  bool
}

// Snapshot captures the session's query surface.
//
// Precondition: s must not be nil.
func Snapshot(s *battle.Session) View {
	p := s.Player()
	es := s.Enemy().CombatStats()
	playerHP, enemyHP := s.DisplayHP()
	popup, remaining := s.Popup()
	clip, frame := s.EnemyAnimation()

	potions := make(map[string]int, len(p.Inventory))
	for id, n := range p.Inventory {
		potions[id] = n
	}

	v := View{
		State:          s.State(),
		Ended:          s.Ended(),
		Outcome:        s.Outcome(),
		Elapsed:        s.Elapsed(),
		PlayerName:     p.Name,
		PlayerHP:       Gauge{Current: p.HP, Max: p.MaxHP, Display: playerHP},
		PlayerMP:       Gauge{Current: p.MP, Max: p.MaxMP, Display: s.DisplayMP()},
		Potions:        potions,
		EnemyName:      es.Name,
		Boss:           s.IsBoss(),
		EnemyHP:        Gauge{Current: es.HP, Max: es.MaxHP, Display: enemyHP},
		Clip:           clip,
		Frame:          frame,
		Buffs:          s.Buffs(),
		Popup:          popup,
		PopupRemaining: remaining,
		Menu:           s.Menu(),
	}
	v.Attack, v.HasAttack = s.AttackQTE()
	v.Dodge, v.HasDodge = s.DodgeQTE()
	return v
}
