package npc

import (
	"fmt"

	"github.com/cory-johannsen/redarchon/internal/game/combat"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/special"
)

// Enemy is the capability every opponent exposes to the battle engine.
type Enemy interface {
	combat.Combatant
	// Template returns the archetype this enemy was spawned from.
	Template() *Template
	// CalcDamage computes a hit against a defender with the given defense and
	// guard charges, returning the damage and the remaining guard.
	CalcDamage(guard, defense int) (damage, updatedGuard int)
	IdleFrames() Clip
	AttackFrames() Clip
	HurtFrames() Clip
	DeathFrames() Clip
}

// LootDropper is implemented by enemies that can drop items on death.
type LootDropper interface {
	DropLoot(r *dice.Roller) []LootItem
}

// Action is the boss's decision for one enemy turn.
type Action int

const (
	ActionAttack Action = iota
	ActionHeal
	ActionDebuff
)

func (a Action) String() string {
	switch a {
	case ActionHeal:
		return "heal"
	case ActionDebuff:
		return "debuff"
	default:
		return "attack"
	}
}

// BossExtension is the additional capability of boss enemies.
type BossExtension interface {
	// DecideAction picks this turn's action from a single 1d100 draw.
	// hasBuffs gates the Debuff branch.
	DecideAction(hasBuffs bool, r *dice.Roller) Action
	// Heal restores up to the heal cap and returns the amount healed.
	Heal() int
	// Debuff strips every buff from b.
	Debuff(b *special.Buffs)
	SpecialFrames() Clip
}

// base holds the state common to every enemy variant.
type base struct {
	tmpl  *Template
	stats combat.Stats
}

func newBase(tmpl *Template) base {
	return base{
		tmpl: tmpl,
		stats: combat.Stats{
			Name:    tmpl.Name,
			HP:      tmpl.MaxHP,
			MaxHP:   tmpl.MaxHP,
			Atk:     tmpl.Atk,
			Defense: tmpl.Defense,
			Spd:     tmpl.Spd,
		},
	}
}

func (b *base) CombatStats() *combat.Stats { return &b.stats }
func (b *base) Template() *Template        { return b.tmpl }
func (b *base) IdleFrames() Clip           { return b.tmpl.Clips.Idle }
func (b *base) AttackFrames() Clip         { return b.tmpl.Clips.Attack }
func (b *base) HurtFrames() Clip           { return b.tmpl.Clips.Hurt }
func (b *base) DeathFrames() Clip          { return b.tmpl.Clips.Death }

func (b *base) CalcDamage(guard, defense int) (int, int) {
	return combat.CalcDamage(b.stats.Atk, defense, guard)
}

// Basic is a regular enemy that may drop loot.
type Basic struct {
	base
}

// DropLoot rolls the template's loot table; a template without one drops nothing.
func (e *Basic) DropLoot(r *dice.Roller) []LootItem {
	if e.tmpl.Loot == nil {
		return nil
	}
	return GenerateLoot(*e.tmpl.Loot, r)
}

// Boss is a multi-phase enemy that can heal and strip player buffs.
type Boss struct {
	base
}

// DecideAction resolves the HP-tiered policy with exactly one 1d100 draw when
// HP falls inside a tier. Above every tier it always attacks without drawing.
//
// Postcondition: never returns ActionDebuff when hasBuffs is false.
func (e *Boss) DecideAction(hasBuffs bool, r *dice.Roller) Action {
	tier, ok := e.tier()
	if !ok {
		return ActionAttack
	}
	n := r.Percent()
	switch {
	case n <= tier.Heal:
		return ActionHeal
	case n <= tier.Heal+tier.Debuff && hasBuffs:
		return ActionDebuff
	default:
		return ActionAttack
	}
}

func (e *Boss) tier() (Tier, bool) {
	tiers := e.tmpl.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	for _, t := range tiers {
		if e.stats.HP*100 <= t.MaxHPPercent*e.stats.MaxHP {
			return t, true
		}
	}
	return Tier{}, false
}

// Heal restores min(MaxHP-HP, cap) HP.
func (e *Boss) Heal() int {
	healCap := e.tmpl.HealCap
	if healCap == 0 {
		healCap = DefaultHealCap
	}
	return e.stats.Heal(healCap)
}

// Debuff unconditionally zeroes every player buff.
func (e *Boss) Debuff(b *special.Buffs) {
	b.Clear()
}

func (e *Boss) SpecialFrames() Clip { return e.tmpl.Clips.Special }

// New spawns a fresh enemy at full HP from tmpl.
//
// Precondition: tmpl must have passed Validate.
func New(tmpl *Template) (Enemy, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("npc.New: tmpl must not be nil")
	}
	switch tmpl.Kind {
	case KindBasic:
		return &Basic{base: newBase(tmpl)}, nil
	case KindBoss:
		return &Boss{base: newBase(tmpl)}, nil
	default:
		return nil, fmt.Errorf("npc.New: template %q has unknown kind %q", tmpl.ID, tmpl.Kind)
	}
}
