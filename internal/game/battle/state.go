// Package battle implements the tick-driven battle state machine: turn
// sequencing, the attack and dodge QTEs, pending damage, buffs, and the
// victory and defeat sequences.
package battle

// TurnState is the single active phase of a battle.
type TurnState int

const (
	PlayerTurn TurnState = iota
	PlayerAttacking
	Resolving
	EnemyTurnPending
	EnemyTurn
	EnemyActionAnimating
	Victory
	Defeat
)

func (s TurnState) String() string {
	switch s {
	case PlayerTurn:
		return "player_turn"
	case PlayerAttacking:
		return "player_attacking"
	case Resolving:
		return "resolving"
	case EnemyTurnPending:
		return "enemy_turn_pending"
	case EnemyTurn:
		return "enemy_turn"
	case EnemyActionAnimating:
		return "enemy_action_animating"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the battle.
func (s TurnState) Terminal() bool { return s == Victory || s == Defeat }

// Outcome is how a finished battle ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "none"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "victory":
		return OutcomeVictory, true
	case "defeat":
		return OutcomeDefeat, true
	case "none":
		return OutcomeNone, true
	default:
		return OutcomeNone, false
	}
}
