package battle

import (
	"time"

	"github.com/google/uuid"
)

// Report summarises a finished battle.
type Report struct {
	ID          uuid.UUID
	PlayerID    uuid.UUID
	PlayerName  string
	EnemyID     string
	EnemyName   string
	Boss        bool
	Outcome     Outcome
	PlayerTurns int
	DamageDealt int
	DamageTaken int
	Loot        []string
	Elapsed     time.Duration
}

// Report returns the battle summary once the battle has ended.
//
// Postcondition: ok is false until Ended reports true.
func (s *Session) Report() (r Report, ok bool) {
	if !s.ended {
		return Report{}, false
	}
	tmpl := s.enemy.Template()
	return Report{
		ID:          s.id,
		PlayerID:    s.player.ID,
		PlayerName:  s.player.Name,
		EnemyID:     tmpl.ID,
		EnemyName:   tmpl.Name,
		Boss:        s.boss != nil,
		Outcome:     s.outcome,
		PlayerTurns: s.turns,
		DamageDealt: s.dealt,
		DamageTaken: s.taken,
		Loot:        append([]string(nil), s.lootIDs...),
		Elapsed:     s.elapsed,
	}, true
}
