package battle

import "github.com/cory-johannsen/redarchon/internal/game/special"

// EventKind classifies an Event.
type EventKind int

const (
	EventStateChanged EventKind = iota + 1
	EventDamage
	EventHeal
	EventBuffChanged
	EventPopup
	EventComboHit
	EventDodgeRound
	EventLoot
	EventEnded
)

var eventKindNames = [...]string{
	EventStateChanged: "state_changed",
	EventDamage:       "damage",
	EventHeal:         "heal",
	EventBuffChanged:  "buff_changed",
	EventPopup:        "popup",
	EventComboHit:     "combo_hit",
	EventDodgeRound:   "dodge_round",
	EventLoot:         "loot",
	EventEnded:        "ended",
}

func (k EventKind) String() string {
	if k < EventStateChanged || k > EventEnded {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is something that happened during a tick or input, queued for the
// presentation layer and logs.
type Event struct {
	Kind EventKind
	// State is the state entered, for EventStateChanged.
	State TurnState
	// Target names the combatant affected by damage or healing.
	Target string
	Amount int
	Text   string
	Buffs  special.Buffs
}

// DrainEvents returns the queued events and empties the queue.
func (s *Session) DrainEvents() []Event {
	out := s.events
	s.events = nil
	return out
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}
