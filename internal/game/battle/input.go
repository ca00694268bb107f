package battle

// InputKind is the closed set of logical input events.
type InputKind int

const (
	MoveDirectionPressed InputKind = iota + 1
	ConfirmPressed
	AttackQTEPressed
	DodgeDirectionPressed
)

// Direction is an arrow key.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < Up || d > Right {
		return "none"
	}
	return directionNames[d]
}

// ParseDirection maps "up", "down", "left" or "right" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), true
		}
	}
	return 0, false
}

// Input is one logical input event.
type Input struct {
	Kind      InputKind
	Direction Direction
}

// Move returns a MoveDirectionPressed event.
func Move(d Direction) Input { return Input{Kind: MoveDirectionPressed, Direction: d} }

// Confirm returns a ConfirmPressed event.
func Confirm() Input { return Input{Kind: ConfirmPressed} }

// AttackPress returns an AttackQTEPressed event.
func AttackPress() Input { return Input{Kind: AttackQTEPressed} }

// Dodge returns a DodgeDirectionPressed event.
func Dodge(d Direction) Input { return Input{Kind: DodgeDirectionPressed, Direction: d} }
