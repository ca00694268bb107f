package battle

import (
	"time"

	"github.com/cory-johannsen/redarchon/internal/game/anim"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
)

// ClipKind names the enemy animation currently playing. Only one enemy clip
// is active at a time.
type ClipKind int

const (
	ClipIdle ClipKind = iota
	ClipAttack
	ClipHurt
	ClipDeath
	ClipSpecial
)

func (k ClipKind) String() string {
	switch k {
	case ClipAttack:
		return "attack"
	case ClipHurt:
		return "hurt"
	case ClipDeath:
		return "death"
	case ClipSpecial:
		return "special"
	default:
		return "idle"
	}
}

// playClip replaces the active enemy clip and returns the new sequence.
func (s *Session) playClip(kind ClipKind, c npc.Clip) *anim.FrameSequence {
	s.clip = anim.NewFrameSequence(c.Frames(), c.Duration())
	s.clipKind = kind
	return s.clip
}

func (s *Session) idle() {
	c := s.enemy.IdleFrames()
	d := c.Duration()
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	s.clip = anim.NewLoop(c.Frames(), d)
	s.clipKind = ClipIdle
}

// tickClip advances the active clip; a finished one-shot clip falls back to
// idle, except death which holds its last frame.
func (s *Session) tickClip(dt time.Duration) {
	s.clip.Tick(dt)
	if s.clipKind != ClipIdle && s.clipKind != ClipDeath && s.clip.Done() {
		s.idle()
	}
}
