// Package anim provides the time-driven helpers the battle session advances on
// every tick: value interpolators, frame sequences and countdowns.
//
// None of the types are safe for concurrent use.
package anim

import (
	"math"
	"time"
)

// DefaultSnap is the distance under which an Interpolator jumps to its target.
const DefaultSnap = 0.1

// Interpolator eases a displayed value toward a target. Each tick closes
// min(1, Rate*dt) of the remaining gap, so the motion slows as it arrives.
type Interpolator struct {
	Rate    float64 // fraction of the gap closed per second
	Snap    float64
	display float64
	target  float64
}

// NewInterpolator returns an Interpolator resting at v.
func NewInterpolator(v, rate float64) *Interpolator {
	return &Interpolator{Rate: rate, Snap: DefaultSnap, display: v, target: v}
}

// SetTarget starts easing toward v.
func (i *Interpolator) SetTarget(v float64) { i.target = v }

// Value returns the displayed value.
func (i *Interpolator) Value() float64 { return i.display }

// Target returns the value being approached.
func (i *Interpolator) Target() float64 { return i.target }

// Settled reports whether the displayed value has reached the target.
func (i *Interpolator) Settled() bool { return i.display == i.target }

// Tick advances the interpolation by dt.
//
// Postcondition: |target - display| never grows; display equals target once
// the gap falls to Snap or below.
func (i *Interpolator) Tick(dt time.Duration) {
	if i.Settled() || dt <= 0 {
		return
	}
	diff := i.display - i.target
	step := math.Min(1, i.Rate*dt.Seconds())
	i.display -= diff * step
	if math.Abs(i.display-i.target) <= i.Snap {
		i.display = i.target
	}
}

// FrameSequence plays a list of sprite frames at a fixed per-frame duration.
type FrameSequence struct {
	frames   []int
	perFrame time.Duration
	elapsed  time.Duration
	pos      int
	loop     bool
}

// NewFrameSequence returns a sequence that plays frames once.
//
// Precondition: perFrame > 0.
func NewFrameSequence(frames []int, perFrame time.Duration) *FrameSequence {
	return &FrameSequence{frames: frames, perFrame: perFrame}
}

// NewLoop returns a sequence that restarts after its last frame and never completes.
func NewLoop(frames []int, perFrame time.Duration) *FrameSequence {
	return &FrameSequence{frames: frames, perFrame: perFrame, loop: true}
}

// Tick advances the sequence by dt, possibly skipping several frames.
func (f *FrameSequence) Tick(dt time.Duration) {
	if f.Done() || dt <= 0 || f.perFrame <= 0 {
		return
	}
	f.elapsed += dt
	for f.elapsed >= f.perFrame && !f.Done() {
		f.elapsed -= f.perFrame
		f.pos++
		if f.loop && f.pos >= len(f.frames) {
			f.pos = 0
		}
	}
}

// Frame returns the current frame index, or -1 for an empty sequence. After
// completion it keeps returning the last frame.
func (f *FrameSequence) Frame() int {
	if len(f.frames) == 0 {
		return -1
	}
	if f.pos >= len(f.frames) {
		return f.frames[len(f.frames)-1]
	}
	return f.frames[f.pos]
}

// Position returns how many frames have been shown so far.
func (f *FrameSequence) Position() int { return f.pos }

// Len returns the number of frames.
func (f *FrameSequence) Len() int { return len(f.frames) }

// Done reports whether a one-shot sequence has played every frame.
// Empty sequences are always done; loops never are.
func (f *FrameSequence) Done() bool {
	if f.loop {
		return len(f.frames) == 0
	}
	return f.pos >= len(f.frames)
}

// Countdown fires once after a delay.
type Countdown struct {
	remaining time.Duration
	active    bool
}

// Start (re)arms the countdown for d.
func (c *Countdown) Start(d time.Duration) {
	c.remaining = d
	c.active = true
}

// Stop disarms the countdown without firing.
func (c *Countdown) Stop() {
	c.remaining = 0
	c.active = false
}

// Active reports whether the countdown is armed.
func (c *Countdown) Active() bool { return c.active }

// Remaining returns the time left, or 0 when disarmed.
func (c *Countdown) Remaining() time.Duration {
	if !c.active {
		return 0
	}
	return c.remaining
}

// Tick advances the countdown and reports whether it fired during this tick.
//
// Postcondition: returns true at most once per Start.
func (c *Countdown) Tick(dt time.Duration) bool {
	if !c.active {
		return false
	}
	c.remaining -= dt
	if c.remaining > 0 {
		return false
	}
	c.active = false
	c.remaining = 0
	return true
}
