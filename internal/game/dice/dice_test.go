package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/redarchon/internal/game/dice"
)

// TestRollResult_Total verifies the postcondition: Total() == sum(Dice) + Modifier.
func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}, Modifier: 0}
	assert.Panics(t, func() { _ = r.String() })
}

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in                    string
		count, sides, modifer int
	}{
		{"d10", 1, 10, 0},
		{"1d100", 1, 100, 0},
		{"2d6+3", 2, 6, 3},
		{"4D8-2", 4, 8, -2},
	}
	for _, tc := range cases {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.modifer, e.Modifier, tc.in)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "6", "0d6", "2d1", "2dx", "2d6+x"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nonsense") })
}

func TestRoll_Property_DiceInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		seed := rapid.Uint64().Draw(rt, "seed")
		expr := dice.MustParse(fmt.Sprintf("%dd%d", count, sides))
		r := dice.Roll(expr, dice.NewSeededSource(seed))
		assert.Len(rt, r.Dice, count)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`[0-9]+d[0-9]+[+-][0-9]+`).Draw(rt, "expression")
		dice_ := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")
		r := dice.RollResult{Expression: expr, Dice: dice_, Modifier: modifier}
		s := r.String()
		assert.True(rt, strings.Contains(s, expr))
		assert.Contains(rt, s, fmt.Sprintf("%d", r.Total()))
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestFixed_ReplaysThenRepeatsLast(t *testing.T) {
	f := dice.NewFixed(3, 7)
	assert.Equal(t, 3, f.Intn(10))
	assert.Equal(t, 7, f.Intn(10))
	assert.Equal(t, 7, f.Intn(10))
	assert.Equal(t, 2, f.Intn(5), "values are reduced modulo n")
}

func TestRoller_Percent_InRangeAndLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.New(core))
	for i := 0; i < 500; i++ {
		n := r.Percent()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 100)
	}
	assert.Equal(t, 500, logs.FilterMessage("dice roll").Len())
}

func TestRoller_Percent_FixedMapsToOneBased(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewFixed(0, 99), nil)
	assert.Equal(t, 1, r.Percent())
	assert.Equal(t, 100, r.Percent())
}

func TestRoller_Chance_Bounds(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(9), nil)
	for i := 0; i < 200; i++ {
		assert.False(t, r.Chance(0))
		assert.True(t, r.Chance(1))
	}
}

func TestRoller_Chance_TenPercent(t *testing.T) {
	// draws 0..99 hit, 100.. miss for p = 0.1
	r := dice.NewLoggedRoller(dice.NewFixed(99, 100), nil)
	assert.True(t, r.Chance(0.1))
	assert.False(t, r.Chance(0.1))
}
