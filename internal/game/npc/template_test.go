package npc_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const necromancerYAML = `
id: necromancer
name: Necromancer
kind: basic
max_hp: 30
atk: 10
defense: 5
spd: 11
clips:
  idle: {start: 50, end: 58, frame_duration: 100ms}
  attack: {start: 68, end: 81, frame_duration: 100ms}
  hurt: {start: 17, end: 21, frame_duration: 150ms}
  death: {start: 0, end: 9, frame_duration: 100ms}
loot:
  items:
    - item: hp_potion
      chance: 0.1
      min_qty: 1
      max_qty: 1
`

const nightborneYAML = `
id: nightborne
name: NightBorne
kind: boss
max_hp: 100
atk: 16
defense: 9
spd: 14
clips:
  attack: {start: 46, end: 58, frame_duration: 100ms}
  hurt: {start: 23, end: 28, frame_duration: 150ms}
  death: {start: 0, end: 23, frame_duration: 100ms}
  special: {start: 92, end: 101, frame_duration: 120ms}
`

func necromancer(t testing.TB) *npc.Template {
	t.Helper()
	tmpl, err := npc.LoadTemplateFromBytes([]byte(necromancerYAML))
	require.NoError(t, err)
	return tmpl
}

func nightborne(t testing.TB) *npc.Template {
	t.Helper()
	tmpl, err := npc.LoadTemplateFromBytes([]byte(nightborneYAML))
	require.NoError(t, err)
	return tmpl
}

func TestLoadTemplateFromBytes_Basic(t *testing.T) {
	tmpl := necromancer(t)
	assert.Equal(t, npc.KindBasic, tmpl.Kind)
	assert.Equal(t, 30, tmpl.MaxHP)
	assert.Equal(t, 10, tmpl.Atk)
	assert.Equal(t, 5, tmpl.Defense)
	assert.Equal(t, 13, tmpl.Clips.Attack.Len())
	assert.Equal(t, 150*time.Millisecond, tmpl.Clips.Hurt.Duration())
	require.NotNil(t, tmpl.Loot)
	assert.Equal(t, "hp_potion", tmpl.Loot.Items[0].ItemID)
}

func TestLoadTemplateFromBytes_BossRequiresSpecialClip(t *testing.T) {
	tmpl := nightborne(t)
	assert.Equal(t, npc.KindBoss, tmpl.Kind)
	assert.Equal(t, []int{92, 93, 94, 95, 96, 97, 98, 99, 100}, tmpl.Clips.Special.Frames())

	tmpl.Clips.Special = npc.Clip{}
	assert.Error(t, tmpl.Validate())
}

func TestTemplate_Validate_Rejections(t *testing.T) {
	cases := map[string]func(*npc.Template){
		"empty id":       func(tm *npc.Template) { tm.ID = "" },
		"empty name":     func(tm *npc.Template) { tm.Name = "" },
		"unknown kind":   func(tm *npc.Template) { tm.Kind = "miniboss" },
		"zero hp":        func(tm *npc.Template) { tm.MaxHP = 0 },
		"negative atk":   func(tm *npc.Template) { tm.Atk = -1 },
		"inverted clip":  func(tm *npc.Template) { tm.Clips.Attack = npc.Clip{Start: 9, End: 3, FrameDuration: "100ms"} },
		"bad duration":   func(tm *npc.Template) { tm.Clips.Hurt.FrameDuration = "soon" },
		"zero duration":  func(tm *npc.Template) { tm.Clips.Death.FrameDuration = "0s" },
		"bad loot":       func(tm *npc.Template) { tm.Loot.Items[0].Chance = 2 },
		"tier overflow":  func(tm *npc.Template) { tm.Tiers = []npc.Tier{{MaxHPPercent: 50, Heal: 80, Debuff: 30}} },
		"tiers unsorted": func(tm *npc.Template) { tm.Tiers = []npc.Tier{{MaxHPPercent: 75}, {MaxHPPercent: 40}} },
		"negative cap":   func(tm *npc.Template) { tm.HealCap = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tmpl := necromancer(t)
			mutate(tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestLoadTemplates_ValidDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "necromancer.yaml"), []byte(necromancerYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nightborne.yml"), []byte(nightborneYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# not yaml"), 0644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}

func TestLoadTemplates_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nkind: basic\n"), 0644))
	_, err := npc.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := npc.LoadTemplates(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestClip_Property_FramesMatchLen(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.IntRange(0, 200).Draw(rt, "start")
		end := rapid.IntRange(0, 300).Draw(rt, "end")
		c := npc.Clip{Start: start, End: end}
		frames := c.Frames()
		assert.Equal(rt, c.Len(), len(frames))
		for i, f := range frames {
			assert.Equal(rt, start+i, f)
		}
	})
}
