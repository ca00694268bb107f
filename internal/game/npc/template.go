// Package npc provides enemy template definitions and the live enemy behaviors
// used by the battle engine.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind selects the enemy behavior built from a template.
type Kind string

const (
	KindBasic Kind = "basic"
	KindBoss  Kind = "boss"
)

// Clip is a contiguous range of sprite-sheet frames played at a fixed rate.
// Start is inclusive, End is exclusive.
type Clip struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
	// FrameDuration is a duration string, e.g. "100ms".
	FrameDuration string `yaml:"frame_duration"`
}

// Frames returns the frame indices in play order.
func (c Clip) Frames() []int {
	if c.End <= c.Start {
		return nil
	}
	out := make([]int, 0, c.End-c.Start)
	for i := c.Start; i < c.End; i++ {
		out = append(out, i)
	}
	return out
}

// Duration returns the parsed per-frame duration, or 0 when unset.
func (c Clip) Duration() time.Duration {
	d, _ := time.ParseDuration(c.FrameDuration)
	return d
}

// Len returns the number of frames in the clip.
func (c Clip) Len() int {
	if c.End <= c.Start {
		return 0
	}
	return c.End - c.Start
}

func (c Clip) validate(name string) error {
	if c.Start < 0 || c.End <= c.Start {
		return fmt.Errorf("clip %s: need 0 <= start < end, got [%d, %d)", name, c.Start, c.End)
	}
	d, err := time.ParseDuration(c.FrameDuration)
	if err != nil {
		return fmt.Errorf("clip %s: frame_duration %q is not a valid duration: %w", name, c.FrameDuration, err)
	}
	if d <= 0 {
		return fmt.Errorf("clip %s: frame_duration must be > 0", name)
	}
	return nil
}

// Clips groups the animation clips of one enemy sprite sheet.
type Clips struct {
	Idle    Clip `yaml:"idle"`
	Attack  Clip `yaml:"attack"`
	Hurt    Clip `yaml:"hurt"`
	Death   Clip `yaml:"death"`
	Special Clip `yaml:"special"`
}

// Tier is one HP band of the boss decision policy. Heal and Debuff are
// percentages out of a single 1d100 draw.
type Tier struct {
	// MaxHPPercent is the inclusive upper bound of the band.
	MaxHPPercent int `yaml:"max_hp_percent"`
	Heal         int `yaml:"heal"`
	Debuff       int `yaml:"debuff"`
}

// DefaultTiers is the boss policy used when a boss template declares none.
var DefaultTiers = []Tier{
	{MaxHPPercent: 40, Heal: 40, Debuff: 20},
	{MaxHPPercent: 75, Heal: 20, Debuff: 10},
}

// DefaultHealCap bounds a single boss heal when a template declares none.
const DefaultHealCap = 40

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        Kind   `yaml:"kind"`
	MaxHP       int    `yaml:"max_hp"`
	Atk         int    `yaml:"atk"`
	Defense     int    `yaml:"defense"`
	Spd         int    `yaml:"spd"`
	// Sprite is the texture handle handed to the presentation layer.
	Sprite string     `yaml:"sprite"`
	Clips  Clips      `yaml:"clips"`
	Loot   *LootTable `yaml:"loot"`
	// Boss-only tuning.
	Tiers   []Tier `yaml:"tiers"`
	HealCap int    `yaml:"heal_cap"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Kind is known,
// MaxHP >= 1, stats are non-negative, and every required clip is well formed;
// returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Kind != KindBasic && t.Kind != KindBoss {
		return fmt.Errorf("npc template %q: kind must be basic or boss, got %q", t.ID, t.Kind)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("npc template %q: max_hp must be >= 1", t.ID)
	}
	if t.Atk < 0 || t.Defense < 0 || t.Spd < 0 {
		return fmt.Errorf("npc template %q: atk, defense and spd must be >= 0", t.ID)
	}
	required := map[string]Clip{"attack": t.Clips.Attack, "hurt": t.Clips.Hurt, "death": t.Clips.Death}
	if t.Kind == KindBoss {
		required["special"] = t.Clips.Special
	}
	for name, clip := range required {
		if err := clip.validate(name); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	if t.Clips.Idle.Len() > 0 {
		if err := t.Clips.Idle.validate("idle"); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	for i, tier := range t.Tiers {
		if tier.MaxHPPercent < 1 || tier.MaxHPPercent > 100 {
			return fmt.Errorf("npc template %q: tiers[%d].max_hp_percent must be in [1, 100]", t.ID, i)
		}
		if tier.Heal < 0 || tier.Debuff < 0 || tier.Heal+tier.Debuff > 100 {
			return fmt.Errorf("npc template %q: tiers[%d] heal and debuff must be >= 0 and sum to <= 100", t.ID, i)
		}
		if i > 0 && tier.MaxHPPercent <= t.Tiers[i-1].MaxHPPercent {
			return fmt.Errorf("npc template %q: tiers must be ordered by ascending max_hp_percent", t.ID)
		}
	}
	if t.HealCap < 0 {
		return fmt.Errorf("npc template %q: heal_cap must be >= 0", t.ID)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// isTemplateFile reports whether path has a YAML extension (.yaml or .yml).
func isTemplateFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadTemplates reads all *.yaml and *.yml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
