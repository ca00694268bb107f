// Package special defines the player's special moves and the buff counters they grant.
package special

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Grant names the buff a special move adds charges to.
type Grant struct {
	Buff    Kind `yaml:"buff"`
	Charges int  `yaml:"charges"`
}

// Def is the static definition of a special move, loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	MPCost      int    `yaml:"mp_cost"`
	Grant       Grant  `yaml:"grant"`
	// Order positions the move in the Special menu; ties sort by ID.
	Order int `yaml:"order"`
}

// Validate checks that the definition satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, MPCost >= 0,
// Grant.Buff is a known Kind, and Grant.Charges >= 1.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("special: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("special %q: name must not be empty", d.ID)
	}
	if d.MPCost < 0 {
		return fmt.Errorf("special %q: mp_cost must be >= 0, got %d", d.ID, d.MPCost)
	}
	if !d.Grant.Buff.Valid() {
		return fmt.Errorf("special %q: unknown buff %q", d.ID, d.Grant.Buff)
	}
	if d.Grant.Charges < 1 {
		return fmt.Errorf("special %q: grant.charges must be >= 1, got %d", d.ID, d.Grant.Charges)
	}
	return nil
}

// Registry holds all known special moves keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns the registered moves in menu order.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Defaults returns a Registry holding Overclock, Tight Guard and Auto-Repair.
func Defaults() *Registry {
	reg := NewRegistry()
	reg.Register(&Def{ID: "overclock", Name: "Overclock", Description: "Your next attack deals double damage.", MPCost: 15, Grant: Grant{Buff: Overclock, Charges: 2}, Order: 1})
	reg.Register(&Def{ID: "tight_guard", Name: "Tight Guard", Description: "Halve the damage of incoming hits.", MPCost: 10, Grant: Grant{Buff: Guard, Charges: 3}, Order: 2})
	reg.Register(&Def{ID: "auto_repair", Name: "Auto-Repair", Description: "Restore HP at the start of your turns.", MPCost: 20, Grant: Grant{Buff: Repair, Charges: 3}, Order: 3})
	return reg
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading specials dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
