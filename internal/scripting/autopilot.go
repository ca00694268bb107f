package scripting

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/presentation"
)

// Hook names a policy may define. Missing hooks are no-ops, except that a
// missing choose_action attacks.
const (
	HookChooseAction = "choose_action"
	HookAttackPress  = "attack_press"
	HookDodgePress   = "dodge_press"
)

// ActionAttack is the choose_action result that starts the attack QTE.
const ActionAttack = "attack"

// DefaultPolicy is the built-in autopilot: heal when low, keep Overclock
// up, press in the middle of every window.
const DefaultPolicy = `
function choose_action(v)
  if v.player.hp * 10 < v.player.max_hp * 3 and v.potions.hp_potion > 0 then
    return "hp_potion"
  end
  if v.buffs.overclock == 0 and v.player.mp >= 15 then
    return "overclock"
  end
  return "attack"
end

function attack_press(v)
  return v.attack.in_zone and v.attack.hits < 4
end

function dodge_press(v)
  if math.abs(v.dodge.pointer) <= v.dodge.inner then
    return v.dodge.direction
  end
  return nil
end
`

// Autopilot drives a battle session from Lua policy hooks, one decision per
// Step. It owns a single LState and is not safe for concurrent use.
type Autopilot struct {
	L      *lua.LState
	limit  int
	logger *zap.Logger
}

// NewAutopilot loads DefaultPolicy.
//
// Precondition: roller must be non-nil; a nil logger disables logging.
func NewAutopilot(roller *dice.Roller, logger *zap.Logger, instLimit int) (*Autopilot, error) {
	return newAutopilot(roller, logger, instLimit, func(L *lua.LState) error {
		return L.DoString(DefaultPolicy)
	})
}

// LoadAutopilot loads the policy script at path.
//
// Precondition: roller must be non-nil; a nil logger disables logging.
// Postcondition: Returns a ready Autopilot or an error if the script cannot be read or run.
func LoadAutopilot(path string, roller *dice.Roller, logger *zap.Logger, instLimit int) (*Autopilot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("scripting: autopilot %q: %w", path, err)
	}
	return newAutopilot(roller, logger, instLimit, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// LoadAutopilotString loads a policy from Lua source.
func LoadAutopilotString(src string, roller *dice.Roller, logger *zap.Logger, instLimit int) (*Autopilot, error) {
	return newAutopilot(roller, logger, instLimit, func(L *lua.LState) error {
		return L.DoString(src)
	})
}

func newAutopilot(roller *dice.Roller, logger *zap.Logger, instLimit int, load func(*lua.LState) error) (*Autopilot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	L, cancel := NewSandboxedState(instLimit)
	RegisterModules(L, roller, logger)
	if err := load(L); err != nil {
		cancel()
		L.Close()
		return nil, fmt.Errorf("scripting: loading autopilot: %w", err)
	}
	L.RemoveContext()
	cancel()
	return &Autopilot{L: L, limit: instLimit, logger: logger}, nil
}

// Close releases the Lua VM.
func (a *Autopilot) Close() {
	a.L.Close()
}

// Step asks the policy for at most one input for s's current state and
// applies it.
//
// Postcondition: returns true iff an action or input was accepted by s.
func (a *Autopilot) Step(s *battle.Session) bool {
	if s.Ended() {
		return false
	}
	if d, ok := s.DodgeQTE(); ok {
		if !d.Moving {
			return false
		}
		ret := a.callHook(HookDodgePress, a.viewTable(s))
		str, ok := ret.(lua.LString)
		if !ok {
			return false
		}
		dir, ok := battle.ParseDirection(string(str))
		if !ok {
			a.logger.Warn("scripting: invalid dodge direction", zap.String("direction", string(str)))
			return false
		}
		return s.HandleInput(battle.Dodge(dir))
	}

	switch s.State() {
	case battle.PlayerTurn:
		return a.chooseAction(s)
	case battle.PlayerAttacking:
		c, ok := s.AttackQTE()
		if !ok || !c.Active {
			return false
		}
		if lua.LVAsBool(a.callHook(HookAttackPress, a.viewTable(s))) {
			return s.HandleInput(battle.AttackPress())
		}
	}
	return false
}

// chooseAction performs the policy's pick and falls back to attacking when
// the pick is unknown or refused.
func (a *Autopilot) chooseAction(s *battle.Session) bool {
	action := ActionAttack
	if ret, ok := a.callHook(HookChooseAction, a.viewTable(s)).(lua.LString); ok {
		action = string(ret)
	}
	if a.perform(s, action) {
		return true
	}
	a.logger.Debug("scripting: action refused, attacking", zap.String("action", action))
	return s.Attack()
}

func (a *Autopilot) perform(s *battle.Session, action string) bool {
	if action == ActionAttack {
		return s.Attack()
	}
	for _, def := range s.Specials().All() {
		if def.ID == action {
			return s.UseSpecial(action)
		}
	}
	if _, ok := s.Player().Inventory[action]; ok {
		return s.UseItem(action)
	}
	a.logger.Warn("scripting: unknown action", zap.String("action", action))
	return false
}

// callHook calls the named Lua global with a fresh instruction budget.
// Returns LNil if the hook is not defined. Lua runtime errors are logged at
// Warn level and never propagated.
func (a *Autopilot) callHook(hook string, args ...lua.LValue) lua.LValue {
	fn := a.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}
	release := withBudget(a.L, a.limit)
	defer release()
	if err := a.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		a.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := a.L.Get(-1)
	a.L.Pop(1)
	return ret
}

// viewTable converts the session snapshot into the table passed to hooks.
func (a *Autopilot) viewTable(s *battle.Session) *lua.LTable {
	L := a.L
	v := presentation.Snapshot(s)
	t := L.NewTable()
	L.SetField(t, "state", lua.LString(v.State.String()))
	L.SetField(t, "elapsed", lua.LNumber(v.Elapsed.Seconds()))

	player := L.NewTable()
	L.SetField(player, "name", lua.LString(v.PlayerName))
	L.SetField(player, "hp", lua.LNumber(v.PlayerHP.Current))
	L.SetField(player, "max_hp", lua.LNumber(v.PlayerHP.Max))
	L.SetField(player, "mp", lua.LNumber(v.PlayerMP.Current))
	L.SetField(player, "max_mp", lua.LNumber(v.PlayerMP.Max))
	L.SetField(t, "player", player)

	enemy := L.NewTable()
	L.SetField(enemy, "name", lua.LString(v.EnemyName))
	L.SetField(enemy, "hp", lua.LNumber(v.EnemyHP.Current))
	L.SetField(enemy, "max_hp", lua.LNumber(v.EnemyHP.Max))
	L.SetField(enemy, "boss", lua.LBool(v.Boss))
	L.SetField(t, "enemy", enemy)

	potions := L.NewTable()
	for id, n := range v.Potions {
		L.SetField(potions, id, lua.LNumber(n))
	}
	L.SetField(t, "potions", potions)

	buffs := L.NewTable()
	L.SetField(buffs, "overclock", lua.LNumber(v.Buffs.Overclock))
	L.SetField(buffs, "guard", lua.LNumber(v.Buffs.Guard))
	L.SetField(buffs, "repair", lua.LNumber(v.Buffs.Repair))
	L.SetField(t, "buffs", buffs)

	specials := L.NewTable()
	for _, def := range s.Specials().All() {
		sp := L.NewTable()
		L.SetField(sp, "id", lua.LString(def.ID))
		L.SetField(sp, "name", lua.LString(def.Name))
		L.SetField(sp, "mp_cost", lua.LNumber(def.MPCost))
		specials.Append(sp)
	}
	L.SetField(t, "specials", specials)

	if v.HasAttack {
		at := L.NewTable()
		L.SetField(at, "angle", lua.LNumber(v.Attack.Angle))
		L.SetField(at, "speed", lua.LNumber(v.Attack.Speed))
		L.SetField(at, "zone_start", lua.LNumber(v.Attack.Zone.Start))
		L.SetField(at, "zone_end", lua.LNumber(v.Attack.Zone.End()))
		L.SetField(at, "in_zone", lua.LBool(v.Attack.Zone.Contains(v.Attack.Angle)))
		L.SetField(at, "hits", lua.LNumber(v.Attack.Hits))
		L.SetField(t, "attack", at)
	}
	if v.HasDodge {
		d := L.NewTable()
		L.SetField(d, "round", lua.LNumber(v.Dodge.Round))
		L.SetField(d, "rounds", lua.LNumber(v.Dodge.Rounds))
		L.SetField(d, "direction", lua.LString(v.Dodge.Direction.String()))
		L.SetField(d, "pointer", lua.LNumber(v.Dodge.Pointer))
		L.SetField(d, "inner", lua.LNumber(v.Dodge.Zones.Inner))
		L.SetField(d, "middle", lua.LNumber(v.Dodge.Zones.Middle))
		L.SetField(d, "outer", lua.LNumber(v.Dodge.Zones.Outer))
		L.SetField(t, "dodge", d)
	}
	return t
}
