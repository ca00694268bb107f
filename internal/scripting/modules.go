package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/game/dice"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.roll(expr) -> {dice = sum, modifier = n, total = n}
//
// Precondition: L must be from NewSandboxedState; roller and logger must be non-nil.
// Postcondition: engine global is defined in L.
func RegisterModules(L *lua.LState, roller *dice.Roller, logger *zap.Logger) {
	engine := L.NewTable()
	L.SetField(engine, "log", newLogModule(L, logger))
	L.SetField(engine, "dice", newDiceModule(L, roller))
	L.SetGlobal("engine", engine)
}

func newLogModule(L *lua.LState, logger *zap.Logger) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua", zap.String("msg", L.CheckString(1)))
			return 0
		}))
	}
	return mod
}

func newDiceModule(L *lua.LState, roller *dice.Roller) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		result := roller.Roll(expr)
		sum := 0
		for _, d := range result.Dice {
			sum += d
		}
		t := L.NewTable()
		L.SetField(t, "dice", lua.LNumber(sum))
		L.SetField(t, "modifier", lua.LNumber(result.Modifier))
		L.SetField(t, "total", lua.LNumber(result.Total()))
		L.Push(t)
		return 1
	}))
	return mod
}
