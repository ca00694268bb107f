package battle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/game/anim"
	"github.com/cory-johannsen/redarchon/internal/game/character"
	"github.com/cory-johannsen/redarchon/internal/game/combat"
	"github.com/cory-johannsen/redarchon/internal/game/dice"
	"github.com/cory-johannsen/redarchon/internal/game/npc"
	"github.com/cory-johannsen/redarchon/internal/game/special"
)

// Deps are the collaborators a Session consumes. Every field is optional.
type Deps struct {
	// Roller drives boss decisions, loot and dodge arrows; nil uses a crypto source.
	Roller *dice.Roller
	// Specials lists the moves offered in the Special menu; nil uses special.Defaults.
	Specials *special.Registry
	// Loot rolls drops on a basic victory; nil uses TableLoot over Roller.
	Loot   LootService
	Audio  AudioCues
	Logger *zap.Logger
}

// Session owns all mutable state of one encounter. It is advanced only by
// Tick and HandleInput and is not safe for concurrent use.
type Session struct {
	id       uuid.UUID
	cfg      config.BattleConfig
	logger   *zap.Logger
	roller   *dice.Roller
	specials *special.Registry
	lootSvc  LootService
	audio    AudioCues

	player *character.Character
	enemy  npc.Enemy
	boss   npc.BossExtension

	state   TurnState
	buffs   special.Buffs
	menu    menu
	combo   *AttackCombo
	dodge   *DodgeSession
	pending *PendingDamage

	enemyDelay  anim.Countdown
	repairTimer anim.Countdown
	popupTimer  anim.Countdown
	popup       string

	playerHP *anim.Interpolator
	playerMP *anim.Interpolator
	enemyHP  *anim.Interpolator

	clip     *anim.FrameSequence
	clipKind ClipKind
	// gate is the enemy animation an enemy action waits on.
	gate *anim.FrameSequence

	ended   bool
	outcome Outcome
	turns   int
	dealt   int
	taken   int
	lootIDs []string
	elapsed time.Duration
	events  []Event
}

// NewSession starts an encounter between player and a freshly reset enemy.
//
// Precondition: cfg must pass Validate.
// Postcondition: the enemy is at full HP and the session is in PlayerTurn, or
// in EnemyTurnPending when speed initiative hands the enemy the first move.
func NewSession(cfg config.BattleConfig, player *character.Character, enemy npc.Enemy, deps Deps) (*Session, error) {
	if player == nil {
		return nil, errors.New("battle: player must not be nil")
	}
	if enemy == nil {
		return nil, errors.New("battle: enemy must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("battle: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Roller == nil {
		deps.Roller = dice.NewLoggedRoller(dice.NewCryptoSource(), deps.Logger)
	}
	if deps.Specials == nil {
		deps.Specials = special.Defaults()
	}
	if deps.Loot == nil {
		deps.Loot = TableLoot{Roller: deps.Roller}
	}
	if deps.Audio == nil {
		deps.Audio = nopAudio{}
	}

	es := enemy.CombatStats()
	es.HP = es.MaxHP
	player.Clamp()

	s := &Session{
		id:       uuid.New(),
		cfg:      cfg,
		logger:   deps.Logger,
		roller:   deps.Roller,
		specials: deps.Specials,
		lootSvc:  deps.Loot,
		audio:    deps.Audio,
		player:   player,
		enemy:    enemy,
		playerHP: anim.NewInterpolator(float64(player.HP), cfg.BarRate),
		playerMP: anim.NewInterpolator(float64(player.MP), cfg.BarRate),
		enemyHP:  anim.NewInterpolator(float64(es.HP), cfg.BarRate),
	}
	if boss, ok := enemy.(npc.BossExtension); ok {
		s.boss = boss
	}
	s.idle()
	s.audio.Play(CueBattleMusic)

	s.logger.Info("battle started",
		zap.String("battle_id", s.id.String()),
		zap.String("enemy", es.Name),
		zap.Bool("boss", s.boss != nil),
	)

	if cfg.SpeedInitiative && es.Spd >= player.Spd {
		s.enemyDelay.Start(cfg.EnemyActionDelay)
		s.state = EnemyTurnPending
		s.emit(Event{Kind: EventStateChanged, State: EnemyTurnPending})
	} else {
		s.beginPlayerTurn()
	}
	return s, nil
}

// ID returns the battle identifier, reused as the report ID.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the active TurnState.
func (s *Session) State() TurnState { return s.state }

// Ended reports whether the battle is over: immediately on defeat, and after
// the death animation on victory.
func (s *Session) Ended() bool { return s.ended }

// Outcome returns how the battle ended, or OutcomeNone while it runs.
func (s *Session) Outcome() Outcome { return s.outcome }

// Player returns the player character.
func (s *Session) Player() *character.Character { return s.player }

// Enemy returns the opponent.
func (s *Session) Enemy() npc.Enemy { return s.enemy }

// IsBoss reports whether the opponent is a boss.
func (s *Session) IsBoss() bool { return s.boss != nil }

// Buffs returns a copy of the active buff counters.
func (s *Session) Buffs() special.Buffs { return s.buffs }

// Specials returns the moves offered in the Special menu.
func (s *Session) Specials() *special.Registry { return s.specials }

// Popup returns the current narrative text and its remaining display time.
func (s *Session) Popup() (string, time.Duration) { return s.popup, s.popupTimer.Remaining() }

// DisplayHP returns the interpolated HP bars of the player and the enemy.
func (s *Session) DisplayHP() (player, enemy float64) {
	return s.playerHP.Value(), s.enemyHP.Value()
}

// DisplayMP returns the interpolated player MP bar.
func (s *Session) DisplayMP() float64 { return s.playerMP.Value() }

// EnemyAnimation returns the active enemy clip and its current frame index.
func (s *Session) EnemyAnimation() (ClipKind, int) { return s.clipKind, s.clip.Frame() }

// Elapsed returns the total time ticked.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// Config returns the tuning the session runs with.
func (s *Session) Config() config.BattleConfig { return s.cfg }

// Tick advances every timer, animation and state transition by dt. Within a
// tick the order is fixed: popup timer, bar interpolation, enemy animation
// frames, pending damage, then state timers.
//
// Precondition: dt >= 0; negative values are treated as zero.
func (s *Session) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	s.elapsed += dt

	if s.popupTimer.Tick(dt) {
		s.popup = ""
	}

	s.playerHP.Tick(dt)
	s.playerMP.Tick(dt)
	s.enemyHP.Tick(dt)

	s.tickClip(dt)

	s.applyPending()

	s.tickState(dt)
}

func (s *Session) tickState(dt time.Duration) {
	switch s.state {
	case PlayerTurn:
		s.tickRepair(dt)
	case PlayerAttacking:
		s.tickCombo(dt)
	case Resolving:
		s.ResolveAttack()
	case EnemyTurnPending:
		if s.enemyDelay.Tick(dt) {
			s.setState(EnemyTurn)
			s.runEnemyTurn()
		}
	case EnemyTurn:
		s.runEnemyTurn()
	case EnemyActionAnimating:
		if s.dodge != nil {
			s.tickDodge(dt)
			return
		}
		if s.pending == nil && (s.gate == nil || s.gate.Done()) {
			s.gate = nil
			s.beginPlayerTurn()
		}
	case Victory:
		if !s.ended && s.clip.Done() {
			s.finishVictory()
		}
	}
}

// HandleInput applies one logical input event.
//
// Postcondition: returns false, changing nothing, when the active state does
// not accept the event.
func (s *Session) HandleInput(in Input) bool {
	if s.ended {
		return false
	}
	switch in.Kind {
	case MoveDirectionPressed:
		if s.state != PlayerTurn {
			return false
		}
		s.menu.move(in.Direction, len(s.menuOptions()))
		return true
	case ConfirmPressed:
		if s.state != PlayerTurn {
			return false
		}
		s.confirm()
		return true
	case AttackQTEPressed:
		return s.pressAttack()
	case DodgeDirectionPressed:
		return s.pressDodge(in.Direction)
	}
	return false
}

func (s *Session) setState(next TurnState) {
	if s.state == next {
		return
	}
	s.logger.Debug("battle state",
		zap.Stringer("from", s.state),
		zap.Stringer("to", next),
	)
	s.state = next
	s.emit(Event{Kind: EventStateChanged, State: next})
}

func (s *Session) beginPlayerTurn() {
	s.setState(PlayerTurn)
	s.turns++
	s.menu = menu{}
	s.combo = nil
	if s.buffs.Repair > 0 && !s.repairTimer.Active() {
		s.repairTimer.Start(s.cfg.RepairDelay)
	}
}

// tickRepair heals once per armed repair after the delay, waiting while the
// HP bar is still animating.
func (s *Session) tickRepair(dt time.Duration) {
	if !s.repairTimer.Active() || !s.playerHP.Settled() {
		return
	}
	if !s.repairTimer.Tick(dt) {
		return
	}
	if !s.buffs.Consume(special.Repair) {
		return
	}
	healed := s.player.Heal(s.cfg.RepairAmount)
	s.syncBars()
	s.emit(Event{Kind: EventHeal, Target: s.player.Name, Amount: healed})
	s.emit(Event{Kind: EventBuffChanged, Buffs: s.buffs})
	s.showPopup(fmt.Sprintf("Auto-Repair restored %d HP!", healed))
	s.logger.Debug("repair tick", zap.Int("healed", healed), zap.Int("hp", s.player.HP), zap.Int("remaining", s.buffs.Repair))
}

func (s *Session) showPopup(text string) {
	s.popup = text
	s.popupTimer.Start(s.cfg.PopupDuration)
	s.emit(Event{Kind: EventPopup, Text: text})
}

func (s *Session) syncBars() {
	s.playerHP.SetTarget(float64(s.player.HP))
	s.playerMP.SetTarget(float64(s.player.MP))
	s.enemyHP.SetTarget(float64(s.enemy.CombatStats().HP))
}

// damagePlayer applies amount to the player and reports whether the player died.
func (s *Session) damagePlayer(amount int) bool {
	lost := s.player.ApplyDamage(amount)
	s.taken += lost
	s.syncBars()
	s.emit(Event{Kind: EventDamage, Target: s.player.Name, Amount: amount})
	s.logger.Debug("player damaged", zap.Int("damage", amount), zap.Int("hp", s.player.HP))
	if s.player.IsDead() {
		s.defeat()
		return true
	}
	return false
}

func (s *Session) defeat() {
	s.pending = nil
	s.dodge = nil
	s.gate = nil
	s.setState(Defeat)
	s.showPopup("You were defeated...")
	s.audio.Play(CueGameOver)
	s.end(OutcomeDefeat)
}

func (s *Session) victory() {
	s.setState(Victory)
	s.showPopup(fmt.Sprintf("The %s died", s.enemy.CombatStats().Name))
	s.playClip(ClipDeath, s.enemy.DeathFrames())
}

func (s *Session) finishVictory() {
	name := s.enemy.CombatStats().Name
	if s.boss != nil {
		s.audio.Play(CueWinMusic)
	} else {
		items := s.lootSvc.RollLoot(s.enemy, s.player)
		for _, it := range items {
			s.lootIDs = append(s.lootIDs, it.ItemDefID)
			s.emit(Event{Kind: EventLoot, Text: it.ItemDefID, Amount: it.Quantity})
		}
		if len(items) > 0 {
			label := items[0].ItemDefID
			if def, ok := character.LookupItem(label); ok {
				label = def.Name
			}
			s.showPopup(fmt.Sprintf("The %s dropped an %s", name, label))
		}
		s.audio.Play(CueOverworldMusic)
	}
	s.end(OutcomeVictory)
}

func (s *Session) end(outcome Outcome) {
	s.ended = true
	s.outcome = outcome
	s.buffs.Clear()
	s.repairTimer.Stop()
	s.enemyDelay.Stop()
	s.emit(Event{Kind: EventEnded, Text: outcome.String()})
	s.logger.Info("battle ended",
		zap.String("battle_id", s.id.String()),
		zap.String("enemy", s.enemy.CombatStats().Name),
		zap.Stringer("outcome", outcome),
		zap.Int("turns", s.turns),
		zap.Int("damage_dealt", s.dealt),
		zap.Int("damage_taken", s.taken),
		zap.Int("hp", s.player.HP),
	)
}

// stats is a small helper for the enemy's live stat block.
func (s *Session) enemyStats() *combat.Stats { return s.enemy.CombatStats() }
