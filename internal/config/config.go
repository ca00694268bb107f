// Package config provides Viper-based configuration loading for the battle runtime.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for battle report storage.
type DatabaseConfig struct {
	// Enabled turns report persistence on; when false no connection is attempted.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the YAML content directories.
type ContentConfig struct {
	// EnemiesDir holds one enemy template per *.yaml file.
	EnemiesDir string `mapstructure:"enemies_dir"`
	// SpecialsDir holds one special move definition per *.yaml file.
	SpecialsDir string `mapstructure:"specials_dir"`
	// Watch reloads enemy templates when files in EnemiesDir change.
	Watch bool `mapstructure:"watch"`
}

// ScriptingConfig configures the Lua autopilot.
type ScriptingConfig struct {
	// Autopilot is the path to a Lua policy script; empty uses the built-in policy.
	Autopilot string `mapstructure:"autopilot"`
	// InstructionLimit caps opcodes per hook call; 0 uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// AttackConfig tunes the rotating-pointer attack QTE. Angles are in degrees.
type AttackConfig struct {
	StartAngle float64 `mapstructure:"start_angle"`
	Sweep      float64 `mapstructure:"sweep"`
	Speed      float64 `mapstructure:"speed"`
	SpeedStep  float64 `mapstructure:"speed_step"`
	ZoneStart  float64 `mapstructure:"zone_start"`
	ZoneWidth  float64 `mapstructure:"zone_width"`
}

// DodgeConfig tunes the boss dodge QTE. Distances are in bar units.
type DodgeConfig struct {
	Rounds     int           `mapstructure:"rounds"`
	StartDelay time.Duration `mapstructure:"start_delay"`
	BarWidth   float64       `mapstructure:"bar_width"`
	Traverse   time.Duration `mapstructure:"traverse"`
	Zone1      float64       `mapstructure:"zone1"`
	Zone2      float64       `mapstructure:"zone2"`
	Zone3      float64       `mapstructure:"zone3"`
}

// BattleConfig holds the timing and QTE tuning for the battle state machine.
type BattleConfig struct {
	EnemyActionDelay time.Duration `mapstructure:"enemy_action_delay"`
	EnemyWaitDelay   time.Duration `mapstructure:"enemy_wait_delay"`
	PopupDuration    time.Duration `mapstructure:"popup_duration"`
	BarRate          float64       `mapstructure:"bar_rate"`
	RepairDelay      time.Duration `mapstructure:"repair_delay"`
	RepairAmount     int           `mapstructure:"repair_amount"`
	// SpeedInitiative lets a faster enemy act first.
	SpeedInitiative bool         `mapstructure:"speed_initiative"`
	Attack          AttackConfig `mapstructure:"attack"`
	Dodge           DodgeConfig  `mapstructure:"dodge"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Battle    BattleConfig    `mapstructure:"battle"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := c.Battle.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.EnemiesDir == "" {
		errs = append(errs, "content.enemies_dir must not be empty")
	}
	if c.SpecialsDir == "" {
		errs = append(errs, "content.specials_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Validate checks the battle tuning invariants.
//
// Postcondition: Returns nil iff every delay is non-negative, every rate and
// size is positive, and the dodge zones are strictly nested inside the bar.
func (b BattleConfig) Validate() error {
	var errs []string
	if b.EnemyActionDelay < 0 {
		errs = append(errs, "battle.enemy_action_delay must not be negative")
	}
	if b.EnemyWaitDelay < 0 {
		errs = append(errs, "battle.enemy_wait_delay must not be negative")
	}
	if b.PopupDuration < 0 {
		errs = append(errs, "battle.popup_duration must not be negative")
	}
	if b.BarRate <= 0 {
		errs = append(errs, fmt.Sprintf("battle.bar_rate must be > 0, got %v", b.BarRate))
	}
	if b.RepairDelay < 0 {
		errs = append(errs, "battle.repair_delay must not be negative")
	}
	if b.RepairAmount < 0 {
		errs = append(errs, fmt.Sprintf("battle.repair_amount must be >= 0, got %d", b.RepairAmount))
	}
	if b.Attack.Sweep <= 0 {
		errs = append(errs, "battle.attack.sweep must be > 0")
	}
	if b.Attack.Speed <= 0 {
		errs = append(errs, "battle.attack.speed must be > 0")
	}
	if b.Attack.SpeedStep < 0 {
		errs = append(errs, "battle.attack.speed_step must not be negative")
	}
	if b.Attack.ZoneWidth <= 0 || b.Attack.ZoneWidth >= 360 {
		errs = append(errs, fmt.Sprintf("battle.attack.zone_width must be in (0, 360), got %v", b.Attack.ZoneWidth))
	}
	if b.Dodge.Rounds < 1 {
		errs = append(errs, fmt.Sprintf("battle.dodge.rounds must be >= 1, got %d", b.Dodge.Rounds))
	}
	if b.Dodge.StartDelay < 0 {
		errs = append(errs, "battle.dodge.start_delay must not be negative")
	}
	if b.Dodge.Traverse <= 0 {
		errs = append(errs, "battle.dodge.traverse must be > 0")
	}
	if !(0 < b.Dodge.Zone1 && b.Dodge.Zone1 < b.Dodge.Zone2 && b.Dodge.Zone2 < b.Dodge.Zone3) {
		errs = append(errs, "battle.dodge zones must satisfy 0 < zone1 < zone2 < zone3")
	}
	if b.Dodge.BarWidth/2 <= b.Dodge.Zone3 {
		errs = append(errs, fmt.Sprintf("battle.dodge.bar_width must exceed 2*zone3 (%v), got %v", 2*b.Dodge.Zone3, b.Dodge.BarWidth))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// DefaultBattle returns the stock battle tuning.
//
// Postcondition: The returned config passes Validate.
func DefaultBattle() BattleConfig {
	return BattleConfig{
		EnemyActionDelay: 2 * time.Second,
		EnemyWaitDelay:   1500 * time.Millisecond,
		PopupDuration:    2 * time.Second,
		BarRate:          3.0,
		RepairDelay:      1500 * time.Millisecond,
		RepairAmount:     10,
		Attack: AttackConfig{
			StartAngle: 60,
			Sweep:      360,
			Speed:      330,
			SpeedStep:  50,
			ZoneStart:  330,
			ZoneWidth:  65,
		},
		Dodge: DodgeConfig{
			Rounds:     4,
			StartDelay: 500 * time.Millisecond,
			BarWidth:   260,
			Traverse:   800 * time.Millisecond,
			Zone1:      16.5,
			Zone2:      47.5,
			Zone3:      109.5,
		},
	}
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch loads path and then re-reads it whenever the file changes, calling
// onChange with each configuration that validates. Invalid edits are reported
// to onError and otherwise ignored so the previous configuration stays live.
//
// Precondition: onChange must not be nil.
// Postcondition: Returns the initial Config or a non-nil error.
func Watch(path string, onChange func(Config), onError func(error)) (Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadFromViper(v)
	if err != nil {
		return Config{}, err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		next, err := LoadFromViper(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reloading %q: %w", e.Name, err))
			}
			return
		}
		onChange(next)
	})
	v.WatchConfig()
	return cfg, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with REDARCHON_ prefix
	v.SetEnvPrefix("REDARCHON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "redarchon")
	v.SetDefault("database.password", "redarchon")
	v.SetDefault("database.name", "redarchon")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("content.enemies_dir", "content/enemies")
	v.SetDefault("content.specials_dir", "content/specials")
	v.SetDefault("content.watch", false)

	v.SetDefault("scripting.autopilot", "")
	v.SetDefault("scripting.instruction_limit", 0)

	b := DefaultBattle()
	v.SetDefault("battle.enemy_action_delay", b.EnemyActionDelay.String())
	v.SetDefault("battle.enemy_wait_delay", b.EnemyWaitDelay.String())
	v.SetDefault("battle.popup_duration", b.PopupDuration.String())
	v.SetDefault("battle.bar_rate", b.BarRate)
	v.SetDefault("battle.repair_delay", b.RepairDelay.String())
	v.SetDefault("battle.repair_amount", b.RepairAmount)
	v.SetDefault("battle.speed_initiative", b.SpeedInitiative)
	v.SetDefault("battle.attack.start_angle", b.Attack.StartAngle)
	v.SetDefault("battle.attack.sweep", b.Attack.Sweep)
	v.SetDefault("battle.attack.speed", b.Attack.Speed)
	v.SetDefault("battle.attack.speed_step", b.Attack.SpeedStep)
	v.SetDefault("battle.attack.zone_start", b.Attack.ZoneStart)
	v.SetDefault("battle.attack.zone_width", b.Attack.ZoneWidth)
	v.SetDefault("battle.dodge.rounds", b.Dodge.Rounds)
	v.SetDefault("battle.dodge.start_delay", b.Dodge.StartDelay.String())
	v.SetDefault("battle.dodge.bar_width", b.Dodge.BarWidth)
	v.SetDefault("battle.dodge.traverse", b.Dodge.Traverse.String())
	v.SetDefault("battle.dodge.zone1", b.Dodge.Zone1)
	v.SetDefault("battle.dodge.zone2", b.Dodge.Zone2)
	v.SetDefault("battle.dodge.zone3", b.Dodge.Zone3)
}
