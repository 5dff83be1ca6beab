// Package config resolves the runtime settings once per process.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g. ARENA_DIFFICULTY.
const EnvPrefix = "ARENA"

// Settings are the knobs an encounter is started with.
type Settings struct {
	Difficulty  string `mapstructure:"difficulty"`
	Area        string `mapstructure:"area"`
	Seed        uint64 `mapstructure:"seed"`
	DataDir     string `mapstructure:"data_dir"`
	Workspace   string `mapstructure:"workspace"`
	SaveDB      string `mapstructure:"save_db"`
	JournalPath string `mapstructure:"journal"`
	LogLevel    string `mapstructure:"log_level"`
	GodMode     bool   `mapstructure:"god_mode"`
	PlayerName  string `mapstructure:"player_name"`
	PlayerLevel int    `mapstructure:"player_level"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("difficulty", "normal")
	v.SetDefault("area", "wildwood")
	v.SetDefault("seed", 0)
	v.SetDefault("data_dir", "")
	v.SetDefault("workspace", "arena")
	v.SetDefault("save_db", "arena.db")
	v.SetDefault("journal", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("god_mode", false)
	v.SetDefault("player_name", "Wanderer")
	v.SetDefault("player_level", 3)
}

// BindEnv wires ARENA_* environment variables into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Difficulty = strings.ToLower(strings.TrimSpace(s.Difficulty))
	if s.Difficulty == "" {
		s.Difficulty = "normal"
	}
	if s.PlayerLevel < 1 {
		return s, fmt.Errorf("player_level must be at least 1, got %d", s.PlayerLevel)
	}
	if s.LogLevel == "" {
		s.LogLevel = "warn"
	}
	return s, nil
}

// DataDirs is the catalog search path implied by the settings.
func (s Settings) DataDirs() []string {
	if s.DataDir == "" {
		return nil
	}
	return []string{s.DataDir}
}
