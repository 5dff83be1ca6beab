/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/suderio/draconic-arena/internal/config"
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/logging"
	"github.com/suderio/draconic-arena/internal/persistence"
	"github.com/suderio/draconic-arena/internal/rng"
	"github.com/suderio/draconic-arena/internal/session"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "draconic-arena",
	Short: "A turn-based arena combat engine",
	Long: `draconic-arena resolves turn-based fights between a player and groups
of enemies. Enemies roll affixes, elite traits and rarity tiers, manage
posture and learn which of their abilities work against you.

Start an interactive fight with:
	draconic-arena tui
or replay many fights headless with:
	draconic-arena simulate --battles 200`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.draconic-arena.yaml)")
	flags.String("difficulty", "normal", "difficulty preset (easy, normal, hard, dynamic)")
	flags.String("area", "wildwood", "area the encounters are drawn from")
	flags.Uint64("seed", 0, "rng seed; 0 picks a random one")
	flags.String("data_dir", "", "directory with catalog overrides (embedded tables are the fallback)")
	flags.String("workspace", "arena", "directory holding journals and the save database")
	flags.String("save_db", "arena.db", "save slot database, relative to the workspace or :memory:")
	flags.String("journal", "", "combat journal file (default is <workspace>/journals/<player>.jsonl)")
	flags.String("log_level", "warn", "log level (debug, info, warn, error)")
	flags.Bool("god_mode", false, "the player cannot drop below 1 HP")
	flags.String("player_name", "Wanderer", "name of the player character")
	flags.Int("player_level", 3, "starting level of the player character")

	for _, name := range []string{
		"difficulty", "area", "seed", "data_dir", "workspace", "save_db",
		"journal", "log_level", "god_mode", "player_name", "player_level",
	} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".draconic-arena")
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// arena bundles a bootstrapped session with the resources it holds open.
type arena struct {
	settings config.Settings
	catalog  *data.Catalog
	logger   *zap.Logger
	session  *session.Session
	journal  *persistence.Journal
	slots    *persistence.Slots
	seed     uint64
}

func (a *arena) Close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	if a.slots != nil {
		_ = a.slots.Close()
	}
	_ = a.logger.Sync()
}

func loadSettings() (config.Settings, error) {
	return config.Load(viper.GetViper())
}

func loadCatalog(settings config.Settings) (*data.Catalog, error) {
	cat, err := data.NewLoader(settings.DataDirs()).LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func newStream(seed uint64) (rng.Stream, uint64) {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rng.NewSeeded(seed), seed
}

// bootstrap resolves the settings and opens everything a session needs.
// Callers own the returned arena and must Close it.
func bootstrap(persist bool) (*arena, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(settings.LogLevel, true)
	if err != nil {
		return nil, err
	}
	a := &arena{settings: settings, logger: logger}

	if a.catalog, err = loadCatalog(settings); err != nil {
		a.Close()
		return nil, err
	}

	if persist {
		ws := persistence.NewWorkspace(settings.Workspace)
		if settings.JournalPath != "" {
			a.journal, err = persistence.OpenJournal(settings.JournalPath)
		} else {
			a.journal, err = ws.OpenJournal(profileName(settings.PlayerName))
		}
		if err != nil {
			a.Close()
			return nil, err
		}
		if settings.SaveDB != "" {
			if a.slots, err = ws.OpenSlots(settings.SaveDB); err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	stream, seed := newStream(settings.Seed)
	a.seed = seed
	opts := session.Options{
		Settings: settings,
		Catalog:  a.catalog,
		RNG:      stream,
		Logger:   logger,
	}
	// Typed nils must not leak into the interfaces.
	if a.journal != nil {
		opts.Journal = a.journal
	}
	if a.slots != nil {
		opts.Slots = a.slots
	}
	if a.session, err = session.New(opts); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to bootstrap game session: %w", err)
	}
	logger.Debug("session ready",
		zap.Uint64("seed", seed),
		zap.String("difficulty", settings.Difficulty),
		zap.String("area", settings.Area),
	)
	return a, nil
}

// profileName turns a player name into a file-safe journal name.
func profileName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
