/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suderio/draconic-arena/internal/battle"
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/session"
)

// maxSimTurns ends a simulated battle that never resolves.
const maxSimTurns = 200

// simStats aggregates a batch of simulated battles.
type simStats struct {
	Battles   int
	Victories int
	Defeats   int
	Stalled   int
	Turns     int
}

func (s simStats) WinRate() float64 {
	if s.Battles == 0 {
		return 0
	}
	return float64(s.Victories) / float64(s.Battles)
}

func (s simStats) AvgTurns() float64 {
	if s.Battles == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Battles)
}

// autoPlay picks the player's next command: interrupt telegraphed heavies,
// sweep groups and strike single targets.
func autoPlay(st battle.State) string {
	living := st.Living()
	for _, e := range living {
		if e.Intent != nil {
			return fmt.Sprintf("%s at: %s", engine.PlayerInterrupt, e.ID)
		}
	}
	if len(living) > 1 {
		return string(engine.PlayerSweep)
	}
	return string(engine.PlayerBasic)
}

// simulateBattle fights template to completion and returns the outcome and
// the number of turns taken.
func simulateBattle(ctx context.Context, app *session.Session, template string) (string, int, error) {
	if _, err := app.Execute(ctx, "start "+template); err != nil {
		return "", 0, err
	}
	for turn := 1; turn <= maxSimTurns; turn++ {
		res, err := app.Execute(ctx, autoPlay(app.Manager().Snapshot()))
		if err != nil {
			return "", turn, err
		}
		if res.Report != nil && res.Report.Outcome != battle.OutcomeOngoing {
			return res.Report.Outcome, turn, nil
		}
	}
	app.Manager().Reset(nil)
	return battle.OutcomeOngoing, maxSimTurns, nil
}

// runSimulation plays n battles against templates in round-robin order.
// A defeated player is replaced with a fresh one built by fresh.
func runSimulation(ctx context.Context, app *session.Session, templates []string, n int, fresh func() *engine.Player, onBattle func()) (simStats, error) {
	var stats simStats
	if len(templates) == 0 {
		return stats, fmt.Errorf("no templates to simulate")
	}
	for i := 0; i < n; i++ {
		outcome, turns, err := simulateBattle(ctx, app, templates[i%len(templates)])
		if err != nil {
			return stats, err
		}
		stats.Battles++
		stats.Turns += turns
		switch outcome {
		case battle.OutcomeVictory:
			stats.Victories++
		case battle.OutcomeDefeat:
			stats.Defeats++
			app.Manager().Reset(fresh())
		default:
			stats.Stalled++
		}
		if onBattle != nil {
			onBattle()
		}
	}
	return stats, nil
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run automated battles and report the balance",
	Long: `Fights a batch of battles with a simple scripted player against the
templates of the configured area and reports the win rate, average length and
the aggregated combat summary. Use --seed for a reproducible batch.`,
	Run: func(cmd *cobra.Command, args []string) {
		battles, _ := cmd.Flags().GetInt("battles")
		template, _ := cmd.Flags().GetString("template")
		persist, _ := cmd.Flags().GetBool("persist")

		app, err := bootstrap(persist)
		if err != nil {
			fmt.Printf("Failed to bootstrap game session: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		templates := app.catalog.Area(app.settings.Area).Templates
		if template != "" {
			templates = []string{template}
		}

		fresh := func() *engine.Player {
			p := engine.NewPlayer(app.settings.PlayerName, app.settings.PlayerLevel)
			p.GodMode = app.settings.GodMode
			return p
		}

		fmt.Printf("Simulating %d battles in %s on %s (seed %d)\n",
			battles, app.settings.Area, app.settings.Difficulty, app.seed)
		bar := progressbar.Default(int64(battles), "Fighting")
		stats, err := runSimulation(cmd.Context(), app.session, templates, battles, fresh, func() { _ = bar.Add(1) })
		if err != nil {
			fmt.Printf("\nSimulation aborted: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\nBattles:   %d\n", stats.Battles)
		fmt.Printf("Victories: %d (%.1f%%)\n", stats.Victories, stats.WinRate()*100)
		fmt.Printf("Defeats:   %d\n", stats.Defeats)
		if stats.Stalled > 0 {
			fmt.Printf("Stalled:   %d\n", stats.Stalled)
		}
		fmt.Printf("Avg turns: %.2f\n\n", stats.AvgTurns())
		sum := app.session.Summary()
		printSummary(&sum)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntP("battles", "n", 100, "Number of battles to fight")
	simulateCmd.Flags().StringP("template", "t", "", "Fight only this enemy template instead of the area roster")
	simulateCmd.Flags().Bool("persist", false, "Append the simulated events to the journal")
}
