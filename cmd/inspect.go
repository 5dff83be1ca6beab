/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/persistence"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the journal summary, save slots or the catalog",
	Long: `Reads the combat journal of the configured player and replays it through
the event projector. With --slots it lists the save database instead and with
--catalog it lists the loaded enemy templates and areas.`,
	Run: func(cmd *cobra.Command, args []string) {
		showSlots, _ := cmd.Flags().GetBool("slots")
		showCatalog, _ := cmd.Flags().GetBool("catalog")

		settings, err := loadSettings()
		if err != nil {
			fmt.Printf("Error reading settings: %v\n", err)
			os.Exit(1)
		}
		ws := persistence.NewWorkspace(settings.Workspace)

		switch {
		case showCatalog:
			cat, err := loadCatalog(settings)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			printCatalog(os.Stdout, cat)

		case showSlots:
			slots, err := ws.OpenSlots(settings.SaveDB)
			if err != nil {
				fmt.Printf("Error opening save database: %v\n", err)
				os.Exit(1)
			}
			defer slots.Close()
			list, err := slots.List(context.Background())
			if err != nil {
				fmt.Printf("Error listing slots: %v\n", err)
				os.Exit(1)
			}
			if len(list) == 0 {
				fmt.Println("No saves yet.")
				return
			}
			for _, info := range list {
				fmt.Printf("%-16s turn %-3d %s\n", info.Name, info.Turn, info.SavedAt.Local().Format("2006-01-02 15:04"))
			}

		default:
			path := settings.JournalPath
			if path == "" {
				path = ws.JournalPath(profileName(settings.PlayerName))
			}
			if _, err := os.Stat(path); err != nil {
				fmt.Printf("No journal at %s\n", path)
				os.Exit(1)
			}
			journal, err := persistence.OpenJournal(path)
			if err != nil {
				fmt.Printf("Error opening journal: %v\n", err)
				os.Exit(1)
			}
			defer journal.Close()

			events, err := journal.Load()
			if err != nil {
				fmt.Printf("Error reading journal: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Processed %d events from %s\n\n", len(events), path)
			printSummary(engine.NewProjector().Build(events))
		}
	},
}

func printSummary(s *engine.Summary) {
	writeSummary(os.Stdout, s)
}

func writeSummary(w io.Writer, s *engine.Summary) {
	fmt.Fprintf(w, "Battles: %d  Victories: %d  Defeats: %d\n", s.Battles, s.Victories, s.Defeats)
	fmt.Fprintf(w, "Kills: %d  XP: %d  Gold: %d\n", s.Kills, s.XP, s.Gold)
	fmt.Fprintf(w, "Damage dealt: %d  taken: %d  crits: %d  posture breaks: %d\n",
		s.DamageDealt, s.DamageTaken, s.Crits, s.PostureBreak)
	if len(s.Loot) > 0 {
		fmt.Fprintf(w, "Loot: %s\n", strings.Join(s.Loot, ", "))
	}
	writeCounts(w, "Enemy abilities", s.AbilityUses)
	writeCounts(w, "Affix triggers", s.AffixFires)
	if s.LastOutcome != "" {
		fmt.Fprintf(w, "Last battle: %s\n", s.LastOutcome)
	}
}

func writeCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range sortedKeys(counts) {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}

func printCatalog(w io.Writer, cat *data.Catalog) {
	fmt.Fprintln(w, "Areas:")
	for _, id := range sortedKeys(cat.Areas) {
		a := cat.Areas[id]
		fmt.Fprintf(w, "  %-12s %s: %s\n", id, a.Name, strings.Join(a.Templates, ", "))
	}
	fmt.Fprintln(w, "Templates:")
	for _, id := range sortedKeys(cat.Templates) {
		t := cat.Templates[id]
		boss := ""
		if t.IsBoss {
			boss = " [boss]"
		}
		fmt.Fprintf(w, "  %-16s %s%s\n", id, t.Name, boss)
	}
	affixes := make([]string, 0, len(cat.Affixes))
	for _, a := range cat.Affixes {
		affixes = append(affixes, a.ID)
	}
	sort.Strings(affixes)
	fmt.Fprintf(w, "Affixes: %s\n", strings.Join(affixes, ", "))
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("slots", false, "List the save slots")
	inspectCmd.Flags().Bool("catalog", false, "List enemy templates and areas")
}
