package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suderio/draconic-arena/internal/data"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Export the built-in catalog tables for editing",
	Long: `Writes the embedded catalog (abilities, affixes, rarities, difficulties,
enemies and status effects) as YAML files into a data directory. Point
--data_dir at that directory and every edited table overrides the built-in one.`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir, _ := cmd.Flags().GetString("data_dir_local")
		if dataDir == "" {
			rootDir, _ := os.Getwd()
			dataDir = filepath.Join(rootDir, "data")
		}
		force, _ := cmd.Flags().GetBool("force")

		// Determine which tables to export
		var targets []string
		for _, table := range data.Tables {
			if sel, _ := cmd.Flags().GetBool(tableFlag(table)); sel {
				targets = append(targets, table)
			}
		}
		if len(targets) == 0 {
			targets = data.Tables
		}

		fmt.Printf("Exporting catalog to: %s\n", dataDir)
		bar := progressbar.Default(int64(len(targets)), "Exporting")

		var skipped []string
		for _, table := range targets {
			wrote, err := data.ExportDefault(dataDir, table, force)
			if err != nil {
				fmt.Printf("\nFailed to export %s: %v\n", table, err)
				os.Exit(1)
			}
			if !wrote {
				skipped = append(skipped, table)
			}
			_ = bar.Add(1)
		}

		if len(skipped) > 0 {
			fmt.Printf("\nKept existing %s (use --force to overwrite)\n", strings.Join(skipped, ", "))
		}
		fmt.Println("\nCatalog export complete!")
	},
}

// tableFlag is the selector flag for a table file, e.g. status-effects.
func tableFlag(table string) string {
	return strings.ReplaceAll(strings.TrimSuffix(table, ".yaml"), "_", "-")
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite tables that already exist")
	initCmd.Flags().String("data_dir_local", "", "Directory to write the tables to (default is ./data)")

	for _, table := range data.Tables {
		initCmd.Flags().Bool(tableFlag(table), false, fmt.Sprintf("Export %s only", table))
	}
}
