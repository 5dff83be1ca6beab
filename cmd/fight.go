/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/suderio/draconic-arena/internal/logging"
	"github.com/suderio/draconic-arena/internal/session"
)

var channelStyles = map[string]lipgloss.Style{
	logging.ChannelCombat: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	logging.ChannelDanger: lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94")),
	logging.ChannelLoot:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E8C547")),
	logging.ChannelSystem: lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Italic(true),
}

// renderLine colors a combat log line by its channel.
func renderLine(l logging.Line) string {
	if st, ok := channelStyles[l.Channel]; ok {
		return st.Render(l.Text)
	}
	return l.Text
}

var fightCmd = &cobra.Command{
	Use:   "fight",
	Short: "Fight in a plain line-by-line shell",
	Long: `Reads one command per line from stdin and prints what happened.
Useful over pipes and in terminals without alternate screen support.
Usage:
	> start goblin_raider group: 2
	> heavy at: goblin_raider-1
	> a 2`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := bootstrap(true)
		if err != nil {
			fmt.Printf("Failed to bootstrap game session: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		fmt.Printf("Arena ready (seed %d). Type 'help' for commands, 'exit' to leave.\n\n", app.seed)
		if err := runShell(cmd.Context(), app.session, os.Stdin, os.Stdout); err != nil {
			fmt.Printf("Shell error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runShell feeds every input line to the session until EOF or exit.
func runShell(ctx context.Context, app *session.Session, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		if line != "" {
			res, err := app.Execute(ctx, line)
			for _, l := range res.Lines {
				fmt.Fprintln(out, renderLine(l))
			}
			if res.Info != "" {
				fmt.Fprintln(out, res.Info)
			}
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(fightCmd)
}
