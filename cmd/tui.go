package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/parser"
	"github.com/suderio/draconic-arena/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))
)

const welcome = "Welcome to the arena!\nType 'help' for commands, 'exit' to quit."

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type arenaModel struct {
	app         *session.Session
	templates   []string
	areas       []string
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	width       int
	height      int
	showList    bool
}

func newArenaModel(app *session.Session, cat *data.Catalog) arenaModel {
	ti := textinput.New()
	ti.Placeholder = "Enter command (e.g., start goblin_raider group: 2)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false) // We filter manually
	sugList.SetShowHelp(false)

	return arenaModel{
		app:         app,
		templates:   sortedKeys(cat.Templates),
		areas:       sortedKeys(cat.Areas),
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		historyIdx:  -1,
		logContent:  welcome,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *arenaModel) Init() tea.Cmd {
	return textinput.Blink
}

// completions lists what the current input could expand to.
func (m *arenaModel) completions(val string) []string {
	var out []string
	lower := strings.ToLower(val)

	if !strings.Contains(lower, " ") {
		words := append(sortedKeys(parser.Usage), "heavy", "interrupt", "spell", "curse", "sweep", "pass", "exit", "quit")
		for _, c := range words {
			c += " "
			if strings.HasPrefix(c, lower) && len(val) < len(c) {
				out = append(out, c)
			}
		}
		return out
	}

	complete := func(prefix string, ids []string) {
		if !strings.HasPrefix(lower, prefix) {
			return
		}
		rest := lower[len(prefix):]
		if strings.Contains(rest, " ") {
			return
		}
		for _, id := range ids {
			if strings.HasPrefix(id, rest) && rest != id {
				out = append(out, val[:len(prefix)]+id)
			}
		}
	}
	complete("start ", m.templates)
	complete("area ", m.areas)

	// Target completion after "at: ".
	if i := strings.LastIndex(lower, " at: "); i >= 0 {
		rest := lower[i+len(" at: "):]
		base := val[:i+len(" at: ")]
		st := m.app.Manager().Snapshot()
		for _, e := range st.Living() {
			if strings.HasPrefix(e.ID, rest) && rest != e.ID {
				out = append(out, base+e.ID)
			}
		}
	}
	return out
}

func (m *arenaModel) updateSuggestions() {
	var items []list.Item
	if val := m.textInput.Value(); val != "" {
		for _, c := range m.completions(val) {
			items = append(items, suggestion(c))
		}
	}
	m.suggestions.SetItems(items)
	m.showList = len(items) > 0
	if m.showList {
		h := min(len(items), 10)
		if h < 4 {
			h = 4
		}
		m.suggestions.SetHeight(h)
		m.suggestions.ResetSelected()
	}
}

func (m *arenaModel) run(val string) {
	m.logContent += fmt.Sprintf("\n\n> %s\n", val)
	res, err := m.app.Execute(context.Background(), val)
	for _, l := range res.Lines {
		m.logContent += renderLine(l) + "\n"
	}
	if res.Info != "" {
		m.logContent += res.Info + "\n"
	}
	if err != nil {
		m.logContent += fmt.Sprintf("Error: %v", err)
	}
	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *arenaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.showList {
				m.showList = false
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}
			if val != "" {
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()
				m.run(val)
			}

		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderState())
	listH := 0
	if m.showList {
		listH = m.suggestions.Height() + 2
	}
	infoH := lipgloss.Height(infoStyle.Render("Dummy"))

	m.viewport.Height = m.height - (titleH + stateH + 1 + listH + infoH + 11)
	if m.viewport.Height < 4 {
		m.viewport.Height = 4
	}

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

func (m *arenaModel) renderState() string {
	view := "=== Arena ===\n\n" + session.Describe(m.app.Manager().Snapshot())
	return stateBoxStyle.Width(m.width - 4).Render(view)
}

func (m *arenaModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	st := m.app.Manager().Snapshot()
	title := titleStyle.Render(fmt.Sprintf(" Draconic Arena | %s / %s ", st.Area, st.Difficulty))
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", inputArea, autocompleteStyle.Render(m.suggestions.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.renderState(),
		logBox,
		"\n",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)
}

// RunTUI drives app in a full-screen terminal UI until the user quits.
func RunTUI(app *session.Session, cat *data.Catalog) error {
	m := newArenaModel(app, cat)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Fight in the interactive terminal UI",
	Long: `Starts the full-screen arena: the encounter state on top, the combat log
below and a prompt with completion for commands, templates and targets.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := bootstrap(true)
		if err != nil {
			fmt.Printf("Failed to bootstrap game session: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		if err := RunTUI(app.session, app.catalog); err != nil {
			fmt.Printf("Fatal TUI Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
