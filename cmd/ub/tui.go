package main

import (
	"fmt"
	"strings"

	"unibase/internal/game"
	"unibase/internal/host"
	"unibase/internal/logbook"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tuiLogLines = 8

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0052FF")).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3C8AFF")).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0052FF"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	fundStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

type keyMap struct {
	Post  key.Binding
	Pitch key.Binding
	Up    key.Binding
	Down  key.Binding
	Buy   key.Binding
	IPO   key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Post, k.Pitch, k.Buy, k.IPO, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Post, k.Pitch, k.IPO},
		{k.Up, k.Down, k.Buy},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Post:  key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p/space", "basepost")),
	Pitch: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "pitch investors")),
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev unit")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next unit")),
	Buy:   key.NewBinding(key.WithKeys("enter", "b"), key.WithHelp("enter/b", "buy unit")),
	IPO:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "IPO")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type viewMsg game.View

type outcomeMsg struct {
	outcome game.Outcome
	err     error
}

type playModel struct {
	game   commander
	book   *logbook.Book
	view   game.View
	cursor int
	help   help.Model
	width  int
}

func newPlayModel(g commander, book *logbook.Book) playModel {
	return playModel{game: g, book: book, view: g.View(), help: help.New()}
}

func runTUI(r *host.Runner, book *logbook.Book) error {
	p := tea.NewProgram(newPlayModel(r, book), tea.WithAltScreen())
	cancel := r.Subscribe(func(v game.View) {
		p.Send(viewMsg(v))
	})
	defer cancel()
	_, err := p.Run()
	return err
}

func (m playModel) Init() tea.Cmd {
	return nil
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case viewMsg:
		m.view = game.View(msg)
	case outcomeMsg:
		m.view = m.game.View()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(game.Units)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Post):
			return m, m.run(m.game.ManualPost)
		case key.Matches(msg, keys.Pitch):
			return m, m.run(m.game.PitchInvestors)
		case key.Matches(msg, keys.Buy):
			id := game.Units[m.cursor].ID
			return m, m.run(func() (game.Outcome, error) { return m.game.PurchaseUnit(id) })
		case key.Matches(msg, keys.IPO):
			return m, m.run(m.game.Prestige)
		}
	}
	return m, nil
}

// run executes a command off the update loop; the host notifies observers
// synchronously and those observers send back into the program.
func (m playModel) run(fn func() (game.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn()
		return outcomeMsg{outcome: out, err: err}
	}
}

func (m playModel) View() string {
	v := m.view
	var b strings.Builder

	b.WriteString(titleStyle.Render("Universal Base App"))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  %s · prestige %d", v.Stage.Name, v.PrestigeLevel)))
	b.WriteString("\n")

	stats := []string{
		stat("Users", game.FormatNumber(v.Users)),
		stat("Fund", game.FormatNumber(v.Fund)),
		stat("Users/sec", game.FormatNumber(v.UsersPerSec)),
		stat("Growth", fmt.Sprintf("x%.2f", v.GrowthBonus)),
		stat("Market share", fmt.Sprintf("%.1f%%", v.MarketShare)),
		stat("Competitor", game.FormatNumber(v.CompetitorUsers)),
	}
	if v.CanIPO {
		stats = append(stats, readyStyle.Render("IPO ready: press i"))
	} else {
		stats = append(stats, lockedStyle.Render(fmt.Sprintf("IPO at %s users + %s Fund",
			game.FormatNumber(game.IPOUsersFloor), game.FormatNumber(game.IPOFundFloor))))
	}
	b.WriteString(panelStyle.Render(strings.Join(stats, "\n")))
	b.WriteString("\n")

	var units []string
	for i, u := range v.Units {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%-16s x%-4d %8s Fund  +%s/s", u.Name, u.Owned, game.FormatNumber(u.Cost), game.FormatNumber(u.BaseRate))
		switch u.Status {
		case game.UnitAffordable:
			line = readyStyle.Render(line)
		case game.UnitUnaffordable:
			line = pendingStyle.Render(line)
		default:
			line = lockedStyle.Render(fmt.Sprintf("%-16s unlocks at %s Fund", u.Name, game.FormatNumber(u.UnlockFund)))
		}
		units = append(units, prefix+line)
	}
	b.WriteString(panelStyle.Render(strings.Join(units, "\n")))
	b.WriteString("\n")

	if v.SectorIndex >= 0 && v.SectorIndex < len(v.Sectors) {
		sec := v.Sectors[v.SectorIndex]
		b.WriteString(labelStyle.Render("Sector: "))
		b.WriteString(valueStyle.Render(sec.Name))
		b.WriteString(labelStyle.Render(" · " + sec.Description))
		b.WriteString("\n")
	}

	var lines []string
	for _, e := range m.book.Tail(tuiLogLines) {
		line := e.Line()
		switch e.Tag {
		case game.TagWarn:
			line = warnStyle.Render(line)
		case game.TagFund, game.TagReset:
			line = fundStyle.Render(line)
		}
		lines = append(lines, line)
	}
	b.WriteString(panelStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func stat(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-13s", label)) + valueStyle.Render(value)
}
