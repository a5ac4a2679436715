package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#005FFF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#005FFF"))

	checkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	teamsView view = iota
	filtersView
	graphStatsView
)

var sources = []string{"combined", "batch", "online"}

type keyMap struct {
	Tab    key.Binding
	Enter  key.Binding
	Space  key.Binding
	Up     key.Binding
	Down   key.Binding
	Source key.Binding
	Apply  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Space: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle team"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
	Source: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle source"),
	),
	Apply: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "project graph"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Space, k.Apply, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Space, k.Enter},
		{k.Up, k.Down, k.Source},
		{k.Apply, k.Quit},
	}
}

// API wire shapes

type teamInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	EntityCount int    `json:"entityCount"`
}

type graphStats struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
	Skipped   int `json:"skipped"`
	Dangling  int `json:"dangling"`
}

// Messages

type teamsMsg []teamInfo

type graphMsg graphStats

type appliedMsg string

type errMsg struct{ err error }

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) fetchTeams() tea.Cmd {
	return func() tea.Msg {
		resp, err := c.http.Get(c.baseURL + "/api/teams")
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()

		var body struct {
			Available []teamInfo `json:"available"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return errMsg{err}
		}
		return teamsMsg(body.Available)
	}
}

func (c *apiClient) setTeams(teams []string) tea.Cmd {
	return func() tea.Msg {
		payload, _ := json.Marshal(map[string]any{"teams": teams})
		resp, err := c.http.Post(c.baseURL+"/api/teams", "application/json", bytes.NewReader(payload))
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return errMsg{fmt.Errorf("set teams: status %d", resp.StatusCode)}
		}
		return appliedMsg(fmt.Sprintf("%d team(s) selected", len(teams)))
	}
}

func (c *apiClient) projectGraph(teams []string, source, search, entityType string) tea.Cmd {
	return func() tea.Msg {
		payload, _ := json.Marshal(map[string]any{
			"selectedTeams": teams,
			"dataSource":    source,
			"searchTerm":    search,
			"entityType":    entityType,
		})
		resp, err := c.http.Post(c.baseURL+"/api/graph", "application/json", bytes.NewReader(payload))
		if err != nil {
			return errMsg{err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			var apiErr struct {
				Error string `json:"error"`
			}
			json.NewDecoder(resp.Body).Decode(&apiErr)
			if apiErr.Error != "" {
				return errMsg{fmt.Errorf("%s", apiErr.Error)}
			}
			return errMsg{fmt.Errorf("graph request failed: status %d", resp.StatusCode)}
		}

		var body struct {
			Stats graphStats `json:"stats"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return errMsg{err}
		}
		return graphMsg(body.Stats)
	}
}

type model struct {
	api         *apiClient
	currentView view
	teams       []teamInfo
	checked     map[string]bool
	cursor      int
	sourceIdx   int
	searchInput textinput.Model
	typeInput   textinput.Model
	stats       *graphStats
	help        help.Model
	keys        keyMap
	width       int
	message     string
	messageErr  bool
}

func initialModel(api *apiClient) model {
	search := textinput.New()
	search.Placeholder = "search term"
	search.CharLimit = 256
	search.Width = 40

	entityType := textinput.New()
	entityType.Placeholder = "entity type (empty = all)"
	entityType.CharLimit = 100
	entityType.Width = 40

	return model{
		api:         api,
		currentView: teamsView,
		checked:     make(map[string]bool),
		searchInput: search,
		typeInput:   entityType,
		help:        help.New(),
		keys:        keys,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.api.fetchTeams())
}

func (m model) selectedTeams() []string {
	teams := make([]string, 0, len(m.checked))
	for _, t := range m.teams {
		if m.checked[t.Name] {
			teams = append(teams, t.Name)
		}
	}
	return teams
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case teamsMsg:
		m.teams = msg
		if m.cursor >= len(m.teams) {
			m.cursor = 0
		}

	case graphMsg:
		stats := graphStats(msg)
		m.stats = &stats
		m.currentView = graphStatsView
		m.message = fmt.Sprintf("Projected %d nodes and %d edges", stats.NodeCount, stats.EdgeCount)
		m.messageErr = false

	case appliedMsg:
		m.message = string(msg)
		m.messageErr = false

	case errMsg:
		m.message = msg.err.Error()
		m.messageErr = true

	case tea.KeyMsg:
		inputFocused := m.searchInput.Focused() || m.typeInput.Focused()

		switch {
		case key.Matches(msg, m.keys.Quit) && !inputFocused:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % 3
			m.searchInput.Blur()
			m.typeInput.Blur()
			if m.currentView == filtersView {
				m.searchInput.Focus()
			}

		case key.Matches(msg, m.keys.Up) && m.currentView == teamsView:
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down) && m.currentView == teamsView:
			if m.cursor < len(m.teams)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Space) && m.currentView == teamsView:
			if m.cursor < len(m.teams) {
				name := m.teams[m.cursor].Name
				m.checked[name] = !m.checked[name]
			}

		case key.Matches(msg, m.keys.Enter) && m.currentView == teamsView:
			return m, m.api.setTeams(m.selectedTeams())

		case key.Matches(msg, m.keys.Enter) && m.currentView == filtersView:
			if m.searchInput.Focused() {
				m.searchInput.Blur()
				m.typeInput.Focus()
			} else {
				m.typeInput.Blur()
				return m, m.projectCmd()
			}

		case key.Matches(msg, m.keys.Source) && !inputFocused:
			m.sourceIdx = (m.sourceIdx + 1) % len(sources)

		case key.Matches(msg, m.keys.Apply) && !inputFocused:
			return m, m.projectCmd()
		}
	}

	if m.currentView == filtersView {
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
		m.typeInput, cmd = m.typeInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) projectCmd() tea.Cmd {
	return m.api.projectGraph(
		m.selectedTeams(),
		sources[m.sourceIdx],
		m.searchInput.Value(),
		m.typeInput.Value(),
	)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Knowledge Viewer Control Panel"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case teamsView:
		s.WriteString(m.renderTeams())
	case filtersView:
		s.WriteString(m.renderFilters())
	case graphStatsView:
		s.WriteString(m.renderStats())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("error: " + m.message))
		} else {
			s.WriteString(successStyle.Render(m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Teams", "Filters", "Graph"}
	rendered := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderTeams() string {
	var s strings.Builder
	if len(m.teams) == 0 {
		s.WriteString("No teams available yet.\n")
		s.WriteString(helpStyle.Render("Waiting for the viewer to load a snapshot"))
		return contentStyle.Render(s.String())
	}

	for i, t := range m.teams {
		mark := "[ ]"
		if m.checked[t.Name] {
			mark = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s (%d entities)", mark, t.DisplayName, t.EntityCount)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("space toggles, enter saves the selection"))
	return contentStyle.Render(s.String())
}

func (m model) renderFilters() string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("Data source: %s  (press s to cycle)\n\n", sources[m.sourceIdx]))
	s.WriteString("Search:\n")
	s.WriteString(m.searchInput.View())
	s.WriteString("\n\nEntity type:\n")
	s.WriteString(m.typeInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter moves between fields, a projects the graph"))

	return contentStyle.Render(s.String())
}

func (m model) renderStats() string {
	if m.stats == nil {
		return contentStyle.Render("No projection yet. Press a to project the current filters.")
	}

	content := fmt.Sprintf(`Last projection
Nodes:     %d
Edges:     %d
Skipped:   %d
Dangling:  %d

Teams:     %s
Source:    %s`,
		m.stats.NodeCount,
		m.stats.EdgeCount,
		m.stats.Skipped,
		m.stats.Dangling,
		strings.Join(m.selectedTeams(), ", "),
		sources[m.sourceIdx],
	)

	return contentStyle.Render(boxStyle.Render(content))
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Viewer API base URL")
	flag.Parse()

	p := tea.NewProgram(initialModel(newAPIClient(*serverURL)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
