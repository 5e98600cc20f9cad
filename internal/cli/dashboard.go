package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/codelens-hq/pulse/pkg/models"
)

// Dashboard panel indices.
const (
	panelDevelopers = iota
	panelTeam
	panelTimeline
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	states   []models.DeveloperState
	team     models.TeamMetrics
	timeline models.TimelineSummary

	// State.
	loading bool
	err     error
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	states   []models.DeveloperState
	team     models.TeamMetrics
	timeline models.TimelineSummary
	err      error
}

// refreshTickMsg triggers a periodic reload.
type refreshTickMsg time.Time

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusFlowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusProblemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusBlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusIdleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelDevelopers,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadData, refreshTick())
}

func refreshTick() tea.Cmd {
	interval := 30 * time.Second
	if Config != nil && Config.RefreshIntervalSeconds > 0 {
		interval = time.Duration(Config.RefreshIntervalSeconds) * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(loadData, refreshTick())

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.states = msg.states
		m.team = msg.team
		m.timeline = msg.timeline
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Pulse Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	devPanel := m.renderDevelopersPanel()
	teamPanel := m.renderTeamPanel()
	timelinePanel := m.renderTimelinePanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		devPanel = m.applyPanelStyle(panelDevelopers, devPanel, colWidth-4)
		teamPanel = m.applyPanelStyle(panelTeam, teamPanel, colWidth-4)
		timelinePanel = m.applyPanelStyle(panelTimeline, timelinePanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, devPanel, teamPanel, timelinePanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		devPanel = m.applyPanelStyle(panelDevelopers, devPanel, panelWidth)
		teamPanel = m.applyPanelStyle(panelTeam, teamPanel, panelWidth)
		timelinePanel = m.applyPanelStyle(panelTimeline, timelinePanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, devPanel, teamPanel, timelinePanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderDevelopersPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Developers"))
	b.WriteString("\n")

	if len(m.states) == 0 {
		b.WriteString("  No activity today.")
		return b.String()
	}

	for _, s := range m.states {
		label := fmt.Sprintf("  %-16s %s", s.DisplayName, s.Status)
		b.WriteString(styleForActivity(s.Status).Render(label))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    %s\n", s.StatusMessage))
	}

	return b.String()
}

func (m dashboardModel) renderTeamPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Team (24h)"))
	b.WriteString("\n")

	lines := []struct {
		label string
		value string
	}{
		{"Interactions", fmt.Sprintf("%d", m.team.TotalInteractions24h)},
		{"Developers", fmt.Sprintf("%d", m.team.ActiveDevelopers)},
		{"Files", fmt.Sprintf("%d", m.team.FilesInFlight)},
		{"Success", fmt.Sprintf("%.0f%%", m.team.AvgSuccessRate*100)},
	}
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", l.label, l.value))
	}

	return b.String()
}

func (m dashboardModel) renderTimelinePanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Timeline"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Events", m.timeline.TotalEvents))
	b.WriteString(fmt.Sprintf("  %-14s %.1fh\n", "Productive", m.timeline.ProductiveHours))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", "Momentum", m.timeline.OverallMomentum))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", "Collab", m.timeline.CollaborationLevel))
	if len(m.timeline.FocusAreas) > 0 {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", "Focus", strings.Join(m.timeline.FocusAreas, ", ")))
	}

	return b.String()
}

func styleForActivity(status models.ActivityStatus) lipgloss.Style {
	switch status {
	case models.StatusFlow:
		return statusFlowStyle
	case models.StatusProblemSolving:
		return statusProblemStyle
	case models.StatusBlocked:
		return statusBlockedStyle
	case models.StatusIdle:
		return statusIdleStyle
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	result := dataLoadedMsg{}
	if Engine == nil {
		result.err = fmt.Errorf("engine not initialized")
		return result
	}

	// Refresh errors are non-fatal: last known states keep rendering.
	_ = Engine.Refresh(context.Background())

	result.states = Engine.DeveloperStates()
	result.team = Engine.TeamMetrics()
	result.timeline = Engine.TimelineAnalysis("").Summary
	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive team dashboard",
	Long: `Open a terminal dashboard showing live developer states, team metrics,
and the activity timeline summary. Data reloads on the configured refresh
interval or on demand with 'r'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
