package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dealdesk/dealdesk/internal/auth"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

// DashboardModel shows the pipeline aggregates: the caller's own numbers
// for agents, portal-wide numbers for admins.
type DashboardModel struct {
	CommonModel
	txService *transaction.Service
	caller    auth.Identity

	stats      *transaction.Stats
	adminStats *transaction.AdminStats

	loading bool
	err     error
}

func NewDashboardModel(txSvc *transaction.Service, caller auth.Identity) DashboardModel {
	return DashboardModel{
		txService: txSvc,
		caller:    caller,
		loading:   true,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadStatsCmd()
}

type loadStatsMsg struct {
	stats      *transaction.Stats
	adminStats *transaction.AdminStats
	err        error
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadStatsMsg:
		m.loading = false
		m.err = msg.err
		m.stats = msg.stats
		m.adminStats = msg.adminStats

		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadStatsCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) loadStatsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if m.caller.IsAdmin() {
			adminStats, err := m.txService.AdminStats(ctx, m.caller)
			return loadStatsMsg{adminStats: adminStats, err: err}
		}

		stats, err := m.txService.Stats(ctx, m.caller)

		return loadStatsMsg{stats: stats, err: err}
	}
}

var statBoxStyle = lipgloss.NewStyle().
	Padding(0, 2).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Align(lipgloss.Center)

func statBox(label string, value string) string {
	return statBoxStyle.Render(
		lipgloss.NewStyle().Bold(true).Render(value) + "\n" + label,
	)
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var boxes []string

	switch {
	case m.adminStats != nil:
		s := m.adminStats
		boxes = []string{
			statBox("Total", fmt.Sprintf("%d", s.Total)),
			statBox("Pending Review", fmt.Sprintf("%d", s.PendingReview)),
			statBox("Pending Approval", fmt.Sprintf("%d", s.PendingApproval)),
			statBox("Approved", fmt.Sprintf("%d", s.Approved)),
			statBox("Rejected", fmt.Sprintf("%d", s.Rejected)),
			statBox("Approved Value", FormatMoney(s.TotalValue)),
			statBox("Commission", FormatMoney(s.TotalCommission)),
		}
	case m.stats != nil:
		s := m.stats
		boxes = []string{
			statBox("Total", fmt.Sprintf("%d", s.Total)),
			statBox("Draft", fmt.Sprintf("%d", s.Draft)),
			statBox("In Review", fmt.Sprintf("%d", s.Pending)),
			statBox("Approved", fmt.Sprintf("%d", s.Approved)),
			statBox("Rejected", fmt.Sprintf("%d", s.Rejected)),
			statBox("Commission", FormatMoney(s.TotalCommission)),
		}
	default:
		return lipgloss.NewStyle().Padding(2).Render("No data.")
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...),
	)
}
