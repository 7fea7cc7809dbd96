package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/dealdesk/dealdesk/cmd/tui/internal/view"
	"github.com/dealdesk/dealdesk/internal/auth"
	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/database"
	"github.com/dealdesk/dealdesk/internal/transaction"
	txStore "github.com/dealdesk/dealdesk/internal/transaction/store"
)

type model struct {
	txService *transaction.Service
	caller    auth.Identity

	currentView View

	wizardView       view.WizardModel
	transactionsView view.TransactionsModel
	dashboardView    view.DashboardModel
}

type View int

const (
	ViewMenu         View = 0
	ViewWizard       View = 1
	ViewTransactions View = 2
	ViewDashboard    View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))

	caller := auth.Identity{UserID: cfg.TUI.AgentID, Role: auth.RoleAgent}
	if cfg.TUI.Admin {
		caller.Role = auth.RoleAdmin
	}

	return model{
		txService:        txSvc,
		caller:           caller,
		currentView:      ViewMenu,
		wizardView:       view.NewWizardModel(txSvc, caller),
		transactionsView: view.NewTransactionsModel(txSvc, caller),
		dashboardView:    view.NewDashboardModel(txSvc, caller),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewWizard
				m.wizardView = view.NewWizardModel(m.txService, m.caller)

				return m, m.wizardView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.txService, m.caller)

				return m, m.transactionsView.Init()
			case "3":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.txService, m.caller)

				return m, m.dashboardView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewWizard:
		var newModel tea.Model
		newModel, cmd = m.wizardView.Update(msg)
		m.wizardView = newModel.(view.WizardModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"DealDesk TUI\n\n" +
				"1. New Transaction\n" +
				"2. Browse Transactions\n" +
				"3. Dashboard\n\n" +
				"q. Quit",
		)
	case ViewWizard:
		return m.wizardView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
