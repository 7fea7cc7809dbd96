package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk/internal/auth"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateStatus
	txStateDetails
)

const pageSize = 15

// statusFilters index 0 means no filter.
var statusFilters = append([]transaction.Status{""}, transaction.Statuses...)

// TransactionsModel browses transactions with status filtering and paging.
// Agents see their own deals and can move drafts into review or delete
// them; admins see every deal and can move it through the review workflow.
type TransactionsModel struct {
	CommonModel
	txService *transaction.Service
	caller    auth.Identity

	state txState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form

	statusFilterIdx int
	page            int
	hasMore         bool
	totalCount      int

	details *transaction.Details

	loading bool
	err     error
	status  string

	// Status form bindings
	formStatus string
	formNotes  string
}

func NewTransactionsModel(txSvc *transaction.Service, caller auth.Identity) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Status", Width: 16},
		{Title: "Property", Width: 28},
		{Title: "Client", Width: 20},
		{Title: "Price", Width: 14},
		{Title: "Commission", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return TransactionsModel{
		txService: txSvc,
		caller:    caller,
		table:     t,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }
func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateStatus:
		return "Navigate form | Esc: cancel"
	case txStateDetails:
		return "Esc: back to list"
	}

	return "Esc: back | Enter: details | u: update status | x: delete | s: status filter | n/p: page | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.listing.Transactions
		m.hasMore = msg.listing.HasMore
		m.totalCount = msg.listing.TotalCount
		m.refreshTable()

		return m, nil

	case loadDetailsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.details = msg.details
		m.state = txStateDetails

		return m, nil

	case txMutatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.note
		}

		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case txStateBrowse:
		return m.updateBrowse(msg)
	case txStateStatus:
		return m.updateStatusForm(msg)
	case txStateDetails:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = txStateBrowse
			m.details = nil
		}

		return m, nil
	}

	return m, nil
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "enter":
			if tx := m.selected(); tx != nil {
				m.loading = true
				return m, m.loadDetailsCmd(tx.ID)
			}
		case "u":
			return m.enterStatusMode()
		case "x":
			if tx := m.selected(); tx != nil {
				m.status = "Deleting..."
				return m, m.deleteCmd(tx.ID)
			}
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.page = 0

			return m, m.loadTxsCmd()
		case "n":
			if m.hasMore {
				m.page++
				return m, m.loadTxsCmd()
			}
		case "p":
			if m.page > 0 {
				m.page--
				return m, m.loadTxsCmd()
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) enterStatusMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formStatus = string(tx.Status)
	m.formNotes = ""

	var statusField huh.Field
	if m.caller.IsAdmin() {
		options := make([]huh.Option[string], 0, len(transaction.Statuses))
		for _, s := range transaction.Statuses {
			options = append(options, huh.NewOption(string(s), string(s)))
		}

		statusField = huh.NewSelect[string]().
			Key("status").
			Title("New Status").
			Options(options...).
			Value(&m.formStatus)
	} else {
		// Agents may only park a deal back in draft or hand it to review.
		statusField = huh.NewSelect[string]().
			Key("status").
			Title("New Status").
			Options(
				huh.NewOption("Draft", string(transaction.StatusDraft)),
				huh.NewOption("Submit for review", string(transaction.StatusPendingReview)),
			).
			Value(&m.formStatus)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			statusField,
			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes).
				Validate(func(s string) error {
					if m.caller.IsAdmin() && strings.TrimSpace(s) == "" {
						return fmt.Errorf("notes are required for a review decision")
					}

					return nil
				}),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = txStateStatus
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) updateStatusForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.updateStatusCmd()
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == txStateDetails && m.details != nil {
		return m.detailsView()
	}

	filterLabel := "All"
	if f := statusFilters[m.statusFilterIdx]; f != "" {
		filterLabel = string(f)
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | Page %d (%d total)",
		activeStyle(filterLabel),
		m.page+1,
		m.totalCount,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == txStateStatus && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(52).
			Render("Update Status\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m TransactionsModel) detailsView() string {
	d := m.details
	tx := d.Transaction

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s on %s  [%s]\n", tx.MarketType, tx.Type, FormatDate(tx.Date), tx.Status)
	fmt.Fprintf(&b, "Property: %s, %s\n", tx.Property.Name, tx.Property.Address)
	fmt.Fprintf(&b, "Client:   %s <%s>\n", tx.ClientName, tx.ClientEmail)
	fmt.Fprintf(&b, "Price:    %s  Commission: %s\n", FormatMoney(tx.TotalPrice), FormatMoney(tx.CommissionValue))

	if tx.ReviewNotes != "" {
		fmt.Fprintf(&b, "Review:   %s\n", tx.ReviewNotes)
	}

	b.WriteString("\nHistory:\n")

	if len(d.History) == 0 {
		b.WriteString("  (none)\n")
	}

	for _, h := range d.History {
		note := ""
		if h.Notes != "" {
			note = " - " + h.Notes
		}

		fmt.Fprintf(&b, "  %s  %s%s\n", FormatDate(h.ChangedAt), h.Status, note)
	}

	b.WriteString("\nDocuments:\n")

	if len(d.Documents) == 0 {
		b.WriteString("  (none)\n")
	}

	for _, doc := range d.Documents {
		fmt.Fprintf(&b, "  [%s] %s\n", doc.Type, doc.Name)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(b.String())
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m TransactionsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		price := tx.TotalPrice
		if tx.Type == transaction.TypeLease && tx.AnnualRent != nil {
			price = *tx.AnnualRent
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Status),
			tx.Property.Name,
			tx.ClientName,
			FormatMoney(price),
			FormatMoney(tx.CommissionValue),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadTxsMsg struct {
	listing *transaction.Listing
	err     error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	var status *transaction.Status
	if f := statusFilters[m.statusFilterIdx]; f != "" {
		status = &f
	}

	limit := pageSize
	offset := m.page * pageSize

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			listing *transaction.Listing
			err     error
		)

		if m.caller.IsAdmin() {
			listing, err = m.txService.ListAll(ctx, m.caller, transaction.AdminListFilter{
				Status: status,
				Limit:  limit,
				Offset: offset,
			})
		} else {
			listing, err = m.txService.ListMine(ctx, m.caller, status, limit, offset)
		}

		return loadTxsMsg{listing: listing, err: err}
	}
}

type loadDetailsMsg struct {
	details *transaction.Details
	err     error
}

func (m TransactionsModel) loadDetailsCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		details, err := m.txService.Get(ctx, m.caller, id)

		return loadDetailsMsg{details: details, err: err}
	}
}

type txMutatedMsg struct {
	note string
	err  error
}

func (m TransactionsModel) updateStatusCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id := tx.ID
	newStatus := transaction.Status(m.formStatus)
	notes := m.formNotes

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error
		if m.caller.IsAdmin() {
			_, err = m.txService.AdminUpdateStatus(ctx, m.caller, id, newStatus, "", notes)
		} else {
			_, err = m.txService.UpdateStatus(ctx, m.caller, id, newStatus, notes)
		}

		if err != nil {
			return txMutatedMsg{err: err}
		}

		return txMutatedMsg{note: fmt.Sprintf("Status set to %s.", newStatus)}
	}
}

func (m TransactionsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, m.caller, id); err != nil {
			return txMutatedMsg{err: err}
		}

		return txMutatedMsg{note: "Transaction deleted."}
	}
}
