package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dealdesk/dealdesk/internal/auth"
	"github.com/dealdesk/dealdesk/internal/form"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

// wizardBindings are the huh field targets for values that need a type
// conversion before landing in form.Values. Held behind a pointer so model
// copies share one instance.
type wizardBindings struct {
	marketType     string
	txType         string
	clientType     string
	commissionType string
	docsContinue   bool
	confirmSubmit  bool
}

// WizardModel walks an agent through the multi-step transaction form and
// submits the accumulated draft on the final step.
type WizardModel struct {
	CommonModel
	txService *transaction.Service
	caller    auth.Identity

	seq     *form.Sequencer
	huhForm *huh.Form
	bind    *wizardBindings

	submitting bool
	status     string
}

func NewWizardModel(txSvc *transaction.Service, caller auth.Identity) WizardModel {
	values := &form.Values{}

	m := WizardModel{
		txService: txSvc,
		caller:    caller,
		seq:       form.NewSequencer(values),
		bind:      &wizardBindings{},
	}
	m.buildStepForm()

	return m
}

func (m WizardModel) Title() string { return "New Transaction" }

func (m WizardModel) ShortHelp() string {
	if m.seq.Current() == form.StepReview {
		return "Esc: previous step | ctrl+e: edit commission | Enter/Tab: navigate form"
	}

	return "Esc: previous step | Enter/Tab: navigate form"
}

func (m WizardModel) Init() tea.Cmd {
	return m.huhForm.Init()
}

type submitResultMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		m.submitting = false

		if msg.err != nil {
			// Entered data stays intact for a manual retry.
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.buildStepForm()

			return m, m.huhForm.Init()
		}

		m.status = fmt.Sprintf("Draft %s created.", msg.tx.ID)
		form.Reset(m.seq.Values())
		m.seq = form.NewSequencer(m.seq.Values())
		m.bind = &wizardBindings{}
		m.buildStepForm()

		return m, m.huhForm.Init()

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}

		if msg.String() == "ctrl+e" && m.seq.Current() == form.StepReview {
			if err := m.seq.JumpToCommission(); err == nil {
				m.status = ""
				m.buildStepForm()

				return m, m.huhForm.Init()
			}
		}

		if msg.Type == tea.KeyEsc {
			if m.seq.Index() == 0 {
				return m, Back
			}

			m.seq.Previous()
			m.status = ""
			m.buildStepForm()

			return m, m.huhForm.Init()
		}
	}

	f, cmd := m.huhForm.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.huhForm = hf
	}

	if m.huhForm.State != huh.StateCompleted {
		return m, cmd
	}

	return m.completeStep()
}

// completeStep runs when the active step's huh form finishes: typed
// bindings are copied into the form values, then the sequencer decides
// whether the step may be left.
func (m WizardModel) completeStep() (tea.Model, tea.Cmd) {
	v := m.seq.Values()

	switch m.seq.Current() {
	case form.StepTransactionType:
		m.seq.SetMarketType(transaction.MarketType(m.bind.marketType))

		if v.MarketType != transaction.MarketPrimary {
			v.TransactionType = transaction.Type(m.bind.txType)
		}

	case form.StepClientInformation:
		v.ClientType = transaction.ClientType(m.bind.clientType)

	case form.StepCoBroking:
		if !v.CoBrokingEnabled {
			v.CoBrokingAgentName = ""
			v.CoBrokingAgencyName = ""
			v.CoBrokingAgentREN = ""
		}

	case form.StepCommission:
		v.CommissionType = transaction.CommissionType(m.bind.commissionType)
		form.RecalculateCommission(v)

	case form.StepDocuments:
		if !m.bind.docsContinue {
			m.seq.Previous()
			m.buildStepForm()

			return m, m.huhForm.Init()
		}
	}

	if m.seq.IsLast() {
		if !m.bind.confirmSubmit {
			m.status = "Submission cancelled."
			m.buildStepForm()

			return m, m.huhForm.Init()
		}

		if m.submitting {
			return m, nil
		}

		m.submitting = true
		m.status = "Submitting..."

		return m, m.submitCmd()
	}

	if m.seq.Next() {
		m.status = ""
	} else {
		m.status = "Missing: " + strings.Join(m.seq.FieldErrors(), ", ")
	}

	m.buildStepForm()

	return m, m.huhForm.Init()
}

func (m WizardModel) submitCmd() tea.Cmd {
	values := m.seq.Values()
	svc := m.txService
	caller := m.caller

	return func() tea.Msg {
		params, err := form.BuildCreateParams(values)
		if err != nil {
			return submitResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := svc.Create(ctx, caller, params)

		return submitResultMsg{tx: tx, err: err}
	}
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}

	return nil
}

var propertyTypeOptions = []huh.Option[string]{
	huh.NewOption("Residential Villa", "residential_villa"),
	huh.NewOption("Residential Apartment", "residential_apartment"),
	huh.NewOption("Residential Townhouse", "residential_townhouse"),
	huh.NewOption("Commercial Office", "commercial_office"),
	huh.NewOption("Commercial Retail", "commercial_retail"),
	huh.NewOption("Commercial Warehouse", "commercial_warehouse"),
	huh.NewOption("Residential Land", "land_residential"),
	huh.NewOption("Commercial Land", "land_commercial"),
	huh.NewOption("Industrial Factory", "industrial_factory"),
	huh.NewOption("Other", "other"),
}

func (m *WizardModel) buildStepForm() {
	v := m.seq.Values()

	var groups []*huh.Group

	switch m.seq.Current() {
	case form.StepTransactionType:
		m.bind.marketType = string(v.MarketType)
		m.bind.txType = string(v.TransactionType)

		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Key("marketType").
				Title("Market").
				Options(
					huh.NewOption("Primary (new development)", "primary"),
					huh.NewOption("Secondary (resale)", "secondary"),
				).
				Value(&m.bind.marketType),

			huh.NewSelect[string]().
				Key("transactionType").
				Title("Transaction Type").
				OptionsFunc(func() []huh.Option[string] {
					// Primary-market deals are always sales.
					if m.bind.marketType == string(transaction.MarketPrimary) {
						return []huh.Option[string]{huh.NewOption("Sale", "sale")}
					}

					return []huh.Option[string]{
						huh.NewOption("Sale", "sale"),
						huh.NewOption("Lease", "lease"),
					}
				}, &m.bind.marketType).
				Value(&m.bind.txType),

			huh.NewInput().
				Key("transactionDate").
				Title("Transaction Date").
				Placeholder("YYYY-MM-DD").
				Validate(validDate).
				Value(&v.TransactionDate),
		))

	case form.StepPropertySelection:
		groups = append(groups,
			huh.NewGroup(
				huh.NewConfirm().
					Key("propertySelected").
					Title("Pick the unit from a listed development?").
					Affirmative("Yes, unit is listed").
					Negative("No, enter manually").
					Value(&v.PropertySelected),
			),
			huh.NewGroup(
				huh.NewInput().Key("propertyName").Title("Property Name").Value(&v.PropertyName),
				huh.NewSelect[string]().Key("propertyType").Title("Property Type").
					Options(propertyTypeOptions...).Value(&v.PropertyType),
				huh.NewInput().Key("propertyAddress").Title("Address").Value(&v.PropertyAddress),
				huh.NewInput().Key("propertyDeveloper").Title("Developer").Value(&v.PropertyDeveloper),
				huh.NewInput().Key("propertyProject").Title("Project").Value(&v.PropertyProject),
				huh.NewInput().Key("totalPrice").Title("Total Price").Value(&v.TotalPrice),
			).WithHideFunc(func() bool { return v.PropertySelected }),
		)

	case form.StepPropertyDetails:
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Key("propertyName").Title("Property Name").Value(&v.PropertyName),
			huh.NewSelect[string]().Key("propertyType").Title("Property Type").
				Options(propertyTypeOptions...).Value(&v.PropertyType),
			huh.NewInput().Key("propertyAddress").Title("Address").Value(&v.PropertyAddress),
			huh.NewInput().Key("propertySizeSqft").Title("Size (sqft)").Value(&v.PropertySizeSqft),
			huh.NewInput().Key("bedrooms").Title("Bedrooms").Value(&v.Bedrooms),
			huh.NewInput().Key("bathrooms").Title("Bathrooms").Value(&v.Bathrooms),
		))

	case form.StepClientInformation:
		m.bind.clientType = string(v.ClientType)

		groups = append(groups, huh.NewGroup(
			huh.NewInput().Key("clientName").Title("Client Name").Value(&v.ClientName),
			huh.NewInput().Key("clientEmail").Title("Client Email").Value(&v.ClientEmail),
			huh.NewInput().Key("clientPhone").Title("Client Phone").Value(&v.ClientPhone),
			huh.NewSelect[string]().Key("clientType").Title("Client Type").
				Options(
					huh.NewOption("Buyer", "buyer"),
					huh.NewOption("Seller", "seller"),
					huh.NewOption("Tenant", "tenant"),
					huh.NewOption("Landlord", "landlord"),
				).
				Value(&m.bind.clientType),
			huh.NewInput().Key("clientIdNumber").Title("Client ID Number").Value(&v.ClientIDNumber),
		))

	case form.StepCoBroking:
		groups = append(groups,
			huh.NewGroup(
				huh.NewConfirm().
					Key("coBrokingEnabled").
					Title("Co-broked with another agency?").
					Affirmative("Yes").
					Negative("No").
					Value(&v.CoBrokingEnabled),
			),
			huh.NewGroup(
				huh.NewInput().Key("coBrokingAgentName").Title("Co-Broking Agent").Value(&v.CoBrokingAgentName),
				huh.NewInput().Key("coBrokingAgencyName").Title("Co-Broking Agency").Value(&v.CoBrokingAgencyName),
				huh.NewInput().Key("coBrokingAgentRen").Title("Agent REN/RERA").Value(&v.CoBrokingAgentREN),
			).WithHideFunc(func() bool { return !v.CoBrokingEnabled }),
		)

	case form.StepCommission:
		m.bind.commissionType = string(form.NormalizeCommissionType(v.CommissionType))

		basis := huh.NewInput().Key("totalPrice").Title("Total Price").Value(&v.TotalPrice)
		if v.TransactionType == transaction.TypeLease {
			basis = huh.NewInput().Key("annualRent").Title("Annual Rent").Value(&v.AnnualRent)
		}

		groups = append(groups,
			huh.NewGroup(
				huh.NewSelect[string]().
					Key("commissionType").
					Title("Commission Type").
					Options(
						huh.NewOption("Percentage of price", "percentage"),
						huh.NewOption("Fixed amount", "fixed_amount"),
					).
					Value(&m.bind.commissionType),

				basis,
			),
			huh.NewGroup(
				huh.NewInput().Key("commissionPercentage").Title("Commission %").Value(&v.CommissionPercentage),
			).WithHideFunc(func() bool {
				return m.bind.commissionType != string(transaction.CommissionPercentage)
			}),
			huh.NewGroup(
				huh.NewInput().Key("commissionValue").Title("Commission Amount").Value(&v.CommissionValue),
			).WithHideFunc(func() bool {
				return m.bind.commissionType != string(transaction.CommissionFixedAmount)
			}),
		)

	case form.StepDocuments:
		groups = append(groups, huh.NewGroup(
			huh.NewNote().
				Title("Documents").
				Description("Agreements, KYC and payment proofs can be attached to the draft from the portal."),
			huh.NewConfirm().
				Key("docsContinue").
				Title("Continue to review?").
				Affirmative("Continue").
				Negative("Go back").
				Value(&m.bind.docsContinue),
		))

	case form.StepReview:
		groups = append(groups, huh.NewGroup(
			huh.NewText().Key("notes").Title("Notes (optional)").Value(&v.Notes),
			huh.NewConfirm().
				Key("confirmSubmit").
				Title("Save this transaction as a draft?").
				Affirmative("Save draft").
				Negative("Not yet").
				Value(&m.bind.confirmSubmit),
		))
	}

	m.huhForm = huh.NewForm(groups...).WithWidth(64).WithShowHelp(false)
}

func (m WizardModel) View() string {
	header := m.stepperView()

	statusLine := ""
	if m.status != "" {
		statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n\n"
	}

	body := m.huhForm.View()
	if m.submitting {
		body = "Saving transaction..."
	}

	if m.seq.Current() == form.StepReview {
		body = m.reviewSummary() + "\n" + body
	}

	return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + statusLine + body)
}

// stepperView renders the active step list with the current step highlighted.
func (m WizardModel) stepperView() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("57"))
	done := lipgloss.NewStyle().Faint(true)

	parts := make([]string, 0, len(m.seq.Steps()))

	for i, id := range m.seq.Steps() {
		label := fmt.Sprintf("%d. %s", i+1, id)

		switch {
		case i == m.seq.Index():
			label = active.Render(label)
		case i < m.seq.Index():
			label = done.Render(label)
		}

		parts = append(parts, label)
	}

	return strings.Join(parts, "  >  ")
}

func (m WizardModel) reviewSummary() string {
	v := m.seq.Values()

	price := v.TotalPrice
	if v.TransactionType == transaction.TypeLease {
		price = v.AnnualRent + " (annual rent)"
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"%s %s on %s\nProperty: %s\nClient: %s\nPrice: %s  Commission: %s",
			v.MarketType, v.TransactionType, v.TransactionDate,
			v.PropertyName,
			v.ClientName,
			price, v.CommissionValue,
		))
}
