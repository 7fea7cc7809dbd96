// Package form implements the multi-step transaction submission form: an
// ordered, branching sequence of data-entry steps, per-step validation
// gating forward navigation, and the commission auto-calculation. It holds
// ephemeral draft state only; nothing here touches persistence until the
// final step produces a creation payload.
package form

import (
	"github.com/dealdesk/dealdesk/internal/transaction"
)

// Values is the in-progress form state. Every field the wizard collects
// lives here as a typed struct field, so each step validator covers a known
// field set.
type Values struct {
	// Transaction type step
	MarketType      transaction.MarketType
	TransactionType transaction.Type
	TransactionDate string // YYYY-MM-DD

	// Property steps
	PropertyName      string
	PropertyType      string
	PropertyAddress   string
	PropertyDeveloper string
	PropertyProject   string
	PropertySizeSqft  string
	Bedrooms          string
	Bathrooms         string
	// PropertySelected marks that a listed development unit was picked in
	// the primary-market property selection step, which makes the manual
	// property fields optional there.
	PropertySelected bool

	// Client information step
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	ClientType     transaction.ClientType
	ClientIDNumber string

	// Co-broking step
	CoBrokingEnabled    bool
	CoBrokingAgentName  string
	CoBrokingAgencyName string
	CoBrokingAgentREN   string

	// Commission step. Money fields stay as entered text until submission.
	TotalPrice           string
	AnnualRent           string
	CommissionType       transaction.CommissionType
	CommissionPercentage string
	CommissionValue      string

	// Review step
	Notes string
}
