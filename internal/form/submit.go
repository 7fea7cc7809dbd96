package form

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dealdesk/dealdesk/internal/transaction"
)

// BuildCreateParams translates the accumulated form values into the
// transaction creation payload. Money fields are parsed from their entered
// text and the legacy fixed commission label is normalized away.
func BuildCreateParams(v *Values) (transaction.CreateParams, error) {
	date, err := time.Parse(time.DateOnly, v.TransactionDate)
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("parsing transaction date: %w", err)
	}

	coBroking := transaction.CoBroking{Type: transaction.CoBrokingDirect}
	if v.CoBrokingEnabled {
		coBroking = transaction.CoBroking{
			Type:       transaction.CoBrokingCoBroke,
			AgentName:  v.CoBrokingAgentName,
			AgencyName: v.CoBrokingAgencyName,
			AgentREN:   v.CoBrokingAgentREN,
		}
	}

	params := transaction.CreateParams{
		MarketType: v.MarketType,
		Type:       v.TransactionType,
		Date:       date,
		Property: transaction.PropertyDetails{
			Name:      v.PropertyName,
			Type:      v.PropertyType,
			Address:   v.PropertyAddress,
			Developer: v.PropertyDeveloper,
			Project:   v.PropertyProject,
			SizeSqft:  atoiOrZero(v.PropertySizeSqft),
			Bedrooms:  atoiOrZero(v.Bedrooms),
			Bathrooms: atoiOrZero(v.Bathrooms),
		},
		ClientName:      v.ClientName,
		ClientEmail:     v.ClientEmail,
		ClientPhone:     v.ClientPhone,
		ClientType:      v.ClientType,
		ClientIDNumber:  v.ClientIDNumber,
		CoBroking:       coBroking,
		TotalPrice:      ParseAmount(v.TotalPrice),
		CommissionValue: ParseAmount(v.CommissionValue),
		CommissionType:  NormalizeCommissionType(v.CommissionType),
		Notes:           v.Notes,
	}

	if v.AnnualRent != "" {
		rent := ParseAmount(v.AnnualRent)
		params.AnnualRent = &rent
	}

	if v.CommissionPercentage != "" {
		pct := ParseAmount(v.CommissionPercentage)
		params.CommissionPercentage = &pct
	}

	return params, nil
}

// Reset returns the form to a blank draft.
func Reset(v *Values) {
	*v = Values{}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
