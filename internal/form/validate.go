package form

import (
	"github.com/dealdesk/dealdesk/internal/transaction"
)

// Validate checks the given step against the current form values and
// returns the names of the fields blocking it. An empty result means the
// step is satisfied. Validators are pure: they never mutate values.
func Validate(id StepID, v *Values) []string {
	switch id {
	case StepTransactionType:
		return validateTransactionType(v)
	case StepPropertySelection:
		return validatePropertySelection(v)
	case StepPropertyDetails:
		return validatePropertyDetails(v)
	case StepClientInformation:
		return validateClientInformation(v)
	case StepCoBroking:
		return validateCoBroking(v)
	case StepCommission:
		return validateCommission(v)
	case StepDocuments, StepReview:
		// Documents are optional; review has nothing of its own to check.
		return nil
	}

	return []string{"step"}
}

func validateTransactionType(v *Values) []string {
	var missing []string

	if v.MarketType == "" {
		missing = append(missing, "marketType")
	}

	if v.TransactionDate == "" {
		missing = append(missing, "transactionDate")
	}

	switch v.MarketType {
	case transaction.MarketPrimary:
		// Primary-market deals are always sales.
		if v.TransactionType != transaction.TypeSale {
			missing = append(missing, "transactionType")
		}
	case transaction.MarketSecondary:
		if v.TransactionType != transaction.TypeSale && v.TransactionType != transaction.TypeLease {
			missing = append(missing, "transactionType")
		}
	}

	return missing
}

func validatePropertySelection(v *Values) []string {
	if v.PropertySelected {
		return nil
	}

	// Manual entry requires the full property record plus a price.
	var missing []string

	for _, f := range []struct {
		name  string
		value string
	}{
		{"propertyName", v.PropertyName},
		{"propertyType", v.PropertyType},
		{"propertyAddress", v.PropertyAddress},
		{"propertyDeveloper", v.PropertyDeveloper},
		{"propertyProject", v.PropertyProject},
		{"totalPrice", v.TotalPrice},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	return missing
}

// validatePropertyDetails is intentionally lenient: only the property name
// is required, everything else is optional.
func validatePropertyDetails(v *Values) []string {
	if v.PropertyName == "" {
		return []string{"propertyName"}
	}

	return nil
}

func validateClientInformation(v *Values) []string {
	if v.ClientName == "" {
		return []string{"clientName"}
	}

	return nil
}

// validateCoBroking is vacuously satisfied when co-broking is disabled.
func validateCoBroking(v *Values) []string {
	if !v.CoBrokingEnabled {
		return nil
	}

	var missing []string

	if v.CoBrokingAgentName == "" {
		missing = append(missing, "coBrokingAgentName")
	}

	if v.CoBrokingAgencyName == "" {
		missing = append(missing, "coBrokingAgencyName")
	}

	return missing
}

func validateCommission(v *Values) []string {
	if v.CommissionType == "" {
		return []string{"commissionType"}
	}

	switch NormalizeCommissionType(v.CommissionType) {
	case transaction.CommissionPercentage:
		if v.CommissionPercentage == "" {
			return []string{"commissionPercentage"}
		}
	case transaction.CommissionFixedAmount:
		if v.CommissionValue == "" {
			return []string{"commissionValue"}
		}
	}

	return nil
}
