package form

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk/internal/transaction"
)

// legacyFixed is the pre-rename label for fixed commissions. It is accepted
// on intake and normalized away; fixed_amount is the canonical value.
const legacyFixed = "fixed"

// NormalizeCommissionType maps the legacy "fixed" label onto the canonical
// fixed_amount value and leaves everything else untouched.
func NormalizeCommissionType(t transaction.CommissionType) transaction.CommissionType {
	if string(t) == legacyFixed {
		return transaction.CommissionFixedAmount
	}

	return t
}

// defaultCommissionPercentage applies when the agent reaches the commission
// step without having touched the percentage field.
const defaultCommissionPercentage = "2"

// ApplyCommissionDefaults fills in the percentage-mode defaults without
// overriding anything the agent already entered.
func ApplyCommissionDefaults(v *Values) {
	if v.CommissionType == "" {
		v.CommissionType = transaction.CommissionPercentage
	}

	if v.CommissionPercentage == "" {
		v.CommissionPercentage = defaultCommissionPercentage
	}
}

// RecalculateCommission recomputes the commission value as
// basis × percentage / 100 when the commission type is percentage. The
// basis is the total price for sales and the annual rent for leases. The
// computation is idempotent, and it never runs in fixed_amount mode so a
// hand-entered value is never overwritten.
func RecalculateCommission(v *Values) {
	if NormalizeCommissionType(v.CommissionType) != transaction.CommissionPercentage {
		return
	}

	basis := ParseAmount(v.TotalPrice)
	if v.TransactionType == transaction.TypeLease {
		basis = ParseAmount(v.AnnualRent)
	}

	pct := ParseAmount(v.CommissionPercentage)
	if basis.IsPositive() && pct.IsPositive() {
		v.CommissionValue = basis.Mul(pct).Div(decimal.NewFromInt(100)).StringFixed(2)
	}
}

// ParseAmount reads a user-entered money or percentage string, tolerating
// currency formatting (separators, symbols). Unparseable input yields zero.
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}

		return -1
	}, s)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}

	return d
}
