package form_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealdesk/dealdesk/internal/form"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

func TestNormalizeCommissionType(t *testing.T) {
	assert.Equal(t, transaction.CommissionFixedAmount, form.NormalizeCommissionType("fixed"))
	assert.Equal(t, transaction.CommissionFixedAmount, form.NormalizeCommissionType(transaction.CommissionFixedAmount))
	assert.Equal(t, transaction.CommissionPercentage, form.NormalizeCommissionType(transaction.CommissionPercentage))
}

func TestApplyCommissionDefaults(t *testing.T) {
	t.Run("FillsEmptyFields", func(t *testing.T) {
		v := &form.Values{}
		form.ApplyCommissionDefaults(v)

		assert.Equal(t, transaction.CommissionPercentage, v.CommissionType)
		assert.Equal(t, "2", v.CommissionPercentage)
	})

	t.Run("KeepsEnteredValues", func(t *testing.T) {
		v := &form.Values{
			CommissionType:       transaction.CommissionFixedAmount,
			CommissionPercentage: "1.5",
		}
		form.ApplyCommissionDefaults(v)

		assert.Equal(t, transaction.CommissionFixedAmount, v.CommissionType)
		assert.Equal(t, "1.5", v.CommissionPercentage)
	})
}

func TestRecalculateCommission(t *testing.T) {
	type testCase struct {
		name   string
		values form.Values
		want   string
	}

	tests := []testCase{
		{
			name: "SaleUsesTotalPrice",
			values: form.Values{
				TransactionType:      transaction.TypeSale,
				TotalPrice:           "1200000",
				CommissionType:       transaction.CommissionPercentage,
				CommissionPercentage: "2",
			},
			want: "24000.00",
		},
		{
			name: "LeaseUsesAnnualRent",
			values: form.Values{
				TransactionType:      transaction.TypeLease,
				TotalPrice:           "1200000",
				AnnualRent:           "60000",
				CommissionType:       transaction.CommissionPercentage,
				CommissionPercentage: "2",
			},
			want: "1200.00",
		},
		{
			name: "CurrencyFormattingTolerated",
			values: form.Values{
				TransactionType:      transaction.TypeSale,
				TotalPrice:           "$1,200,000",
				CommissionType:       transaction.CommissionPercentage,
				CommissionPercentage: "2.5%",
			},
			want: "30000.00",
		},
		{
			name: "FixedModeNeverOverwrites",
			values: form.Values{
				TransactionType:      transaction.TypeSale,
				TotalPrice:           "1200000",
				CommissionType:       transaction.CommissionFixedAmount,
				CommissionPercentage: "2",
				CommissionValue:      "5000",
			},
			want: "5000",
		},
		{
			name: "LegacyFixedLabelNeverOverwrites",
			values: form.Values{
				TransactionType: transaction.TypeSale,
				TotalPrice:      "1200000",
				CommissionType:  "fixed",
				CommissionValue: "5000",
			},
			want: "5000",
		},
		{
			name: "ZeroBasisLeavesValueAlone",
			values: form.Values{
				TransactionType:      transaction.TypeSale,
				CommissionType:       transaction.CommissionPercentage,
				CommissionPercentage: "2",
				CommissionValue:      "99",
			},
			want: "99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form.RecalculateCommission(&tt.values)
			assert.Equal(t, tt.want, tt.values.CommissionValue)
		})
	}
}

func TestRecalculateCommission_Idempotent(t *testing.T) {
	v := form.Values{
		TransactionType:      transaction.TypeSale,
		TotalPrice:           "1200000",
		CommissionType:       transaction.CommissionPercentage,
		CommissionPercentage: "2",
	}

	form.RecalculateCommission(&v)
	first := v.CommissionValue
	form.RecalculateCommission(&v)

	assert.Equal(t, first, v.CommissionValue)
	assert.Equal(t, "24000.00", first)
}

func TestParseAmount(t *testing.T) {
	assert.True(t, form.ParseAmount("1,200,000.50").Equal(form.ParseAmount("1200000.50")))
	assert.True(t, form.ParseAmount("AED 5000").Equal(form.ParseAmount("5000")))
	assert.True(t, form.ParseAmount("garbage").IsZero())
	assert.True(t, form.ParseAmount("").IsZero())
}
