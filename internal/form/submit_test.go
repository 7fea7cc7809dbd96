package form_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/form"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

func TestBuildCreateParams(t *testing.T) {
	v := secondaryValues()
	v.TransactionType = transaction.TypeLease
	v.AnnualRent = "60,000"
	v.PropertySizeSqft = "1450"
	v.Bedrooms = "3"
	v.Bathrooms = "2"
	v.CoBrokingEnabled = true
	v.CoBrokingAgentName = "Sam Partner"
	v.CoBrokingAgencyName = "Partner Realty"
	v.CommissionType = "fixed"
	v.CommissionValue = "5,000"

	params, err := form.BuildCreateParams(v)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), params.Date)
	assert.Equal(t, transaction.MarketSecondary, params.MarketType)
	assert.Equal(t, transaction.TypeLease, params.Type)
	assert.Equal(t, 1450, params.Property.SizeSqft)
	assert.Equal(t, 3, params.Property.Bedrooms)
	assert.Equal(t, transaction.CoBrokingCoBroke, params.CoBroking.Type)
	assert.Equal(t, "Partner Realty", params.CoBroking.AgencyName)
	assert.True(t, params.TotalPrice.Equal(decimal.NewFromInt(1_200_000)))
	require.NotNil(t, params.AnnualRent)
	assert.True(t, params.AnnualRent.Equal(decimal.NewFromInt(60_000)))
	assert.Equal(t, transaction.CommissionFixedAmount, params.CommissionType)
	assert.True(t, params.CommissionValue.Equal(decimal.NewFromInt(5_000)))
}

func TestBuildCreateParams_NoCoBroking(t *testing.T) {
	params, err := form.BuildCreateParams(secondaryValues())
	require.NoError(t, err)

	assert.Equal(t, transaction.CoBrokingDirect, params.CoBroking.Type)
	assert.Empty(t, params.CoBroking.AgencyName)
	assert.Nil(t, params.AnnualRent)
	require.NotNil(t, params.CommissionPercentage)
	assert.True(t, params.CommissionPercentage.Equal(decimal.NewFromInt(2)))
}

func TestBuildCreateParams_BadDate(t *testing.T) {
	v := secondaryValues()
	v.TransactionDate = "15/03/2024"

	_, err := form.BuildCreateParams(v)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	v := secondaryValues()
	form.Reset(v)

	assert.Equal(t, form.Values{}, *v)
}
