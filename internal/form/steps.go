package form

import (
	"github.com/dealdesk/dealdesk/internal/transaction"
)

// StepID identifies a wizard step. Validation and rendering both dispatch
// on this one enumeration, so a step cannot exist in one list but not the
// other.
type StepID int

const (
	StepTransactionType StepID = iota
	StepPropertySelection
	StepPropertyDetails
	StepClientInformation
	StepCoBroking
	StepCommission
	StepDocuments
	StepReview
)

func (id StepID) String() string {
	switch id {
	case StepTransactionType:
		return "Transaction Type"
	case StepPropertySelection:
		return "Property Selection"
	case StepPropertyDetails:
		return "Property Details"
	case StepClientInformation:
		return "Client Information"
	case StepCoBroking:
		return "Co-Broking"
	case StepCommission:
		return "Commission"
	case StepDocuments:
		return "Documents"
	case StepReview:
		return "Review & Submit"
	}

	return "Unknown"
}

// step is a candidate wizard step with its applicability predicate.
type step struct {
	id         StepID
	applicable func(*Values) bool
}

func always(*Values) bool { return true }

// baseSteps are shared by both market types and always come first.
var baseSteps = []step{
	{id: StepTransactionType, applicable: always},
}

// primaryMarketSteps follow the base steps for new-development deals. The
// property selection step exists only on this branch.
var primaryMarketSteps = []step{
	{id: StepPropertySelection, applicable: func(v *Values) bool {
		return v.MarketType == transaction.MarketPrimary
	}},
	{id: StepPropertyDetails, applicable: always},
	{id: StepClientInformation, applicable: always},
	{id: StepCoBroking, applicable: always},
	{id: StepCommission, applicable: always},
	{id: StepDocuments, applicable: always},
	{id: StepReview, applicable: always},
}

// secondaryMarketSteps follow the base steps for resale deals.
var secondaryMarketSteps = []step{
	{id: StepPropertyDetails, applicable: always},
	{id: StepClientInformation, applicable: always},
	{id: StepCoBroking, applicable: always},
	{id: StepCommission, applicable: always},
	{id: StepDocuments, applicable: always},
	{id: StepReview, applicable: always},
}

// stepsFor builds the active step list: base steps plus the applicable
// market-specific steps. Anything other than primary is treated as
// secondary.
func stepsFor(v *Values) []StepID {
	candidates := secondaryMarketSteps
	if v.MarketType == transaction.MarketPrimary {
		candidates = primaryMarketSteps
	}

	ids := make([]StepID, 0, len(baseSteps)+len(candidates))

	for _, s := range baseSteps {
		if s.applicable(v) {
			ids = append(ids, s.id)
		}
	}

	for _, s := range candidates {
		if s.applicable(v) {
			ids = append(ids, s.id)
		}
	}

	return ids
}
