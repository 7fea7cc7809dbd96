package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketType selects which form flow and fields apply to a transaction.
type MarketType string

const (
	MarketPrimary   MarketType = "primary"
	MarketSecondary MarketType = "secondary"
)

// Type represents the kind of deal (sale or lease).
type Type string

const (
	TypeSale  Type = "sale"
	TypeLease Type = "lease"
)

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingReview   Status = "pending_review"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusClosed          Status = "closed"
	StatusCancelled       Status = "cancelled"
)

// Statuses lists every valid lifecycle state.
var Statuses = []Status{
	StatusDraft,
	StatusPendingReview,
	StatusPendingApproval,
	StatusApproved,
	StatusRejected,
	StatusClosed,
	StatusCancelled,
}

// Valid reports whether s is one of the enumerated states.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}

	return false
}

// ClientType identifies which side of the deal the client is on.
type ClientType string

const (
	ClientBuyer    ClientType = "buyer"
	ClientSeller   ClientType = "seller"
	ClientTenant   ClientType = "tenant"
	ClientLandlord ClientType = "landlord"
)

// CoBrokingType records whether a counterpart agency is involved.
type CoBrokingType string

const (
	CoBrokingDirect  CoBrokingType = "direct"
	CoBrokingCoBroke CoBrokingType = "co_broke"
)

// CommissionType selects how the commission value is derived.
type CommissionType string

const (
	CommissionPercentage  CommissionType = "percentage"
	CommissionFixedAmount CommissionType = "fixed_amount"
)

// DocumentType classifies an attached document.
type DocumentType string

const (
	DocumentAgreement    DocumentType = "agreement"
	DocumentKYC          DocumentType = "kyc"
	DocumentPaymentProof DocumentType = "payment_proof"
	DocumentTitleDeed    DocumentType = "title_deed"
	DocumentSPA          DocumentType = "spa"
	DocumentMOI          DocumentType = "moi"
	DocumentOther        DocumentType = "other"
)

// PropertyDetails is the free-form property record, persisted as jsonb.
type PropertyDetails struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Address   string `json:"address,omitempty"`
	Developer string `json:"developer,omitempty"`
	Project   string `json:"project,omitempty"`
	SizeSqft  int    `json:"sizeSqft,omitempty"`
	Bedrooms  int    `json:"bedrooms,omitempty"`
	Bathrooms int    `json:"bathrooms,omitempty"`
}

// CoBroking holds the counterpart agent fields for co-broked deals.
type CoBroking struct {
	Type       CoBrokingType
	AgentName  string
	AgencyName string
	AgentREN   string
}

// Transaction represents a property transaction submitted by an agent.
type Transaction struct {
	ID      uuid.UUID
	AgentID string

	MarketType MarketType
	Type       Type
	Date       time.Time

	Property PropertyDetails

	ClientName     string
	ClientEmail    string
	ClientPhone    string
	ClientType     ClientType
	ClientIDNumber string

	CoBroking CoBroking

	TotalPrice           decimal.Decimal
	AnnualRent           *decimal.Decimal
	CommissionValue      decimal.Decimal
	CommissionType       CommissionType
	CommissionPercentage *decimal.Decimal

	Notes       string
	ReviewNotes string
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusHistoryEntry is an append-only audit record of a status change.
type StatusHistoryEntry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	Status        Status
	ChangedAt     time.Time
	ChangedBy     string
	Notes         string
}

// Document is attachment metadata belonging to a transaction.
type Document struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	Name          string
	URL           string
	Type          DocumentType
	UploadedAt    time.Time
	UploadedBy    string
}
