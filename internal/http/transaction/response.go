package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk/internal/transaction"
)

type propertyDetailsResponse struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Address   string `json:"address,omitempty"`
	Developer string `json:"developer,omitempty"`
	Project   string `json:"project,omitempty"`
	SizeSqft  int    `json:"size_sqft,omitempty"`
	Bedrooms  int    `json:"bedrooms,omitempty"`
	Bathrooms int    `json:"bathrooms,omitempty"`
}

type transactionResponse struct {
	ID         uuid.UUID              `json:"id"`
	AgentID    string                 `json:"agent_id"`
	MarketType transaction.MarketType `json:"market_type"`
	Type       transaction.Type       `json:"transaction_type"`
	Date       time.Time              `json:"transaction_date"`

	Property propertyDetailsResponse `json:"property_details"`

	ClientName     string                 `json:"client_name"`
	ClientEmail    string                 `json:"client_email,omitempty"`
	ClientPhone    string                 `json:"client_phone,omitempty"`
	ClientType     transaction.ClientType `json:"client_type,omitempty"`
	ClientIDNumber string                 `json:"client_id_number,omitempty"`

	CoBrokingType       transaction.CoBrokingType `json:"co_broking_type,omitempty"`
	CoBrokingAgentName  string                    `json:"co_broking_agent_name,omitempty"`
	CoBrokingAgencyName string                    `json:"co_broking_agency_name,omitempty"`
	CoBrokingAgentREN   string                    `json:"co_broking_agent_ren,omitempty"`

	TotalPrice           decimal.Decimal            `json:"total_price"`
	AnnualRent           *decimal.Decimal           `json:"annual_rent,omitempty"`
	CommissionValue      decimal.Decimal            `json:"commission_value"`
	CommissionType       transaction.CommissionType `json:"commission_type,omitempty"`
	CommissionPercentage *decimal.Decimal           `json:"commission_percentage,omitempty"`

	Notes       string             `json:"notes,omitempty"`
	ReviewNotes string             `json:"review_notes,omitempty"`
	Status      transaction.Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type historyEntryResponse struct {
	ID        uuid.UUID          `json:"id"`
	Status    transaction.Status `json:"status"`
	ChangedAt time.Time          `json:"changed_at"`
	ChangedBy string             `json:"changed_by"`
	Notes     string             `json:"notes,omitempty"`
}

type documentResponse struct {
	ID         uuid.UUID                `json:"id"`
	Name       string                   `json:"document_name"`
	URL        string                   `json:"document_url"`
	Type       transaction.DocumentType `json:"document_type,omitempty"`
	UploadedAt time.Time                `json:"uploaded_at"`
	UploadedBy string                   `json:"uploaded_by,omitempty"`
}

type detailsResponse struct {
	transactionResponse
	History   []historyEntryResponse `json:"history"`
	Documents []documentResponse     `json:"documents"`
}

type listingResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	TotalCount   int                   `json:"total_count"`
	HasMore      bool                  `json:"has_more"`
}

type statsResponse struct {
	Total           int             `json:"total"`
	Draft           int             `json:"draft"`
	Pending         int             `json:"pending"`
	Approved        int             `json:"approved"`
	Rejected        int             `json:"rejected"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

type adminStatsResponse struct {
	Total           int             `json:"total"`
	PendingReview   int             `json:"pending_review"`
	PendingApproval int             `json:"pending_approval"`
	Approved        int             `json:"approved"`
	Rejected        int             `json:"rejected"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		AgentID:    tx.AgentID,
		MarketType: tx.MarketType,
		Type:       tx.Type,
		Date:       tx.Date,
		Property: propertyDetailsResponse{
			Name:      tx.Property.Name,
			Type:      tx.Property.Type,
			Address:   tx.Property.Address,
			Developer: tx.Property.Developer,
			Project:   tx.Property.Project,
			SizeSqft:  tx.Property.SizeSqft,
			Bedrooms:  tx.Property.Bedrooms,
			Bathrooms: tx.Property.Bathrooms,
		},
		ClientName:           tx.ClientName,
		ClientEmail:          tx.ClientEmail,
		ClientPhone:          tx.ClientPhone,
		ClientType:           tx.ClientType,
		ClientIDNumber:       tx.ClientIDNumber,
		CoBrokingType:        tx.CoBroking.Type,
		CoBrokingAgentName:   tx.CoBroking.AgentName,
		CoBrokingAgencyName:  tx.CoBroking.AgencyName,
		CoBrokingAgentREN:    tx.CoBroking.AgentREN,
		TotalPrice:           tx.TotalPrice,
		AnnualRent:           tx.AnnualRent,
		CommissionValue:      tx.CommissionValue,
		CommissionType:       tx.CommissionType,
		CommissionPercentage: tx.CommissionPercentage,
		Notes:                tx.Notes,
		ReviewNotes:          tx.ReviewNotes,
		Status:               tx.Status,
		CreatedAt:            tx.CreatedAt,
		UpdatedAt:            tx.UpdatedAt,
	}
}

func toListingResponse(listing *transaction.Listing) listingResponse {
	resp := listingResponse{
		Transactions: make([]transactionResponse, len(listing.Transactions)),
		TotalCount:   listing.TotalCount,
		HasMore:      listing.HasMore,
	}

	for i, tx := range listing.Transactions {
		resp.Transactions[i] = toResponse(tx)
	}

	return resp
}

func toDetailsResponse(details *transaction.Details) detailsResponse {
	resp := detailsResponse{
		transactionResponse: toResponse(details.Transaction),
		History:             make([]historyEntryResponse, len(details.History)),
		Documents:           make([]documentResponse, len(details.Documents)),
	}

	for i, entry := range details.History {
		resp.History[i] = historyEntryResponse{
			ID:        entry.ID,
			Status:    entry.Status,
			ChangedAt: entry.ChangedAt,
			ChangedBy: entry.ChangedBy,
			Notes:     entry.Notes,
		}
	}

	for i, doc := range details.Documents {
		resp.Documents[i] = documentResponse{
			ID:         doc.ID,
			Name:       doc.Name,
			URL:        doc.URL,
			Type:       doc.Type,
			UploadedAt: doc.UploadedAt,
			UploadedBy: doc.UploadedBy,
		}
	}

	return resp
}
