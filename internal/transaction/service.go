package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// CreateTransaction inserts the transaction and its initial history
	// entry in one atomic unit.
	CreateTransaction(ctx context.Context, tx *Transaction, entry *StatusHistoryEntry) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	CountTransactions(ctx context.Context, filter ListFilter) (int, error)

	// UpdateStatus applies the status change and appends its history entry
	// in one atomic unit, returning the updated record.
	UpdateStatus(ctx context.Context, change StatusChange) (*Transaction, error)

	// DeleteTransaction removes the transaction together with its history
	// and document rows in one atomic unit.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	ListHistory(ctx context.Context, transactionID uuid.UUID) ([]*StatusHistoryEntry, error)
	ListDocuments(ctx context.Context, transactionID uuid.UUID) ([]*Document, error)
	AddDocument(ctx context.Context, doc *Document) error
}

// Service implements the transaction status workflow. Every operation takes
// the caller identity supplied by the auth layer; ownership and role checks
// all funnel through checkAccess so no code path can skip them.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// agentStatusAllowlist is the set of target statuses a non-admin may request.
var agentStatusAllowlist = map[Status]bool{
	StatusDraft:         true,
	StatusPendingReview: true,
}

type CreateParams struct {
	MarketType     MarketType
	Type           Type
	Date           time.Time
	Property       PropertyDetails
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	ClientType     ClientType
	ClientIDNumber string
	CoBroking      CoBroking

	TotalPrice           decimal.Decimal
	AnnualRent           *decimal.Decimal
	CommissionValue      decimal.Decimal
	CommissionType       CommissionType
	CommissionPercentage *decimal.Decimal

	Notes string
}

// ListFilter narrows a listing or count query. Limit/Offset are ignored by
// counts.
type ListFilter struct {
	AgentID *string
	Status  *Status
	Search  string
	Limit   int
	Offset  int
}

// StatusChange is an atomic status update plus its audit entry.
type StatusChange struct {
	TransactionID uuid.UUID
	Status        Status
	ReviewNotes   *string
	ChangedBy     string
	Notes         string
}

// Listing is a page of transactions with pagination metadata.
type Listing struct {
	Transactions []*Transaction
	TotalCount   int
	HasMore      bool
}

// Details is a transaction with its audit history and documents.
type Details struct {
	Transaction *Transaction
	History     []*StatusHistoryEntry
	Documents   []*Document
}

// Stats are the agent dashboard aggregates over the caller's transactions.
type Stats struct {
	Total           int
	Draft           int
	Pending         int
	Approved        int
	Rejected        int
	TotalCommission decimal.Decimal
}

// AdminStats are the portal-wide dashboard aggregates.
type AdminStats struct {
	Total           int
	PendingReview   int
	PendingApproval int
	Approved        int
	Rejected        int
	TotalValue      decimal.Decimal
	TotalCommission decimal.Decimal
}

// Create records a new transaction in draft status. The transaction row and
// its initial history entry persist together or not at all.
func (s *Service) Create(ctx context.Context, caller auth.Identity, params CreateParams) (*Transaction, error) {
	tx := &Transaction{
		AgentID:              caller.UserID,
		MarketType:           params.MarketType,
		Type:                 params.Type,
		Date:                 params.Date,
		Property:             params.Property,
		ClientName:           params.ClientName,
		ClientEmail:          params.ClientEmail,
		ClientPhone:          params.ClientPhone,
		ClientType:           params.ClientType,
		ClientIDNumber:       params.ClientIDNumber,
		CoBroking:            params.CoBroking,
		TotalPrice:           params.TotalPrice,
		AnnualRent:           params.AnnualRent,
		CommissionValue:      params.CommissionValue,
		CommissionType:       params.CommissionType,
		CommissionPercentage: params.CommissionPercentage,
		Notes:                params.Notes,
		Status:               StatusDraft,
	}

	entry := &StatusHistoryEntry{
		Status:    StatusDraft,
		ChangedBy: caller.UserID,
		Notes:     "Transaction created",
	}

	if err := s.repo.CreateTransaction(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return tx, nil
}

// checkAccess fetches the transaction and enforces the shared visibility
// rule: admins see everything, agents see only their own. Absent and
// invisible transactions are indistinguishable to the caller.
func (s *Service) checkAccess(ctx context.Context, id uuid.UUID, caller auth.Identity) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && tx.AgentID != caller.UserID {
		return nil, ErrNotFound
	}

	return tx, nil
}

// Get returns the transaction with its status history (most recent first)
// and attached documents.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*Details, error) {
	tx, err := s.checkAccess(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	documents, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	return &Details{Transaction: tx, History: history, Documents: documents}, nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	default:
		return limit
	}
}

// ListMine pages through the caller's own transactions, newest first.
func (s *Service) ListMine(ctx context.Context, caller auth.Identity, status *Status, limit, offset int) (*Listing, error) {
	filter := ListFilter{
		AgentID: &caller.UserID,
		Status:  status,
		Limit:   clampLimit(limit),
		Offset:  max(offset, 0),
	}

	return s.list(ctx, filter)
}

// AdminListFilter narrows the portal-wide listing.
type AdminListFilter struct {
	Status  *Status
	AgentID *string
	Search  string
	Limit   int
	Offset  int
}

// ListAll pages through every transaction in the portal. Admin only.
func (s *Service) ListAll(ctx context.Context, caller auth.Identity, params AdminListFilter) (*Listing, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	filter := ListFilter{
		AgentID: params.AgentID,
		Status:  params.Status,
		Search:  params.Search,
		Limit:   clampLimit(params.Limit),
		Offset:  max(params.Offset, 0),
	}

	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter ListFilter) (*Listing, error) {
	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	total, err := s.repo.CountTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}

	return &Listing{
		Transactions: txs,
		TotalCount:   total,
		HasMore:      filter.Offset+filter.Limit < total,
	}, nil
}

// UpdateStatus is the agent-facing status transition. Non-admin callers may
// only request draft or pending_review; pending_review is reachable only
// from draft. Requesting the current status is a no-op that returns the
// unchanged record and appends nothing.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status Status, note string) (*Transaction, error) {
	if !caller.IsAdmin() && !agentStatusAllowlist[status] {
		return nil, ErrForbidden
	}

	tx, err := s.checkAccess(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if tx.Status == status {
		return tx, nil
	}

	if status == StatusPendingReview && tx.Status != StatusDraft {
		return nil, fmt.Errorf("%w: cannot submit %s transaction for review", ErrInvalidTransition, tx.Status)
	}

	if note == "" {
		note = fmt.Sprintf("Status changed to %s", status)
	}

	updated, err := s.repo.UpdateStatus(ctx, StatusChange{
		TransactionID: id,
		Status:        status,
		ChangedBy:     caller.UserID,
		Notes:         note,
	})
	if err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	return updated, nil
}

// AdminUpdateStatus is the unrestricted transition path. The review note,
// when present, is preferred over the general note both on the record and
// in the history entry.
func (s *Service) AdminUpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status Status, note, reviewNote string) (*Transaction, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	tx, err := s.checkAccess(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if tx.Status == status {
		return tx, nil
	}

	historyNote := note
	if reviewNote != "" {
		historyNote = reviewNote
	}

	if historyNote == "" {
		historyNote = fmt.Sprintf("Status changed to %s", status)
	}

	updated, err := s.repo.UpdateStatus(ctx, StatusChange{
		TransactionID: id,
		Status:        status,
		ReviewNotes:   &historyNote,
		ChangedBy:     caller.UserID,
		Notes:         historyNote,
	})
	if err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	return updated, nil
}

// SubmitForReview moves the caller's own draft into pending_review.
func (s *Service) SubmitForReview(ctx context.Context, caller auth.Identity, id uuid.UUID) (*Transaction, error) {
	tx, err := s.checkAccess(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if tx.AgentID != caller.UserID {
		return nil, ErrForbidden
	}

	if tx.Status != StatusDraft {
		return nil, fmt.Errorf("%w: cannot submit %s transaction for review", ErrInvalidTransition, tx.Status)
	}

	updated, err := s.repo.UpdateStatus(ctx, StatusChange{
		TransactionID: id,
		Status:        StatusPendingReview,
		ChangedBy:     caller.UserID,
		Notes:         "Submitted for review",
	})
	if err != nil {
		return nil, fmt.Errorf("submitting for review: %w", err)
	}

	return updated, nil
}

// Delete removes a transaction and, in the same atomic unit, its history
// and document rows. Agents may delete only their own drafts; admins may
// delete anything.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	tx, err := s.checkAccess(ctx, id, caller)
	if err != nil {
		return err
	}

	if !caller.IsAdmin() && tx.Status != StatusDraft {
		return fmt.Errorf("%w: can only delete draft transactions", ErrForbidden)
	}

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

type DocumentParams struct {
	Name string
	URL  string
	Type DocumentType
}

// AttachDocument records attachment metadata against a transaction the
// caller can access.
func (s *Service) AttachDocument(ctx context.Context, caller auth.Identity, id uuid.UUID, params DocumentParams) (*Document, error) {
	if _, err := s.checkAccess(ctx, id, caller); err != nil {
		return nil, err
	}

	doc := &Document{
		TransactionID: id,
		Name:          params.Name,
		URL:           params.URL,
		Type:          params.Type,
		UploadedBy:    caller.UserID,
	}

	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("adding document: %w", err)
	}

	return doc, nil
}

// Stats aggregates the caller's transactions for the agent dashboard.
// Commission totals count approved transactions only.
func (s *Service) Stats(ctx context.Context, caller auth.Identity) (*Stats, error) {
	txs, err := s.repo.ListTransactions(ctx, ListFilter{AgentID: &caller.UserID, Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	stats := &Stats{Total: len(txs)}

	for _, tx := range txs {
		switch tx.Status {
		case StatusDraft:
			stats.Draft++
		case StatusPendingReview, StatusPendingApproval:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
			stats.TotalCommission = stats.TotalCommission.Add(tx.CommissionValue)
		case StatusRejected:
			stats.Rejected++
		}
	}

	return stats, nil
}

// AdminStats aggregates every transaction for the admin dashboard. Value
// and commission totals count approved transactions only.
func (s *Service) AdminStats(ctx context.Context, caller auth.Identity) (*AdminStats, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	txs, err := s.repo.ListTransactions(ctx, ListFilter{Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	stats := &AdminStats{Total: len(txs)}

	for _, tx := range txs {
		switch tx.Status {
		case StatusPendingReview:
			stats.PendingReview++
		case StatusPendingApproval:
			stats.PendingApproval++
		case StatusApproved:
			stats.Approved++
			stats.TotalValue = stats.TotalValue.Add(tx.TotalPrice)
			stats.TotalCommission = stats.TotalCommission.Add(tx.CommissionValue)
		case StatusRejected:
			stats.Rejected++
		}
	}

	return stats, nil
}
