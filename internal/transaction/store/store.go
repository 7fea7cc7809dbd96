package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.agent_id, t.market_type, t.transaction_type, t.transaction_date,
	t.property_details,
	t.client_name, t.client_email, t.client_phone, t.client_type, t.client_id_number,
	t.co_broking_type, t.co_broking_agent_name, t.co_broking_agency_name, t.co_broking_agent_ren,
	t.total_price, t.annual_rent, t.commission_value, t.commission_type, t.commission_percentage,
	t.notes, t.review_notes, t.status, t.created_at, t.updated_at
`

// scanTransaction reads one transaction row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var marketType, txType, statusStr string

	var propertyJSON []byte

	var clientType, coBrokingType, commissionType sql.NullString

	var coAgentName, coAgencyName, coAgentREN sql.NullString

	var annualRent, commissionPct decimal.NullDecimal

	var notes, reviewNotes sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.AgentID, &marketType, &txType, &tx.Date,
		&propertyJSON,
		&tx.ClientName, &tx.ClientEmail, &tx.ClientPhone, &clientType, &tx.ClientIDNumber,
		&coBrokingType, &coAgentName, &coAgencyName, &coAgentREN,
		&tx.TotalPrice, &annualRent, &tx.CommissionValue, &commissionType, &commissionPct,
		&notes, &reviewNotes, &statusStr, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.MarketType = transaction.MarketType(marketType)
	tx.Type = transaction.Type(txType)
	tx.Status = transaction.Status(statusStr)
	tx.ClientType = transaction.ClientType(clientType.String)
	tx.CoBroking = transaction.CoBroking{
		Type:       transaction.CoBrokingType(coBrokingType.String),
		AgentName:  coAgentName.String,
		AgencyName: coAgencyName.String,
		AgentREN:   coAgentREN.String,
	}
	tx.CommissionType = transaction.CommissionType(commissionType.String)
	tx.Notes = notes.String
	tx.ReviewNotes = reviewNotes.String

	if annualRent.Valid {
		tx.AnnualRent = &annualRent.Decimal
	}

	if commissionPct.Valid {
		tx.CommissionPercentage = &commissionPct.Decimal
	}

	if len(propertyJSON) > 0 {
		if err := json.Unmarshal(propertyJSON, &tx.Property); err != nil {
			return nil, fmt.Errorf("decoding property details: %w", err)
		}
	}

	return &tx, nil
}

// CreateTransaction inserts the transaction row and its initial history
// entry inside one database transaction.
func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction, entry *transaction.StatusHistoryEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	propertyJSON, err := json.Marshal(tx.Property)
	if err != nil {
		return fmt.Errorf("encoding property details: %w", err)
	}

	query := `
		INSERT INTO transactions (
			agent_id, market_type, transaction_type, transaction_date,
			property_details,
			client_name, client_email, client_phone, client_type, client_id_number,
			co_broking_type, co_broking_agent_name, co_broking_agency_name, co_broking_agent_ren,
			total_price, annual_rent, commission_value, commission_type, commission_percentage,
			notes, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		tx.AgentID, tx.MarketType, tx.Type, tx.Date,
		propertyJSON,
		tx.ClientName, tx.ClientEmail, tx.ClientPhone, nullEnum(string(tx.ClientType)), tx.ClientIDNumber,
		nullEnum(string(tx.CoBroking.Type)), tx.CoBroking.AgentName, tx.CoBroking.AgencyName, tx.CoBroking.AgentREN,
		tx.TotalPrice, nullDecimal(tx.AnnualRent), tx.CommissionValue, nullEnum(string(tx.CommissionType)), nullDecimal(tx.CommissionPercentage),
		tx.Notes, tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	entry.TransactionID = tx.ID

	if err := insertHistory(ctx, dbTx, entry); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// filterClause builds the WHERE clause shared by listing and counting.
func filterClause(filter transaction.ListFilter) (string, []any) {
	clause := " WHERE 1=1"

	var args []any

	argIdx := 1

	if filter.AgentID != nil {
		clause += fmt.Sprintf(" AND t.agent_id = $%d", argIdx)

		args = append(args, *filter.AgentID)
		argIdx++
	}

	if filter.Status != nil {
		clause += fmt.Sprintf(" AND t.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		clause += fmt.Sprintf(
			" AND (t.client_name ILIKE $%[1]d OR t.client_email ILIKE $%[1]d"+
				" OR t.property_details->>'name' ILIKE $%[1]d OR t.property_details->>'address' ILIKE $%[1]d)",
			argIdx,
		)

		args = append(args, "%"+filter.Search+"%")
	}

	return clause, args
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	clause, args := filterClause(filter)

	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t` + clause +
		" ORDER BY t.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) CountTransactions(ctx context.Context, filter transaction.ListFilter) (int, error) {
	clause, args := filterClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions t"+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return total, nil
}

// UpdateStatus applies the status change and appends its history entry
// inside one database transaction. The updated record is returned.
func (s *Store) UpdateStatus(ctx context.Context, change transaction.StatusChange) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE transactions t
		SET status = $1, review_notes = COALESCE($2, review_notes), updated_at = NOW()
		WHERE t.id = $3
		RETURNING ` + selectTransactionColumns

	updated, err := scanTransaction(dbTx.QueryRowContext(ctx, query, change.Status, change.ReviewNotes, change.TransactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("updating status: %w", err)
	}

	entry := &transaction.StatusHistoryEntry{
		TransactionID: change.TransactionID,
		Status:        change.Status,
		ChangedBy:     change.ChangedBy,
		Notes:         change.Notes,
	}

	if err := insertHistory(ctx, dbTx, entry); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return updated, nil
}

func insertHistory(ctx context.Context, dbTx *sql.Tx, entry *transaction.StatusHistoryEntry) error {
	query := `
		INSERT INTO transaction_status_history (transaction_id, status, changed_by, notes, changed_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, changed_at
	`

	err := dbTx.QueryRowContext(ctx, query,
		entry.TransactionID, entry.Status, entry.ChangedBy, entry.Notes,
	).Scan(&entry.ID, &entry.ChangedAt)
	if err != nil {
		return fmt.Errorf("inserting status history: %w", err)
	}

	return nil
}

// DeleteTransaction removes the transaction and its child rows. History and
// documents go first so a partial cascade can never be observed.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM transaction_status_history WHERE transaction_id = $1", id); err != nil {
		return fmt.Errorf("deleting status history: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM transaction_documents WHERE transaction_id = $1", id); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return nil
}

func (s *Store) ListHistory(ctx context.Context, transactionID uuid.UUID) ([]*transaction.StatusHistoryEntry, error) {
	query := `
		SELECT id, transaction_id, status, changed_at, changed_by, notes
		FROM transaction_status_history
		WHERE transaction_id = $1
		ORDER BY changed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []*transaction.StatusHistoryEntry

	for rows.Next() {
		var entry transaction.StatusHistoryEntry

		var statusStr string

		var notes sql.NullString

		if err := rows.Scan(&entry.ID, &entry.TransactionID, &statusStr, &entry.ChangedAt, &entry.ChangedBy, &notes); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}

		entry.Status = transaction.Status(statusStr)
		entry.Notes = notes.String

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return entries, nil
}

func (s *Store) ListDocuments(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Document, error) {
	query := `
		SELECT id, transaction_id, document_name, document_url, document_type, uploaded_at, uploaded_by
		FROM transaction_documents
		WHERE transaction_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*transaction.Document

	for rows.Next() {
		var doc transaction.Document

		var docType sql.NullString

		if err := rows.Scan(&doc.ID, &doc.TransactionID, &doc.Name, &doc.URL, &docType, &doc.UploadedAt, &doc.UploadedBy); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.Type = transaction.DocumentType(docType.String)

		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}

func (s *Store) AddDocument(ctx context.Context, doc *transaction.Document) error {
	query := `
		INSERT INTO transaction_documents (transaction_id, document_name, document_url, document_type, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, uploaded_at
	`

	err := s.db.QueryRowContext(ctx, query,
		doc.TransactionID, doc.Name, doc.URL, nullEnum(string(doc.Type)), doc.UploadedBy,
	).Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("adding document: %w", err)
	}

	return nil
}

// nullDecimal maps a missing value to SQL NULL.
func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(*d)
}

// nullEnum maps an unset enum value to SQL NULL; Postgres enum columns
// reject empty strings.
func nullEnum(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
