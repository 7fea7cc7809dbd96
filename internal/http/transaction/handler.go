package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk/internal/auth"
	"github.com/dealdesk/dealdesk/internal/form"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

type Handler struct {
	svc      *transaction.Service
	validate *validator.Validate
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes mounts the agent-facing transaction endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.listMine)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/status", h.updateStatus)
	r.Post("/{id}/submit", h.submitForReview)
	r.Post("/{id}/documents", h.attachDocument)
}

// AdminRoutes mounts the admin-only endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/transactions", h.listAll)
	r.Patch("/transactions/{id}/status", h.adminUpdateStatus)
	r.Get("/stats", h.adminStats)
}

// StatsRoutes mounts the agent dashboard aggregates.
func (h *Handler) StatsRoutes(r chi.Router) {
	r.Get("/", h.stats)
}

// writeServiceError maps the domain error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, transaction.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func callerIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return auth.Identity{}, false
	}

	return identity, true
}

type propertyDetailsRequest struct {
	Name      string `json:"name" validate:"required"`
	Type      string `json:"type"`
	Address   string `json:"address"`
	Developer string `json:"developer"`
	Project   string `json:"project"`
	SizeSqft  int    `json:"size_sqft"`
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
}

type createTransactionRequest struct {
	MarketType      string    `json:"market_type" validate:"required,oneof=primary secondary"`
	TransactionType string    `json:"transaction_type" validate:"required,oneof=sale lease"`
	TransactionDate time.Time `json:"transaction_date" validate:"required"`

	Property propertyDetailsRequest `json:"property_details" validate:"required"`

	ClientName     string `json:"client_name" validate:"required"`
	ClientEmail    string `json:"client_email" validate:"required,email"`
	ClientPhone    string `json:"client_phone" validate:"required"`
	ClientType     string `json:"client_type" validate:"required,oneof=buyer seller tenant landlord"`
	ClientIDNumber string `json:"client_id_number" validate:"required"`

	CoBrokingType       string `json:"co_broking_type" validate:"required,oneof=direct co_broke"`
	CoBrokingAgentName  string `json:"co_broking_agent_name"`
	CoBrokingAgencyName string `json:"co_broking_agency_name"`
	CoBrokingAgentREN   string `json:"co_broking_agent_ren"`

	TotalPrice           decimal.Decimal  `json:"total_price"`
	AnnualRent           *decimal.Decimal `json:"annual_rent"`
	CommissionValue      decimal.Decimal  `json:"commission_value"`
	CommissionType       string           `json:"commission_type" validate:"required,oneof=percentage fixed_amount fixed"`
	CommissionPercentage *decimal.Decimal `json:"commission_percentage"`

	Notes string `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), identity, transaction.CreateParams{
		MarketType: transaction.MarketType(req.MarketType),
		Type:       transaction.Type(req.TransactionType),
		Date:       req.TransactionDate,
		Property: transaction.PropertyDetails{
			Name:      req.Property.Name,
			Type:      req.Property.Type,
			Address:   req.Property.Address,
			Developer: req.Property.Developer,
			Project:   req.Property.Project,
			SizeSqft:  req.Property.SizeSqft,
			Bedrooms:  req.Property.Bedrooms,
			Bathrooms: req.Property.Bathrooms,
		},
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		ClientPhone:    req.ClientPhone,
		ClientType:     transaction.ClientType(req.ClientType),
		ClientIDNumber: req.ClientIDNumber,
		CoBroking: transaction.CoBroking{
			Type:       transaction.CoBrokingType(req.CoBrokingType),
			AgentName:  req.CoBrokingAgentName,
			AgencyName: req.CoBrokingAgencyName,
			AgentREN:   req.CoBrokingAgentREN,
		},
		TotalPrice:           req.TotalPrice,
		AnnualRent:           req.AnnualRent,
		CommissionValue:      req.CommissionValue,
		CommissionType:       form.NormalizeCommissionType(transaction.CommissionType(req.CommissionType)),
		CommissionPercentage: req.CommissionPercentage,
		Notes:                req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func parsePage(r *http.Request) (limit, offset int) {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			offset = n
		}
	}

	return limit, offset
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var status *transaction.Status

	if s := r.URL.Query().Get("status"); s != "" {
		parsed := transaction.Status(s)
		if !parsed.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		status = &parsed
	}

	limit, offset := parsePage(r)

	listing, err := h.svc.ListMine(r.Context(), identity, status, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	params := transaction.AdminListFilter{Search: r.URL.Query().Get("search")}

	if s := r.URL.Query().Get("status"); s != "" {
		parsed := transaction.Status(s)
		if !parsed.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		params.Status = &parsed
	}

	if s := r.URL.Query().Get("agent_id"); s != "" {
		params.AgentID = &s
	}

	params.Limit, params.Offset = parsePage(r)

	listing, err := h.svc.ListAll(r.Context(), identity, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	details, err := h.svc.Get(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailsResponse(details))
}

type updateStatusRequest struct {
	Status transaction.Status `json:"status" validate:"required"`
	Notes  string             `json:"notes"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !req.Status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.UpdateStatus(r.Context(), identity, id, req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

type adminUpdateStatusRequest struct {
	Status      transaction.Status `json:"status" validate:"required"`
	Notes       string             `json:"notes" validate:"required"`
	ReviewNotes string             `json:"review_notes"`
}

func (h *Handler) adminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req adminUpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.AdminUpdateStatus(r.Context(), identity, id, req.Status, req.Notes, req.ReviewNotes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) submitForReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.SubmitForReview(r.Context(), identity, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), identity, id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type attachDocumentRequest struct {
	Name string `json:"document_name" validate:"required"`
	URL  string `json:"document_url" validate:"required,url"`
	Type string `json:"document_type" validate:"omitempty,oneof=agreement kyc payment_proof title_deed spa moi other"`
}

func (h *Handler) attachDocument(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req attachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.AttachDocument(r.Context(), identity, id, transaction.DocumentParams{
		Name: req.Name,
		URL:  req.URL,
		Type: transaction.DocumentType(req.Type),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		URL:        doc.URL,
		Type:       doc.Type,
		UploadedAt: doc.UploadedAt,
		UploadedBy: doc.UploadedBy,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(r.Context(), identity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Total:           stats.Total,
		Draft:           stats.Draft,
		Pending:         stats.Pending,
		Approved:        stats.Approved,
		Rejected:        stats.Rejected,
		TotalCommission: stats.TotalCommission,
	})
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.AdminStats(r.Context(), identity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminStatsResponse{
		Total:           stats.Total,
		PendingReview:   stats.PendingReview,
		PendingApproval: stats.PendingApproval,
		Approved:        stats.Approved,
		Rejected:        stats.Rejected,
		TotalValue:      stats.TotalValue,
		TotalCommission: stats.TotalCommission,
	})
}
