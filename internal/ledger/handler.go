package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campus-ledger/campus/internal/platform/httpx"
)

// Handler exposes the chart of accounts and journal engine over JSON.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the ledger HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes attaches ledger routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/account-types", func(r chi.Router) {
		r.Get("/", h.ListAccountTypes)
		r.Post("/", h.CreateAccountType)
		r.Get("/{id}", h.GetAccountType)
		r.Put("/{id}", h.UpdateAccountType)
		r.Post("/{id}/archive", h.ArchiveAccountType)
	})
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Post("/{id}/archive", h.ArchiveAccount)
	})
	r.Route("/journal-entries", func(r chi.Router) {
		r.Get("/", h.ListEntries)
		r.Post("/", h.CreateEntry)
		r.Get("/{id}", h.GetEntry)
		r.Post("/{id}/reverse", h.ReverseEntry)
	})
	r.Get("/transactions", h.ListTransactions)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrTypeNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyReversed),
		errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrSourceAlreadyLinked):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnbalanced):
		httpx.Problem(w, http.StatusBadRequest, "Unbalanced Journal", err.Error())
	case errors.Is(err, ErrTooFewLines),
		errors.Is(err, ErrNormalBalanceLocked),
		errors.Is(err, ErrAccountArchived):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("ledger request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) ListAccountTypes(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	types, err := h.service.ListAccountTypes(r.Context(), includeArchived)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]accountTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, toAccountTypeResponse(t))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAccountType(w http.ResponseWriter, r *http.Request) {
	var req accountTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.CreateAccountType(r.Context(), AccountTypeInput{
		Name:          req.Name,
		NormalBalance: NormalBalance(req.NormalBalance),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountTypeResponse(created))
}

func (h *Handler) GetAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account type id must be numeric")
		return
	}
	t, err := h.service.GetAccountType(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountTypeResponse(t))
}

func (h *Handler) UpdateAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account type id must be numeric")
		return
	}
	var req accountTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	updated, err := h.service.UpdateAccountType(r.Context(), id, AccountTypeInput{
		Name:          req.Name,
		NormalBalance: NormalBalance(req.NormalBalance),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountTypeResponse(updated))
}

func (h *Handler) ArchiveAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account type id must be numeric")
		return
	}
	if err := h.service.ArchiveAccountType(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	accounts, err := h.service.ListAccounts(r.Context(), includeArchived)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAccount(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateAccount(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(created))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	a, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(a))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	req, ok := h.decodeAccount(w, r)
	if !ok {
		return
	}
	updated, err := h.service.UpdateAccount(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(updated))
}

func (h *Handler) ArchiveAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	if err := h.service.ArchiveAccount(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeAccount(w http.ResponseWriter, r *http.Request) (AccountInput, bool) {
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return AccountInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return AccountInput{}, false
	}
	input := AccountInput{
		Code:      req.Code,
		Name:      req.Name,
		TypeID:    req.TypeID,
		IsDefault: req.IsDefault,
	}
	if req.CashFlowSection != nil {
		section := CashFlowSection(*req.CashFlowSection)
		input.CashFlowSection = &section
	}
	return input, true
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListEntries(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]journalEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toJournalEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req journalEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toJournalEntryResponse(entry))
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "journal entry id must be numeric")
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toJournalEntryResponse(entry))
}

func (h *Handler) ReverseEntry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "journal entry id must be numeric")
		return
	}
	var req struct {
		ActorID int64 `json:"actor_id"`
	}
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
			return
		}
	}
	reversal, err := h.service.ReverseEntry(r.Context(), id, req.ActorID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toJournalEntryResponse(reversal))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter TransactionFilter
	q := r.URL.Query()
	if raw := q.Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "account_id must be numeric")
			return
		}
		filter.AccountID = &id
	}
	filter.Reference = q.Get("reference")
	if raw := q.Get("is_debit"); raw != "" {
		isDebit, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "is_debit must be true or false")
			return
		}
		filter.IsDebit = &isDebit
	}
	lines, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, toTransactionResponse(line))
	}
	httpx.JSON(w, http.StatusOK, out)
}
