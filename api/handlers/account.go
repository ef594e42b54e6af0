package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openalpha/lend-dex/api/types"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	service types.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(service types.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// HandleAccount handles /v1/account endpoint (GET for account info)
func (h *AccountHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getAccount(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}

// HandleDeposit handles POST /v1/account/deposit
func (h *AccountHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if !requireOperationFields(w, r, &req.Authority, req.AccountID, req.BankID) {
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "missing_amount", "amount is required")
		return
	}

	resp, err := h.service.Deposit(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "deposit_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleWithdraw handles POST /v1/account/withdraw
func (h *AccountHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if !requireOperationFields(w, r, &req.Authority, req.AccountID, req.BankID) {
		return
	}
	if req.Amount == "" && !req.WithdrawAll {
		writeError(w, http.StatusBadRequest, "missing_amount", "amount is required unless withdraw_all is set")
		return
	}

	resp, err := h.service.Withdraw(r.Context(), &req)
	if err != nil {
		writeOperationError(w, "withdraw_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleBorrow handles POST /v1/account/borrow
func (h *AccountHandler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if !requireOperationFields(w, r, &req.Authority, req.AccountID, req.BankID) {
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "missing_amount", "amount is required")
		return
	}

	resp, err := h.service.Borrow(r.Context(), &req)
	if err != nil {
		writeOperationError(w, "borrow_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRepay handles POST /v1/account/repay
func (h *AccountHandler) HandleRepay(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.RepayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	if !requireOperationFields(w, r, &req.Authority, req.AccountID, req.BankID) {
		return
	}
	if req.Amount == "" && !req.RepayAll {
		writeError(w, http.StatusBadRequest, "missing_amount", "amount is required unless repay_all is set")
		return
	}

	resp, err := h.service.Repay(r.Context(), &req)
	if err != nil {
		writeOperationError(w, "repay_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// getAccount handles GET /v1/account
func (h *AccountHandler) getAccount(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing_account", "account_id is required")
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "account_not_found", err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "get_account_failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"account": account})
}

// requireOperationFields validates the common fields of a balance
// operation, filling the authority from the header when absent
func requireOperationFields(w http.ResponseWriter, r *http.Request, authority *string, accountID, bankID string) bool {
	if *authority == "" {
		*authority = r.Header.Get("X-Authority-Address")
	}
	if *authority == "" {
		writeError(w, http.StatusBadRequest, "missing_authority", "authority address is required")
		return false
	}
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing_account", "account_id is required")
		return false
	}
	if bankID == "" {
		writeError(w, http.StatusBadRequest, "missing_bank", "bank_id is required")
		return false
	}
	return true
}

// writeOperationError maps a service error to an HTTP status by message
func writeOperationError(w http.ResponseWriter, code string, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		writeError(w, http.StatusNotFound, "not_found", msg)
	case strings.Contains(msg, "unauthorized"):
		writeError(w, http.StatusForbidden, "unauthorized", msg)
	default:
		writeError(w, http.StatusBadRequest, code, msg)
	}
}
