package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openalpha/lend-dex/api/types"
)

// BankHandler handles bank-related HTTP requests
type BankHandler struct {
	service types.BankService
}

// NewBankHandler creates a new bank handler
func NewBankHandler(service types.BankService) *BankHandler {
	return &BankHandler{service: service}
}

// HandleBanks handles GET /v1/banks
func (h *BankHandler) HandleBanks(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	banks, err := h.service.ListBanks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_banks_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"banks": banks,
		"total": len(banks),
	})
}

// HandleBank handles GET /v1/banks/{bank_id} and /v1/banks/{bank_id}/rates
func (h *BankHandler) HandleBank(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	// Path: /v1/banks/{bank_id} or /v1/banks/{bank_id}/rates
	path := strings.TrimPrefix(r.URL.Path, "/v1/banks/")
	parts := strings.Split(path, "/")
	bankID := parts[0]
	if bankID == "" {
		writeError(w, http.StatusBadRequest, "missing_bank", "bank_id is required")
		return
	}

	bank, err := h.service.GetBank(r.Context(), bankID)
	if err != nil {
		writeError(w, http.StatusNotFound, "bank_not_found", err.Error())
		return
	}

	if len(parts) > 1 && parts[1] == "rates" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"bank_id":       bank.BankID,
			"utilization":   bank.Utilization,
			"lending_apr":   bank.LendingApr,
			"borrowing_apr": bank.BorrowingApr,
			"updated_at":    bank.UpdatedAt,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"bank": bank})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
