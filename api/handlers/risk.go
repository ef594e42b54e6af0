package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/openalpha/lend-dex/api/types"
)

// RiskHandler handles health and liquidation HTTP requests
type RiskHandler struct {
	service types.RiskService
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(service types.RiskService) *RiskHandler {
	return &RiskHandler{service: service}
}

// HandleHealth handles GET /v1/health/{account_id}
func (h *RiskHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	accountID := strings.TrimPrefix(r.URL.Path, "/v1/health/")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing_account", "account_id is required")
		return
	}

	health, err := h.service.GetHealth(r.Context(), accountID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "account_not_found", err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "get_health_failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, health)
}

// HandleLiquidations handles GET /v1/liquidations
func (h *RiskHandler) HandleLiquidations(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 1000 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be in [1, 1000]")
			return
		}
		limit = parsed
	}

	liquidations, err := h.service.ListLiquidations(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_liquidations_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"liquidations": liquidations,
		"total":        len(liquidations),
	})
}
