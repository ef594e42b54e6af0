package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openalpha/lend-dex/api"
	"github.com/openalpha/lend-dex/api/handlers"
	"github.com/openalpha/lend-dex/api/types"
)

// TestHandleBanks tests the bank list endpoint
func TestHandleBanks(t *testing.T) {
	h := handlers.NewBankHandler(api.NewMockService())

	req := httptest.NewRequest(http.MethodGet, "/v1/banks", nil)
	rec := httptest.NewRecorder()
	h.HandleBanks(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Banks []*types.Bank `json:"banks"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 || len(resp.Banks) != 2 {
		t.Errorf("expected 2 banks, got total=%d len=%d", resp.Total, len(resp.Banks))
	}
}

// TestHandleBanksMethodNotAllowed tests the method guard
func TestHandleBanksMethodNotAllowed(t *testing.T) {
	h := handlers.NewBankHandler(api.NewMockService())

	req := httptest.NewRequest(http.MethodPost, "/v1/banks", nil)
	rec := httptest.NewRecorder()
	h.HandleBanks(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

// TestHandleBank tests the single-bank and rates endpoints
func TestHandleBank(t *testing.T) {
	h := handlers.NewBankHandler(api.NewMockService())

	req := httptest.NewRequest(http.MethodGet, "/v1/banks/usdc", nil)
	rec := httptest.NewRecorder()
	h.HandleBank(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Bank *types.Bank `json:"bank"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Bank.BankID != "usdc" || resp.Bank.Denom != "uusdc" {
		t.Errorf("expected usdc bank, got %+v", resp.Bank)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/banks/usdc/rates", nil)
	rec = httptest.NewRecorder()
	h.HandleBank(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var rates map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &rates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rates["bank_id"] != "usdc" {
		t.Errorf("expected rates for usdc, got %v", rates["bank_id"])
	}
	if _, ok := rates["lending_apr"]; !ok {
		t.Error("expected lending_apr in rates response")
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/banks/no-such-bank", nil)
	rec = httptest.NewRecorder()
	h.HandleBank(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

// TestHandleDeposit tests the deposit endpoint against the mock service
func TestHandleDeposit(t *testing.T) {
	h := handlers.NewAccountHandler(api.NewMockService())

	body, _ := json.Marshal(&types.DepositRequest{
		Authority: "authority-1",
		AccountID: "acc-1",
		BankID:    "usdc",
		Amount:    "100",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/account/deposit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleDeposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp types.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Account.Balances) != 1 || resp.Account.Balances[0].Assets != "100" {
		t.Errorf("expected single balance of 100, got %+v", resp.Account.Balances)
	}
}

// TestHandleDepositValidation tests the deposit request guards
func TestHandleDepositValidation(t *testing.T) {
	testCases := []struct {
		name string
		req  *types.DepositRequest
	}{
		{name: "missing amount", req: &types.DepositRequest{Authority: "a", AccountID: "acc", BankID: "usdc"}},
		{name: "unknown bank", req: &types.DepositRequest{Authority: "a", AccountID: "acc", BankID: "nope", Amount: "10"}},
		{name: "bad amount", req: &types.DepositRequest{Authority: "a", AccountID: "acc", BankID: "usdc", Amount: "-5"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := handlers.NewAccountHandler(api.NewMockService())
			body, _ := json.Marshal(tc.req)
			req := httptest.NewRequest(http.MethodPost, "/v1/account/deposit", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			h.HandleDeposit(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}
