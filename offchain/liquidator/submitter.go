package liquidator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	liqtypes "github.com/openalpha/lend-dex/x/liquidation/types"
)

// TxSubmitter defines the interface for submitting transactions to the chain
type TxSubmitter interface {
	// SubmitLiquidations submits a batch of liquidation candidates
	SubmitLiquidations(ctx context.Context, candidates []*Candidate) error

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	PendingTxCount    int
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// MockSubmitter is a mock implementation for testing
type MockSubmitter struct {
	mu              sync.Mutex
	candidates      []*Candidate
	status          SubmitterStatus
	simulateFailure bool
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		candidates: make([]*Candidate, 0),
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

// SubmitLiquidations submits candidates (mock implementation)
func (s *MockSubmitter) SubmitLiquidations(ctx context.Context, candidates []*Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateFailure {
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return fmt.Errorf("simulated failure")
	}

	s.candidates = append(s.candidates, candidates...)
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()

	log.Printf("[MockSubmitter] Submitted %d liquidations", len(candidates))
	for _, c := range candidates {
		log.Printf("  Liquidation: account=%s asset_bank=%s liability_bank=%s amount=%d",
			c.LiquidateeAccount, c.AssetBankID, c.LiabilityBankID, c.AssetAmount)
	}

	return nil
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// GetSubmittedCandidates returns all submitted candidates (for testing)
func (s *MockSubmitter) GetSubmittedCandidates() []*Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*Candidate, len(s.candidates))
	copy(result, s.candidates)
	return result
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}

// Clear clears all submitted data (for testing)
func (s *MockSubmitter) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = make([]*Candidate, 0)
}

// BatchSubmitter submits liquidations in batches to the chain
type BatchSubmitter struct {
	rpcURL        string
	liquidator    string
	liquidatorAcc string
	batchSize     int
	retryAttempts int
	retryDelay    time.Duration

	mu     sync.Mutex
	status SubmitterStatus
}

// BatchSubmitterConfig holds configuration for BatchSubmitter
type BatchSubmitterConfig struct {
	RPCURL            string
	Liquidator        string
	LiquidatorAccount string
	BatchSize         int
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultBatchSubmitterConfig returns default configuration
func DefaultBatchSubmitterConfig() *BatchSubmitterConfig {
	return &BatchSubmitterConfig{
		RPCURL:            "http://localhost:26657",
		Liquidator:        "liquidator",
		LiquidatorAccount: "liquidator-bot",
		BatchSize:         50,
		RetryAttempts:     3,
		RetryDelay:        time.Second,
	}
}

// NewBatchSubmitter creates a new batch submitter
func NewBatchSubmitter(config *BatchSubmitterConfig) *BatchSubmitter {
	if config == nil {
		config = DefaultBatchSubmitterConfig()
	}

	return &BatchSubmitter{
		rpcURL:        config.RPCURL,
		liquidator:    config.Liquidator,
		liquidatorAcc: config.LiquidatorAccount,
		batchSize:     config.BatchSize,
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

// SubmitLiquidations submits candidates in batches
func (s *BatchSubmitter) SubmitLiquidations(ctx context.Context, candidates []*Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	s.mu.Lock()
	s.status.PendingTxCount = len(candidates)
	s.mu.Unlock()

	// Split into batches
	for i := 0; i < len(candidates); i += s.batchSize {
		end := i + s.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[i:end]

		if err := s.submitBatchWithRetry(ctx, batch); err != nil {
			s.mu.Lock()
			s.status.FailedSubmissions++
			s.status.LastError = err.Error()
			s.mu.Unlock()
			return fmt.Errorf("failed to submit batch: %w", err)
		}
	}

	s.mu.Lock()
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	s.status.PendingTxCount = 0
	s.mu.Unlock()

	return nil
}

// submitBatchWithRetry submits a batch with retry logic
func (s *BatchSubmitter) submitBatchWithRetry(ctx context.Context, batch []*Candidate) error {
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if err := s.submitBatch(ctx, batch); err != nil {
			lastErr = err
			log.Printf("Batch submission attempt %d failed: %v", attempt+1, err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// submitBatch submits a single batch
func (s *BatchSubmitter) submitBatch(ctx context.Context, batch []*Candidate) error {
	// Prepare the transaction message
	msg := struct {
		Jsonrpc string        `json:"jsonrpc"`
		ID      int           `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params"`
	}{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "broadcast_tx_async",
		Params:  []interface{}{s.encodeCandidates(batch)},
	}

	// Log the submission (in production, this would be an actual RPC call)
	msgBytes, _ := json.Marshal(msg)
	log.Printf("[BatchSubmitter] Submitting batch of %d liquidations to %s", len(batch), s.rpcURL)
	log.Printf("[BatchSubmitter] Message: %s", string(msgBytes))

	// In a real implementation, we would:
	// 1. Create MsgLiquidate / MsgHandleBankruptcy transactions
	// 2. Sign the transactions
	// 3. Broadcast via RPC

	return nil
}

// encodeCandidates encodes candidates as the chain messages they become
func (s *BatchSubmitter) encodeCandidates(candidates []*Candidate) string {
	msgs := make([]interface{}, 0, len(candidates))
	for _, c := range candidates {
		if c.Bankrupt {
			msgs = append(msgs, &liqtypes.MsgHandleBankruptcy{
				Caller:    s.liquidator,
				AccountID: c.LiquidateeAccount,
				BankID:    c.LiabilityBankID,
			})
			continue
		}
		msgs = append(msgs, &liqtypes.MsgLiquidate{
			Liquidator:        s.liquidator,
			LiquidatorAccount: s.liquidatorAcc,
			LiquidateeAccount: c.LiquidateeAccount,
			AssetBankID:       c.AssetBankID,
			LiabilityBankID:   c.LiabilityBankID,
			AssetAmount:       c.AssetAmount,
		})
	}
	encoded, _ := json.Marshal(msgs)
	return string(encoded)
}

// GetStatus returns the submitter status
func (s *BatchSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetRPCURL updates the RPC URL
func (s *BatchSubmitter) SetRPCURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rpcURL = url
}

// SubmitterFactory creates submitters based on configuration
type SubmitterFactory struct{}

// NewSubmitterFactory creates a new submitter factory
func NewSubmitterFactory() *SubmitterFactory {
	return &SubmitterFactory{}
}

// Create creates a new submitter based on the type
func (f *SubmitterFactory) Create(submitterType string, config *BatchSubmitterConfig) TxSubmitter {
	switch submitterType {
	case "mock":
		return NewMockSubmitter()
	case "batch":
		return NewBatchSubmitter(config)
	default:
		return NewMockSubmitter()
	}
}
