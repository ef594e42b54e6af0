package liquidator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// Config holds the liquidator configuration
type Config struct {
	BatchSize     int           // Maximum liquidations per batch submission
	BatchInterval time.Duration // Time interval for batch submission
	ScanInterval  time.Duration // Time interval for full account scans
	Cooldown      time.Duration // Minimum delay before re-flagging an account
	WebSocketURL  string        // WebSocket URL for event listening
	ChainRPCURL   string        // Chain RPC URL for submission

	// LiquidatorAccount is the account that takes on seized collateral
	// and discounted debt
	LiquidatorAccount string

	// CloseFactor caps how much of a liability one liquidation targets
	CloseFactor string
}

// DefaultConfig returns the default liquidator configuration
func DefaultConfig() *Config {
	return &Config{
		BatchSize:         50,
		BatchInterval:     500 * time.Millisecond,
		ScanInterval:      2 * time.Second,
		Cooldown:          30 * time.Second,
		WebSocketURL:      "ws://localhost:26657/websocket",
		ChainRPCURL:       "http://localhost:26657",
		LiquidatorAccount: "liquidator-bot",
		CloseFactor:       "0.5",
	}
}

// Candidate is one executable liquidation opportunity found by a scan
type Candidate struct {
	LiquidateeAccount string
	AssetBankID       string
	LiabilityBankID   string
	// AssetAmount is the collateral to seize, in asset bank native units
	AssetAmount uint64
	// Shortfall is the maintenance health deficit (negative value) in USD
	Shortfall types.I80F48
	// Bankrupt marks an account past liquidation, needing settlement
	Bankrupt   bool
	DetectedAt time.Time
}

// Liquidator watches accounts and oracle prices off-chain, flags accounts
// below maintenance requirements and submits liquidations in batches
type Liquidator struct {
	config     *Config
	accounts   *AccountCache
	banks      *BankCache
	candidates *CandidateBuffer
	submitter  TxSubmitter

	closeFactor types.I80F48

	// lastFlagged throttles repeated candidates for the same account
	lastFlagged map[string]time.Time
	mu          sync.RWMutex

	// Event channel for simulated WebSocket events
	eventCh chan Event

	// Control channels
	stopCh chan struct{}
	wg     sync.WaitGroup

	scansCompleted int64
}

// Event represents an incoming event from the chain
type Event struct {
	Type      EventType
	Account   *types.Account
	Bank      *types.Bank
	BankID    string
	Price     types.I80F48
	Timestamp time.Time
}

// EventType represents the type of chain event
type EventType int

const (
	EventTypeAccountUpdate EventType = iota
	EventTypeBankUpdate
	EventTypePriceUpdate
)

func (e EventType) String() string {
	switch e {
	case EventTypeAccountUpdate:
		return "account_update"
	case EventTypeBankUpdate:
		return "bank_update"
	case EventTypePriceUpdate:
		return "price_update"
	default:
		return "unknown"
	}
}

// cachedFeed serves the last price seen for a bank to the risk engine
type cachedFeed struct {
	price types.I80F48
}

func (f *cachedFeed) PriceOfType(_ types.OraclePriceType, _ types.PriceBias) (types.I80F48, error) {
	return f.price, nil
}

// NewLiquidator creates a new liquidator instance
func NewLiquidator(config *Config, submitter TxSubmitter) (*Liquidator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if submitter == nil {
		submitter = NewMockSubmitter()
	}

	closeFactor, err := types.NewFixedFromString(config.CloseFactor)
	if err != nil || !closeFactor.IsPositive() {
		return nil, fmt.Errorf("invalid close factor: %s", config.CloseFactor)
	}

	return &Liquidator{
		config:      config,
		accounts:    NewAccountCache(),
		banks:       NewBankCache(),
		candidates:  NewCandidateBuffer(config.BatchSize),
		submitter:   submitter,
		closeFactor: closeFactor,
		lastFlagged: make(map[string]time.Time),
		eventCh:     make(chan Event, 1000),
		stopCh:      make(chan struct{}),
	}, nil
}

// Start starts the liquidator
func (l *Liquidator) Start(ctx context.Context) error {
	log.Println("Starting liquidator...")

	// Start event listener
	l.wg.Add(1)
	go l.eventLoop(ctx)

	// Start periodic account scan loop
	l.wg.Add(1)
	go l.scanLoop(ctx)

	// Start batch submission loop
	l.wg.Add(1)
	go l.batchLoop(ctx)

	log.Println("Liquidator started")
	return nil
}

// Stop stops the liquidator
func (l *Liquidator) Stop() error {
	log.Println("Stopping liquidator...")
	close(l.stopCh)
	l.wg.Wait()
	log.Println("Liquidator stopped")
	return nil
}

// eventLoop processes incoming events
func (l *Liquidator) eventLoop(ctx context.Context) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case event := <-l.eventCh:
			if err := l.handleEvent(event); err != nil {
				log.Printf("Error handling event: %v", err)
			}
		}
	}
}

// scanLoop periodically re-checks every cached borrower. Price moves make
// accounts unhealthy without any account event, so events alone are not
// enough.
func (l *Liquidator) scanLoop(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.scanAccounts()
		}
	}
}

// batchLoop periodically submits candidate batches to the chain
func (l *Liquidator) batchLoop(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Submit any remaining candidates before stopping
			l.submitPendingCandidates(ctx)
			return
		case <-l.stopCh:
			l.submitPendingCandidates(ctx)
			return
		case <-ticker.C:
			l.submitPendingCandidates(ctx)
		}
	}
}

// submitPendingCandidates submits pending candidates to the chain
func (l *Liquidator) submitPendingCandidates(ctx context.Context) {
	candidates := l.candidates.Flush()
	if len(candidates) == 0 {
		return
	}

	log.Printf("Submitting %d liquidation candidates to chain...", len(candidates))
	if err := l.submitter.SubmitLiquidations(ctx, candidates); err != nil {
		log.Printf("Error submitting liquidations: %v", err)
		// Re-add candidates to buffer for retry
		l.candidates.AddBatch(candidates)
	}
}

// handleEvent handles an incoming event
func (l *Liquidator) handleEvent(event Event) error {
	switch event.Type {
	case EventTypeAccountUpdate:
		return l.handleAccountUpdate(event.Account)
	case EventTypeBankUpdate:
		return l.handleBankUpdate(event.Bank, event.Price)
	case EventTypePriceUpdate:
		return l.handlePriceUpdate(event.BankID, event.Price)
	default:
		return fmt.Errorf("unknown event type: %v", event.Type)
	}
}

// handleAccountUpdate caches the account and checks it immediately
func (l *Liquidator) handleAccountUpdate(account *types.Account) error {
	l.accounts.Set(account)
	l.checkAccount(account)
	return nil
}

// handleBankUpdate caches a bank together with its current price
func (l *Liquidator) handleBankUpdate(bank *types.Bank, price types.I80F48) error {
	l.banks.Set(&BankInfo{Bank: bank, Price: price})
	return nil
}

// handlePriceUpdate moves a bank's cached price and rescans borrowers,
// since every account holding that bank may have changed health
func (l *Liquidator) handlePriceUpdate(bankID string, price types.I80F48) error {
	if !l.banks.SetPrice(bankID, price) {
		return fmt.Errorf("bank not found: %s", bankID)
	}
	l.scanAccounts()
	return nil
}

// scanAccounts checks every cached borrower against maintenance
// requirements
func (l *Liquidator) scanAccounts() {
	for _, acc := range l.accounts.GetBorrowers() {
		l.checkAccount(acc)
	}
	l.mu.Lock()
	l.scansCompleted++
	l.mu.Unlock()
}

// checkAccount values the account and buffers a candidate if it is below
// maintenance requirements
func (l *Liquidator) checkAccount(account *types.Account) {
	if l.inCooldown(account.ID) {
		return
	}

	bankAccounts := l.bankAccountsFor(account)
	if len(bankAccounts) == 0 {
		return
	}

	engine, err := types.NewRiskEngine(account, bankAccounts)
	if err != nil {
		// Accounts inside a flashloan bracket settle within their own tx
		return
	}

	health, err := engine.AccountHealth(types.RequirementMaintenance)
	if err != nil {
		log.Printf("Error valuing account %s: %v", account.ID, err)
		return
	}
	if !health.IsNegative() {
		return
	}

	candidate, err := l.buildCandidate(account, bankAccounts, health)
	if err != nil {
		log.Printf("Error building candidate for %s: %v", account.ID, err)
		return
	}
	if candidate == nil {
		return
	}

	// Past the point of profitable liquidation the account needs
	// bankruptcy settlement instead
	if err := engine.CheckAccountBankrupt(); err == nil {
		candidate.Bankrupt = true
	}

	log.Printf("Flagged account %s: health=%s asset_bank=%s liability_bank=%s amount=%d bankrupt=%v",
		account.ID, health.String(), candidate.AssetBankID, candidate.LiabilityBankID,
		candidate.AssetAmount, candidate.Bankrupt)

	l.candidates.Add(candidate)
	l.markFlagged(account.ID)
}

// buildCandidate picks the largest collateral and the largest liability
// and sizes the seizure by the close factor
func (l *Liquidator) buildCandidate(account *types.Account, bankAccounts []*types.BankAccountWithPriceFeed, health types.I80F48) (*Candidate, error) {
	var (
		assetBank      *BankInfo
		assetValue     = types.ZeroFixed()
		liabilityBank  *BankInfo
		liabilityValue = types.ZeroFixed()
	)

	for _, bap := range bankAccounts {
		info, ok := l.banks.Get(bap.Bank.ID)
		if !ok {
			continue
		}

		if !bap.Balance.IsEmpty(types.BalanceSideAssets) {
			amount, err := bap.Bank.GetAssetAmount(bap.Balance.AssetShares)
			if err != nil {
				return nil, err
			}
			value, err := types.CalcValue(amount, info.Price, bap.Bank.Mint.Decimals, nil)
			if err != nil {
				return nil, err
			}
			if value.GT(assetValue) {
				assetValue = value
				assetBank = info
			}
		}

		if !bap.Balance.IsEmpty(types.BalanceSideLiabilities) {
			amount, err := bap.Bank.GetLiabilityAmount(bap.Balance.LiabilityShares)
			if err != nil {
				return nil, err
			}
			value, err := types.CalcValue(amount, info.Price, bap.Bank.Mint.Decimals, nil)
			if err != nil {
				return nil, err
			}
			if value.GT(liabilityValue) {
				liabilityValue = value
				liabilityBank = info
			}
		}
	}

	if assetBank == nil || liabilityBank == nil {
		return nil, nil
	}
	// Liquidation seizes from one bank and repays another
	if assetBank.Bank.ID == liabilityBank.Bank.ID {
		return nil, nil
	}

	// Target a close-factor slice of the liability, capped by the
	// collateral actually there. The chain rejects overshoots.
	target, err := liabilityValue.Mul(l.closeFactor)
	if err != nil {
		return nil, err
	}
	seizeValue := types.MinFixed(target, assetValue)

	seizeAmount, err := types.CalcAmount(seizeValue, assetBank.Price, assetBank.Bank.Mint.Decimals)
	if err != nil {
		return nil, err
	}
	amount := seizeAmount.FloorInt()
	if !amount.IsPositive() {
		return nil, nil
	}

	return &Candidate{
		LiquidateeAccount: account.ID,
		AssetBankID:       assetBank.Bank.ID,
		LiabilityBankID:   liabilityBank.Bank.ID,
		AssetAmount:       amount.Uint64(),
		Shortfall:         health,
		DetectedAt:        time.Now(),
	}, nil
}

// bankAccountsFor pairs each active balance with its cached bank and feed
func (l *Liquidator) bankAccountsFor(account *types.Account) []*types.BankAccountWithPriceFeed {
	bankAccounts := make([]*types.BankAccountWithPriceFeed, 0, len(account.Balances))
	for i := range account.Balances {
		balance := &account.Balances[i]
		if !balance.Active {
			continue
		}
		info, ok := l.banks.Get(balance.BankID)
		if !ok {
			continue
		}
		bankAccounts = append(bankAccounts, &types.BankAccountWithPriceFeed{
			Bank:    info.Bank,
			Balance: balance,
			Feed:    &cachedFeed{price: info.Price},
		})
	}
	return bankAccounts
}

func (l *Liquidator) inCooldown(accountID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	flagged, ok := l.lastFlagged[accountID]
	return ok && time.Since(flagged) < l.config.Cooldown
}

func (l *Liquidator) markFlagged(accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastFlagged[accountID] = time.Now()
}

// SubmitAccount feeds an account into the liquidator (simulated WebSocket)
func (l *Liquidator) SubmitAccount(account *types.Account) {
	l.eventCh <- Event{
		Type:      EventTypeAccountUpdate,
		Account:   account,
		Timestamp: time.Now(),
	}
}

// SubmitBank feeds a bank with its price into the liquidator
func (l *Liquidator) SubmitBank(bank *types.Bank, price types.I80F48) {
	l.eventCh <- Event{
		Type:      EventTypeBankUpdate,
		Bank:      bank,
		Price:     price,
		Timestamp: time.Now(),
	}
}

// SubmitPrice feeds a price update into the liquidator
func (l *Liquidator) SubmitPrice(bankID string, price types.I80F48) {
	l.eventCh <- Event{
		Type:      EventTypePriceUpdate,
		BankID:    bankID,
		Price:     price,
		Timestamp: time.Now(),
	}
}

// GetAccount returns a cached account by ID
func (l *Liquidator) GetAccount(accountID string) *types.Account {
	acc, _ := l.accounts.Get(accountID)
	return acc
}

// Stats returns liquidator statistics
type Stats struct {
	AccountCount      int
	BankCount         int
	PendingCandidates int
	ScansCompleted    int64
}

// GetStats returns current liquidator statistics
func (l *Liquidator) GetStats() Stats {
	l.mu.RLock()
	scans := l.scansCompleted
	l.mu.RUnlock()

	return Stats{
		AccountCount:      l.accounts.Len(),
		BankCount:         l.banks.Len(),
		PendingCandidates: l.candidates.Len(),
		ScansCompleted:    scans,
	}
}
