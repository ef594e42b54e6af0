package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openalpha/lend-dex/offchain/liquidator"
	"github.com/openalpha/lend-dex/x/lending/types"
)

// Config holds the application configuration
type Config struct {
	BatchSize         int           `json:"batch_size"`
	BatchInterval     time.Duration `json:"batch_interval"`
	ScanInterval      time.Duration `json:"scan_interval"`
	WebSocketURL      string        `json:"websocket_url"`
	ChainRPCURL       string        `json:"chain_rpc_url"`
	SubmitterType     string        `json:"submitter_type"` // "mock" or "batch"
	LiquidatorAccount string        `json:"liquidator_account"`
	Demo              bool          `json:"demo"` // run demo mode
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BatchSize:         50,
		BatchInterval:     500 * time.Millisecond,
		ScanInterval:      2 * time.Second,
		WebSocketURL:      "ws://localhost:26657/websocket",
		ChainRPCURL:       "http://localhost:26657",
		SubmitterType:     "mock",
		LiquidatorAccount: "liquidator-bot",
		Demo:              false,
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	batchSize := flag.Int("batch-size", 0, "Maximum liquidations per batch")
	batchInterval := flag.Duration("batch-interval", 0, "Time interval for batch submission")
	scanInterval := flag.Duration("scan-interval", 0, "Time interval for account scans")
	rpcURL := flag.String("rpc", "", "Chain RPC URL")
	wsURL := flag.String("ws", "", "WebSocket URL")
	submitterType := flag.String("submitter", "", "Submitter type (mock or batch)")
	demo := flag.Bool("demo", false, "Run demo mode with a sample underwater account")
	flag.Parse()

	// Load configuration
	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Override with command line flags
	if *batchSize > 0 {
		config.BatchSize = *batchSize
	}
	if *batchInterval > 0 {
		config.BatchInterval = *batchInterval
	}
	if *scanInterval > 0 {
		config.ScanInterval = *scanInterval
	}
	if *rpcURL != "" {
		config.ChainRPCURL = *rpcURL
	}
	if *wsURL != "" {
		config.WebSocketURL = *wsURL
	}
	if *submitterType != "" {
		config.SubmitterType = *submitterType
	}
	if *demo {
		config.Demo = true
	}

	// Print configuration
	log.Println("=== LendDEX Offchain Liquidator ===")
	log.Printf("Batch Size: %d", config.BatchSize)
	log.Printf("Batch Interval: %v", config.BatchInterval)
	log.Printf("Scan Interval: %v", config.ScanInterval)
	log.Printf("Chain RPC: %s", config.ChainRPCURL)
	log.Printf("WebSocket: %s", config.WebSocketURL)
	log.Printf("Submitter: %s", config.SubmitterType)
	log.Println("===================================")

	// Create submitter
	factory := liquidator.NewSubmitterFactory()
	submitter := factory.Create(config.SubmitterType, &liquidator.BatchSubmitterConfig{
		RPCURL:            config.ChainRPCURL,
		Liquidator:        "liquidator",
		LiquidatorAccount: config.LiquidatorAccount,
		BatchSize:         config.BatchSize,
		RetryAttempts:     3,
		RetryDelay:        time.Second,
	})

	// Create liquidator
	liquidatorConfig := &liquidator.Config{
		BatchSize:         config.BatchSize,
		BatchInterval:     config.BatchInterval,
		ScanInterval:      config.ScanInterval,
		Cooldown:          30 * time.Second,
		WebSocketURL:      config.WebSocketURL,
		ChainRPCURL:       config.ChainRPCURL,
		LiquidatorAccount: config.LiquidatorAccount,
		CloseFactor:       "0.5",
	}
	liq, err := liquidator.NewLiquidator(liquidatorConfig, submitter)
	if err != nil {
		log.Fatalf("Failed to create liquidator: %v", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the liquidator
	if err := liq.Start(ctx); err != nil {
		log.Fatalf("Failed to start liquidator: %v", err)
	}

	// Run demo if requested
	if config.Demo {
		go runDemo(liq)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Periodic stats logging
	statsTicker := time.NewTicker(10 * time.Second)
	defer statsTicker.Stop()

	log.Println("Liquidator is running. Press Ctrl+C to stop.")

	for {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
			if err := liq.Stop(); err != nil {
				log.Printf("Error stopping liquidator: %v", err)
			}
			log.Println("Liquidator stopped")
			return
		case <-statsTicker.C:
			stats := liq.GetStats()
			log.Printf("Stats: Accounts=%d, Banks=%d, PendingCandidates=%d, Scans=%d",
				stats.AccountCount, stats.BankCount, stats.PendingCandidates, stats.ScansCompleted)
		}
	}
}

// runDemo walks an account into a borrow and then drops the collateral
// price until the liquidator flags it
func runDemo(liq *liquidator.Liquidator) {
	log.Println("Starting demo mode...")
	time.Sleep(time.Second)

	now := time.Now().Unix()

	usdcBank := demoBank("usdc", "uusdc", "0.90", "0.95", "1.10", "1.05", now)
	atomBank := demoBank("atom", "uatom", "0.80", "0.90", "1.25", "1.10", now)

	log.Println("Feeding banks: usdc @ 1.0, atom @ 10.0")
	liq.SubmitBank(usdcBank, fixed("1.0"))
	liq.SubmitBank(atomBank, fixed("10.0"))
	time.Sleep(100 * time.Millisecond)

	// A lender seeds the usdc pool so there is something to borrow
	lender := types.NewAccount("demo-lender", types.DefaultGroupID, "authority-lender", now)
	mustOperate(usdcBank, lender, now, func(w *types.BankAccountWrapper) error {
		return w.Deposit(fixed("100000000"), now) // 100 usdc
	})
	liq.SubmitAccount(lender)

	// The borrower posts atom collateral and borrows usdc close to the
	// initial limit
	borrower := types.NewAccount("demo-borrower", types.DefaultGroupID, "authority-borrower", now)
	mustOperate(atomBank, borrower, now, func(w *types.BankAccountWrapper) error {
		return w.Deposit(fixed("10000000"), now) // 10 atom @ $10 = $100
	})
	mustOperate(usdcBank, borrower, now, func(w *types.BankAccountWrapper) error {
		return w.Borrow(fixed("70000000"), now) // $70 against $80 of weighted collateral
	})
	log.Println("Borrower deposited 10 atom and borrowed 70 usdc")
	liq.SubmitAccount(borrower)
	time.Sleep(500 * time.Millisecond)

	stats := liq.GetStats()
	log.Printf("Before price drop: PendingCandidates=%d", stats.PendingCandidates)

	// Crash the collateral price. Weighted collateral falls to
	// 10 * 7 * 0.90 = $63 against a $70 * 1.05 liability.
	log.Println("\n=== Dropping atom price to 7.0 ===")
	liq.SubmitPrice("atom", fixed("7.0"))
	time.Sleep(500 * time.Millisecond)

	stats = liq.GetStats()
	log.Printf("After price drop: PendingCandidates=%d", stats.PendingCandidates)

	log.Println("\nDemo completed!")
}

// demoBank builds a bank with the standard demo interest curve
func demoBank(id, denom, assetInit, assetMaint, liabInit, liabMaint string, now int64) *types.Bank {
	config := types.BankConfig{
		AssetWeightInit:      fixed(assetInit),
		AssetWeightMaint:     fixed(assetMaint),
		LiabilityWeightInit:  fixed(liabInit),
		LiabilityWeightMaint: fixed(liabMaint),
		DepositLimit:         fixed("1000000000000"),
		LiabilityLimit:       fixed("1000000000000"),
		InterestRateConfig: types.InterestRateConfig{
			OptimalUtilizationRate: fixed("0.80"),
			PlateauInterestRate:    fixed("0.10"),
			MaxInterestRate:        fixed("1.00"),
			InsuranceFeeFixedApr:   fixed("0.01"),
			InsuranceIrFee:         fixed("0.05"),
			ProtocolFixedFeeApr:    fixed("0.01"),
			ProtocolIrFee:          fixed("0.05"),
		},
		OperationalState: types.BankOperational,
		RiskTier:         types.RiskTierCollateral,
		AssetTag:         types.AssetTagDefault,
		OracleSetup:      types.OracleSetupPush,
		OracleFeedID:     denom + "-usd",
		OracleMaxAge:     60,
	}
	mint := types.MintInfo{Denom: denom, Decimals: 6}
	return types.NewBank(id, types.DefaultGroupID, mint, config, now)
}

func mustOperate(bank *types.Bank, acc *types.Account, now int64, op func(*types.BankAccountWrapper) error) {
	wrapper, err := types.FindOrCreateBankAccount(bank, acc, now)
	if err != nil {
		log.Fatalf("Demo setup failed: %v", err)
	}
	if err := op(wrapper); err != nil {
		log.Fatalf("Demo setup failed: %v", err)
	}
}

func fixed(s string) types.I80F48 {
	v, err := types.NewFixedFromString(s)
	if err != nil {
		log.Fatalf("bad fixed literal %q: %v", s, err)
	}
	return v
}
