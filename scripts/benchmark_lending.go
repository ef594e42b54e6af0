package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// OperationRequest represents a balance operation request
type OperationRequest struct {
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    string `json:"amount"`
	Authority string `json:"-"`
}

// OperationResponse represents the response
type OperationResponse struct {
	Account struct {
		AccountID string `json:"account_id"`
		Balances  []struct {
			BankID      string `json:"bank_id"`
			Assets      string `json:"assets"`
			Liabilities string `json:"liabilities"`
		} `json:"balances"`
	} `json:"account"`
}

// LatencyRecord records latency for each operation
type LatencyRecord struct {
	Kind      string
	Latency   time.Duration
	Timestamp time.Time
}

// BenchmarkResults holds all test results
type BenchmarkResults struct {
	Deposits         int64
	Borrows          int64
	DepositSuccess   int64
	BorrowSuccess    int64
	DepositFailed    int64
	BorrowFailed     int64
	DepositLatencies []time.Duration
	BorrowLatencies  []time.Duration
	mu               sync.Mutex
}

func (r *BenchmarkResults) AddDeposit(latency time.Duration, success bool) {
	atomic.AddInt64(&r.Deposits, 1)
	if success {
		atomic.AddInt64(&r.DepositSuccess, 1)
	} else {
		atomic.AddInt64(&r.DepositFailed, 1)
	}
	r.mu.Lock()
	r.DepositLatencies = append(r.DepositLatencies, latency)
	r.mu.Unlock()
}

func (r *BenchmarkResults) AddBorrow(latency time.Duration, success bool) {
	atomic.AddInt64(&r.Borrows, 1)
	if success {
		atomic.AddInt64(&r.BorrowSuccess, 1)
	} else {
		atomic.AddInt64(&r.BorrowFailed, 1)
	}
	r.mu.Lock()
	r.BorrowLatencies = append(r.BorrowLatencies, latency)
	r.mu.Unlock()
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avg(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	return total / time.Duration(len(latencies))
}

func min(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l < m {
			m = l
		}
	}
	return m
}

func max(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l > m {
			m = l
		}
	}
	return m
}

func submitOperation(client *http.Client, baseURL, path string, req *OperationRequest) (time.Duration, bool) {
	body, _ := json.Marshal(req)
	start := time.Now()

	httpReq, err := http.NewRequest("POST", baseURL+path, bytes.NewReader(body))
	if err != nil {
		return time.Since(start), false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Authority-Address", req.Authority)

	resp, err := client.Do(httpReq)
	latency := time.Since(start)

	if err != nil {
		return latency, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return latency, false
	}

	var opResp OperationResponse
	if err := json.NewDecoder(resp.Body).Decode(&opResp); err != nil {
		return latency, true
	}
	return latency, true
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	opCount := flag.Int("n", 10000, "Number of borrower accounts (each deposits and borrows)")
	concurrency := flag.Int("c", 100, "Concurrency level")
	collateralBank := flag.String("collateral-bank", "atom", "Bank ID for collateral deposits")
	debtBank := flag.String("debt-bank", "usdc", "Bank ID for borrows")
	depositAmount := flag.String("deposit", "10000000", "Collateral deposit per account (native units)")
	borrowAmount := flag.String("borrow", "50000000", "Borrow per account (native units)")
	seedAmount := flag.String("seed", "1000000000000", "Liquidity seeded into the debt bank before borrowing")
	outputFile := flag.String("o", "", "Output JSON report file")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║     LendDEX Lending Engine Benchmark - Deposit/Borrow Stress     ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Configuration:\n")
	fmt.Printf("  API URL:         %s\n", *baseURL)
	fmt.Printf("  Collateral Bank: %s\n", *collateralBank)
	fmt.Printf("  Debt Bank:       %s\n", *debtBank)
	fmt.Printf("  Accounts:        %d (total ops: %d)\n", *opCount, *opCount*2)
	fmt.Printf("  Concurrency:     %d\n", *concurrency)
	fmt.Printf("  Deposit:         %s\n", *depositAmount)
	fmt.Printf("  Borrow:          %s\n", *borrowAmount)
	fmt.Println()

	// Check health
	fmt.Print("Checking API health... ")
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        1000,
			MaxIdleConnsPerHost: 200,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("FAILED: status %d\n", resp.StatusCode)
		os.Exit(1)
	}
	fmt.Println("OK")

	// Seed the debt bank so there is liquidity to borrow against
	fmt.Print("Seeding debt bank liquidity... ")
	seedLatency, seedOK := submitOperation(client, *baseURL, "/v1/account/deposit", &OperationRequest{
		AccountID: "bench-seeder",
		BankID:    *debtBank,
		Amount:    *seedAmount,
		Authority: "authority-bench-seeder",
	})
	if !seedOK {
		fmt.Println("FAILED")
		os.Exit(1)
	}
	fmt.Printf("OK (%v)\n", seedLatency.Round(time.Millisecond))
	fmt.Println()

	results := &BenchmarkResults{
		DepositLatencies: make([]time.Duration, 0, *opCount),
		BorrowLatencies:  make([]time.Duration, 0, *opCount),
	}

	// Semaphore for concurrency control
	sem := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup

	// Progress tracking
	var processed int64
	total := int64(*opCount * 2)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := atomic.LoadInt64(&processed)
				pct := float64(p) / float64(total) * 100
				fmt.Printf("\r  Progress: %d/%d (%.1f%%) | Deposits: %d | Borrows: %d    ",
					p, total, pct,
					atomic.LoadInt64(&results.DepositSuccess),
					atomic.LoadInt64(&results.BorrowSuccess))
			}
		}
	}()

	fmt.Println("Starting benchmark...")
	startTime := time.Now()

	// Each account deposits collateral, then borrows against it
	for i := 0; i < *opCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			accountID := fmt.Sprintf("bench-account-%d", idx)
			authority := fmt.Sprintf("authority-bench-%d", idx)

			depositReq := &OperationRequest{
				AccountID: accountID,
				BankID:    *collateralBank,
				Amount:    *depositAmount,
				Authority: authority,
			}
			latency, success := submitOperation(client, *baseURL, "/v1/account/deposit", depositReq)
			results.AddDeposit(latency, success)
			atomic.AddInt64(&processed, 1)

			if !success {
				atomic.AddInt64(&processed, 1)
				results.AddBorrow(0, false)
				return
			}

			borrowReq := &OperationRequest{
				AccountID: accountID,
				BankID:    *debtBank,
				Amount:    *borrowAmount,
				Authority: authority,
			}
			latency, success = submitOperation(client, *baseURL, "/v1/account/borrow", borrowReq)
			results.AddBorrow(latency, success)
			atomic.AddInt64(&processed, 1)
		}(i)
	}

	wg.Wait()
	close(done)
	elapsed := time.Since(startTime)

	fmt.Printf("\r                                                                              \r")
	fmt.Println()
	fmt.Println()

	// Calculate statistics
	allLatencies := append(results.DepositLatencies, results.BorrowLatencies...)
	totalOps := results.Deposits + results.Borrows
	totalSuccess := results.DepositSuccess + results.BorrowSuccess
	totalFailed := results.DepositFailed + results.BorrowFailed
	successRate := float64(totalSuccess) / float64(totalOps) * 100
	throughput := float64(totalOps) / elapsed.Seconds()

	// Print results
	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                       BENCHMARK RESULTS                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Test Duration:        %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Throughput:           %.2f ops/sec\n", throughput)
	fmt.Println()

	fmt.Println("── Operation Statistics ───────────────────────────────────────────")
	fmt.Printf("  Total Operations:   %d\n", totalOps)
	fmt.Printf("  Deposits:           %d (success: %d, failed: %d)\n", results.Deposits, results.DepositSuccess, results.DepositFailed)
	fmt.Printf("  Borrows:            %d (success: %d, failed: %d)\n", results.Borrows, results.BorrowSuccess, results.BorrowFailed)
	fmt.Printf("  Success Rate:       %.2f%%\n", successRate)
	fmt.Println()

	fmt.Println("── Overall Latency (all operations) ───────────────────────────────")
	fmt.Printf("  Min:                %v\n", min(allLatencies))
	fmt.Printf("  Max:                %v\n", max(allLatencies))
	fmt.Printf("  Average:            %v\n", avg(allLatencies))
	fmt.Printf("  P50 (Median):       %v\n", percentile(allLatencies, 0.50))
	fmt.Printf("  P90:                %v\n", percentile(allLatencies, 0.90))
	fmt.Printf("  P95:                %v\n", percentile(allLatencies, 0.95))
	fmt.Printf("  P99:                %v\n", percentile(allLatencies, 0.99))
	fmt.Println()

	fmt.Println("── Deposit Latency ────────────────────────────────────────────────")
	fmt.Printf("  Min:                %v\n", min(results.DepositLatencies))
	fmt.Printf("  Max:                %v\n", max(results.DepositLatencies))
	fmt.Printf("  Average:            %v\n", avg(results.DepositLatencies))
	fmt.Printf("  P99:                %v\n", percentile(results.DepositLatencies, 0.99))
	fmt.Println()

	fmt.Println("── Borrow Latency (includes health check) ─────────────────────────")
	fmt.Printf("  Min:                %v\n", min(results.BorrowLatencies))
	fmt.Printf("  Max:                %v\n", max(results.BorrowLatencies))
	fmt.Printf("  Average:            %v\n", avg(results.BorrowLatencies))
	fmt.Printf("  P99:                %v\n", percentile(results.BorrowLatencies, 0.99))
	fmt.Println()

	fmt.Println("── Assessment ─────────────────────────────────────────────────────")
	if successRate >= 99.9 {
		fmt.Println("  ✅ Success Rate:    Excellent (>99.9%)")
	} else if successRate >= 99 {
		fmt.Println("  ✅ Success Rate:    Good (>99%)")
	} else if successRate >= 95 {
		fmt.Println("  ⚠️  Success Rate:    Acceptable (>95%)")
	} else {
		fmt.Println("  ❌ Success Rate:    Poor (<95%)")
	}

	avgLat := avg(allLatencies)
	if avgLat < 1*time.Millisecond {
		fmt.Println("  ✅ Latency:         Excellent (<1ms avg)")
	} else if avgLat < 10*time.Millisecond {
		fmt.Println("  ✅ Latency:         Good (<10ms avg)")
	} else if avgLat < 100*time.Millisecond {
		fmt.Println("  ⚠️  Latency:         Acceptable (<100ms avg)")
	} else {
		fmt.Println("  ❌ Latency:         High (>100ms avg)")
	}

	if throughput > 10000 {
		fmt.Println("  ✅ Throughput:      Excellent (>10K/s)")
	} else if throughput > 1000 {
		fmt.Println("  ✅ Throughput:      Good (>1K/s)")
	} else if throughput > 100 {
		fmt.Println("  ⚠️  Throughput:      Acceptable (>100/s)")
	} else {
		fmt.Println("  ❌ Throughput:      Low (<100/s)")
	}

	fmt.Println()
	fmt.Println("══════════════════════════════════════════════════════════════════")

	// Save report if requested
	if *outputFile != "" {
		report := map[string]interface{}{
			"config": map[string]interface{}{
				"api_url":         *baseURL,
				"collateral_bank": *collateralBank,
				"debt_bank":       *debtBank,
				"accounts":        *opCount,
				"concurrency":     *concurrency,
				"deposit_amount":  *depositAmount,
				"borrow_amount":   *borrowAmount,
			},
			"summary": map[string]interface{}{
				"duration_ms":        elapsed.Milliseconds(),
				"throughput_per_sec": throughput,
				"total_operations":   totalOps,
				"success_operations": totalSuccess,
				"failed_operations":  totalFailed,
				"success_rate":       successRate,
			},
			"latency_all": map[string]interface{}{
				"min_us": min(allLatencies).Microseconds(),
				"max_us": max(allLatencies).Microseconds(),
				"avg_us": avg(allLatencies).Microseconds(),
				"p50_us": percentile(allLatencies, 0.50).Microseconds(),
				"p90_us": percentile(allLatencies, 0.90).Microseconds(),
				"p95_us": percentile(allLatencies, 0.95).Microseconds(),
				"p99_us": percentile(allLatencies, 0.99).Microseconds(),
			},
			"latency_deposit": map[string]interface{}{
				"min_us": min(results.DepositLatencies).Microseconds(),
				"max_us": max(results.DepositLatencies).Microseconds(),
				"avg_us": avg(results.DepositLatencies).Microseconds(),
				"p99_us": percentile(results.DepositLatencies, 0.99).Microseconds(),
			},
			"latency_borrow": map[string]interface{}{
				"min_us": min(results.BorrowLatencies).Microseconds(),
				"max_us": max(results.BorrowLatencies).Microseconds(),
				"avg_us": avg(results.BorrowLatencies).Microseconds(),
				"p99_us": percentile(results.BorrowLatencies, 0.99).Microseconds(),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}

		file, err := os.Create(*outputFile)
		if err != nil {
			fmt.Printf("Failed to create report file: %v\n", err)
		} else {
			defer file.Close()
			encoder := json.NewEncoder(file)
			encoder.SetIndent("", "  ")
			encoder.Encode(report)
			fmt.Printf("\nReport saved to: %s\n", *outputFile)
		}
	}
}
