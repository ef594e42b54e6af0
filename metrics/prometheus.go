package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LendDEX Metrics Collector
// Provides comprehensive metrics for monitoring

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all LendDEX metrics
type Collector struct {
	// Bank metrics
	BankTotalAssets      *prometheus.GaugeVec
	BankTotalLiabilities *prometheus.GaugeVec
	BankUtilization      *prometheus.GaugeVec
	BankLendingApr       *prometheus.GaugeVec
	BankBorrowingApr     *prometheus.GaugeVec

	// Balance operation metrics
	OperationsTotal  *prometheus.CounterVec
	OperationVolume  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Interest accrual metrics
	AccrualsTotal    *prometheus.CounterVec
	AccrualLatency   *prometheus.HistogramVec
	FeesAccrued      *prometheus.CounterVec
	ShareValueAsset  *prometheus.GaugeVec
	ShareValueLiab   *prometheus.GaugeVec

	// Account metrics
	AccountsActive    prometheus.Gauge
	AccountsUnhealthy prometheus.Gauge
	HealthCheckTotal  *prometheus.CounterVec

	// Liquidation metrics
	LiquidationsTotal  *prometheus.CounterVec
	LiquidationValue   *prometheus.CounterVec
	LiquidationDeficit *prometheus.CounterVec

	// Insurance vault metrics
	InsuranceVaultBalance *prometheus.GaugeVec
	InsuranceVaultInflow  *prometheus.CounterVec
	InsuranceVaultOutflow *prometheus.CounterVec

	// Bad debt metrics
	BankruptciesTotal *prometheus.CounterVec
	LossSocialized    *prometheus.CounterVec

	// Oracle metrics
	OraclePrice      *prometheus.GaugeVec
	OracleAgeSeconds *prometheus.GaugeVec
	OracleErrors     *prometheus.CounterVec

	// WebSocket metrics
	WSConnectionsActive *prometheus.GaugeVec
	WSMessagesTotal     *prometheus.CounterVec
	WSSubscriptions     *prometheus.GaugeVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	APIErrorsTotal    *prometheus.CounterVec
	RateLimitHits     *prometheus.CounterVec

	// System metrics
	BlockHeight prometheus.Gauge
	BlockTime   *prometheus.HistogramVec
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Bank metrics
	c.BankTotalAssets = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "banks",
			Name:      "total_assets",
			Help:      "Total deposited assets per bank (native token units)",
		},
		[]string{"bank_id"},
	)

	c.BankTotalLiabilities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "banks",
			Name:      "total_liabilities",
			Help:      "Total borrowed liabilities per bank (native token units)",
		},
		[]string{"bank_id"},
	)

	c.BankUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "banks",
			Name:      "utilization",
			Help:      "Bank utilization ratio (liabilities / assets)",
		},
		[]string{"bank_id"},
	)

	c.BankLendingApr = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "banks",
			Name:      "lending_apr",
			Help:      "Current annualized lending rate",
		},
		[]string{"bank_id"},
	)

	c.BankBorrowingApr = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "banks",
			Name:      "borrowing_apr",
			Help:      "Current annualized borrowing rate",
		},
		[]string{"bank_id"},
	)

	// Balance operation metrics
	c.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "operations",
			Name:      "total",
			Help:      "Total balance operations by kind and outcome",
		},
		[]string{"bank_id", "kind", "status"},
	)

	c.OperationVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "operations",
			Name:      "volume",
			Help:      "Total operation volume (native token units)",
		},
		[]string{"bank_id", "kind"},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lenddex",
			Subsystem: "operations",
			Name:      "latency_ms",
			Help:      "Operation processing latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"bank_id", "kind"},
	)

	// Interest accrual metrics
	c.AccrualsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "interest",
			Name:      "accruals_total",
			Help:      "Total interest accrual events",
		},
		[]string{"bank_id"},
	)

	c.AccrualLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lenddex",
			Subsystem: "interest",
			Name:      "accrual_latency_ms",
			Help:      "Interest accrual latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50},
		},
		[]string{"bank_id"},
	)

	c.FeesAccrued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "interest",
			Name:      "fees_accrued",
			Help:      "Total fees accrued by destination (group, insurance, program)",
		},
		[]string{"bank_id", "destination"},
	)

	c.ShareValueAsset = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "interest",
			Name:      "asset_share_value",
			Help:      "Current asset share price per bank",
		},
		[]string{"bank_id"},
	)

	c.ShareValueLiab = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "interest",
			Name:      "liability_share_value",
			Help:      "Current liability share price per bank",
		},
		[]string{"bank_id"},
	)

	// Account metrics
	c.AccountsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "accounts",
			Name:      "active",
			Help:      "Number of accounts with at least one active balance",
		},
	)

	c.AccountsUnhealthy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "accounts",
			Name:      "unhealthy",
			Help:      "Number of accounts below maintenance requirement",
		},
	)

	c.HealthCheckTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "accounts",
			Name:      "health_checks_total",
			Help:      "Total health checks by requirement type and verdict",
		},
		[]string{"requirement", "verdict"},
	)

	// Liquidation metrics
	c.LiquidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "liquidations",
			Name:      "total",
			Help:      "Total number of liquidations",
		},
		[]string{"asset_bank_id", "liability_bank_id"},
	)

	c.LiquidationValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "liquidations",
			Name:      "value_usd",
			Help:      "Total liquidated collateral value in USD",
		},
		[]string{"asset_bank_id"},
	)

	c.LiquidationDeficit = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "liquidations",
			Name:      "deficit_usd",
			Help:      "Total uncovered bad debt in USD",
		},
		[]string{"liability_bank_id"},
	)

	// Insurance vault metrics
	c.InsuranceVaultBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "insurance_vault",
			Name:      "balance",
			Help:      "Insurance vault balance per bank (native token units)",
		},
		[]string{"bank_id"},
	)

	c.InsuranceVaultInflow = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "insurance_vault",
			Name:      "inflow",
			Help:      "Total inflow to insurance vault by source",
		},
		[]string{"bank_id", "source"},
	)

	c.InsuranceVaultOutflow = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "insurance_vault",
			Name:      "outflow",
			Help:      "Total outflow from insurance vault by reason",
		},
		[]string{"bank_id", "reason"},
	)

	// Bad debt metrics
	c.BankruptciesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "bad_debt",
			Name:      "bankruptcies_total",
			Help:      "Total bankruptcy settlements",
		},
		[]string{"bank_id"},
	)

	c.LossSocialized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "bad_debt",
			Name:      "loss_socialized",
			Help:      "Total loss socialized across lenders (native token units)",
		},
		[]string{"bank_id"},
	)

	// Oracle metrics
	c.OraclePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "oracle",
			Name:      "price",
			Help:      "Current oracle price in USD",
		},
		[]string{"feed_id", "price_type"},
	)

	c.OracleAgeSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "oracle",
			Name:      "age_seconds",
			Help:      "Seconds since the feed was last posted",
		},
		[]string{"feed_id"},
	)

	c.OracleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "oracle",
			Name:      "errors_total",
			Help:      "Total oracle failures by reason",
		},
		[]string{"feed_id", "reason"},
	)

	// WebSocket metrics
	c.WSConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		},
		[]string{},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total WebSocket messages sent",
		},
		[]string{"channel"},
	)

	c.WSSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "websocket",
			Name:      "subscriptions",
			Help:      "Number of active subscriptions per channel",
		},
		[]string{"channel"},
	)

	// API metrics
	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lenddex",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	c.APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Total API errors",
		},
		[]string{"method", "path", "error_type"},
	)

	c.RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lenddex",
			Subsystem: "api",
			Name:      "rate_limit_hits",
			Help:      "Total rate limit hits",
		},
		[]string{"limit_type"},
	)

	// System metrics
	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lenddex",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.BlockTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lenddex",
			Subsystem: "system",
			Name:      "block_time_ms",
			Help:      "Block time in milliseconds",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000},
		},
		[]string{},
	)

	// Register all metrics
	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	// Bank metrics
	prometheus.MustRegister(c.BankTotalAssets)
	prometheus.MustRegister(c.BankTotalLiabilities)
	prometheus.MustRegister(c.BankUtilization)
	prometheus.MustRegister(c.BankLendingApr)
	prometheus.MustRegister(c.BankBorrowingApr)

	// Balance operation metrics
	prometheus.MustRegister(c.OperationsTotal)
	prometheus.MustRegister(c.OperationVolume)
	prometheus.MustRegister(c.OperationLatency)

	// Interest accrual metrics
	prometheus.MustRegister(c.AccrualsTotal)
	prometheus.MustRegister(c.AccrualLatency)
	prometheus.MustRegister(c.FeesAccrued)
	prometheus.MustRegister(c.ShareValueAsset)
	prometheus.MustRegister(c.ShareValueLiab)

	// Account metrics
	prometheus.MustRegister(c.AccountsActive)
	prometheus.MustRegister(c.AccountsUnhealthy)
	prometheus.MustRegister(c.HealthCheckTotal)

	// Liquidation metrics
	prometheus.MustRegister(c.LiquidationsTotal)
	prometheus.MustRegister(c.LiquidationValue)
	prometheus.MustRegister(c.LiquidationDeficit)

	// Insurance vault metrics
	prometheus.MustRegister(c.InsuranceVaultBalance)
	prometheus.MustRegister(c.InsuranceVaultInflow)
	prometheus.MustRegister(c.InsuranceVaultOutflow)

	// Bad debt metrics
	prometheus.MustRegister(c.BankruptciesTotal)
	prometheus.MustRegister(c.LossSocialized)

	// Oracle metrics
	prometheus.MustRegister(c.OraclePrice)
	prometheus.MustRegister(c.OracleAgeSeconds)
	prometheus.MustRegister(c.OracleErrors)

	// WebSocket metrics
	prometheus.MustRegister(c.WSConnectionsActive)
	prometheus.MustRegister(c.WSMessagesTotal)
	prometheus.MustRegister(c.WSSubscriptions)

	// API metrics
	prometheus.MustRegister(c.APIRequestsTotal)
	prometheus.MustRegister(c.APIRequestLatency)
	prometheus.MustRegister(c.APIErrorsTotal)
	prometheus.MustRegister(c.RateLimitHits)

	// System metrics
	prometheus.MustRegister(c.BlockHeight)
	prometheus.MustRegister(c.BlockTime)
}

// ============ Recording Helpers ============

// RecordOperation records a balance operation event
func (c *Collector) RecordOperation(bankID, kind, status string) {
	c.OperationsTotal.WithLabelValues(bankID, kind, status).Inc()
}

// RecordOperationLatency records operation processing latency
func (c *Collector) RecordOperationLatency(bankID, kind string, latencyMs float64) {
	c.OperationLatency.WithLabelValues(bankID, kind).Observe(latencyMs)
}

// RecordBankState records a bank's pool state
func (c *Collector) RecordBankState(bankID string, assets, liabilities, utilization, lendingApr, borrowingApr float64) {
	c.BankTotalAssets.WithLabelValues(bankID).Set(assets)
	c.BankTotalLiabilities.WithLabelValues(bankID).Set(liabilities)
	c.BankUtilization.WithLabelValues(bankID).Set(utilization)
	c.BankLendingApr.WithLabelValues(bankID).Set(lendingApr)
	c.BankBorrowingApr.WithLabelValues(bankID).Set(borrowingApr)
}

// RecordAccrual records an interest accrual event
func (c *Collector) RecordAccrual(bankID string, latencyMs, assetShareValue, liabShareValue float64) {
	c.AccrualsTotal.WithLabelValues(bankID).Inc()
	c.AccrualLatency.WithLabelValues(bankID).Observe(latencyMs)
	c.ShareValueAsset.WithLabelValues(bankID).Set(assetShareValue)
	c.ShareValueLiab.WithLabelValues(bankID).Set(liabShareValue)
}

// RecordFees records accrued fees by destination
func (c *Collector) RecordFees(bankID string, group, insurance, program float64) {
	c.FeesAccrued.WithLabelValues(bankID, "group").Add(group)
	c.FeesAccrued.WithLabelValues(bankID, "insurance").Add(insurance)
	c.FeesAccrued.WithLabelValues(bankID, "program").Add(program)
}

// RecordHealthCheck records a health check verdict
func (c *Collector) RecordHealthCheck(requirement string, healthy bool) {
	verdict := "healthy"
	if !healthy {
		verdict = "unhealthy"
	}
	c.HealthCheckTotal.WithLabelValues(requirement, verdict).Inc()
}

// RecordLiquidation records a liquidation event
func (c *Collector) RecordLiquidation(assetBankID, liabilityBankID string, value, deficit float64) {
	c.LiquidationsTotal.WithLabelValues(assetBankID, liabilityBankID).Inc()
	c.LiquidationValue.WithLabelValues(assetBankID).Add(value)
	if deficit > 0 {
		c.LiquidationDeficit.WithLabelValues(liabilityBankID).Add(deficit)
	}
}

// RecordInsuranceVault records the insurance vault balance
func (c *Collector) RecordInsuranceVault(bankID string, balance float64) {
	c.InsuranceVaultBalance.WithLabelValues(bankID).Set(balance)
}

// RecordBankruptcy records a bankruptcy settlement
func (c *Collector) RecordBankruptcy(bankID string, socialized float64) {
	c.BankruptciesTotal.WithLabelValues(bankID).Inc()
	if socialized > 0 {
		c.LossSocialized.WithLabelValues(bankID).Add(socialized)
	}
}

// RecordOraclePrice records an oracle price observation
func (c *Collector) RecordOraclePrice(feedID, priceType string, price float64) {
	c.OraclePrice.WithLabelValues(feedID, priceType).Set(price)
}

// RecordOracleError records an oracle failure
func (c *Collector) RecordOracleError(feedID, reason string) {
	c.OracleErrors.WithLabelValues(feedID, reason).Inc()
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection records WebSocket connection changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.WithLabelValues().Add(float64(delta))
}

// RecordWSMessage records a WebSocket message
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// UpdateSystemMetrics updates system-level metrics
func (c *Collector) UpdateSystemMetrics(blockHeight int64, blockTimeMs float64) {
	c.BlockHeight.Set(float64(blockHeight))
	c.BlockTime.WithLabelValues().Observe(blockTimeMs)
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
