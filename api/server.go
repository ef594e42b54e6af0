package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/openalpha/lend-dex/api/handlers"
	"github.com/openalpha/lend-dex/api/middleware"
	"github.com/openalpha/lend-dex/api/types"
	"github.com/openalpha/lend-dex/api/websocket"
	"github.com/openalpha/lend-dex/metrics"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	wsServer   *websocket.Server
	config     *Config
	mockMode   bool

	// Services
	bankService    types.BankService
	accountService types.AccountService
	riskService    types.RiskService

	// Handlers
	bankHandler    *handlers.BankHandler
	accountHandler *handlers.AccountHandler
	riskHandler    *handlers.RiskHandler

	// Rate limiter
	rateLimiter *middleware.RateLimiter

	// Broadcaster shutdown
	stopBroadcast chan struct{}
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MockMode         bool
	DisableRateLimit bool // For testing purposes

	// RatesBroadcastInterval controls how often bank rates are pushed to
	// websocket subscribers
	RatesBroadcastInterval time.Duration
}

// DefaultConfig returns default configuration
// NOTE: MockMode defaults to false (real mode) for production safety.
// Use --mock flag explicitly for development/testing with mock data.
func DefaultConfig() *Config {
	return &Config{
		Host:                   "0.0.0.0",
		Port:                   8080,
		ReadTimeout:            30 * time.Second,
		WriteTimeout:           30 * time.Second,
		MockMode:               false, // Default to REAL mode - use --mock for development
		RatesBroadcastInterval: time.Second,
	}
}

// NewServer creates a new API server backed by the in-memory keeper
// service, or the mock service when MockMode is set
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	if config.MockMode {
		mockService := NewMockService()
		return NewServerWithServices(config, mockService, mockService, mockService)
	}

	keeperService := NewKeeperService()
	return NewServerWithServices(config, keeperService, keeperService, keeperService)
}

// NewServerWithServices creates a new API server with custom services
func NewServerWithServices(config *Config, bankSvc types.BankService, accountSvc types.AccountService, riskSvc types.RiskService) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RatesBroadcastInterval <= 0 {
		config.RatesBroadcastInterval = time.Second
	}

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	// Create rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	s := &Server{
		config:         config,
		wsServer:       websocket.NewServer(wsConfig),
		mockMode:       config.MockMode,
		bankService:    bankSvc,
		accountService: accountSvc,
		riskService:    riskSvc,
		rateLimiter:    rateLimiter,
		stopBroadcast:  make(chan struct{}),
	}

	// Create handlers
	s.bankHandler = handlers.NewBankHandler(s.bankService)
	s.accountHandler = handlers.NewAccountHandler(s.accountService)
	s.riskHandler = handlers.NewRiskHandler(s.riskService)

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Health check (server liveness, not account health)
	mux.HandleFunc("/health", s.handleServerHealth)

	// Bank endpoints (read-only)
	mux.HandleFunc("/v1/banks", s.bankHandler.HandleBanks)
	mux.HandleFunc("/v1/banks/", s.bankHandler.HandleBank)

	// Account endpoints (GET, POST balance operations)
	mux.HandleFunc("/v1/account", s.accountHandler.HandleAccount)
	mux.HandleFunc("/v1/account/deposit", s.accountHandler.HandleDeposit)
	mux.HandleFunc("/v1/account/withdraw", s.accountHandler.HandleWithdraw)
	mux.HandleFunc("/v1/account/borrow", s.accountHandler.HandleBorrow)
	mux.HandleFunc("/v1/account/repay", s.accountHandler.HandleRepay)

	// Risk endpoints
	mux.HandleFunc("/v1/health/", s.riskHandler.HandleHealth)
	mux.HandleFunc("/v1/liquidations", s.riskHandler.HandleLiquidations)

	// WebSocket
	mux.HandleFunc("/ws", s.wsServer.GetHub().ServeWS)

	// Prometheus metrics
	mux.Handle("/metrics", metrics.Handler())

	// Apply middleware chain: CORS -> RateLimit -> Metrics -> Handler
	var handler http.Handler
	if s.config.DisableRateLimit {
		handler = corsMiddleware(metricsMiddleware(mux))
	} else {
		handler = corsMiddleware(
			middleware.RateLimitMiddleware(s.rateLimiter)(metricsMiddleware(mux)),
		)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	// Start WebSocket hub
	go s.wsServer.GetHub().Run()

	// Start the rates broadcaster
	go s.startRatesBroadcaster()

	log.Printf("API server starting on %s (mock mode: %v)", addr, s.mockMode)
	log.Printf("Endpoints enabled: /v1/banks, /v1/account, /v1/health, /v1/liquidations")
	if s.config.DisableRateLimit {
		log.Printf("Rate limiting DISABLED (for testing)")
	} else {
		log.Printf("Rate limiting enabled: %d req/s per IP", 100)
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	close(s.stopBroadcast)
	return s.httpServer.Shutdown(ctx)
}

// GetHub returns the websocket hub, for wiring external event sources
func (s *Server) GetHub() *websocket.Hub {
	return s.wsServer.GetHub()
}

// startRatesBroadcaster periodically pushes bank rates into the hub's
// rates buffer. The hub flushes buffers to subscribers on its own tick.
func (s *Server) startRatesBroadcaster() {
	ticker := time.NewTicker(s.config.RatesBroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			banks, err := s.bankService.ListBanks(context.Background())
			if err != nil {
				continue
			}
			for _, bank := range banks {
				s.wsServer.BroadcastRates(&websocket.RateMessage{
					BankID:           bank.BankID,
					TotalAssets:      bank.TotalAssets,
					TotalLiabilities: bank.TotalLiabilities,
					Utilization:      bank.Utilization,
					LendingApr:       bank.LendingApr,
					BorrowingApr:     bank.BorrowingApr,
					Timestamp:        nowMillis(),
				})
				recordBankGauges(bank)
			}

		case <-s.stopBroadcast:
			return
		}
	}
}

// recordBankGauges exports a bank's pool state to Prometheus
func recordBankGauges(bank *types.Bank) {
	assets, err := strconv.ParseFloat(bank.TotalAssets, 64)
	if err != nil {
		return
	}
	liabilities, _ := strconv.ParseFloat(bank.TotalLiabilities, 64)
	utilization, _ := strconv.ParseFloat(bank.Utilization, 64)
	lendingApr, _ := strconv.ParseFloat(bank.LendingApr, 64)
	borrowingApr, _ := strconv.ParseFloat(bank.BorrowingApr, 64)

	metrics.GetCollector().RecordBankState(bank.BankID, assets, liabilities, utilization, lendingApr, borrowingApr)
}

// handleServerHealth handles server liveness checks
func (s *Server) handleServerHealth(w http.ResponseWriter, r *http.Request) {
	mode := "real"
	modeDescription := "Using in-memory lending engine (standalone mode)"
	if s.mockMode {
		mode = "mock"
		modeDescription = "Using mock data for development/testing"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"timestamp":        time.Now().Unix(),
		"mode":             mode,
		"mode_description": modeDescription,
		"warning":          "This API uses in-memory storage. For production, connect to a running Cosmos chain.",
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusRecorder captures the response status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		timer := metrics.NewTimer()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.GetCollector().RecordAPIRequest(
			r.Method, r.URL.Path, fmt.Sprintf("%d", rec.status), timer.ElapsedMs(),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Authority-Address")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
