package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Subscription management
	subscriptions map[string]map[*Client]bool // topic -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Message buffers for different channels
	ratesBuffer  map[string]*RateMessage
	healthBuffer map[string]*HealthMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Configuration
	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Update intervals
	RatesInterval  time.Duration // Default: 1s
	HealthInterval time.Duration // Default: 1s

	// Connection limits
	MaxClientsPerIP  int
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		RatesInterval:    time.Second,
		HealthInterval:   time.Second,
		MaxClientsPerIP:  10,
		MaxSubscriptions: 50,
		MessageRateLimit: 100,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:       make(map[*Client]bool),
		channels:      make(map[string]map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		broadcast:     make(chan []byte, 256),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *SubscriptionRequest, 256),
		unsubscribe:   make(chan *SubscriptionRequest, 256),
		ratesBuffer:   make(map[string]*RateMessage),
		healthBuffer:  make(map[string]*HealthMessage),
		config:        config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	ratesTicker := time.NewTicker(h.config.RatesInterval)
	healthTicker := time.NewTicker(h.config.HealthInterval)

	defer ratesTicker.Stop()
	defer healthTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ratesTicker.C:
			h.broadcastRates()

		case <-healthTicker.C:
			h.broadcastHealth()
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		// Remove from all channels
		for channel, clients := range h.channels {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		// Remove from all subscriptions
		for topic := range h.subscriptions {
			delete(h.subscriptions[topic], client)
		}

		close(client.send)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	// Send subscription confirmation
	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	// Send unsubscription confirmation
	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// broadcastMessage sends a message to all clients in a channel
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Make a copy of clients to avoid holding lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// ============ Channel-specific broadcasts ============

// UpdateRates updates the rates buffer for a bank
func (h *Hub) UpdateRates(bankID string, rates *RateMessage) {
	h.mu.Lock()
	h.ratesBuffer[bankID] = rates
	h.mu.Unlock()
}

// UpdateHealth updates the health buffer for an account
func (h *Hub) UpdateHealth(accountID string, health *HealthMessage) {
	h.mu.Lock()
	h.healthBuffer[accountID] = health
	h.mu.Unlock()
}

// broadcastRates broadcasts all buffered rate updates
func (h *Hub) broadcastRates() {
	h.mu.RLock()
	rates := make(map[string]*RateMessage)
	for k, v := range h.ratesBuffer {
		rates[k] = v
	}
	h.mu.RUnlock()

	for bankID, rate := range rates {
		channel := "rates:" + bankID
		msg := &WSMessage{
			Type:    "rates",
			Channel: channel,
			Data:    rate,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

// broadcastHealth broadcasts all buffered health updates
func (h *Hub) broadcastHealth() {
	h.mu.RLock()
	healths := make(map[string]*HealthMessage)
	for k, v := range h.healthBuffer {
		healths[k] = v
	}
	h.mu.RUnlock()

	for accountID, health := range healths {
		channel := "health:" + accountID
		msg := &WSMessage{
			Type:    "health",
			Channel: channel,
			Data:    health,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

// BroadcastLiquidation broadcasts a liquidation to subscribers
func (h *Hub) BroadcastLiquidation(liquidation *LiquidationMessage) {
	msg := &WSMessage{
		Type:    "liquidation",
		Channel: "liquidations",
		Data:    liquidation,
	}
	h.BroadcastToChannel("liquidations", msg)
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// RateMessage represents a bank rate update
type RateMessage struct {
	BankID           string `json:"bank_id"`
	TotalAssets      string `json:"total_assets"`
	TotalLiabilities string `json:"total_liabilities"`
	Utilization      string `json:"utilization"`
	LendingApr       string `json:"lending_apr"`
	BorrowingApr     string `json:"borrowing_apr"`
	Timestamp        int64  `json:"timestamp"`
}

// HealthMessage represents an account health update
type HealthMessage struct {
	AccountID      string `json:"account_id"`
	AssetValue     string `json:"asset_value"`
	LiabilityValue string `json:"liability_value"`
	Health         string `json:"health"`
	Healthy        bool   `json:"healthy"`
	Timestamp      int64  `json:"timestamp"`
}

// LiquidationMessage represents a liquidation event
type LiquidationMessage struct {
	LiquidationID     string `json:"liquidation_id"`
	LiquidatorAccount string `json:"liquidator_account"`
	LiquidateeAccount string `json:"liquidatee_account"`
	AssetBankID       string `json:"asset_bank_id"`
	LiabilityBankID   string `json:"liability_bank_id"`
	AssetAmount       string `json:"asset_amount"`
	Timestamp         int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelCount returns the number of active channels
func (h *Hub) GetChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = generateID()
	}

	userID := r.URL.Query().Get("user_id")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, userID, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Helper function to get client IP
func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// Generate a simple ID
func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
