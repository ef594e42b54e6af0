package liquidator

import (
	"sync"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// AccountCache is a thread-safe cache for accounts being watched
type AccountCache struct {
	accounts map[string]*types.Account
	mu       sync.RWMutex
}

// NewAccountCache creates a new account cache
func NewAccountCache() *AccountCache {
	return &AccountCache{
		accounts: make(map[string]*types.Account),
	}
}

// Get retrieves an account from the cache
func (c *AccountCache) Get(accountID string) (*types.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	acc, exists := c.accounts[accountID]
	return acc, exists
}

// Set stores an account in the cache
func (c *AccountCache) Set(account *types.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[account.ID] = account
}

// Delete removes an account from the cache
func (c *AccountCache) Delete(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.accounts, accountID)
}

// Len returns the number of accounts in the cache
func (c *AccountCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.accounts)
}

// Clear removes all accounts from the cache
func (c *AccountCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts = make(map[string]*types.Account)
}

// GetAll returns all accounts in the cache
func (c *AccountCache) GetAll() []*types.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	accounts := make([]*types.Account, 0, len(c.accounts))
	for _, acc := range c.accounts {
		accounts = append(accounts, acc)
	}
	return accounts
}

// GetByAuthority returns all accounts owned by an authority
func (c *AccountCache) GetByAuthority(authority string) []*types.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	accounts := make([]*types.Account, 0)
	for _, acc := range c.accounts {
		if acc.Authority == authority {
			accounts = append(accounts, acc)
		}
	}
	return accounts
}

// GetBorrowers returns all accounts holding at least one liability
func (c *AccountCache) GetBorrowers() []*types.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	accounts := make([]*types.Account, 0)
	for _, acc := range c.accounts {
		for i := range acc.Balances {
			balance := &acc.Balances[i]
			if balance.Active && !balance.IsEmpty(types.BalanceSideLiabilities) {
				accounts = append(accounts, acc)
				break
			}
		}
	}
	return accounts
}

// CandidateBuffer is a thread-safe buffer for liquidation candidates
// pending submission
type CandidateBuffer struct {
	candidates []*Candidate
	maxSize    int
	mu         sync.Mutex
}

// NewCandidateBuffer creates a new candidate buffer with the given max size
func NewCandidateBuffer(maxSize int) *CandidateBuffer {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &CandidateBuffer{
		candidates: make([]*Candidate, 0, maxSize),
		maxSize:    maxSize,
	}
}

// Add adds a candidate to the buffer
func (b *CandidateBuffer) Add(candidate *Candidate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.candidates = append(b.candidates, candidate)
}

// AddBatch adds multiple candidates to the buffer
func (b *CandidateBuffer) AddBatch(candidates []*Candidate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.candidates = append(b.candidates, candidates...)
}

// Flush returns all candidates and clears the buffer
func (b *CandidateBuffer) Flush() []*Candidate {
	b.mu.Lock()
	defer b.mu.Unlock()
	candidates := b.candidates
	b.candidates = make([]*Candidate, 0, b.maxSize)
	return candidates
}

// FlushBatch returns up to maxSize candidates and removes them from the buffer
func (b *CandidateBuffer) FlushBatch() []*Candidate {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.candidates) == 0 {
		return nil
	}

	count := b.maxSize
	if len(b.candidates) < count {
		count = len(b.candidates)
	}

	batch := b.candidates[:count]
	b.candidates = b.candidates[count:]
	return batch
}

// Len returns the number of candidates in the buffer
func (b *CandidateBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.candidates)
}

// IsFull returns true if the buffer is at or above max size
func (b *CandidateBuffer) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.candidates) >= b.maxSize
}

// Clear removes all candidates from the buffer
func (b *CandidateBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.candidates = make([]*Candidate, 0, b.maxSize)
}

// Peek returns the candidates without removing them (for inspection)
func (b *CandidateBuffer) Peek() []*Candidate {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]*Candidate, len(b.candidates))
	copy(result, b.candidates)
	return result
}

// BankCache is a thread-safe cache for bank state and oracle prices
type BankCache struct {
	banks map[string]*BankInfo
	mu    sync.RWMutex
}

// BankInfo holds a watched bank together with its latest feed price
type BankInfo struct {
	Bank  *types.Bank
	Price types.I80F48
}

// NewBankCache creates a new bank cache
func NewBankCache() *BankCache {
	return &BankCache{
		banks: make(map[string]*BankInfo),
	}
}

// Get retrieves bank info from the cache
func (c *BankCache) Get(bankID string) (*BankInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, exists := c.banks[bankID]
	return info, exists
}

// Set stores bank info in the cache
func (c *BankCache) Set(info *BankInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banks[info.Bank.ID] = info
}

// SetPrice updates the cached price for a bank
func (c *BankCache) SetPrice(bankID string, price types.I80F48) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, exists := c.banks[bankID]
	if !exists {
		return false
	}
	info.Price = price
	return true
}

// Delete removes bank info from the cache
func (c *BankCache) Delete(bankID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.banks, bankID)
}

// GetAll returns all bank info in the cache
func (c *BankCache) GetAll() []*BankInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	banks := make([]*BankInfo, 0, len(c.banks))
	for _, info := range c.banks {
		banks = append(banks, info)
	}
	return banks
}

// Len returns the number of banks in the cache
func (c *BankCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.banks)
}
