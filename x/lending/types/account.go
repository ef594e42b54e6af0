package types

// Account flags.
const (
	// AccountFlagDisabled freezes the account permanently. Set by
	// bankruptcy settlement.
	AccountFlagDisabled uint64 = 1 << 0
	// AccountFlagInFlashloan suspends initial health checks between the
	// start and end of a flashloan bracket.
	AccountFlagInFlashloan uint64 = 1 << 1
	// AccountFlagDeprecated is retired and never set; the bit stays
	// reserved so stored flag words keep their meaning.
	AccountFlagDeprecated uint64 = 1 << 2
	// AccountFlagTransferAuthorityAllowed is armed by the group admin and
	// consumed by the owner's authority transfer.
	AccountFlagTransferAuthorityAllowed uint64 = 1 << 3

	accountFlagsMask = AccountFlagDisabled | AccountFlagInFlashloan |
		AccountFlagDeprecated | AccountFlagTransferAuthorityAllowed
)

// BalanceSide selects the asset or liability side of a balance.
type BalanceSide uint8

const (
	BalanceSideAssets BalanceSide = iota
	BalanceSideLiabilities
)

// RequirementType selects the weight/price regime of a health check.
type RequirementType uint8

const (
	// RequirementInitial gates new positions: init weights, time-weighted
	// prices, and stale asset oracles tolerated at zero value.
	RequirementInitial RequirementType = iota
	// RequirementMaintenance gates liquidation: maint weights, real-time
	// prices, staleness is an error.
	RequirementMaintenance
	// RequirementEquity is unweighted: time-weighted prices, used by the
	// bankruptcy check.
	RequirementEquity
)

func (r RequirementType) String() string {
	switch r {
	case RequirementInitial:
		return "initial"
	case RequirementMaintenance:
		return "maintenance"
	case RequirementEquity:
		return "equity"
	default:
		return "unknown"
	}
}

// OraclePriceType returns the price variant this requirement values with.
func (r RequirementType) OraclePriceType() OraclePriceType {
	if r == RequirementMaintenance {
		return OraclePriceTypeRealTime
	}
	return OraclePriceTypeTimeWeighted
}

// Balance is one slot of a lending account: the account's share position in
// a single bank. A balance never holds both sides at once.
type Balance struct {
	Active bool   `json:"active"`
	BankID string `json:"bank_id,omitempty"`

	// BankAssetTag is snapshotted at activation so inactive-slot iteration
	// and the per-balance feed protocol never need a bank read.
	BankAssetTag AssetTag `json:"bank_asset_tag"`

	AssetShares     I80F48 `json:"asset_shares"`
	LiabilityShares I80F48 `json:"liability_shares"`

	EmissionsOutstanding I80F48 `json:"emissions_outstanding"`
	LastUpdate           int64  `json:"last_update"`
}

func newInactiveBalance() Balance {
	return Balance{
		AssetShares:          ZeroFixed(),
		LiabilityShares:      ZeroFixed(),
		EmissionsOutstanding: ZeroFixed(),
	}
}

// IsEmpty reports whether the given side is empty within the share
// tolerance.
func (b *Balance) IsEmpty(side BalanceSide) bool {
	switch side {
	case BalanceSideAssets:
		return b.AssetShares.IsZeroWithTolerance(EmptyBalanceThreshold)
	default:
		return b.LiabilityShares.IsZeroWithTolerance(EmptyBalanceThreshold)
	}
}

// ChangeAssetShares applies a share delta to the balance.
func (b *Balance) ChangeAssetShares(delta I80F48) error {
	v, err := b.AssetShares.Add(delta)
	if err != nil {
		return err
	}
	b.AssetShares = v
	return nil
}

// ChangeLiabilityShares applies a share delta to the balance.
func (b *Balance) ChangeLiabilityShares(delta I80F48) error {
	v, err := b.LiabilityShares.Add(delta)
	if err != nil {
		return err
	}
	b.LiabilityShares = v
	return nil
}

// Close deactivates the slot. Both sides must be empty and no emissions may
// be outstanding.
func (b *Balance) Close() error {
	if !b.EmissionsOutstanding.IsZeroWithTolerance(ZeroAmountThreshold) {
		return ErrCannotCloseOutstandingEmissions
	}
	if !b.IsEmpty(BalanceSideAssets) || !b.IsEmpty(BalanceSideLiabilities) {
		return ErrIllegalBalanceState.Wrap("balance is not empty")
	}
	*b = newInactiveBalance()
	return nil
}

// Amounts returns the token amounts of both sides at the bank's current
// share prices.
func (b *Balance) Amounts(bank *Bank) (assets, liabilities I80F48, err error) {
	assets, err = bank.GetAssetAmount(b.AssetShares)
	if err != nil {
		return I80F48{}, I80F48{}, err
	}
	liabilities, err = bank.GetLiabilityAmount(b.LiabilityShares)
	if err != nil {
		return I80F48{}, I80F48{}, err
	}
	return assets, liabilities, nil
}

// HealthCache is the last computed health snapshot, stored on the account
// for off-chain consumers. Never an input to consensus decisions.
type HealthCache struct {
	AssetValue     I80F48 `json:"asset_value"`
	LiabilityValue I80F48 `json:"liability_value"`

	// Prices holds the low-bias time-weighted price used per balance slot,
	// zero for inactive slots and slots whose oracle failed.
	Prices [MaxBalances]I80F48 `json:"prices"`

	Timestamp int64 `json:"timestamp"`

	// Healthy is the verdict; EngineOk is false when any oracle or math
	// failure prevented a full valuation.
	Healthy  bool `json:"healthy"`
	EngineOk bool `json:"engine_ok"`
}

// Account is a user's lending account in a group: an authority plus a fixed
// arena of balance slots.
type Account struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	Authority string `json:"authority"`

	Balances [MaxBalances]Balance `json:"balances"`

	Flags uint64 `json:"flags"`

	// EmissionsDestination, when set, is the address the permissionless
	// emissions withdrawal pays to.
	EmissionsDestination string `json:"emissions_destination,omitempty"`

	HealthCache HealthCache `json:"health_cache"`

	CreatedAt int64 `json:"created_at"`
}

// NewAccount creates an account with all slots inactive.
func NewAccount(id, groupID, authority string, now int64) *Account {
	acc := &Account{
		ID:        id,
		GroupID:   groupID,
		Authority: authority,
		CreatedAt: now,
	}
	for i := range acc.Balances {
		acc.Balances[i] = newInactiveBalance()
	}
	return acc
}

func (a *Account) GetFlag(flag uint64) bool { return a.Flags&flag != 0 }

// SetFlag sets a known flag bit.
func (a *Account) SetFlag(flag uint64) error {
	if flag&^accountFlagsMask != 0 || flag == AccountFlagDeprecated {
		return ErrIllegalFlag
	}
	a.Flags |= flag
	return nil
}

// UnsetFlag clears a known flag bit.
func (a *Account) UnsetFlag(flag uint64) error {
	if flag&^accountFlagsMask != 0 {
		return ErrIllegalFlag
	}
	a.Flags &^= flag
	return nil
}

func (a *Account) IsDisabled() bool    { return a.GetFlag(AccountFlagDisabled) }
func (a *Account) IsInFlashloan() bool { return a.GetFlag(AccountFlagInFlashloan) }

// FindBalance returns the active balance for a bank, or nil.
func (a *Account) FindBalance(bankID string) *Balance {
	for i := range a.Balances {
		if a.Balances[i].Active && a.Balances[i].BankID == bankID {
			return &a.Balances[i]
		}
	}
	return nil
}

// firstInactiveSlot returns the index of the first inactive slot, or -1.
func (a *Account) firstInactiveSlot() int {
	for i := range a.Balances {
		if !a.Balances[i].Active {
			return i
		}
	}
	return -1
}

// ActiveBalanceCount returns the number of active slots.
func (a *Account) ActiveBalanceCount() int {
	n := 0
	for i := range a.Balances {
		if a.Balances[i].Active {
			n++
		}
	}
	return n
}

// CanBeClosed reports whether the account may be closed: not disabled, not
// mid-flashloan, and every slot inactive.
func (a *Account) CanBeClosed() error {
	if a.IsDisabled() {
		return ErrAccountDisabled
	}
	if a.IsInFlashloan() {
		return ErrAccountInFlashloan
	}
	for i := range a.Balances {
		if a.Balances[i].Active {
			return ErrIllegalBalanceState.Wrap("account has active balances")
		}
	}
	return nil
}

// TransferAuthority re-keys the account. The group admin must have armed
// the transfer flag first; the flag is consumed by the transfer.
func (a *Account) TransferAuthority(newAuthority string) error {
	if a.IsDisabled() {
		return ErrAccountDisabled
	}
	if !a.GetFlag(AccountFlagTransferAuthorityAllowed) {
		return ErrIllegalAccountAuthorityTransfer
	}
	if newAuthority == "" || newAuthority == a.Authority {
		return ErrIllegalAccountAuthorityTransfer
	}
	a.Authority = newAuthority
	a.Flags &^= AccountFlagTransferAuthorityAllowed
	return nil
}

// ============ Valuation helpers ============

// CalcValue converts a token amount at a price to a USD value, optionally
// weighted: amount * weight * price / 10^decimals.
func CalcValue(amount, price I80F48, decimals uint8, weight *I80F48) (I80F48, error) {
	if amount.IsZero() {
		return ZeroFixed(), nil
	}
	v := amount
	var err error
	if weight != nil {
		v, err = v.Mul(*weight)
		if err != nil {
			return I80F48{}, err
		}
	}
	v, err = v.Mul(price)
	if err != nil {
		return I80F48{}, err
	}
	return v.Div(Exp10(decimals))
}

// CalcAmount converts a USD value back to a token amount at a price:
// value * 10^decimals / price.
func CalcAmount(value, price I80F48, decimals uint8) (I80F48, error) {
	v, err := value.Mul(Exp10(decimals))
	if err != nil {
		return I80F48{}, err
	}
	return v.Div(price)
}

// CalcEmissions returns the emissions accrued for a balance amount over a
// period: period * amount * rate / (secondsPerYear * 10^decimals). The rate
// is annual emissions in emissions-mint native units per whole deposited or
// borrowed token.
func CalcEmissions(period int64, balanceAmount I80F48, decimals uint8, rate uint64) (I80F48, error) {
	if period <= 0 || rate == 0 || balanceAmount.IsZero() {
		return ZeroFixed(), nil
	}
	v, err := balanceAmount.Mul(NewFixedFromInt64(period))
	if err != nil {
		return I80F48{}, err
	}
	v, err = v.Mul(NewFixedFromInt64(int64(rate)))
	if err != nil {
		return I80F48{}, err
	}
	v, err = v.Div(NewFixedFromInt64(SecondsPerYear))
	if err != nil {
		return I80F48{}, err
	}
	return v.Div(Exp10(decimals))
}
