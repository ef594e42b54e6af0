package types

import (
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// BankOperationalState gates which operation directions a bank accepts.
type BankOperationalState uint8

const (
	BankPaused BankOperationalState = iota
	BankOperational
	BankReduceOnly
)

func (s BankOperationalState) String() string {
	switch s {
	case BankPaused:
		return "paused"
	case BankOperational:
		return "operational"
	case BankReduceOnly:
		return "reduce-only"
	default:
		return "unknown"
	}
}

// RiskTier classifies whether a bank's deposits count as collateral.
type RiskTier uint8

const (
	RiskTierCollateral RiskTier = iota
	// RiskTierIsolated deposits never back loans, and an account borrowing
	// from an isolated bank may hold no other liabilities.
	RiskTierIsolated
)

// AssetTag classifies the bank's underlying token. Staked banks need the
// LST mint and stake pool records alongside the oracle in every risk check.
type AssetTag uint8

const (
	AssetTagDefault AssetTag = iota
	AssetTagNative
	AssetTagStaked
)

// OracleAccountsPerTag returns how many oracle-adjacent records a balance
// with the given tag consumes in the per-balance feed protocol: bank +
// oracle, plus LST mint + stake pool for staked banks.
func OracleAccountsPerTag(tag AssetTag) (int, error) {
	switch tag {
	case AssetTagDefault, AssetTagNative:
		return 2, nil
	case AssetTagStaked:
		return 4, nil
	default:
		return 0, ErrAssetTagMismatch
	}
}

// Bank flags. Only the bad-debt-settlement and frozen bits are externally
// configurable; the emissions bits are managed by the emissions setup flow.
const (
	BankFlagEmissionsBorrowActive  uint64 = 1 << 0
	BankFlagEmissionsLendingActive uint64 = 1 << 1
	BankFlagPermissionlessBadDebt  uint64 = 1 << 2
	// BankFlagConfigFrozen restricts ConfigureBank to limit updates only.
	BankFlagConfigFrozen uint64 = 1 << 3

	bankFlagsEmissions    = BankFlagEmissionsBorrowActive | BankFlagEmissionsLendingActive
	bankFlagsConfigurable = BankFlagPermissionlessBadDebt | BankFlagConfigFrozen
)

// InterestRateConfig is the piecewise-linear optimal-utilization curve plus
// the fee carve-outs applied on top of the base borrow rate.
type InterestRateConfig struct {
	OptimalUtilizationRate I80F48 `json:"optimal_utilization_rate"`
	PlateauInterestRate    I80F48 `json:"plateau_interest_rate"`
	MaxInterestRate        I80F48 `json:"max_interest_rate"`

	InsuranceFeeFixedApr I80F48 `json:"insurance_fee_fixed_apr"`
	InsuranceIrFee       I80F48 `json:"insurance_ir_fee"`
	ProtocolFixedFeeApr  I80F48 `json:"protocol_fixed_fee_apr"`
	ProtocolIrFee        I80F48 `json:"protocol_ir_fee"`
}

// Validate rejects curves that are degenerate or non-monotone.
func (c *InterestRateConfig) Validate() error {
	one := OneFixed()
	if !c.OptimalUtilizationRate.IsPositive() || c.OptimalUtilizationRate.GTE(one) {
		return ErrInvalidConfig.Wrap("optimal utilization must be in (0, 1)")
	}
	if !c.PlateauInterestRate.IsPositive() {
		return ErrInvalidConfig.Wrap("plateau rate must be positive")
	}
	if !c.MaxInterestRate.IsPositive() {
		return ErrInvalidConfig.Wrap("max rate must be positive")
	}
	if c.PlateauInterestRate.GTE(c.MaxInterestRate) {
		return ErrInvalidConfig.Wrap("plateau rate must be below max rate")
	}
	return nil
}

// baseRate evaluates the utilization curve: linear up to the optimal
// utilization breakpoint, then linear from plateau to max.
func (c *InterestRateConfig) baseRate(utilization I80F48) (I80F48, error) {
	if utilization.LTE(c.OptimalUtilizationRate) {
		num, err := utilization.Mul(c.PlateauInterestRate)
		if err != nil {
			return I80F48{}, err
		}
		return num.Div(c.OptimalUtilizationRate)
	}
	one := OneFixed()
	over, err := utilization.Sub(c.OptimalUtilizationRate)
	if err != nil {
		return I80F48{}, err
	}
	span, err := one.Sub(c.OptimalUtilizationRate)
	if err != nil {
		return I80F48{}, err
	}
	slope, err := c.MaxInterestRate.Sub(c.PlateauInterestRate)
	if err != nil {
		return I80F48{}, err
	}
	frac, err := over.Div(span)
	if err != nil {
		return I80F48{}, err
	}
	scaled, err := frac.Mul(slope)
	if err != nil {
		return I80F48{}, err
	}
	return scaled.Add(c.PlateauInterestRate)
}

// InterestRates holds the annualized rates derived from current utilization.
type InterestRates struct {
	LendingRate      I80F48
	BorrowingRate    I80F48
	GroupFeesApr     I80F48
	InsuranceFeesApr I80F48
}

// CalcInterestRate derives the lending and borrowing APRs and the group and
// insurance fee APRs at the given utilization.
//
//	lending   = base * utilization
//	borrowing = base * (1 + ir_fees) + fixed_fees
func (c *InterestRateConfig) CalcInterestRate(utilization I80F48) (InterestRates, error) {
	base, err := c.baseRate(utilization)
	if err != nil {
		return InterestRates{}, err
	}

	lending, err := base.Mul(utilization)
	if err != nil {
		return InterestRates{}, err
	}

	rateFee, err := c.ProtocolIrFee.Add(c.InsuranceIrFee)
	if err != nil {
		return InterestRates{}, err
	}
	onePlusFee, err := OneFixed().Add(rateFee)
	if err != nil {
		return InterestRates{}, err
	}
	borrowing, err := base.Mul(onePlusFee)
	if err != nil {
		return InterestRates{}, err
	}
	totalFixed, err := c.ProtocolFixedFeeApr.Add(c.InsuranceFeeFixedApr)
	if err != nil {
		return InterestRates{}, err
	}
	borrowing, err = borrowing.Add(totalFixed)
	if err != nil {
		return InterestRates{}, err
	}

	groupFees, err := feeRate(base, c.ProtocolIrFee, c.ProtocolFixedFeeApr)
	if err != nil {
		return InterestRates{}, err
	}
	insuranceFees, err := feeRate(base, c.InsuranceIrFee, c.InsuranceFeeFixedApr)
	if err != nil {
		return InterestRates{}, err
	}

	if lending.IsNegative() || borrowing.IsNegative() || groupFees.IsNegative() || insuranceFees.IsNegative() {
		return InterestRates{}, ErrNegativeInterestRate
	}

	return InterestRates{
		LendingRate:      lending,
		BorrowingRate:    borrowing,
		GroupFeesApr:     groupFees,
		InsuranceFeesApr: insuranceFees,
	}, nil
}

func feeRate(base, irFee, fixedApr I80F48) (I80F48, error) {
	v, err := base.Mul(irFee)
	if err != nil {
		return I80F48{}, err
	}
	return v.Add(fixedApr)
}

// BankConfig is the admin-managed configuration of a bank.
type BankConfig struct {
	AssetWeightInit  I80F48 `json:"asset_weight_init"`
	AssetWeightMaint I80F48 `json:"asset_weight_maint"`

	LiabilityWeightInit  I80F48 `json:"liability_weight_init"`
	LiabilityWeightMaint I80F48 `json:"liability_weight_maint"`

	// Limits are native token amounts. math.MaxUint64 disables a limit.
	DepositLimit   I80F48 `json:"deposit_limit"`
	LiabilityLimit I80F48 `json:"liability_limit"`

	InterestRateConfig InterestRateConfig `json:"interest_rate_config"`

	OperationalState BankOperationalState `json:"operational_state"`

	RiskTier RiskTier `json:"risk_tier"`
	AssetTag AssetTag `json:"asset_tag"`

	// TotalAssetValueInitLimit is the USD soft cap above which the init
	// asset weight is discounted proportionally.
	TotalAssetValueInitLimit I80F48 `json:"total_asset_value_init_limit"`

	OracleSetup  OracleSetup `json:"oracle_setup"`
	OracleFeedID string      `json:"oracle_feed_id"`
	OracleMaxAge int64       `json:"oracle_max_age"`
}

func (c *BankConfig) Validate() error {
	one := OneFixed()

	if c.AssetWeightInit.IsNegative() || c.AssetWeightInit.GT(one) {
		return ErrInvalidConfig.Wrap("asset init weight out of [0, 1]")
	}
	if c.AssetWeightMaint.LT(c.AssetWeightInit) {
		return ErrInvalidConfig.Wrap("asset maint weight below init weight")
	}
	if c.LiabilityWeightInit.LT(one) {
		return ErrInvalidConfig.Wrap("liability init weight below 1")
	}
	if c.LiabilityWeightMaint.GT(c.LiabilityWeightInit) || c.LiabilityWeightMaint.LT(one) {
		return ErrInvalidConfig.Wrap("liability maint weight out of [1, init]")
	}
	if err := c.InterestRateConfig.Validate(); err != nil {
		return err
	}
	if c.RiskTier == RiskTierIsolated {
		if !c.AssetWeightInit.IsZero() || !c.AssetWeightMaint.IsZero() {
			return ErrInvalidConfig.Wrap("isolated banks must have zero asset weights")
		}
	}
	if err := c.validateOracle(); err != nil {
		return err
	}
	return nil
}

func (c *BankConfig) validateOracle() error {
	switch c.OracleSetup {
	case OracleSetupNone:
		return ErrOracleNotSetup
	case OracleSetupPush, OracleSetupPull, OracleSetupStakedPull:
		if c.OracleFeedID == "" {
			return ErrOracleNotSetup
		}
		if c.OracleMaxAge <= 0 {
			return ErrInvalidConfig.Wrap("oracle max age must be positive")
		}
		return nil
	default:
		return ErrInvalidOracleSetup
	}
}

// IsDepositLimitActive reports whether the deposit cap is enforced.
func (c *BankConfig) IsDepositLimitActive() bool {
	return !c.DepositLimit.Equal(noLimit())
}

// IsBorrowLimitActive reports whether the borrow cap is enforced.
func (c *BankConfig) IsBorrowLimitActive() bool {
	return !c.LiabilityLimit.Equal(noLimit())
}

// UsdInitLimitActive reports whether the USD soft cap discount applies.
func (c *BankConfig) UsdInitLimitActive() bool {
	return !c.TotalAssetValueInitLimit.IsZero() && !c.TotalAssetValueInitLimit.Equal(noLimit())
}

func noLimit() I80F48 {
	v, err := NewFixedFromString(fmt.Sprintf("%d", uint64(math.MaxUint64)))
	if err != nil {
		panic(err)
	}
	return v
}

// GetWeight returns the configured weight for a requirement type and side.
// Equity valuations are unweighted.
func (c *BankConfig) GetWeight(req RequirementType, side BalanceSide) I80F48 {
	switch {
	case req == RequirementInitial && side == BalanceSideAssets:
		return c.AssetWeightInit
	case req == RequirementInitial && side == BalanceSideLiabilities:
		return c.LiabilityWeightInit
	case req == RequirementMaintenance && side == BalanceSideAssets:
		return c.AssetWeightMaint
	case req == RequirementMaintenance && side == BalanceSideLiabilities:
		return c.LiabilityWeightMaint
	case req == RequirementEquity:
		return OneFixed()
	default:
		return ZeroFixed()
	}
}

// MintInfo describes the bank's underlying token, including the
// fee-on-transfer behavior some mints carry.
type MintInfo struct {
	Denom    string `json:"denom"`
	Decimals uint8  `json:"decimals"`

	// TransferFeeBps and MaxTransferFee describe the mint's transfer fee.
	// Zero bps means the mint takes no fee.
	TransferFeeBps uint64 `json:"transfer_fee_bps"`
	MaxTransferFee uint64 `json:"max_transfer_fee"`
}

// Bank is the per-asset pool record: configuration, share-price
// accumulators, running share totals, fee accumulators and emissions state.
type Bank struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`

	Mint MintInfo `json:"mint"`

	Config BankConfig `json:"config"`

	AssetShareValue     I80F48 `json:"asset_share_value"`
	LiabilityShareValue I80F48 `json:"liability_share_value"`

	TotalAssetShares     I80F48 `json:"total_asset_shares"`
	TotalLiabilityShares I80F48 `json:"total_liability_shares"`

	// Fee accumulators, in native token units (not shares). Outstanding
	// amounts have accrued but not yet been settled to the vaults.
	CollectedGroupFeesOutstanding     I80F48 `json:"collected_group_fees_outstanding"`
	CollectedInsuranceFeesOutstanding I80F48 `json:"collected_insurance_fees_outstanding"`
	CollectedProgramFeesOutstanding   I80F48 `json:"collected_program_fees_outstanding"`

	// Per-bank vault balances, in native token units. The coins live in the
	// shared module vault accounts; these fields are the per-bank ledger.
	LiquidityVault I80F48 `json:"liquidity_vault"`
	InsuranceVault I80F48 `json:"insurance_vault"`
	FeeVault       I80F48 `json:"fee_vault"`

	Flags uint64 `json:"flags"`

	EmissionsMintDenom string `json:"emissions_mint_denom,omitempty"`
	EmissionsRate      uint64 `json:"emissions_rate"`
	EmissionsRemaining I80F48 `json:"emissions_remaining"`

	CreatedAt  int64 `json:"created_at"`
	LastUpdate int64 `json:"last_update"`
}

// NewBank creates a bank with unit share prices and empty accumulators.
func NewBank(id, groupID string, mint MintInfo, config BankConfig, now int64) *Bank {
	return &Bank{
		ID:                  id,
		GroupID:             groupID,
		Mint:                mint,
		Config:              config,
		AssetShareValue:     OneFixed(),
		LiabilityShareValue: OneFixed(),
		TotalAssetShares:    ZeroFixed(),
		TotalLiabilityShares: ZeroFixed(),
		CollectedGroupFeesOutstanding:     ZeroFixed(),
		CollectedInsuranceFeesOutstanding: ZeroFixed(),
		CollectedProgramFeesOutstanding:   ZeroFixed(),
		LiquidityVault:     ZeroFixed(),
		InsuranceVault:     ZeroFixed(),
		FeeVault:           ZeroFixed(),
		EmissionsRemaining: ZeroFixed(),
		CreatedAt:          now,
		LastUpdate:         now,
	}
}

func (b *Bank) GetFlag(flag uint64) bool { return b.Flags&flag != 0 }

func (b *Bank) SetFlag(flag uint64)   { b.Flags |= flag }
func (b *Bank) UnsetFlag(flag uint64) { b.Flags &^= flag }

// UpdateConfigurableFlags applies externally settable bits only; any other
// bit in the request is rejected.
func (b *Bank) UpdateConfigurableFlags(flags uint64) error {
	if flags&^bankFlagsConfigurable != 0 {
		return ErrIllegalFlag
	}
	b.Flags = (b.Flags &^ bankFlagsConfigurable) | flags
	return nil
}

// ============ Shares / amount conversion ============

// GetAssetAmount converts asset shares to a native token amount.
func (b *Bank) GetAssetAmount(shares I80F48) (I80F48, error) {
	return shares.Mul(b.AssetShareValue)
}

// GetLiabilityAmount converts liability shares to a native token amount.
func (b *Bank) GetLiabilityAmount(shares I80F48) (I80F48, error) {
	return shares.Mul(b.LiabilityShareValue)
}

// GetAssetShares converts a native token amount to asset shares.
func (b *Bank) GetAssetShares(amount I80F48) (I80F48, error) {
	return amount.Div(b.AssetShareValue)
}

// GetLiabilityShares converts a native token amount to liability shares.
func (b *Bank) GetLiabilityShares(amount I80F48) (I80F48, error) {
	return amount.Div(b.LiabilityShareValue)
}

// ChangeAssetShares applies a share delta to the bank total, enforcing the
// deposit cap on increases unless bypassed (liquidation settlement).
func (b *Bank) ChangeAssetShares(delta I80F48, bypassDepositLimit bool) error {
	total, err := b.TotalAssetShares.Add(delta)
	if err != nil {
		return err
	}
	b.TotalAssetShares = total

	if delta.IsPositive() && b.Config.IsDepositLimitActive() && !bypassDepositLimit {
		totalDeposits, err := b.GetAssetAmount(total)
		if err != nil {
			return err
		}
		if totalDeposits.GT(b.Config.DepositLimit) {
			return ErrBankAssetCapacityExceeded
		}
	}
	return nil
}

// ChangeLiabilityShares applies a share delta to the bank total, enforcing
// the borrow cap on increases unless bypassed.
func (b *Bank) ChangeLiabilityShares(delta I80F48, bypassBorrowLimit bool) error {
	total, err := b.TotalLiabilityShares.Add(delta)
	if err != nil {
		return err
	}
	b.TotalLiabilityShares = total

	if delta.IsPositive() && b.Config.IsBorrowLimitActive() && !bypassBorrowLimit {
		totalLiabilities, err := b.GetLiabilityAmount(total)
		if err != nil {
			return err
		}
		if totalLiabilities.GTE(b.Config.LiabilityLimit) {
			return ErrBankLiabilityCapacityExceeded
		}
	}
	return nil
}

// CheckUtilizationRatio errors when liabilities exceed assets. Liquidation
// paths may leave a bank above the bound; every other operation re-checks.
func (b *Bank) CheckUtilizationRatio() error {
	assets, err := b.GetAssetAmount(b.TotalAssetShares)
	if err != nil {
		return err
	}
	liabilities, err := b.GetLiabilityAmount(b.TotalLiabilityShares)
	if err != nil {
		return err
	}
	if assets.LT(liabilities) {
		return ErrIllegalUtilizationRatio
	}
	return nil
}

// AssertOperationalMode gates an operation by the bank state. The optional
// increasing flag reports whether the operation grows the bank's risk
// (a new deposit or borrow); reduce-only banks reject those.
func (b *Bank) AssertOperationalMode(increasing ...bool) error {
	switch b.Config.OperationalState {
	case BankPaused:
		return ErrBankPaused
	case BankOperational:
		return nil
	case BankReduceOnly:
		if len(increasing) > 0 && increasing[0] {
			return ErrBankReduceOnly
		}
		return nil
	default:
		return ErrInternalLogic.Wrapf("unknown operational state %d", b.Config.OperationalState)
	}
}

// MaybeGetAssetWeightInitDiscount returns the init-weight discount factor
// when the bank's total collateral value exceeds the USD soft cap, or ok
// false when no discount applies.
func (b *Bank) MaybeGetAssetWeightInitDiscount(price I80F48) (I80F48, bool, error) {
	if !b.Config.UsdInitLimitActive() {
		return I80F48{}, false, nil
	}
	totalAmount, err := b.GetAssetAmount(b.TotalAssetShares)
	if err != nil {
		return I80F48{}, false, err
	}
	totalValue, err := CalcValue(totalAmount, price, b.Mint.Decimals, nil)
	if err != nil {
		return I80F48{}, false, err
	}
	if totalValue.IsZero() || totalValue.LT(b.Config.TotalAssetValueInitLimit) {
		return I80F48{}, false, nil
	}
	discount, err := b.Config.TotalAssetValueInitLimit.Div(totalValue)
	if err != nil {
		return I80F48{}, false, err
	}
	return discount, true, nil
}

// ============ Interest accrual ============

// AccrueInterest brings the share-price accumulators current and accrues
// the group/insurance/program fee accumulators for the elapsed period.
// A no-op when no time has passed, the bank is paused, or the pool is
// empty on either side. Any intermediate overflow aborts with no partial
// state committed.
func (b *Bank) AccrueInterest(now int64, programFeesEnabled bool, programFeeRate I80F48) error {
	timeDelta := now - b.LastUpdate
	if timeDelta <= 0 {
		return nil
	}
	if b.Config.OperationalState == BankPaused {
		return nil
	}
	b.LastUpdate = now

	totalAssets, err := b.GetAssetAmount(b.TotalAssetShares)
	if err != nil {
		return err
	}
	totalLiabilities, err := b.GetLiabilityAmount(b.TotalLiabilityShares)
	if err != nil {
		return err
	}
	if totalAssets.IsZero() || totalLiabilities.IsZero() {
		return nil
	}

	change, err := calcInterestRateAccrualStateChanges(
		uint64(timeDelta), totalAssets, totalLiabilities,
		&b.Config.InterestRateConfig, b.AssetShareValue, b.LiabilityShareValue,
	)
	if err != nil {
		return err
	}

	groupFees := change.groupFeePayment
	programFees := ZeroFixed()
	if programFeesEnabled && programFeeRate.IsPositive() {
		programFees, err = groupFees.Mul(programFeeRate)
		if err != nil {
			return err
		}
		groupFees, err = groupFees.Sub(programFees)
		if err != nil {
			return err
		}
	}

	newGroupFees, err := b.CollectedGroupFeesOutstanding.Add(groupFees)
	if err != nil {
		return err
	}
	newInsuranceFees, err := b.CollectedInsuranceFeesOutstanding.Add(change.insuranceFeePayment)
	if err != nil {
		return err
	}
	newProgramFees, err := b.CollectedProgramFeesOutstanding.Add(programFees)
	if err != nil {
		return err
	}

	b.AssetShareValue = change.assetShareValue
	b.LiabilityShareValue = change.liabilityShareValue
	b.CollectedGroupFeesOutstanding = newGroupFees
	b.CollectedInsuranceFeesOutstanding = newInsuranceFees
	b.CollectedProgramFeesOutstanding = newProgramFees
	return nil
}

type accrualStateChange struct {
	assetShareValue     I80F48
	liabilityShareValue I80F48
	groupFeePayment     I80F48
	insuranceFeePayment I80F48
}

func calcInterestRateAccrualStateChanges(
	timeDelta uint64,
	totalAssets, totalLiabilities I80F48,
	irc *InterestRateConfig,
	assetShareValue, liabilityShareValue I80F48,
) (accrualStateChange, error) {
	utilization, err := totalLiabilities.Div(totalAssets)
	if err != nil {
		return accrualStateChange{}, err
	}
	rates, err := irc.CalcInterestRate(utilization)
	if err != nil {
		return accrualStateChange{}, err
	}

	newAssetShareValue, err := accruedShareValue(rates.LendingRate, timeDelta, assetShareValue)
	if err != nil {
		return accrualStateChange{}, err
	}
	newLiabilityShareValue, err := accruedShareValue(rates.BorrowingRate, timeDelta, liabilityShareValue)
	if err != nil {
		return accrualStateChange{}, err
	}
	groupFeePayment, err := interestPaymentForPeriod(rates.GroupFeesApr, timeDelta, totalLiabilities)
	if err != nil {
		return accrualStateChange{}, err
	}
	insuranceFeePayment, err := interestPaymentForPeriod(rates.InsuranceFeesApr, timeDelta, totalLiabilities)
	if err != nil {
		return accrualStateChange{}, err
	}

	return accrualStateChange{
		assetShareValue:     newAssetShareValue,
		liabilityShareValue: newLiabilityShareValue,
		groupFeePayment:     groupFeePayment,
		insuranceFeePayment: insuranceFeePayment,
	}, nil
}

// accruedShareValue scales a share value by (1 + apr * dt / secondsPerYear).
func accruedShareValue(apr I80F48, timeDelta uint64, value I80F48) (I80F48, error) {
	dt, err := apr.Mul(NewFixedFromInt64(int64(timeDelta)))
	if err != nil {
		return I80F48{}, err
	}
	irPerPeriod, err := dt.Div(NewFixedFromInt64(SecondsPerYear))
	if err != nil {
		return I80F48{}, err
	}
	factor, err := OneFixed().Add(irPerPeriod)
	if err != nil {
		return I80F48{}, err
	}
	return value.Mul(factor)
}

// interestPaymentForPeriod returns value * apr * dt / secondsPerYear.
func interestPaymentForPeriod(apr I80F48, timeDelta uint64, value I80F48) (I80F48, error) {
	v, err := value.Mul(apr)
	if err != nil {
		return I80F48{}, err
	}
	v, err = v.Mul(NewFixedFromInt64(int64(timeDelta)))
	if err != nil {
		return I80F48{}, err
	}
	return v.Div(NewFixedFromInt64(SecondsPerYear))
}

// SocializeLoss spreads uncovered bad debt across all lenders by reducing
// the asset share price. A no-op when the bank has no asset shares or the
// loss exceeds the pool (nothing left to socialize against).
func (b *Bank) SocializeLoss(lossAmount I80F48) error {
	if b.TotalAssetShares.IsZero() {
		return nil
	}
	totalValue, err := b.TotalAssetShares.Mul(b.AssetShareValue)
	if err != nil {
		return err
	}
	if lossAmount.GTE(totalValue) {
		return nil
	}
	remaining, err := totalValue.Sub(lossAmount)
	if err != nil {
		return err
	}
	newShareValue, err := remaining.Div(b.TotalAssetShares)
	if err != nil {
		return err
	}
	b.AssetShareValue = newShareValue
	return nil
}

// ============ Transfer-fee helpers ============

// CalculatePostFeeAmount returns what arrives after the mint's transfer fee
// is taken from amount. The intermediate product is computed in big-integer
// space so full-range uint64 amounts never wrap.
func (m *MintInfo) CalculatePostFeeAmount(amount uint64) uint64 {
	if m.TransferFeeBps == 0 {
		return amount
	}
	amountInt := sdkmath.NewIntFromUint64(amount)
	fee := amountInt.
		Mul(sdkmath.NewIntFromUint64(m.TransferFeeBps)).
		Quo(sdkmath.NewInt(10_000))
	if m.MaxTransferFee > 0 {
		fee = sdkmath.MinInt(fee, sdkmath.NewIntFromUint64(m.MaxTransferFee))
	}
	fee = sdkmath.MinInt(fee, amountInt)
	return amount - fee.Uint64()
}

// CalculatePreFeeAmount returns the amount to send so that target arrives
// after the transfer fee. Symmetric with CalculatePostFeeAmount on both the
// deposit and withdraw legs. Errors when the grossed-up amount does not fit
// in uint64.
func (m *MintInfo) CalculatePreFeeAmount(target uint64) (uint64, error) {
	if m.TransferFeeBps == 0 {
		return target, nil
	}
	if m.TransferFeeBps >= 10_000 {
		return target, nil
	}
	// ceil(target * 10000 / (10000 - bps)), then cap at max fee.
	targetInt := sdkmath.NewIntFromUint64(target)
	denom := sdkmath.NewIntFromUint64(10_000 - m.TransferFeeBps)
	pre := targetInt.
		Mul(sdkmath.NewInt(10_000)).
		Add(denom).Sub(sdkmath.OneInt()).
		Quo(denom)
	if m.MaxTransferFee > 0 {
		pre = sdkmath.MinInt(pre, targetInt.Add(sdkmath.NewIntFromUint64(m.MaxTransferFee)))
	}
	if !pre.IsUint64() {
		return 0, ErrMathOverflow.Wrapf("pre-fee amount for target %d", target)
	}
	return pre.Uint64(), nil
}
