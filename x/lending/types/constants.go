package types

// Seconds per (non-leap) year, used by the interest accrual and emissions math
const SecondsPerYear = 31_536_000

// Hours per year, used when compounding an APR into an APY for display
const HoursPerYear = 8760

// MaxBalances is the number of balance slots in a lending account.
const MaxBalances = 16

// Emissions timestamps before this point are treated as unset; the first
// claim after setup starts the clock instead of paying out retroactively.
const MinEmissionsStartTime = 1_681_989_983

// Module account names backing the three vault classes. Per-bank vault
// balances are tracked on the Bank record; the module accounts pool the
// actual coins across banks.
const (
	ModuleName         = "lending"
	LiquidityVaultName = "lending_liquidity_vault"
	InsuranceVaultName = "lending_insurance_vault"
	FeeVaultName       = "lending_fee_vault"
)

var (
	// ZeroAmountThreshold is the tolerance below which a token amount is
	// considered zero. Absorbs rounding dust from share conversions.
	ZeroAmountThreshold = mustFixedFromString("0.0001")

	// EmptyBalanceThreshold is the share tolerance below which a balance
	// side is considered empty.
	EmptyBalanceThreshold = mustFixedFromString("0.0001")

	// BankruptThreshold is the USD value of assets below which an insolvent
	// account is eligible for bankruptcy settlement.
	BankruptThreshold = mustFixedFromString("0.1")

	// MaxConfInterval caps the oracle confidence interval at 5% of price.
	MaxConfInterval = mustFixedFromString("0.05")

	// ConfIntervalMultiple scales the reported confidence (2.12 sigma).
	ConfIntervalMultiple = mustFixedFromString("2.12")
)

// exp10 holds powers of ten as I80F48 for decimal scaling of token amounts.
var exp10 = func() [19]I80F48 {
	var table [19]I80F48
	n := int64(1)
	for i := 0; i < 19; i++ {
		table[i] = NewFixedFromInt64(n)
		if i < 18 {
			n *= 10
		}
	}
	return table
}()

// Exp10 returns 10^decimals as an I80F48. Decimals beyond 18 are rejected
// at bank configuration time.
func Exp10(decimals uint8) I80F48 {
	return exp10[decimals]
}
