package types

import (
	"errors"
	"testing"
)

// encodeTestFeed builds a stored feed with the given real-time price and
// confidence in 1e-8 units.
func encodeTestFeed(t *testing.T, feedID string, price int64, conf uint64, publishTime int64) *OracleFeed {
	t.Helper()
	payload, err := EncodeFeedPayload(price, conf, -8, publishTime, price, conf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &OracleFeed{FeedID: feedID, Payload: payload, PostedAt: publishTime}
}

// assertNear fails unless got is within 0.0001 of want. The decimal
// exponent scale truncates, so decoded prices are never bit-exact.
func assertNear(t *testing.T, got I80F48, want string) {
	t.Helper()
	diff, err := got.Sub(mustFixedFromString(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsZeroWithTolerance(mustFixedFromString("0.0001")) {
		t.Errorf("expected value near %s, got %s", want, got.String())
	}
}

// TestNewPriceFeed tests payload decoding and the unbiased price
func TestNewPriceFeed(t *testing.T) {
	config := testBankConfig()

	// 10.0 at exponent -8.
	feed := encodeTestFeed(t, config.OracleFeedID, 1_000_000_000, 0, 100)
	pf, err := NewPriceFeed(&config, feed, nil, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	price, err := pf.PriceOfType(OraclePriceTypeRealTime, PriceBiasNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertNear(t, price, "10")

	twap, err := pf.PriceOfType(OraclePriceTypeTimeWeighted, PriceBiasNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !twap.Equal(price) {
		t.Errorf("expected matching ema price, got %s", twap.String())
	}
}

// TestPriceFeedBias tests the confidence-shaded price variants
func TestPriceFeedBias(t *testing.T) {
	config := testBankConfig()

	// Price 10.0, confidence 0.1. Adjusted confidence is
	// min(0.1 * 2.12, 10 * 0.05) = 0.212.
	feed := encodeTestFeed(t, config.OracleFeedID, 1_000_000_000, 10_000_000, 100)
	pf, err := NewPriceFeed(&config, feed, nil, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low, err := pf.PriceOfType(OraclePriceTypeRealTime, PriceBiasLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := pf.PriceOfType(OraclePriceTypeRealTime, PriceBiasHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertNear(t, low, "9.788")
	assertNear(t, high, "10.212")
	if !low.LT(high) {
		t.Error("expected low bias below high bias")
	}
}

// TestPriceFeedConfCap tests the 5% cap on the confidence interval
func TestPriceFeedConfCap(t *testing.T) {
	config := testBankConfig()

	// A huge reported confidence is capped at 5% of price: low bias 9.5.
	feed := encodeTestFeed(t, config.OracleFeedID, 1_000_000_000, 500_000_000, 100)
	pf, err := NewPriceFeed(&config, feed, nil, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low, err := pf.PriceOfType(OraclePriceTypeRealTime, PriceBiasLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertNear(t, low, "9.5")
}

// TestNewPriceFeedRejections tests the validation failure modes
func TestNewPriceFeedRejections(t *testing.T) {
	config := testBankConfig()

	testCases := []struct {
		name    string
		feed    *OracleFeed
		now     int64
		wantErr error
	}{
		{name: "missing feed", feed: nil, now: 100, wantErr: ErrOracleNotSetup},
		{name: "wrong feed id", feed: encodeTestFeed(t, "other-feed", 1_000_000_000, 0, 100), now: 100, wantErr: ErrWrongOracleAccount},
		{name: "stale", feed: encodeTestFeed(t, config.OracleFeedID, 1_000_000_000, 0, 100), now: 100 + config.OracleMaxAge + 1, wantErr: ErrStaleOracle},
		{name: "non-positive price", feed: encodeTestFeed(t, config.OracleFeedID, 0, 0, 100), now: 100, wantErr: ErrInvalidPrice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPriceFeed(&config, tc.feed, nil, tc.now)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestNewPriceFeedMalformedPayload tests trailing-byte rejection
func TestNewPriceFeedMalformedPayload(t *testing.T) {
	config := testBankConfig()
	feed := encodeTestFeed(t, config.OracleFeedID, 1_000_000_000, 0, 100)
	feed.Payload = append(feed.Payload, 0xff)

	if _, err := NewPriceFeed(&config, feed, nil, 100); !errors.Is(err, ErrMalformedOracleFeed) {
		t.Errorf("expected ErrMalformedOracleFeed, got %v", err)
	}
}

// TestStakedPriceFeed tests the exchange-rate scaled staked feed
func TestStakedPriceFeed(t *testing.T) {
	config := testBankConfig()
	config.OracleSetup = OracleSetupStakedPull

	pool := &StakePool{
		ID:             "pool-1",
		LstMintDenom:   "ulst",
		TotalLstSupply: mustFixedFromString("100"),
		TotalStaked:    mustFixedFromString("150"),
	}
	feed := encodeTestFeed(t, config.OracleFeedID, 1_000_000_000, 0, 100)

	pf, err := NewPriceFeed(&config, feed, pool, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price, err := pf.PriceOfType(OraclePriceTypeRealTime, PriceBiasNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10.0 scaled by the 1.5 exchange rate.
	assertNear(t, price, "15")

	// A missing or empty pool fails validation.
	if _, err := NewPriceFeed(&config, feed, nil, 100); !errors.Is(err, ErrStakePoolValidation) {
		t.Errorf("expected ErrStakePoolValidation, got %v", err)
	}
	empty := &StakePool{ID: "pool-2"}
	if _, err := NewPriceFeed(&config, feed, empty, 100); !errors.Is(err, ErrStakePoolValidation) {
		t.Errorf("expected ErrStakePoolValidation, got %v", err)
	}
}

// TestStakePoolExchangeRate tests the staked-per-LST rate
func TestStakePoolExchangeRate(t *testing.T) {
	pool := &StakePool{
		TotalLstSupply: mustFixedFromString("200"),
		TotalStaked:    mustFixedFromString("250"),
	}
	rate, err := pool.ExchangeRate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.String() != "1.25" {
		t.Errorf("expected rate 1.25, got %s", rate.String())
	}

	if _, err := (&StakePool{}).ExchangeRate(); !errors.Is(err, ErrStakePoolValidation) {
		t.Errorf("expected ErrStakePoolValidation, got %v", err)
	}
}
