package types

import (
	bin "github.com/gagliardetto/binary"
)

// OracleSetup selects how a bank's price feed is sourced and parsed.
type OracleSetup uint8

const (
	OracleSetupNone OracleSetup = iota
	// OracleSetupPush is the legacy push feed: relayers post full price
	// payloads on a fixed schedule.
	OracleSetupPush
	// OracleSetupPull feeds are posted on demand by whoever needs a fresh
	// price, typically in the same transaction.
	OracleSetupPull
	// OracleSetupStakedPull is a pull feed for a liquid staking token: the
	// underlying price scaled by the stake pool exchange rate.
	OracleSetupStakedPull
)

func (s OracleSetup) String() string {
	switch s {
	case OracleSetupNone:
		return "none"
	case OracleSetupPush:
		return "push"
	case OracleSetupPull:
		return "pull"
	case OracleSetupStakedPull:
		return "staked-pull"
	default:
		return "unknown"
	}
}

// OraclePriceType selects the real-time or time-weighted price variant.
type OraclePriceType uint8

const (
	OraclePriceTypeRealTime OraclePriceType = iota
	OraclePriceTypeTimeWeighted
)

// PriceBias shades a price by its confidence interval. Asset valuations use
// the low bias, liability valuations the high bias.
type PriceBias uint8

const (
	PriceBiasNone PriceBias = iota
	PriceBiasLow
	PriceBiasHigh
)

// PriceFeed yields biased prices of either variant. Implementations are
// built per balance at valuation time and fail fast on staleness.
type PriceFeed interface {
	// PriceOfType returns the price in USD per whole token.
	PriceOfType(OraclePriceType, PriceBias) (I80F48, error)
}

// OracleFeed is the stored raw feed payload for one feed id.
type OracleFeed struct {
	FeedID  string `json:"feed_id"`
	Payload []byte `json:"payload"`

	// PostedAt is the block time of the last update, independent of the
	// publish time inside the payload.
	PostedAt int64 `json:"posted_at"`
}

// feedPayload is the little-endian wire layout of a posted price update.
type feedPayload struct {
	Price       int64
	Conf        uint64
	Exponent    int32
	PublishTime int64
	EmaPrice    int64
	EmaConf     uint64
}

// StakePool is the on-chain record backing a staked-pull feed: the LST
// total supply against the staked tokens it represents.
type StakePool struct {
	ID           string `json:"id"`
	LstMintDenom string `json:"lst_mint_denom"`

	TotalLstSupply I80F48 `json:"total_lst_supply"`
	TotalStaked    I80F48 `json:"total_staked"`

	LastUpdate int64 `json:"last_update"`
}

// ExchangeRate returns staked tokens per LST.
func (p *StakePool) ExchangeRate() (I80F48, error) {
	if !p.TotalLstSupply.IsPositive() || !p.TotalStaked.IsPositive() {
		return I80F48{}, ErrStakePoolValidation.Wrap("stake pool is empty")
	}
	return p.TotalStaked.Div(p.TotalLstSupply)
}

// pricePair is one decoded price variant with its confidence interval, both
// in USD per whole token.
type pricePair struct {
	price I80F48
	conf  I80F48
}

// decodedFeed implements PriceFeed over a parsed payload.
type decodedFeed struct {
	realTime     pricePair
	timeWeighted pricePair
}

// NewPriceFeed parses a bank's stored feed payload into a PriceFeed,
// checking feed identity, age and price validity. Staked-pull setups scale
// the feed by the stake pool exchange rate.
func NewPriceFeed(cfg *BankConfig, feed *OracleFeed, pool *StakePool, now int64) (PriceFeed, error) {
	switch cfg.OracleSetup {
	case OracleSetupPush, OracleSetupPull:
		return newDecodedFeed(cfg, feed, now)
	case OracleSetupStakedPull:
		base, err := newDecodedFeed(cfg, feed, now)
		if err != nil {
			return nil, err
		}
		if pool == nil {
			return nil, ErrStakePoolValidation.Wrap("stake pool record missing")
		}
		rate, err := pool.ExchangeRate()
		if err != nil {
			return nil, err
		}
		return &stakedFeed{base: base, exchangeRate: rate}, nil
	case OracleSetupNone:
		return nil, ErrOracleNotSetup
	default:
		return nil, ErrInvalidOracleSetup
	}
}

func newDecodedFeed(cfg *BankConfig, feed *OracleFeed, now int64) (*decodedFeed, error) {
	if feed == nil {
		return nil, ErrOracleNotSetup
	}
	if feed.FeedID != cfg.OracleFeedID {
		return nil, ErrWrongOracleAccount
	}

	var p feedPayload
	dec := bin.NewBinDecoder(feed.Payload)
	if err := dec.Decode(&p); err != nil {
		return nil, ErrMalformedOracleFeed.Wrap(err.Error())
	}
	if dec.Remaining() != 0 {
		return nil, ErrMalformedOracleFeed.Wrap("trailing bytes in feed payload")
	}

	if age := now - p.PublishTime; age > cfg.OracleMaxAge {
		return nil, ErrStaleOracle.Wrapf("price is %ds old, max age %ds", age, cfg.OracleMaxAge)
	}
	if p.Price <= 0 || p.EmaPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	scale, err := exponentScale(p.Exponent)
	if err != nil {
		return nil, err
	}
	realTime, err := scaledPair(p.Price, p.Conf, scale)
	if err != nil {
		return nil, err
	}
	timeWeighted, err := scaledPair(p.EmaPrice, p.EmaConf, scale)
	if err != nil {
		return nil, err
	}
	return &decodedFeed{realTime: realTime, timeWeighted: timeWeighted}, nil
}

// exponentScale returns 10^exponent as an I80F48 multiplier. Feeds publish
// fixed-point integers with a (usually negative) decimal exponent.
func exponentScale(exponent int32) (I80F48, error) {
	abs := exponent
	if abs < 0 {
		abs = -abs
	}
	if abs > 18 {
		return I80F48{}, ErrMalformedOracleFeed.Wrapf("exponent %d out of range", exponent)
	}
	pow := Exp10(uint8(abs))
	if exponent >= 0 {
		return pow, nil
	}
	return OneFixed().Div(pow)
}

func scaledPair(rawPrice int64, rawConf uint64, scale I80F48) (pricePair, error) {
	price, err := NewFixedFromInt64(rawPrice).Mul(scale)
	if err != nil {
		return pricePair{}, err
	}
	if rawConf > uint64(1)<<62 {
		return pricePair{}, ErrInvalidPrice
	}
	conf, err := NewFixedFromInt64(int64(rawConf)).Mul(scale)
	if err != nil {
		return pricePair{}, err
	}
	adj, err := adjustedConf(price, conf)
	if err != nil {
		return pricePair{}, err
	}
	return pricePair{price: price, conf: adj}, nil
}

// adjustedConf scales the reported confidence by 2.12 sigma and caps it at
// 5% of price.
func adjustedConf(price, conf I80F48) (I80F48, error) {
	scaled, err := conf.Mul(ConfIntervalMultiple)
	if err != nil {
		return I80F48{}, err
	}
	maxConf, err := price.Mul(MaxConfInterval)
	if err != nil {
		return I80F48{}, err
	}
	return MinFixed(scaled, maxConf), nil
}

func (f *decodedFeed) PriceOfType(priceType OraclePriceType, bias PriceBias) (I80F48, error) {
	pair := f.realTime
	if priceType == OraclePriceTypeTimeWeighted {
		pair = f.timeWeighted
	}
	switch bias {
	case PriceBiasNone:
		return pair.price, nil
	case PriceBiasLow:
		low, err := pair.price.Sub(pair.conf)
		if err != nil {
			return I80F48{}, err
		}
		return MaxFixed(low, ZeroFixed()), nil
	case PriceBiasHigh:
		return pair.price.Add(pair.conf)
	default:
		return I80F48{}, ErrInternalLogic.Wrapf("unknown price bias %d", bias)
	}
}

// stakedFeed scales every price of the base feed by the stake pool
// exchange rate.
type stakedFeed struct {
	base         PriceFeed
	exchangeRate I80F48
}

func (f *stakedFeed) PriceOfType(priceType OraclePriceType, bias PriceBias) (I80F48, error) {
	p, err := f.base.PriceOfType(priceType, bias)
	if err != nil {
		return I80F48{}, err
	}
	return p.Mul(f.exchangeRate)
}

// EncodeFeedPayload builds the wire payload of a price update. Used by the
// relayer tx builder and by tests.
func EncodeFeedPayload(price int64, conf uint64, exponent int32, publishTime int64, emaPrice int64, emaConf uint64) ([]byte, error) {
	p := feedPayload{
		Price:       price,
		Conf:        conf,
		Exponent:    exponent,
		PublishTime: publishTime,
		EmaPrice:    emaPrice,
		EmaConf:     emaConf,
	}
	return bin.MarshalBin(p)
}
