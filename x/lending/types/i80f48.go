package types

import (
	"encoding/json"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// fracBits is the number of fractional bits in an I80F48.
const fracBits = 48

var (
	oneMantissa = new(big.Int).Lsh(big.NewInt(1), fracBits)
	fracMask    = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), fracBits), big.NewInt(1))

	// Mantissa bounds of a two's-complement i128.
	maxMantissa = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minMantissa = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

	twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
)

// I80F48 is a signed binary fixed-point number with 80 integer bits and 48
// fractional bits, the unit of every consensus-critical quantity in the
// module (shares, share prices, oracle prices, weights, rates). The on-disk
// form is the 16-byte little-endian two's-complement mantissa. All
// arithmetic is checked: an operation whose result does not fit in an i128
// mantissa returns ErrMathOverflow rather than wrapping.
type I80F48 struct {
	m math.Int
}

// mant returns the mantissa, treating the zero value as zero.
func (x I80F48) mant() *big.Int {
	if x.m.IsNil() {
		return new(big.Int)
	}
	return x.m.BigInt()
}

func newChecked(m *big.Int) (I80F48, error) {
	if m.Cmp(maxMantissa) > 0 || m.Cmp(minMantissa) < 0 {
		return I80F48{}, ErrMathOverflow
	}
	return I80F48{m: math.NewIntFromBigInt(m)}, nil
}

// ZeroFixed returns 0.
func ZeroFixed() I80F48 {
	return I80F48{m: math.ZeroInt()}
}

// OneFixed returns 1.
func OneFixed() I80F48 {
	return I80F48{m: math.NewIntFromBigInt(new(big.Int).Set(oneMantissa))}
}

// NewFixedFromInt64 converts an int64 to an I80F48. Always in range.
func NewFixedFromInt64(v int64) I80F48 {
	return I80F48{m: math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(v), fracBits))}
}

// NewFixedFromInt converts an integer token amount to an I80F48. Errors if
// the amount exceeds 80 integer bits.
func NewFixedFromInt(v math.Int) (I80F48, error) {
	if v.IsNil() {
		return ZeroFixed(), nil
	}
	return newChecked(new(big.Int).Lsh(v.BigInt(), fracBits))
}

// NewFixedFromMantissa wraps a raw i128 mantissa.
func NewFixedFromMantissa(m math.Int) (I80F48, error) {
	if m.IsNil() {
		return ZeroFixed(), nil
	}
	return newChecked(m.BigInt())
}

// NewFixedFromString parses a decimal string ("1.5", "-0.0001") into an
// I80F48, flooring any excess precision below 2^-48.
func NewFixedFromString(s string) (I80F48, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return I80F48{}, fmt.Errorf("invalid decimal %q", s)
	}
	m := new(big.Int).Mul(r.Num(), oneMantissa)
	m.Div(m, r.Denom()) // Div floors, matching Mul semantics
	return newChecked(m)
}

func mustFixedFromString(s string) I80F48 {
	x, err := NewFixedFromString(s)
	if err != nil {
		panic(err)
	}
	return x
}

// Mantissa returns the raw i128 mantissa.
func (x I80F48) Mantissa() math.Int {
	return math.NewIntFromBigInt(x.mant())
}

// Bytes returns the 16-byte little-endian two's-complement wire form.
func (x I80F48) Bytes() [16]byte {
	m := x.mant()
	if m.Sign() < 0 {
		m = new(big.Int).Add(twoPow128, m)
	}
	var out [16]byte
	raw := m.Bytes() // big-endian
	for i, b := range raw {
		out[len(raw)-1-i] = b
	}
	return out
}

// FixedFromLEBytes decodes the 16-byte little-endian two's-complement wire
// form. The inverse of Bytes for all in-range values.
func FixedFromLEBytes(b [16]byte) I80F48 {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	m := new(big.Int).SetBytes(be)
	if b[15]&0x80 != 0 {
		m.Sub(m, twoPow128)
	}
	return I80F48{m: math.NewIntFromBigInt(m)}
}

// Add returns x + y, erroring on overflow.
func (x I80F48) Add(y I80F48) (I80F48, error) {
	return newChecked(new(big.Int).Add(x.mant(), y.mant()))
}

// Sub returns x - y, erroring on overflow.
func (x I80F48) Sub(y I80F48) (I80F48, error) {
	return newChecked(new(big.Int).Sub(x.mant(), y.mant()))
}

// Mul returns x * y floored to the nearest representable value below,
// erroring on overflow.
func (x I80F48) Mul(y I80F48) (I80F48, error) {
	prod := new(big.Int).Mul(x.mant(), y.mant())
	// Arithmetic shift floors for negative products as well.
	return newChecked(prod.Rsh(prod, fracBits))
}

// Div returns x / y truncated toward zero, erroring on overflow or when y
// is zero.
func (x I80F48) Div(y I80F48) (I80F48, error) {
	ym := y.mant()
	if ym.Sign() == 0 {
		return I80F48{}, ErrDivideByZero
	}
	num := new(big.Int).Lsh(x.mant(), fracBits)
	return newChecked(num.Quo(num, ym))
}

// Neg returns -x. Errors only for the most negative mantissa.
func (x I80F48) Neg() (I80F48, error) {
	return newChecked(new(big.Int).Neg(x.mant()))
}

// Abs returns |x|.
func (x I80F48) Abs() (I80F48, error) {
	return newChecked(new(big.Int).Abs(x.mant()))
}

// Floor returns the largest integral value <= x.
func (x I80F48) Floor() I80F48 {
	m := new(big.Int).Rsh(x.mant(), fracBits)
	return I80F48{m: math.NewIntFromBigInt(m.Lsh(m, fracBits))}
}

// Ceil returns the smallest integral value >= x.
func (x I80F48) Ceil() (I80F48, error) {
	m := new(big.Int).Add(x.mant(), fracMask)
	m.Rsh(m, fracBits)
	return newChecked(m.Lsh(m, fracBits))
}

// FloorInt returns floor(x) as an integer.
func (x I80F48) FloorInt() math.Int {
	return math.NewIntFromBigInt(new(big.Int).Rsh(x.mant(), fracBits))
}

// CeilInt returns ceil(x) as an integer.
func (x I80F48) CeilInt() math.Int {
	m := new(big.Int).Add(x.mant(), fracMask)
	return math.NewIntFromBigInt(m.Rsh(m, fracBits))
}

func (x I80F48) Cmp(y I80F48) int       { return x.mant().Cmp(y.mant()) }
func (x I80F48) Equal(y I80F48) bool    { return x.Cmp(y) == 0 }
func (x I80F48) LT(y I80F48) bool       { return x.Cmp(y) < 0 }
func (x I80F48) LTE(y I80F48) bool      { return x.Cmp(y) <= 0 }
func (x I80F48) GT(y I80F48) bool       { return x.Cmp(y) > 0 }
func (x I80F48) GTE(y I80F48) bool      { return x.Cmp(y) >= 0 }
func (x I80F48) IsZero() bool           { return x.mant().Sign() == 0 }
func (x I80F48) IsPositive() bool       { return x.mant().Sign() > 0 }
func (x I80F48) IsNegative() bool       { return x.mant().Sign() < 0 }

// IsZeroWithTolerance reports |x| < tolerance.
func (x I80F48) IsZeroWithTolerance(tolerance I80F48) bool {
	abs := new(big.Int).Abs(x.mant())
	return abs.Cmp(tolerance.mant()) < 0
}

// IsPositiveWithTolerance reports x >= tolerance.
func (x I80F48) IsPositiveWithTolerance(tolerance I80F48) bool {
	return x.mant().Cmp(tolerance.mant()) >= 0
}

// MinFixed returns the smaller of x and y.
func MinFixed(x, y I80F48) I80F48 {
	if x.Cmp(y) <= 0 {
		return x
	}
	return y
}

// MaxFixed returns the larger of x and y.
func MaxFixed(x, y I80F48) I80F48 {
	if x.Cmp(y) >= 0 {
		return x
	}
	return y
}

// String renders x as a decimal with up to 12 fractional digits, for logs
// and events only. The lossless forms are Bytes and Mantissa.
func (x I80F48) String() string {
	r := new(big.Rat).SetFrac(x.mant(), new(big.Int).Set(oneMantissa))
	s := r.FloatString(12)
	// Trim trailing zeros but keep at least one fractional digit.
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i++
	}
	return s[:i]
}

// Float64 is a lossy conversion for diagnostics and events, never for
// consensus math.
func (x I80F48) Float64() float64 {
	f, _ := new(big.Rat).SetFrac(x.mant(), new(big.Int).Set(oneMantissa)).Float64()
	return f
}

// MarshalJSON encodes the mantissa as a quoted decimal integer, the JSON
// analogue of the 16-byte wire form: lossless and order-free.
func (x I80F48) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.mant().String())
}

// UnmarshalJSON decodes a quoted decimal mantissa.
func (x *I80F48) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	m, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid I80F48 mantissa %q", s)
	}
	v, err := newChecked(m)
	if err != nil {
		return err
	}
	*x = v
	return nil
}
