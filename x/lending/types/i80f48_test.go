package types

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
)

// TestNewFixedFromString tests decimal string parsing
func TestNewFixedFromString(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "42", want: "42.0"},
		{name: "fraction", input: "0.5", want: "0.5"},
		{name: "negative", input: "-1.25", want: "-1.25"},
		{name: "zero", input: "0", want: "0.0"},
		{name: "large", input: "1000000000000", want: "1000000000000.0"},
		{name: "garbage", input: "not-a-number", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewFixedFromString(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.String() != tc.want {
				t.Errorf("expected %s, got %s", tc.want, v.String())
			}
		})
	}
}

// TestNewFixedFromStringFloorsExcessPrecision tests that precision below
// 2^-48 is floored rather than rounded
func TestNewFixedFromStringFloorsExcessPrecision(t *testing.T) {
	// 2^-49 is below the representable resolution and floors to zero.
	tiny, err := NewFixedFromString("0.0000000000000017763568394002504646778106689453125")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tiny.IsZero() {
		t.Errorf("expected sub-resolution value to floor to zero, got %s", tiny.String())
	}
}

// TestFixedAddSub tests checked addition and subtraction
func TestFixedAddSub(t *testing.T) {
	a := mustFixedFromString("1.5")
	b := mustFixedFromString("2.25")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.String() != "3.75" {
		t.Errorf("expected 3.75, got %s", sum.String())
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff.String() != "-0.75" {
		t.Errorf("expected -0.75, got %s", diff.String())
	}
}

// TestFixedMul tests multiplication and its flooring behavior
func TestFixedMul(t *testing.T) {
	testCases := []struct {
		name string
		x    string
		y    string
		want string
	}{
		{name: "exact", x: "2", y: "3.5", want: "7.0"},
		{name: "fractions", x: "0.5", y: "0.5", want: "0.25"},
		{name: "negative", x: "-2", y: "1.5", want: "-3.0"},
		{name: "by zero", x: "123.456", y: "0", want: "0.0"},
		{name: "by one", x: "123.456", y: "1", want: "123.456"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x := mustFixedFromString(tc.x)
			y := mustFixedFromString(tc.y)
			got, err := x.Mul(y)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.String())
			}
		})
	}
}

// TestFixedDiv tests division and the divide-by-zero guard
func TestFixedDiv(t *testing.T) {
	x := mustFixedFromString("7")
	y := mustFixedFromString("2")

	got, err := x.Div(y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "3.5" {
		t.Errorf("expected 3.5, got %s", got.String())
	}

	_, err = x.Div(ZeroFixed())
	if err != ErrDivideByZero {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

// TestFixedMulDivRoundTrip tests that Div truncation stays within one unit
// of resolution of the exact quotient
func TestFixedMulDivRoundTrip(t *testing.T) {
	one := OneFixed()
	three := NewFixedFromInt64(3)

	third, err := one.Div(three)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := third.Mul(three)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.GT(one) {
		t.Errorf("expected round trip at or below 1, got %s", back.String())
	}
	diff, err := one.Sub(back)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsZeroWithTolerance(mustFixedFromString("0.000000000001")) {
		t.Errorf("round trip error too large: %s", diff.String())
	}
}

// TestFixedOverflow tests that out-of-range results report ErrMathOverflow
func TestFixedOverflow(t *testing.T) {
	huge, err := NewFixedFromMantissa(math.NewIntFromBigInt(maxMantissa))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := huge.Add(OneFixed()); err != ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow on add, got %v", err)
	}
	if _, err := huge.Mul(NewFixedFromInt64(2)); err != ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow on mul, got %v", err)
	}
}

// TestFixedNegAbs tests negation and absolute value
func TestFixedNegAbs(t *testing.T) {
	x := mustFixedFromString("-3.5")

	neg, err := x.Neg()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if neg.String() != "3.5" {
		t.Errorf("expected 3.5, got %s", neg.String())
	}

	abs, err := x.Abs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if abs.String() != "3.5" {
		t.Errorf("expected 3.5, got %s", abs.String())
	}
}

// TestFixedFloorCeil tests rounding toward negative and positive infinity
func TestFixedFloorCeil(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantFloor int64
		wantCeil  int64
	}{
		{name: "positive fraction", input: "2.7", wantFloor: 2, wantCeil: 3},
		{name: "negative fraction", input: "-2.7", wantFloor: -3, wantCeil: -2},
		{name: "integral", input: "5", wantFloor: 5, wantCeil: 5},
		{name: "zero", input: "0", wantFloor: 0, wantCeil: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x := mustFixedFromString(tc.input)

			if got := x.FloorInt(); !got.Equal(math.NewInt(tc.wantFloor)) {
				t.Errorf("expected floor %d, got %s", tc.wantFloor, got.String())
			}
			if got := x.CeilInt(); !got.Equal(math.NewInt(tc.wantCeil)) {
				t.Errorf("expected ceil %d, got %s", tc.wantCeil, got.String())
			}

			floor := x.Floor()
			if !floor.Equal(NewFixedFromInt64(tc.wantFloor)) {
				t.Errorf("expected floor %d, got %s", tc.wantFloor, floor.String())
			}
			ceil, err := x.Ceil()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ceil.Equal(NewFixedFromInt64(tc.wantCeil)) {
				t.Errorf("expected ceil %d, got %s", tc.wantCeil, ceil.String())
			}
		})
	}
}

// TestFixedComparisons tests the ordering predicates
func TestFixedComparisons(t *testing.T) {
	a := mustFixedFromString("1.5")
	b := mustFixedFromString("2.5")

	if !a.LT(b) || a.GT(b) {
		t.Errorf("expected %s < %s", a.String(), b.String())
	}
	if !a.LTE(a) || !a.GTE(a) || !a.Equal(a) {
		t.Errorf("expected %s to compare equal to itself", a.String())
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Errorf("Cmp results inconsistent for %s and %s", a.String(), b.String())
	}

	if !MinFixed(a, b).Equal(a) {
		t.Errorf("expected min to be %s", a.String())
	}
	if !MaxFixed(a, b).Equal(b) {
		t.Errorf("expected max to be %s", b.String())
	}
}

// TestFixedSignPredicates tests sign checks including the zero value
func TestFixedSignPredicates(t *testing.T) {
	var zeroValue I80F48

	if !zeroValue.IsZero() {
		t.Error("expected zero value struct to be zero")
	}
	if !ZeroFixed().IsZero() {
		t.Error("expected ZeroFixed to be zero")
	}
	if !OneFixed().IsPositive() {
		t.Error("expected one to be positive")
	}
	if !mustFixedFromString("-0.0001").IsNegative() {
		t.Error("expected -0.0001 to be negative")
	}
}

// TestFixedTolerances tests the dust-absorbing comparison helpers
func TestFixedTolerances(t *testing.T) {
	tol := mustFixedFromString("0.0001")

	testCases := []struct {
		name         string
		input        string
		zeroWithTol  bool
		positiveWTol bool
	}{
		{name: "dust", input: "0.00005", zeroWithTol: true, positiveWTol: false},
		{name: "negative dust", input: "-0.00005", zeroWithTol: true, positiveWTol: false},
		{name: "at tolerance", input: "0.0001", zeroWithTol: false, positiveWTol: true},
		{name: "meaningful", input: "1", zeroWithTol: false, positiveWTol: true},
		{name: "meaningful negative", input: "-1", zeroWithTol: false, positiveWTol: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x := mustFixedFromString(tc.input)
			if got := x.IsZeroWithTolerance(tol); got != tc.zeroWithTol {
				t.Errorf("IsZeroWithTolerance(%s): expected %v, got %v", tc.input, tc.zeroWithTol, got)
			}
			if got := x.IsPositiveWithTolerance(tol); got != tc.positiveWTol {
				t.Errorf("IsPositiveWithTolerance(%s): expected %v, got %v", tc.input, tc.positiveWTol, got)
			}
		})
	}
}

// TestFixedBytesRoundTrip tests the 16-byte little-endian wire form
func TestFixedBytesRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "zero", input: "0"},
		{name: "one", input: "1"},
		{name: "fraction", input: "0.000244140625"},
		{name: "negative", input: "-42.5"},
		{name: "large", input: "999999999999999"},
		{name: "large negative", input: "-999999999999999"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x := mustFixedFromString(tc.input)
			decoded := FixedFromLEBytes(x.Bytes())
			if !decoded.Equal(x) {
				t.Errorf("round trip mismatch: expected %s, got %s", x.String(), decoded.String())
			}
		})
	}
}

// TestFixedBytesLittleEndian tests the byte order of the wire form
func TestFixedBytesLittleEndian(t *testing.T) {
	one := OneFixed()
	b := one.Bytes()

	// Mantissa of 1 is 2^48, so byte 6 carries the single set bit.
	if b[6] != 1 {
		t.Errorf("expected byte 6 to be 1, got %d", b[6])
	}
	for i, v := range b {
		if i != 6 && v != 0 {
			t.Errorf("expected byte %d to be 0, got %d", i, v)
		}
	}

	// Negative values carry the sign in the top byte.
	negOne, err := one.Neg()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nb := negOne.Bytes()
	if nb[15]&0x80 == 0 {
		t.Error("expected sign bit set in top byte for -1")
	}
}

// TestFixedJSONRoundTrip tests the quoted-mantissa JSON encoding
func TestFixedJSONRoundTrip(t *testing.T) {
	x := mustFixedFromString("-123.4375")

	data, err := json.Marshal(x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded I80F48
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decoded.Equal(x) {
		t.Errorf("round trip mismatch: expected %s, got %s", x.String(), decoded.String())
	}

	if err := json.Unmarshal([]byte(`"not-a-mantissa"`), &decoded); err == nil {
		t.Error("expected error for invalid mantissa")
	}
}

// TestFixedString tests decimal rendering
func TestFixedString(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "integral keeps one digit", input: "5", want: "5.0"},
		{name: "trailing zeros trimmed", input: "1.50", want: "1.5"},
		{name: "negative", input: "-0.25", want: "-0.25"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustFixedFromString(tc.input).String()
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

// TestNewFixedFromInt tests integer conversion bounds
func TestNewFixedFromInt(t *testing.T) {
	v, err := NewFixedFromInt(math.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(NewFixedFromInt64(1_000_000)) {
		t.Errorf("expected 1000000, got %s", v.String())
	}

	// 10^31 exceeds the 80 integer bits.
	big := math.NewIntWithDecimal(1, 31)
	if _, err := NewFixedFromInt(big); err != ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
}

// TestExp10 tests the decimal scaling table
func TestExp10(t *testing.T) {
	if !Exp10(0).Equal(OneFixed()) {
		t.Errorf("expected 10^0 = 1, got %s", Exp10(0).String())
	}
	if !Exp10(6).Equal(NewFixedFromInt64(1_000_000)) {
		t.Errorf("expected 10^6 = 1000000, got %s", Exp10(6).String())
	}
	if !Exp10(18).Equal(NewFixedFromInt64(1_000_000_000_000_000_000)) {
		t.Errorf("expected 10^18, got %s", Exp10(18).String())
	}
}
