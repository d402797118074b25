package common

import (
	"math/big"
	"math/bits"
	"strings"

	"github.com/apache/arrow/go/v16/arrow/decimal128"
	"github.com/shopspring/decimal"
	"github.com/squareup/tdcodec/errors"
)

// DECIMAL values travel as a two's complement integer scaled by 10^scale, stored in 1, 2, 4, 8 or 16 bytes. The
// storage width, not the precision, decides how the bytes are read.

var (
	ErrInvalidDecimalString = errors.New("invalid decimal string")
	ErrDecimalOverflow      = errors.New("decimal value does not fit the column width")
)

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	twoTo128  = new(big.Int).Lsh(big.NewInt(1), 128)
	lowMask64 = new(big.Int).SetUint64(^uint64(0))
)

var pow10 = [...]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000, 10000000000, 100000000000,
	1000000000000, 10000000000000, 100000000000000, 1000000000000000, 10000000000000000, 100000000000000000,
	1000000000000000000, 10000000000000000000,
}

// IsDecimalWidth reports whether w is a storage width for DECIMAL values.
func IsDecimalWidth(w int) bool {
	switch w {
	case 1, 2, 4, 8, 16:
		return true
	default:
		return false
	}
}

// DecimalWidth is the storage width the server uses for a DECIMAL of the given precision.
func DecimalWidth(precision int) int {
	switch {
	case precision <= 2:
		return 1
	case precision <= 4:
		return 2
	case precision <= 9:
		return 4
	case precision <= 18:
		return 8
	default:
		return 16
	}
}

// ReadDecimalFromBuffer reads a DECIMAL of the given storage width, sign extending narrow widths to 128 bits.
func ReadDecimalFromBuffer(buffer []byte, offset int, width int) (decimal128.Num, int) {
	switch width {
	case 1:
		v, off := ReadInt8FromBuffer(buffer, offset)
		return decimal128.FromI64(int64(v)), off
	case 2:
		v, off := ReadInt16FromBufferLE(buffer, offset)
		return decimal128.FromI64(int64(v)), off
	case 4:
		v, off := ReadInt32FromBufferLE(buffer, offset)
		return decimal128.FromI64(int64(v)), off
	case 8:
		v, off := ReadInt64FromBufferLE(buffer, offset)
		return decimal128.FromI64(v), off
	default:
		lo, off := ReadUint64FromBufferLE(buffer, offset)
		hi, off := ReadInt64FromBufferLE(buffer, off)
		return decimal128.New(hi, lo), off
	}
}

// FormatDecimal renders n with the decimal point inserted scale digits from the right.
func FormatDecimal(n decimal128.Num, width int, scale int) string {
	if width <= 8 {
		return FormatScaledInt64(int64(n.LowBits()), scale)
	}
	return FormatScaledInt128(n.HighBits(), n.LowBits(), scale)
}

// FormatScaledInt64 renders v / 10^scale. The sign is printed once, in front of the integer part.
func FormatScaledInt64(v int64, scale int) string {
	neg := v < 0
	mag := uint64(v)
	if neg {
		mag = uint64(-v)
	}
	if scale <= 0 {
		return signed(neg, formatUint(mag))
	}
	if scale >= len(pow10) {
		return FormatScaledInt128(v>>63, uint64(v), scale)
	}
	p := pow10[scale]
	intPart := formatUint(mag / p)
	frac := formatUint(mag % p)
	sb := strings.Builder{}
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(intPart)
	sb.WriteByte('.')
	for i := len(frac); i < scale; i++ {
		sb.WriteByte('0')
	}
	sb.WriteString(frac)
	return sb.String()
}

// FormatScaledInt128 renders the 128 bit two's complement value hi:lo divided by 10^scale.
func FormatScaledInt128(hi int64, lo uint64, scale int) string {
	neg := hi < 0
	uhi := uint64(hi)
	if neg {
		lo = ^lo + 1
		uhi = ^uhi
		if lo == 0 {
			uhi++
		}
	}
	// digits are produced least significant first
	digits := make([]byte, 0, 40)
	for uhi != 0 || lo != 0 {
		var r uint64
		uhi, r = bits.Div64(0, uhi, 10)
		lo, r = bits.Div64(r, lo, 10)
		digits = append(digits, byte('0'+r))
	}
	for len(digits) < scale+1 {
		digits = append(digits, '0')
	}
	sb := strings.Builder{}
	if neg {
		sb.WriteByte('-')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		if i == scale-1 {
			sb.WriteByte('.')
		}
		sb.WriteByte(digits[i])
	}
	return sb.String()
}

// DecimalToStructured converts a wire DECIMAL into a decimal.Decimal.
func DecimalToStructured(n decimal128.Num, width int, scale int) decimal.Decimal {
	if width <= 8 {
		return decimal.New(int64(n.LowBits()), -int32(scale))
	}
	return decimal.NewFromBigInt(n.BigInt(), -int32(scale))
}

// DecimalToFloat64 converts a wire DECIMAL into the nearest float64.
func DecimalToFloat64(n decimal128.Num, width int, scale int) float64 {
	f, _ := DecimalToStructured(n, width, scale).Float64()
	return f
}

// ParseDecimalString turns a decimal string into its unscaled integer for the given scale. Fraction digits beyond
// scale are dropped, not rounded, and truncated is set when that happens.
func ParseDecimalString(s string, scale int) (unscaled *big.Int, truncated bool, err error) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}
	if intPart == "" && frac == "" {
		return nil, false, errors.Wrapf(ErrInvalidDecimalString, "%q", s)
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return nil, false, errors.Wrapf(ErrInvalidDecimalString, "%q", s)
	}
	if len(frac) > scale {
		frac = frac[:scale]
		truncated = true
	} else if len(frac) < scale {
		frac += strings.Repeat("0", scale-len(frac))
	}
	digits := intPart + frac
	if digits == "" {
		digits = "0"
	}
	unscaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false, errors.Wrapf(ErrInvalidDecimalString, "%q", s)
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	return unscaled, truncated, nil
}

// AppendDecimalToBuffer encodes an unscaled DECIMAL value into width bytes.
func AppendDecimalToBuffer(buffer []byte, unscaled *big.Int, width int) ([]byte, error) {
	if width == 16 {
		if unscaled.Cmp(minInt128) < 0 || unscaled.Cmp(maxInt128) > 0 {
			return nil, errors.Wrapf(ErrDecimalOverflow, "%s needs more than 128 bits", unscaled.String())
		}
		// two's complement: negative values are stored as 2^128 + v
		u := new(big.Int).Set(unscaled)
		if u.Sign() < 0 {
			u.Add(u, twoTo128)
		}
		lo := new(big.Int).And(u, lowMask64).Uint64()
		hi := new(big.Int).Rsh(u, 64).Uint64()
		buffer = AppendUint64ToBufferLE(buffer, lo)
		return AppendUint64ToBufferLE(buffer, hi), nil
	}
	bitsAvailable := width*8 - 1
	if !unscaled.IsInt64() || unscaled.BitLen() > bitsAvailable {
		if !(unscaled.Sign() < 0 && unscaled.IsInt64() && unscaled.Int64() == -(int64(1)<<uint(bitsAvailable))) {
			return nil, errors.Wrapf(ErrDecimalOverflow, "%s does not fit in %d bytes", unscaled.String(), width)
		}
	}
	v := unscaled.Int64()
	switch width {
	case 1:
		return AppendInt8ToBuffer(buffer, int8(v)), nil
	case 2:
		return AppendInt16ToBufferLE(buffer, int16(v)), nil
	case 4:
		return AppendInt32ToBufferLE(buffer, int32(v)), nil
	default:
		return AppendInt64ToBufferLE(buffer, v), nil
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func formatUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func signed(neg bool, s string) string {
	if neg {
		return "-" + s
	}
	return s
}
