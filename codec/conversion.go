package codec

import (
	"encoding/hex"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v16/arrow/decimal128"
	"github.com/shopspring/decimal"
)

// Conversions from the Go values a caller hands to the encoder. ok is false when the value has a type that cannot
// stand for the target at all, err is set when it has the right kind of type but not a usable value.

func toInt64(v interface{}) (val int64, ok bool, err error) {
	switch x := v.(type) {
	case int:
		return int64(x), true, nil
	case int8:
		return int64(x), true, nil
	case int16:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case int64:
		return x, true, nil
	case uint:
		return uintToInt64(uint64(x))
	case uint8:
		return int64(x), true, nil
	case uint16:
		return int64(x), true, nil
	case uint32:
		return int64(x), true, nil
	case uint64:
		return uintToInt64(x)
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case decimal.Decimal:
		if !x.IsInteger() {
			return 0, false, nil
		}
		if !x.BigInt().IsInt64() {
			return 0, true, strconv.ErrRange
		}
		return x.IntPart(), true, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			if ne, isNumErr := err.(*strconv.NumError); isNumErr && ne.Err == strconv.ErrRange {
				return 0, true, strconv.ErrRange
			}
			return 0, false, nil
		}
		return i, true, nil
	default:
		return 0, false, nil
	}
}

func uintToInt64(u uint64) (int64, bool, error) {
	if u > math.MaxInt64 {
		return 0, true, strconv.ErrRange
	}
	return int64(u), true, nil
}

func floatToInt64(f float64) (int64, bool, error) {
	if f != math.Trunc(f) || math.IsNaN(f) {
		return 0, false, nil
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, true, strconv.ErrRange
	}
	return int64(f), true, nil
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		i, ok, err := toInt64(v)
		if !ok || err != nil {
			return 0, false
		}
		return float64(i), true
	}
}

// toDecimalString gives the plain decimal text of a value, without exponent.
func toDecimalString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case decimal.Decimal:
		return x.String(), true
	case *big.Int:
		if x == nil {
			return "", false
		}
		return x.String(), true
	case decimal128.Num:
		return x.BigInt().String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	default:
		i, ok, err := toInt64(v)
		if !ok || err != nil {
			return "", false
		}
		return strconv.FormatInt(i, 10), true
	}
}

// toBinary accepts raw bytes, or their hex text as produced by delimited decoding.
func toBinary(v interface{}) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case string:
		b, err := hex.DecodeString(strings.TrimSpace(x))
		return b, err == nil
	default:
		return nil, false
	}
}
