package codec

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/tdcodec/common"
	"github.com/squareup/tdcodec/errors"
)

const maxRowLength = math.MaxUint16

// EncodeRow encodes one value per column, in column order, into the wire layout of one row. nil stands for NULL. An
// encoded row is at most 65535 bytes.
func EncodeRow(cols *common.Columns, row []interface{}, opts Options) ([]byte, error) {
	return appendRow(nil, cols, row, &opts, false)
}

// AppendRow is EncodeRow appending to buffer. On error buffer is returned unchanged.
func AppendRow(buffer []byte, cols *common.Columns, row []interface{}, opts Options) ([]byte, error) {
	return appendRow(buffer, cols, row, &opts, false)
}

// EncodeRowMap encodes a row given as values keyed by column alias or name. Columns without a key are NULL.
func EncodeRowMap(cols *common.Columns, row map[string]interface{}, opts Options) ([]byte, error) {
	values, err := rowFromMap(cols, row)
	if err != nil {
		return nil, err
	}
	return appendRow(nil, cols, values, &opts, false)
}

// EncodeDelimitedRow encodes a row given as text values joined by the delimiter. The line is split at most
// column count - 1 times, so the last value may contain the delimiter.
func EncodeDelimitedRow(cols *common.Columns, line string, opts Options) ([]byte, error) {
	parts := strings.SplitN(line, opts.delimiter(), cols.Len())
	values := make([]interface{}, len(parts))
	for i, p := range parts {
		values[i] = p
	}
	return appendRow(nil, cols, values, &opts, true)
}

// EncodeRows encodes rows into a row set buffer, each row preceded by its u16 length.
func EncodeRows(cols *common.Columns, rows [][]interface{}, opts Options) ([]byte, error) {
	var buffer []byte
	for _, row := range rows {
		start := len(buffer)
		buffer = common.AppendUint16ToBufferLE(buffer, 0)
		var err error
		buffer, err = appendRow(buffer, cols, row, &opts, false)
		if err != nil {
			return nil, err
		}
		common.PutUint16LE(buffer, start, uint16(len(buffer)-start-2))
	}
	return buffer, nil
}

func rowFromMap(cols *common.Columns, row map[string]interface{}) ([]interface{}, error) {
	values := make([]interface{}, cols.Len())
	seen := make([]bool, cols.Len())
	for name, v := range row {
		i, ok := cols.Index(name)
		if !ok {
			return nil, errors.NewUnknownColumnError(name)
		}
		if seen[i] {
			return nil, errors.NewCodecErrorf(errors.InvalidValue, "Column %s is given more than once", cols.At(i).Name)
		}
		seen[i] = true
		values[i] = v
	}
	return values, nil
}

func appendRow(buffer []byte, cols *common.Columns, row []interface{}, opts *Options, text bool) ([]byte, error) {
	if len(row) != cols.Len() {
		return buffer, errors.NewColumnCountMismatchError(cols.Len(), len(row))
	}
	start := len(buffer)
	headerLength := cols.HeaderLength()
	// the reserved header may hold bytes of an earlier use of the backing array
	out := slices.Grow(buffer, headerLength)[:start+headerLength]
	common.ClearIndicator(out[start:])
	for i, col := range cols.All() {
		v := row[i]
		if isNull(v, opts, text) {
			common.SetIndicatorNull(out[start:start+headerLength], i)
			out = appendNull(out, col)
			opts.Metrics.nullValue()
			continue
		}
		var err error
		out, err = encodeValue(out, col, v, opts)
		if err != nil {
			return buffer[:start], err
		}
	}
	if rowLength := len(out) - start; rowLength > maxRowLength {
		return buffer[:start], errors.NewCodecErrorf(errors.ValueTooLong, "Encoded row is %d bytes, a row is at most %d bytes",
			rowLength, maxRowLength)
	}
	opts.Metrics.rowEncoded()
	return out, nil
}

func isNull(v interface{}, opts *Options, text bool) bool {
	if v == nil {
		return true
	}
	if !text && !opts.NullAsLiteral {
		return false
	}
	s, ok := v.(string)
	return ok && s == opts.nullLiteral()
}

func appendNull(buffer []byte, col *common.Column) []byte {
	return common.AppendPadding(buffer, col.Type.NullPad(), col.NullLength)
}

func encodeValue(buffer []byte, col *common.Column, v interface{}, opts *Options) ([]byte, error) { //nolint:gocyclo
	switch col.Type {
	case common.TypeByteInt:
		i, err := integerValue(col, v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, err
		}
		return common.AppendInt8ToBuffer(buffer, int8(i)), nil
	case common.TypeSmallInt:
		i, err := integerValue(col, v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return nil, err
		}
		return common.AppendInt16ToBufferLE(buffer, int16(i)), nil
	case common.TypeInteger:
		i, err := integerValue(col, v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		return common.AppendInt32ToBufferLE(buffer, int32(i)), nil
	case common.TypeBigInt:
		i, err := integerValue(col, v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return nil, err
		}
		return common.AppendInt64ToBufferLE(buffer, i), nil
	case common.TypeFloat:
		f, ok := toFloat64(v)
		if !ok {
			return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
		}
		return common.AppendFloat64ToBufferLE(buffer, f), nil
	case common.TypeDecimal:
		return appendDecimal(buffer, col, v, opts)
	case common.TypeDate:
		var d int32
		switch x := v.(type) {
		case time.Time:
			d = common.TimeToDate(x)
		case string:
			var err error
			if d, err = common.ParseDateString(x); err != nil {
				return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
			}
		default:
			return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
		}
		return common.AppendInt32ToBufferLE(buffer, d), nil
	case common.TypeTime, common.TypeTimestamp:
		var b []byte
		switch x := v.(type) {
		case time.Time:
			if col.Type == common.TypeTime {
				b = []byte(common.FormatTime(x, col.Length))
			} else {
				b = []byte(common.FormatTimestamp(x, col.Length))
			}
		default:
			var err error
			if b, err = textBytes(col, v, opts); err != nil {
				return nil, err
			}
		}
		return appendFixed(buffer, col, b, ' ')
	case common.TypeVarchar:
		b, err := textBytes(col, v, opts)
		if err != nil {
			return nil, err
		}
		return appendVariable(buffer, col, b)
	case common.TypeByte:
		b, ok := toBinary(v)
		if !ok {
			return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
		}
		return appendFixed(buffer, col, b, 0)
	case common.TypeVarbyte:
		b, ok := toBinary(v)
		if !ok {
			return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
		}
		return appendVariable(buffer, col, b)
	default:
		b, err := textBytes(col, v, opts)
		if err != nil {
			return nil, err
		}
		return appendFixed(buffer, col, b, ' ')
	}
}

func integerValue(col *common.Column, v interface{}, lo int64, hi int64) (int64, error) {
	i, ok, err := toInt64(v)
	if !ok {
		return 0, errors.NewInvalidValueError(col.Name, v, col.Type.String())
	}
	if err != nil || i < lo || i > hi {
		return 0, errors.NewValueOutOfRangeError(col.Name, fmt.Sprintf("%v is outside %d to %d", v, lo, hi))
	}
	return i, nil
}

func appendDecimal(buffer []byte, col *common.Column, v interface{}, opts *Options) ([]byte, error) {
	if err := checkDecimalWidth(col); err != nil {
		return nil, err
	}
	s, ok := toDecimalString(v)
	if !ok {
		return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
	}
	unscaled, truncated, err := common.ParseDecimalString(s, col.Scale)
	if err != nil {
		return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
	}
	if truncated {
		log.Debugf("column %s value %s has more than %d fraction digits, extra digits dropped", col.Name, s, col.Scale)
		opts.Metrics.decimalTruncation()
	}
	out, err := common.AppendDecimalToBuffer(buffer, unscaled, col.Length)
	if err != nil {
		return nil, errors.NewValueOutOfRangeError(col.Name, err.Error())
	}
	return out, nil
}

// textBytes converts character data to the session character set. Byte slices are taken as already converted.
func textBytes(col *common.Column, v interface{}, opts *Options) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		enc := opts.textEncoding()
		if enc == nil {
			return []byte(x), nil
		}
		b, err := enc.NewEncoder().Bytes([]byte(x))
		if err != nil {
			return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
		}
		return b, nil
	default:
		return nil, errors.NewInvalidValueError(col.Name, v, col.Type.String())
	}
}

func appendFixed(buffer []byte, col *common.Column, b []byte, pad byte) ([]byte, error) {
	if len(b) > col.Length {
		return nil, errors.NewValueTooLongError(col.Name, len(b), col.Length)
	}
	buffer = append(buffer, b...)
	return common.AppendPadding(buffer, pad, col.Length-len(b)), nil
}

func appendVariable(buffer []byte, col *common.Column, b []byte) ([]byte, error) {
	limit := col.Length
	if limit <= 0 || limit > maxRowLength {
		limit = maxRowLength
	}
	if len(b) > limit {
		return nil, errors.NewValueTooLongError(col.Name, len(b), limit)
	}
	return common.AppendBytesToBufferLE(buffer, b), nil
}
