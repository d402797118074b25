package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/tdcodec/common"
	"github.com/squareup/tdcodec/errors"
)

// Row is a decoded row in tuple shape.
type Row []interface{}

// Decode decodes one row into the shape selected by opts.RowShape: a Row, a map[string]interface{}, a string or a
// []byte. buffer holds exactly the row bytes, without the length prefix.
func Decode(cols *common.Columns, buffer []byte, opts Options) (interface{}, error) {
	switch opts.RowShape {
	case RowShapeDict:
		return DecodeRowMap(cols, buffer, opts)
	case RowShapeString:
		return DecodeDelimitedRow(cols, buffer, opts)
	case RowShapeRaw:
		if err := common.CheckAvailable(buffer, 0, cols.HeaderLength(), "indicator"); err != nil {
			return nil, err
		}
		opts.Metrics.rowDecoded()
		return common.CopyByteSlice(buffer), nil
	default:
		return DecodeRow(cols, buffer, opts)
	}
}

// DecodeRow decodes one row into its values in column order.
func DecodeRow(cols *common.Columns, buffer []byte, opts Options) (Row, error) {
	row := make(Row, 0, cols.Len())
	err := walkRow(cols, buffer, &opts, false, func(col *common.Column, v interface{}) {
		row = append(row, v)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// DecodeRowMap decodes one row into a map keyed by column alias.
func DecodeRowMap(cols *common.Columns, buffer []byte, opts Options) (map[string]interface{}, error) {
	row := make(map[string]interface{}, cols.Len())
	err := walkRow(cols, buffer, &opts, false, func(col *common.Column, v interface{}) {
		row[col.Alias] = v
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// DecodeDelimitedRow decodes one row into the textual form of its values joined by the delimiter, with the null
// literal in place of NULL.
func DecodeDelimitedRow(cols *common.Columns, buffer []byte, opts Options) (string, error) {
	sb := strings.Builder{}
	delim := opts.delimiter()
	null := opts.nullLiteral()
	first := true
	err := walkRow(cols, buffer, &opts, true, func(col *common.Column, v interface{}) {
		if !first {
			sb.WriteString(delim)
		}
		first = false
		if v == nil {
			sb.WriteString(null)
		} else {
			sb.WriteString(v.(string))
		}
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// walkRow calls emit for each included column in order. NULL columns are emitted as nil in text mode and as the
// configured null value otherwise. A row either decodes completely or emit is not called past the failing column
// and an error is returned. The columns must use up the whole buffer.
func walkRow(cols *common.Columns, buffer []byte, opts *Options, text bool, emit func(col *common.Column, v interface{})) error {
	headerLength := cols.HeaderLength()
	if err := common.CheckAvailable(buffer, 0, headerLength, "indicator"); err != nil {
		return err
	}
	indicator, offset := common.ReadIndicator(buffer, 0, headerLength)
	for i, col := range cols.All() {
		if indicator.IsNull(i) {
			// the null sentinel is consumed without looking at it
			if err := need(buffer, offset, col.NullLength, col); err != nil {
				return err
			}
			offset += col.NullLength
			if opts.included(i) {
				opts.Metrics.nullValue()
				if text {
					emit(col, nil)
				} else {
					emit(col, opts.nullValue())
				}
			}
			continue
		}
		var err error
		if !opts.included(i) {
			offset, err = skipValue(col, buffer, offset)
			if err != nil {
				return err
			}
			continue
		}
		var v interface{}
		v, offset, err = decodeValue(col, buffer, offset, opts, text)
		if err != nil {
			return err
		}
		emit(col, v)
	}
	if offset != len(buffer) {
		return errors.NewMalformedBufferError("row is %d bytes, its columns end at offset %d", len(buffer), offset)
	}
	opts.Metrics.rowDecoded()
	return nil
}

func need(buffer []byte, offset int, n int, col *common.Column) error {
	if n < 0 || offset+n > len(buffer) {
		return errors.NewMalformedBufferError("column %s needs %d bytes at offset %d, row length is %d",
			col.Name, n, offset, len(buffer))
	}
	return nil
}

// checkDecimalWidth guards against a Column whose Length was changed after Columns.Add picked a storage width.
func checkDecimalWidth(col *common.Column) error {
	if !common.IsDecimalWidth(col.Length) {
		return errors.NewInternalError(fmt.Sprintf("column %s has DECIMAL storage width %d", col.Name, col.Length))
	}
	return nil
}

func skipValue(col *common.Column, buffer []byte, offset int) (int, error) {
	if col.Type.IsVariableLength() {
		if err := need(buffer, offset, 2, col); err != nil {
			return 0, err
		}
		l, off := common.ReadUint16FromBufferLE(buffer, offset)
		if err := need(buffer, off, int(l), col); err != nil {
			return 0, err
		}
		return off + int(l), nil
	}
	if err := need(buffer, offset, col.Length, col); err != nil {
		return 0, err
	}
	return offset + col.Length, nil
}

func decodeValue(col *common.Column, buffer []byte, offset int, opts *Options, text bool) (interface{}, int, error) { //nolint:gocyclo
	switch col.Type {
	case common.TypeByteInt:
		if err := need(buffer, offset, 1, col); err != nil {
			return nil, 0, err
		}
		v, off := common.ReadInt8FromBuffer(buffer, offset)
		return intValue(int64(v), text), off, nil
	case common.TypeSmallInt:
		if err := need(buffer, offset, 2, col); err != nil {
			return nil, 0, err
		}
		v, off := common.ReadInt16FromBufferLE(buffer, offset)
		return intValue(int64(v), text), off, nil
	case common.TypeInteger:
		if err := need(buffer, offset, 4, col); err != nil {
			return nil, 0, err
		}
		v, off := common.ReadInt32FromBufferLE(buffer, offset)
		return intValue(int64(v), text), off, nil
	case common.TypeBigInt:
		if err := need(buffer, offset, 8, col); err != nil {
			return nil, 0, err
		}
		v, off := common.ReadInt64FromBufferLE(buffer, offset)
		return intValue(v, text), off, nil
	case common.TypeFloat:
		if err := need(buffer, offset, 8, col); err != nil {
			return nil, 0, err
		}
		v, off := common.ReadFloat64FromBufferLE(buffer, offset)
		if text {
			return strconv.FormatFloat(v, 'g', -1, 64), off, nil
		}
		return v, off, nil
	case common.TypeDecimal:
		if err := checkDecimalWidth(col); err != nil {
			return nil, 0, err
		}
		if err := need(buffer, offset, col.Length, col); err != nil {
			return nil, 0, err
		}
		n, off := common.ReadDecimalFromBuffer(buffer, offset, col.Length)
		if text {
			return common.FormatDecimal(n, col.Length, col.Scale), off, nil
		}
		switch opts.DecimalMode {
		case DecimalFloat:
			return common.DecimalToFloat64(n, col.Length, col.Scale), off, nil
		case DecimalStructured:
			return common.DecimalToStructured(n, col.Length, col.Scale), off, nil
		default:
			return common.FormatDecimal(n, col.Length, col.Scale), off, nil
		}
	case common.TypeDate:
		if err := need(buffer, offset, 4, col); err != nil {
			return nil, 0, err
		}
		v, off := common.ReadInt32FromBufferLE(buffer, offset)
		if !text && opts.DateTimeMode == DateTimeStructured {
			return common.DateToTime(v), off, nil
		}
		return common.FormatDate(v), off, nil
	case common.TypeTime, common.TypeTimestamp:
		if err := need(buffer, offset, col.Length, col); err != nil {
			return nil, 0, err
		}
		s := decodeText(buffer[offset:offset+col.Length], opts)
		off := offset + col.Length
		if text || opts.DateTimeMode != DateTimeStructured {
			return s, off, nil
		}
		parse := common.ParseTime
		if col.Type == common.TypeTimestamp {
			parse = common.ParseTimestamp
		}
		if t, ok := parse(s); ok {
			return t, off, nil
		}
		log.Debugf("column %s value %q is not a valid %s, returning it as text", col.Name, s, col.Type)
		opts.Metrics.timeFallback()
		return s, off, nil
	case common.TypeVarchar:
		b, off, err := readVarBytes(col, buffer, offset)
		if err != nil {
			return nil, 0, err
		}
		return decodeText(b, opts), off, nil
	case common.TypeByte:
		if err := need(buffer, offset, col.Length, col); err != nil {
			return nil, 0, err
		}
		return bytesValue(buffer[offset:offset+col.Length], text), offset + col.Length, nil
	case common.TypeVarbyte:
		b, off, err := readVarBytes(col, buffer, offset)
		if err != nil {
			return nil, 0, err
		}
		return bytesValue(b, text), off, nil
	default:
		// CHAR and every type without a dedicated rule are fixed length character data, padding kept
		if err := need(buffer, offset, col.Length, col); err != nil {
			return nil, 0, err
		}
		return decodeText(buffer[offset:offset+col.Length], opts), offset + col.Length, nil
	}
}

func readVarBytes(col *common.Column, buffer []byte, offset int) ([]byte, int, error) {
	if err := need(buffer, offset, 2, col); err != nil {
		return nil, 0, err
	}
	l, off := common.ReadUint16FromBufferLE(buffer, offset)
	if err := need(buffer, off, int(l), col); err != nil {
		return nil, 0, err
	}
	return buffer[off : off+int(l)], off + int(l), nil
}

func intValue(v int64, text bool) interface{} {
	if text {
		return strconv.FormatInt(v, 10)
	}
	return v
}

func bytesValue(b []byte, text bool) interface{} {
	if text {
		return hex.EncodeToString(b)
	}
	return common.CopyByteSlice(b)
}

func decodeText(b []byte, opts *Options) string {
	if enc := opts.textEncoding(); enc != nil {
		// every byte is a valid ISO 8859-1 character, decoding cannot fail
		s, err := enc.NewDecoder().Bytes(b)
		if err == nil {
			return string(s)
		}
	}
	return string(b)
}
