package codec

import (
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v16/arrow/decimal128"
	"github.com/shopspring/decimal"
	"github.com/squareup/tdcodec/common"
	"github.com/squareup/tdcodec/common/commontest"
	"github.com/squareup/tdcodec/conf"
	"github.com/squareup/tdcodec/errors"
	"github.com/squareup/tdcodec/metrics"
	"github.com/stretchr/testify/require"
)

func allTypesColumns() *common.Columns {
	return common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "b", WireType: common.TDByteint, Nullable: true},
		{Name: "s", WireType: common.TDSmallint, Nullable: true},
		{Name: "i", WireType: common.TDInteger, Nullable: true},
		{Name: "bi", WireType: common.TDBigint, Nullable: true},
		{Name: "f", WireType: common.TDFloat, Nullable: true},
		{Name: "d", WireType: common.TDDecimal, Length: 8, Precision: 18, Scale: 2, Nullable: true},
		{Name: "c", WireType: common.TDChar, Length: 5, Nullable: true},
		{Name: "vc", WireType: common.TDVarchar, Length: 20, Nullable: true},
		{Name: "dt", WireType: common.TDDate, Nullable: true},
		{Name: "tm", WireType: common.TDTime, Length: 8, Nullable: true},
		{Name: "ts", WireType: common.TDTimestamp, Length: 19, Nullable: true},
		{Name: "by", WireType: common.TDByte, Length: 3, Nullable: true},
		{Name: "vb", WireType: common.TDVarbyte, Length: 10, Nullable: true},
	})
}

func allTypesRow() []interface{} {
	return []interface{}{
		int64(-5), int64(300), int64(70000), int64(1 << 40), 3.5, "-123.45", "abcde", "hello",
		"2024-03-15", "12:34:56", "2024-03-15 12:34:56", []byte{1, 2, 3}, []byte{9},
	}
}

func TestRoundTripAllTypes(t *testing.T) {
	cols := allTypesColumns()
	buff, err := EncodeRow(cols, allTypesRow(), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, cols.HeaderLength())
	require.Equal(t, []byte{0, 0}, buff[:2])

	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row(allTypesRow()), row)
}

func TestRoundTripBoundaryValues(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "b", WireType: common.TDByteint},
		{Name: "s", WireType: common.TDSmallint},
		{Name: "i", WireType: common.TDInteger},
		{Name: "bi", WireType: common.TDBigint},
		{Name: "f", WireType: common.TDFloat},
		{Name: "d16", WireType: common.TDDecimal, Length: 16, Precision: 38, Scale: 0},
	})
	rows := [][]interface{}{
		{int64(math.MinInt8), int64(math.MinInt16), int64(math.MinInt32), int64(math.MinInt64), -math.MaxFloat64,
			"-170141183460469231731687303715884105727"},
		{int64(math.MaxInt8), int64(math.MaxInt16), int64(math.MaxInt32), int64(math.MaxInt64), math.SmallestNonzeroFloat64,
			"170141183460469231731687303715884105727"},
		{int64(0), int64(-1), int64(0), int64(-1), 0.0, "0"},
		{int64(1), int64(1), int64(1), int64(1), 1.0, "-170141183460469231731687303715884105728"},
	}
	for _, r := range rows {
		buff, err := EncodeRow(cols, r, Options{})
		require.NoError(t, err)
		row, err := DecodeRow(cols, buff, Options{})
		require.NoError(t, err)
		require.Equal(t, Row(r), row)
	}
}

func TestRoundTripStructured(t *testing.T) {
	cols := allTypesColumns()
	opts := Options{DateTimeMode: DateTimeStructured, DecimalMode: DecimalStructured}
	dt := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	tm := time.Date(0, 1, 1, 12, 34, 56, 0, time.UTC)
	ts := time.Date(2024, 3, 15, 12, 34, 56, 0, time.UTC)
	in := []interface{}{
		int8(-5), int16(300), int32(70000), 1 << 40, float32(3.5), decimal.RequireFromString("-123.45"), "abcde",
		"hello", dt, tm, ts, []byte{1, 2, 3}, []byte{9},
	}
	buff, err := EncodeRow(cols, in, opts)
	require.NoError(t, err)
	strBuff, err := EncodeRow(cols, allTypesRow(), Options{})
	require.NoError(t, err)
	require.Equal(t, strBuff, buff)

	row, err := DecodeRow(cols, buff, opts)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("-123.45").Equal(row[5].(decimal.Decimal)))
	require.True(t, dt.Equal(row[8].(time.Time)))
	require.True(t, tm.Equal(row[9].(time.Time)))
	require.True(t, ts.Equal(row[10].(time.Time)))

	row, err = DecodeRow(cols, buff, Options{DecimalMode: DecimalFloat})
	require.NoError(t, err)
	require.Equal(t, -123.45, row[5])
}

func TestEncodeWireBytes(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "id", WireType: common.TDInteger},
		{Name: "name", WireType: common.TDVarchar, Length: 10, Nullable: true},
		{Name: "code", WireType: common.TDChar, Length: 3},
		{Name: "amount", WireType: common.TDDecimal, Length: 4, Precision: 9, Scale: 2},
		{Name: "day", WireType: common.TDDate},
	})
	buff, err := EncodeRow(cols, []interface{}{1, "ab", "x", "123.45", "2024-03-15"}, Options{})
	require.NoError(t, err)
	expected := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 'a', 'b', 'x', ' ', ' ', 0x39, 0x30, 0x00, 0x00}
	expected = common.AppendInt32ToBufferLE(expected, 1240315)
	require.Equal(t, expected, buff)

	buff, err = EncodeRow(cols, []interface{}{1, nil, nil, nil, nil}, Options{})
	require.NoError(t, err)
	expected = []byte{0x78, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, ' ', ' ', ' ', 0x00, 0x00, 0x00, 0x00, ' ', ' ', ' ', ' '}
	require.Equal(t, expected, buff)
	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{int64(1), nil, nil, nil, nil}, row)
}

func TestDecodeDecimalFixtures(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "d4", WireType: common.TDDecimal, Length: 4, Precision: 9, Scale: 2},
		{Name: "d16", WireType: common.TDDecimal, Length: 16, Precision: 38, Scale: 0},
	})
	buff := commontest.Row(2, nil,
		common.AppendInt32ToBufferLE(nil, 12345),
		common.AppendInt64ToBufferLE(common.AppendUint64ToBufferLE(nil, math.MaxUint64), math.MaxInt64))
	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{"123.45", "170141183460469231731687303715884105727"}, row)

	buff = commontest.Row(2, nil,
		common.AppendInt32ToBufferLE(nil, -12345),
		common.AppendInt64ToBufferLE(common.AppendUint64ToBufferLE(nil, 0), math.MinInt64))
	row, err = DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{"-123.45", "-170141183460469231731687303715884105728"}, row)
}

func TestDecodeDate(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{{Name: "day", WireType: common.TDDate}})
	packed := int32((2024-1900)*10000 + 3*100 + 15)
	require.Equal(t, int32(20240315-19000000), packed)
	buff := commontest.Row(1, nil, common.AppendInt32ToBufferLE(nil, packed))
	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{"2024-03-15"}, row)
}

func TestNullVarcharConsumesTwoBytes(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "v", WireType: common.TDVarchar, Length: 100, Nullable: true},
		{Name: "i", WireType: common.TDInteger},
	})
	buff := commontest.Row(2, []int{0}, []byte{0, 0}, common.AppendInt32ToBufferLE(nil, 42))
	require.Equal(t, 7, len(buff))
	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{nil, int64(42)}, row)
}

func TestNullSentinelIsNotDecoded(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "d", WireType: common.TDDate, Nullable: true},
		{Name: "t", WireType: common.TDTime, Length: 8, Nullable: true},
	})
	// garbage in the sentinel bytes of NULL columns must be ignored
	buff := commontest.Row(2, []int{0, 1}, []byte{0xff, 0xff, 0xff, 0xff}, []byte("zzzzzzzz"))
	row, err := DecodeRow(cols, buff, Options{DateTimeMode: DateTimeStructured})
	require.NoError(t, err)
	require.Equal(t, Row{nil, nil}, row)
}

func TestTimeFallsBackToText(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "t", WireType: common.TDTime, Length: 8},
		{Name: "ts", WireType: common.TDTimestamp, Length: 19},
	})
	buff := commontest.Row(2, nil, []byte("25:61:00"), []byte("2024-13-45 00:00:00"))
	factory := newCountingFactory()
	collector, err := NewCollector(factory)
	require.NoError(t, err)

	row, err := DecodeRow(cols, buff, Options{DateTimeMode: DateTimeStructured, Metrics: collector})
	require.NoError(t, err)
	require.Equal(t, Row{"25:61:00", "2024-13-45 00:00:00"}, row)
	require.Equal(t, 2.0, factory.value("time_fallbacks_total"))

	row, err = DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{"25:61:00", "2024-13-45 00:00:00"}, row)
}

func TestCountRowsMatchesDecode(t *testing.T) {
	cols := allTypesColumns()
	nulls := make([]interface{}, cols.Len())
	buff, err := EncodeRows(cols, [][]interface{}{allTypesRow(), nulls, allTypesRow()}, Options{})
	require.NoError(t, err)

	count, err := CountRows(buff, nil)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	rows, err := DecodeRows(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, len(rows))
	require.Equal(t, Row(allTypesRow()), rows[0])
	require.Equal(t, Row(nulls), rows[1])

	count, err = CountRows(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRowSetMalformed(t *testing.T) {
	cols := allTypesColumns()
	buff, err := EncodeRows(cols, [][]interface{}{allTypesRow(), allTypesRow()}, Options{})
	require.NoError(t, err)

	for _, truncated := range [][]byte{buff[:len(buff)-1], buff[:1], append(buff, 0x05)} {
		_, err = CountRows(truncated, nil)
		require.True(t, errors.HasCode(err, errors.MalformedBuffer))

		_, err = DecodeRows(cols, truncated, Options{})
		require.True(t, errors.HasCode(err, errors.MalformedBuffer))
	}
}

func TestDecodeRowMalformed(t *testing.T) {
	cols := allTypesColumns()
	buff, err := EncodeRow(cols, allTypesRow(), Options{})
	require.NoError(t, err)
	for _, n := range []int{0, 1, 2, 5, 30, len(buff) - 1} {
		_, err = DecodeRow(cols, buff[:n], Options{})
		require.True(t, errors.HasCode(err, errors.MalformedBuffer), "length %d", n)
	}
	// a VARCHAR length running past the row
	cols = common.NewColumnsFromDescriptors([]common.ColumnDescriptor{{Name: "v", WireType: common.TDVarchar, Length: 10}})
	_, err = DecodeRow(cols, commontest.Row(1, nil, []byte{0x05, 0x00, 'a'}), Options{})
	require.True(t, errors.HasCode(err, errors.MalformedBuffer))
}

func TestDecodeRowTrailingBytes(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "id", WireType: common.TDInteger},
		{Name: "name", WireType: common.TDVarchar, Length: 10, Nullable: true},
	})
	buff, err := EncodeRow(cols, []interface{}{1, "a"}, Options{})
	require.NoError(t, err)
	_, err = DecodeRow(cols, append(buff, 0), Options{})
	require.True(t, errors.HasCode(err, errors.MalformedBuffer))
	_, err = DecodeDelimitedRow(cols, append(buff, 'x', 'y'), Options{})
	require.True(t, errors.HasCode(err, errors.MalformedBuffer))

	// a length prefix that overstates its row
	rowSet := commontest.AppendLengthPrefixed(nil, append(buff, 0, 0))
	_, err = DecodeRows(cols, rowSet, Options{})
	require.True(t, errors.HasCode(err, errors.MalformedBuffer))
	count, err := CountRows(rowSet, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestDecimalWidthChangedAfterAdd(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "d", WireType: common.TDDecimal, Length: 4, Precision: 9, Scale: 2},
	})
	buff, err := EncodeRow(cols, []interface{}{"1.00"}, Options{})
	require.NoError(t, err)

	cols.At(0).Length = 3
	_, err = DecodeRow(cols, buff, Options{})
	require.True(t, errors.HasCode(err, errors.InternalError))
	_, err = EncodeRow(cols, []interface{}{"1.00"}, Options{})
	require.True(t, errors.HasCode(err, errors.InternalError))
}

func TestRowReader(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "id", WireType: common.TDInteger},
		{Name: "name", WireType: common.TDVarchar, Length: 10, Nullable: true},
	})
	buff, err := EncodeRows(cols, [][]interface{}{{1, "a"}, {2, nil}, {3, "c"}}, Options{})
	require.NoError(t, err)

	r := NewRowReader(cols, buff, Options{RowShape: RowShapeString, Delimiter: ","})
	var lines []interface{}
	for r.Next() {
		lines = append(lines, r.Row())
	}
	require.NoError(t, r.Err())
	require.Equal(t, []interface{}{"1,a", "2,NULL", "3,c"}, lines)

	r = NewRowReader(cols, buff[:len(buff)-2], Options{})
	require.True(t, r.Next())
	require.True(t, r.Next())
	require.False(t, r.Next())
	require.True(t, errors.HasCode(r.Err(), errors.MalformedBuffer))
	require.False(t, r.Next())
}

func TestEncodeCountMismatch(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "a", WireType: common.TDInteger},
		{Name: "b", WireType: common.TDInteger},
		{Name: "c", WireType: common.TDInteger},
	})
	buff, err := EncodeRow(cols, []interface{}{1, 2}, Options{})
	require.Nil(t, buff)
	require.True(t, errors.HasCode(err, errors.ColumnCountMismatch))
	require.Equal(t, "TDC0003 - Row has 2 values, schema has 3 columns", err.Error())

	_, err = EncodeRow(cols, []interface{}{1, 2, 3, 4}, Options{})
	require.True(t, errors.HasCode(err, errors.ColumnCountMismatch))

	_, err = EncodeDelimitedRow(cols, "1|2", Options{})
	require.True(t, errors.HasCode(err, errors.ColumnCountMismatch))

	prefix := []byte{0xaa}
	out, err := AppendRow(prefix, cols, []interface{}{1}, Options{})
	require.Error(t, err)
	require.Equal(t, []byte{0xaa}, out)
}

func TestEncodeRowLengthLimit(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "a", WireType: common.TDVarchar, Length: 64000},
		{Name: "b", WireType: common.TDVarchar, Length: 64000},
	})
	half := strings.Repeat("x", 40000)
	buff, err := EncodeRow(cols, []interface{}{half, half}, Options{})
	require.Nil(t, buff)
	require.True(t, errors.HasCode(err, errors.ValueTooLong))

	prefix := []byte{0xaa}
	out, err := AppendRow(prefix, cols, []interface{}{half, half}, Options{})
	require.True(t, errors.HasCode(err, errors.ValueTooLong))
	require.Equal(t, []byte{0xaa}, out)

	_, err = EncodeRows(cols, [][]interface{}{{"a", "b"}, {half, half}}, Options{})
	require.True(t, errors.HasCode(err, errors.ValueTooLong))

	// 1 header byte + 2 + 32765 + 2 + 32765 is exactly the limit
	buff, err = EncodeRow(cols, []interface{}{strings.Repeat("x", 32765), strings.Repeat("y", 32765)}, Options{})
	require.NoError(t, err)
	require.Equal(t, math.MaxUint16, len(buff))
}

func TestAppendRowClearsReusedHeader(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "a", WireType: common.TDInteger, Nullable: true},
		{Name: "b", WireType: common.TDInteger, Nullable: true},
	})
	dirty := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	out, err := AppendRow(dirty[:0], cols, []interface{}{1, nil}, Options{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x40, 1, 0, 0, 0, 0, 0, 0, 0}, out)
}

func TestEncodeValidation(t *testing.T) {
	cols := allTypesColumns()
	tests := []struct {
		col   int
		value interface{}
		code  errors.ErrorCode
	}{
		{0, 128, errors.ValueOutOfRange},
		{0, "-129", errors.ValueOutOfRange},
		{1, int64(40000), errors.ValueOutOfRange},
		{2, uint64(math.MaxUint64), errors.ValueOutOfRange},
		{2, "12x", errors.InvalidValue},
		{2, 1.5, errors.InvalidValue},
		{3, "99999999999999999999", errors.ValueOutOfRange},
		{3, true, errors.InvalidValue},
		{4, "pi", errors.InvalidValue},
		{5, "1.2.3", errors.InvalidValue},
		{5, "100000000000000000.00", errors.ValueOutOfRange},
		{6, "toolong", errors.ValueTooLong},
		{6, 42, errors.InvalidValue},
		{7, "this value is longer than twenty", errors.ValueTooLong},
		{8, "2024-02-30", errors.InvalidValue},
		{8, 20240315, errors.InvalidValue},
		{9, "12:34:56.123", errors.ValueTooLong},
		{11, []byte{1, 2, 3, 4}, errors.ValueTooLong},
		{11, "zz", errors.InvalidValue},
		{12, 7, errors.InvalidValue},
	}
	for _, tc := range tests {
		row := allTypesRow()
		row[tc.col] = tc.value
		buff, err := EncodeRow(cols, row, Options{})
		require.Nil(t, buff, "column %d value %v", tc.col, tc.value)
		require.True(t, errors.HasCode(err, tc.code), "column %d value %v: %v", tc.col, tc.value, err)
	}
}

func TestEncodeDecimalTruncates(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "d", WireType: common.TDDecimal, Length: 4, Precision: 9, Scale: 2},
	})
	factory := newCountingFactory()
	collector, err := NewCollector(factory)
	require.NoError(t, err)
	opts := Options{Metrics: collector}

	buff, err := EncodeRow(cols, []interface{}{"123.456"}, opts)
	require.NoError(t, err)
	row, err := DecodeRow(cols, buff, opts)
	require.NoError(t, err)
	require.Equal(t, Row{"123.45"}, row)

	buff, err = EncodeRow(cols, []interface{}{-0.019}, opts)
	require.NoError(t, err)
	row, err = DecodeRow(cols, buff, opts)
	require.NoError(t, err)
	require.Equal(t, Row{"-0.01"}, row)
	require.Equal(t, 2.0, factory.value("decimal_truncations_total"))
	require.Equal(t, 2.0, factory.value("rows_encoded_total"))
	require.Equal(t, 2.0, factory.value("rows_decoded_total"))
}

func TestEncodeConversions(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "i", WireType: common.TDInteger},
		{Name: "f", WireType: common.TDFloat},
		{Name: "d", WireType: common.TDDecimal, Length: 8, Precision: 18, Scale: 3},
		{Name: "by", WireType: common.TDByte, Length: 2},
	})
	tests := []struct {
		in       []interface{}
		expected Row
	}{
		{[]interface{}{uint8(7), 2, 5, "0a0b"}, Row{int64(7), 2.0, "5.000", []byte{0x0a, 0x0b}}},
		{[]interface{}{" -3 ", "2.5", 1.25, []byte{1}}, Row{int64(-3), 2.5, "1.250", []byte{1, 0}}},
		{[]interface{}{4.0, decimal.RequireFromString("0.5"), decimal.New(12, 2), "ff"}, Row{int64(4), 0.5, "1200.000", []byte{0xff, 0}}},
		{[]interface{}{decimal.New(3, 1), int64(-1), "-.5", ""}, Row{int64(30), -1.0, "-0.500", []byte{0, 0}}},
		{[]interface{}{int32(9), float32(1.5), big.NewInt(-42), []byte{}}, Row{int64(9), 1.5, "-42.000", []byte{0, 0}}},
		{[]interface{}{uint64(1), 0, decimal128.FromI64(7), "00"}, Row{int64(1), 0.0, "7.000", []byte{0, 0}}},
	}
	for _, tc := range tests {
		buff, err := EncodeRow(cols, tc.in, Options{})
		require.NoError(t, err)
		row, err := DecodeRow(cols, buff, Options{})
		require.NoError(t, err)
		require.Equal(t, tc.expected, row)
	}
}

func TestDictShape(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "Order Id", WireType: common.TDInteger},
		{Name: "Note", WireType: common.TDVarchar, Length: 10, Nullable: true},
	})
	buff, err := EncodeRowMap(cols, map[string]interface{}{"order_id": 10}, Options{})
	require.NoError(t, err)
	row, err := DecodeRowMap(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"order_id": int64(10), "note": nil}, row)

	buff2, err := EncodeRowMap(cols, map[string]interface{}{"Order Id": 10, "NOTE": nil}, Options{})
	require.NoError(t, err)
	require.Equal(t, buff, buff2)

	decoded, err := Decode(cols, buff, Options{RowShape: RowShapeDict})
	require.NoError(t, err)
	require.Equal(t, row, decoded)

	_, err = EncodeRowMap(cols, map[string]interface{}{"order_id": 1, "missing": 2}, Options{})
	require.True(t, errors.HasCode(err, errors.UnknownColumn))
	_, err = EncodeRowMap(cols, map[string]interface{}{"order_id": 1, "Order Id": 2}, Options{})
	require.True(t, errors.HasCode(err, errors.InvalidValue))
}

func TestDictShapeSharedNames(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "a", WireType: common.TDInteger, Nullable: true},
		{Name: "A", WireType: common.TDInteger, Nullable: true},
	})
	buff, err := EncodeRow(cols, []interface{}{1, 2}, Options{})
	require.NoError(t, err)
	row, err := DecodeRowMap(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": int64(1), "a_2": int64(2)}, row)

	again, err := EncodeRowMap(cols, row, Options{})
	require.NoError(t, err)
	require.Equal(t, buff, again)
	tuple, err := DecodeRow(cols, again, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{int64(1), int64(2)}, tuple)
}

func TestDelimitedShape(t *testing.T) {
	cols := allTypesColumns()
	buff, err := EncodeRow(cols, allTypesRow(), Options{})
	require.NoError(t, err)
	line, err := DecodeDelimitedRow(cols, buff, Options{})
	require.NoError(t, err)
	expected := "-5|300|70000|1099511627776|3.5|-123.45|abcde|hello|2024-03-15|12:34:56|2024-03-15 12:34:56|010203|09"
	require.Equal(t, expected, line)

	encoded, err := EncodeDelimitedRow(cols, line, Options{})
	require.NoError(t, err)
	require.Equal(t, buff, encoded)

	nulls, err := EncodeRow(cols, make([]interface{}, cols.Len()), Options{})
	require.NoError(t, err)
	line, err = DecodeDelimitedRow(cols, nulls, Options{Delimiter: "\t", NullLiteral: `\N`})
	require.NoError(t, err)
	require.Equal(t, `\N`+"\t"+`\N`, line[:5])
	encoded, err = EncodeDelimitedRow(cols, line, Options{Delimiter: "\t", NullLiteral: `\N`})
	require.NoError(t, err)
	require.Equal(t, nulls, encoded)
}

func TestDelimitedLastValueKeepsDelimiter(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "id", WireType: common.TDInteger},
		{Name: "text", WireType: common.TDVarchar, Length: 20},
	})
	buff, err := EncodeDelimitedRow(cols, "1|a|b|c", Options{})
	require.NoError(t, err)
	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{int64(1), "a|b|c"}, row)
}

func TestNullAsLiteral(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "id", WireType: common.TDInteger, Nullable: true},
		{Name: "name", WireType: common.TDChar, Length: 2, Nullable: true},
	})
	opts := Options{NullAsLiteral: true, NullLiteral: "", NullLiteralSet: true}
	buff, err := EncodeRow(cols, []interface{}{"", "ab"}, opts)
	require.NoError(t, err)
	require.Equal(t, byte(0x80), buff[0])
	row, err := DecodeRow(cols, buff, opts)
	require.NoError(t, err)
	require.Equal(t, Row{"", "ab"}, row)

	// without NullAsLiteral the literal is an ordinary string
	_, err = EncodeRow(cols, []interface{}{1, "NULL"}, Options{})
	require.True(t, errors.HasCode(err, errors.ValueTooLong))
}

func TestRawShape(t *testing.T) {
	cols := allTypesColumns()
	buff, err := EncodeRow(cols, allTypesRow(), Options{})
	require.NoError(t, err)
	raw, err := Decode(cols, buff, Options{RowShape: RowShapeRaw})
	require.NoError(t, err)
	require.Equal(t, buff, raw)
	raw.([]byte)[0] = 0xff
	require.Equal(t, byte(0), buff[0])
}

func TestIncludeMask(t *testing.T) {
	cols := allTypesColumns()
	buff, err := EncodeRows(cols, [][]interface{}{allTypesRow(), make([]interface{}, cols.Len())}, Options{})
	require.NoError(t, err)
	include, err := cols.Filter("vc", "I", "vb")
	require.NoError(t, err)

	rows, err := DecodeRows(cols, buff, Options{Include: include})
	require.NoError(t, err)
	require.Equal(t, []interface{}{Row{int64(70000), "hello", []byte{9}}, Row{nil, nil, nil}}, rows)

	rows, err = DecodeRows(cols, buff, Options{Include: include, RowShape: RowShapeString})
	require.NoError(t, err)
	require.Equal(t, []interface{}{"70000|hello|09", "NULL|NULL|NULL"}, rows)
}

func TestLatin1Charset(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "v", WireType: common.TDVarchar, Length: 4},
		{Name: "c", WireType: common.TDChar, Length: 2},
		{Name: "b", WireType: common.TDVarbyte, Length: 4},
	})
	opts := Options{Charset: CharsetLatin1}
	buff, err := EncodeRow(cols, []interface{}{"café", "ñ", []byte{0xe9}}, opts)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x04, 0x00, 'c', 'a', 'f', 0xe9, 0xf1, ' ', 0x01, 0x00, 0xe9}, buff)

	row, err := DecodeRow(cols, buff, opts)
	require.NoError(t, err)
	require.Equal(t, Row{"café", "ñ ", []byte{0xe9}}, row)

	// utf8 sessions pass the bytes through
	_, err = EncodeRow(cols, []interface{}{"café", "ñ", nil}, Options{})
	require.True(t, errors.HasCode(err, errors.ValueTooLong))

	_, err = EncodeRow(cols, []interface{}{"€", "a", nil}, opts)
	require.True(t, errors.HasCode(err, errors.InvalidValue))
}

func TestDefaultTypeIsOpaqueText(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "period", WireType: common.TDPeriodDate, Length: 8, Nullable: true},
		{Name: "i", WireType: common.TDInteger},
	})
	require.Equal(t, common.TypeDefault, cols.At(0).Type)
	buff, err := EncodeRow(cols, []interface{}{"abc", 1}, Options{})
	require.NoError(t, err)
	row, err := DecodeRow(cols, buff, Options{})
	require.NoError(t, err)
	require.Equal(t, Row{"abc     ", int64(1)}, row)

	buff, err = EncodeRow(cols, []interface{}{nil, 1}, Options{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', 1, 0, 0, 0}, buff)
}

func TestStatementInfoToRows(t *testing.T) {
	info := commontest.StatementInfo(
		commontest.StmtInfoColumn{Name: "id", WireType: common.IntegerNN, Length: 4, Nullable: 'N'},
		commontest.StmtInfoColumn{Name: "Full Name", WireType: common.VarcharN, Length: 30},
		commontest.StmtInfoColumn{Name: "balance", WireType: common.DecimalN, Length: 16, Precision: 38, Scale: 4},
	)
	cols, err := common.ParseStatementInfo(info)
	require.NoError(t, err)

	var buff []byte
	buff = commontest.AppendLengthPrefixed(buff, commontest.Row(3, nil, common.AppendInt32ToBufferLE(nil, 7),
		common.AppendStringToBufferLE(nil, "Ada Lovelace"),
		common.AppendInt64ToBufferLE(common.AppendUint64ToBufferLE(nil, math.MaxUint64), -1)))
	buff = commontest.AppendLengthPrefixed(buff, commontest.Row(3, []int{1, 2}, common.AppendInt32ToBufferLE(nil, 8),
		[]byte{0, 0}, make([]byte, 16)))

	rows, err := DecodeRows(cols, buff, Options{RowShape: RowShapeDict})
	require.NoError(t, err)
	require.Equal(t, []interface{}{
		map[string]interface{}{"id": int64(7), "full_name": "Ada Lovelace", "balance": "-0.0001"},
		map[string]interface{}{"id": int64(8), "full_name": nil, "balance": nil},
	}, rows)
}

func TestNewOptions(t *testing.T) {
	cols := allTypesColumns()
	cfg := conf.NewDefaultCodecConfig()
	opts, err := NewOptions(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, Options{Delimiter: "|"}, opts)

	null := "?"
	cfg = &conf.CodecConfig{
		RowShape:     conf.RowShapeString,
		DateTimeMode: conf.DateTimeModeStructured,
		DecimalMode:  conf.DecimalModeFloat,
		Charset:      conf.CharsetLatin1,
		Delimiter:    ",",
		NullLiteral:  &null,
		Columns:      []string{"vc", "b"},
	}
	opts, err = NewOptions(cfg, cols)
	require.NoError(t, err)
	require.Equal(t, RowShapeString, opts.RowShape)
	require.Equal(t, DateTimeStructured, opts.DateTimeMode)
	require.Equal(t, DecimalFloat, opts.DecimalMode)
	require.Equal(t, CharsetLatin1, opts.Charset)
	require.Equal(t, "?", opts.NullLiteral)
	require.True(t, opts.NullAsLiteral)
	require.Equal(t, []bool{true, false, false, false, false, false, false, true, false, false, false, false, false}, opts.Include)

	buff, err := EncodeRow(cols, make([]interface{}, cols.Len()), opts)
	require.NoError(t, err)
	line, err := Decode(cols, buff, opts)
	require.NoError(t, err)
	require.Equal(t, "?,?", line)

	_, err = NewOptions(cfg, nil)
	require.True(t, errors.HasCode(err, errors.InvalidConfiguration))
	cfg.Columns = []string{"nope"}
	_, err = NewOptions(cfg, cols)
	require.True(t, errors.HasCode(err, errors.UnknownColumn))
	cfg.RowShape = "list"
	_, err = NewOptions(cfg, cols)
	require.True(t, errors.HasCode(err, errors.InvalidConfiguration))
}

func TestNewOptionsMetricsNamespace(t *testing.T) {
	cfg := conf.NewDefaultCodecConfig()
	cfg.MetricsNamespace = "tdcodec_options_test"
	opts, err := NewOptions(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, opts.Metrics)

	// a second configuration with the same namespace shares the registered counters
	again, err := NewOptions(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, again.Metrics)
}

func TestCollectorCounts(t *testing.T) {
	cols := common.NewColumnsFromDescriptors([]common.ColumnDescriptor{
		{Name: "a", WireType: common.TDInteger, Nullable: true},
		{Name: "b", WireType: common.TDInteger, Nullable: true},
	})
	factory := newCountingFactory()
	collector, err := NewCollector(factory)
	require.NoError(t, err)
	opts := Options{Metrics: collector}
	buff, err := EncodeRows(cols, [][]interface{}{{1, nil}, {nil, nil}}, opts)
	require.NoError(t, err)
	_, err = DecodeRows(cols, buff, opts)
	require.NoError(t, err)
	_, err = CountRows(buff, collector)
	require.NoError(t, err)

	require.Equal(t, 2.0, factory.value("rows_encoded_total"))
	require.Equal(t, 2.0, factory.value("rows_decoded_total"))
	require.Equal(t, 2.0, factory.value("rows_counted_total"))
	require.Equal(t, 6.0, factory.value("null_values_total"))
}

func TestNewCollectorFailure(t *testing.T) {
	_, err := NewCollector(failingFactory{})
	require.Error(t, err)
	_, err = NewCollector(newCountingFactory())
	require.NoError(t, err)
}

type countingCounter struct {
	value float64
}

func (c *countingCounter) Inc() {
	c.value++
}

func (c *countingCounter) Add(delta float64) {
	c.value += delta
}

type countingFactory struct {
	counters map[string]*countingCounter
}

func newCountingFactory() *countingFactory {
	return &countingFactory{counters: make(map[string]*countingCounter)}
}

func (f *countingFactory) CreateCounter(name string, description string) (metrics.Counter, error) {
	c := &countingCounter{}
	f.counters[name] = c
	return c, nil
}

func (f *countingFactory) value(name string) float64 {
	return f.counters[name].value
}

type failingFactory struct{}

func (failingFactory) CreateCounter(name string, description string) (metrics.Counter, error) {
	return nil, errors.New("registry closed")
}
