package commontest

import (
	"github.com/squareup/tdcodec/common"
)

// Test utils
// Builders for wire fixtures, shared by tests in several packages. They produce the bytes a session or a bulk
// transport stream would hand to the codec.

// StmtInfoColumn is the content of one full layout statement info record.
type StmtInfoColumn struct {
	Database  string
	Table     string
	Name      string
	Position  uint16
	Alias     string
	Title     string
	Format    string
	Default   string
	Nullable  byte
	WireType  uint16
	UDTType   uint16
	TypeName  string
	MiscInfo  string
	Length    uint64
	Precision uint16
	Interval  uint16
	Scale     uint16
	// Trailing is appended after the known fields, as a newer server would.
	Trailing []byte
}

// AppendStmtInfoRecord appends an extension record header and body.
func AppendStmtInfoRecord(buffer []byte, layout uint16, typ uint16, body []byte) []byte {
	buffer = common.AppendUint16ToBufferLE(buffer, layout)
	buffer = common.AppendUint16ToBufferLE(buffer, typ)
	buffer = common.AppendUint16ToBufferLE(buffer, uint16(len(body)))
	return append(buffer, body...)
}

// StmtInfoColumnBody encodes the body of a full layout record.
func StmtInfoColumnBody(c StmtInfoColumn) []byte {
	nullable := c.Nullable
	if nullable == 0 {
		nullable = 'Y'
	}
	var b []byte
	b = common.AppendStringToBufferLE(b, c.Database)
	b = common.AppendStringToBufferLE(b, c.Table)
	b = common.AppendStringToBufferLE(b, c.Name)
	b = common.AppendUint16ToBufferLE(b, c.Position)
	b = common.AppendStringToBufferLE(b, c.Alias)
	b = common.AppendStringToBufferLE(b, c.Title)
	b = common.AppendStringToBufferLE(b, c.Format)
	b = common.AppendStringToBufferLE(b, c.Default)
	b = append(b, 'N', 'N', nullable, nullable, 'Y', 'Y')
	b = common.AppendUint16ToBufferLE(b, c.WireType)
	b = common.AppendUint16ToBufferLE(b, c.UDTType)
	b = common.AppendStringToBufferLE(b, c.TypeName)
	b = common.AppendStringToBufferLE(b, c.MiscInfo)
	b = common.AppendUint64ToBufferLE(b, c.Length)
	b = common.AppendUint16ToBufferLE(b, c.Precision)
	b = common.AppendUint16ToBufferLE(b, c.Interval)
	b = common.AppendUint16ToBufferLE(b, c.Scale)
	b = append(b, 'Y', 'Y', 'N', 'N', 'N', 'Y')
	return append(b, c.Trailing...)
}

// StatementInfo encodes a statement info parcel body describing cols.
func StatementInfo(cols ...StmtInfoColumn) []byte {
	var buffer []byte
	for _, c := range cols {
		buffer = AppendStmtInfoRecord(buffer, common.StatementInfoLayoutFull, 0, StmtInfoColumnBody(c))
	}
	return buffer
}

// AppendLengthPrefixed appends a u16 row length followed by the row bytes.
func AppendLengthPrefixed(buffer []byte, row []byte) []byte {
	buffer = common.AppendUint16ToBufferLE(buffer, uint16(len(row)))
	return append(buffer, row...)
}

// Row assembles a row from an indicator bitmap for columnCount columns, with nullColumns marked, followed by fields.
func Row(columnCount int, nullColumns []int, fields ...[]byte) []byte {
	row := make([]byte, common.HeaderLength(columnCount))
	for _, i := range nullColumns {
		common.SetIndicatorNull(row, i)
	}
	for _, f := range fields {
		row = append(row, f...)
	}
	return row
}

// Spaces returns n ASCII spaces.
func Spaces(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return b
}
