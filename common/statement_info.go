package common

import (
	log "github.com/sirupsen/logrus"
	"github.com/squareup/tdcodec/errors"
)

// A statement info parcel is a sequence of extension records. Each record starts with a six byte header of
// layout, type and body length (u16 each). Only layout 1 (full column metadata) records describe a column; all
// others are skipped by their length.

const (
	StatementInfoLayoutFull uint16 = 1

	statementInfoHeaderLength = 6
)

// StatementInfoHeader is the header of one statement info extension record.
type StatementInfoHeader struct {
	Layout uint16
	Type   uint16
	Length uint16
}

// ParseStatementInfo builds Columns from a statement info parcel body. The buffer must contain exactly the
// statement info payload.
func ParseStatementInfo(buffer []byte) (*Columns, error) {
	cols := NewColumns()
	offset := 0
	for offset < len(buffer) {
		if err := CheckAvailable(buffer, offset, statementInfoHeaderLength, "statement info header"); err != nil {
			return nil, err
		}
		var hdr StatementInfoHeader
		hdr.Layout, offset = ReadUint16FromBufferLE(buffer, offset)
		hdr.Type, offset = ReadUint16FromBufferLE(buffer, offset)
		hdr.Length, offset = ReadUint16FromBufferLE(buffer, offset)
		end := offset + int(hdr.Length)
		if err := CheckAvailable(buffer, offset, int(hdr.Length), "statement info record"); err != nil {
			return nil, err
		}
		if hdr.Layout != StatementInfoLayoutFull {
			log.Tracef("skipping statement info record layout %d type %d length %d", hdr.Layout, hdr.Type, hdr.Length)
			offset = end
			continue
		}
		col, err := parseFullColumn(buffer[offset:end])
		if err != nil {
			return nil, errors.WithStack(err)
		}
		cols.Add(col)
		offset = end
	}
	return cols, nil
}

// stmtInfoReader reads fields of one record, remembering the first overrun.
type stmtInfoReader struct {
	buffer []byte
	offset int
	err    error
}

func (r *stmtInfoReader) need(n int, what string) bool {
	if r.err != nil {
		return false
	}
	r.err = CheckAvailable(r.buffer, r.offset, n, what)
	return r.err == nil
}

func (r *stmtInfoReader) readUint16(what string) uint16 {
	if !r.need(2, what) {
		return 0
	}
	var v uint16
	v, r.offset = ReadUint16FromBufferLE(r.buffer, r.offset)
	return v
}

func (r *stmtInfoReader) readUint64(what string) uint64 {
	if !r.need(8, what) {
		return 0
	}
	var v uint64
	v, r.offset = ReadUint64FromBufferLE(r.buffer, r.offset)
	return v
}

func (r *stmtInfoReader) readByte(what string) byte {
	if !r.need(1, what) {
		return 0
	}
	var v byte
	v, r.offset = ReadUint8FromBuffer(r.buffer, r.offset)
	return v
}

func (r *stmtInfoReader) readString(what string) string {
	if !r.need(2, what) {
		return ""
	}
	l, _ := ReadUint16FromBufferLE(r.buffer, r.offset)
	if !r.need(2+int(l), what) {
		return ""
	}
	var s string
	s, r.offset = ReadStringFromBufferLE(r.buffer, r.offset)
	return s
}

func parseFullColumn(record []byte) (Column, error) {
	r := &stmtInfoReader{buffer: record}
	col := Column{}
	col.Database = r.readString("database name")
	col.Table = r.readString("table name")
	col.Name = r.readString("column name")
	col.Position = int(r.readUint16("column position"))
	col.Alias = r.readString("alias")
	col.Title = r.readString("title")
	col.Format = r.readString("format")
	col.Default = r.readString("default value")
	col.Flags.Identity = r.readByte("identity flag")
	col.Flags.DefinitelyWritable = r.readByte("definitely writable flag")
	col.Flags.Nullable = r.readByte("nullable flag")
	col.Flags.MayBeNull = r.readByte("may be null flag")
	col.Flags.Searchable = r.readByte("searchable flag")
	col.Flags.Writable = r.readByte("writable flag")
	col.WireType = r.readUint16("data type")
	col.UDTType = r.readUint16("udt type")
	col.TypeName = r.readString("type name")
	col.MiscInfo = r.readString("misc info")
	col.Length = int(r.readUint64("data length"))
	col.Precision = int(r.readUint16("digits"))
	col.Interval = int(r.readUint16("interval digits"))
	col.Scale = int(r.readUint16("fractional digits"))
	col.Flags.CaseSensitive = r.readByte("case sensitive flag")
	col.Flags.Signed = r.readByte("signed flag")
	col.Flags.Key = r.readByte("key flag")
	col.Flags.Unique = r.readByte("unique flag")
	col.Flags.Expression = r.readByte("expression flag")
	col.Flags.Sortable = r.readByte("sortable flag")
	if r.err != nil {
		return Column{}, r.err
	}
	// newer servers append fields we do not know about, the caller moves to the record end
	col.Nullable = col.Flags.Nullable != 'N'
	return col, nil
}
