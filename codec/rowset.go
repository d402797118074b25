package codec

import (
	"github.com/squareup/tdcodec/common"
)

// A row set buffer is a sequence of rows, each preceded by its length as a u16.

// RowReader walks a row set buffer one row at a time.
//
//	r := codec.NewRowReader(cols, buffer, opts)
//	for r.Next() {
//		process(r.Row())
//	}
//	if err := r.Err(); err != nil {
//		...
//	}
type RowReader struct {
	cols    *common.Columns
	scanner rowScanner
	opts    Options
	row     interface{}
	err     error
}

func NewRowReader(cols *common.Columns, buffer []byte, opts Options) *RowReader {
	return &RowReader{cols: cols, scanner: rowScanner{buffer: buffer}, opts: opts}
}

// Next decodes the next row. It returns false when the buffer is exhausted or a row fails to decode.
func (r *RowReader) Next() bool {
	if r.err != nil {
		return false
	}
	b, ok, err := r.scanner.next()
	if err != nil {
		r.err = err
		return false
	}
	if !ok {
		return false
	}
	row, err := Decode(r.cols, b, r.opts)
	if err != nil {
		r.err = err
		return false
	}
	r.row = row
	return true
}

// Row returns the row decoded by the last call to Next, in the configured shape.
func (r *RowReader) Row() interface{} {
	return r.row
}

func (r *RowReader) Err() error {
	return r.err
}

// DecodeRows decodes every row of a row set buffer.
func DecodeRows(cols *common.Columns, buffer []byte, opts Options) ([]interface{}, error) {
	var rows []interface{}
	r := NewRowReader(cols, buffer, opts)
	for r.Next() {
		rows = append(rows, r.Row())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountRows counts the rows of a row set buffer without decoding them. collector may be nil.
func CountRows(buffer []byte, collector *Collector) (int, error) {
	s := rowScanner{buffer: buffer}
	count := 0
	for {
		_, ok, err := s.next()
		if err != nil {
			return 0, err
		}
		if !ok {
			collector.rowsSkipped(count)
			return count, nil
		}
		count++
	}
}

type rowScanner struct {
	buffer []byte
	offset int
}

func (s *rowScanner) next() ([]byte, bool, error) {
	if s.offset >= len(s.buffer) {
		return nil, false, nil
	}
	if err := common.CheckAvailable(s.buffer, s.offset, 2, "row length"); err != nil {
		return nil, false, err
	}
	l, off := common.ReadUint16FromBufferLE(s.buffer, s.offset)
	if err := common.CheckAvailable(s.buffer, off, int(l), "row"); err != nil {
		return nil, false, err
	}
	s.offset = off + int(l)
	return s.buffer[off:s.offset], true, nil
}
