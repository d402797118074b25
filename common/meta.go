package common

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/tdcodec/errors"
)

// Type is the logical type of a column, independent of either wire type numbering.
type Type int

const (
	TypeDefault Type = iota
	TypeByteInt
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeDecimal
	TypeChar
	TypeVarchar
	TypeDate
	TypeTime
	TypeTimestamp
	TypeByte
	TypeVarbyte
)

var typeNames = [...]string{
	TypeDefault:   "DEFAULT",
	TypeByteInt:   "BYTEINT",
	TypeSmallInt:  "SMALLINT",
	TypeInteger:   "INTEGER",
	TypeBigInt:    "BIGINT",
	TypeFloat:     "FLOAT",
	TypeDecimal:   "DECIMAL",
	TypeChar:      "CHAR",
	TypeVarchar:   "VARCHAR",
	TypeDate:      "DATE",
	TypeTime:      "TIME",
	TypeTimestamp: "TIMESTAMP",
	TypeByte:      "BYTE",
	TypeVarbyte:   "VARBYTE",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// IsVariableLength is true for types carried on the wire as a u16 length followed by the data.
func (t Type) IsVariableLength() bool {
	return t == TypeVarchar || t == TypeVarbyte
}

// IsText is true for types whose wire bytes are character data in the session character set.
func (t Type) IsText() bool {
	switch t {
	case TypeDefault, TypeChar, TypeVarchar, TypeTime, TypeTimestamp:
		return true
	default:
		return false
	}
}

// NullPad is the byte a NULL value of this type is filled with: spaces for character, date and time data, zeros for
// numbers, binary data and the length of variable length types.
func (t Type) NullPad() byte {
	if (t.IsText() && !t.IsVariableLength()) || t == TypeDate {
		return ' '
	}
	return 0
}

// fixedWidths are the natural byte widths of fixed-width types, applied when a descriptor leaves Length unset.
var fixedWidths = map[Type]int{
	TypeByteInt:  1,
	TypeSmallInt: 2,
	TypeInteger:  4,
	TypeBigInt:   8,
	TypeFloat:    8,
	TypeDate:     4,
}

// ColumnFlags are the single character and single byte flags carried in a statement info record.
// Character flags hold 'Y', 'N' or 'U'.
type ColumnFlags struct {
	Identity           byte
	DefinitelyWritable byte
	Nullable           byte
	MayBeNull          byte
	Searchable         byte
	Writable           byte

	CaseSensitive byte
	Signed        byte
	Key           byte
	Unique        byte
	Expression    byte
	Sortable      byte
}

// Column describes one field of a result set or load row.
type Column struct {
	Name     string
	Title    string
	Alias    string
	Database string
	Table    string
	Position int
	Format   string
	Default  string
	TypeName string
	MiscInfo string

	// WireType is the session protocol or bulk transport type code the column was described with.
	WireType uint16
	UDTType  uint16
	// Type is derived from WireType when the column is added to Columns.
	Type       Type
	Length     int
	Precision  int
	Interval   int
	Scale      int
	Nullable   bool
	NullLength int
	Flags      ColumnFlags
}

// ColumnDescriptor is a column as supplied by the bulk transport layer, already structured.
type ColumnDescriptor struct {
	Name      string
	WireType  uint16
	Length    int
	Precision int
	Scale     int
	Nullable  bool
}

// Columns is the ordered schema of a row. Order is wire order and indicator bit order.
// Columns is built with Add and must not be modified once rows start being decoded or encoded; after that it is
// safe to share between goroutines.
type Columns struct {
	cols    []*Column
	aliases map[string]int
	names   map[string]int
}

func NewColumns() *Columns {
	return &Columns{aliases: make(map[string]int), names: make(map[string]int)}
}

// NewColumnsFromDescriptors builds Columns from bulk transport descriptors.
func NewColumnsFromDescriptors(descs []ColumnDescriptor) *Columns {
	cols := NewColumns()
	for i, d := range descs {
		cols.Add(Column{
			Name:      d.Name,
			Position:  i + 1,
			WireType:  d.WireType,
			Length:    d.Length,
			Precision: d.Precision,
			Scale:     d.Scale,
			Nullable:  d.Nullable,
		})
	}
	return cols
}

// Add appends a column, deriving its logical type, display names, width and null length. Aliases are unique within
// Columns: an alias already taken by an earlier column gets a _2, _3, ... suffix.
func (c *Columns) Add(col Column) *Column {
	col.Name = strings.TrimSpace(col.Name)
	col.Type = TranslateWireType(col.WireType)
	if col.Alias == "" {
		col.Alias = NormalizeName(col.Name)
	}
	col.Alias = c.uniqueAlias(col.Alias)
	if col.Title == "" {
		col.Title = NormalizeName(col.Name)
	}
	if w, ok := fixedWidths[col.Type]; ok && col.Length == 0 {
		col.Length = w
	}
	if col.Type == TypeDecimal && !IsDecimalWidth(col.Length) {
		col.Length = DecimalWidth(col.Precision)
	}
	if col.Type.IsVariableLength() {
		col.NullLength = 2
	} else {
		col.NullLength = col.Length
	}
	pcol := &col
	c.cols = append(c.cols, pcol)
	pos := len(c.cols) - 1
	c.aliases[col.Alias] = pos
	if lower := strings.ToLower(col.Name); lower != "" {
		if _, exists := c.names[lower]; !exists {
			c.names[lower] = pos
		}
	}
	return pcol
}

func (c *Columns) uniqueAlias(alias string) string {
	if _, taken := c.aliases[alias]; !taken {
		return alias
	}
	for n := 2; ; n++ {
		candidate := alias + "_" + strconv.Itoa(n)
		if _, taken := c.aliases[candidate]; !taken {
			log.Debugf("column alias %s is already in use, renamed to %s", alias, candidate)
			return candidate
		}
	}
}

func (c *Columns) Len() int {
	return len(c.cols)
}

func (c *Columns) At(i int) *Column {
	return c.cols[i]
}

// All returns the columns in wire order. The slice must not be modified.
func (c *Columns) All() []*Column {
	return c.cols
}

// HeaderLength is the size in bytes of the indicator bitmap of each row.
func (c *Columns) HeaderLength() int {
	return HeaderLength(len(c.cols))
}

// Get looks a column up by alias or by case insensitive name.
func (c *Columns) Get(name string) (*Column, bool) {
	i, ok := c.Index(name)
	if !ok {
		return nil, false
	}
	return c.cols[i], true
}

// Index returns the wire position of a column looked up by alias or by case insensitive name. Aliases take
// precedence; when several columns share a name the first one wins.
func (c *Columns) Index(name string) (int, bool) {
	if i, ok := c.aliases[name]; ok {
		return i, true
	}
	if i, ok := c.names[strings.ToLower(strings.TrimSpace(name))]; ok {
		return i, true
	}
	i, ok := c.aliases[NormalizeName(name)]
	return i, ok
}

func (c *Columns) Names() []string {
	names := make([]string, len(c.cols))
	for i, col := range c.cols {
		names[i] = col.Name
	}
	return names
}

func (c *Columns) Aliases() []string {
	aliases := make([]string, len(c.cols))
	for i, col := range c.cols {
		aliases[i] = col.Alias
	}
	return aliases
}

// Filter returns an include mask selecting the named columns. With no names every column is included.
func (c *Columns) Filter(names ...string) ([]bool, error) {
	include := make([]bool, len(c.cols))
	if len(names) == 0 {
		for i := range include {
			include[i] = true
		}
		return include, nil
	}
	for _, name := range names {
		i, ok := c.Index(name)
		if !ok {
			return nil, errors.NewUnknownColumnError(name)
		}
		include[i] = true
	}
	return include, nil
}

// NormalizeName lower cases a column name and replaces spaces with underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
