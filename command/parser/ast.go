// Package parser parses Teradata Parallel Transporter schema definitions.
//
//nolint:govet
package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/squareup/tdcodec/common"
	"github.com/squareup/tdcodec/errors"
)

const (
	// DefaultDecimalPrecision and DefaultDecimalScale apply to a bare DECIMAL.
	DefaultDecimalPrecision = 5
	DefaultDecimalScale     = 0
	// DefaultFSP is the fractional seconds precision of a bare TIME or TIMESTAMP.
	DefaultFSP = 6

	maxDecimalPrecision = 38
	maxFSP              = 6
	longVarcharLength   = 64000
)

// Schema is a DEFINE SCHEMA statement.
type Schema struct {
	Name    string       `( "DEFINE" "SCHEMA" @(Ident|QuotedIdent) )?`
	Columns []*ColumnDef `"(" @@ ("," @@)* ")" ";"?`
}

// Descriptors converts the column definitions into bulk transport column descriptors.
func (s *Schema) Descriptors() ([]common.ColumnDescriptor, error) {
	descs := make([]common.ColumnDescriptor, 0, len(s.Columns))
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		key := strings.ToLower(c.Name)
		if _, ok := seen[key]; ok {
			return nil, errors.NewInvalidSchemaDefinitionError(participle.Errorf(c.Pos, "column %s defined more than once", c.Name).Error())
		}
		seen[key] = struct{}{}
		d, err := c.ToDescriptor()
		if err != nil {
			return nil, errors.NewInvalidSchemaDefinitionError(err.Error())
		}
		descs = append(descs, d)
	}
	return descs, nil
}

type ColumnDef struct {
	Pos lexer.Position

	Name       string   `@(Ident|QuotedIdent)`
	Type       []string `@Ident+`                              // Multi word types such as DOUBLE PRECISION
	Parameters []int    `("(" @Number ("," @Number)* ")")?` // Optional parameters to the type(x [, x])
}

// TypeName is the normalised type, words upper cased and joined by single spaces.
func (c *ColumnDef) TypeName() string {
	return strings.ToUpper(strings.Join(c.Type, " "))
}

func (c *ColumnDef) ToDescriptor() (common.ColumnDescriptor, error) { //nolint:gocyclo
	d := common.ColumnDescriptor{Name: c.Name, Nullable: true}
	switch c.TypeName() {
	case "BYTEINT":
		return c.fixed(d, common.TDByteint, 1)
	case "SMALLINT":
		return c.fixed(d, common.TDSmallint, 2)
	case "INTEGER", "INT":
		return c.fixed(d, common.TDInteger, 4)
	case "BIGINT":
		return c.fixed(d, common.TDBigint, 8)
	case "FLOAT", "REAL", "DOUBLE PRECISION":
		return c.fixed(d, common.TDFloat, 8)
	case "DATE":
		return c.fixed(d, common.TDDate, 4)
	case "DECIMAL", "DEC", "NUMERIC":
		if len(c.Parameters) > 2 {
			return d, participle.Errorf(c.Pos, "expected DECIMAL[(precision[, scale])]")
		}
		d.WireType = common.TDDecimal
		d.Precision, d.Scale = DefaultDecimalPrecision, DefaultDecimalScale
		if len(c.Parameters) > 0 {
			d.Precision = c.Parameters[0]
		}
		if len(c.Parameters) > 1 {
			d.Scale = c.Parameters[1]
		}
		if d.Precision < 1 || d.Precision > maxDecimalPrecision {
			return d, participle.Errorf(c.Pos, "DECIMAL precision must be between 1 and %d", maxDecimalPrecision)
		}
		if d.Scale > d.Precision {
			return d, participle.Errorf(c.Pos, "DECIMAL scale must not be larger than precision")
		}
		d.Length = common.DecimalWidth(d.Precision)
		return d, nil
	case "CHAR", "CHARACTER":
		return c.sized(d, common.TDChar, false)
	case "VARCHAR", "CHAR VARYING", "CHARACTER VARYING":
		return c.sized(d, common.TDVarchar, true)
	case "LONG VARCHAR":
		d.WireType, d.Length = common.TDLongVarchar, longVarcharLength
		return d, c.noParameters()
	case "BYTE":
		return c.sized(d, common.TDByte, false)
	case "VARBYTE":
		return c.sized(d, common.TDVarbyte, true)
	case "TIME":
		return c.temporal(d, common.TDTime, 8)
	case "TIMESTAMP":
		return c.temporal(d, common.TDTimestamp, 19)
	case "BLOB":
		return c.sized(d, common.TDBlob, true)
	case "CLOB":
		return c.sized(d, common.TDClob, true)
	default:
		return d, participle.Errorf(c.Pos, "unsupported type %s for column %s", c.TypeName(), c.Name)
	}
}

func (c *ColumnDef) noParameters() error {
	if len(c.Parameters) != 0 {
		return participle.Errorf(c.Pos, "type %s takes no parameters", c.TypeName())
	}
	return nil
}

func (c *ColumnDef) fixed(d common.ColumnDescriptor, code uint16, length int) (common.ColumnDescriptor, error) {
	d.WireType, d.Length = code, length
	return d, c.noParameters()
}

func (c *ColumnDef) sized(d common.ColumnDescriptor, code uint16, required bool) (common.ColumnDescriptor, error) {
	d.WireType, d.Length = code, 1
	switch {
	case len(c.Parameters) == 0 && required:
		return d, participle.Errorf(c.Pos, "expected %s(length)", c.TypeName())
	case len(c.Parameters) > 1:
		return d, participle.Errorf(c.Pos, "expected %s(length)", c.TypeName())
	case len(c.Parameters) == 1:
		d.Length = c.Parameters[0]
	}
	if d.Length < 1 || d.Length > longVarcharLength {
		return d, participle.Errorf(c.Pos, "%s length must be between 1 and %d", c.TypeName(), longVarcharLength)
	}
	return d, nil
}

// temporal sizes TIME and TIMESTAMP character data: the base width plus a point and the fraction digits.
func (c *ColumnDef) temporal(d common.ColumnDescriptor, code uint16, base int) (common.ColumnDescriptor, error) {
	fsp := DefaultFSP
	if len(c.Parameters) > 1 {
		return d, participle.Errorf(c.Pos, "expected %s[(fractional seconds precision)]", c.TypeName())
	}
	if len(c.Parameters) == 1 {
		fsp = c.Parameters[0]
	}
	if fsp > maxFSP {
		return d, participle.Errorf(c.Pos, "fractional seconds precision must be between 0 and %d", maxFSP)
	}
	d.WireType, d.Length = code, base
	if fsp > 0 {
		d.Length += fsp + 1
	}
	return d, nil
}
