package conf

import (
	"fmt"

	"github.com/squareup/tdcodec/errors"
)

const (
	RowShapeTuple  = "tuple"
	RowShapeDict   = "dict"
	RowShapeString = "string"
	RowShapeRaw    = "raw"

	DateTimeModeString     = "string"
	DateTimeModeStructured = "structured"

	DecimalModeString  = "string"
	DecimalModeFloat   = "float"
	DecimalModeDecimal = "decimal"

	CharsetUTF8   = "utf8"
	CharsetLatin1 = "latin1"
)

const (
	DefaultRowShape     = RowShapeTuple
	DefaultDateTimeMode = DateTimeModeString
	DefaultDecimalMode  = DecimalModeString
	DefaultCharset      = CharsetUTF8
	DefaultDelimiter    = "|"
	DefaultNullLiteral  = "NULL"
)

// CodecConfig holds the settings a caller can choose for decoding and encoding rows. It is converted into the
// options carried by each codec call, the codec keeps no configuration of its own.
type CodecConfig struct {
	RowShape     string `json:"row_shape,omitempty"`
	DateTimeMode string `json:"date_time_mode,omitempty"`
	DecimalMode  string `json:"decimal_mode,omitempty"`
	Charset      string `json:"charset,omitempty"`
	Delimiter    string `json:"delimiter,omitempty"`
	// NullLiteral, when set, replaces NULL in every row shape. When nil NULL is the literal "NULL" in delimited text
	// and nil in tuple and dict rows.
	NullLiteral *string `json:"null_literal,omitempty"`
	// Columns restricts decoded rows to the named columns.
	Columns []string `json:"columns,omitempty"`
	// MetricsNamespace prefixes the names of the codec counters.
	MetricsNamespace string `json:"metrics_namespace,omitempty"`
}

func (c *CodecConfig) Validate() error {
	switch c.RowShape {
	case RowShapeTuple, RowShapeDict, RowShapeString, RowShapeRaw:
	default:
		return errors.NewInvalidConfigurationError(fmt.Sprintf("RowShape must be one of %s, %s, %s or %s",
			RowShapeTuple, RowShapeDict, RowShapeString, RowShapeRaw))
	}
	switch c.DateTimeMode {
	case DateTimeModeString, DateTimeModeStructured:
	default:
		return errors.NewInvalidConfigurationError(fmt.Sprintf("DateTimeMode must be %s or %s",
			DateTimeModeString, DateTimeModeStructured))
	}
	switch c.DecimalMode {
	case DecimalModeString, DecimalModeFloat, DecimalModeDecimal:
	default:
		return errors.NewInvalidConfigurationError(fmt.Sprintf("DecimalMode must be one of %s, %s or %s",
			DecimalModeString, DecimalModeFloat, DecimalModeDecimal))
	}
	switch c.Charset {
	case CharsetUTF8, CharsetLatin1:
	default:
		return errors.NewInvalidConfigurationError(fmt.Sprintf("Charset must be %s or %s", CharsetUTF8, CharsetLatin1))
	}
	if c.Delimiter == "" {
		return errors.NewInvalidConfigurationError("Delimiter must be specified")
	}
	if c.NullLiteral != nil && *c.NullLiteral == c.Delimiter {
		return errors.NewInvalidConfigurationError("NullLiteral must be different from Delimiter")
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, name := range c.Columns {
		if name == "" {
			return errors.NewInvalidConfigurationError("Columns must not contain an empty name")
		}
		if _, ok := seen[name]; ok {
			return errors.NewInvalidConfigurationError(fmt.Sprintf("Column %s is listed more than once", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}

func NewDefaultCodecConfig() *CodecConfig {
	return &CodecConfig{
		RowShape:     DefaultRowShape,
		DateTimeMode: DefaultDateTimeMode,
		DecimalMode:  DefaultDecimalMode,
		Charset:      DefaultCharset,
		Delimiter:    DefaultDelimiter,
	}
}
