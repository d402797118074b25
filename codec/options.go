package codec

import (
	"github.com/squareup/tdcodec/common"
	"github.com/squareup/tdcodec/conf"
	"github.com/squareup/tdcodec/errors"
	prommetrics "github.com/squareup/tdcodec/metrics/prometheus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// RowShape selects what a decoded row looks like.
type RowShape int

const (
	// RowShapeTuple rows are a Row, one value per column in wire order.
	RowShapeTuple RowShape = iota
	// RowShapeDict rows are a map keyed by column alias.
	RowShapeDict
	// RowShapeString rows are the textual values joined by the delimiter.
	RowShapeString
	// RowShapeRaw rows are the undecoded row bytes, indicator bitmap included.
	RowShapeRaw
)

// DateTimeMode selects how DATE, TIME and TIMESTAMP values are returned.
type DateTimeMode int

const (
	DateTimeString DateTimeMode = iota
	DateTimeStructured
)

// DecimalMode selects how DECIMAL values are returned.
type DecimalMode int

const (
	DecimalString DecimalMode = iota
	DecimalFloat
	DecimalStructured
)

// Charset is the session character set of text columns.
type Charset int

const (
	CharsetUTF8 Charset = iota
	CharsetLatin1
)

// Options are passed to every decode and encode call. The zero value decodes tuples of strings and nil nulls.
type Options struct {
	RowShape     RowShape
	DateTimeMode DateTimeMode
	DecimalMode  DecimalMode
	Charset      Charset
	// Delimiter separates values of delimited rows. Empty means "|".
	Delimiter string
	// NullLiteral stands for NULL in delimited rows. Empty means "NULL" unless NullLiteralSet.
	NullLiteral    string
	NullLiteralSet bool
	// NullAsLiteral makes tuple and dict rows carry NullLiteral for NULL instead of nil, and makes the encoder treat
	// NullLiteral as NULL in them.
	NullAsLiteral bool
	// Include, when not nil, is the mask from Columns.Filter. Excluded columns are consumed but not returned.
	Include []bool
	// Metrics, when not nil, counts rows and values.
	Metrics *Collector
}

// NewOptions converts a validated configuration. The include mask is resolved against cols; cols may be nil when
// the configuration names no columns. A metrics namespace registers the codec counters with the default prometheus
// registerer.
func NewOptions(cfg *conf.CodecConfig, cols *common.Columns) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	opts := Options{Delimiter: cfg.Delimiter}
	switch cfg.RowShape {
	case conf.RowShapeDict:
		opts.RowShape = RowShapeDict
	case conf.RowShapeString:
		opts.RowShape = RowShapeString
	case conf.RowShapeRaw:
		opts.RowShape = RowShapeRaw
	}
	if cfg.DateTimeMode == conf.DateTimeModeStructured {
		opts.DateTimeMode = DateTimeStructured
	}
	switch cfg.DecimalMode {
	case conf.DecimalModeFloat:
		opts.DecimalMode = DecimalFloat
	case conf.DecimalModeDecimal:
		opts.DecimalMode = DecimalStructured
	}
	if cfg.Charset == conf.CharsetLatin1 {
		opts.Charset = CharsetLatin1
	}
	if cfg.NullLiteral != nil {
		opts.NullLiteral = *cfg.NullLiteral
		opts.NullLiteralSet = true
		opts.NullAsLiteral = true
	}
	if len(cfg.Columns) > 0 {
		if cols == nil {
			return Options{}, errors.NewInvalidConfigurationError("Columns requires a schema")
		}
		include, err := cols.Filter(cfg.Columns...)
		if err != nil {
			return Options{}, err
		}
		opts.Include = include
	}
	if cfg.MetricsNamespace != "" {
		collector, err := NewCollector(prommetrics.NewFactory(nil, cfg.MetricsNamespace))
		if err != nil {
			return Options{}, err
		}
		opts.Metrics = collector
	}
	return opts, nil
}

func (o *Options) delimiter() string {
	if o.Delimiter == "" {
		return conf.DefaultDelimiter
	}
	return o.Delimiter
}

func (o *Options) nullLiteral() string {
	if o.NullLiteral == "" && !o.NullLiteralSet {
		return conf.DefaultNullLiteral
	}
	return o.NullLiteral
}

// nullValue is what tuple and dict rows carry for NULL.
func (o *Options) nullValue() interface{} {
	if o.NullAsLiteral {
		return o.nullLiteral()
	}
	return nil
}

func (o *Options) included(i int) bool {
	return o.Include == nil || (i < len(o.Include) && o.Include[i])
}

func (o *Options) textEncoding() encoding.Encoding {
	if o.Charset == CharsetLatin1 {
		return charmap.ISO8859_1
	}
	return nil
}
