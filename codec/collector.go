package codec

import (
	"github.com/squareup/tdcodec/errors"
	"github.com/squareup/tdcodec/metrics"
)

// Collector counts codec activity. A nil *Collector counts nothing.
type Collector struct {
	rowsDecoded        metrics.Counter
	rowsEncoded        metrics.Counter
	rowsCounted        metrics.Counter
	nullValues         metrics.Counter
	timeFallbacks      metrics.Counter
	decimalTruncations metrics.Counter
}

func NewCollector(factory metrics.Factory) (*Collector, error) {
	c := &Collector{}
	counters := []struct {
		target *metrics.Counter
		name   string
		help   string
	}{
		{&c.rowsDecoded, "rows_decoded_total", "Rows decoded from wire format"},
		{&c.rowsEncoded, "rows_encoded_total", "Rows encoded into wire format"},
		{&c.rowsCounted, "rows_counted_total", "Rows skipped over by row counting"},
		{&c.nullValues, "null_values_total", "NULL values decoded or encoded"},
		{&c.timeFallbacks, "time_fallbacks_total", "TIME and TIMESTAMP values returned as raw text because they did not parse"},
		{&c.decimalTruncations, "decimal_truncations_total", "DECIMAL values whose extra fraction digits were dropped on encode"},
	}
	for _, ct := range counters {
		counter, err := factory.CreateCounter(ct.name, ct.help)
		if err != nil {
			return nil, errors.MaybeAddStack(err)
		}
		*ct.target = counter
	}
	return c, nil
}

func (c *Collector) rowDecoded() {
	if c != nil {
		c.rowsDecoded.Inc()
	}
}

func (c *Collector) rowEncoded() {
	if c != nil {
		c.rowsEncoded.Inc()
	}
}

func (c *Collector) rowsSkipped(n int) {
	if c != nil && n > 0 {
		c.rowsCounted.Add(float64(n))
	}
}

func (c *Collector) nullValue() {
	if c != nil {
		c.nullValues.Inc()
	}
}

func (c *Collector) timeFallback() {
	if c != nil {
		c.timeFallbacks.Inc()
	}
}

func (c *Collector) decimalTruncation() {
	if c != nil {
		c.decimalTruncations.Inc()
	}
}
