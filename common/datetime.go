package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/squareup/tdcodec/errors"
)

// DATE is a 4 byte signed integer holding YYYYMMDD - 19000000. TIME and TIMESTAMP travel as fixed width character
// data, HH:MM:SS[.ffffff] and YYYY-MM-DD HH:MM:SS[.ffffff].

const dateBias = 19000000

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

var ErrInvalidDateString = errors.New("invalid date string")

// DateFromWire splits a packed DATE into its calendar fields.
func DateFromWire(v int32) (year int, month int, day int) {
	u := int(v) + dateBias
	return u / 10000, (u % 10000) / 100, u % 100
}

// DateToWire packs calendar fields into a DATE.
func DateToWire(year int, month int, day int) int32 {
	return int32(year*10000 + month*100 + day - dateBias)
}

// FormatDate renders a packed DATE as YYYY-MM-DD.
func FormatDate(v int32) string {
	y, m, d := DateFromWire(v)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// DateToTime converts a packed DATE to midnight UTC of that day.
func DateToTime(v int32) time.Time {
	y, m, d := DateFromWire(v)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// ParseDateString packs a YYYY-MM-DD string.
func ParseDateString(s string) (int32, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidDateString, "%q", s)
	}
	return DateToWire(t.Year(), int(t.Month()), t.Day()), nil
}

// TimeToDate packs the calendar day of t.
func TimeToDate(t time.Time) int32 {
	return DateToWire(t.Year(), int(t.Month()), t.Day())
}

// ParseTime parses the character form of a TIME value. ok is false when text is not a valid time.
func ParseTime(text string) (t time.Time, ok bool) {
	return parseTemporal(timeLayout, text)
}

// ParseTimestamp parses the character form of a TIMESTAMP value. ok is false when text is not a valid timestamp.
func ParseTimestamp(text string) (t time.Time, ok bool) {
	return parseTemporal(timestampLayout, text)
}

func parseTemporal(layout string, text string) (time.Time, bool) {
	t, err := time.Parse(layout, strings.TrimRight(text, " "))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTime renders t as TIME character data of the given column width. Widths beyond HH:MM:SS carry a
// fractional second part.
func FormatTime(t time.Time, width int) string {
	return formatTemporal(t, timeLayout, width)
}

// FormatTimestamp renders t as TIMESTAMP character data of the given column width.
func FormatTimestamp(t time.Time, width int) string {
	return formatTemporal(t, timestampLayout, width)
}

func formatTemporal(t time.Time, layout string, width int) string {
	s := t.Format(layout)
	digits := width - len(layout) - 1
	if digits <= 0 {
		return s
	}
	if digits > 9 {
		digits = 9
	}
	frac := fmt.Sprintf("%09d", t.Nanosecond())
	return s + "." + frac[:digits]
}
