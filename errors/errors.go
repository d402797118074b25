package errors

import (
	"fmt"
)

type ErrorCode int

const (
	InternalError ErrorCode = iota
	InvalidConfiguration
	MalformedBuffer
	ColumnCountMismatch
	InvalidValue
	ValueOutOfRange
	ValueTooLong
	InvalidSchemaDefinition
	UnknownColumn
)

func NewInternalError(msg string) CodecError {
	return NewCodecErrorf(InternalError, "Internal error - %s", msg)
}

func NewInvalidConfigurationError(msg string) CodecError {
	return NewCodecErrorf(InvalidConfiguration, "Invalid configuration: %s", msg)
}

func NewMalformedBufferError(msg string, args ...interface{}) CodecError {
	return NewCodecErrorf(MalformedBuffer, "Malformed buffer: %s", fmt.Sprintf(msg, args...))
}

func NewColumnCountMismatchError(expected int, actual int) CodecError {
	return NewCodecErrorf(ColumnCountMismatch, "Row has %d values, schema has %d columns", actual, expected)
}

func NewInvalidValueError(columnName string, value interface{}, typeName string) CodecError {
	return NewCodecErrorf(InvalidValue, "Cannot encode value %v (%T) for column %q of type %s", value, value, columnName, typeName)
}

func NewValueOutOfRangeError(columnName string, msg string) CodecError {
	return NewCodecErrorf(ValueOutOfRange, "Value out of range for column %q. %s", columnName, msg)
}

func NewValueTooLongError(columnName string, length int, maxLength int) CodecError {
	return NewCodecErrorf(ValueTooLong, "Value for column %q is %d bytes, column length is %d", columnName, length, maxLength)
}

func NewInvalidSchemaDefinitionError(msg string) CodecError {
	return NewCodecErrorf(InvalidSchemaDefinition, "Invalid schema definition: %s", msg)
}

func NewUnknownColumnError(columnName string) CodecError {
	return NewCodecErrorf(UnknownColumn, "Unknown column %s", columnName)
}

func NewCodecErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) CodecError {
	msg := fmt.Sprintf(fmt.Sprintf("TDC%04d - %s", errorCode, msgFormat), args...)
	return CodecError{Code: errorCode, Msg: msg}
}

// CodecError is any error reported to the session layer as the result of a decode or encode call
type CodecError struct {
	Code ErrorCode
	Msg  string
}

func (c CodecError) Error() string {
	return c.Msg
}

// HasCode reports whether err, or any error it wraps, is a CodecError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce CodecError
	if !As(err, &ce) {
		return false
	}
	return ce.Code == code
}

func MaybeAddStack(err error) error {
	if err == nil {
		return nil
	}
	_, ok := err.(CodecError)
	if !ok {
		return WithStack(err)
	}
	return err
}
