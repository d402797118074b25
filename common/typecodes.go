package common

import (
	log "github.com/sirupsen/logrus"
)

// Session protocol (CLIv2) data type codes. Each type has a non-nullable (NN, even) and nullable (N, odd) code.
const (
	BlobNN               uint16 = 400
	BlobN                uint16 = 401
	BlobAsDeferredNN     uint16 = 404
	BlobAsDeferredN      uint16 = 405
	BlobAsLocatorNN      uint16 = 408
	BlobAsLocatorN       uint16 = 409
	BlobAsDeferredNameNN uint16 = 412
	BlobAsDeferredNameN  uint16 = 413
	ClobNN               uint16 = 416
	ClobN                uint16 = 417
	ClobAsDeferredNN     uint16 = 420
	ClobAsDeferredN      uint16 = 421
	ClobAsLocatorNN      uint16 = 424
	ClobAsLocatorN       uint16 = 425
	ClobAsDeferredNameNN uint16 = 428
	ClobAsDeferredNameN  uint16 = 429
	UDTNN                uint16 = 432
	UDTN                 uint16 = 433
	DistinctUDTNN        uint16 = 436
	DistinctUDTN         uint16 = 437
	StructUDTNN          uint16 = 440
	StructUDTN           uint16 = 441
	VarcharNN            uint16 = 448
	VarcharN             uint16 = 449
	CharNN               uint16 = 452
	CharN                uint16 = 453
	LongVarcharNN        uint16 = 456
	LongVarcharN         uint16 = 457
	VargraphicNN         uint16 = 464
	VargraphicN          uint16 = 465
	GraphicNN            uint16 = 468
	GraphicN             uint16 = 469
	LongVargraphicNN     uint16 = 472
	LongVargraphicN      uint16 = 473
	FloatNN              uint16 = 480
	FloatN               uint16 = 481
	DecimalNN            uint16 = 484
	DecimalN             uint16 = 485
	IntegerNN            uint16 = 496
	IntegerN             uint16 = 497
	SmallintNN           uint16 = 500
	SmallintN            uint16 = 501
	Array1DNN            uint16 = 504
	Array1DN             uint16 = 505
	ArrayNDNN            uint16 = 508
	ArrayNDN             uint16 = 509
	BigintNN             uint16 = 600
	BigintN              uint16 = 601
	NumberNN             uint16 = 604
	NumberN              uint16 = 605
	VarbyteNN            uint16 = 688
	VarbyteN             uint16 = 689
	ByteNN               uint16 = 692
	ByteN                uint16 = 693
	LongVarbyteNN        uint16 = 696
	LongVarbyteN         uint16 = 697
	DateNN               uint16 = 752
	DateN                uint16 = 753
	ByteintNN            uint16 = 756
	ByteintN             uint16 = 757
	TimeNN               uint16 = 760
	TimeN                uint16 = 761
	TimestampNN          uint16 = 764
	TimestampN           uint16 = 765
	TimeWithTZNN         uint16 = 768
	TimeWithTZN          uint16 = 769
	TimestampWithTZNN    uint16 = 772
	TimestampWithTZN     uint16 = 773
	IntervalYearNN       uint16 = 776
	IntervalSecondN      uint16 = 819
	PeriodDateNN         uint16 = 832
	PeriodLastN          uint16 = 859
	XMLTextNN            uint16 = 860
	XMLTextN             uint16 = 861
	JSONNN               uint16 = 880
	JSONN                uint16 = 881
)

// SessionTypeFloor is the lowest session protocol type code. Smaller codes are bulk transport codes.
const SessionTypeFloor uint16 = BlobNN

// Bulk transport (TPT) data type codes.
const (
	TDInteger              uint16 = 1
	TDSmallint             uint16 = 2
	TDFloat                uint16 = 3
	TDDecimal              uint16 = 4
	TDChar                 uint16 = 5
	TDByteint              uint16 = 6
	TDVarchar              uint16 = 7
	TDLongVarchar          uint16 = 8
	TDByte                 uint16 = 9
	TDVarbyte              uint16 = 10
	TDDate                 uint16 = 11
	TDGraphic              uint16 = 12
	TDVargraphic           uint16 = 13
	TDLongVargraphic       uint16 = 14
	TDDateANSI             uint16 = 15
	TDTime                 uint16 = 35
	TDTimeZone             uint16 = 36
	TDTimestamp            uint16 = 37
	TDTimestampZone        uint16 = 38
	TDIntervalYear         uint16 = 39
	TDIntervalSecond       uint16 = 51
	TDBigint               uint16 = 52
	TDLongVarbyte          uint16 = 53
	TDPeriodDate           uint16 = 54
	TDPeriodTime           uint16 = 55
	TDPeriodTimeTZ         uint16 = 56
	TDPeriodTimestamp      uint16 = 57
	TDPeriodTimestampTZ    uint16 = 58
	TDNumber               uint16 = 59
	TDBlob                 uint16 = 60
	TDClob                 uint16 = 61
	TDBlobAsDeferredByName uint16 = 62
	TDClobAsDeferredByName uint16 = 63
)

// bulkToSession maps a bulk transport code to the nullable session protocol code of the same type. Bulk codes not
// present here (intervals) resolve to zero and from there to TypeDefault.
var bulkToSession = [64]uint16{
	TDInteger:              IntegerN,
	TDSmallint:             SmallintN,
	TDFloat:                FloatN,
	TDDecimal:              DecimalN,
	TDChar:                 CharN,
	TDByteint:              ByteintN,
	TDVarchar:              VarcharN,
	TDLongVarchar:          LongVarcharN,
	TDByte:                 ByteN,
	TDVarbyte:              VarbyteN,
	TDDate:                 DateN,
	TDGraphic:              GraphicN,
	TDVargraphic:           VargraphicN,
	TDLongVargraphic:       LongVargraphicN,
	TDDateANSI:             DateN,
	TDTime:                 TimeN,
	TDTimeZone:             TimeWithTZN,
	TDTimestamp:            TimestampN,
	TDTimestampZone:        TimestampWithTZN,
	TDBigint:               BigintN,
	TDLongVarbyte:          LongVarbyteN,
	TDPeriodDate:           PeriodDateNN + 1,
	TDPeriodTime:           PeriodDateNN + 5,
	TDPeriodTimeTZ:         PeriodDateNN + 9,
	TDPeriodTimestamp:      PeriodDateNN + 13,
	TDPeriodTimestampTZ:    PeriodDateNN + 17,
	TDNumber:               NumberN,
	TDBlob:                 BlobN,
	TDClob:                 ClobN,
	TDBlobAsDeferredByName: BlobAsDeferredNameN,
	TDClobAsDeferredByName: ClobAsDeferredNameN,
}

// IsBulkTypeCode reports whether code belongs to the bulk transport numbering.
func IsBulkTypeCode(code uint16) bool {
	return code < SessionTypeFloor
}

// TranslateWireType maps a session protocol or bulk transport type code onto the logical type enumeration.
// Codes without a dedicated decode rule resolve to TypeDefault, never to an error.
func TranslateWireType(code uint16) Type {
	if IsBulkTypeCode(code) {
		if int(code) >= len(bulkToSession) || bulkToSession[code] == 0 {
			log.Debugf("bulk transport type code %d has no session equivalent, treating as default", code)
			return TypeDefault
		}
		code = bulkToSession[code]
	}
	switch code &^ 1 {
	case ByteintNN:
		return TypeByteInt
	case SmallintNN:
		return TypeSmallInt
	case IntegerNN:
		return TypeInteger
	case BigintNN:
		return TypeBigInt
	case FloatNN:
		return TypeFloat
	case DecimalNN:
		return TypeDecimal
	case CharNN:
		return TypeChar
	case VarcharNN, LongVarcharNN:
		return TypeVarchar
	case DateNN:
		return TypeDate
	case TimeNN:
		return TypeTime
	case TimestampNN:
		return TypeTimestamp
	case ByteNN:
		return TypeByte
	case VarbyteNN, LongVarbyteNN:
		return TypeVarbyte
	default:
		log.Debugf("wire type code %d has no dedicated decode rule, treating as default", code)
		return TypeDefault
	}
}
