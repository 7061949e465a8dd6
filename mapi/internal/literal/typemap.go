package literal

import "strings"

// HostType is the host-API type code a server-declared SQL type name
// maps to (spec §4.8 "Type-name mapping").
type HostType int

const (
	HostUnknown HostType = iota
	HostBoolean
	HostTinyInt
	HostSmallInt
	HostInt
	HostBigInt
	HostHugeInt
	HostReal
	HostDouble
	HostDecimal
	HostChar
	HostVarchar
	HostClob
	HostBlob
	HostDate
	HostTime
	HostTimeTZ
	HostTimestamp
	HostTimestampTZ
	HostInet
	HostURL
	HostUUID
	HostJSON
	HostXML

	// the 13 SQL interval subtypes, split across MonetDB's three wire
	// families (month_interval, day_interval, sec_interval).
	HostIntervalYear
	HostIntervalYearMonth
	HostIntervalMonth
	HostIntervalDay
	HostIntervalDayHour
	HostIntervalDayMinute
	HostIntervalDaySecond
	HostIntervalHour
	HostIntervalHourMinute
	HostIntervalHourSecond
	HostIntervalMinute
	HostIntervalMinuteSecond
	HostIntervalSecond
)

var simpleTypeNames = map[string]HostType{
	"boolean":     HostBoolean,
	"tinyint":     HostTinyInt,
	"smallint":    HostSmallInt,
	"int":         HostInt,
	"bigint":      HostBigInt,
	"hugeint":     HostHugeInt,
	"real":        HostReal,
	"double":      HostDouble,
	"decimal":     HostDecimal,
	"numeric":     HostDecimal,
	"char":        HostChar,
	"varchar":     HostVarchar,
	"clob":        HostClob,
	"blob":        HostBlob,
	"date":        HostDate,
	"time":        HostTime,
	"timetz":      HostTimeTZ,
	"timestamp":   HostTimestamp,
	"timestamptz": HostTimestampTZ,
	"inet":        HostInet,
	"url":         HostURL,
	"uuid":        HostUUID,
	"json":        HostJSON,
	"xml":         HostXML,
}

// monthIntervalSubtypes maps the digits field MonetDB reports alongside
// a month_interval column to the SQL subtype it represents. The wire
// encoding of this precision code is not specified outside the server's
// own sources; this ordering follows the SQL standard's field-pair
// enumeration (year, year-to-month, month) and is a documented judgment
// call pending a real server to confirm against.
var monthIntervalSubtypes = map[int]HostType{
	1: HostIntervalYear,
	2: HostIntervalYearMonth,
	3: HostIntervalMonth,
}

// secIntervalSubtypes is the equivalent table for sec_interval and
// day_interval columns.
var secIntervalSubtypes = map[int]HostType{
	1: HostIntervalDay,
	2: HostIntervalDayHour,
	3: HostIntervalDayMinute,
	4: HostIntervalDaySecond,
	5: HostIntervalHour,
	6: HostIntervalHourMinute,
	7: HostIntervalHourSecond,
	8: HostIntervalMinute,
	9: HostIntervalMinuteSecond,
	10: HostIntervalSecond,
}

// MapServerType resolves a server-reported SQL type name (and, for the
// interval families, its reported precision/digits value) to a HostType.
func MapServerType(sqlType string, digits int) HostType {
	name := strings.ToLower(strings.TrimSpace(sqlType))
	switch name {
	case "month_interval":
		if t, ok := monthIntervalSubtypes[digits]; ok {
			return t
		}
		return HostIntervalMonth
	case "day_interval", "sec_interval":
		if t, ok := secIntervalSubtypes[digits]; ok {
			return t
		}
		return HostIntervalSecond
	}
	if t, ok := simpleTypeNames[name]; ok {
		return t
	}
	return HostUnknown
}

// String names the HostType, matching the server type name family it
// was mapped from where one exists.
func (h HostType) String() string {
	for name, t := range simpleTypeNames {
		if t == h {
			return name
		}
	}
	switch h {
	case HostIntervalYear:
		return "interval year"
	case HostIntervalYearMonth:
		return "interval year to month"
	case HostIntervalMonth:
		return "interval month"
	case HostIntervalDay:
		return "interval day"
	case HostIntervalDayHour:
		return "interval day to hour"
	case HostIntervalDayMinute:
		return "interval day to minute"
	case HostIntervalDaySecond:
		return "interval day to second"
	case HostIntervalHour:
		return "interval hour"
	case HostIntervalHourMinute:
		return "interval hour to minute"
	case HostIntervalHourSecond:
		return "interval hour to second"
	case HostIntervalMinute:
		return "interval minute"
	case HostIntervalMinuteSecond:
		return "interval minute to second"
	case HostIntervalSecond:
		return "interval second"
	default:
		return "unknown"
	}
}
