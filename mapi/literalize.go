package mapi

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MonetDB/monetdb-go/mapi/internal/literal"
)

// literalizeValue converts a host value into SQL literal text for
// binding against a parameter described by meta (spec §4.8). Domain
// types are validated before a literal is produced; an invalid value
// never reaches the wire.
func literalizeValue(v any, meta ColumnMeta, cStyleStrings bool) (string, error) {
	if v == nil {
		return literal.Null, nil
	}

	host := literal.MapServerType(meta.SQLType, meta.Precision)

	switch val := v.(type) {
	case bool:
		return literal.Bool(val), nil
	case int:
		return literal.Int(int64(val)), nil
	case int8:
		return literal.Int(int64(val)), nil
	case int16:
		return literal.Int(int64(val)), nil
	case int32:
		return literal.Int(int64(val)), nil
	case int64:
		return literal.Int(val), nil
	case float32:
		return literal.Float(float64(val)), nil
	case float64:
		return literal.Float(val), nil
	case decimal.Decimal:
		return literal.Decimal(val, meta.Precision, meta.Scale)
	case []byte:
		return literal.Blob(val), nil
	case time.Time:
		return literalizeTime(val, host)
	case string:
		return literalizeString(val, host, cStyleStrings)
	default:
		return "", dataConversionErr(fmt.Sprintf("mapi: unsupported host type %T for parameter", v), nil)
	}
}

func literalizeTime(t time.Time, host literal.HostType) (string, error) {
	switch host {
	case literal.HostDate:
		return literal.Date(t), nil
	case literal.HostTime:
		return literal.Time(t, false), nil
	case literal.HostTimeTZ:
		return literal.Time(t, true), nil
	case literal.HostTimestampTZ:
		return literal.Timestamp(t, true), nil
	default:
		return literal.Timestamp(t, false), nil
	}
}

func literalizeString(s string, host literal.HostType, cStyleStrings bool) (string, error) {
	switch host {
	case literal.HostInet:
		return literal.Inet(s)
	case literal.HostURL:
		return literal.URL(s)
	case literal.HostUUID:
		return literal.UUID(s)
	case literal.HostJSON:
		return literal.JSON(s)
	case literal.HostXML:
		return literal.XML(s), nil
	default:
		return literal.String(s, cStyleStrings), nil
	}
}

// Bind literalizes v against the prepared statement's parameter i and
// stores it as that slot's bind value (spec §4.7, §4.8). A
// data-conversion error here never reaches the wire: the exec text is
// only built once every slot holds a valid literal.
func (ps *PreparedStatement) Bind(i int, v any) error {
	if ps.closed {
		return misuseErr("mapi: prepared statement closed")
	}
	if i < 0 || i >= len(ps.params) {
		return misuseErr(fmt.Sprintf("mapi: parameter index %d out of range (0..%d)", i, len(ps.params)-1))
	}
	lit, err := literalizeValue(v, ps.params[i], true)
	if err != nil {
		if _, ok := err.(*literal.Error); ok {
			return dataConversionErr(err.Error(), err)
		}
		return err
	}
	return ps.SetParam(i, lit)
}
