package resp

import (
	"strconv"

	"github.com/Griffin1989106/rpipe/rediserror"
)

// Encode appends the wire form of cmd to buf and returns the grown slice.
// It is total on any Command: unsupported argument types are reported as
// a Request-kind error rather than panicking, mirroring the teacher's
// resp.AppendRequest.
func Encode(buf []byte, cmd Command) ([]byte, error) {
	buf = appendHead(buf, '*', int64(len(cmd.Args)+1))
	buf = appendBulkString(buf, cmd.Name)
	for _, arg := range cmd.Args {
		var err error
		buf, err = appendArg(buf, arg)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendArg(buf []byte, val interface{}) ([]byte, error) {
	switch v := val.(type) {
	case nil:
		return appendBulkString(buf, ""), nil
	case string:
		return appendBulkString(buf, v), nil
	case []byte:
		return appendBulkBytes(buf, v), nil
	case bool:
		if v {
			return appendBulkString(buf, "1"), nil
		}
		return appendBulkString(buf, "0"), nil
	case int:
		return appendBulkInt(buf, int64(v)), nil
	case int8:
		return appendBulkInt(buf, int64(v)), nil
	case int16:
		return appendBulkInt(buf, int64(v)), nil
	case int32:
		return appendBulkInt(buf, int64(v)), nil
	case int64:
		return appendBulkInt(buf, v), nil
	case uint:
		return appendBulkInt(buf, int64(v)), nil
	case uint8:
		return appendBulkInt(buf, int64(v)), nil
	case uint16:
		return appendBulkInt(buf, int64(v)), nil
	case uint32:
		return appendBulkInt(buf, int64(v)), nil
	case uint64:
		return appendBulkInt(buf, int64(v)), nil
	case float32:
		return appendBulkString(buf, strconv.FormatFloat(float64(v), 'f', -1, 32)), nil
	case float64:
		return appendBulkString(buf, strconv.FormatFloat(v, 'f', -1, 64)), nil
	default:
		return nil, rediserror.New(rediserror.KindRequest, "command argument type not supported").
			WithProperty(rediserror.PValue, val)
	}
}

// EncodeReply appends the wire form of a decoded Reply to buf. It is the
// inverse of Decode and is used by the fake server in the testbed
// package to write canned responses without hand-building RESP frames.
func EncodeReply(buf []byte, r Reply) []byte {
	switch r.Kind {
	case KindInteger:
		buf = appendHead(buf, ':', r.Integer)
	case KindSimpleString:
		buf = append(buf, '+')
		buf = append(buf, r.Str...)
		buf = append(buf, '\r', '\n')
	case KindBulkString:
		if r.Null {
			buf = append(buf, '$', '-', '1', '\r', '\n')
		} else {
			buf = appendBulkBytes(buf, r.Bytes)
		}
	case KindMultiBulk:
		if r.Null {
			buf = append(buf, '*', '-', '1', '\r', '\n')
		} else {
			buf = appendHead(buf, '*', int64(len(r.Items)))
			for _, item := range r.Items {
				buf = EncodeReply(buf, item)
			}
		}
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, r.ErrMsg...)
		buf = append(buf, '\r', '\n')
	}
	return buf
}

func appendBulkString(buf []byte, s string) []byte {
	buf = appendHead(buf, '$', int64(len(s)))
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}

func appendBulkBytes(buf []byte, b []byte) []byte {
	buf = appendHead(buf, '$', int64(len(b)))
	buf = append(buf, b...)
	return append(buf, '\r', '\n')
}

func appendBulkInt(buf []byte, i int64) []byte {
	return appendBulkString(buf, strconv.FormatInt(i, 10))
}

func appendHead(buf []byte, tag byte, n int64) []byte {
	buf = append(buf, tag)
	buf = strconv.AppendInt(buf, n, 10)
	return append(buf, '\r', '\n')
}
