package resp

import (
	"bufio"
	"io"
	"strings"

	"github.com/Griffin1989106/rpipe/rediserror"
)

// DefaultMaxReplySize bounds bulk-string and multi-bulk element counts
// when no explicit limit is configured. Exceeding it is a Protocol error,
// per spec §4.1 "Maximum reply size is caller-configurable".
const DefaultMaxReplySize = 512 * 1024 * 1024

// Decode reads exactly one reply from r and returns it as a typed Reply.
// It never partially consumes a reply: either it returns a complete Reply
// or it returns a *rediserror.Error of KindProtocol / KindConnectionLost,
// per spec §4.1's decoder guarantee. maxReplySize bounds bulk-string
// length and multi-bulk element count; 0 means DefaultMaxReplySize.
func Decode(r *bufio.Reader, maxReplySize int64) (Reply, error) {
	if maxReplySize <= 0 {
		maxReplySize = DefaultMaxReplySize
	}
	return decodeOne(r, maxReplySize, false)
}

// decodeOne decodes one reply; inner is true for a multi-bulk element, so
// EOF there is an unexpected EOF inside a reply rather than between replies.
func decodeOne(r *bufio.Reader, maxReplySize int64, inner bool) (Reply, error) {
	line, isPrefix, err := r.ReadLine()
	if err != nil {
		if err == io.EOF {
			if inner {
				return Reply{}, rediserror.Wrap(rediserror.KindProtocol, err, "unexpected EOF inside multi-bulk reply")
			}
			return Reply{}, rediserror.Wrap(rediserror.KindConnectionLost, err, "connection closed while reading reply")
		}
		return Reply{}, rediserror.Wrap(rediserror.KindConnectionLost, err, "read error")
	}
	if isPrefix {
		return Reply{}, rediserror.New(rediserror.KindProtocol, "reply header line too large")
	}
	if len(line) == 0 {
		return Reply{}, rediserror.New(rediserror.KindProtocol, "empty reply header line")
	}

	switch line[0] {
	case '+':
		return SimpleString(string(line[1:])), nil
	case '-':
		return Error(string(line[1:])), nil
	case ':':
		v, err := parseInt(line[1:])
		if err != nil {
			return Reply{}, err
		}
		return Integer(v), nil
	case '$':
		n, err := parseInt(line[1:])
		if err != nil {
			return Reply{}, err
		}
		if n < 0 {
			return NilBulkString(), nil
		}
		if n > maxReplySize {
			return Reply{}, rediserror.New(rediserror.KindProtocol, "bulk string exceeds maximum reply size")
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return Reply{}, rediserror.Wrap(rediserror.KindProtocol, err, "unexpected EOF inside bulk string")
			}
			return Reply{}, rediserror.Wrap(rediserror.KindConnectionLost, err, "read error")
		}
		if buf[n] != '\r' || buf[n+1] != '\n' {
			return Reply{}, rediserror.New(rediserror.KindProtocol, "bulk string missing trailing CRLF")
		}
		return BulkString(buf[:n:n]), nil
	case '*':
		n, err := parseInt(line[1:])
		if err != nil {
			return Reply{}, err
		}
		if n < 0 {
			return NilMultiBulk(), nil
		}
		if n > maxReplySize {
			return Reply{}, rediserror.New(rediserror.KindProtocol, "multi-bulk exceeds maximum reply size")
		}
		items := make([]Reply, n)
		for i := int64(0); i < n; i++ {
			items[i], err = decodeOne(r, maxReplySize, true)
			if err != nil {
				return Reply{}, err
			}
		}
		return MultiBulk(items), nil
	default:
		return Reply{}, rediserror.New(rediserror.KindProtocol, "unknown reply header type").
			WithProperty(rediserror.PValue, strings.TrimSpace(string(line)))
	}
}

func parseInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, rediserror.New(rediserror.KindProtocol, "empty integer field")
	}
	neg := b[0] == '-'
	if neg {
		b = b[1:]
	}
	if len(b) == 0 {
		return 0, rediserror.New(rediserror.KindProtocol, "malformed integer field")
	}
	var v int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, rediserror.New(rediserror.KindProtocol, "malformed integer field")
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}
