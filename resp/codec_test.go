package resp_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, lines ...string) (resp.Reply, error) {
	t.Helper()
	r := bufio.NewReader(strings.NewReader(strings.Join(lines, "")))
	return resp.Decode(r, 0)
}

func TestDecode_Simple(t *testing.T) {
	rep, err := decodeLines(t, "+OK\r\n")
	require.NoError(t, err)
	assert.True(t, rep.Equal(resp.SimpleString("OK")))
}

func TestDecode_Integer(t *testing.T) {
	rep, err := decodeLines(t, ":1000\r\n")
	require.NoError(t, err)
	assert.True(t, rep.Equal(resp.Integer(1000)))

	rep, err = decodeLines(t, ":-7\r\n")
	require.NoError(t, err)
	assert.True(t, rep.Equal(resp.Integer(-7)))
}

func TestDecode_BulkString(t *testing.T) {
	rep, err := decodeLines(t, "$3\r\nbar\r\n")
	require.NoError(t, err)
	assert.True(t, rep.Equal(resp.BulkString([]byte("bar"))))
}

// S6: nil bulk vs empty bulk are not equal.
func TestDecode_NilVsEmptyBulk(t *testing.T) {
	nilRep, err := decodeLines(t, "$-1\r\n")
	require.NoError(t, err)
	assert.True(t, nilRep.IsNil())

	emptyRep, err := decodeLines(t, "$0\r\n\r\n")
	require.NoError(t, err)
	assert.False(t, emptyRep.IsNil())
	assert.Equal(t, []byte{}, emptyRep.Bytes)

	assert.False(t, nilRep.Equal(emptyRep))
}

func TestDecode_MultiBulkAndNilMultiBulk(t *testing.T) {
	rep, err := decodeLines(t, "*2\r\n$3\r\nfoo\r\n:42\r\n")
	require.NoError(t, err)
	want := resp.MultiBulk([]resp.Reply{resp.BulkString([]byte("foo")), resp.Integer(42)})
	assert.True(t, rep.Equal(want))

	nilArr, err := decodeLines(t, "*-1\r\n")
	require.NoError(t, err)
	assert.True(t, nilArr.IsNil())
}

func TestDecode_Error(t *testing.T) {
	rep, err := decodeLines(t, "-ERR value is not an integer\r\n")
	require.NoError(t, err)
	assert.True(t, rep.IsError())
	assert.Equal(t, "ERR value is not an integer", rep.ErrMsg)
}

func TestDecode_MalformedIsProtocolError(t *testing.T) {
	_, err := decodeLines(t, "/nope\r\n")
	require.Error(t, err)
	assert.True(t, rediserror.Is(err, rediserror.KindProtocol))

	_, err = decodeLines(t, ":notanumber\r\n")
	require.Error(t, err)
	assert.True(t, rediserror.Is(err, rediserror.KindProtocol))
}

func TestDecode_TruncatedIsProtocolError(t *testing.T) {
	_, err := decodeLines(t, "$5\r\nab")
	require.Error(t, err)
	assert.True(t, rediserror.Is(err, rediserror.KindProtocol))
}

// Property 1: decode(encode(R)) == R for every supported shape, including
// nil-bulk and nil-multi-bulk.
func TestRoundTrip_Replies(t *testing.T) {
	cases := []resp.Reply{
		resp.Integer(0),
		resp.Integer(-99999999999),
		resp.SimpleString("PONG"),
		resp.BulkString([]byte("")),
		resp.BulkString([]byte("hello world")),
		resp.NilBulkString(),
		resp.MultiBulk(nil),
		resp.MultiBulk([]resp.Reply{resp.Integer(1), resp.BulkString([]byte("x"))}),
		resp.NilMultiBulk(),
		resp.Error("ERR boom"),
	}
	for _, want := range cases {
		wire := encodeReply(want)
		got, err := decodeLines(t, wire)
		require.NoError(t, err)
		assert.Truef(t, got.Equal(want), "round-trip mismatch: want %v got %v", want, got)
	}
}

// encodeReply renders a Reply back to wire bytes independently of
// resp.EncodeReply, giving the round-trip test something to decode
// without needing a live server.
func encodeReply(r resp.Reply) string {
	var b bytes.Buffer
	switch r.Kind {
	case resp.KindInteger:
		b.WriteString(":")
		b.WriteString(itoa(r.Integer))
		b.WriteString("\r\n")
	case resp.KindSimpleString:
		b.WriteString("+" + r.Str + "\r\n")
	case resp.KindBulkString:
		if r.Null {
			b.WriteString("$-1\r\n")
		} else {
			b.WriteString("$" + itoa(int64(len(r.Bytes))) + "\r\n")
			b.Write(r.Bytes)
			b.WriteString("\r\n")
		}
	case resp.KindMultiBulk:
		if r.Null {
			b.WriteString("*-1\r\n")
		} else {
			b.WriteString("*" + itoa(int64(len(r.Items))) + "\r\n")
			for _, item := range r.Items {
				b.WriteString(encodeReply(item))
			}
		}
	case resp.KindError:
		b.WriteString("-" + r.ErrMsg + "\r\n")
	}
	return b.String()
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}

func TestEncode_Command(t *testing.T) {
	buf, err := resp.Encode(nil, resp.NewCommand("SET", "foo", "bar"))
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n", string(buf))
}

func TestEncode_UnsupportedArgType(t *testing.T) {
	_, err := resp.Encode(nil, resp.NewCommand("SET", "foo", struct{}{}))
	require.Error(t, err)
	assert.True(t, rediserror.Is(err, rediserror.KindRequest))
}

func TestCommand_Key(t *testing.T) {
	cmd := resp.NewCommand("GET", "mykey")
	key, ok := cmd.Key()
	assert.True(t, ok)
	assert.Equal(t, "mykey", key)

	cmd = resp.NewCommand("EVAL", "return 1", "1", "mykey")
	key, ok = cmd.Key()
	assert.True(t, ok)
	assert.Equal(t, "mykey", key)

	cmd = resp.NewCommand("RANDOMKEY")
	_, ok = cmd.Key()
	assert.False(t, ok)
}
