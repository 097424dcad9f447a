// Package resp implements the wire codec for the Redis serialization
// protocol: encoding commands into the RESP array-of-bulk-strings request
// form, and decoding replies (simple string, error, integer, bulk string,
// multi-bulk) into a typed Reply value.
//
// The codec is stateless across calls: Encode is total on any Command,
// and Decode either returns a complete Reply or fails with a *rediserror.Error
// of kind Protocol (or ConnectionLost for a failed read). Neither function retains state between invocations,
// following the same discipline as the teacher's resp.AppendRequest/resp.Read.
package resp

// Command is an operation name plus an ordered sequence of opaque
// byte-string arguments. Arguments are stored as given; Encode converts
// each accepted Go type to its wire representation when it is written.
type Command struct {
	Name string
	Args []interface{}
}

// NewCommand builds a Command from a name and a variadic argument list.
// Accepted argument types mirror the teacher's AppendRequest: string,
// []byte, the signed/unsigned integer family, float32/float64, and bool
// (encoded as "1"/"0"). Anything else is rejected at Encode time with a
// Request-kind error, never panics.
func NewCommand(name string, args ...interface{}) Command {
	return Command{Name: name, Args: args}
}

// Key extracts the first argument that should be treated as the command's
// key, when one exists. EVAL/EVALSHA take their first key as the third
// argument (after the script and the key count), BITOP as the second;
// RANDOMKEY has no key at all. Mirrors redis.Request.Key in the
// teacher, used by higher layers that need to route or log by key.
func (c Command) Key() (string, bool) {
	if c.Name == "RANDOMKEY" {
		return "", false
	}
	n := 0
	switch c.Name {
	case "EVAL", "EVALSHA":
		n = 2
	case "BITOP":
		n = 1
	}
	if len(c.Args) <= n {
		return "", false
	}
	return argToString(c.Args[n])
}

func argToString(v interface{}) (string, bool) {
	switch a := v.(type) {
	case string:
		return a, true
	case []byte:
		return string(a), true
	default:
		return "", false
	}
}
